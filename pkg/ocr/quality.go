package ocr

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// QualityScorer estimates how trustworthy a block of recognized text is.
// OCR failure modes (stride noise, column soup) produce text that no
// language model recognizes as English, so language confidence is a cheap
// proxy for recognition quality.
type QualityScorer struct {
	detector lingua.LanguageDetector
}

// NewQualityScorer builds the scorer. Construction is relatively expensive
// (lingua loads language models), so share one scorer across runs.
func NewQualityScorer() *QualityScorer {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.French, lingua.Spanish, lingua.German).
		Build()
	return &QualityScorer{detector: detector}
}

// Score maps recognized text to a confidence in [0.3, 1.0]. Very short
// samples carry too little signal and get a neutral 0.5.
func (s *QualityScorer) Score(text string) float64 {
	compact := strings.Join(strings.Fields(text), " ")
	if len(compact) < 20 {
		return 0.5
	}

	conf := s.detector.ComputeLanguageConfidence(compact, lingua.English)

	// Floor instead of zero: even garbled OCR sometimes holds usable
	// timestamps, and a zero here would erase the events entirely.
	score := 0.3 + 0.7*conf
	if score > 1.0 {
		score = 1.0
	}
	return score
}
