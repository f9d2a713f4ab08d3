// Package extractor locates candidate maritime events in extracted page
// text: a vocabulary phrase paired with a nearby timestamp-shaped
// substring, scored by how cleanly each signal matched.
package extractor

import (
	"strings"

	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/vocabulary"
)

// Options are per-run extraction switches.
type Options struct {
	// Fuzzy enables approximate phrase matching. Cost-saving mode turns it
	// off because fuzzy windows dominate extraction time on OCR pages.
	Fuzzy bool
}

// Extractor scans pages for the configured event vocabulary.
type Extractor struct {
	vocab *vocabulary.Vocabulary
	cfg   models.PipelineConfig
}

// New creates an Extractor bound to one vocabulary and configuration.
func New(vocab *vocabulary.Vocabulary, cfg models.PipelineConfig) *Extractor {
	return &Extractor{vocab: vocab, cfg: cfg}
}

// Extract scans every page for event phrases with adjacent timestamps.
// It never fails outright: a page with no parsable content simply yields
// zero candidates. row_index is assigned in document scan order (page,
// then position within page) and is stable across reprocessing of the
// same document.
func (e *Extractor) Extract(pages []models.PageText, opts Options) []models.CandidateEvent {
	var events []models.CandidateEvent
	row := 0

	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		lines := strings.Split(page.Text, "\n")
		for i, line := range lines {
			phrase, strength, ok := e.vocab.Match(line, opts.Fuzzy, e.cfg.FuzzyMinSimilarity)
			if !ok {
				continue
			}

			rawTime, clarity := findTimestamp(line)
			if rawTime == "" {
				// Some SoF layouts put the time on the line(s) below the
				// event description.
				rawTime, clarity = e.lookAhead(lines, i)
			}
			if rawTime == "" {
				continue
			}

			row++
			events = append(events, models.CandidateEvent{
				EventName:   phrase.Canonical,
				RawTimeText: rawTime,
				Page:        page.Page,
				RowIndex:    row,
				Confidence:  clamp(strength * clarity * page.Confidence),
				PairKey:     phrase.PairKey,
				PairRole:    phrase.PairRole,
			})
		}
	}
	return events
}

// lookAhead scans up to WindowLines lines past the phrase line for a
// timestamp, stopping early if a later line matches another event phrase
// (its timestamp belongs to that event, not this one).
func (e *Extractor) lookAhead(lines []string, from int) (string, float64) {
	for j := from + 1; j <= from+e.cfg.WindowLines && j < len(lines); j++ {
		if _, _, hit := e.vocab.Match(lines[j], false, 0); hit {
			return "", 0
		}
		if raw, clarity := findTimestamp(lines[j]); raw != "" {
			return raw, clarity
		}
	}
	return "", 0
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
