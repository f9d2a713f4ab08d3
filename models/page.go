package models

import "strings"

// ExtractionMethod records how a page's text was obtained. OCR text has
// systematically lower reliability, so the method is tracked per page and
// depresses downstream event confidence.
type ExtractionMethod string

const (
	ExtractionNative ExtractionMethod = "native"
	ExtractionOCR    ExtractionMethod = "ocr"
	// ExtractionNone marks a page whose native text failed the density check
	// while OCR was disabled: empty text, zero confidence.
	ExtractionNone ExtractionMethod = "none"
)

// PageText is one page of extracted document text. Page numbers are
// contiguous starting at 1.
type PageText struct {
	Page       int              `json:"page"`
	Text       string           `json:"text"`
	Method     ExtractionMethod `json:"method"`
	Confidence float64          `json:"confidence"`
}

// ToPlainText concatenates readable text from all pages.
func ToPlainText(pages []PageText) string {
	var sb strings.Builder
	for _, p := range pages {
		sb.WriteString(p.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
