// Package ocr defines the OCR engine contract used by the document loader
// for pages without a usable native text layer.
package ocr

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when OCR is requested but no engine can run,
// e.g. the tesseract binary is not installed.
var ErrUnavailable = errors.New("ocr engine unavailable")

// PageResult is recognized text for one page.
type PageResult struct {
	Page       int
	Text       string
	Confidence float64
}

// Engine recognizes text from scanned document pages. Implementations must
// be safe for concurrent use across independent document runs.
type Engine interface {
	Name() string
	// Available reports whether the engine can run in this environment.
	Available() bool
	// Supports reports whether the engine can process pages of the given
	// format. A format outside this set is not an availability problem;
	// the loader treats such pages as if OCR were off.
	Supports(format string) bool
	// ExtractPage recognizes text from one page of the document bytes.
	// Page numbers start at 1.
	ExtractPage(ctx context.Context, data []byte, format string, page int) (PageResult, error)
}
