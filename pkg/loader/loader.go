// Package loader turns raw document bytes into a page-indexed stream of
// extracted text. Native text layers are preferred; pages without one are
// routed to OCR when enabled.
package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/ocr"
)

var (
	// ErrUnsupportedFormat means the declared type is not in the accepted set.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrCorruptDocument means the container could not be parsed at all.
	ErrCorruptDocument = errors.New("corrupt document")
)

// Loader extracts per-page text from supported document formats.
type Loader struct {
	cfg    models.PipelineConfig
	engine ocr.Engine
}

// New creates a Loader. engine may be nil when OCR is not deployed; loads
// that need OCR will then fail with ocr.ErrUnavailable.
func New(cfg models.PipelineConfig, engine ocr.Engine) *Loader {
	return &Loader{cfg: cfg, engine: engine}
}

// Load extracts text from a document. declaredType is the lowercase format
// ("pdf", "docx", ...) as declared by the caller, typically from the file
// extension. Page numbers in the result are contiguous starting at 1.
func (l *Loader) Load(ctx context.Context, data []byte, declaredType string, enableOCR bool) ([]models.PageText, error) {
	format := strings.ToLower(strings.TrimPrefix(declaredType, "."))
	if !l.cfg.Accepts(format) {
		return nil, fmt.Errorf("%w: %q (accepted: %s)", ErrUnsupportedFormat, format, strings.Join(l.cfg.AcceptedFormats, ", "))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorruptDocument)
	}

	var raw []string
	var err error
	switch format {
	case "pdf":
		raw, err = readPDF(data)
	case "docx":
		raw, err = readDOCX(data)
	case "txt":
		raw, err = readText(data)
	case "html":
		raw, err = readHTML(data)
	default:
		// Format was in the accepted set but no reader exists for it.
		return nil, fmt.Errorf("%w: no reader for %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	pages := make([]models.PageText, 0, len(raw))
	for i, text := range raw {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := l.gatePage(ctx, data, format, i+1, text, enableOCR)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// gatePage applies the native-density check and routes failing pages to
// OCR. A scanned page often carries a stray watermark or header string in
// its text layer; the character minimum keeps such pages out of the
// "native" bucket.
func (l *Loader) gatePage(ctx context.Context, data []byte, format string, page int, text string, enableOCR bool) (models.PageText, error) {
	compact := strings.Join(strings.Fields(text), " ")
	if len(compact) >= l.cfg.MinNativeChars {
		return models.PageText{Page: page, Text: text, Method: models.ExtractionNative, Confidence: 1.0}, nil
	}

	if !enableOCR {
		return models.PageText{Page: page, Method: models.ExtractionNone, Confidence: 0}, nil
	}

	if l.engine != nil && !l.engine.Supports(format) {
		// The engine cannot rasterize this container at all. That is a
		// property of the format, not an outage, so the page degrades the
		// same way it would with OCR off.
		return models.PageText{Page: page, Method: models.ExtractionNone, Confidence: 0}, nil
	}

	res, err := l.runOCR(ctx, data, format, page)
	if errors.Is(err, ocr.ErrUnavailable) {
		// OCR was requested but cannot run at all: fatal for the run.
		return models.PageText{}, err
	}
	if err != nil {
		// OCR ran but failed on this page: degrade rather than abort, the
		// remaining pages may still yield events.
		return models.PageText{Page: page, Method: models.ExtractionOCR, Confidence: 0}, nil
	}
	conf := res.Confidence
	if conf > l.cfg.OCRConfidenceCeiling {
		conf = l.cfg.OCRConfidenceCeiling
	}
	return models.PageText{Page: page, Text: res.Text, Method: models.ExtractionOCR, Confidence: conf}, nil
}

// runOCR invokes the engine, surfacing availability as ocr.ErrUnavailable.
func (l *Loader) runOCR(ctx context.Context, data []byte, format string, page int) (ocr.PageResult, error) {
	if l.engine == nil || !l.engine.Available() {
		return ocr.PageResult{}, ocr.ErrUnavailable
	}
	return l.engine.ExtractPage(ctx, data, format, page)
}

// CheckOCR verifies up front that OCR can run, so a document full of
// scanned pages fails fast with the availability error instead of
// producing a result of all-empty pages.
func (l *Loader) CheckOCR() error {
	if l.engine == nil || !l.engine.Available() {
		return ocr.ErrUnavailable
	}
	return nil
}
