package process

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/loader"
	"github.com/dtnitsch/sof-extractor/pkg/normalizer"
	"github.com/dtnitsch/sof-extractor/pkg/ocr"
	"github.com/dtnitsch/sof-extractor/pkg/pipeline"
)

// ParseModeFlag validates the --mode flag. An empty value defaults to
// accuracy mode.
func ParseModeFlag(mode string) (models.Mode, error) {
	if mode == "" {
		return models.ModeAccuracy, nil
	}
	m := models.Mode(strings.ToLower(strings.TrimSpace(mode)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q (expected %q or %q)", mode, models.ModeCostSaving, models.ModeAccuracy)
	}
	return m, nil
}

// ClassifyError maps a processing error onto the stable error taxonomy
// recorded in session results and failure files.
func ClassifyError(err error) string {
	switch {
	case errors.Is(err, loader.ErrUnsupportedFormat):
		return "UnsupportedFormat"
	case errors.Is(err, loader.ErrCorruptDocument):
		return "CorruptDocument"
	case errors.Is(err, ocr.ErrUnavailable):
		return "OcrUnavailable"
	case errors.Is(err, normalizer.ErrInvalidTimezone):
		return "InvalidTimezone"
	case errors.Is(err, pipeline.ErrProcessingTimeout):
		return "ProcessingTimeout"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return "ProcessingTimeout"
	case strings.Contains(msg, "connection") || strings.Contains(msg, "network") || strings.Contains(msg, "http"):
		return "FetchError"
	case strings.Contains(msg, "no such file") || strings.Contains(msg, "permission"):
		return "ReadError"
	default:
		return "ProcessingError"
	}
}
