package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Tesseract shells out to the tesseract binary, rasterizing PDF pages with
// pdftoppm first. Recognized text confidence comes from the quality scorer
// rather than tesseract's own word confidences, which are noisy on the
// tabular layouts typical of Statements of Facts.
type Tesseract struct {
	// Languages is the tesseract -l argument, e.g. "eng".
	Languages string
	scorer    *QualityScorer
}

// NewTesseract creates the default OCR engine.
func NewTesseract(languages string, scorer *QualityScorer) *Tesseract {
	if languages == "" {
		languages = "eng"
	}
	return &Tesseract{Languages: languages, scorer: scorer}
}

func (t *Tesseract) Name() string { return "tesseract" }

// Supports reports pdf only; the rasterize step has no ppm converter for
// other containers.
func (t *Tesseract) Supports(format string) bool { return format == "pdf" }

// Available checks for both required binaries on PATH.
func (t *Tesseract) Available() bool {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return false
	}
	_, err := exec.LookPath("pdftoppm")
	return err == nil
}

// ExtractPage rasterizes one PDF page and runs tesseract over it.
func (t *Tesseract) ExtractPage(ctx context.Context, data []byte, format string, page int) (PageResult, error) {
	if format != "pdf" {
		return PageResult{}, fmt.Errorf("no rasterizer for format %q", format)
	}
	if !t.Available() {
		return PageResult{}, ErrUnavailable
	}

	tmpDir, err := os.MkdirTemp("", "sof-ocr-")
	if err != nil {
		return PageResult{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(pdfPath, data, 0600); err != nil {
		return PageResult{}, fmt.Errorf("failed to write temp pdf: %w", err)
	}

	imgPath, err := t.rasterize(ctx, pdfPath, tmpDir, page)
	if err != nil {
		return PageResult{}, err
	}

	text, err := t.recognize(ctx, imgPath)
	if err != nil {
		return PageResult{}, err
	}

	conf := 0.5
	if t.scorer != nil {
		conf = t.scorer.Score(text)
	}
	return PageResult{Page: page, Text: text, Confidence: conf}, nil
}

func (t *Tesseract) rasterize(ctx context.Context, pdfPath, outDir string, page int) (string, error) {
	prefix := filepath.Join(outDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-f", fmt.Sprint(page), "-l", fmt.Sprint(page),
		"-r", "200", "-png", pdfPath, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	// pdftoppm pads the page number differently depending on the page count,
	// so glob rather than guessing the suffix.
	matches, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no image for page %d", page)
	}
	return matches[0], nil
}

func (t *Tesseract) recognize(ctx context.Context, imgPath string) (string, error) {
	// --psm 6: assume a uniform block of text, which fits SoF event tables.
	cmd := exec.CommandContext(ctx, "tesseract", imgPath, "stdout", "--psm", "6", "-l", t.Languages)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
