// Package pipeline composes the loader, extractor, normalizer, and
// detector stages into one atomic document run.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/detector"
	"github.com/dtnitsch/sof-extractor/pkg/extractor"
	"github.com/dtnitsch/sof-extractor/pkg/loader"
	"github.com/dtnitsch/sof-extractor/pkg/normalizer"
	"github.com/dtnitsch/sof-extractor/pkg/ocr"
	"github.com/dtnitsch/sof-extractor/pkg/vocabulary"
)

// ErrProcessingTimeout means the per-document time budget ran out. The run
// fails whole; no partial result is returned.
var ErrProcessingTimeout = errors.New("processing timeout")

// Request describes one document submission.
type Request struct {
	FileBytes    []byte
	DeclaredType string
	Mode         models.Mode
	PortTimezone string
	EnableOCR    bool
}

// Pipeline is a reusable processing pipeline. It holds no per-run state,
// so one Pipeline may serve concurrent document runs.
type Pipeline struct {
	cfg    models.PipelineConfig
	vocab  *vocabulary.Vocabulary
	loader *loader.Loader
	extr   *extractor.Extractor
	norm   *normalizer.Normalizer
	detCfg detector.Config
}

// New builds a Pipeline from a configuration. engine may be nil when OCR
// is not deployed.
func New(cfg models.PipelineConfig, engine ocr.Engine) (*Pipeline, error) {
	vocab := vocabulary.Default()
	if cfg.VocabularyPath != "" {
		var err error
		vocab, err = vocabulary.Load(cfg.VocabularyPath)
		if err != nil {
			return nil, err
		}
	}
	return &Pipeline{
		cfg:    cfg,
		vocab:  vocab,
		loader: loader.New(cfg, engine),
		extr:   extractor.New(vocab, cfg),
		norm:   normalizer.New(cfg),
		detCfg: detector.ConfigFrom(cfg, vocab),
	}, nil
}

// ProcessDocument runs the full pipeline for one document. The stages are
// strictly sequential; cancellation and the per-document timeout are
// checked between stages, so a stage is a checkpoint rather than
// preemptible mid-flight.
func (p *Pipeline) ProcessDocument(ctx context.Context, req Request) (*models.ProcessingResult, error) {
	result, _, err := p.ProcessDocumentPages(ctx, req)
	return result, err
}

// ProcessDocumentPages is ProcessDocument plus the loaded page text, for
// callers that archive page artifacts to make later reprocessing cheap.
func (p *Pipeline) ProcessDocumentPages(ctx context.Context, req Request) (*models.ProcessingResult, []models.PageText, error) {
	mode := req.Mode
	if mode == "" {
		mode = models.ModeAccuracy
	}
	if !mode.Valid() {
		return nil, nil, fmt.Errorf("unknown processing mode %q", req.Mode)
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	pages, err := p.loader.Load(ctx, req.FileBytes, req.DeclaredType, mode.AllowOCR(req.EnableOCR))
	if err != nil {
		return nil, nil, mapDeadline(err)
	}
	if err := checkpoint(ctx); err != nil {
		return nil, nil, err
	}

	candidates := p.extr.Extract(pages, extractor.Options{Fuzzy: mode.AllowFuzzy()})
	if err := checkpoint(ctx); err != nil {
		return nil, nil, err
	}

	events, err := p.norm.Normalize(candidates, req.PortTimezone)
	if err != nil {
		return nil, nil, err
	}
	if err := checkpoint(ctx); err != nil {
		return nil, nil, err
	}

	anomalies := detector.Detect(events, p.detCfg)

	return &models.ProcessingResult{
		Events:    events,
		Stats:     p.stats(events, pages, mode),
		Anomalies: anomalies,
	}, pages, nil
}

// Revalidate reruns anomaly detection alone, e.g. after a human correction
// pass over the events. Detection is pure, so this is cheap.
func (p *Pipeline) Revalidate(events []models.NormalizedEvent) []models.Anomaly {
	return detector.Detect(events, p.detCfg)
}

// ExtractFromPages reruns extraction onward over already-loaded pages,
// used when reprocessing cached page text under new settings.
func (p *Pipeline) ExtractFromPages(ctx context.Context, pages []models.PageText, mode models.Mode, portTimezone string) (*models.ProcessingResult, error) {
	if mode == "" {
		mode = models.ModeAccuracy
	}
	candidates := p.extr.Extract(pages, extractor.Options{Fuzzy: mode.AllowFuzzy()})
	if err := checkpoint(ctx); err != nil {
		return nil, err
	}
	events, err := p.norm.Normalize(candidates, portTimezone)
	if err != nil {
		return nil, err
	}
	return &models.ProcessingResult{
		Events:    events,
		Stats:     p.stats(events, pages, mode),
		Anomalies: detector.Detect(events, p.detCfg),
	}, nil
}

func (p *Pipeline) stats(events []models.NormalizedEvent, pages []models.PageText, mode models.Mode) models.ProcessingStats {
	low := 0
	for _, e := range events {
		if e.Confidence < p.cfg.LowConfidenceThreshold {
			low++
		}
	}
	return models.ProcessingStats{
		TotalEvents:        len(events),
		LowConfidenceCount: low,
		TextLength:         len(models.ToPlainText(pages)),
		Mode:               string(mode),
	}
}

// checkpoint translates context state into the run's error taxonomy.
func checkpoint(ctx context.Context) error {
	return mapDeadline(ctx.Err())
}

func mapDeadline(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrProcessingTimeout, err)
	}
	return err
}
