package process

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dtnitsch/sof-extractor/internal/common"
	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/analytics"
	"github.com/dtnitsch/sof-extractor/pkg/artifact_manager"
	"github.com/dtnitsch/sof-extractor/pkg/cache"
	"github.com/dtnitsch/sof-extractor/pkg/caching"
	"github.com/dtnitsch/sof-extractor/pkg/db"
	"github.com/dtnitsch/sof-extractor/pkg/fetcher"
	"github.com/dtnitsch/sof-extractor/pkg/mapreduce"
	"github.com/dtnitsch/sof-extractor/pkg/pipeline"
)

// Deps bundles the shared collaborators the worker pool draws on. The
// cache fields may be nil; workers degrade to direct processing.
type Deps struct {
	Pipeline      *pipeline.Pipeline
	Database      *db.DB
	Manager       *artifact_manager.Manager
	ResultCache   *cache.ResultCache
	DownloadCache *caching.Cache
	Fetcher       *fetcher.Fetcher
}

func run(ctx context.Context, logger *slog.Logger, config *models.ProcessConfig, deps Deps) ([]Outcome, map[string]int, error) {
	a := &analytics.Analytics{}

	jobCount := len(config.Files) + len(config.URLs)
	logger.Info("Starting concurrent processing phase", "document_count", jobCount, "workers", config.WorkerCount, "mode", config.Mode)

	var wg sync.WaitGroup
	jobs := make(chan Job, jobCount)
	outcomes := make(chan Outcome, jobCount)

	for w := 1; w <= config.WorkerCount; w++ {
		wg.Add(1)
		go worker(ctx, w, logger, config, deps, a, &wg, jobs, outcomes)
	}

	for _, f := range config.Files {
		jobs <- Job{Source: f}
	}
	for _, u := range config.URLs {
		jobs <- Job{Source: u, IsURL: true}
	}
	close(jobs)

	wg.Wait()
	close(outcomes)
	logger.Info("All processing workers finished")

	allOutcomes := make([]Outcome, 0, jobCount)
	var runErr error
	for outcome := range outcomes {
		allOutcomes = append(allOutcomes, outcome)
		if outcome.Error != nil {
			runErr = fmt.Errorf("one or more documents failed")
		}
	}

	logger.Info("Aggregating event counts")
	intermediate := make([]map[string]int, 0, len(allOutcomes))
	for _, outcome := range allOutcomes {
		if outcome.EventCounts != nil {
			intermediate = append(intermediate, outcome.EventCounts)
		}
	}
	aggregateEvents := mapreduce.Reduce(intermediate)

	return allOutcomes, aggregateEvents, runErr
}

func worker(ctx context.Context, id int, logger *slog.Logger, config *models.ProcessConfig, deps Deps, a *analytics.Analytics, wg *sync.WaitGroup, jobs <-chan Job, outcomes chan<- Outcome) {
	defer wg.Done()
	for job := range jobs {
		logger.Info("Worker started job", "worker_id", id, "source", job.Source)
		outcomes <- processJob(ctx, id, logger, config, deps, a, job)
	}
}

func processJob(ctx context.Context, id int, logger *slog.Logger, config *models.ProcessConfig, deps Deps, a *analytics.Analytics, job Job) Outcome {
	outcome := Outcome{Source: job.Source}

	data, format, err := resolveSource(ctx, logger, deps, job)
	if err != nil {
		logger.Error("Error reading document", "worker_id", id, "source", job.Source, "error", err)
		outcome.Error = err
		outcome.ErrorType = ClassifyError(err)
		return outcome
	}
	outcome.Format = format
	outcome.ContentHash = common.ContentHash(data)

	req := pipeline.Request{
		FileBytes:    data,
		DeclaredType: format,
		Mode:         config.Mode,
		PortTimezone: config.PortTZ,
		EnableOCR:    config.EnableOCR,
	}

	var result *models.ProcessingResult
	var pages []models.PageText
	fromCache := false

	if deps.ResultCache != nil {
		result, fromCache, err = deps.ResultCache.GetOrProcess(ctx, data, func(ctx context.Context) (*models.ProcessingResult, error) {
			var procErr error
			result, pages, procErr = deps.Pipeline.ProcessDocumentPages(ctx, req)
			return result, procErr
		})
	} else {
		result, pages, err = deps.Pipeline.ProcessDocumentPages(ctx, req)
	}
	if err != nil {
		logger.Error("Error processing document", "worker_id", id, "source", job.Source, "error", err)
		outcome.Error = err
		outcome.ErrorType = ClassifyError(err)
		return outcome
	}

	outcome.Result = result
	outcome.Pages = pages
	outcome.FromCache = fromCache
	outcome.EventCounts = mapreduce.Map(result, a)

	persistOutcome(logger, deps, &outcome)

	logger.Info("Worker finished processing", "worker_id", id, "source", job.Source,
		"events", result.Stats.TotalEvents, "anomalies", len(result.Anomalies), "from_cache", fromCache)
	return outcome
}

// resolveSource produces the document bytes and declared format for a job,
// reading local files directly and URLs through the download cache.
func resolveSource(ctx context.Context, logger *slog.Logger, deps Deps, job Job) ([]byte, string, error) {
	if !job.IsURL {
		data, err := os.ReadFile(filepath.Clean(job.Source))
		if err != nil {
			return nil, "", fmt.Errorf("failed to read file: %w", err)
		}
		format := fetcher.FormatFromPath(job.Source)
		if format == "" {
			return nil, "", fmt.Errorf("could not determine document format for %s", job.Source)
		}
		return data, format, nil
	}

	if deps.DownloadCache != nil {
		if data, ok := deps.DownloadCache.Get(job.Source); ok {
			logger.Info("Document found in download cache", "source", job.Source)
			format := fetcher.FormatFromPath(job.Source)
			if format != "" {
				return data, format, nil
			}
			// Format not derivable from the URL; re-fetch for the header.
		}
	}

	data, format, err := deps.Fetcher.FetchDocument(ctx, job.Source)
	if err != nil {
		return nil, "", err
	}

	if deps.DownloadCache != nil {
		if err := deps.DownloadCache.Set(job.Source, data); err != nil {
			logger.Warn("Failed to cache downloaded document", "source", job.Source, "error", err)
		}
	}

	return data, format, nil
}

// persistOutcome records the processed document in SQLite and the artifact
// store. Persistence failures are logged, not fatal; the in-memory result
// still reaches the caller.
func persistOutcome(logger *slog.Logger, deps Deps, outcome *Outcome) {
	if deps.Database == nil {
		return
	}

	ocrPages := 0
	for _, p := range outcome.Pages {
		if p.Method == models.ExtractionOCR {
			ocrPages++
		}
	}

	docID, err := deps.Database.InsertDocument(outcome.ContentHash, filepath.Base(outcome.Source), outcome.Format, len(outcome.Pages), ocrPages)
	if err != nil {
		logger.Warn("Failed to insert document to DB", "source", outcome.Source, "error", err)
		return
	}
	outcome.DocumentID = docID

	if err := deps.Database.ReplaceDocumentResult(docID, outcome.Result); err != nil {
		logger.Warn("Failed to store result to DB", "source", outcome.Source, "error", err)
	}

	if deps.Manager == nil {
		return
	}

	// Pages are absent on a cache hit; the artifact from the original run
	// is still in place.
	if len(outcome.Pages) > 0 {
		if err := deps.Manager.SetPages(docID, outcome.Pages); err != nil {
			logger.Warn("Failed to store pages artifact", "source", outcome.Source, "error", err)
		}
	}
	if err := deps.Manager.SetResult(docID, outcome.Result); err != nil {
		logger.Warn("Failed to store result artifact", "source", outcome.Source, "error", err)
	}
}
