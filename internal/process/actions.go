package process

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dtnitsch/sof-extractor/internal/common"
	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/artifact_manager"
	"github.com/dtnitsch/sof-extractor/pkg/cache"
	"github.com/dtnitsch/sof-extractor/pkg/caching"
	"github.com/dtnitsch/sof-extractor/pkg/db"
	"github.com/dtnitsch/sof-extractor/pkg/fetcher"
	"github.com/dtnitsch/sof-extractor/pkg/manifest"
	"github.com/dtnitsch/sof-extractor/pkg/mapreduce"
	"github.com/dtnitsch/sof-extractor/pkg/ocr"
	"github.com/dtnitsch/sof-extractor/pkg/pipeline"
	"github.com/dtnitsch/sof-extractor/pkg/session"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func ProcessAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	startTime := time.Now()
	finalOutput := &FinalOutput{}

	maxAge, err := time.ParseDuration(c.String("max-age"))
	if err != nil {
		logger.Error("invalid max-age duration", "error", err)
		os.Exit(2)
	}

	outputDir := c.String("output-dir")
	manager, err := artifact_manager.NewManager(outputDir, maxAge)
	if err != nil {
		logger.Error("failed to initialize artifact manager", "error", err)
		os.Exit(2)
	}

	database, err := openDatabase(c)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	mode, err := ParseModeFlag(c.String("mode"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	config := &models.ProcessConfig{
		WorkerCount: c.Int("workers"),
		Mode:        mode,
		PortTZ:      c.String("port-timezone"),
		EnableOCR:   c.Bool("enable-ocr"),
	}

	if c.IsSet("files") {
		for _, f := range strings.Split(c.String("files"), ",") {
			if trimmed := strings.TrimSpace(f); trimmed != "" {
				config.Files = append(config.Files, trimmed)
			}
		}
	}
	if c.IsSet("urls") {
		rawURLs := strings.Split(c.String("urls"), ",")
		sanitized, invalid := common.SanitizeAndValidateURLs(rawURLs)
		if len(invalid) > 0 {
			fmt.Fprintf(os.Stderr, "Error: %d URL(s) are malformed (even after cleanup):\n", len(invalid))
			for _, badURL := range invalid {
				fmt.Fprintf(os.Stderr, "  - %s\n", badURL)
			}
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Note: URLs are auto-cleaned (whitespace trimmed, trailing punctuation removed, markdown links extracted)")
			os.Exit(1)
		}
		config.URLs = sanitized
	}

	if len(config.Files)+len(config.URLs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No documents provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  sof-extractor process --files "sof1.pdf,sof2.docx"`)
		fmt.Fprintln(os.Stderr, `  sof-extractor process --urls "https://example.com/sof.pdf" --port-timezone "Asia/Singapore"`)
		fmt.Fprintln(os.Stderr, `  sof-extractor process --files sof.pdf --enable-ocr --mode accuracy`)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Need help? Run: sof-extractor process --help")
		os.Exit(1)
	}

	pipelineCfg, err := loadPipelineConfig(c)
	if err != nil {
		logger.Error("failed to load pipeline config", "error", err)
		os.Exit(2)
	}

	var engine ocr.Engine
	if config.EnableOCR {
		engine = ocr.NewTesseract(c.String("ocr-languages"), ocr.NewQualityScorer())
	}

	pipe, err := pipeline.New(pipelineCfg, engine)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(2)
	}

	deps := Deps{
		Pipeline: pipe,
		Database: database,
		Manager:  manager,
		Fetcher:  fetcher.NewFetcher(),
	}

	if addr := c.String("redis"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		deps.ResultCache = cache.New(client, c.Duration("redis-ttl"))
		logger.Info("Result cache enabled", "addr", addr)
	}

	if len(config.URLs) > 0 && !c.Bool("force-fetch") {
		downloadCache, err := caching.NewCache(c.String("download-cache-dir"), maxAge)
		if err != nil {
			logger.Warn("failed to initialize download cache, fetching fresh", "error", err)
		} else {
			deps.DownloadCache = downloadCache
		}
	}

	sources := append(append([]string{}, config.Files...), config.URLs...)

	outcomes, aggregateEvents, runErr := run(c.Context, logger, config, deps)

	stats := Stats{
		TotalDocuments:   len(outcomes),
		TotalTimeSeconds: time.Since(startTime).Seconds(),
		TopEvents:        mapreduce.TopEvents(aggregateEvents, 25),
	}
	for _, o := range outcomes {
		if o.Error != nil {
			stats.Failed++
		} else {
			stats.Successful++
		}
	}

	outputMode := strings.ToLower(c.String("output-mode"))
	switch outputMode {
	case "session":
		if err := writeSession(c, logger, database, config, outcomes, aggregateEvents, stats, sources, outputDir); err != nil {
			return err
		}
	case "summary":
		if err := printSummary(c, finalOutput, outcomes, stats, pipelineCfg.LowConfidenceThreshold, runErr); err != nil {
			logger.Error("failed to marshal final output", "error", err)
			os.Exit(2)
		}
	default:
		printMinimal(finalOutput, outcomes, stats, runErr)
	}

	if stats.Failed == stats.TotalDocuments {
		os.Exit(2)
	}
	if stats.Failed > 0 {
		os.Exit(1)
	}

	return nil
}

// writeSession persists the batch as a session: SQLite rows, the session
// directory with YAML summaries, the index, and the batch manifest.
func writeSession(c *cli.Context, logger *slog.Logger, database *db.DB, config *models.ProcessConfig, outcomes []Outcome, aggregateEvents map[string]int, stats Stats, sources []string, outputDir string) error {
	sessionID, err := database.CreateSession(len(sources), string(config.Mode), config.PortTZ)
	if err != nil {
		logger.Error("failed to create session", "error", err)
		os.Exit(2)
	}

	for _, o := range outcomes {
		doc := db.SessionDocument{
			SessionID: sessionID,
			Source:    o.Source,
			Status:    db.StatusSuccess,
		}
		if o.DocumentID > 0 {
			doc.DocumentID.Int64 = o.DocumentID
			doc.DocumentID.Valid = true
		}
		if o.Error != nil {
			doc.Status = db.StatusFailed
			doc.ErrorType = o.ErrorType
			doc.ErrorMessage = o.Error.Error()
		} else {
			doc.EventCount = o.Result.Stats.TotalEvents
			doc.AnomalyCount = len(o.Result.Anomalies)
			doc.LowConfidenceCount = o.Result.Stats.LowConfidenceCount
		}
		if err := database.InsertSessionDocument(doc); err != nil {
			logger.Warn("Failed to insert session document", "source", o.Source, "error", err)
		}
	}
	if err := database.UpdateSessionStats(sessionID); err != nil {
		logger.Warn("Failed to update session stats in DB", "error", err)
	}

	dirID := session.GenerateSessionID(sources)
	if err := session.EnsureSessionDir(outputDir, dirID); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := session.GenerateFieldsReference(outputDir); err != nil {
		logger.Warn("Failed to generate FIELDS.yaml reference", "error", err)
	}

	sessionDir := session.GetSessionDir(outputDir, dirID)
	if err := WriteSummaryToSession(outcomes, config.Mode, sessionDir); err != nil {
		return fmt.Errorf("failed to write session summary: %w", err)
	}
	if err := WriteFailedToSession(collectFailedDocuments(outcomes), sessionDir); err != nil {
		logger.Warn("Failed to write failed documents file", "error", err)
	}

	info := session.SessionInfo{
		SessionID:      dirID,
		Created:        time.Now(),
		FileCount:      len(sources),
		Success:        stats.Successful,
		Failed:         stats.Failed,
		Mode:           string(config.Mode),
		PortTimezone:   config.PortTZ,
		SourcesPreview: session.GetSourcesPreview(sources, 3),
	}
	if err := session.UpdateSessionIndex(outputDir, info); err != nil {
		logger.Warn("Failed to update sessions index", "error", err)
	}

	manifestOutcomes := make([]manifest.ProcessOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		manifestOutcomes = append(manifestOutcomes, manifest.ProcessOutcome{
			Source:      o.Source,
			ContentHash: o.ContentHash,
			Result:      o.Result,
			Error:       o.Error,
			ErrorType:   o.ErrorType,
			FromCache:   o.FromCache,
			EventCounts: o.EventCounts,
		})
	}
	if _, err := manifest.GenerateSummary(manifestOutcomes, aggregateEvents, outputDir); err != nil {
		logger.Warn("Failed to write batch manifest", "error", err)
	}

	fmt.Printf("Session %d: %d/%d documents successful\nResults: %s\n", sessionID, stats.Successful, len(sources), sessionDir)

	fmt.Printf("\nCommands:\n")
	fmt.Printf("  sof-extractor sessions show %d     # Session details\n", sessionID)
	fmt.Printf("  sof-extractor db events --max-confidence 0.85  # Events needing review\n")
	fmt.Printf("  sof-extractor reprocess --session %d           # Re-run from stored page text\n", sessionID)

	return nil
}

func printSummary(c *cli.Context, finalOutput *FinalOutput, outcomes []Outcome, stats Stats, lowConfidenceThreshold float64, runErr error) error {
	summaryResults := make([]ResultSummary, 0, len(outcomes))
	for _, o := range outcomes {
		summaryResults = append(summaryResults, BuildSummary(o, lowConfidenceThreshold))
	}
	finalOutput.Results = summaryResults
	finalOutput.Stats = stats
	if runErr != nil {
		finalOutput.Status = "partial_failure"
	} else {
		finalOutput.Status = "success"
	}

	var outputData []byte
	var marshalErr error
	outputFormat := strings.ToLower(c.String("format"))
	summaryVersion := strings.ToLower(c.String("summary-version"))
	summaryFields := c.String("summary-fields")

	if summaryFields != "" {
		isTerse := summaryVersion == "v2"

		var resultsToFilter []interface{}
		if isTerse {
			for _, r := range summaryResults {
				resultsToFilter = append(resultsToFilter, ToTerseResult(r))
			}
		} else {
			for i := range summaryResults {
				resultsToFilter = append(resultsToFilter, summaryResults[i])
			}
		}

		filteredResults := make([]map[string]interface{}, len(resultsToFilter))
		for i, r := range resultsToFilter {
			filteredResults[i] = common.FilterResultFields(r, summaryFields, isTerse)
		}

		customOutput := map[string]interface{}{
			"status":  finalOutput.Status,
			"results": filteredResults,
			"stats":   ToTerseStats(stats),
		}

		if outputFormat == "yaml" {
			outputData, marshalErr = yaml.Marshal(customOutput)
		} else {
			outputData, marshalErr = json.MarshalIndent(customOutput, "", "  ")
		}
	} else if summaryVersion == "v2" {
		terseResults := make([]ResultSummaryTerse, len(summaryResults))
		for i, r := range summaryResults {
			terseResults[i] = ToTerseResult(r)
		}

		terseFinalOutput := FinalOutputTerse{
			Status:  finalOutput.Status,
			Results: terseResults,
			Stats:   ToTerseStats(stats),
		}

		if outputFormat == "yaml" {
			outputData, marshalErr = yaml.Marshal(terseFinalOutput)
		} else {
			outputData, marshalErr = json.MarshalIndent(terseFinalOutput, "", "  ")
		}
	} else {
		if outputFormat == "yaml" {
			outputData, marshalErr = yaml.Marshal(finalOutput)
		} else {
			outputData, marshalErr = json.MarshalIndent(finalOutput, "", "  ")
		}
	}

	if marshalErr != nil {
		return marshalErr
	}
	fmt.Println(string(outputData))
	return nil
}

// printMinimal emits the default compact per-document status list.
func printMinimal(finalOutput *FinalOutput, outcomes []Outcome, stats Stats, runErr error) {
	results := make([]DocumentOutput, 0, len(outcomes))
	for _, o := range outcomes {
		out := DocumentOutput{Source: o.Source, Status: "success"}
		if o.Error != nil {
			out.Status = "failed"
			out.Error = o.Error.Error()
			out.ErrorType = o.ErrorType
		}
		results = append(results, out)
	}
	finalOutput.Results = results
	finalOutput.Stats = stats
	if runErr != nil {
		finalOutput.Status = "partial_failure"
	} else {
		finalOutput.Status = "success"
	}

	outputData, err := json.MarshalIndent(finalOutput, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal output: %v\n", err)
		os.Exit(2)
	}
	fmt.Println(string(outputData))
}

// ReprocessAction re-runs extraction onward from stored page text, so new
// vocabulary, timezone, or threshold settings apply without re-loading or
// re-OCRing documents.
func ReprocessAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	database, err := openDatabase(c)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	// Page artifacts never go stale for reprocessing; the document bytes
	// they were extracted from are immutable.
	manager, err := artifact_manager.NewManager(c.String("output-dir"), 0)
	if err != nil {
		logger.Error("failed to initialize artifact manager", "error", err)
		os.Exit(2)
	}

	mode, err := ParseModeFlag(c.String("mode"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	pipelineCfg, err := loadPipelineConfig(c)
	if err != nil {
		logger.Error("failed to load pipeline config", "error", err)
		os.Exit(2)
	}
	pipe, err := pipeline.New(pipelineCfg, nil)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(2)
	}

	documentIDs, err := resolveReprocessTargets(c, database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(documentIDs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no documents to reprocess")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  sof-extractor reprocess --hashes <content-hash>[,...]`)
		fmt.Fprintln(os.Stderr, `  sof-extractor reprocess --session 5`)
		os.Exit(1)
	}

	logger.Info("Reprocessing documents from stored page text", "count", len(documentIDs), "mode", mode)

	outcomes := make([]Outcome, 0, len(documentIDs))
	for _, docID := range documentIDs {
		outcome := Outcome{Source: fmt.Sprintf("document:%d", docID), DocumentID: docID}

		pages, found, err := manager.GetPages(docID)
		if err != nil || !found {
			logger.Error("Stored page text not found", "document_id", docID, "error", err)
			outcome.Error = fmt.Errorf("no stored page text for document %d", docID)
			outcome.ErrorType = "MissingArtifact"
			outcomes = append(outcomes, outcome)
			continue
		}

		result, err := pipe.ExtractFromPages(c.Context, pages, mode, c.String("port-timezone"))
		if err != nil {
			logger.Error("Failed to reprocess document", "document_id", docID, "error", err)
			outcome.Error = err
			outcome.ErrorType = ClassifyError(err)
			outcomes = append(outcomes, outcome)
			continue
		}

		outcome.Result = result
		outcome.Pages = pages

		if err := database.ReplaceDocumentResult(docID, result); err != nil {
			logger.Warn("Failed to store reprocessed result to DB", "document_id", docID, "error", err)
		}
		if err := manager.SetResult(docID, result); err != nil {
			logger.Warn("Failed to store reprocessed result artifact", "document_id", docID, "error", err)
		}

		outcomes = append(outcomes, outcome)
		logger.Info("Reprocessed document", "document_id", docID, "events", result.Stats.TotalEvents, "anomalies", len(result.Anomalies))
	}

	stats := Stats{TotalDocuments: len(outcomes)}
	var runErr error
	for _, o := range outcomes {
		if o.Error != nil {
			stats.Failed++
			runErr = fmt.Errorf("one or more documents failed")
		} else {
			stats.Successful++
		}
	}

	if err := printSummary(c, &FinalOutput{}, outcomes, stats, pipelineCfg.LowConfidenceThreshold, runErr); err != nil {
		logger.Error("failed to marshal output", "error", err)
		os.Exit(2)
	}

	if stats.Failed == stats.TotalDocuments {
		os.Exit(2)
	}
	if stats.Failed > 0 {
		os.Exit(1)
	}
	return nil
}

// resolveReprocessTargets turns the --hashes or --session flag into
// document IDs.
func resolveReprocessTargets(c *cli.Context, database *db.DB) ([]int64, error) {
	if c.IsSet("hashes") && c.IsSet("session") {
		return nil, fmt.Errorf("cannot use both --hashes and --session flags")
	}

	if c.IsSet("hashes") {
		var ids []int64
		for _, h := range strings.Split(c.String("hashes"), ",") {
			h = strings.TrimSpace(h)
			if h == "" {
				continue
			}
			id, err := database.GetDocumentID(h)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	if c.IsSet("session") {
		docs, err := database.GetSessionDocuments(int64(c.Int("session")))
		if err != nil {
			return nil, err
		}
		var ids []int64
		for _, d := range docs {
			if d.DocumentID.Valid {
				ids = append(ids, d.DocumentID.Int64)
			}
		}
		return ids, nil
	}

	return nil, nil
}

func openDatabase(c *cli.Context) (*db.DB, error) {
	if path := c.String("db"); path != "" {
		return db.OpenPath(path)
	}
	return db.Open()
}

func loadPipelineConfig(c *cli.Context) (models.PipelineConfig, error) {
	if path := c.String("config"); path != "" {
		return models.LoadPipelineConfig(path)
	}
	cfg := models.DefaultPipelineConfig()
	if v := c.String("vocabulary"); v != "" {
		cfg.VocabularyPath = v
	}
	return cfg, nil
}
