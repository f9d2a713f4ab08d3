package process

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/analytics"
	"github.com/dtnitsch/sof-extractor/pkg/mapreduce"
	"gopkg.in/yaml.v3"
)

func BuildSummary(o Outcome, lowConfidenceThreshold float64) ResultSummary {
	summary := ResultSummary{
		Source:      o.Source,
		ContentHash: o.ContentHash,
	}
	if o.Error != nil {
		summary.Status = "failed"
		summary.Error = o.Error.Error()
		summary.ErrorType = o.ErrorType
		return summary
	}

	summary.Status = "success"
	summary.EventCount = o.Result.Stats.TotalEvents
	summary.AnomalyCount = len(o.Result.Anomalies)
	summary.LowConfidenceCount = o.Result.Stats.LowConfidenceCount
	summary.TextLength = o.Result.Stats.TextLength
	summary.PageCount = len(o.Pages)
	summary.OCRPages = countOCRPages(o.Pages)
	summary.FromCache = o.FromCache
	summary.ConfidenceDist = ComputeConfidenceDist(o.Result, lowConfidenceThreshold)
	summary.AnomalyDist = (&analytics.Analytics{}).AnomalyFrequency(o.Result.Anomalies)
	if o.EventCounts != nil {
		summary.TopEvents = mapreduce.TopEvents(o.EventCounts, 10)
	}
	return summary
}

// buildSessionSummary creates the session file entry for one document.
func buildSessionSummary(o Outcome, mode models.Mode) SessionSummary {
	entry := SessionSummary{
		Source:      o.Source,
		DocumentID:  o.DocumentID,
		ContentHash: o.ContentHash,
		Mode:        string(mode),
	}

	if o.Error != nil {
		entry.Status = "failed"
		entry.Error = o.Error.Error()
		return entry
	}

	entry.Status = "success"
	entry.EventCount = o.Result.Stats.TotalEvents
	entry.AnomalyCount = len(o.Result.Anomalies)
	entry.LowConfidenceCount = o.Result.Stats.LowConfidenceCount
	entry.TextLength = o.Result.Stats.TextLength
	entry.PageCount = len(o.Pages)
	entry.OCRPages = countOCRPages(o.Pages)
	entry.FromCache = o.FromCache
	if o.EventCounts != nil {
		entry.TopEvents = mapreduce.TopEvents(o.EventCounts, 10)
	}
	return entry
}

// WriteSummaryToSession writes all document entries to summary.yaml in the
// session directory.
func WriteSummaryToSession(outcomes []Outcome, mode models.Mode, sessionDir string) error {
	entries := make([]SessionSummary, 0, len(outcomes))
	for _, o := range outcomes {
		entries = append(entries, buildSessionSummary(o, mode))
	}

	outputPath := filepath.Join(sessionDir, "summary.yaml")

	yamlBytes, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal summary to YAML: %w", err)
	}

	if err := os.WriteFile(outputPath, yamlBytes, 0600); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}

	return nil
}

// ComputeConfidenceDist buckets a result's events by extraction confidence.
// The high bucket starts at the configured low-confidence threshold, so the
// distribution agrees with the low_confidence_count in stats when the
// threshold is tuned. A non-positive threshold falls back to the default.
func ComputeConfidenceDist(result *models.ProcessingResult, lowConfidenceThreshold float64) map[string]int {
	if lowConfidenceThreshold <= 0 {
		lowConfidenceThreshold = models.DefaultPipelineConfig().LowConfidenceThreshold
	}
	dist := map[string]int{"high": 0, "medium": 0, "low": 0}
	if result == nil {
		return dist
	}
	for _, e := range result.Events {
		switch {
		case e.Confidence >= lowConfidenceThreshold:
			dist["high"]++
		case e.Confidence >= 0.6:
			dist["medium"]++
		default:
			dist["low"]++
		}
	}
	return dist
}

func countOCRPages(pages []models.PageText) int {
	n := 0
	for _, p := range pages {
		if p.Method == models.ExtractionOCR {
			n++
		}
	}
	return n
}

// collectFailedDocuments extracts failures from outcomes.
func collectFailedDocuments(outcomes []Outcome) []FailedDocument {
	var failed []FailedDocument

	for _, o := range outcomes {
		if o.Error == nil {
			continue
		}
		failed = append(failed, FailedDocument{
			Source:       o.Source,
			ErrorType:    o.ErrorType,
			ErrorMessage: o.Error.Error(),
		})
	}

	return failed
}

// WriteFailedToSession writes failures to failed-documents.yaml in the
// session directory. No failures, no file.
func WriteFailedToSession(failed []FailedDocument, sessionDir string) error {
	if len(failed) == 0 {
		return nil
	}

	outputPath := filepath.Join(sessionDir, "failed-documents.yaml")

	yamlBytes, err := yaml.Marshal(&FailedDocuments{FailedDocuments: failed})
	if err != nil {
		return fmt.Errorf("failed to marshal failed documents to YAML: %w", err)
	}

	if err := os.WriteFile(outputPath, yamlBytes, 0600); err != nil {
		return fmt.Errorf("failed to write failed documents file: %w", err)
	}

	return nil
}
