package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/mapreduce"
)

// ProcessOutcome represents the result of processing a single document.
// This is passed from the process action to avoid circular dependencies.
type ProcessOutcome struct {
	Source      string
	ContentHash string
	Result      *models.ProcessingResult
	Error       error
	ErrorType   string
	FromCache   bool
	EventCounts map[string]int
}

// GenerateSummary creates a summary manifest file with aggregated batch
// results. Returns the path to the generated manifest file.
func GenerateSummary(outcomes []ProcessOutcome, aggregateEvents map[string]int, baseDir string) (string, error) {
	m := SummaryManifest{
		GeneratedAt:     time.Now().Format(time.RFC3339),
		TotalDocuments:  len(outcomes),
		AggregateEvents: mapreduce.TopEvents(aggregateEvents, 25),
	}

	for _, outcome := range outcomes {
		summary := DocumentSummary{
			Source:      outcome.Source,
			ContentHash: outcome.ContentHash,
		}

		if outcome.Error != nil {
			m.Failed++
			summary.Status = "error"
			summary.ErrorType = outcome.ErrorType
			summary.ErrorMessage = outcome.Error.Error()
		} else {
			m.Successful++
			summary.Status = "success"

			if outcome.Result != nil {
				summary.EventCount = outcome.Result.Stats.TotalEvents
				summary.AnomalyCount = len(outcome.Result.Anomalies)
				summary.LowConfidenceCount = outcome.Result.Stats.LowConfidenceCount
				summary.TextLength = outcome.Result.Stats.TextLength
			}
			summary.FromCache = outcome.FromCache

			if outcome.EventCounts != nil {
				summary.TopEvents = mapreduce.TopEvents(outcome.EventCounts, 10)
			}
		}

		m.Results = append(m.Results, summary)
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return "", fmt.Errorf("error creating results directory: %w", err)
	}

	manifestPath := filepath.Join(baseDir, fmt.Sprintf("summary-%s.json", time.Now().Format("2006-01-02")))
	manifestData, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshalling manifest: %w", err)
	}

	if err := os.WriteFile(manifestPath, manifestData, 0644); err != nil {
		return "", fmt.Errorf("error saving manifest: %w", err)
	}

	return manifestPath, nil
}
