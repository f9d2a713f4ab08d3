package mapreduce

import (
	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/analytics"
)

// Map generates an event frequency map for a single document's result.
func Map(result *models.ProcessingResult, a *analytics.Analytics) map[string]int {
	return a.EventFrequency(result.Events)
}

// MapAnomalies generates an anomaly-kind frequency map for a single result.
func MapAnomalies(result *models.ProcessingResult, a *analytics.Analytics) map[string]int {
	return a.AnomalyFrequency(result.Anomalies)
}

// Reduce aggregates a slice of frequency maps into a single map.
func Reduce(intermediate []map[string]int) map[string]int {
	finalResults := make(map[string]int)

	for _, counts := range intermediate {
		for name, count := range counts {
			finalResults[name] += count
		}
	}

	return finalResults
}
