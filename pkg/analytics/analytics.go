package analytics

import (
	"sort"

	"github.com/dtnitsch/sof-extractor/models"
)

type Analytics struct{}

// EventFrequency counts occurrences of each event name in a single
// document's result.
func (a *Analytics) EventFrequency(events []models.NormalizedEvent) map[string]int {
	frequencies := make(map[string]int)
	for _, e := range events {
		frequencies[e.EventName]++
	}
	return frequencies
}

// AnomalyFrequency counts anomalies by kind.
func (a *Analytics) AnomalyFrequency(anomalies []models.Anomaly) map[string]int {
	frequencies := make(map[string]int)
	for _, an := range anomalies {
		frequencies[string(an.Kind)]++
	}
	return frequencies
}

// AverageConfidence returns the mean confidence across parsed events.
// Unparsed events are excluded; their confidence is forced to zero and
// would drag the average without saying anything about extraction quality.
func (a *Analytics) AverageConfidence(events []models.NormalizedEvent) float64 {
	var sum float64
	var n int
	for _, e := range events {
		if e.Unparsed {
			continue
		}
		sum += e.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

type nameCount struct {
	Name  string
	Count int
}

// TopNEvents returns the n most frequent event names, most frequent first.
// Ties break alphabetically so output is stable across runs.
func (a *Analytics) TopNEvents(frequencies map[string]int, n int) []string {
	counts := make([]nameCount, 0, len(frequencies))
	for k, v := range frequencies {
		counts = append(counts, nameCount{k, v})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})

	limit := n
	if len(counts) < n {
		limit = len(counts)
	}

	topN := make([]string, limit)
	for i := 0; i < limit; i++ {
		topN[i] = counts[i].Name
	}

	return topN
}
