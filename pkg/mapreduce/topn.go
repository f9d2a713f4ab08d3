package mapreduce

import (
	"fmt"
	"sort"
)

type nameCount struct {
	Name  string
	Count int
}

func sortedCounts(counts map[string]int) []nameCount {
	ss := make([]nameCount, 0, len(counts))
	for k, v := range counts {
		ss = append(ss, nameCount{k, v})
	}

	// Ties break alphabetically so batch summaries are stable across runs.
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Count != ss[j].Count {
			return ss[i].Count > ss[j].Count
		}
		return ss[i].Name < ss[j].Name
	})

	return ss
}

// TopEvents returns the top N entries from aggregated event counts as
// formatted strings, e.g. "Loading Commenced:12".
func TopEvents(counts map[string]int, n int) []string {
	ss := sortedCounts(counts)

	limit := n
	if len(ss) < n {
		limit = len(ss)
	}
	if limit < 0 {
		limit = 0
	}

	formatted := make([]string, limit)
	for i := 0; i < limit; i++ {
		formatted[i] = fmt.Sprintf("%s:%d", ss[i].Name, ss[i].Count)
	}

	return formatted
}

// PrintTopEvents prints the top N entries in a numbered list format.
func PrintTopEvents(counts map[string]int, n int) {
	ss := sortedCounts(counts)

	limit := n
	if len(ss) < n {
		limit = len(ss)
	}
	if limit < 0 {
		limit = 0
	}

	for i := 0; i < limit; i++ {
		fmt.Printf("%d. %s: %d\n", i+1, ss[i].Name, ss[i].Count)
	}
}
