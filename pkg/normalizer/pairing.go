package normalizer

import "github.com/dtnitsch/sof-extractor/models"

// pairSpans correlates Commenced/Completed style events sharing a
// vocabulary pair key and fills end_time/duration on the start event.
// Pairing is best-effort, not a hard relationship: a start with no
// following end, or a second start opening before the first closed, is
// left unpaired for the detector to flag rather than silently guessed.
//
// candidates and events are parallel slices in the same order.
func pairSpans(candidates []models.CandidateEvent, events []models.NormalizedEvent) {
	// open tracks, per pair key, the index of the latest unmatched start.
	open := make(map[string]int)

	for i, c := range candidates {
		if c.PairKey == "" {
			continue
		}
		switch c.PairRole {
		case "start":
			// A second start before the first closed makes the earlier one
			// ambiguous; drop it from pairing and track the newer start.
			open[c.PairKey] = i
		case "end":
			j, ok := open[c.PairKey]
			if !ok {
				continue
			}
			delete(open, c.PairKey)
			if events[j].Unparsed || events[i].Unparsed {
				continue
			}
			end := events[i].StartTime
			events[j].SetTimes(events[j].StartTime, &end)
		}
	}
}
