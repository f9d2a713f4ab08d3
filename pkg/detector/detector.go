// Package detector scans a normalized event sequence for ordering
// violations, implausible gaps, broken spans, and low-confidence
// extractions. Detection is a pure derived view: it always returns,
// possibly empty, and never mutates its input.
package detector

import (
	"fmt"
	"sort"
	"time"

	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/vocabulary"
)

// Config carries every detection threshold. Nothing is hard-coded so the
// detector stays reusable across shipping-line conventions.
type Config struct {
	// LowConfidenceThreshold flags events below it for manual review.
	LowConfidenceThreshold float64
	// MaxGapMinutes maps "from>to" canonical pairs to their plausible gap
	// ceiling; "default" covers pairs without their own entry.
	MaxGapMinutes map[string]int
	// Sequence is the canonical port-call order, e.g. Vessel Arrived →
	// NOR Tendered → Loading Commenced → Loading Completed → Vessel Sailed.
	Sequence []string
	// PairedStarts are event names expected to be closed by a matching
	// completion event.
	PairedStarts []string
}

// ConfigFrom assembles a detector Config from the pipeline configuration
// and the active vocabulary.
func ConfigFrom(cfg models.PipelineConfig, vocab *vocabulary.Vocabulary) Config {
	return Config{
		LowConfidenceThreshold: cfg.LowConfidenceThreshold,
		MaxGapMinutes:          cfg.MaxGapMinutes,
		Sequence:               vocab.Sequence(),
		PairedStarts:           vocab.PairedStarts(),
	}
}

// Detect applies every rule family independently; multiple anomalies may
// reference the same row_index. Output ordering is deterministic
// (row_index, then kind) so repeated runs over the same events are
// idempotent.
func Detect(events []models.NormalizedEvent, cfg Config) []models.Anomaly {
	var out []models.Anomaly
	out = append(out, detectNegativeDurations(events)...)
	out = append(out, detectOrderViolations(events, cfg.Sequence)...)
	out = append(out, detectTimeGaps(events, cfg)...)
	out = append(out, detectLowConfidence(events, cfg.LowConfidenceThreshold)...)
	out = append(out, detectMissingPairs(events, cfg.PairedStarts)...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RowIndex != out[j].RowIndex {
			return out[i].RowIndex < out[j].RowIndex
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

func detectNegativeDurations(events []models.NormalizedEvent) []models.Anomaly {
	var out []models.Anomaly
	for _, e := range events {
		if e.DurationMinutes != nil && *e.DurationMinutes < 0 {
			out = append(out, models.Anomaly{
				Kind:     models.AnomalyNegativeDuration,
				Message:  fmt.Sprintf("%s ends %d minutes before it starts", e.EventName, -*e.DurationMinutes),
				RowIndex: e.RowIndex,
			})
		}
	}
	return out
}

// detectOrderViolations flags pairs of sequenced events whose start times
// invert the canonical order. The anomaly references the event that
// starts earlier than its sequence position allows.
func detectOrderViolations(events []models.NormalizedEvent, sequence []string) []models.Anomaly {
	pos := make(map[string]int, len(sequence))
	for i, name := range sequence {
		pos[name] = i + 1
	}

	var out []models.Anomaly
	for i, a := range events {
		pa, ok := pos[a.EventName]
		if !ok || a.Unparsed {
			continue
		}
		for _, b := range events[i+1:] {
			pb, ok := pos[b.EventName]
			if !ok || b.Unparsed {
				continue
			}
			switch {
			case pa < pb && a.StartTime.After(b.StartTime):
				out = append(out, models.Anomaly{
					Kind:     models.AnomalyOrderViolation,
					Message:  fmt.Sprintf("%s starts before %s, violating the expected port-call order", b.EventName, a.EventName),
					RowIndex: b.RowIndex,
				})
			case pa > pb && b.StartTime.After(a.StartTime):
				out = append(out, models.Anomaly{
					Kind:     models.AnomalyOrderViolation,
					Message:  fmt.Sprintf("%s starts before %s, violating the expected port-call order", a.EventName, b.EventName),
					RowIndex: a.RowIndex,
				})
			}
		}
	}
	return out
}

// detectTimeGaps checks sequence-adjacent event pairs against their
// configured maximum gap. Thresholds are per pair type: arrival→NOR is
// expected to be short while a loading window can span days.
func detectTimeGaps(events []models.NormalizedEvent, cfg Config) []models.Anomaly {
	byName := make(map[string]models.NormalizedEvent)
	for _, e := range events {
		if e.Unparsed {
			continue
		}
		if prev, ok := byName[e.EventName]; !ok || e.StartTime.Before(prev.StartTime) {
			byName[e.EventName] = e
		}
	}

	var out []models.Anomaly
	for i := 0; i+1 < len(cfg.Sequence); i++ {
		from, ok := byName[cfg.Sequence[i]]
		if !ok {
			continue
		}
		to, ok := byName[cfg.Sequence[i+1]]
		if !ok {
			continue
		}
		maxGap := maxGapFor(cfg.MaxGapMinutes, from.EventName, to.EventName)
		if maxGap <= 0 {
			continue
		}
		// Measure from the end of the earlier event when it has one.
		fromTime := from.StartTime
		if from.EndTime != nil {
			fromTime = *from.EndTime
		}
		if gap := to.StartTime.Sub(fromTime); gap > maxGap {
			out = append(out, models.Anomaly{
				Kind: models.AnomalyTimeGap,
				Message: fmt.Sprintf("%s between %s and %s exceeds the expected maximum of %s",
					gap.Round(time.Minute), from.EventName, to.EventName, maxGap),
				RowIndex: to.RowIndex,
			})
		}
	}
	return out
}

func detectLowConfidence(events []models.NormalizedEvent, threshold float64) []models.Anomaly {
	var out []models.Anomaly
	for _, e := range events {
		if e.Confidence < threshold {
			out = append(out, models.Anomaly{
				Kind:     models.AnomalyLowConfidence,
				Message:  fmt.Sprintf("%s extracted with confidence %.2f, below the %.2f review threshold", e.EventName, e.Confidence, threshold),
				RowIndex: e.RowIndex,
			})
		}
	}
	return out
}

// detectMissingPairs flags span-opening events that never closed. This
// also covers ambiguous pairing: when two starts compete for one end the
// normalizer leaves the superseded start unpaired.
func detectMissingPairs(events []models.NormalizedEvent, pairedStarts []string) []models.Anomaly {
	starts := make(map[string]struct{}, len(pairedStarts))
	for _, name := range pairedStarts {
		starts[name] = struct{}{}
	}

	var out []models.Anomaly
	for _, e := range events {
		if _, ok := starts[e.EventName]; !ok || e.Unparsed {
			continue
		}
		if e.EndTime == nil {
			out = append(out, models.Anomaly{
				Kind:     models.AnomalyMissingPair,
				Message:  fmt.Sprintf("%s has no matching completion event", e.EventName),
				RowIndex: e.RowIndex,
			})
		}
	}
	return out
}

func maxGapFor(gaps map[string]int, from, to string) time.Duration {
	if m, ok := gaps[from+">"+to]; ok {
		return time.Duration(m) * time.Minute
	}
	if m, ok := gaps["default"]; ok {
		return time.Duration(m) * time.Minute
	}
	return 0
}
