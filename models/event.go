package models

import "time"

// CandidateEvent is a raw extraction hit: a maritime event phrase paired
// with the timestamp-shaped text found near it. Produced by the extractor,
// consumed by the normalizer.
type CandidateEvent struct {
	EventName   string  `json:"event_name"`
	RawTimeText string  `json:"raw_time_text"`
	Page        int     `json:"page"`
	RowIndex    int     `json:"row_index"`
	Confidence  float64 `json:"confidence"`

	// PairKey/PairRole carry the vocabulary correlation hints forward so the
	// normalizer can associate Commenced/Completed spans.
	PairKey  string `json:"-"`
	PairRole string `json:"-"` // "start", "end", or ""
}

// NormalizedEvent is a CandidateEvent whose timestamp has been resolved to
// UTC. Immutable after normalization; human corrections go through the same
// validation as initial construction.
type NormalizedEvent struct {
	EventName       string     `json:"event_name"`
	StartTime       time.Time  `json:"-"`
	EndTime         *time.Time `json:"-"`
	StartTimeISO    string     `json:"start_time_iso"`
	EndTimeISO      *string    `json:"end_time_iso"`
	DurationMinutes *int       `json:"duration_minutes"`
	Page            int        `json:"page"`
	RowIndex        int        `json:"row_index"`
	Confidence      float64    `json:"confidence"`

	// Unparsed marks an event whose raw timestamp survived no parse attempt.
	// StartTime is the zero value and confidence is forced to 0.
	Unparsed bool `json:"unparsed,omitempty"`
}

// SetTimes fills both the time.Time fields and their ISO string mirrors.
// The string mirrors exist because the original wire shape exposes
// start_time_iso / end_time_iso rather than nested time objects.
func (e *NormalizedEvent) SetTimes(start time.Time, end *time.Time) {
	e.StartTime = start
	e.StartTimeISO = start.UTC().Format(time.RFC3339)
	if end != nil {
		u := end.UTC()
		e.EndTime = &u
		iso := u.Format(time.RFC3339)
		e.EndTimeISO = &iso
		mins := int(u.Sub(start).Round(time.Minute) / time.Minute)
		e.DurationMinutes = &mins
	}
}

// HydrateTimes rebuilds the time.Time fields from their ISO mirrors after
// JSON decoding (the mirrors are the only time fields on the wire).
func (e *NormalizedEvent) HydrateTimes() error {
	if e.Unparsed || e.StartTimeISO == "" {
		return nil
	}
	start, err := time.Parse(time.RFC3339, e.StartTimeISO)
	if err != nil {
		return err
	}
	e.StartTime = start
	if e.EndTimeISO != nil {
		end, err := time.Parse(time.RFC3339, *e.EndTimeISO)
		if err != nil {
			return err
		}
		e.EndTime = &end
	}
	return nil
}

// AnomalyKind enumerates the detector's rule families.
type AnomalyKind string

const (
	AnomalyTimeGap          AnomalyKind = "Time Gap"
	AnomalyOrderViolation   AnomalyKind = "Order Violation"
	AnomalyLowConfidence    AnomalyKind = "Low Confidence"
	AnomalyNegativeDuration AnomalyKind = "Negative Duration"
	AnomalyMissingPair      AnomalyKind = "Missing Pair"
)

// Anomaly is a derived finding over the normalized event set. Never mutated.
type Anomaly struct {
	Kind     AnomalyKind `json:"type"`
	Message  string      `json:"message"`
	RowIndex int         `json:"row_index"`
}

// ProcessingStats summarizes a single document run.
type ProcessingStats struct {
	TotalEvents        int    `json:"total_events"`
	LowConfidenceCount int    `json:"low_confidence_count"`
	TextLength         int    `json:"text_length"`
	Mode               string `json:"mode"`
}

// ProcessingResult is the atomic response for one submitted document.
// Events are ordered by row_index.
type ProcessingResult struct {
	Events    []NormalizedEvent `json:"events"`
	Stats     ProcessingStats   `json:"stats"`
	Anomalies []Anomaly         `json:"anomalies"`
}
