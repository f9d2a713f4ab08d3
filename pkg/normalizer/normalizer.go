// Package normalizer resolves raw extracted timestamps against a port
// timezone into canonical UTC instants and correlates start/end spans.
package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/dtnitsch/sof-extractor/models"
)

// ErrInvalidTimezone means the port timezone identifier is not a known
// IANA zone.
var ErrInvalidTimezone = errors.New("invalid timezone")

// Normalizer converts candidate events into normalized UTC events.
type Normalizer struct {
	cfg models.PipelineConfig
}

// New creates a Normalizer.
func New(cfg models.PipelineConfig) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Normalize parses every candidate's raw timestamp and pairs start/end
// spans. A parse failure for one event never fails the batch: the event is
// kept with confidence 0 and the unparsed marker set. The returned slice
// is ordered by row_index.
func (n *Normalizer) Normalize(candidates []models.CandidateEvent, portTimezone string) ([]models.NormalizedEvent, error) {
	loc := time.UTC
	if portTimezone != "" && portTimezone != "UTC" {
		var err error
		loc, err = time.LoadLocation(portTimezone)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, portTimezone)
		}
	}

	events := make([]models.NormalizedEvent, len(candidates))
	for i, c := range candidates {
		ev := models.NormalizedEvent{
			EventName:  c.EventName,
			Page:       c.Page,
			RowIndex:   c.RowIndex,
			Confidence: c.Confidence,
		}
		if t, ok := parseTimestamp(c.RawTimeText, loc); ok {
			ev.SetTimes(t.UTC(), nil)
		} else {
			ev.Unparsed = true
			ev.Confidence = 0
		}
		events[i] = ev
	}

	pairSpans(candidates, events)

	sort.Slice(events, func(i, j int) bool {
		return events[i].RowIndex < events[j].RowIndex
	})
	return events, nil
}

// isoLayouts are tried first; zoned layouts yield absolute instants,
// unzoned ones are interpreted in the port timezone.
var (
	zonedLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04Z07:00",
		"2006-01-02 15:04:05Z07:00",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
)

// parseTimestamp runs the format cascade: ISO-8601 first, then slash dates
// with day-of-month disambiguation, then free-text parsing as a last
// resort. A bare local time without a date cannot be anchored and fails.
func parseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}

	if t, ok := parseSlashDate(raw, loc); ok {
		return t, true
	}

	if hasDateComponent(raw) {
		if t, err := dateparse.ParseIn(raw, loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

var slashParts = regexp.MustCompile(
	`^(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})(?:[,\s]+(\d{1,2})[:.h](\d{2}))?`)

// parseSlashDate resolves DD/MM/YYYY vs MM/DD/YYYY by day-of-month
// validity. When both readings are valid the day-first convention wins;
// SoFs overwhelmingly follow it and the extractor has already lowered the
// clarity score for such matches.
func parseSlashDate(raw string, loc *time.Location) (time.Time, bool) {
	m := slashParts.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}

	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}

	day, month := first, second
	if first <= 12 && second > 12 {
		day, month = second, first
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	hour, minute := 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		if hour > 23 || minute > 59 {
			return time.Time{}, false
		}
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	// Reject normalized overflow like 31/02.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

var dateHints = regexp.MustCompile(`(?i)\d{4}|jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec`)

// hasDateComponent keeps bare clock times out of the free-text parser,
// which would otherwise anchor them to today.
func hasDateComponent(raw string) bool {
	return dateHints.MatchString(raw)
}
