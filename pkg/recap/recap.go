// Package recap extracts structured fixture data from free-text
// chartering recaps. Recaps are short and label-heavy ("Laycan:",
// "Demurrage:"), so extraction is labeled-line matching with per-field
// confidence rather than the event pipeline's phrase-window scan.
package recap

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/dtnitsch/sof-extractor/models"
)

// field label aliases, lowercase. First match wins per field.
var fieldLabels = map[string][]string{
	"vessel_name":       {"vessel name", "vessel", "mv", "m/v", "ship"},
	"load_port":         {"load port", "loading port", "loadport", "port of loading"},
	"discharge_port":    {"discharge port", "discharging port", "disport", "port of discharge"},
	"freight_rate":      {"freight rate", "freight"},
	"demurrage_rate":    {"demurrage rate", "demurrage", "dem"},
	"cargo_description": {"cargo description", "cargo", "commodity"},
}

var (
	mvPattern = regexp.MustCompile(`(?i)\b(?:MV|M/V)\s+([A-Z][A-Z0-9 \-']{2,40})`)
	// "Laycan: 2024-02-01 / 2024-02-03". The separator needs surrounding
	// whitespace so hyphens inside ISO dates do not split the range.
	laycanRangePattern = regexp.MustCompile(`(?i)laycan[:\s]+(.+?)\s+(?:-|/|to|–)\s+(.+)$`)
)

// Extract parses a free-text fixture recap. Missing fields stay empty;
// FieldConfidence carries a score for every field that was found.
func Extract(text string) models.RecapData {
	data := models.RecapData{FieldConfidence: make(map[string]float64)}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var inTerms bool

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			inTerms = false
			continue
		}

		lower := strings.ToLower(line)

		// A terms heading opens a bullet block collected verbatim.
		if strings.HasPrefix(lower, "special terms") || strings.HasPrefix(lower, "terms") || strings.HasPrefix(lower, "clauses") {
			inTerms = true
			if rest := valueAfterLabel(line); rest != "" {
				data.SpecialTerms = append(data.SpecialTerms, rest)
				data.FieldConfidence["special_terms"] = 0.9
			}
			continue
		}
		if inTerms {
			if term := strings.TrimLeft(line, "-* \t"); term != "" {
				data.SpecialTerms = append(data.SpecialTerms, term)
				data.FieldConfidence["special_terms"] = 0.9
			}
			continue
		}

		if m := laycanRangePattern.FindStringSubmatch(line); m != nil {
			start, startOK := parseRecapDate(strings.TrimSpace(m[1]))
			end, endOK := parseRecapDate(strings.TrimSpace(m[2]))
			if startOK {
				data.LaycanStartISO = start.UTC().Format(time.RFC3339)
				data.FieldConfidence["laycan_start_iso"] = 0.85
			}
			if endOK {
				// The laycan window closes at end of day when only a date
				// is given.
				data.LaycanEndISO = endOfDay(end).UTC().Format(time.RFC3339)
				data.FieldConfidence["laycan_end_iso"] = 0.85
			}
			continue
		}

		matchLabeledFields(line, lower, &data)
	}

	// Unlabeled vessel names still show up as "MV SOMETHING" in prose.
	if data.VesselName == "" {
		if m := mvPattern.FindStringSubmatch(text); m != nil {
			data.VesselName = "MV " + strings.TrimSpace(m[1])
			data.FieldConfidence["vessel_name"] = 0.7
		}
	}

	return data
}

func matchLabeledFields(line, lower string, data *models.RecapData) {
	for field, labels := range fieldLabels {
		if fieldValue(data, field) != "" {
			continue
		}
		for _, label := range labels {
			if !strings.HasPrefix(lower, label) {
				continue
			}
			rest := strings.TrimSpace(line[len(label):])
			rest = strings.TrimLeft(rest, ":= \t")
			if rest == "" {
				continue
			}
			if field == "vessel_name" && (label == "mv" || label == "m/v") {
				rest = "MV " + rest
			}
			setFieldValue(data, field, rest)
			data.FieldConfidence[field] = 0.95
			return
		}
	}
}

func fieldValue(d *models.RecapData, field string) string {
	switch field {
	case "vessel_name":
		return d.VesselName
	case "load_port":
		return d.LoadPort
	case "discharge_port":
		return d.DischargePort
	case "freight_rate":
		return d.FreightRate
	case "demurrage_rate":
		return d.DemurrageRate
	case "cargo_description":
		return d.CargoDescription
	}
	return ""
}

func setFieldValue(d *models.RecapData, field, value string) {
	switch field {
	case "vessel_name":
		d.VesselName = value
	case "load_port":
		d.LoadPort = value
	case "discharge_port":
		d.DischargePort = value
	case "freight_rate":
		d.FreightRate = value
	case "demurrage_rate":
		d.DemurrageRate = value
	case "cargo_description":
		d.CargoDescription = value
	}
}

// parseRecapDate handles the loose date spellings recaps use
// ("1 Feb 2024", "2024-02-01", "02/01/2024").
func parseRecapDate(s string) (time.Time, bool) {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func endOfDay(t time.Time) time.Time {
	if t.Hour() != 0 || t.Minute() != 0 {
		return t
	}
	return t.Add(24*time.Hour - time.Second)
}

func valueAfterLabel(line string) string {
	if i := strings.IndexAny(line, ":="); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return ""
}
