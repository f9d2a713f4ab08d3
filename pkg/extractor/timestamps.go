package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

// Timestamp shapes in rough order of clarity. ISO-like forms are
// unambiguous; slash dates may or may not be (DD/MM vs MM/DD); bare times
// carry no date at all and rank lowest.
var (
	isoPattern = regexp.MustCompile(
		`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2})?(Z|[+-]\d{2}:?\d{2})?`)
	slashDateTimePattern = regexp.MustCompile(
		`(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})[,\s]+(\d{1,2})[:.h](\d{2})(\s*(?:hrs?|hours|lt|utc))?`)
	textualDatePattern = regexp.MustCompile(
		`(?i)\d{1,2}(?:st|nd|rd|th)?\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+\d{4}(?:[,\s]+(?:at\s+)?\d{1,2}[:.h]\d{2})?`)
	slashDatePattern = regexp.MustCompile(
		`(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})`)
	bareTimePattern = regexp.MustCompile(
		`\b(\d{1,2})[:.](\d{2})\s*(?:hrs?|hours|lt|utc)?\b`)
)

// findTimestamp returns the first timestamp-shaped substring in the line
// along with a clarity score in [0,1]. Empty string means nothing matched.
func findTimestamp(line string) (string, float64) {
	if m := isoPattern.FindString(line); m != "" {
		// A trailing zone designator removes the local-vs-UTC question.
		if strings.ContainsAny(m[10:], "Z+-") {
			return m, 1.0
		}
		return m, 0.95
	}

	if m := slashDateTimePattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[0]), slashClarity(m[1], m[2])
	}

	if m := textualDatePattern.FindString(line); m != "" {
		return strings.TrimSpace(m), 0.8
	}

	if m := slashDatePattern.FindStringSubmatch(line); m != nil {
		return m[0], slashClarity(m[1], m[2]) - 0.1
	}

	if m := bareTimePattern.FindString(line); m != "" {
		return strings.TrimSpace(m), 0.6
	}

	return "", 0
}

// slashClarity scores a slash date: when both leading fields could be a
// month the DD/MM vs MM/DD question stays open and clarity drops.
func slashClarity(first, second string) float64 {
	a, _ := strconv.Atoi(first)
	b, _ := strconv.Atoi(second)
	if a <= 12 && b <= 12 && a != b {
		return 0.75
	}
	return 0.85
}
