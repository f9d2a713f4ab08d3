package common

import (
	"testing"
)

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/sof.pdf", "https://example.com/sof.pdf"},
		{"  https://example.com/sof.pdf  ", "https://example.com/sof.pdf"},
		{"https://example.com/sof.pdf,", "https://example.com/sof.pdf"},
		{"(https://example.com/sof.pdf)", "https://example.com/sof.pdf"},
		{"[agent mail](https://example.com/sof.pdf)", "https://example.com/sof.pdf"},
		{"<https://example.com/sof.pdf>", "https://example.com/sof.pdf"},
	}
	for _, tt := range tests {
		if got := SanitizeURL(tt.in); got != tt.want {
			t.Errorf("SanitizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeAndValidateURLs(t *testing.T) {
	urls := []string{
		"https://example.com/sof.pdf",
		"ftp://example.com/sof.pdf",
		"https://example.com/my sof.pdf",
		"not a url",
		"  https://docs.example.com/statements/42.docx,",
	}

	valid, invalid := SanitizeAndValidateURLs(urls)
	if len(valid) != 2 {
		t.Fatalf("valid = %v", valid)
	}
	if valid[1] != "https://docs.example.com/statements/42.docx" {
		t.Errorf("valid[1] = %q", valid[1])
	}
	if len(invalid) != 3 {
		t.Errorf("invalid = %v", invalid)
	}
}

func TestContentHash(t *testing.T) {
	a := ContentHash([]byte("statement of facts"))
	b := ContentHash([]byte("statement of facts"))
	c := ContentHash([]byte("different document"))
	if a != b {
		t.Error("hash not deterministic")
	}
	if a == c {
		t.Error("distinct content collided")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

type sampleSummary struct {
	Source     string `json:"source"`
	Status     string `json:"status"`
	EventCount int    `json:"event_count"`
}

type sampleTerse struct {
	Source     string `json:"src"`
	Status     int    `json:"s"`
	EventCount int    `json:"ev"`
}

func TestFilterResultFields(t *testing.T) {
	full := sampleSummary{Source: "a.pdf", Status: "success", EventCount: 5}

	all := FilterResultFields(full, "", false)
	if len(all) != 3 {
		t.Fatalf("unfiltered map = %v", all)
	}

	picked := FilterResultFields(full, "source,event_count", false)
	if len(picked) != 2 || picked["source"] != "a.pdf" {
		t.Errorf("filtered = %v", picked)
	}
	if _, ok := picked["status"]; ok {
		t.Error("status should be filtered out")
	}
}

func TestFilterResultFieldsTranslatesTerse(t *testing.T) {
	terse := sampleTerse{Source: "a.pdf", Status: 0, EventCount: 5}

	// Verbose field names select the terse keys.
	picked := FilterResultFields(terse, "source,event_count", true)
	if len(picked) != 2 {
		t.Fatalf("filtered = %v", picked)
	}
	if picked["src"] != "a.pdf" {
		t.Errorf("src = %v", picked["src"])
	}
}
