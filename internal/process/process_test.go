package process

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/loader"
	"github.com/dtnitsch/sof-extractor/pkg/normalizer"
	"github.com/dtnitsch/sof-extractor/pkg/ocr"
	"github.com/dtnitsch/sof-extractor/pkg/pipeline"
)

func TestParseModeFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    models.Mode
		wantErr bool
	}{
		{"", models.ModeAccuracy, false},
		{"accuracy", models.ModeAccuracy, false},
		{"cost-saving", models.ModeCostSaving, false},
		{" ACCURACY ", models.ModeAccuracy, false},
		{"turbo", "", true},
	}
	for _, tt := range tests {
		got, err := ParseModeFlag(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseModeFlag(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseModeFlag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("load: %w", loader.ErrUnsupportedFormat), "UnsupportedFormat"},
		{fmt.Errorf("load: %w", loader.ErrCorruptDocument), "CorruptDocument"},
		{fmt.Errorf("ocr: %w", ocr.ErrUnavailable), "OcrUnavailable"},
		{fmt.Errorf("normalize: %w", normalizer.ErrInvalidTimezone), "InvalidTimezone"},
		{fmt.Errorf("run: %w", pipeline.ErrProcessingTimeout), "ProcessingTimeout"},
		{errors.New("http 502 from origin"), "FetchError"},
		{errors.New("open sof.pdf: no such file or directory"), "ReadError"},
		{errors.New("something odd happened"), "ProcessingError"},
	}
	for _, tt := range tests {
		if got := ClassifyError(tt.err); got != tt.want {
			t.Errorf("ClassifyError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestToTerse(t *testing.T) {
	full := ResultSummary{
		Source:             "a.pdf",
		Status:             "success",
		EventCount:         5,
		AnomalyCount:       1,
		LowConfidenceCount: 2,
		TextLength:         900,
		PageCount:          3,
		OCRPages:           1,
		FromCache:          true,
	}
	terse := ToTerseResult(full)
	if terse.Status != 0 {
		t.Errorf("success status = %d, want 0", terse.Status)
	}
	if terse.EventCount != 5 || terse.OCRPages != 1 || !terse.FromCache {
		t.Errorf("terse = %+v", terse)
	}

	failed := ToTerseResult(ResultSummary{Source: "b.pdf", Status: "failed", Error: "boom"})
	if failed.Status != 1 || failed.Error != "boom" {
		t.Errorf("failed terse = %+v", failed)
	}

	stats := ToTerseStats(Stats{TotalDocuments: 4, Successful: 3, Failed: 1, TotalTimeSeconds: 1.5, TopEvents: []string{"NOR Tendered:2"}})
	if stats.Total != 4 || stats.Success != 3 || stats.Failed != 1 || stats.Time != 1.5 {
		t.Errorf("terse stats = %+v", stats)
	}
}

func TestComputeConfidenceDist(t *testing.T) {
	result := &models.ProcessingResult{Events: []models.NormalizedEvent{
		{Confidence: 1.0},
		{Confidence: 0.85},
		{Confidence: 0.7},
		{Confidence: 0.2},
		{Confidence: 0, Unparsed: true},
	}}

	dist := ComputeConfidenceDist(result, 0.85)
	if dist["high"] != 2 || dist["medium"] != 1 || dist["low"] != 2 {
		t.Errorf("dist = %v", dist)
	}

	// Zero threshold falls back to the default edge.
	fallback := ComputeConfidenceDist(result, 0)
	if fallback["high"] != dist["high"] || fallback["medium"] != dist["medium"] || fallback["low"] != dist["low"] {
		t.Errorf("fallback dist = %v, want %v", fallback, dist)
	}

	empty := ComputeConfidenceDist(nil, 0.85)
	if empty["high"] != 0 || empty["medium"] != 0 || empty["low"] != 0 {
		t.Errorf("nil dist = %v", empty)
	}
}

func TestComputeConfidenceDistTunedThreshold(t *testing.T) {
	result := &models.ProcessingResult{Events: []models.NormalizedEvent{
		{Confidence: 0.95},
		{Confidence: 0.85},
		{Confidence: 0.7},
	}}

	// A raised threshold moves the 0.85 event out of the high bucket, so
	// the distribution agrees with low_confidence_count in stats.
	dist := ComputeConfidenceDist(result, 0.9)
	if dist["high"] != 1 || dist["medium"] != 2 || dist["low"] != 0 {
		t.Errorf("dist at threshold 0.9 = %v", dist)
	}
}

func successOutcome() Outcome {
	return Outcome{
		Source:      "sof_rotterdam.pdf",
		ContentHash: "abc123",
		DocumentID:  1,
		Result: &models.ProcessingResult{
			Events: []models.NormalizedEvent{
				{EventName: "Vessel Arrived", Confidence: 1.0},
				{EventName: "NOR Tendered", Confidence: 0.7},
			},
			Stats:     models.ProcessingStats{TotalEvents: 2, LowConfidenceCount: 1, TextLength: 640},
			Anomalies: []models.Anomaly{{Kind: models.AnomalyLowConfidence, RowIndex: 2}},
		},
		Pages: []models.PageText{
			{Page: 1, Method: models.ExtractionNative, Confidence: 1.0},
			{Page: 2, Method: models.ExtractionOCR, Confidence: 0.85},
		},
		EventCounts: map[string]int{"Vessel Arrived": 1, "NOR Tendered": 1},
	}
}

func TestBuildSummarySuccess(t *testing.T) {
	s := BuildSummary(successOutcome(), 0.85)
	if s.Status != "success" || s.EventCount != 2 || s.AnomalyCount != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.PageCount != 2 || s.OCRPages != 1 {
		t.Errorf("page counts = %d/%d", s.PageCount, s.OCRPages)
	}
	if s.ConfidenceDist["high"] != 1 || s.ConfidenceDist["medium"] != 1 {
		t.Errorf("dist = %v", s.ConfidenceDist)
	}
	if s.AnomalyDist["Low Confidence"] != 1 {
		t.Errorf("anomaly dist = %v", s.AnomalyDist)
	}
	if len(s.TopEvents) != 2 {
		t.Errorf("top events = %v", s.TopEvents)
	}
}

func TestBuildSummaryFailure(t *testing.T) {
	o := Outcome{Source: "broken.pdf", Error: errors.New("bad xref table"), ErrorType: "CorruptDocument"}
	s := BuildSummary(o, 0.85)
	if s.Status != "failed" || s.Error != "bad xref table" || s.ErrorType != "CorruptDocument" {
		t.Errorf("summary = %+v", s)
	}
	if s.EventCount != 0 || s.TopEvents != nil {
		t.Errorf("failed summary carries result fields: %+v", s)
	}
}

func TestWriteSummaryToSession(t *testing.T) {
	dir := t.TempDir()
	outcomes := []Outcome{
		successOutcome(),
		{Source: "broken.pdf", Error: errors.New("bad xref table"), ErrorType: "CorruptDocument"},
	}

	if err := WriteSummaryToSession(outcomes, models.ModeAccuracy, dir); err != nil {
		t.Fatalf("WriteSummaryToSession: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "summary.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var entries []SessionSummary
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Status != "success" || entries[0].Mode != "accuracy" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Status != "failed" || !strings.Contains(entries[1].Error, "xref") {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func TestWriteFailedToSessionSkippedWhenClean(t *testing.T) {
	dir := t.TempDir()

	failed := collectFailedDocuments([]Outcome{successOutcome()})
	if err := WriteFailedToSession(failed, dir); err != nil {
		t.Fatalf("WriteFailedToSession: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "failed-documents.yaml")); !os.IsNotExist(err) {
		t.Error("failed-documents.yaml written for a clean batch")
	}

	failed = collectFailedDocuments([]Outcome{
		{Source: "broken.pdf", Error: errors.New("bad xref"), ErrorType: "CorruptDocument"},
	})
	if err := WriteFailedToSession(failed, dir); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "failed-documents.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var doc FailedDocuments
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.FailedDocuments) != 1 || doc.FailedDocuments[0].ErrorType != "CorruptDocument" {
		t.Errorf("failed docs = %+v", doc)
	}
}
