package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/normalizer"
	"github.com/dtnitsch/sof-extractor/pkg/ocr"
)

func testConfig() models.PipelineConfig {
	cfg := models.DefaultPipelineConfig()
	cfg.AcceptedFormats = []string{"pdf", "docx", "txt", "html"}
	return cfg
}

func newTestPipeline(t *testing.T, cfg models.PipelineConfig, engine ocr.Engine) *Pipeline {
	t.Helper()
	p, err := New(cfg, engine)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

const cleanSOF = `Statement of Facts - MV EXAMPLE - Port of Rotterdam
Vessel Arrived 2024-03-01T06:00Z at the pilot station
NOR Tendered 2024-03-01T06:30Z to charterers agents
Loading Commenced 2024-03-01T10:00Z all hatches
Loading Completed 2024-03-02T18:00Z draft survey follows
Vessel Sailed 2024-03-02T22:00Z bound for Singapore
`

func TestProcessDocumentCleanNativeSOF(t *testing.T) {
	p := newTestPipeline(t, testConfig(), nil)

	result, err := p.ProcessDocument(context.Background(), Request{
		FileBytes:    []byte(cleanSOF),
		DeclaredType: "txt",
		Mode:         models.ModeAccuracy,
		PortTimezone: "UTC",
	})
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}

	if len(result.Events) != 5 {
		t.Fatalf("got %d events, want 5", len(result.Events))
	}
	// Native pages, exact phrases, zoned ISO timestamps: every event must
	// clear 0.9.
	for _, e := range result.Events {
		if e.Confidence < 0.9 {
			t.Errorf("%s confidence = %v, want >= 0.9", e.EventName, e.Confidence)
		}
	}
	if len(result.Anomalies) != 0 {
		t.Errorf("clean document produced anomalies: %+v", result.Anomalies)
	}

	loading := result.Events[2]
	if loading.EventName != "Loading Commenced" {
		t.Fatalf("events[2] = %q", loading.EventName)
	}
	if loading.DurationMinutes == nil || *loading.DurationMinutes != 32*60 {
		t.Errorf("loading duration = %v, want %d", loading.DurationMinutes, 32*60)
	}

	stats := result.Stats
	if stats.TotalEvents != 5 || stats.LowConfidenceCount != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.TextLength == 0 {
		t.Error("stats.text_length not populated")
	}
	if stats.Mode != "accuracy" {
		t.Errorf("stats.mode = %q", stats.Mode)
	}
}

func TestProcessDocumentInvertedSpanFlagged(t *testing.T) {
	doc := `Loading Commenced 2024-03-02T18:00Z stevedores on board
Loading Completed 2024-03-01T08:00Z after weather delays
`
	p := newTestPipeline(t, testConfig(), nil)

	result, err := p.ProcessDocument(context.Background(), Request{FileBytes: []byte(doc), DeclaredType: "txt"})
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}

	var negative bool
	for _, a := range result.Anomalies {
		if a.Kind == models.AnomalyNegativeDuration {
			negative = true
		}
	}
	if !negative {
		t.Fatalf("inverted span not flagged: %+v", result.Anomalies)
	}
}

func TestProcessDocumentScannedWithoutOCR(t *testing.T) {
	// Sparse text layer stands in for a scanned page.
	p := newTestPipeline(t, testConfig(), nil)

	result, err := p.ProcessDocument(context.Background(), Request{
		FileBytes:    []byte("SCAN p.1"),
		DeclaredType: "txt",
		Mode:         models.ModeAccuracy,
		EnableOCR:    false,
	})
	if err != nil {
		t.Fatalf("a scanned page without OCR degrades, it does not fail: %v", err)
	}
	if len(result.Events) != 0 {
		t.Errorf("got %d events from an empty page", len(result.Events))
	}
	if result.Stats.TotalEvents != 0 {
		t.Errorf("stats = %+v", result.Stats)
	}
}

func TestProcessDocumentCostSavingOverridesOCR(t *testing.T) {
	// enable_ocr=true but cost-saving mode wins: no engine call, no error.
	p := newTestPipeline(t, testConfig(), nil)

	result, err := p.ProcessDocument(context.Background(), Request{
		FileBytes:    []byte("SCAN p.1"),
		DeclaredType: "txt",
		Mode:         models.ModeCostSaving,
		EnableOCR:    true,
	})
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if len(result.Events) != 0 {
		t.Errorf("got %d events, want 0", len(result.Events))
	}
	if result.Stats.Mode != "cost-saving" {
		t.Errorf("stats.mode = %q", result.Stats.Mode)
	}
}

func TestProcessDocumentUnknownMode(t *testing.T) {
	p := newTestPipeline(t, testConfig(), nil)
	_, err := p.ProcessDocument(context.Background(), Request{FileBytes: []byte(cleanSOF), DeclaredType: "txt", Mode: "turbo"})
	if err == nil || !strings.Contains(err.Error(), "turbo") {
		t.Fatalf("err = %v, want unknown mode", err)
	}
}

func TestProcessDocumentInvalidTimezone(t *testing.T) {
	p := newTestPipeline(t, testConfig(), nil)
	_, err := p.ProcessDocument(context.Background(), Request{
		FileBytes:    []byte(cleanSOF),
		DeclaredType: "txt",
		PortTimezone: "Atlantis/Sunken_City",
	})
	if !errors.Is(err, normalizer.ErrInvalidTimezone) {
		t.Fatalf("err = %v, want ErrInvalidTimezone", err)
	}
}

func TestProcessDocumentTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = time.Nanosecond
	p := newTestPipeline(t, cfg, nil)

	_, err := p.ProcessDocument(context.Background(), Request{FileBytes: []byte(cleanSOF), DeclaredType: "txt"})
	if !errors.Is(err, ErrProcessingTimeout) {
		t.Fatalf("err = %v, want ErrProcessingTimeout", err)
	}
}

func TestProcessDocumentPagesReturnsPages(t *testing.T) {
	p := newTestPipeline(t, testConfig(), nil)

	result, pages, err := p.ProcessDocumentPages(context.Background(), Request{FileBytes: []byte(cleanSOF), DeclaredType: "txt"})
	if err != nil {
		t.Fatalf("ProcessDocumentPages: %v", err)
	}
	if result == nil || len(result.Events) == 0 {
		t.Fatal("no result")
	}
	if len(pages) != 1 || pages[0].Method != models.ExtractionNative {
		t.Fatalf("pages = %+v", pages)
	}
}

func TestExtractFromPagesMatchesFullRun(t *testing.T) {
	p := newTestPipeline(t, testConfig(), nil)

	full, pages, err := p.ProcessDocumentPages(context.Background(), Request{FileBytes: []byte(cleanSOF), DeclaredType: "txt"})
	if err != nil {
		t.Fatalf("ProcessDocumentPages: %v", err)
	}

	redone, err := p.ExtractFromPages(context.Background(), pages, models.ModeAccuracy, "UTC")
	if err != nil {
		t.Fatalf("ExtractFromPages: %v", err)
	}
	if len(redone.Events) != len(full.Events) {
		t.Fatalf("reprocess yielded %d events, full run %d", len(redone.Events), len(full.Events))
	}
	for i := range full.Events {
		if redone.Events[i].StartTimeISO != full.Events[i].StartTimeISO {
			t.Errorf("event %d start differs: %q vs %q", i, redone.Events[i].StartTimeISO, full.Events[i].StartTimeISO)
		}
	}
}

func TestRevalidateIsPure(t *testing.T) {
	p := newTestPipeline(t, testConfig(), nil)

	result, err := p.ProcessDocument(context.Background(), Request{FileBytes: []byte(cleanSOF), DeclaredType: "txt"})
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}

	first := p.Revalidate(result.Events)
	second := p.Revalidate(result.Events)
	if len(first) != len(second) {
		t.Fatalf("revalidation not stable: %d vs %d", len(first), len(second))
	}
}
