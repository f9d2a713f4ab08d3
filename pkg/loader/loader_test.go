package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/ocr"
)

// stubEngine returns canned text for every page.
type stubEngine struct {
	available  bool
	pdfOnly    bool
	text       string
	confidence float64
	err        error
	calls      int
}

func (s *stubEngine) Name() string    { return "stub" }
func (s *stubEngine) Available() bool { return s.available }

func (s *stubEngine) Supports(format string) bool {
	return !s.pdfOnly || format == "pdf"
}

func (s *stubEngine) ExtractPage(ctx context.Context, data []byte, format string, page int) (ocr.PageResult, error) {
	s.calls++
	if s.err != nil {
		return ocr.PageResult{}, s.err
	}
	return ocr.PageResult{Page: page, Text: s.text, Confidence: s.confidence}, nil
}

func testConfig() models.PipelineConfig {
	cfg := models.DefaultPipelineConfig()
	cfg.AcceptedFormats = []string{"pdf", "docx", "txt", "html"}
	return cfg
}

func TestLoadRejectsUnsupportedFormat(t *testing.T) {
	l := New(testConfig(), nil)
	_, err := l.Load(context.Background(), []byte("x"), "xlsx", false)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	l := New(testConfig(), nil)
	_, err := l.Load(context.Background(), nil, "pdf", false)
	if !errors.Is(err, ErrCorruptDocument) {
		t.Fatalf("err = %v, want ErrCorruptDocument", err)
	}
}

func TestLoadCorruptPDF(t *testing.T) {
	l := New(testConfig(), nil)
	_, err := l.Load(context.Background(), []byte("certainly not a pdf"), "pdf", false)
	if !errors.Is(err, ErrCorruptDocument) {
		t.Fatalf("err = %v, want ErrCorruptDocument", err)
	}
}

func TestLoadTextPagesOnFormFeed(t *testing.T) {
	text := strings.Repeat("NOR Tendered 2024-03-01T06:00Z and surrounding narrative. ", 3)
	data := []byte(text + "\f" + text)

	l := New(testConfig(), nil)
	pages, err := l.Load(context.Background(), data, "txt", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	for i, p := range pages {
		if p.Page != i+1 {
			t.Errorf("page number = %d, want %d", p.Page, i+1)
		}
		if p.Method != models.ExtractionNative || p.Confidence != 1.0 {
			t.Errorf("page %d method/confidence = %s/%v", p.Page, p.Method, p.Confidence)
		}
	}
}

func TestLoadDeclaredTypeNormalized(t *testing.T) {
	text := []byte(strings.Repeat("Loading Commenced 2024-03-01T08:00Z with full narrative. ", 2))
	l := New(testConfig(), nil)
	if _, err := l.Load(context.Background(), text, ".TXT", false); err != nil {
		t.Fatalf("Load with dotted uppercase type: %v", err)
	}
}

func TestDensityGateWithoutOCR(t *testing.T) {
	// Below MinNativeChars: a stray watermark on a scanned page.
	l := New(testConfig(), nil)
	pages, err := l.Load(context.Background(), []byte("CONFIDENTIAL"), "txt", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	p := pages[0]
	if p.Method != models.ExtractionNone || p.Text != "" || p.Confidence != 0 {
		t.Errorf("sparse page without OCR = %+v, want empty none-page", p)
	}
}

func TestDensityGateRoutesToOCR(t *testing.T) {
	engine := &stubEngine{available: true, text: "Loading Commenced 2024-03-01T08:00Z", confidence: 0.93}
	l := New(testConfig(), engine)

	pages, err := l.Load(context.Background(), []byte("CONFIDENTIAL"), "txt", true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := pages[0]
	if p.Method != models.ExtractionOCR {
		t.Fatalf("method = %s, want ocr", p.Method)
	}
	if p.Text != engine.text {
		t.Errorf("text = %q", p.Text)
	}
	// Engine reported 0.93 but the ceiling caps OCR confidence at 0.85.
	if p.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", p.Confidence)
	}
	if engine.calls != 1 {
		t.Errorf("engine calls = %d, want 1", engine.calls)
	}
}

func TestDenseNativePageSkipsOCR(t *testing.T) {
	engine := &stubEngine{available: true, text: "should not be used", confidence: 0.9}
	l := New(testConfig(), engine)

	text := strings.Repeat("Vessel Arrived 2024-03-01T06:00Z at the pilot station. ", 2)
	pages, err := l.Load(context.Background(), []byte(text), "txt", true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if pages[0].Method != models.ExtractionNative {
		t.Fatalf("method = %s, want native", pages[0].Method)
	}
	if engine.calls != 0 {
		t.Errorf("OCR ran on a dense native page")
	}
}

func TestOCRUnavailableIsFatal(t *testing.T) {
	engine := &stubEngine{available: false}
	l := New(testConfig(), engine)

	_, err := l.Load(context.Background(), []byte("CONFIDENTIAL"), "txt", true)
	if !errors.Is(err, ocr.ErrUnavailable) {
		t.Fatalf("err = %v, want ocr.ErrUnavailable", err)
	}
}

func TestUnsupportedOCRFormatDegradesSparsePage(t *testing.T) {
	engine := &stubEngine{available: true, pdfOnly: true, text: "should not be used"}
	l := New(testConfig(), engine)

	dense := strings.Repeat("Vessel Arrived 2024-03-01T06:00Z at the pilot station. ", 2)
	data := []byte(dense + "\fCONFIDENTIAL")

	pages, err := l.Load(context.Background(), data, "txt", true)
	if err != nil {
		t.Fatalf("sparse page in a format the engine cannot rasterize should not abort: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0].Method != models.ExtractionNative {
		t.Errorf("page 1 method = %s, want native", pages[0].Method)
	}
	if p := pages[1]; p.Method != models.ExtractionNone || p.Text != "" || p.Confidence != 0 {
		t.Errorf("sparse page = %+v, want empty none-page", p)
	}
	if engine.calls != 0 {
		t.Errorf("engine ran on a format it does not support")
	}
}

func TestOCRPageFailureDegrades(t *testing.T) {
	engine := &stubEngine{available: true, err: errors.New("glyph segmentation failed")}
	l := New(testConfig(), engine)

	pages, err := l.Load(context.Background(), []byte("CONFIDENTIAL"), "txt", true)
	if err != nil {
		t.Fatalf("per-page OCR failure should not abort the run: %v", err)
	}
	p := pages[0]
	if p.Method != models.ExtractionOCR || p.Confidence != 0 || p.Text != "" {
		t.Errorf("failed OCR page = %+v, want empty ocr page", p)
	}
}

func TestLoadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := New(testConfig(), nil)
	text := strings.Repeat("Vessel Arrived 2024-03-01T06:00Z at the pilot station. ", 2)
	if _, err := l.Load(ctx, []byte(text), "txt", false); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

// buildDOCX assembles a minimal WordprocessingML container.
func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadDOCXParagraphsAndTables(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Statement of Facts for MV EXAMPLE covering the full port call</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Loading Commenced</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>2024-03-01T08:00Z</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`

	l := New(testConfig(), nil)
	pages, err := l.Load(context.Background(), buildDOCX(t, doc), "docx", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	text := pages[0].Text
	if !strings.Contains(text, "Statement of Facts") {
		t.Errorf("missing paragraph text: %q", text)
	}
	// Table cells land on one line separated by tabs.
	if !strings.Contains(text, "Loading Commenced\t") || !strings.Contains(text, "2024-03-01T08:00Z") {
		t.Errorf("table row not flattened: %q", text)
	}
}

func TestLoadDOCXPageBreaks(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First page narrative about arrival formalities at the roads.</w:t></w:r></w:p>
    <w:p><w:r><w:lastRenderedPageBreak/><w:t>Second page narrative about the loading operations window.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	l := New(testConfig(), nil)
	pages, err := l.Load(context.Background(), buildDOCX(t, doc), "docx", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if !strings.Contains(pages[1].Text, "Second page") {
		t.Errorf("page 2 text = %q", pages[1].Text)
	}
}

func TestLoadDOCXMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/styles.xml")
	w.Write([]byte("<styles/>"))
	zw.Close()

	l := New(testConfig(), nil)
	_, err := l.Load(context.Background(), buf.Bytes(), "docx", false)
	if !errors.Is(err, ErrCorruptDocument) {
		t.Fatalf("err = %v, want ErrCorruptDocument", err)
	}
}

func TestLoadHTMLTableRows(t *testing.T) {
	html := `<html><body>
<h1>Statement of Facts</h1>
<table>
<tr><th>Event</th><th>Time</th></tr>
<tr><td>NOR Tendered</td><td>2024-03-01T06:30Z</td></tr>
</table>
</body></html>`

	l := New(testConfig(), nil)
	pages, err := l.Load(context.Background(), []byte(html), "html", false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if !strings.Contains(pages[0].Text, "NOR Tendered\t2024-03-01T06:30Z") {
		t.Errorf("table row not extracted: %q", pages[0].Text)
	}
}

func TestCheckOCR(t *testing.T) {
	if err := New(testConfig(), nil).CheckOCR(); !errors.Is(err, ocr.ErrUnavailable) {
		t.Errorf("nil engine: err = %v", err)
	}
	if err := New(testConfig(), &stubEngine{available: true}).CheckOCR(); err != nil {
		t.Errorf("available engine: err = %v", err)
	}
}
