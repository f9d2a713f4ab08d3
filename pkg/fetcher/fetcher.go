package fetcher

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// maxDocumentBytes caps remote downloads. Statements of Facts are small
// documents; anything larger is almost certainly not one.
const maxDocumentBytes = 32 << 20

var contentTypeFormats = map[string]string{
	"application/pdf": "pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/msword": "docx",
	"text/plain":         "txt",
	"text/html":          "html",
}

type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchDocument downloads a document and reports its declared format,
// resolved from the Content-Type header with the URL extension as fallback.
func (f *Fetcher) FetchDocument(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch document, status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > maxDocumentBytes {
		return nil, "", fmt.Errorf("document exceeds %d byte limit", maxDocumentBytes)
	}

	format := formatFromContentType(resp.Header.Get("Content-Type"))
	if format == "" {
		format = FormatFromPath(rawURL)
	}
	if format == "" {
		return nil, "", fmt.Errorf("could not determine document format for %s", rawURL)
	}

	return data, format, nil
}

func formatFromContentType(header string) string {
	if header == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return contentTypeFormats[mediaType]
}

// FormatFromPath derives a document format from a file path or URL
// extension. Returns "" when the extension is unknown.
func FormatFromPath(source string) string {
	p := source
	if u, err := url.Parse(source); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	switch ext {
	case "pdf", "docx", "txt", "html":
		return ext
	case "htm":
		return "html"
	case "text", "log":
		return "txt"
	}
	return ""
}
