package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// SessionInfo represents metadata about a processing session.
type SessionInfo struct {
	SessionID      string    `yaml:"session_id"`
	Created        time.Time `yaml:"created"`
	FileCount      int       `yaml:"file_count"`
	Success        int       `yaml:"success"`
	Failed         int       `yaml:"failed"`
	Mode           string    `yaml:"mode,omitempty"`
	PortTimezone   string    `yaml:"port_timezone,omitempty"`
	SourcesPreview []string  `yaml:"sources_preview,omitempty"` // First 3 sources
}

// SessionIndex represents the index.yaml file at the results root.
type SessionIndex struct {
	Sessions []SessionInfo `yaml:"sessions"`
}

// GenerateSessionID creates a timestamp-first session ID from a list of
// document sources. Format: YYYY-MM-DDTHH-MM-{hash}.
// Hash is derived from the sorted, normalized source list, so the same
// batch resubmitted in a different order lands on the same ID.
func GenerateSessionID(sources []string) string {
	normalized := make([]string, len(sources))
	copy(normalized, sources)
	sort.Strings(normalized)

	h := sha256.New()
	for _, src := range normalized {
		h.Write([]byte(src))
		h.Write([]byte("\n"))
	}
	hashBytes := h.Sum(nil)
	shortHash := hex.EncodeToString(hashBytes[:6]) // 12 char hex

	timestamp := time.Now().Format("2006-01-02T15-04")

	return fmt.Sprintf("%s-%s", timestamp, shortHash)
}

// GetSessionDir returns the full path to a session directory.
func GetSessionDir(baseDir, sessionID string) string {
	return filepath.Join(baseDir, "sessions", sessionID)
}

// GetSessionsIndexPath returns the path to the sessions index file (at results root).
func GetSessionsIndexPath(baseDir string) string {
	return filepath.Join(baseDir, "index.yaml")
}

// SessionExists checks if a session directory exists and has its summary file.
func SessionExists(baseDir, sessionID string) bool {
	summaryPath := filepath.Join(GetSessionDir(baseDir, sessionID), "summary.yaml")
	_, err := os.Stat(summaryPath)
	return err == nil
}

// EnsureSessionDir creates the session directory structure if it doesn't exist.
func EnsureSessionDir(baseDir, sessionID string) error {
	sessionDir := GetSessionDir(baseDir, sessionID)

	if err := os.MkdirAll(filepath.Join(baseDir, "sessions"), 0755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	return nil
}

// UpdateSessionIndex adds or updates a session entry in index.yaml.
func UpdateSessionIndex(baseDir string, info SessionInfo) error {
	indexPath := GetSessionsIndexPath(baseDir)

	var index SessionIndex
	data, err := os.ReadFile(indexPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read session index: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &index); err != nil {
			return fmt.Errorf("failed to parse session index: %w", err)
		}
	}

	found := false
	for i, s := range index.Sessions {
		if s.SessionID == info.SessionID {
			index.Sessions[i] = info
			found = true
			break
		}
	}

	if !found {
		index.Sessions = append(index.Sessions, info)
	}

	// Timestamp-first naming keeps lexical order chronological.
	sort.Slice(index.Sessions, func(i, j int) bool {
		return index.Sessions[i].SessionID > index.Sessions[j].SessionID // Newest first
	})

	output, err := yaml.Marshal(&index)
	if err != nil {
		return fmt.Errorf("failed to marshal session index: %w", err)
	}

	if err := os.WriteFile(indexPath, output, 0644); err != nil {
		return fmt.Errorf("failed to write session index: %w", err)
	}

	return nil
}

// GetSourcesPreview returns the first N sources from a list for preview purposes.
func GetSourcesPreview(sources []string, n int) []string {
	if len(sources) <= n {
		return sources
	}
	return sources[:n]
}

// GenerateFieldsReference creates the FIELDS.yaml reference file if absent.
func GenerateFieldsReference(baseDir string) error {
	fieldsPath := filepath.Join(baseDir, "FIELDS.yaml")

	if _, err := os.Stat(fieldsPath); err == nil {
		// File exists, don't overwrite
		return nil
	}

	content := `# Summary Fields Reference
# Auto-generated field documentation for sof-extractor output

fields:
  # Per-document outcome
  source: string (file path or URL as given)
  status: [success, failed]
  error: string (only if failed)
  error_type: [UnsupportedFormat, CorruptDocument, OcrUnavailable, InvalidTimezone, ProcessingTimeout, other]

  # Events (per document)
  event_name: string (canonical event phrase, e.g. "NOR Tendered")
  start_time_iso: string (UTC, RFC3339)
  end_time_iso: string (UTC, RFC3339, only for paired spans)
  duration_minutes: int (only for paired spans; may be negative)
  page: int (1-based page the event was found on)
  row_index: int (stable order of appearance in the document)
  confidence: float (0-1 composite extraction confidence)
  unparsed: bool (timestamp text survived no parse attempt)

  # Anomalies (per document)
  type: [Time Gap, Order Violation, Low Confidence, Negative Duration, Missing Pair]
  message: string
  row_index: int (event the anomaly refers to)

  # Stats (per document)
  total_events: int
  low_confidence_count: int
  text_length: int (characters of extracted text)
  mode: [cost-saving, accuracy]

query_examples:
  - desc: Low-confidence events needing review
    yq: '.events[] | select(.confidence < 0.85)'

  - desc: Events with negative durations
    yq: '.events[] | select(.duration_minutes != null and .duration_minutes < 0)'

  - desc: Failed documents only
    yq: '.documents[] | select(.status == "failed")'

  - desc: Order violations across the batch
    yq: '.anomalies[] | select(.type == "Order Violation")'

usage:
  summary: Per-session batch outcome
  location: sof-results/sessions/{session-id}/summary.yaml
  session_index: sof-results/index.yaml (list all sessions)
`

	if err := os.WriteFile(fieldsPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write FIELDS.yaml: %w", err)
	}

	return nil
}
