package artifact_manager

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dtnitsch/sof-extractor/models"
)

const (
	DefaultBaseDir = "sof-results"

	pagesArtifact  = "pages.json"
	resultArtifact = "result.json"
)

// GetDocumentDir returns the directory for a specific document ID.
// Example: sof-results/42/
func GetDocumentDir(baseDir string, documentID int64) string {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	return filepath.Join(baseDir, fmt.Sprintf("%d", documentID))
}

// GetDocumentArtifactPath returns the full path for a specific artifact.
// Example: sof-results/42/pages.json
func GetDocumentArtifactPath(baseDir string, documentID int64, artifact string) string {
	return filepath.Join(GetDocumentDir(baseDir, documentID), artifact)
}

// Manager handles storage and retrieval of document artifacts: the page
// text captured at load time and the latest processing result. Stored
// page text is what makes reprocessing possible without re-running OCR.
type Manager struct {
	baseDir string
	maxAge  time.Duration // Max age for a stored artifact before it's considered stale
}

// NewManager creates a new artifact Manager instance and ensures the base
// directory exists. A maxAge of zero or below means artifacts never expire.
func NewManager(baseDir string, maxAge time.Duration) (*Manager, error) {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	return &Manager{baseDir: baseDir, maxAge: maxAge}, nil
}

// MaxAge returns the configured max age for artifacts.
func (m *Manager) MaxAge() time.Duration {
	return m.maxAge
}

// EnsureDocumentDir creates the per-document directory if needed.
func (m *Manager) EnsureDocumentDir(documentID int64) error {
	dir := GetDocumentDir(m.baseDir, documentID)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}
	return nil
}

func (m *Manager) readArtifact(documentID int64, artifact string) ([]byte, bool, error) {
	filePath := GetDocumentArtifactPath(m.baseDir, documentID, artifact)

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, false, nil // Not found
	}
	if err != nil {
		return nil, false, fmt.Errorf("error statting %s: %w", artifact, err)
	}

	if m.maxAge > 0 && time.Since(info.ModTime()) > m.maxAge {
		return nil, false, nil // Stale
	}

	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, false, fmt.Errorf("error reading %s: %w", artifact, err)
	}
	return data, true, nil
}

func (m *Manager) writeArtifact(documentID int64, artifact string, data []byte) error {
	if err := m.EnsureDocumentDir(documentID); err != nil {
		return err
	}

	filePath := GetDocumentArtifactPath(m.baseDir, documentID, artifact)
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", artifact, err)
	}
	return nil
}

// GetPages retrieves a document's captured page text, if present and fresh.
func (m *Manager) GetPages(documentID int64) ([]models.PageText, bool, error) {
	data, found, err := m.readArtifact(documentID, pagesArtifact)
	if err != nil || !found {
		return nil, false, err
	}

	var pages []models.PageText
	if err := json.Unmarshal(data, &pages); err != nil {
		// Treat a corrupt artifact as a miss; the caller re-loads the document.
		return nil, false, nil
	}
	return pages, true, nil
}

// SetPages stores a document's captured page text.
func (m *Manager) SetPages(documentID int64, pages []models.PageText) error {
	data, err := json.Marshal(pages)
	if err != nil {
		return fmt.Errorf("failed to marshal pages: %w", err)
	}
	return m.writeArtifact(documentID, pagesArtifact, data)
}

// GetResult retrieves a document's latest stored processing result.
func (m *Manager) GetResult(documentID int64) (*models.ProcessingResult, bool, error) {
	data, found, err := m.readArtifact(documentID, resultArtifact)
	if err != nil || !found {
		return nil, false, err
	}

	var result models.ProcessingResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, nil
	}
	for i := range result.Events {
		if err := result.Events[i].HydrateTimes(); err != nil {
			return nil, false, nil
		}
	}
	return &result, true, nil
}

// SetResult stores a document's processing result.
func (m *Manager) SetResult(documentID int64, result *models.ProcessingResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return m.writeArtifact(documentID, resultArtifact, data)
}
