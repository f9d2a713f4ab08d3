package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Session is one batch invocation of the process command.
type Session struct {
	ID           int64
	CreatedAt    time.Time
	FileCount    int
	SuccessCount int
	FailedCount  int
	Mode         string
	PortTimezone string
}

// SessionDocument records the outcome of one source within a session.
type SessionDocument struct {
	SessionID          int64
	DocumentID         sql.NullInt64
	Source             string
	Status             string
	ErrorType          string
	ErrorMessage       string
	EventCount         int
	AnomalyCount       int
	LowConfidenceCount int
}

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// CreateSession opens a new session row and returns its ID.
func (db *DB) CreateSession(fileCount int, mode, portTimezone string) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO sessions (file_count, mode, port_timezone)
		VALUES (?, ?, ?)
	`, fileCount, mode, portTimezone)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get session id: %w", err)
	}
	return id, nil
}

// InsertSessionDocument records one document outcome under a session.
func (db *DB) InsertSessionDocument(doc SessionDocument) error {
	var errType, errMsg sql.NullString
	if doc.ErrorType != "" {
		errType = sql.NullString{String: doc.ErrorType, Valid: true}
	}
	if doc.ErrorMessage != "" {
		errMsg = sql.NullString{String: doc.ErrorMessage, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO session_documents
			(session_id, document_id, source, status, error_type, error_message, event_count, anomaly_count, low_confidence_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.SessionID, doc.DocumentID, doc.Source, doc.Status, errType, errMsg,
		doc.EventCount, doc.AnomalyCount, doc.LowConfidenceCount)
	if err != nil {
		return fmt.Errorf("failed to insert session document: %w", err)
	}
	return nil
}

// UpdateSessionStats recomputes a session's success and failure counts
// from its recorded documents.
func (db *DB) UpdateSessionStats(sessionID int64) error {
	_, err := db.Exec(`
		UPDATE sessions SET
			success_count = (SELECT COUNT(*) FROM session_documents WHERE session_id = ? AND status = ?),
			failed_count = (SELECT COUNT(*) FROM session_documents WHERE session_id = ? AND status = ?)
		WHERE session_id = ?
	`, sessionID, StatusSuccess, sessionID, StatusFailed, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session stats: %w", err)
	}
	return nil
}

// GetSessionByID loads a single session.
func (db *DB) GetSessionByID(sessionID int64) (*Session, error) {
	var s Session
	var mode, portTZ sql.NullString
	err := db.QueryRow(`
		SELECT session_id, created_at, file_count, success_count, failed_count, mode, port_timezone
		FROM sessions WHERE session_id = ?
	`, sessionID).Scan(&s.ID, &s.CreatedAt, &s.FileCount, &s.SuccessCount, &s.FailedCount, &mode, &portTZ)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %d not found", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	s.Mode = mode.String
	s.PortTimezone = portTZ.String
	return &s, nil
}

// GetSessionDocuments returns the document outcomes recorded under a session.
func (db *DB) GetSessionDocuments(sessionID int64) ([]SessionDocument, error) {
	rows, err := db.Query(`
		SELECT session_id, document_id, source, status, error_type, error_message, event_count, anomaly_count, low_confidence_count
		FROM session_documents WHERE session_id = ? ORDER BY rowid
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session documents: %w", err)
	}
	defer rows.Close()

	var docs []SessionDocument
	for rows.Next() {
		var d SessionDocument
		var errType, errMsg sql.NullString
		if err := rows.Scan(&d.SessionID, &d.DocumentID, &d.Source, &d.Status, &errType, &errMsg,
			&d.EventCount, &d.AnomalyCount, &d.LowConfidenceCount); err != nil {
			return nil, fmt.Errorf("failed to scan session document: %w", err)
		}
		d.ErrorType = errType.String
		d.ErrorMessage = errMsg.String
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// ListSessions returns the most recent sessions, newest first.
func (db *DB) ListSessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT session_id, created_at, file_count, success_count, failed_count, mode, port_timezone
		FROM sessions ORDER BY session_id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var mode, portTZ sql.NullString
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.FileCount, &s.SuccessCount, &s.FailedCount, &mode, &portTZ); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.Mode = mode.String
		s.PortTimezone = portTZ.String
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
