package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dtnitsch/sof-extractor/models"
)

// InsertDocument inserts or updates a document row keyed by content hash
// and returns its ID. Re-processing the same bytes reuses the row.
func (db *DB) InsertDocument(contentHash, filename, format string, pageCount, ocrPages int) (int64, error) {
	_, err := db.Exec(`
		INSERT INTO documents (content_hash, filename, format, page_count, ocr_pages)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			filename = excluded.filename,
			page_count = excluded.page_count,
			ocr_pages = excluded.ocr_pages,
			updated_at = CURRENT_TIMESTAMP
	`, contentHash, filename, format, pageCount, ocrPages)
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	var id int64
	if err := db.QueryRow("SELECT document_id FROM documents WHERE content_hash = ?", contentHash).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to resolve document id: %w", err)
	}
	return id, nil
}

// GetDocumentID resolves a content hash to its document ID.
func (db *DB) GetDocumentID(contentHash string) (int64, error) {
	var id int64
	err := db.QueryRow("SELECT document_id FROM documents WHERE content_hash = ?", contentHash).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("document not found for hash %s", contentHash)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up document: %w", err)
	}
	return id, nil
}

// ReplaceDocumentResult replaces the stored events and anomalies for a
// document with a fresh processing result, atomically.
func (db *DB) ReplaceDocumentResult(documentID int64, result *models.ProcessingResult) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to clear events: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM anomalies WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to clear anomalies: %w", err)
	}

	for _, e := range result.Events {
		var endISO sql.NullString
		if e.EndTimeISO != nil {
			endISO = sql.NullString{String: *e.EndTimeISO, Valid: true}
		}
		var duration sql.NullInt64
		if e.DurationMinutes != nil {
			duration = sql.NullInt64{Int64: int64(*e.DurationMinutes), Valid: true}
		}
		if _, err := tx.Exec(`
			INSERT INTO events (document_id, row_index, event_name, start_time_iso, end_time_iso, duration_minutes, page, confidence, unparsed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, documentID, e.RowIndex, e.EventName, e.StartTimeISO, endISO, duration, e.Page, e.Confidence, e.Unparsed); err != nil {
			return fmt.Errorf("failed to insert event %d: %w", e.RowIndex, err)
		}
	}

	for _, a := range result.Anomalies {
		if _, err := tx.Exec(`
			INSERT INTO anomalies (document_id, kind, message, row_index)
			VALUES (?, ?, ?, ?)
		`, documentID, string(a.Kind), a.Message, a.RowIndex); err != nil {
			return fmt.Errorf("failed to insert anomaly: %w", err)
		}
	}

	return tx.Commit()
}

// GetDocumentEvents returns a document's stored events in row order.
func (db *DB) GetDocumentEvents(documentID int64) ([]models.NormalizedEvent, error) {
	rows, err := db.Query(`
		SELECT row_index, event_name, start_time_iso, end_time_iso, duration_minutes, page, confidence, unparsed
		FROM events WHERE document_id = ? ORDER BY row_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.NormalizedEvent
	for rows.Next() {
		var e models.NormalizedEvent
		var endISO sql.NullString
		var duration sql.NullInt64
		if err := rows.Scan(&e.RowIndex, &e.EventName, &e.StartTimeISO, &endISO, &duration, &e.Page, &e.Confidence, &e.Unparsed); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if endISO.Valid {
			e.EndTimeISO = &endISO.String
		}
		if duration.Valid {
			d := int(duration.Int64)
			e.DurationMinutes = &d
		}
		if err := e.HydrateTimes(); err != nil {
			return nil, fmt.Errorf("failed to parse stored times for row %d: %w", e.RowIndex, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetDocumentAnomalies returns a document's stored anomalies.
func (db *DB) GetDocumentAnomalies(documentID int64) ([]models.Anomaly, error) {
	rows, err := db.Query(`
		SELECT kind, message, row_index FROM anomalies
		WHERE document_id = ? ORDER BY row_index, kind
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomalies: %w", err)
	}
	defer rows.Close()

	var anomalies []models.Anomaly
	for rows.Next() {
		var a models.Anomaly
		var kind string
		if err := rows.Scan(&kind, &a.Message, &a.RowIndex); err != nil {
			return nil, fmt.Errorf("failed to scan anomaly: %w", err)
		}
		a.Kind = models.AnomalyKind(kind)
		anomalies = append(anomalies, a)
	}
	return anomalies, rows.Err()
}

// EventFilter narrows QueryEvents results. Zero values mean "no filter".
type EventFilter struct {
	NameLike string
	// MaxConfidence keeps events at or below this confidence.
	MaxConfidence float64
	UnparsedOnly  bool
	Limit         int
}

// EventRecord is one row of a cross-document event query.
type EventRecord struct {
	DocumentID int64
	Filename   string
	Event      models.NormalizedEvent
}

// QueryEvents searches stored events across all documents, e.g. every
// low-confidence event awaiting manual review.
func (db *DB) QueryEvents(filter EventFilter) ([]EventRecord, error) {
	var conds []string
	var args []interface{}

	if filter.NameLike != "" {
		conds = append(conds, "e.event_name LIKE ?")
		args = append(args, "%"+filter.NameLike+"%")
	}
	if filter.MaxConfidence > 0 {
		conds = append(conds, "e.confidence <= ?")
		args = append(args, filter.MaxConfidence)
	}
	if filter.UnparsedOnly {
		conds = append(conds, "e.unparsed = 1")
	}

	query := `
		SELECT e.document_id, d.filename, e.row_index, e.event_name, e.start_time_iso, e.confidence, e.page, e.unparsed
		FROM events e
		JOIN documents d ON d.document_id = e.document_id
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY e.document_id, e.row_index"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var r EventRecord
		if err := rows.Scan(&r.DocumentID, &r.Filename, &r.Event.RowIndex, &r.Event.EventName,
			&r.Event.StartTimeISO, &r.Event.Confidence, &r.Event.Page, &r.Event.Unparsed); err != nil {
			return nil, fmt.Errorf("failed to scan event record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
