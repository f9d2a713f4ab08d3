package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Documents table: one row per unique document content hash
CREATE TABLE IF NOT EXISTS documents (
    document_id INTEGER PRIMARY KEY AUTOINCREMENT,
    content_hash TEXT NOT NULL UNIQUE,
    filename TEXT NOT NULL,
    format TEXT NOT NULL,            -- pdf, docx, txt, html
    page_count INTEGER DEFAULT 0,
    ocr_pages INTEGER DEFAULT 0,     -- pages that went through OCR
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash);
CREATE INDEX IF NOT EXISTS idx_documents_format ON documents(format);

-- Extracted events: the latest processing result per document
CREATE TABLE IF NOT EXISTS events (
    event_id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_id INTEGER NOT NULL,
    row_index INTEGER NOT NULL,
    event_name TEXT NOT NULL,
    start_time_iso TEXT,
    end_time_iso TEXT,
    duration_minutes INTEGER,
    page INTEGER NOT NULL,
    confidence REAL NOT NULL,
    unparsed BOOLEAN DEFAULT 0,
    FOREIGN KEY (document_id) REFERENCES documents(document_id) ON DELETE CASCADE,
    UNIQUE(document_id, row_index)
);

CREATE INDEX IF NOT EXISTS idx_events_document ON events(document_id);
CREATE INDEX IF NOT EXISTS idx_events_name ON events(event_name);
CREATE INDEX IF NOT EXISTS idx_events_confidence ON events(confidence);

-- Anomalies found in the latest processing result per document
CREATE TABLE IF NOT EXISTS anomalies (
    anomaly_id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_id INTEGER NOT NULL,
    kind TEXT NOT NULL,
    message TEXT NOT NULL,
    row_index INTEGER NOT NULL,
    FOREIGN KEY (document_id) REFERENCES documents(document_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_anomalies_document ON anomalies(document_id);
CREATE INDEX IF NOT EXISTS idx_anomalies_kind ON anomalies(kind);

-- Sessions: one batch invocation of the process command
CREATE TABLE IF NOT EXISTS sessions (
    session_id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    file_count INTEGER DEFAULT 0,
    success_count INTEGER DEFAULT 0,
    failed_count INTEGER DEFAULT 0,
    mode TEXT,
    port_timezone TEXT
);

-- Per-document outcome within a session
CREATE TABLE IF NOT EXISTS session_documents (
    session_id INTEGER NOT NULL,
    document_id INTEGER,
    source TEXT NOT NULL,            -- file path or URL as given
    status TEXT NOT NULL,            -- success, failed
    error_type TEXT,
    error_message TEXT,
    event_count INTEGER DEFAULT 0,
    anomaly_count INTEGER DEFAULT 0,
    low_confidence_count INTEGER DEFAULT 0,
    FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE,
    FOREIGN KEY (document_id) REFERENCES documents(document_id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_session_documents_session ON session_documents(session_id);
CREATE INDEX IF NOT EXISTS idx_session_documents_status ON session_documents(status);
`
