package help

const ColdstartYAML = `# sof-extractor Quick Start

processing_modes:
  accuracy: "OCR fallback + fuzzy phrase matching (default)"
  cost-saving: "Native text only, exact/alias matching, no OCR"

output_modes:
  session: "Session directory + SQLite, best for 10+ documents (default)"
  summary: "JSON/YAML summary to stdout"
  minimal: "Full per-document results to stdout"

commands:
  basic_process: |
    sof-extractor process --files "sof_rotterdam.pdf"

  batch_with_timezone: |
    sof-extractor process --files "a.pdf,b.docx" --port-timezone "Europe/Rotterdam"

  remote_documents: |
    sof-extractor process --urls "https://example.com/sof.pdf" --enable-ocr

  cost_saving_run: |
    sof-extractor process --files "a.pdf" --mode cost-saving

  reprocess_without_ocr: |
    # Re-extract from stored page artifacts, no document reload
    sof-extractor reprocess --session 3 --mode accuracy

  fixture_recap: |
    sof-extractor recap --file recap.txt

  list_sessions: |
    sof-extractor sessions

  session_details: |
    sof-extractor sessions show 5

  query_events: |
    sof-extractor db events --max-confidence 0.85
    sof-extractor db events --name "Loading" --limit 50
    sof-extractor db events --unparsed

  inspect_document: |
    sof-extractor db show <document_id_or_hash>
    sof-extractor db pages <document_id_or_hash>

  multi_stage: |
    # Step 1: Fast cost-saving pass over the batch
    sof-extractor process --files "a.pdf,b.pdf,c.pdf" --mode cost-saving

    # Step 2: Find low-confidence extractions
    sof-extractor db events --max-confidence 0.85

    # Step 3: Reprocess the session with OCR and fuzzy matching
    sof-extractor reprocess --session <session_id> --mode accuracy

key_files:
  - "sof-results/FIELDS.yaml (field reference)"
  - "sof-results/index.yaml (all sessions)"
  - "sof-results/sessions/{id}/summary.yaml (per-document outcomes)"
  - "sof-results/{document_id}/pages.json (page text, reused by reprocess)"
  - "sof-results/{document_id}/result.json (latest extraction result)"

session_system:
  - "Sessions tracked in SQLite with auto-incrementing IDs (1, 2, 3...)"
  - "Session directories: sessions/2026-08-29T14-05-a1b2c3 (timestamp + source hash)"
  - "Identical document content = cache hit by sha256, no re-extraction"
  - "Use 'sof-extractor sessions' to list all sessions"
  - "Use 'sof-extractor sessions show <id>' for per-document outcomes"

db_commands:
  events: "Query extracted events (--name, --max-confidence, --unparsed, --limit)"
  show: "Full events + anomalies for one document (ID or content hash)"
  pages: "Stored page text with extraction method and confidence"
  init: "Initialize database schema"

event_fields:
  - "event_name: canonical vocabulary name (e.g. 'Loading Commenced')"
  - "start_time_iso/end_time_iso: UTC RFC3339, empty when unparsed"
  - "confidence: phrase_strength x timestamp_clarity x page_confidence"
  - "duration_minutes: set only for paired commenced/completed spans"

anomaly_kinds:
  - "OutOfOrder, LongGap, Overlap, MissingPair, LowConfidence"

error_types:
  - "UnsupportedFormat, CorruptDocument, OcrUnavailable"
  - "InvalidTimezone, ProcessingTimeout, FetchError, ReadError"
  - "ProcessingError, MissingArtifact"

query_examples:
  low_confidence: 'sof-extractor db events --max-confidence 0.85'
  unparsed_timestamps: 'sof-extractor db events --unparsed'
  filter_by_yq: 'yq ".results[] | select(.low_confidence_count > 0)" sof-results/sessions/<id>/summary.yaml'
  anomalies_for_doc: 'sof-extractor db show <hash> | yq ".anomalies"'

error_behavior:
  - "Malformed URLs: fail fast before any fetching"
  - "Per-document errors: recorded in session, batch continues"
  - "failed-documents.yaml only created if errors occurred"
  - "Exit codes: 0=success, 1=partial failure, 2=complete failure"
`
