package manifest

// SummaryManifest represents the structure of the batch summary JSON file.
// It provides a lightweight overview of all processed documents, their
// status, and aggregate event counts without requiring readers to open
// each per-document result.
type SummaryManifest struct {
	GeneratedAt     string            `json:"generated_at"`
	TotalDocuments  int               `json:"total_documents"`
	Successful      int               `json:"successful"`
	Failed          int               `json:"failed"`
	AggregateEvents []string          `json:"aggregate_events"`
	Results         []DocumentSummary `json:"results"`
}

// DocumentSummary represents summary information for a single document.
type DocumentSummary struct {
	Source             string   `json:"source"`
	ContentHash        string   `json:"content_hash,omitempty"`
	Status             string   `json:"status"` // "success" or "error"
	ErrorType          string   `json:"error_type,omitempty"`
	ErrorMessage       string   `json:"error_message,omitempty"`
	EventCount         int      `json:"event_count,omitempty"`
	AnomalyCount       int      `json:"anomaly_count,omitempty"`
	LowConfidenceCount int      `json:"low_confidence_count,omitempty"`
	TextLength         int      `json:"text_length,omitempty"`
	FromCache          bool     `json:"from_cache,omitempty"`
	TopEvents          []string `json:"top_events,omitempty"`
}
