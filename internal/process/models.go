package process

import (
	"github.com/dtnitsch/sof-extractor/models"
)

// Job is one document submission queued to the worker pool.
type Job struct {
	Source string
	IsURL  bool
}

// Outcome holds the result of a processed job.
type Outcome struct {
	Source      string
	ContentHash string
	DocumentID  int64
	Format      string
	Result      *models.ProcessingResult
	Pages       []models.PageText
	Error       error
	ErrorType   string
	FromCache   bool
	EventCounts map[string]int
}

// DocumentOutput is the minimal structured output for a single document.
type DocumentOutput struct {
	Source    string `json:"source"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
}

// ResultSummary holds detailed summary data for a single processed document.
type ResultSummary struct {
	Source             string         `json:"source"`
	ContentHash        string         `json:"content_hash,omitempty"`
	Status             string         `json:"status"`
	Error              string         `json:"error,omitempty"`
	ErrorType          string         `json:"error_type,omitempty"`
	EventCount         int            `json:"event_count,omitempty"`
	AnomalyCount       int            `json:"anomaly_count,omitempty"`
	LowConfidenceCount int            `json:"low_confidence_count,omitempty"`
	TextLength         int            `json:"text_length,omitempty"`
	PageCount          int            `json:"page_count,omitempty"`
	OCRPages           int            `json:"ocr_pages,omitempty"`
	FromCache          bool           `json:"from_cache,omitempty"`
	ConfidenceDist     map[string]int `json:"confidence_distribution,omitempty"`
	AnomalyDist        map[string]int `json:"anomaly_distribution,omitempty"`
	TopEvents          []string       `json:"top_events,omitempty"`
}

// FinalOutput is the structured output for the entire run.
type FinalOutput struct {
	Status  string      `json:"status"`
	Results interface{} `json:"results"`
	Stats   Stats       `json:"stats"`
}

// Stats provides summary statistics for the run.
type Stats struct {
	TotalDocuments   int      `json:"total_documents"`
	Successful       int      `json:"successful"`
	Failed           int      `json:"failed"`
	TotalTimeSeconds float64  `json:"total_time_seconds"`
	TopEvents        []string `json:"top_events,omitempty"`
}

// ResultSummaryTerse is the token-optimized v2 format with abbreviated field names.
type ResultSummaryTerse struct {
	Source             string `json:"src"`
	Status             int    `json:"s"` // 0=success, 1=failed
	Error              string `json:"e,omitempty"`
	EventCount         int    `json:"ev,omitempty"`
	AnomalyCount       int    `json:"an,omitempty"`
	LowConfidenceCount int    `json:"lc,omitempty"`
	TextLength         int    `json:"tl,omitempty"`
	PageCount          int    `json:"pg,omitempty"`
	OCRPages           int    `json:"op,omitempty"`
	FromCache          bool   `json:"fc,omitempty"`
}

// StatsTerse is the token-optimized v2 stats format.
type StatsTerse struct {
	Total   int      `json:"t"`
	Success int      `json:"ok"`
	Failed  int      `json:"f"`
	Time    float64  `json:"ts"`
	Events  []string `json:"evs,omitempty"`
}

// FinalOutputTerse is the v2 terse output wrapper.
type FinalOutputTerse struct {
	Status  string               `json:"s"`
	Results []ResultSummaryTerse `json:"r"`
	Stats   StatsTerse           `json:"st"`
}

// SessionSummary is one document entry in a session's summary.yaml.
type SessionSummary struct {
	Source      string `yaml:"source"`
	DocumentID  int64  `yaml:"document_id,omitempty"`
	ContentHash string `yaml:"content_hash,omitempty"`
	Status      string `yaml:"status"` // success, failed
	Error       string `yaml:"error,omitempty"`

	EventCount         int `yaml:"event_count,omitempty"`
	AnomalyCount       int `yaml:"anomaly_count,omitempty"`
	LowConfidenceCount int `yaml:"low_confidence_count,omitempty"`
	TextLength         int `yaml:"text_length,omitempty"`
	PageCount          int `yaml:"page_count,omitempty"`
	OCRPages           int `yaml:"ocr_pages,omitempty"`

	Mode      string   `yaml:"mode,omitempty"`
	FromCache bool     `yaml:"from_cache,omitempty"`
	TopEvents []string `yaml:"top_events,omitempty"`
}

// FailedDocument represents a document that failed during processing.
type FailedDocument struct {
	Source       string `yaml:"source"`
	ErrorType    string `yaml:"error_type"`
	ErrorMessage string `yaml:"error_message"`
}

// FailedDocuments wraps the list of failed documents for YAML output.
type FailedDocuments struct {
	FailedDocuments []FailedDocument `yaml:"failed_documents"`
}
