package models

import "time"

// SearchResult is a single semantic search hit.
type SearchResult struct {
	FAQ   *FAQ    `json:"faq,omitempty"`
	FAQID int64   `json:"faq_id"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// SearchResponse is the response for a semantic search request.
type SearchResponse struct {
	Results   []*SearchResult `json:"results"`
	QueryTime int64           `json:"query_time_ms"`
	Query     string          `json:"query"`
}

// RebuildStatus is the outcome class of a rebuild attempt.
type RebuildStatus string

const (
	RebuildReady   RebuildStatus = "ready"
	RebuildFailed  RebuildStatus = "failed"
	RebuildSkipped RebuildStatus = "skipped"
)

// RebuildReport summarizes one rebuild attempt. Errors holds per-document
// embedding failures; a non-empty Errors with Status ready means those
// documents were skipped and remain pending.
type RebuildReport struct {
	JobID              string        `json:"job_id"`
	Status             RebuildStatus `json:"status"`
	DocumentsProcessed int           `json:"documents_processed"`
	DocumentsFailed    int           `json:"documents_failed"`
	StatusesRestored   int           `json:"statuses_restored"`
	LedgerCleared      int           `json:"ledger_cleared"`
	Errors             []string      `json:"errors,omitempty"`
	DurationMS         int64         `json:"duration_ms"`
}

// CacheInfo describes the active vector cache, if any.
type CacheInfo struct {
	Cached             bool      `json:"cached"`
	ModelID            string    `json:"model_id,omitempty"`
	DocumentCount      int       `json:"document_count"`
	EmbeddingDimension int       `json:"embedding_dimension,omitempty"`
	DistanceMetric     string    `json:"distance_metric,omitempty"`
	BuiltAt            time.Time `json:"built_at,omitempty"`
	CacheDir           string    `json:"cache_dir,omitempty"`
}
