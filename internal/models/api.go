package models

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kioku/internal/knowledge"
)

// IngestResponse reports the source created by an ingest call.
type IngestResponse struct {
	ID     string `json:"id"`
	Chunks int    `json:"chunks"`
}

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// Validate rejects blank queries and clamps TopK to [1, 50], defaulting to 3.
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if r.TopK <= 0 {
		r.TopK = 3
	}
	if r.TopK > 50 {
		r.TopK = 50
	}
	return nil
}

// SearchResponse lists the chunks closest to a query, nearest first.
type SearchResponse struct {
	Query   string            `json:"query"`
	Matches []knowledge.Match `json:"matches"`
}

// SummarizeRequest is the body of POST /api/v1/summarize.
type SummarizeRequest struct {
	Text      string `json:"text"`
	KeyPoints int    `json:"key_points,omitempty"`
}

// SummarizeResponse carries the summary and the heuristic key points.
type SummarizeResponse struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
}

// SourceQuery lists or searches sources.
type SourceQuery struct {
	Query  string `json:"q,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Normalize sets the default limit (20), caps it at 100 and clamps a negative offset.
func (q *SourceQuery) Normalize() {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

// SourceHit is a listed source. Scores are set only when the list answers a query.
type SourceHit struct {
	*Source
	Score         float64 `json:"score,omitempty"`
	KeywordScore  float64 `json:"keyword_score,omitempty"`
	SemanticScore float64 `json:"semantic_score,omitempty"`
	// Snippet is the closest chunk of the source when it matched semantically.
	Snippet string `json:"snippet,omitempty"`
}

// SourceList is a page of sources.
type SourceList struct {
	Sources []*SourceHit `json:"sources"`
	Total   int64     `json:"total"`
	Query   string    `json:"query,omitempty"`
	Fuzzy   bool      `json:"fuzzy,omitempty"`
}

// SourceDetail is a source with the chunk texts it produced.
type SourceDetail struct {
	*Source
	Chunks []string `json:"chunks"`
}

// Status is the response of GET /api/v1/status.
type Status struct {
	Sources        int64  `json:"sources"`
	Chunks         int    `json:"chunks"`
	IndexType      string `json:"index_type"`
	KeywordDocs    uint64 `json:"keyword_docs"`
	QAMode         string `json:"qa_mode"`
	EmbeddingModel string `json:"embedding_provider"`
	DiskUsageBytes int64  `json:"disk_usage_bytes"`
}
