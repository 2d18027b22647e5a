// Package keyword provides full-text search over ingested sources.
package keyword

import (
	"context"

	"github.com/hyperjump/kioku/internal/models"
)

// SourceIndex defines keyword search operations over sources.
type SourceIndex interface {
	Index(ctx context.Context, src *models.Source) error
	Search(ctx context.Context, query string, limit, offset int) (*Results, error)
	Delete(ctx context.Context, id string) error
	// DocCount returns the total number of sources in the index.
	DocCount() (uint64, error)
	Close() error
}

// Hit is a single keyword search hit.
type Hit struct {
	ID    string
	Score float64
}

// Results is one page of hits.
type Results struct {
	Hits  []Hit
	Total uint64
	// Fuzzy is set when the exact query matched nothing and typo-tolerant matching was used.
	Fuzzy bool
}
