// Package storage persists the registry of ingested sources.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kioku/internal/models"
)

// ErrNotFound is returned when a source does not exist.
var ErrNotFound = errors.New("source not found")

// Storage defines source persistence operations.
type Storage interface {
	CreateSource(ctx context.Context, src *models.Source) error
	GetSource(ctx context.Context, id string) (*models.Source, error)
	UpdateSource(ctx context.Context, src *models.Source) error
	ListSources(ctx context.Context, offset, limit int) ([]*models.Source, error)
	SourceAt(ctx context.Context, position, size int) (*models.Source, error)
	CountSources(ctx context.Context) (int64, error)
	Close() error
}
