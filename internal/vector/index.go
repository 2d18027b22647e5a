// Package vector provides append-only vector indices searched by Euclidean distance.
package vector

import "context"

// Index is an ordered, append-only collection of fixed-dimension vectors.
// Positions are assigned in insertion order starting at 0 and never change.
type Index interface {
	Add(ctx context.Context, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)
	Save(path string) error
	Load(path string) error
	// Reset drops every vector, leaving an empty index of the same dimension.
	Reset()
	Size() int
	Dimensions() int
	Type() string
	Close() error
}

// Hit is a single nearest-neighbour result.
type Hit struct {
	Position int
	Distance float32 // squared L2
}
