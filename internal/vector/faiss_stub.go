//go:build !faiss || !cgo
// +build !faiss !cgo

package vector

import (
	"context"
	"errors"
)

var errFAISSUnavailable = errors.New("FAISS not available: build with -tags=faiss and install FAISS library")

// FAISSIndex is a stub used when the faiss build tag is not set.
type FAISSIndex struct{}

// NewFAISSIndex always fails without FAISS.
func NewFAISSIndex(dimensions int) (*FAISSIndex, error) {
	return nil, errFAISSUnavailable
}

func (f *FAISSIndex) Type() string { return string(IndexTypeFAISS) }

func (f *FAISSIndex) Dimensions() int { return 0 }

func (f *FAISSIndex) Add(ctx context.Context, vectors [][]float32) error {
	return errFAISSUnavailable
}

func (f *FAISSIndex) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	return nil, errFAISSUnavailable
}

func (f *FAISSIndex) Save(path string) error { return errFAISSUnavailable }

func (f *FAISSIndex) Load(path string) error { return errFAISSUnavailable }

func (f *FAISSIndex) Reset() {}

func (f *FAISSIndex) Size() int { return 0 }

func (f *FAISSIndex) Close() error { return nil }
