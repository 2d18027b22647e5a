package vector

import (
	"context"
	"testing"
)

func TestNewIndex_Flat(t *testing.T) {
	idx, err := NewIndex("flat", 3)
	if err != nil {
		t.Fatalf("NewIndex(flat): %v", err)
	}
	defer idx.Close()

	if err := idx.Add(context.Background(), [][]float32{{1, 0, 0}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if idx.Size() != 1 {
		t.Errorf("Size=%d, want 1", idx.Size())
	}
	if idx.Type() != "flat" {
		t.Errorf("Type=%q, want flat", idx.Type())
	}
}

func TestNewIndex_Empty(t *testing.T) {
	idx, err := NewIndex("", 3)
	if err != nil {
		t.Fatalf("NewIndex(''): %v", err)
	}
	defer idx.Close()
	if idx.Type() != "flat" {
		t.Errorf("Type=%q, want flat", idx.Type())
	}
}

func TestNewIndex_Unknown(t *testing.T) {
	if _, err := NewIndex("hnsw", 3); err == nil {
		t.Error("expected error for unknown index type")
	}
}

func TestNewIndex_InvalidDimension(t *testing.T) {
	if _, err := NewIndex("flat", 0); err == nil {
		t.Error("expected error for zero dimension")
	}
}

func TestNewIndex_FAISS(t *testing.T) {
	if !IsFAISSAvailable() {
		idx, err := NewIndex("faiss", 3)
		if err == nil || idx != nil {
			t.Fatalf("NewIndex(faiss) without FAISS = %v, %v; want nil index and error", idx, err)
		}
		return
	}

	idx, err := NewIndex("faiss", 3)
	if err != nil {
		t.Fatalf("NewIndex(faiss): %v", err)
	}
	defer idx.Close()
	if err := idx.Add(context.Background(), [][]float32{{1, 0, 0}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if idx.Size() != 1 {
		t.Errorf("Size=%d, want 1", idx.Size())
	}
}
