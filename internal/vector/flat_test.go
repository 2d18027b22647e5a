package vector

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFlatIndex_AddSearch(t *testing.T) {
	idx, err := NewFlatIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	vecs := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	if err := idx.Add(ctx, vecs); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Errorf("Size=%d, want 3", idx.Size())
	}

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Position != 0 || hits[0].Distance != 0 {
		t.Errorf("top hit = %+v, want position 0 at distance 0", hits[0])
	}
	if hits[1].Position != 1 {
		t.Errorf("second hit position = %d, want 1", hits[1].Position)
	}
	if hits[0].Distance > hits[1].Distance {
		t.Errorf("hits not ascending: %v", hits)
	}
}

func TestFlatIndex_SquaredDistance(t *testing.T) {
	idx, _ := NewFlatIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, [][]float32{{3, 4}})
	hits, err := idx.Search(ctx, []float32{0, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if hits[0].Distance != 25 {
		t.Errorf("Distance=%v, want 25", hits[0].Distance)
	}
}

func TestFlatIndex_TiesKeepInsertionOrder(t *testing.T) {
	idx, _ := NewFlatIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, [][]float32{{1, 0}, {0, 1}, {-1, 0}})
	hits, err := idx.Search(ctx, []float32{0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i, h := range hits {
		if h.Position != i {
			t.Errorf("hits[%d].Position=%d, want %d", i, h.Position, i)
		}
	}
}

func TestFlatIndex_SearchEmpty(t *testing.T) {
	idx, _ := NewFlatIndex(3)
	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func TestFlatIndex_KLargerThanSize(t *testing.T) {
	idx, _ := NewFlatIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, [][]float32{{1, 0}, {0, 1}})
	hits, _ := idx.Search(ctx, []float32{1, 0}, 10)
	if len(hits) != 2 {
		t.Errorf("expected 2 hits, got %d", len(hits))
	}
}

func TestFlatIndex_DimensionMismatch(t *testing.T) {
	idx, _ := NewFlatIndex(3)
	ctx := context.Background()
	err := idx.Add(ctx, [][]float32{{1, 0, 0}, {1, 0}})
	if err == nil {
		t.Fatal("expected dimension error")
	}
	if idx.Size() != 0 {
		t.Errorf("partial add: Size=%d, want 0", idx.Size())
	}
	if _, err := idx.Search(ctx, []float32{1}, 1); err == nil {
		t.Error("expected query dimension error")
	}
}

func TestFlatIndex_AddCopiesVectors(t *testing.T) {
	idx, _ := NewFlatIndex(2)
	ctx := context.Background()
	vec := []float32{1, 0}
	_ = idx.Add(ctx, [][]float32{vec})
	vec[0] = 100
	hits, _ := idx.Search(ctx, []float32{1, 0}, 1)
	if hits[0].Distance != 0 {
		t.Errorf("index shares caller memory: distance=%v", hits[0].Distance)
	}
}

func TestFlatIndex_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "knowledge.index")
	ctx := context.Background()

	idx, _ := NewFlatIndex(3)
	_ = idx.Add(ctx, [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0.5, 0.5}})
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, _ := NewFlatIndex(3)
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 3 {
		t.Fatalf("Size=%d, want 3", loaded.Size())
	}
	hits, _ := loaded.Search(ctx, []float32{0, 0, 0.5}, 1)
	if hits[0].Position != 2 {
		t.Errorf("top hit position = %d, want 2", hits[0].Position)
	}
}

func TestFlatIndex_LoadMissing(t *testing.T) {
	idx, _ := NewFlatIndex(3)
	err := idx.Load(filepath.Join(t.TempDir(), "missing.index"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load missing: err=%v, want os.ErrNotExist", err)
	}
}

func TestFlatIndex_LoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	garbage := filepath.Join(dir, "garbage.index")
	if err := os.WriteFile(garbage, []byte("not an index at all"), 0644); err != nil {
		t.Fatal(err)
	}
	idx, _ := NewFlatIndex(3)
	_ = idx.Add(ctx, [][]float32{{1, 0, 0}})
	if err := idx.Load(garbage); err == nil {
		t.Error("expected error for garbage file")
	}
	if idx.Size() != 1 {
		t.Errorf("failed load modified index: Size=%d", idx.Size())
	}

	other, _ := NewFlatIndex(2)
	_ = other.Add(ctx, [][]float32{{1, 0}})
	path := filepath.Join(dir, "two.index")
	if err := other.Save(path); err != nil {
		t.Fatal(err)
	}
	if err := idx.Load(path); err == nil {
		t.Error("expected dimension mismatch error")
	}

	// truncated payload
	data, _ := os.ReadFile(path)
	truncated := filepath.Join(dir, "truncated.index")
	_ = os.WriteFile(truncated, data[:len(data)-2], 0644)
	if err := other.Load(truncated); err == nil {
		t.Error("expected error for truncated file")
	}

	// a count far beyond the payload must fail before anything is allocated
	huge := filepath.Join(dir, "huge.index")
	hdr := make([]byte, 12)
	binary.LittleEndian.PutUint32(hdr[0:], flatMagic)
	binary.LittleEndian.PutUint32(hdr[4:], 2)
	binary.LittleEndian.PutUint32(hdr[8:], 0xFFFFFFFF)
	_ = os.WriteFile(huge, hdr, 0644)
	if err := other.Load(huge); err == nil {
		t.Error("expected error for a count the file cannot hold")
	}
	if other.Size() != 1 {
		t.Errorf("failed load modified index: Size=%d", other.Size())
	}

	// trailing bytes after the promised vectors
	padded := filepath.Join(dir, "padded.index")
	_ = os.WriteFile(padded, append(append([]byte{}, data...), 0, 0, 0, 0), 0644)
	if err := other.Load(padded); err == nil {
		t.Error("expected error for trailing bytes")
	}
}

func TestFlatIndex_Reset(t *testing.T) {
	idx, _ := NewFlatIndex(2)
	_ = idx.Add(context.Background(), [][]float32{{1, 0}})
	idx.Reset()
	if idx.Size() != 0 {
		t.Errorf("Size=%d after Reset", idx.Size())
	}
	if idx.Dimensions() != 2 {
		t.Errorf("Dimensions=%d after Reset", idx.Dimensions())
	}
}

func TestSquaredL2(t *testing.T) {
	if d := SquaredL2([]float32{1, 2}, []float32{1, 2}); d != 0 {
		t.Errorf("identical vectors: %v", d)
	}
	if d := SquaredL2([]float32{0, 0}, []float32{1, 1}); d != 2 {
		t.Errorf("SquaredL2=%v, want 2", d)
	}
	if d := SquaredL2([]float32{1}, []float32{1, 2}); d < 1e30 {
		t.Errorf("length mismatch should be +Inf, got %v", d)
	}
}
