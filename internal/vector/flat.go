package vector

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// flatMagic tags files written by FlatIndex.Save.
const flatMagic uint32 = 0x4b4b4631 // "KKF1"

// flatHeaderSize is the magic, dimension and count words.
const flatHeaderSize = 12

// FlatIndex is a brute-force index over vectors held in memory.
// Suitable for the small corpora a single process ingests, and when FAISS is not available.
type FlatIndex struct {
	dimensions int
	vectors    [][]float32
	mu         sync.RWMutex
}

// NewFlatIndex creates an empty flat index with the given dimension.
func NewFlatIndex(dimensions int) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &FlatIndex{dimensions: dimensions}, nil
}

// Type returns the index type identifier.
func (f *FlatIndex) Type() string {
	return string(IndexTypeFlat)
}

// Dimensions returns the vector dimension.
func (f *FlatIndex) Dimensions() int {
	return f.dimensions
}

// Add appends vectors. Either all vectors are appended or none.
func (f *FlatIndex) Add(ctx context.Context, vectors [][]float32) error {
	for i, vec := range vectors {
		if len(vec) != f.dimensions {
			return fmt.Errorf("vector %d dimension mismatch: got %d, expected %d", i, len(vec), f.dimensions)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, vec := range vectors {
		cp := make([]float32, f.dimensions)
		copy(cp, vec)
		f.vectors = append(f.vectors, cp)
	}
	return nil
}

// Search returns up to k positions ordered by ascending squared L2 distance.
// Ties keep insertion order.
func (f *FlatIndex) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if len(query) != f.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), f.dimensions)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if k <= 0 || len(f.vectors) == 0 {
		return nil, nil
	}
	hits := make([]Hit, len(f.vectors))
	for i, vec := range f.vectors {
		hits[i] = Hit{Position: i, Distance: SquaredL2(query, vec)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Save writes the index to path. Format: magic (4), dimension (4), n (4), then n*dimension
// little-endian float32 values.
func (f *FlatIndex) Save(path string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	w := bufio.NewWriter(file)
	header := []uint32{flatMagic, uint32(f.dimensions), uint32(len(f.vectors))}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		_ = file.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, vec := range f.vectors {
		if _, err := w.Write(float32SliceToBytes(vec)); err != nil {
			_ = file.Close()
			return fmt.Errorf("write vector: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("flush index: %w", err)
	}
	return file.Close()
}

// Load replaces the in-memory contents with the index stored at path. Dimensions must match.
// A missing file is reported as an error wrapping os.ErrNotExist; the index is unchanged on error.
func (f *FlatIndex) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat index file: %w", err)
	}
	r := bufio.NewReader(file)
	var header [3]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if header[0] != flatMagic {
		return errors.New("not a flat index file")
	}
	if int(header[1]) != f.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, index expects %d", header[1], f.dimensions)
	}
	n := int(header[2])
	if want := flatHeaderSize + int64(n)*int64(f.dimensions)*4; info.Size() != want {
		return fmt.Errorf("index file is %d bytes, header promises %d", info.Size(), want)
	}
	vectors := make([][]float32, 0, n)
	buf := make([]byte, f.dimensions*4)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return fmt.Errorf("read vector %d: %w", i, err)
		}
		vectors = append(vectors, bytesToFloat32Slice(buf))
	}
	f.mu.Lock()
	f.vectors = vectors
	f.mu.Unlock()
	return nil
}

// Reset drops every vector.
func (f *FlatIndex) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectors = nil
}

// Size returns the number of vectors in the index.
func (f *FlatIndex) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

// Close is a no-op for FlatIndex.
func (f *FlatIndex) Close() error {
	return nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
