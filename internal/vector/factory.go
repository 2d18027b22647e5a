package vector

import "fmt"

// IndexType represents the type of vector index to use.
type IndexType string

const (
	// IndexTypeFlat uses in-memory brute-force search.
	IndexTypeFlat IndexType = "flat"
	// IndexTypeFAISS uses a FAISS IndexFlatL2.
	// Requires FAISS library and build tag -tags=faiss.
	IndexTypeFAISS IndexType = "faiss"
)

// NewIndex creates a vector index of the specified type.
// Supported types: "flat" (default), "faiss".
func NewIndex(indexType string, dimensions int) (Index, error) {
	switch IndexType(indexType) {
	case IndexTypeFlat, "":
		idx, err := NewFlatIndex(dimensions)
		if err != nil {
			return nil, err
		}
		return idx, nil
	case IndexTypeFAISS:
		idx, err := NewFAISSIndex(dimensions)
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: flat, faiss)", indexType)
	}
}

// IsFAISSAvailable returns true if FAISS support is compiled in.
func IsFAISSAvailable() bool {
	idx, err := NewFAISSIndex(1)
	if err != nil {
		return false
	}
	_ = idx.Close()
	return true
}
