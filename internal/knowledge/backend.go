package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/kioku/internal/vector"
)

// Backend persists the vector index and the co-indexed chunk texts.
type Backend interface {
	// Load fills idx and returns the chunk texts. A backend with nothing stored returns
	// (nil, nil) and leaves idx empty.
	Load(idx vector.Index) ([]string, error)
	// Save writes idx and docs; docs[i] is the text for index position i.
	Save(idx vector.Index, docs []string) error
}

// MemoryBackend keeps nothing on disk.
type MemoryBackend struct{}

func (MemoryBackend) Load(vector.Index) ([]string, error) { return nil, nil }

func (MemoryBackend) Save(vector.Index, []string) error { return nil }

// FileBackend stores the index in its binary format at IndexPath and the chunk texts as a
// JSON array at DocumentsPath. Each file is written to a temporary file in the same
// directory and renamed into place.
type FileBackend struct {
	IndexPath     string
	DocumentsPath string
}

// NewFileBackend returns a backend writing to the two given paths.
func NewFileBackend(indexPath, documentsPath string) *FileBackend {
	return &FileBackend{IndexPath: indexPath, DocumentsPath: documentsPath}
}

// Load reads both files. Missing files mean an empty store. On any other failure idx is
// reset and the error is returned.
func (b *FileBackend) Load(idx vector.Index) ([]string, error) {
	_, idxErr := os.Stat(b.IndexPath)
	_, docErr := os.Stat(b.DocumentsPath)
	if errors.Is(idxErr, os.ErrNotExist) && errors.Is(docErr, os.ErrNotExist) {
		return nil, nil
	}

	data, err := os.ReadFile(b.DocumentsPath)
	if err != nil {
		idx.Reset()
		return nil, fmt.Errorf("read documents: %w", err)
	}
	var docs []string
	if err := json.Unmarshal(data, &docs); err != nil {
		idx.Reset()
		return nil, fmt.Errorf("parse documents: %w", err)
	}
	if err := idx.Load(b.IndexPath); err != nil {
		idx.Reset()
		return nil, fmt.Errorf("load index: %w", err)
	}
	if idx.Size() != len(docs) {
		n := idx.Size()
		idx.Reset()
		return nil, fmt.Errorf("index has %d vectors but %d documents", n, len(docs))
	}
	return docs, nil
}

// Save writes the index then the documents, each atomically.
func (b *FileBackend) Save(idx vector.Index, docs []string) error {
	if docs == nil {
		docs = []string{}
	}
	if err := writeAtomic(b.IndexPath, idx.Save); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	err = writeAtomic(b.DocumentsPath, func(tmp string) error {
		return os.WriteFile(tmp, data, 0644)
	})
	if err != nil {
		return fmt.Errorf("save documents: %w", err)
	}
	return nil
}

// writeAtomic lets write fill a temporary sibling of path, then renames it over path.
func writeAtomic(path string, write func(tmp string) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	_ = f.Close()
	if err := write(tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
