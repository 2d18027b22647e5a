// Package knowledge is the vector store: chunk texts co-indexed with their embeddings.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hyperjump/kioku/internal/embedding"
	"github.com/hyperjump/kioku/internal/vector"
	"github.com/hyperjump/kioku/pkg/utils"
	"go.uber.org/zap"
)

// Splitter cuts text into chunks.
type Splitter interface {
	Split(text string) []string
}

// SplitterFunc adapts a function to Splitter.
type SplitterFunc func(text string) []string

func (f SplitterFunc) Split(text string) []string { return f(text) }

// Match is a retrieved chunk with its index position and squared L2 distance to the query.
type Match struct {
	Position int     `json:"position"`
	Distance float32 `json:"distance"`
	Text     string  `json:"text"`
}

// Range is the block of positions appended by one Ingest call.
type Range struct {
	Start int
	Count int
}

// Store keeps the vector index and the chunk texts in lock-step: docs[i] is the text
// embedded at index position i. Writes are serialised; reads run concurrently.
type Store struct {
	splitter Splitter
	embedder embedding.Embedder
	index    vector.Index
	backend  Backend
	logger   *zap.Logger

	mu   sync.RWMutex
	docs []string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates a store and restores any persisted state from backend. A backend that
// fails to load is logged and the store starts empty.
func NewStore(splitter Splitter, embedder embedding.Embedder, index vector.Index, backend Backend, opts ...Option) (*Store, error) {
	if splitter == nil || embedder == nil || index == nil {
		return nil, errors.New("splitter, embedder and index are required")
	}
	if embedder.Dimensions() != index.Dimensions() {
		return nil, fmt.Errorf("embedder dimension %d does not match index dimension %d",
			embedder.Dimensions(), index.Dimensions())
	}
	if backend == nil {
		backend = MemoryBackend{}
	}
	s := &Store{
		splitter: splitter,
		embedder: embedder,
		index:    index,
		backend:  backend,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = utils.OrNop(s.logger)

	docs, err := backend.Load(index)
	if err != nil {
		s.logger.Warn("could not load knowledge store, starting empty", zap.Error(err))
		index.Reset()
		docs = nil
	}
	s.docs = docs
	s.logger.Info("knowledge store ready", zap.Int("chunks", len(s.docs)), zap.String("index", index.Type()))
	return s, nil
}

// Add chunks, embeds and appends text, then persists. It returns the number of chunks added;
// text that yields no chunks is a no-op.
func (s *Store) Add(ctx context.Context, text string) (int, error) {
	r, err := s.Ingest(ctx, text)
	return r.Count, err
}

// Ingest is Add returning the positions the new chunks occupy.
func (s *Store) Ingest(ctx context.Context, text string) (Range, error) {
	chunks := s.splitter.Split(text)
	if len(chunks) == 0 {
		return Range{}, nil
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return Range{}, stageErr(StageEmbed, err)
	}
	if len(embeddings) != len(chunks) {
		return Range{}, stageErr(StageEmbed, fmt.Errorf("got %d embeddings for %d chunks", len(embeddings), len(chunks)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := len(s.docs)
	if err := s.index.Add(ctx, embeddings); err != nil {
		return Range{}, stageErr(StageIndex, err)
	}
	s.docs = append(s.docs, chunks...)

	if err := s.backend.Save(s.index, s.docs); err != nil {
		return Range{Start: start, Count: len(chunks)}, stageErr(StagePersist, err)
	}
	s.logger.Debug("chunks added", zap.Int("start", start), zap.Int("count", len(chunks)))
	return Range{Start: start, Count: len(chunks)}, nil
}

// Search returns the texts of up to topK chunks closest to query, nearest first.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]string, error) {
	matches, err := s.Matches(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Text
	}
	return out, nil
}

// Matches is Search with positions and distances.
func (s *Store) Matches(ctx context.Context, query string, topK int) ([]Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyInput
	}
	if topK <= 0 || s.Size() == 0 {
		return nil, nil
	}
	q, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, stageErr(StageEmbed, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits, err := s.index.Search(ctx, q, topK)
	if err != nil {
		return nil, stageErr(StageSearch, err)
	}
	matches := make([]Match, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(s.docs) {
			continue
		}
		matches = append(matches, Match{Position: h.Position, Distance: h.Distance, Text: s.docs[h.Position]})
	}
	return matches, nil
}

// Chunks returns copies of the texts at positions [start, start+count). A range the store
// does not fully hold returns nil.
func (s *Store) Chunks(start, count int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if start < 0 || count <= 0 || start+count > len(s.docs) {
		return nil
	}
	end := start + count
	out := make([]string, count)
	copy(out, s.docs[start:end])
	return out
}

// Size returns the number of stored chunks.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// IndexType reports the underlying vector index type.
func (s *Store) IndexType() string {
	return s.index.Type()
}

// Close releases the vector index.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}
