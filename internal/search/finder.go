package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/kioku/internal/config"
	"github.com/hyperjump/kioku/internal/keyword"
	"github.com/hyperjump/kioku/internal/knowledge"
	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/storage"
	"github.com/hyperjump/kioku/pkg/utils"
)

const snippetLength = 200

// Retriever returns the chunks closest to a query, nearest first, and reports
// how many chunks it holds.
type Retriever interface {
	Matches(ctx context.Context, query string, topK int) ([]knowledge.Match, error)
	Size() int
}

// Finder runs hybrid (keyword + semantic) search over sources.
type Finder struct {
	storage   storage.Storage
	keyword   keyword.SourceIndex
	retriever Retriever
	config    config.SearchConfig
	logger    *zap.Logger
}

// Option configures a Finder.
type Option func(*Finder)

// WithLogger sets the logger used for skipped hits.
func WithLogger(l *zap.Logger) Option {
	return func(f *Finder) {
		f.logger = l
	}
}

// NewFinder creates a finder over the source registry, its keyword index and the chunk store.
func NewFinder(
	storage storage.Storage,
	keywordIndex keyword.SourceIndex,
	retriever Retriever,
	cfg config.SearchConfig,
	opts ...Option,
) *Finder {
	f := &Finder{
		storage:   storage,
		keyword:   keywordIndex,
		retriever: retriever,
		config:    cfg,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = utils.OrNop(f.logger)
	return f
}

// Find ranks sources for q.Query. Keyword hits come from the source index; semantic hits
// are chunk matches credited to the source whose current chunk range holds them. The two
// are fused with the configured weights and paged with q.Limit and q.Offset.
func (f *Finder) Find(ctx context.Context, q models.SourceQuery) (*models.SourceList, error) {
	if strings.TrimSpace(q.Query) == "" {
		return nil, knowledge.ErrEmptyInput
	}
	q.Normalize()
	candidates := f.config.TopKCandidates
	if candidates < q.Offset+q.Limit {
		candidates = q.Offset + q.Limit
	}

	var (
		keywordResults *keyword.Results
		matches        []knowledge.Match
		errChan        = make(chan error, 2)
		wg             sync.WaitGroup
	)

	if f.config.KeywordWeight > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := f.keyword.Search(ctx, q.Query, candidates, 0)
			if err != nil {
				errChan <- fmt.Errorf("keyword search failed: %w", err)
				return
			}
			keywordResults = results
		}()
	}

	if f.config.SemanticWeight > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := f.retriever.Matches(ctx, q.Query, candidates)
			if err != nil {
				errChan <- fmt.Errorf("semantic search failed: %w", err)
				return
			}
			matches = results
		}()
	}

	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	list := &models.SourceList{Sources: []*models.SourceHit{}, Query: q.Query}
	var keywordScores map[string]float64
	if keywordResults != nil {
		keywordScores = NormalizeKeywordScores(keywordResults.Hits)
		list.Fuzzy = keywordResults.Fuzzy
	}

	semanticByChunk := NormalizeSemanticScores(matches, float32(f.config.MaxDistance))
	positionToSource, sources, err := f.attribute(ctx, semanticByChunk)
	if err != nil {
		return nil, err
	}
	semanticBySource := AggregateSemanticBySource(positionToSource, semanticByChunk)
	fused := Fuse(keywordScores, semanticBySource, f.config.KeywordWeight, f.config.SemanticWeight)

	if f.config.MinScore > 0 {
		filtered := fused[:0]
		for _, r := range fused {
			if r.Score >= f.config.MinScore {
				filtered = append(filtered, r)
			}
		}
		fused = filtered
	}

	snippets := bestChunks(matches, positionToSource)
	hits := make([]*models.SourceHit, 0, len(fused))
	for _, r := range fused {
		src, ok := sources[r.SourceID]
		if !ok {
			src, err = f.storage.GetSource(ctx, r.SourceID)
			if errors.Is(err, storage.ErrNotFound) {
				f.logger.Debug("keyword hit without source", zap.String("id", r.SourceID))
				continue
			}
			if err != nil {
				return nil, err
			}
		}
		hits = append(hits, &models.SourceHit{
			Source:        src,
			Score:         r.Score,
			KeywordScore:  r.KeywordScore,
			SemanticScore: r.SemanticScore,
			Snippet:       Snippet(snippets[r.SourceID], snippetLength),
		})
	}

	list.Total = int64(len(hits))
	start := q.Offset
	end := q.Offset + q.Limit
	if start > len(hits) {
		start = len(hits)
	}
	if end > len(hits) {
		end = len(hits)
	}
	list.Sources = append(list.Sources, hits[start:end]...)
	return list, nil
}

// attribute looks up the source owning each scored chunk position. Positions that belong to
// no current chunk range (superseded re-ingests) are left out.
func (f *Finder) attribute(ctx context.Context, scores map[int]float64) (map[int]string, map[string]*models.Source, error) {
	size := f.retriever.Size()
	positionToSource := make(map[int]string, len(scores))
	sources := make(map[string]*models.Source)
	for pos := range scores {
		if id := owner(sources, pos); id != "" {
			positionToSource[pos] = id
			continue
		}
		src, err := f.storage.SourceAt(ctx, pos, size)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to attribute chunk %d: %w", pos, err)
		}
		sources[src.ID] = src
		positionToSource[pos] = src.ID
	}
	return positionToSource, sources, nil
}

func owner(sources map[string]*models.Source, pos int) string {
	for id, src := range sources {
		if pos >= src.ChunkStart && pos < src.ChunkStart+src.ChunkCount {
			return id
		}
	}
	return ""
}

// bestChunks returns the text of the nearest attributed chunk of each source. matches are
// ordered nearest first, so the first one seen wins.
func bestChunks(matches []knowledge.Match, positionToSource map[int]string) map[string]string {
	best := make(map[string]string)
	for _, m := range matches {
		id := positionToSource[m.Position]
		if id == "" {
			continue
		}
		if _, ok := best[id]; !ok {
			best[id] = m.Text
		}
	}
	return best
}
