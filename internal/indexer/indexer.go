// Package indexer ingests text and files into the knowledge store, the source
// registry and the keyword index.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/kioku/internal/extract"
	"github.com/hyperjump/kioku/internal/fileid"
	"github.com/hyperjump/kioku/internal/keyword"
	"github.com/hyperjump/kioku/internal/knowledge"
	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/storage"
	"github.com/hyperjump/kioku/pkg/utils"
	"go.uber.org/zap"
)

// Indexer feeds the knowledge store and records every ingest as a source.
type Indexer struct {
	store     *knowledge.Store
	storage   storage.Storage
	keyword   keyword.SourceIndex
	extractor *extract.Extractor
	logger    *zap.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer. extractor may be nil, in which case files
// are read as plain text.
func NewIndexer(
	store *knowledge.Store,
	storage storage.Storage,
	keywordIndex keyword.SourceIndex,
	extractor *extract.Extractor,
	opts ...Option,
) *Indexer {
	idx := &Indexer{
		store:     store,
		storage:   storage,
		keyword:   keywordIndex,
		extractor: extractor,
	}
	for _, opt := range opts {
		opt(idx)
	}
	idx.logger = utils.OrNop(idx.logger)
	return idx
}

// IngestText appends input.Content to the knowledge store and records the
// source. Re-using an existing ID points that source at the new chunk range;
// chunks from earlier ingests stay in the store.
func (idx *Indexer) IngestText(ctx context.Context, input models.SourceInput) (*models.Source, error) {
	content := Preprocess(input.Content)
	if content == "" {
		return nil, knowledge.ErrEmptyInput
	}
	if input.ID == "" {
		input.ID = fileid.NewTextSourceID()
	}
	if input.Origin == "" {
		input.Origin = models.OriginText
	}

	r, err := idx.store.Ingest(ctx, content)
	if err != nil {
		return nil, err
	}

	src := &models.Source{
		ID:         input.ID,
		Title:      input.Title,
		Origin:     input.Origin,
		Path:       input.Path,
		Content:    content,
		ChunkStart: r.Start,
		ChunkCount: r.Count,
		Size:       input.Size,
		ModTime:    input.ModTime,
		Metadata:   input.Metadata,
	}
	if src.Size == 0 {
		src.Size = int64(len(input.Content))
	}
	if err := idx.saveSource(ctx, src); err != nil {
		return nil, err
	}
	if err := idx.keyword.Index(ctx, keywordView(src)); err != nil {
		return nil, fmt.Errorf("index source keywords: %w", err)
	}
	idx.logger.Debug("source ingested",
		zap.String("id", src.ID),
		zap.String("origin", src.Origin),
		zap.Int("chunk_start", src.ChunkStart),
		zap.Int("chunks", src.ChunkCount))
	return src, nil
}

func (idx *Indexer) saveSource(ctx context.Context, src *models.Source) error {
	existing, err := idx.storage.GetSource(ctx, src.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if err := idx.storage.CreateSource(ctx, src); err != nil {
			return fmt.Errorf("create source: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("get source: %w", err)
	}
	src.CreatedAt = existing.CreatedAt
	if err := idx.storage.UpdateSource(ctx, src); err != nil {
		return fmt.Errorf("update source: %w", err)
	}
	return nil
}

// IngestUpload extracts an uploaded file by its name's extension and ingests it.
func (idx *Indexer) IngestUpload(ctx context.Context, filename string, content []byte) (*models.Source, error) {
	text, err := idx.extractBytes(content, filepath.Ext(filename))
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	return idx.IngestText(ctx, models.SourceInput{
		Title:   filepath.Base(filename),
		Origin:  models.OriginUpload,
		Content: text,
		Size:    int64(len(content)),
	})
}

// IngestFile ingests the file at path under an ID derived from its absolute
// path. If allowedExts is non-empty the extension must be listed. A file
// already ingested with the same size and modification time is skipped and
// its existing source returned, unless the store no longer holds its chunks.
func (idx *Indexer) IngestFile(ctx context.Context, path string, allowedExts []string) (*models.Source, error) {
	src, _, err := idx.ingestFile(ctx, path, allowedExts)
	return src, err
}

func (idx *Indexer) ingestFile(ctx context.Context, path string, allowedExts []string) (*models.Source, bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false, fmt.Errorf("absolute path: %w", err)
	}
	if len(allowedExts) > 0 && !extensionAllowed(filepath.Ext(absPath), allowedExts) {
		return nil, false, fmt.Errorf("extension %q not in allowed list", filepath.Ext(absPath))
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, false, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, false, fmt.Errorf("not a regular file: %s", absPath)
	}

	id := fileid.FileSourceID(absPath)
	if existing, err := idx.storage.GetSource(ctx, id); err == nil && unchanged(existing, info) &&
		existing.ChunkStart+existing.ChunkCount <= idx.store.Size() {
		// Bleve may have been recreated empty; keep it in step with the registry.
		if err := idx.keyword.Index(ctx, keywordView(existing)); err != nil {
			return nil, false, fmt.Errorf("index source keywords: %w", err)
		}
		idx.logger.Debug("skipping unchanged file", zap.String("path", absPath))
		return existing, true, nil
	}

	text, err := idx.extractFile(absPath)
	if err != nil {
		return nil, false, fmt.Errorf("extract content: %w", err)
	}
	src, err := idx.IngestText(ctx, models.SourceInput{
		ID:      id,
		Title:   filepath.Base(absPath),
		Origin:  models.OriginFile,
		Path:    absPath,
		Content: text,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
	if err != nil {
		return nil, false, err
	}
	idx.logger.Info("file ingested", zap.String("path", absPath), zap.Int("chunks", src.ChunkCount))
	return src, false, nil
}

func unchanged(src *models.Source, info os.FileInfo) bool {
	return src.Size == info.Size() && src.ModTime.Equal(info.ModTime())
}

// IngestDirectory walks dir recursively and ingests every regular file whose
// extension is allowed. It returns the number of files ingested (unchanged
// files are not counted) and stops at the first error.
func (idx *Indexer) IngestDirectory(ctx context.Context, dir string, allowedExts []string) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}

	n := 0
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if len(allowedExts) > 0 && !extensionAllowed(filepath.Ext(path), allowedExts) {
			return nil
		}
		// follow symlinks; only regular targets are ingested
		if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
			return nil
		}
		_, skipped, err := idx.ingestFile(ctx, path, allowedExts)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if !skipped {
			n++
		}
		return nil
	})
	return n, err
}

// SyncKeywordIndex re-indexes every registered source when the keyword index
// holds fewer documents than the registry. It returns the number re-indexed.
func (idx *Indexer) SyncKeywordIndex(ctx context.Context) (int, error) {
	total, err := idx.storage.CountSources(ctx)
	if err != nil {
		return 0, fmt.Errorf("count sources: %w", err)
	}
	indexed, err := idx.keyword.DocCount()
	if err != nil {
		return 0, fmt.Errorf("keyword doc count: %w", err)
	}
	if int64(indexed) >= total {
		return 0, nil
	}

	const page = 100
	n := 0
	for offset := 0; int64(offset) < total; offset += page {
		sources, err := idx.storage.ListSources(ctx, offset, page)
		if err != nil {
			return n, fmt.Errorf("list sources: %w", err)
		}
		for _, src := range sources {
			if err := idx.keyword.Index(ctx, keywordView(src)); err != nil {
				return n, fmt.Errorf("index source %s: %w", src.ID, err)
			}
			n++
		}
		if len(sources) < page {
			break
		}
	}
	idx.logger.Info("keyword index rebuilt", zap.Int("sources", n))
	return n, nil
}

// keywordView spaces out underscores in the title so Bleve's standard
// analyzer can match the words of file names like "team_offsite_notes.md".
func keywordView(src *models.Source) *models.Source {
	view := *src
	view.Title = strings.ReplaceAll(src.Title, "_", " ")
	return &view
}

func (idx *Indexer) extractFile(path string) (string, error) {
	if idx.extractor != nil {
		return idx.extractor.Extract(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func (idx *Indexer) extractBytes(content []byte, ext string) (string, error) {
	if idx.extractor != nil {
		return idx.extractor.ExtractBytes(content, ext)
	}
	return string(content), nil
}

func extensionAllowed(ext string, allowed []string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == ext {
			return true
		}
	}
	return false
}
