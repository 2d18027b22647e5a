package main

import (
	"fmt"

	"github.com/hyperjump/kioku/internal/config"
	"github.com/hyperjump/kioku/internal/embedding"
	"github.com/hyperjump/kioku/internal/extract"
	"github.com/hyperjump/kioku/internal/indexer"
	"github.com/hyperjump/kioku/internal/keyword"
	"github.com/hyperjump/kioku/internal/knowledge"
	"github.com/hyperjump/kioku/internal/llm"
	"github.com/hyperjump/kioku/internal/qa"
	"github.com/hyperjump/kioku/internal/search"
	"github.com/hyperjump/kioku/internal/server"
	"github.com/hyperjump/kioku/internal/storage"
	"github.com/hyperjump/kioku/internal/summarize"
	"github.com/hyperjump/kioku/internal/vector"
	"go.uber.org/zap"
)

// Components holds initialized services.
type Components struct {
	Embedder   embedding.Embedder
	Store      *knowledge.Store
	Storage    storage.Storage
	Keyword    *keyword.BleveIndex
	Indexer    *indexer.Indexer
	Answerer   *qa.Answerer
	Summarizer *summarize.Summarizer
	Finder     *search.Finder
}

// Close releases every opened component.
func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Keyword != nil {
		_ = c.Keyword.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// Deps returns the components the HTTP server needs.
func (c *Components) Deps() server.Deps {
	return server.Deps{
		Store:      c.Store,
		Indexer:    c.Indexer,
		Answerer:   c.Answerer,
		Summarizer: c.Summarizer,
		Storage:    c.Storage,
		Keyword:    c.Keyword,
		Finder:     c.Finder,
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (_ *Components, err error) {
	c := &Components{}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	client := llm.NewClient(cfg.OpenAI)

	c.Embedder, err = embedding.New(cfg.Embedding, client, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	logger.Info("embedder initialized",
		zap.String("provider", cfg.Embedding.Provider),
		zap.Int("dimensions", c.Embedder.Dimensions()))

	index, err := vector.NewIndex(cfg.Vector.IndexType, cfg.Embedding.Dimensions)
	if err != nil {
		if cfg.Vector.IndexType == string(vector.IndexTypeFlat) {
			return nil, fmt.Errorf("failed to initialize vector index: %w", err)
		}
		logger.Warn("vector index unavailable, falling back to flat",
			zap.String("requested_type", cfg.Vector.IndexType),
			zap.Bool("faiss_available", vector.IsFAISSAvailable()),
			zap.Error(err))
		if index, err = vector.NewFlatIndex(cfg.Embedding.Dimensions); err != nil {
			return nil, fmt.Errorf("failed to initialize vector index: %w", err)
		}
	}

	var backend knowledge.Backend
	if cfg.Storage.PersistOrDefault() {
		backend = knowledge.NewFileBackend(cfg.Storage.VectorIndexPath, cfg.Storage.DocumentsPath)
	}
	chunker := indexer.NewChunker(cfg.Chunking.MaxChars, cfg.Chunking.Overlap)
	c.Store, err = knowledge.NewStore(chunker, c.Embedder, index, backend, knowledge.WithLogger(logger))
	if err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to initialize knowledge store: %w", err)
	}

	c.Storage, err = storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.Keyword, err = keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}
	c.Indexer = indexer.NewIndexer(c.Store, c.Storage, c.Keyword, extract.NewExtractor(), indexer.WithLogger(logger))
	c.Finder = search.NewFinder(c.Storage, c.Keyword, c.Store, cfg.Search, search.WithLogger(logger))

	c.Answerer, err = qa.New(cfg.QA, c.Store, client, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize answerer: %w", err)
	}
	c.Summarizer, err = summarize.New(cfg.Summarizer, client, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize summarizer: %w", err)
	}
	return c, nil
}
