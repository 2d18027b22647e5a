// Package server provides the HTTP API for kioku.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/kioku/internal/config"
	"github.com/hyperjump/kioku/internal/indexer"
	"github.com/hyperjump/kioku/internal/keyword"
	"github.com/hyperjump/kioku/internal/knowledge"
	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/qa"
	"github.com/hyperjump/kioku/internal/search"
	"github.com/hyperjump/kioku/internal/storage"
	"github.com/hyperjump/kioku/internal/summarize"
	"github.com/hyperjump/kioku/pkg/utils"
	"go.uber.org/zap"
)

// Deps are the components the handlers call into.
type Deps struct {
	Store      *knowledge.Store
	Indexer    *indexer.Indexer
	Answerer   *qa.Answerer
	Summarizer *summarize.Summarizer
	Storage    storage.Storage
	Keyword    keyword.SourceIndex
	Finder     *search.Finder
}

// Server is the HTTP server for the kioku API.
type Server struct {
	Deps
	config *config.Config
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(deps Deps, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		Deps:   deps,
		config: cfg,
		logger: utils.OrNop(logger),
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/ingest", s.handleIngest)
		r.Post("/ingest/upload", s.handleUpload)
		r.Post("/ask", s.handleAsk)
		r.Post("/search", s.handleSearch)
		r.Post("/summarize", s.handleSummarize)
		r.Get("/sources", s.handleListSources)
		r.Get("/sources/{id}", s.handleGetSource)
	})
	return r
}

// BuildStatus collects source, chunk and index statistics. Disk usage is
// best effort and left at 0 when it cannot be measured.
func BuildStatus(ctx context.Context, deps Deps, cfg *config.Config) (*models.Status, error) {
	sources, err := deps.Storage.CountSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sources: %w", err)
	}
	keywordDocs, err := deps.Keyword.DocCount()
	if err != nil {
		return nil, fmt.Errorf("keyword doc count: %w", err)
	}
	status := &models.Status{
		Sources:        sources,
		Chunks:         deps.Store.Size(),
		IndexType:      deps.Store.IndexType(),
		KeywordDocs:    keywordDocs,
		QAMode:         cfg.QA.Mode,
		EmbeddingModel: cfg.Embedding.Provider,
	}
	st := cfg.Storage
	if n, err := storage.DiskUsageBytes(st.DatabasePath, st.BleveIndexPath, st.VectorIndexPath, st.DocumentsPath); err == nil {
		status.DiskUsageBytes = n
	}
	return status, nil
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
