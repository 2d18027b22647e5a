package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/kioku/internal/knowledge"
	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/storage"
	"github.com/hyperjump/kioku/internal/summarize"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := BuildStatus(r.Context(), s.Deps, s.config)
	if err != nil {
		s.respondFailure(w, "status", err)
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var input models.SourceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input.Origin = models.OriginText
	input.Path = ""
	s.logger.Debug("ingest request", zap.String("id", input.ID), zap.String("title", input.Title))
	src, err := s.Indexer.IngestText(r.Context(), input)
	if err != nil {
		s.respondFailure(w, "ingest", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, models.IngestResponse{ID: src.ID, Chunks: src.ChunkCount})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := int64(s.config.Server.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "upload exceeds "+strconv.Itoa(s.config.Server.MaxUploadMB)+" MB")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "could not read upload")
		return
	}
	s.logger.Debug("upload request", zap.String("filename", header.Filename), zap.Int("bytes", len(content)))
	src, err := s.Indexer.IngestUpload(r.Context(), header.Filename, content)
	if err != nil {
		s.respondFailure(w, "upload", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, models.IngestResponse{ID: src.ID, Chunks: src.ChunkCount})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	answer, err := s.Answerer.Answer(r.Context(), req.Question)
	if err != nil {
		s.respondFailure(w, "ask", err)
		return
	}
	s.respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	matches, err := s.Store.Matches(r.Context(), req.Query, req.TopK)
	if err != nil {
		s.respondFailure(w, "search", err)
		return
	}
	if matches == nil {
		matches = []knowledge.Match{}
	}
	s.respondJSON(w, http.StatusOK, models.SearchResponse{Query: req.Query, Matches: matches})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "text cannot be empty")
		return
	}
	summary, err := s.Summarizer.Summarize(r.Context(), req.Text)
	if err != nil {
		s.respondFailure(w, "summarize", err)
		return
	}
	n := req.KeyPoints
	if n <= 0 {
		n = s.config.Summarizer.KeyPoints
	}
	points := summarize.KeyPoints(req.Text, n)
	if points == nil {
		points = []string{}
	}
	s.respondJSON(w, http.StatusOK, models.SummarizeResponse{Summary: summary, KeyPoints: points})
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := models.SourceQuery{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	q.Normalize()

	list := &models.SourceList{Sources: []*models.SourceHit{}}
	if q.Query == "" {
		sources, err := s.Storage.ListSources(ctx, q.Offset, q.Limit)
		if err != nil {
			s.respondFailure(w, "list sources", err)
			return
		}
		total, err := s.Storage.CountSources(ctx)
		if err != nil {
			s.respondFailure(w, "count sources", err)
			return
		}
		for _, src := range sources {
			list.Sources = append(list.Sources, &models.SourceHit{Source: src})
		}
		list.Total = total
	} else {
		var err error
		list, err = s.Finder.Find(ctx, q)
		if err != nil {
			s.respondFailure(w, "search sources", err)
			return
		}
	}
	for _, hit := range list.Sources {
		hit.Content = ""
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	src, err := s.Storage.GetSource(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondFailure(w, "get source", err)
		return
	}
	chunks := s.Store.Chunks(src.ChunkStart, src.ChunkCount)
	if chunks == nil {
		chunks = []string{}
	}
	s.respondJSON(w, http.StatusOK, models.SourceDetail{Source: src, Chunks: chunks})
}

// respondFailure maps input errors to 400 and missing sources to 404. Anything
// else is logged and reported as a 500 without the raw cause.
func (s *Server) respondFailure(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, knowledge.ErrEmptyInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "source not found")
		return
	}
	s.logger.Error(op+" failed", zap.Error(err))
	msg := op + " failed"
	var stageErr *knowledge.StageError
	if errors.As(err, &stageErr) {
		msg = op + " failed at " + string(stageErr.Stage) + " stage"
	}
	s.respondError(w, http.StatusInternalServerError, msg)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
