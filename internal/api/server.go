package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"pdf-rag/internal/catalog"
	"pdf-rag/internal/models"
	"pdf-rag/internal/rag"
)

// Answerer is the pipeline surface the server depends on.
type Answerer interface {
	Answer(ctx context.Context, question string) (*models.Answer, error)
}

// DocumentLister exposes the ingestion catalog.
type DocumentLister interface {
	List(ctx context.Context) ([]catalog.Document, error)
}

// Server is the HTTP boundary around the pipeline.
type Server struct {
	router   chi.Router
	pipeline Answerer
	catalog  DocumentLister
	log      zerolog.Logger
}

func NewServer(pipeline Answerer, cat DocumentLister, log zerolog.Logger) *Server {
	s := &Server{pipeline: pipeline, catalog: cat, log: log}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/ask", s.handleAsk)
	r.Get("/documents", s.handleListDocuments)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question must not be empty")
		return
	}

	answer, err := s.pipeline.Answer(r.Context(), req.Question)
	if err != nil {
		s.respondPipelineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.catalog.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("listing documents failed")
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []catalog.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

// respondPipelineError maps the pipeline's error kinds onto status codes.
// Upstream outages are 503 so callers know a retry may help.
func (s *Server) respondPipelineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		// Client went away; nothing meaningful to write.
		s.log.Debug().Msg("request canceled")
		return
	case errors.Is(err, rag.ErrEmbeddingUnavailable),
		errors.Is(err, rag.ErrIndexUnavailable),
		errors.Is(err, rag.ErrGenerationUnavailable):
		s.log.Error().Err(err).Msg("upstream dependency unavailable")
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, rag.ErrDimensionMismatch):
		s.log.Error().Err(err).Msg("dimension mismatch")
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.log.Error().Err(err).Msg("answer failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
