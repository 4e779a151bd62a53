// Package chi exposes the HTTP API over the go-chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/meridianwatch/geodex/internal/domain"
	domchunk "github.com/meridianwatch/geodex/internal/domain/chunk"
	"github.com/meridianwatch/geodex/internal/domain/credibility"
	"github.com/meridianwatch/geodex/internal/domain/search/result"
	"github.com/meridianwatch/geodex/internal/domain/search/strategy"
	healthuc "github.com/meridianwatch/geodex/internal/usecase/health"
	ingestuc "github.com/meridianwatch/geodex/internal/usecase/ingest"
	searchuc "github.com/meridianwatch/geodex/internal/usecase/search"
)

// Searcher is the search usecase consumed by the HTTP layer.
type Searcher interface {
	Search(ctx context.Context, query string, p searchuc.Params) ([]result.Result, error)
}

// Ingestor is the document lifecycle usecase consumed by the HTTP layer.
type Ingestor interface {
	AddDocument(ctx context.Context, content string, meta domchunk.Metadata) (ingestuc.Result, error)
	DeleteDocument(ctx context.Context, documentID string) (int, error)
	Stats(ctx context.Context) (ingestuc.Stats, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server carries the HTTP handlers.
type Server struct {
	search Searcher
	ingest Ingestor
	health HealthChecker
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, ingest Ingestor, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{search: search, ingest: ingest, health: health, logger: logger}
}

// Routes mounts all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.handleSearch)
	r.Post("/v1/documents", s.handleAddDocument)
	r.Delete("/v1/documents/{documentID}", s.handleDeleteDocument)
	r.Get("/v1/stats", s.handleStats)
	r.Get("/healthz", s.handleHealth)
}

type searchRequest struct {
	Query           string  `json:"query"`
	NResults        int     `json:"n_results"`
	Region          string  `json:"region"`
	Country         string  `json:"country"`
	Source          string  `json:"source"`
	Strategy        string  `json:"strategy"`
	MinRelevance    float64 `json:"min_relevance"`
	WebResultsRatio float64 `json:"web_results_ratio"`
}

type searchHit struct {
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata"`
	Relevance   float64           `json:"relevance"`
	SourceType  string            `json:"source_type"`
	Credibility credibility.Score `json:"credibility"`
}

type searchResponse struct {
	Results []searchHit `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	results, err := s.search.Search(r.Context(), req.Query, searchuc.Params{
		NResults:        req.NResults,
		Region:          req.Region,
		Country:         req.Country,
		Source:          req.Source,
		Strategy:        strategy.Strategy(req.Strategy),
		MinRelevance:    req.MinRelevance,
		WebResultsRatio: req.WebResultsRatio,
	})
	if err != nil {
		s.writeDomainError(w, err, "Search failed")
		return
	}

	hits := make([]searchHit, len(results))
	for i := range results {
		res := &results[i]
		meta := res.Metadata()
		hits[i] = searchHit{
			Content:     res.Content(),
			Metadata:    metadataFields(&meta),
			Relevance:   res.Relevance(),
			SourceType:  string(res.SourceType()),
			Credibility: res.Credibility(),
		}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: hits})
}

type addDocumentRequest struct {
	Content  string `json:"content"`
	Metadata struct {
		Source       string `json:"source"`
		URL          string `json:"url"`
		Region       string `json:"region"`
		Country      string `json:"country"`
		Date         string `json:"date"`
		Title        string `json:"title"`
		DocumentType string `json:"document_type"`
	} `json:"metadata"`
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	res, err := s.ingest.AddDocument(r.Context(), req.Content, domchunk.Metadata{
		Source:       req.Metadata.Source,
		URL:          req.Metadata.URL,
		Region:       req.Metadata.Region,
		Country:      req.Metadata.Country,
		Date:         req.Metadata.Date,
		Title:        req.Metadata.Title,
		DocumentType: req.Metadata.DocumentType,
	})
	if err != nil {
		s.writeDomainError(w, err, "Document ingestion failed")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")

	n, err := s.ingest.DeleteDocument(r.Context(), documentID)
	if err != nil {
		s.writeDomainError(w, err, "Document deletion failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id":    documentID,
		"deleted_chunks": n,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ingest.Stats(r.Context())
	if err != nil {
		s.writeDomainError(w, err, "Stats failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// writeDomainError maps sentinel errors to HTTP statuses; anything unmapped is
// a 500 with a generic message.
func (s *Server) writeDomainError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
	case errors.Is(err, domain.ErrInvalidStrategy):
		writeError(w, http.StatusBadRequest, "invalid_strategy", err.Error())
	case errors.Is(err, domain.ErrChunkTooShort):
		writeError(w, http.StatusUnprocessableEntity, "chunk_too_short", err.Error())
	case errors.Is(err, domain.ErrVectorDimMismatch):
		writeError(w, http.StatusBadRequest, "vector_dim_mismatch", err.Error())
	case errors.Is(err, domain.ErrEmbeddingProvider):
		writeError(w, http.StatusBadGateway, "embedding_provider_error", err.Error())
	default:
		s.logger.Error(msg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", msg)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func metadataFields(m *domchunk.Metadata) map[string]string {
	fields := m.Tags()
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
