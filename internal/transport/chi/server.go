// Package chi exposes the ingestion, search and stats use cases over a
// JSON HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arkival/arkival/internal/domain"
	"github.com/arkival/arkival/internal/metrics"
	healthuc "github.com/arkival/arkival/internal/usecase/health"
	ingestuc "github.com/arkival/arkival/internal/usecase/ingest"
	searchuc "github.com/arkival/arkival/internal/usecase/search"
	statsuc "github.com/arkival/arkival/internal/usecase/stats"
)

const maxIngestBatch = 100

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the use case services.
type Server struct {
	ingest        *ingestuc.Service
	search        *searchuc.Service
	stats         *statsuc.Service
	health        *healthuc.Service
	mode          string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. mode is the store backend label
// reported in stats responses.
func NewServer(
	ingest *ingestuc.Service,
	search *searchuc.Service,
	stats *statsuc.Service,
	health *healthuc.Service,
	mode string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest: ingest,
		search: search,
		stats:  stats,
		health: health,
		mode:   mode,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, "empty_query"),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadRequest, "dimension_mismatch"),
		sentinelHandler(domain.ErrEmbeddingFailed, http.StatusBadGateway, "embedding_failed"),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"),
		sentinelHandler(domain.ErrBatchWriteFailed, http.StatusInternalServerError, "batch_write_failed"),
	}
	return s
}

// Routes mounts the API on a chi router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/documents", s.IngestDocuments)
		r.Post("/search", s.SearchDocuments)
		r.Get("/stats", s.GetStats)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type ingestDocumentItem struct {
	SourceID string `json:"source_id,omitempty"`
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

type ingestRequest struct {
	Documents []ingestDocumentItem `json:"documents"`
}

type ingestResultItem struct {
	SourceID string `json:"source_id"`
	Filename string `json:"filename"`
	Year     string `json:"year"`
	Chunks   int    `json:"chunks"`
}

type ingestResponse struct {
	Ingested []ingestResultItem `json:"ingested"`
	Skipped  int                `json:"skipped"`
}

// IngestDocuments handles POST /api/v1/documents.
func (s *Server) IngestDocuments(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if len(req.Documents) == 0 || len(req.Documents) > maxIngestBatch {
		writeError(w, http.StatusBadRequest, "validation_failed",
			"documents count must be between 1 and 100")
		return
	}
	for i, d := range req.Documents {
		if d.Filename == "" && d.SourceID == "" {
			writeError(w, http.StatusBadRequest, "validation_failed",
				"document "+strconv.Itoa(i)+" needs a filename or source_id")
			return
		}
	}

	docs := make([]ingestuc.Document, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = ingestuc.Document{SourceID: d.SourceID, Filename: d.Filename, Text: d.Text}
	}

	report, err := s.ingest.IngestAll(r.Context(), docs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	metrics.DocumentsIngestedTotal.WithLabelValues("ok").Add(float64(len(report.Ingested)))
	metrics.DocumentsIngestedTotal.WithLabelValues("skipped").Add(float64(report.Skipped))

	resp := ingestResponse{Ingested: make([]ingestResultItem, len(report.Ingested)), Skipped: report.Skipped}
	for i, res := range report.Ingested {
		metrics.ChunksStoredTotal.Add(float64(res.Chunks))
		resp.Ingested[i] = ingestResultItem{
			SourceID: res.SourceID,
			Filename: res.Filename,
			Year:     res.Year,
			Chunks:   res.Chunks,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type searchRequest struct {
	Query         string  `json:"query"`
	Limit         int     `json:"limit,omitempty"`
	Year          string  `json:"year,omitempty"`
	Filename      string  `json:"filename,omitempty"`
	MinSimilarity float64 `json:"min_similarity,omitempty"`
}

type searchResultItem struct {
	ID          string  `json:"id"`
	Content     string  `json:"content"`
	Filename    string  `json:"filename"`
	Year        string  `json:"year"`
	Similarity  float64 `json:"similarity"`
	ChunkIndex  int     `json:"chunk_index"`
	TotalChunks int     `json:"total_chunks"`
}

type searchResponse struct {
	Results []searchResultItem `json:"results"`
	Count   int                `json:"count"`
}

// SearchDocuments handles POST /api/v1/search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.MinSimilarity < 0 || req.MinSimilarity > 1 {
		writeError(w, http.StatusBadRequest, "validation_failed",
			"min_similarity must be between 0 and 1")
		return
	}

	filter := domain.SearchFilter{
		Year:          req.Year,
		Filename:      req.Filename,
		MinSimilarity: req.MinSimilarity,
	}

	results, err := s.search.SearchByText(r.Context(), req.Query, req.Limit, filter)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(s.mode, "error").Inc()
		s.handleDomainError(w, err)
		return
	}
	metrics.SearchRequestsTotal.WithLabelValues(s.mode, "success").Inc()

	resp := searchResponse{Results: make([]searchResultItem, len(results)), Count: len(results)}
	for i, res := range results {
		resp.Results[i] = searchResultItem{
			ID:          res.ID,
			Content:     res.Content,
			Filename:    res.Filename,
			Year:        res.Year,
			Similarity:  res.Similarity,
			ChunkIndex:  res.ChunkIndex,
			TotalChunks: res.TotalChunks,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type yearCountItem struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}

type fileCountItem struct {
	Filename string `json:"filename"`
	Count    int    `json:"count"`
}

type statsResponse struct {
	TotalChunks     int             `json:"total_chunks"`
	DocumentsByYear []yearCountItem `json:"documents_by_year"`
	DocumentsByFile []fileCountItem `json:"documents_by_file"`
	Mode            string          `json:"mode"`
}

// GetStats handles GET /api/v1/stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Collect(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := statsResponse{
		TotalChunks:     stats.TotalDocuments,
		DocumentsByYear: make([]yearCountItem, len(stats.DocumentsByYear)),
		DocumentsByFile: make([]fileCountItem, len(stats.DocumentsByFile)),
		Mode:            s.mode,
	}
	for i, y := range stats.DocumentsByYear {
		resp.DocumentsByYear[i] = yearCountItem{Year: y.Year, Count: y.Count}
	}
	for i, f := range stats.DocumentsByFile {
		resp.DocumentsByFile[i] = fileCountItem{Filename: f.Filename, Count: f.Count}
	}

	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrDimensionMismatch,
		domain.ErrEmbeddingFailed,
		domain.ErrStoreUnavailable,
		domain.ErrBatchWriteFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
