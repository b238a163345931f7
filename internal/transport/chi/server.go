// Package chi exposes the query pipeline over HTTP.
package chi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/geopulse-ai/geopulse/internal/domain"
	"github.com/geopulse-ai/geopulse/internal/usecase/dispatch"
	healthuc "github.com/geopulse-ai/geopulse/internal/usecase/health"
	"github.com/geopulse-ai/geopulse/internal/usecase/pipeline"
	"github.com/geopulse-ai/geopulse/internal/version"
)

const maxQueryBytes = 16 << 10

// Error response codes.
const (
	codeBadRequest        = "bad_request"
	codeMissingCredential = "missing_credential"
	codeRateLimited       = "rate_limited"
	codeProviderError     = "provider_error"
	codeInternalError     = "internal_error"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// queryRequest is the body of POST /api/v1/query.
type queryRequest struct {
	Query string `json:"query"`
}

// Server routes HTTP requests to the pipeline.
type Server struct {
	pipeline *pipeline.Service
	health   *healthuc.Service
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(p *pipeline.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{pipeline: p, health: health, logger: logger}
}

// Register mounts the API routes on the router. Middleware is composed by
// the caller.
func (s *Server) Register(r chi.Router) {
	r.Post("/api/v1/query", s.ProcessQuery)
	r.Get("/api/v1/tools", s.ListTools)
	r.Get("/health", s.HealthCheck)
	r.Get("/version", s.Version)
	r.Get("/metrics", s.Metrics)
}

// ProcessQuery handles POST /api/v1/query.
func (s *Server) ProcessQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Query text is required")
		return
	}

	outcome := s.pipeline.Process(r.Context(), req.Query)
	if !outcome.Success {
		s.handleOutcomeError(w, outcome)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// ListTools handles GET /api/v1/tools, advertising the executable tool set.
func (s *Server) ListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": dispatch.Definitions})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Version handles GET /version.
func (s *Server) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": version.Version,
		"commit":  version.Commit,
		"date":    version.Date,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// handleOutcomeError maps a failed outcome to a status without exposing
// internals beyond the sentinel text already in the response.
func (s *Server) handleOutcomeError(w http.ResponseWriter, outcome domain.PipelineOutcome) {
	s.logger.Warn("Query processing failed", zap.String("response", outcome.Response))

	switch {
	case strings.Contains(outcome.Response, domain.ErrMissingCredential.Error()):
		writeError(w, http.StatusServiceUnavailable, codeMissingCredential, outcome.Response)
	case strings.Contains(outcome.Response, domain.ErrRateLimited.Error()):
		writeError(w, http.StatusTooManyRequests, codeRateLimited, outcome.Response)
	case strings.Contains(outcome.Response, domain.ErrProvider.Error()):
		writeError(w, http.StatusBadGateway, codeProviderError, outcome.Response)
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, outcome.Response)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
