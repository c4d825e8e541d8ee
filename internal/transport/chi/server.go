package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pitchsearch/internal/domain"
	logpkg "github.com/kailas-cloud/pitchsearch/internal/logger"
	healthuc "github.com/kailas-cloud/pitchsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/pitchsearch/internal/usecase/search"
)

// Client-facing error messages.
const (
	MsgInvalidBody    = "Invalid request body"
	MsgQueryRequired  = "Query is required"
	MsgRateLimited    = "Rate limit exceeded"
	MsgSearchFailed   = "Failed to perform search"
	MsgUnauthorized   = "Unauthorized"
	MsgInternalError  = "Internal server error"
	maxSearchBodySize = 64 << 10
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the JSON API.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrQueryRequired, http.StatusBadRequest, MsgQueryRequired),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, MsgRateLimited),
	}
	return s
}

// Search handles POST /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	if req.Query == nil {
		writeError(w, http.StatusBadRequest, MsgQueryRequired)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.Search(ctx, *req.Query)
	if err != nil {
		s.handleSearchError(w, r, err)
		return
	}

	items := make([]searchResultItem, len(results))
	for i := range results {
		items[i] = searchResultToDTO(&results[i])
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResponse{Result: items})
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

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, message)
		return true
	}
}

// handleSearchError maps client errors to 4xx. Everything else is logged
// with the request logger and answered with a generic 500.
func (s *Server) handleSearchError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	logpkg.FromContext(r.Context()).Error("Search failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, MsgSearchFailed)
}
