package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pitchsearch/internal/metrics"
)

// RouterConfig configures the HTTP router.
type RouterConfig struct {
	APIKeys        []string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	// Pages registers the HTML routes. Optional.
	Pages func(r chi.Router)
}

// NewRouter assembles middleware and routes.
func NewRouter(s *Server, cfg RouterConfig, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(WideEventMiddleware(logger))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	auth := BearerAuthMiddleware(cfg.APIKeys)
	limit := RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r.Route("/api", func(api chi.Router) {
		api.Use(corsMiddleware(cfg.CORSOrigins))
		api.Use(auth)
		api.Use(limit)
		api.Post("/search", s.Search)
	})

	// The pages run the same embed-and-search path, so they share the API's guards.
	if cfg.Pages != nil {
		r.Group(func(pages chi.Router) {
			pages.Use(auth)
			pages.Use(limit)
			cfg.Pages(pages)
		})
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Embedding-Tokens"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
