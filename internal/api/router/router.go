package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gramseva/sahayak/internal/conversation"
	httpmiddleware "github.com/gramseva/sahayak/internal/http/middleware"
	"github.com/gramseva/sahayak/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	ConversationHandler *conversation.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// Requests per second and burst for the /search endpoint.
	// Zero disables rate limiting.
	SearchRateLimit float64
	SearchRateBurst int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.ConversationHandler.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Group(func(search chi.Router) {
		if cfg.SearchRateLimit > 0 {
			search.Use(httpmiddleware.RateLimit(cfg.SearchRateLimit, cfg.SearchRateBurst))
		}
		search.Post("/search", cfg.ConversationHandler.Search)
	})

	return r
}
