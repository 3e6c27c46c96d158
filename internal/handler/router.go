package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"price-resolution-api/internal/middleware"
)

// RouterOptions configures the middleware chain.
type RouterOptions struct {
	Logger *slog.Logger
	// Nil disables rate limiting
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
}

// NewRouter mounts the API routes behind the standard middleware chain.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware (order matters)
	r.Use(middleware.CorrelationIDMiddleware)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.TracingMiddleware())
	if opts.RateLimiter != nil {
		r.Use(middleware.RateLimitMiddleware(opts.RateLimiter))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.CorrelationIDHeader, "traceparent", "tracestate"},
		ExposedHeaders: []string{middleware.CorrelationIDHeader},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/prices", h.GetPrice)
		r.Get("/features", h.ListFeatures)
	})

	r.Get("/health", h.Health)

	return r
}
