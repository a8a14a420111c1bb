package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
)

type Options struct {
	Leads       *handlers.LeadHandler
	Health      *handlers.HealthHandler
	RateLimiter *middleware.RateLimiter
	CORSOrigins []string
	AccessLog   bool
}

// New mounts the lead routes at the root and under /api.
func New(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if opts.AccessLog {
		r.Use(chimiddleware.Logger)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	}))

	if opts.Health != nil {
		r.Get("/health", opts.Health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) { leadRoutes(r, opts) })
	r.Route("/api", func(r chi.Router) { leadRoutes(r, opts) })

	return r
}

func leadRoutes(r chi.Router, opts Options) {
	h := opts.Leads

	r.Get("/leads", h.List)
	r.Get("/leads/{id}", h.Read)

	r.Group(func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Handler)
		}
		r.Post("/leads", h.Create)
		r.Put("/leads/{id}", h.Update)
		r.Delete("/leads/{id}", h.Delete)
	})
}
