package routes

import (
	"github.com/go-chi/chi/v5"

	"infinite-experiment/briefing/internal/api"
	"infinite-experiment/briefing/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, deps *api.Dependencies) {
	limiter := middleware.NewRateLimiter(deps.Config.RateLimit)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.MetricsMiddleware(deps.Metrics))

		v1.Route("/fpl", func(fpl chi.Router) {
			fpl.With(limiter.Middleware).Post("/compose", handlers.ComposeFpl())

			if list := handlers.ListAudits(); list != nil {
				fpl.Get("/audits", list)
			}
		})
	})
}
