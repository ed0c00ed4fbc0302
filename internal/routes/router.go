package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"infinite-experiment/briefing/internal/api"
	"infinite-experiment/briefing/internal/constants"
	"infinite-experiment/briefing/internal/logging"
	"infinite-experiment/briefing/internal/middleware"
)

// RegisterRoutes builds the HTTP handler. gatherer backs /metrics and should
// be the registry the deps' metrics were registered with.
func RegisterRoutes(deps *api.Dependencies, gatherer prometheus.Gatherer, upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.Logging)
	r.Use(middleware.RecoverMiddleware(deps.Config.IsDevelopment()))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", constants.HeaderRequestID},
		ExposedHeaders:   []string{constants.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// health check and metrics
	r.Get("/healthCheck", api.HealthCheckHandler(deps.DB, deps.Redis, upSince))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	handlers := api.NewHandlers(deps)
	RegisterAPIRoutes(r, handlers, deps)

	logging.Info("Router initialized",
		"audits_enabled", deps.Repo.Audits != nil,
		"dev_mode", deps.Config.IsDevelopment(),
	)
	return r
}
