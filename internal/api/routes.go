package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zapponejosh/ekadashi-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET /health                          liveness and ephemeris self-check
//	GET /metrics                         Prometheus metrics
//	GET /api/v1/ekadashi?from=&to=       events in a date range
//	GET /api/v1/ekadashi/next?from=      next event on or after a date
//	GET /api/v1/ekadashi/{year}          events of a year (append .ics for iCalendar)
//	GET /api/v1/day/{date}               classification and tithi checkpoints of a date
//	GET /api/v1/parana/{date}?paksha=    fasting window after an Ekadashi
//	GET /api/v1/tithi?at=                tithi active at an instant
//	GET /api/v1/compare/{year}           events of a year at several locations
//	GET /api/v1/admin/locations          location presets (API key)
//
// Location is taken from location=<preset>, or lat, lon and tz, or the
// configured default.
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})

	// ==========================================================================
	// Public routes
	// ==========================================================================
	r.Get("/health", handlers.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ekadashi", handlers.GetRange)
		r.Get("/ekadashi/next", handlers.GetNext)
		r.Get("/ekadashi/{year}", handlers.GetYear)
		r.Get("/day/{date}", handlers.GetDay)
		r.Get("/parana/{date}", handlers.GetParana)
		r.Get("/tithi", handlers.GetTithi)
		r.Get("/compare/{year}", handlers.GetCompare)

		// ======================================================================
		// Admin routes (API key)
		// ======================================================================
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg, logger))
			r.Get("/admin/locations", handlers.ListLocations)
		})
	})

	return r
}
