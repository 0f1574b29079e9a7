package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/apiconsole/internal/metrics"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.recoveryMiddleware)
	if s.cfg.CORS.Enabled {
		r.Use(s.corsMiddleware)
	}
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, msgNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})

	// Monitoring (no auth required)
	r.Get("/api/v1/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Data routes
	r.Group(func(r chi.Router) {
		if s.secCfg.Auth.Enabled {
			r.Use(s.authMiddleware)
		}

		r.Route("/api/dth22", func(r chi.Router) {
			r.Get("/", s.handleListReadings)
			r.Post("/", s.handleCreateReading)
			r.Put("/", s.handleUpdateReading)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetReading)
				r.Put("/", s.handleUpdateReading)
			})
		})

		r.Get(s.wsPath(), s.handleWebSocket)
	})

	return r
}

func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return "/api/v1/ws"
	}
	return s.wsCfg.Path
}
