package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/emberlabs/snapmetrics/internal/config"
)

// SetupRoutes configures all routes. The /shared subtree is anonymous by
// design (the token is the credential); /api is the private surface, scoped
// by the account header the auth edge injects.
func SetupRoutes(cfg config.ServerConfig, h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS - the dashboard and public share pages are separate origins
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	// Public share surface - token is the only credential
	r.Route("/shared/{token}", func(r chi.Router) {
		r.Get("/data", h.GetSharedData)
		r.Get("/csv", h.GetSharedCSV)
	})

	// Private surface - identity comes from the auth edge upstream
	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshots/{snapshotID}/data", h.GetSnapshotData)
		r.Post("/shares", h.CreateShare)
		r.Delete("/shares/{token}", h.RevokeShare)
	})

	return r
}
