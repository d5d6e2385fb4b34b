// Package api exposes the snapshot service over HTTP: the public tokenized
// share endpoints and the private dashboard/management endpoints.
package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/emberlabs/snapmetrics/internal/config"
	"github.com/emberlabs/snapmetrics/internal/service/share"
	"github.com/emberlabs/snapmetrics/internal/snapshot"
)

// Server is the HTTP front end. All dependencies are injected; the server
// holds no lazily-constructed global clients.
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
	router  *chi.Mux
}

// Handlers bundles the request handlers and their collaborators.
type Handlers struct {
	shares  *share.Service
	builder *snapshot.Builder
	db      *sql.DB      // health probe only
	redis   *redis.Client // health probe only, may be nil
}

// NewHandlers creates the handler set.
func NewHandlers(shares *share.Service, builder *snapshot.Builder, db *sql.DB, rdb *redis.Client) *Handlers {
	return &Handlers{shares: shares, builder: builder, db: db, redis: rdb}
}

// NewServer creates the API server.
func NewServer(cfg config.ServerConfig, h *Handlers) *Server {
	router := SetupRoutes(cfg, h)
	return &Server{
		config:  cfg,
		handler: router,
		router:  router,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// Snapshot builds download and aggregate three CSVs inline, so the
		// write timeout leaves room for slow storage on cold cache.
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
