// Package server exposes the sync engine over HTTP: an unauthenticated
// health probe and a bearer-token-protected sync endpoint.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ricardodantas/tickit-sync/internal/config"
	"github.com/ricardodantas/tickit-sync/internal/engine"
)

// Server wires the router, the sync engine, and the listener lifecycle.
type Server struct {
	cfg     config.Config
	engine  *engine.Engine
	logger  *slog.Logger
	version string
}

// New creates a Server. If logger is nil, slog.Default() is used.
func New(cfg config.Config, eng *engine.Engine, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, engine: eng, logger: logger, version: version}
}

// Handler builds the HTTP router. The health endpoint is reachable without
// credentials so load balancers and container runtimes can probe it.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(s.logRequests)
	r.Use(chimw.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post("/api/v1/sync", s.handleSync)
	})

	return r
}

// Run serves HTTP until ctx is canceled, then drains in-flight requests
// before returning.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("listening", "addr", srv.Addr, "version", s.version)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
