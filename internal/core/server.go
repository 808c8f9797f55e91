// Package core provides the HTTP chassis for the soil water API: the chi
// router, the middleware chain, JSON envelopes and request validation.
// Domain handlers mount themselves under /v1 via V1RouteRegistrars.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"soilwater/internal/config"
)

// MetricsCollector records API telemetry.
type MetricsCollector interface {
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// Server holds the dependencies shared by every request.
type Server struct {
	Config         *config.Config
	Logger         *slog.Logger
	Validator      *Validator
	Metrics        MetricsCollector
	Authenticator  Authenticator
	AuthGuard      AuthGuard
	RateLimitStore RateLimitStore
	HealthProbes   []HealthProbe

	// MetricsHandler, when set, is served unauthenticated at /metrics.
	MetricsHandler http.Handler

	// V1RouteRegistrars mount domain handlers; populated by main to avoid
	// import cycles between core and handler packages.
	V1RouteRegistrars []func(chi.Router)

	router *chi.Mux
}

// NewServer validates the critical dependencies and prepares an empty
// router. Callers set optional collaborators and then call MountRoutes.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(),
		router:    chi.NewRouter(),
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

// Serve runs an http.Server on addr until ctx is cancelled, then drains
// in-flight requests for up to drain.
func (s *Server) Serve(ctx context.Context, addr string, drain time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("server shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.Logger.Info("server shutdown complete")
	return nil
}
