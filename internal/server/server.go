// Package server assembles the chi router and its middleware chain:
// request IDs, structured logging, timeouts, panic recovery, CORS,
// metrics, and OpenTelemetry instrumentation.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/universal-a2a/gateway/internal/config"
)

type Server struct {
	Router *chi.Mux
	logger *slog.Logger
	srv    *http.Server
}

// New builds the router with the full middleware chain applied in order.
func New(cfg config.ServerConfig, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowOrigins,
		AllowedHeaders: cfg.CORS.AllowHeaders,
		AllowedMethods: cfg.CORS.AllowMethods,
	}))
	r.Use(TimeoutMiddleware(60 * time.Second))
	r.Use(middleware.Recoverer)
	r.Use(noStore)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "a2a-gateway")
	})

	return &Server{
		Router: r,
		logger: logger,
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// noStore marks every reply uncacheable; answers are per-conversation.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting server", slog.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
