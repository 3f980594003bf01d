// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mmtrader/pairsweep/internal/coordinator"
	"github.com/mmtrader/pairsweep/internal/dataset"
	"github.com/mmtrader/pairsweep/internal/metrics"
)

// Server represents the HTTP server for pairsweep.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	coord      *coordinator.Coordinator
	datasets   dataset.Provider
	metrics    *metrics.Registry
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	MetricsPath string
}

// NewServer creates a new HTTP server. A nil metrics registry disables
// the metrics endpoint and request instrumentation.
func NewServer(
	cfg Config,
	coord *coordinator.Coordinator,
	datasets dataset.Provider,
	reg *metrics.Registry,
	logger *zap.Logger,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:   logger,
		mux:      mux,
		coord:    coord,
		datasets: datasets,
		metrics:  reg,
	}

	s.setupRoutes(cfg.MetricsPath)

	var handler http.Handler = mux
	if reg != nil {
		handler = metrics.HTTPMiddleware(reg)(mux)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(metricsPath string) {
	s.mux.HandleFunc("POST /api/backtests", s.handleCreateBacktest)
	s.mux.HandleFunc("GET /api/backtests", s.handleListBacktests)
	s.mux.HandleFunc("GET /api/backtests/{id}", s.handleGetBacktest)
	s.mux.HandleFunc("PATCH /api/backtests/{id}", s.handlePatchBacktest)
	s.mux.HandleFunc("DELETE /api/backtests/{id}", s.handleDeleteBacktest)
	s.mux.HandleFunc("POST /api/backtests/{id}/cancel", s.handleCancelBacktest)
	s.mux.HandleFunc("POST /api/sweeps", s.handleCreateSweep)
	s.mux.HandleFunc("GET /api/datasets", s.handleListDatasets)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if s.metrics != nil {
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		s.mux.Handle("GET "+metricsPath,
			promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}
}

// Handler exposes the full route tree, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
