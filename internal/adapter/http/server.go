// Package http exposes the dashboard API: the computed index table, state
// summaries, funding what-if simulations, and the usual health, readiness,
// and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/elder-vulnerability-index/internal/config"
	"github.com/couchcryptid/elder-vulnerability-index/internal/domain"
	"github.com/couchcryptid/elder-vulnerability-index/internal/observability"
)

// IndexService provides the current snapshot and on-demand rebuilds.
type IndexService interface {
	CheckReadiness(ctx context.Context) error
	Current() *domain.IndexSnapshot
	Refresh(ctx context.Context) error
}

// Server exposes the dashboard API over HTTP.
type Server struct {
	httpServer *http.Server
	service    IndexService
	simCache   *simulationCache

	sensitivity float64
	thresholds  domain.TierThresholds

	validate *validator.Validate
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewServer creates the API server. Simulation parameters and the listen
// address come from the service configuration.
func NewServer(cfg *config.Config, service IndexService, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		service:     service,
		simCache:    newSimulationCache(cfg.SimulationCacheSize),
		sensitivity: cfg.Sensitivity,
		thresholds:  cfg.TierThresholds(),
		validate:    validator.New(),
		logger:      logger,
		metrics:     metrics,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/regions", s.handleRegions)
	mux.HandleFunc("GET /api/v1/regions/{fips}", s.handleRegion)
	mux.HandleFunc("GET /api/v1/states", s.handleStates)
	mux.HandleFunc("POST /api/v1/regions/{fips}/simulate", s.handleRegionSimulate)
	mux.HandleFunc("POST /api/v1/simulate", s.handleSimulate)
	mux.HandleFunc("POST /api/v1/refresh", s.handleRefresh)

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      s.withRequestID(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// withRequestID tags every request with an ID for log correlation and echoes
// it back to the caller.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.service.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
