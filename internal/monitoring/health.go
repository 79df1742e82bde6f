// Package monitoring wires health checks into an ops HTTP server with
// /healthz and /readyz endpoints.
package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	pkgconfig "github.com/bcn-art-compass/telegram-bot/pkg/config"
	"github.com/bcn-art-compass/telegram-bot/pkg/health"
	"github.com/bcn-art-compass/telegram-bot/pkg/health/checkers"
	"github.com/bcn-art-compass/telegram-bot/pkg/logger"
)

// ConnectorCheck reports whether a platform connector can reach its API.
type ConnectorCheck interface {
	Ready(ctx context.Context) error
}

// Config holds configuration for the health monitor
type Config struct {
	Logger            logger.Logger
	OrchestratorURL   string         // base URL probed for readiness
	TelegramConnector ConnectorCheck // optional Telegram connectivity check
	Timeout           time.Duration  // per-check timeout
	FailureThreshold  int            // consecutive failures before reporting unhealthy
}

// HealthMonitor manages health checks and the ops endpoints.
type HealthMonitor struct {
	checker *health.Checker
	logger  logger.Logger
}

// NewHealthMonitor creates a health monitor with the configured checks.
func NewHealthMonitor(cfg Config) *HealthMonitor {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	failureThreshold := cfg.FailureThreshold
	if failureThreshold == 0 {
		failureThreshold = 3
	}

	checker := health.New(
		health.WithLogger(cfg.Logger),
		health.WithTimeout(timeout),
		health.WithFailureThreshold(failureThreshold),
	)

	// Process is alive if the check can run at all
	checker.AddLivenessCheck(health.NewCheckFunc("process", func(ctx context.Context) error {
		return nil
	}))

	if cfg.OrchestratorURL != "" {
		checker.AddReadinessCheck(checkers.NewHTTPChecker(cfg.OrchestratorURL, "orchestrator"))
	}

	if cfg.TelegramConnector != nil {
		checker.AddReadinessCheck(health.NewCheckFunc("telegram", func(ctx context.Context) error {
			return cfg.TelegramConnector.Ready(ctx)
		}))
	}

	return &HealthMonitor{
		checker: checker,
		logger:  cfg.Logger,
	}
}

// Router returns the chi router serving the health endpoints.
func (h *HealthMonitor) Router() chi.Router {
	r := chi.NewRouter()
	if h.logger != nil {
		r.Use(h.logger.HTTPMiddleware)
	}
	r.Get("/healthz", h.checker.LivenessHandler())
	r.Get("/readyz", h.checker.ReadinessHandler())
	return r
}

// Listen serves the ops endpoints and blocks until the context is cancelled.
func (h *HealthMonitor) Listen(ctx context.Context, cfg pkgconfig.HTTPServerConfig) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Router(),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  cfg.IdleTimeout(),
	}

	if h.logger != nil {
		h.logger.Info("Starting ops HTTP server", logger.IntField("port", cfg.Port))
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		if h.logger != nil {
			h.logger.Info("Stopping ops HTTP server")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
