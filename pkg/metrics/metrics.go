// Package metrics provides Prometheus metrics for the Telegram relay:
// inbound update counters, relay outcomes, and orchestrator call latency.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bcn-art-compass/telegram-bot/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const subsystem = "relay"

// Skip reasons recorded on UpdatesSkipped.
const (
	SkipReasonEmptyText  = "empty_text"
	SkipReasonBotSender  = "bot_sender"
	SkipReasonNonMessage = "non_message"
)

// Fallback reasons recorded on RelayFallbacks.
const (
	FallbackReasonTransport    = "transport"
	FallbackReasonStatus       = "status"
	FallbackReasonBadBody      = "bad_body"
	FallbackReasonMissingReply = "missing_reply"
)

// Metrics collects Prometheus metrics for the relay.
type Metrics struct {
	reg *prometheus.Registry

	UpdatesReceived prometheus.Counter
	UpdatesSkipped  *prometheus.CounterVec
	RelaysSucceeded prometheus.Counter
	RelayFallbacks  *prometheus.CounterVec
	RelayDuration   prometheus.Histogram
	SendFailures    prometheus.Counter

	log logger.Logger
}

// New creates a Metrics instance with all relay collectors registered.
func New(l logger.Logger) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		log: l,
	}

	m.UpdatesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "updates_received_total",
		Help:      "Total Telegram updates received",
	})
	m.UpdatesSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "updates_skipped_total",
		Help:      "Total Telegram updates skipped without a relay call",
	}, []string{"reason"})
	m.RelaysSucceeded = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "relays_succeeded_total",
		Help:      "Total messages relayed with an orchestrator reply",
	})
	m.RelayFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "relay_fallbacks_total",
		Help:      "Total relays answered with the fallback message",
	}, []string{"reason"})
	m.RelayDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Subsystem: subsystem,
		Name:      "orchestrator_request_duration_seconds",
		Help:      "Orchestrator /chat request duration in seconds",
		Buckets:   []float64{0.1, 0.3, 0.5, 1.0, 3.0, 5.0, 10.0, 30.0, 60.0},
	})
	m.SendFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "telegram_send_failures_total",
		Help:      "Total failures sending a reply back to Telegram",
	})

	m.reg.MustRegister(
		m.UpdatesReceived,
		m.UpdatesSkipped,
		m.RelaysSucceeded,
		m.RelayFallbacks,
		m.RelayDuration,
		m.SendFailures,
	)

	return m
}

// ObserveRelay records the outcome and duration of one relay call.
// fallbackReason is empty for a successful relay.
func (m *Metrics) ObserveRelay(duration time.Duration, fallbackReason string) {
	m.RelayDuration.Observe(duration.Seconds())
	if fallbackReason == "" {
		m.RelaysSucceeded.Inc()
		return
	}
	m.RelayFallbacks.WithLabelValues(fallbackReason).Inc()
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Listen starts the metrics HTTP server on the specified port and blocks
// until the context is cancelled.
func (m *Metrics) Listen(ctx context.Context, port int) error {
	m.log.Info("Starting metrics listener", logger.IntField("port", port))

	mux := http.NewServeMux()
	mux.Handle("/", http.NotFoundHandler())
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		m.log.Info("Stopping metrics listener")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
