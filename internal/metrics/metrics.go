package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jask/opsconsole/internal/apperr"
)

// Metrics holds the console's Prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	// CommandsTotal counts console commands by store, operation and outcome.
	CommandsTotal *prometheus.CounterVec
	// CommandDuration observes how long a command took, store mutation and
	// journal write included.
	CommandDuration *prometheus.HistogramVec
	// VerificationRemaining is the live countdown of the partner session.
	VerificationRemaining prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opsconsole_commands_total",
				Help: "Total number of console commands by outcome",
			},
			[]string{"store", "op", "outcome"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "opsconsole_command_duration_seconds",
				Help:    "Duration of console commands",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"store", "op"},
		),
		VerificationRemaining: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "opsconsole_verification_remaining_seconds",
				Help: "Seconds left on the active verification session",
			},
		),
	}
	m.Registry.MustRegister(m.CommandsTotal, m.CommandDuration, m.VerificationRemaining)
	return m
}

// Observe records one command. err classifies the outcome.
func (m *Metrics) Observe(store, op string, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(store, op, apperr.Kind(err)).Inc()
	m.CommandDuration.WithLabelValues(store, op).Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
