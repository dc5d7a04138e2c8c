// Package metrics holds the Prometheus collectors of the identity server.
// All methods are nil-safe so components can run without metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeIssued   = "issued"
	OutcomeRejected = "rejected"
)

type Metrics struct {
	registry *prometheus.Registry

	credentialAttempts *prometheus.CounterVec
	rpcDuration        *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry, together with the
// process and Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		credentialAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasklist_credential_attempts_total",
				Help: "Credential operations by event and outcome",
			},
			[]string{"event", "outcome"},
		),
		rpcDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tasklist_grpc_request_duration_seconds",
				Help:    "gRPC request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "code"},
		),
	}
}

// RecordAttempt counts one credential operation, e.g. ("login", OutcomeIssued).
func (m *Metrics) RecordAttempt(event, outcome string) {
	if m == nil {
		return
	}
	m.credentialAttempts.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(method, code).Observe(d.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
