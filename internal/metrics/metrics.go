// Package metrics exposes prometheus counters for the auth operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for OperationsTotal.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeInternal = "internal_error"
)

// Metrics holds the counters. One instance is built in main and shared; no
// package-level registry state.
type Metrics struct {
	registry *prometheus.Registry

	OperationsTotal *prometheus.CounterVec
	EmailsTotal     *prometheus.CounterVec
}

// New builds the metric set on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authd",
			Name:      "operations_total",
			Help:      "Auth operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		EmailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authd",
			Name:      "emails_total",
			Help:      "Notification emails by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}

	m.registry.MustRegister(m.OperationsTotal, m.EmailsTotal)
	return m
}

// Registry returns the registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records one operation outcome.
func (m *Metrics) Observe(operation, outcome string) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveEmail records one notification send outcome.
func (m *Metrics) ObserveEmail(kind, outcome string) {
	if m == nil {
		return
	}
	m.EmailsTotal.WithLabelValues(kind, outcome).Inc()
}
