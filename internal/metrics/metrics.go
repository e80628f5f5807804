// Package metrics exposes Prometheus instrumentation for the council.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the council collectors. A nil *Metrics is a valid no-op
// receiver so the executor can run uninstrumented in tests.
type Metrics struct {
	Invocations   *prometheus.CounterVec
	InvokeSeconds *prometheus.HistogramVec
	PhaseSeconds  *prometheus.HistogramVec
}

// New creates the collectors and registers them with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warcouncil_invocations_total",
				Help: "Expert invocations by outcome.",
			},
			[]string{"expert", "status"},
		),
		InvokeSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "warcouncil_invocation_duration_seconds",
				Help:    "Wall time of individual expert invocations.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"expert"},
		),
		PhaseSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "warcouncil_phase_duration_seconds",
				Help:    "Wall time of deliberation phases.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"phase"},
		),
	}
	reg.MustRegister(m.Invocations, m.InvokeSeconds, m.PhaseSeconds)
	return m
}

// ObserveInvocation records one expert invocation.
func (m *Metrics) ObserveInvocation(expert, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Invocations.WithLabelValues(expert, status).Inc()
	m.InvokeSeconds.WithLabelValues(expert).Observe(d.Seconds())
}

// ObservePhase records one completed phase.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.PhaseSeconds.WithLabelValues(phase).Observe(d.Seconds())
}
