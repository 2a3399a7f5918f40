// Package metrics exposes probe and transition counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/connectivity-led/internal/logic"
)

const namespace = "connectivity_led"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	probes      *prometheus.CounterVec
	latency     prometheus.Histogram
	failures    prometheus.Gauge
	up          prometheus.Gauge
	transitions *prometheus.CounterVec
	ledErrors   prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Reachability probes by result.",
		}, []string{"result"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Duration of reachability probes.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		failures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consecutive_failures",
			Help:      "Consecutive failed probes since the last success.",
		}),
		up: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "internet_up",
			Help:      "Debounced status: 1 UP, 0 DOWN, -1 UNKNOWN.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Status transitions by new status.",
		}, []string{"to"}),
		ledErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indicator_errors_total",
			Help:      "Failed writes to the status LED.",
		}),
	}
	m.up.Set(-1)
	reg.MustRegister(
		m.probes, m.latency, m.failures, m.up, m.transitions, m.ledErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveProbe records one probe result and the debounced state after it.
func (m *Metrics) ObserveProbe(ok bool, latency time.Duration, st logic.Status, failures uint64) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.probes.WithLabelValues(result).Inc()
	m.latency.Observe(latency.Seconds())
	m.failures.Set(float64(failures))
	switch st {
	case logic.StatusUp:
		m.up.Set(1)
	case logic.StatusDown:
		m.up.Set(0)
	default:
		m.up.Set(-1)
	}
}

// ObserveTransition counts a status transition.
func (m *Metrics) ObserveTransition(e logic.Event) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(e.Type)).Inc()
}

// ObserveIndicatorError counts a failed LED write.
func (m *Metrics) ObserveIndicatorError() {
	if m == nil {
		return
	}
	m.ledErrors.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
