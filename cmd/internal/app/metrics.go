package app

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"folio/cmd/internal/auth/gate"
	"folio/cmd/internal/auth/session"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	gateDecisions   *prometheus.CounterVec
	sessionOutcomes *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_http_requests_total",
			Help: "HTTP requests by method and status class.",
		}, []string{"method", "class"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "folio_http_request_duration_seconds",
			Help:    "HTTP request latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_gate_decisions_total",
			Help: "Edge classifier decisions by action.",
		}, []string{"action"}),
		sessionOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_session_outcomes_total",
			Help: "Session resolver outcomes by mode, kind and reason.",
		}, []string{"mode", "kind", "reason"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.gateDecisions,
		m.sessionOutcomes,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRequest(method, class string, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, class).Inc()
	m.httpDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// GateObserver feeds gate.WithObserver.
func (m *Metrics) GateObserver() gate.Observer {
	return func(_ *http.Request, d gate.Decision) {
		m.gateDecisions.WithLabelValues(d.Action.String()).Inc()
	}
}

// SessionObserver feeds session.WithObserver.
func (m *Metrics) SessionObserver() session.Observer {
	return func(mode session.Mode, o session.Outcome) {
		m.sessionOutcomes.WithLabelValues(mode.String(), o.Kind().String(), o.Reason()).Inc()
	}
}
