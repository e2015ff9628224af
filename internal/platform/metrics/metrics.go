package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the livecast orchestrator.
type Metrics struct {
	registry                  *prometheus.Registry
	requestsTotal             prometheus.Counter
	relaysStartedTotal        prometheus.Counter
	relaysStoppedTotal        prometheus.Counter
	orchestrationsTotal       prometheus.Counter
	orchestrationFailedTotal  prometheus.Counter
	orchestrationDurationSecs prometheus.Histogram
	activeRelays              prometheus.Gauge
	errorsTotal               prometheus.Counter
}

// New creates and registers Prometheus metrics for the orchestrator.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "livecast_requests_total",
		Help: "Total number of HTTP requests received",
	})
	relaysStartedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "livecast_relays_started_total",
		Help: "Total number of RTMP relay converters started",
	})
	relaysStoppedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "livecast_relays_stopped_total",
		Help: "Total number of RTMP relay converters stopped",
	})
	orchestrationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "livecast_orchestrations_total",
		Help: "Total number of completed broadcast orchestrations",
	})
	orchestrationFailedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "livecast_orchestration_failures_total",
		Help: "Total number of failed broadcast orchestrations",
	})
	orchestrationDurationSecs := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "livecast_orchestration_duration_seconds",
		Help:    "Wall-clock duration of orchestration runs, including the scheduled-start wait",
		Buckets: []float64{1, 5, 15, 30, 60, 90, 120, 300},
	})
	activeRelays := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "livecast_active_relays",
		Help: "Number of relay converters started and not yet stopped by this process",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "livecast_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		relaysStartedTotal,
		relaysStoppedTotal,
		orchestrationsTotal,
		orchestrationFailedTotal,
		orchestrationDurationSecs,
		activeRelays,
		errorsTotal,
	)

	return &Metrics{
		registry:                  registry,
		requestsTotal:             requestsTotal,
		relaysStartedTotal:        relaysStartedTotal,
		relaysStoppedTotal:        relaysStoppedTotal,
		orchestrationsTotal:       orchestrationsTotal,
		orchestrationFailedTotal:  orchestrationFailedTotal,
		orchestrationDurationSecs: orchestrationDurationSecs,
		activeRelays:              activeRelays,
		errorsTotal:               errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// RelayStarted records a started converter and bumps the active gauge.
func (m *Metrics) RelayStarted() {
	m.relaysStartedTotal.Inc()
	m.activeRelays.Inc()
}

// RelayStopped records a stopped converter and drops the active gauge.
func (m *Metrics) RelayStopped() {
	m.relaysStoppedTotal.Inc()
	m.activeRelays.Dec()
}

// OrchestrationDone records a completed run and its duration in seconds.
func (m *Metrics) OrchestrationDone(seconds float64) {
	m.orchestrationsTotal.Inc()
	m.orchestrationDurationSecs.Observe(seconds)
}

// OrchestrationFailed increments the failed-run counter.
func (m *Metrics) OrchestrationFailed() {
	m.orchestrationFailedTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
