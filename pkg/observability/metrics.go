// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the Taiga MCP server.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
	toolCalls   *prometheus.CounterVec
	toolLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers the server's collectors under the given
// namespace.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Taiga API requests by method and HTTP status.",
		}, []string{"method", "status"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Taiga API request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "MCP tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		toolLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "MCP tool invocation latency by tool.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
	}

	registry.MustRegister(m.apiRequests, m.apiDuration, m.toolCalls, m.toolLatency)
	return m
}

// RecordAPIRequest records one Taiga API round-trip. A zero status means
// the request never produced a response.
func (m *Metrics) RecordAPIRequest(method string, status int, d time.Duration) {
	m.apiRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.apiDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RecordToolCall records one MCP tool invocation.
func (m *Metrics) RecordToolCall(tool string, failed bool, d time.Duration) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolLatency.WithLabelValues(tool).Observe(d.Seconds())
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
