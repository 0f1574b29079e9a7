// Package metrics provides Prometheus metrics for apiconsole.
// They are served on /metrics by the API server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace for all apiconsole metrics
	namespace = "apiconsole"
)

// Registry holds every apiconsole collector plus Go and process collectors.
var Registry = prometheus.NewRegistry()

var (
	// HTTPRequestsTotal counts API requests by route pattern and status
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks API request latency
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "route"},
	)

	// ReadingEventsTotal counts stored readings by event and origin
	ReadingEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reading_events_total",
			Help:      "Total number of DTH22 readings created or updated",
		},
		[]string{"action", "source"},
	)

	// IngestFailuresTotal counts MQTT sensor payloads that were not stored
	IngestFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_failures_total",
			Help:      "Total number of sensor payloads rejected or not stored",
		},
		[]string{"reason"},
	)

	// WebSocketClients tracks connected WebSocket clients
	WebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Number of connected WebSocket clients",
		},
	)

	// DependencyUp tracks connection status to external services
	DependencyUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dependency_up",
			Help:      "Connection status to external services (1=connected, 0=disconnected)",
		},
		[]string{"dependency"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ReadingEventsTotal,
		IngestFailuresTotal,
		WebSocketClients,
		DependencyUp,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// SetDependency records whether an external service is reachable.
func SetDependency(name string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	DependencyUp.WithLabelValues(name).Set(v)
}
