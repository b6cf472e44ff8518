// Package metrics provides HTTP handler metrics for observability
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics contains Prometheus metrics for the API host
type HTTPMetrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// live connections, labelled by transport: sse, websocket
	liveActiveConnections  *prometheus.GaugeVec
	liveTotalConnections   *prometheus.CounterVec
	liveConnectionDuration *prometheus.HistogramVec
	liveMessagesSent       *prometheus.CounterVec
	liveErrors             *prometheus.CounterVec
}

// NewHTTPMetrics creates and registers new HTTP handler metrics
func NewHTTPMetrics(registry *prometheus.Registry) (*HTTPMetrics, error) {
	m := &HTTPMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *HTTPMetrics) initMetrics() {
	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"}, // path is the route pattern, e.g. /api/v1/sessions/:id
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time taken for HTTP requests",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12), // 1ms to ~4s
		},
		[]string{"method", "path"},
	)

	m.liveActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "live_active_connections",
			Help: "Current number of open live connections",
		},
		[]string{"transport"},
	)

	m.liveTotalConnections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_connections_total",
			Help: "Total number of live connections opened",
		},
		[]string{"transport"},
	)

	m.liveConnectionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "live_connection_duration_seconds",
			Help:    "Lifetime of live connections",
			Buckets: prometheus.ExponentialBuckets(BucketStart1s, BucketFactorSSE, BucketCount10), // 1s to ~5.5h
		},
		[]string{"transport"},
	)

	m.liveMessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_messages_sent_total",
			Help: "Total number of messages written to live connections",
		},
		[]string{"transport", "message_type"},
	)

	m.liveErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_errors_total",
			Help: "Total number of live connection errors",
		},
		[]string{"transport", "error_type"},
	)
}

func (m *HTTPMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.liveActiveConnections,
		m.liveTotalConnections,
		m.liveConnectionDuration,
		m.liveMessagesSent,
		m.liveErrors,
	}
}

// Describe implements the Collector interface
func (m *HTTPMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *HTTPMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordHTTPRequest records an HTTP request
func (m *HTTPMetrics) RecordHTTPRequest(method, path string, statusCode int, duration float64) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// LiveConnectionOpened records a new SSE or websocket client
func (m *HTTPMetrics) LiveConnectionOpened(transport string) {
	m.liveActiveConnections.WithLabelValues(transport).Inc()
	m.liveTotalConnections.WithLabelValues(transport).Inc()
}

// LiveConnectionClosed records a client going away after the given lifetime in seconds
func (m *HTTPMetrics) LiveConnectionClosed(transport string, seconds float64) {
	m.liveActiveConnections.WithLabelValues(transport).Dec()
	m.liveConnectionDuration.WithLabelValues(transport).Observe(seconds)
}

// RecordLiveMessage counts a message written to a live connection
func (m *HTTPMetrics) RecordLiveMessage(transport, messageType string) {
	m.liveMessagesSent.WithLabelValues(transport, messageType).Inc()
}

// RecordLiveError counts a live connection error
func (m *HTTPMetrics) RecordLiveError(transport, errorType string) {
	m.liveErrors.WithLabelValues(transport, errorType).Inc()
}
