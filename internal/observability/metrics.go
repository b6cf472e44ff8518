// Package observability provides metrics and monitoring capabilities for callscope.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tphakala/callscope/internal/logger"
	"github.com/tphakala/callscope/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry  *prometheus.Registry
	Annotator *metrics.AnnotatorMetrics
	HTTP      *metrics.HTTPMetrics
	MQTT      *metrics.MQTTMetrics
}

// NewMetrics creates a new instance of Metrics on a private registry that also carries the
// Go runtime and process collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	annotatorMetrics, err := metrics.NewAnnotatorMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create annotator metrics: %w", err)
	}

	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	mqttMetrics, err := metrics.NewMQTTMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create MQTT metrics: %w", err)
	}

	return &Metrics{
		registry:  registry,
		Annotator: annotatorMetrics,
		HTTP:      httpMetrics,
		MQTT:      mqttMetrics,
	}, nil
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      promErrorLogger{log: GetLogger()},
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// promErrorLogger adapts the module logger to promhttp.Logger.
type promErrorLogger struct {
	log logger.Logger
}

func (l promErrorLogger) Println(v ...any) {
	l.log.Error("metrics handler error", logger.String("detail", fmt.Sprint(v...)))
}
