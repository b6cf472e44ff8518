// Package metrics provides annotator engine metrics for observability
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// AnnotatorMetrics contains Prometheus metrics for annotator engines. One instance serves
// every session; per-engine gauges are aggregated through SessionRecorder.
type AnnotatorMetrics struct {
	registry *prometheus.Registry

	gesturesTotal      *prometheus.CounterVec
	reprojectionsTotal prometheus.Counter
	selections         prometheus.Gauge
	markers            prometheus.Gauge
	sessionsActive     prometheus.Gauge
}

// NewAnnotatorMetrics creates and registers new annotator metrics
func NewAnnotatorMetrics(registry *prometheus.Registry) (*AnnotatorMetrics, error) {
	m := &AnnotatorMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *AnnotatorMetrics) initMetrics() {
	m.gesturesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "annotator_gestures_total",
			Help: "Total number of pointer gestures by outcome",
		},
		[]string{"gesture", "outcome"}, // gesture: draw, resize, marker; outcome: created, cancelled, aborted
	)

	m.reprojectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "annotator_reprojections_total",
			Help: "Total number of selection re-projections against a changed view",
		},
	)

	m.selections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "annotator_selections",
			Help: "Current number of selections across all sessions",
		},
	)

	m.markers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "annotator_markers",
			Help: "Current number of persistent frequency markers across all sessions",
		},
	)

	m.sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "annotator_sessions_active",
			Help: "Current number of live engine sessions",
		},
	)
}

func (m *AnnotatorMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.gesturesTotal,
		m.reprojectionsTotal,
		m.selections,
		m.markers,
		m.sessionsActive,
	}
}

// Describe implements the Collector interface
func (m *AnnotatorMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *AnnotatorMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordGesture counts a finished gesture
func (m *AnnotatorMetrics) RecordGesture(gesture, outcome string) {
	m.gesturesTotal.WithLabelValues(gesture, outcome).Inc()
}

// RecordReprojection counts a re-projection pass
func (m *AnnotatorMetrics) RecordReprojection() {
	m.reprojectionsTotal.Inc()
}

// SetSessionsActive sets the live session gauge
func (m *AnnotatorMetrics) SetSessionsActive(n int) {
	m.sessionsActive.Set(float64(n))
}

// SessionRecorder returns a recorder for one engine. It feeds the shared gauges with the
// difference between the engine's previous and current counts.
func (m *AnnotatorMetrics) SessionRecorder() *SessionRecorder {
	return &SessionRecorder{metrics: m}
}

// SessionRecorder implements the annotator Recorder for a single engine.
type SessionRecorder struct {
	metrics    *AnnotatorMetrics
	mu         sync.Mutex
	selections int
	markers    int
	released   bool
}

// RecordGesture counts a finished gesture
func (r *SessionRecorder) RecordGesture(gesture, outcome string) {
	r.metrics.RecordGesture(gesture, outcome)
}

// RecordReprojection counts a re-projection pass
func (r *SessionRecorder) RecordReprojection() {
	r.metrics.RecordReprojection()
}

// SetSelections reports the engine's current selection count
func (r *SessionRecorder) SetSelections(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.metrics.selections.Add(float64(n - r.selections))
	r.selections = n
}

// SetMarkers reports the engine's current marker count
func (r *SessionRecorder) SetMarkers(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.metrics.markers.Add(float64(n - r.markers))
	r.markers = n
}

// Release removes this engine's contribution from the shared gauges. Later updates are
// ignored.
func (r *SessionRecorder) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.metrics.selections.Sub(float64(r.selections))
	r.metrics.markers.Sub(float64(r.markers))
	r.selections, r.markers = 0, 0
	r.released = true
}
