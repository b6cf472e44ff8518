package observability

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesAnnotatorMetrics(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	r := m.Annotator.SessionRecorder()
	r.RecordGesture("draw", "created")
	r.SetSelections(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `annotator_gestures_total{gesture="draw",outcome="created"} 1`)
	assert.Contains(t, body, "annotator_selections 1")
	assert.Contains(t, body, "go_goroutines")
}

func TestConcurrentSessionRecorders(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			r := m.Annotator.SessionRecorder()
			for i := range 50 {
				r.SetSelections(i % 5)
				r.RecordGesture("draw", "created")
			}
			r.Release()
		})
	}
	wg.Wait()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Contains(t, rec.Body.String(), "annotator_selections 0")
	assert.Contains(t, rec.Body.String(), `annotator_gestures_total{gesture="draw",outcome="created"} 1000`)
}
