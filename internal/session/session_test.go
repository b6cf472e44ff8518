package session

import (
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/conf"
	"github.com/tphakala/callscope/internal/errors"
	"github.com/tphakala/callscope/internal/logger"
	"github.com/tphakala/callscope/internal/observability/metrics"
)

func testView() View {
	return View{Duration: 2, Zoom: 500, Width: 1000, Height: 800}
}

func newTestManager(t *testing.T, cfg Config, opts ...Option) *Manager {
	t.Helper()
	seq := 0
	opts = append([]Option{
		WithLogger(logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("s-%d", seq)
		}),
	}, opts...)
	cfg.CleanupInterval = 0
	m, err := NewManager(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func press(x, y float64) annotator.PointerEvent {
	return annotator.PointerEvent{Action: annotator.ActionPress, Button: annotator.ButtonPrimary, X: x, Y: y}
}

func move(x, y float64) annotator.PointerEvent {
	return annotator.PointerEvent{Action: annotator.ActionMove, X: x, Y: y}
}

func release(x, y float64) annotator.PointerEvent {
	return annotator.PointerEvent{Action: annotator.ActionRelease, Button: annotator.ButtonPrimary, X: x, Y: y}
}

func drag(x0, y0, x1, y1 float64) []annotator.PointerEvent {
	return []annotator.PointerEvent{move(x0, y0), press(x0, y0), move(x1, y1), release(x1, y1)}
}

func TestCreateAndGet(t *testing.T) {
	m := newTestManager(t, DefaultConfig())

	s, err := m.Create(testView())
	require.NoError(t, err)
	assert.Equal(t, "s-1", s.ID)
	assert.Equal(t, 1, m.Count())

	got, err := m.Get("s-1")
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestConfigFromSettings(t *testing.T) {
	s := conf.Defaults()
	s.Session.MaxSessions = 7
	s.Annotator.MaxMarkers = 3

	cfg := ConfigFromSettings(s)
	assert.Equal(t, 30*time.Minute, cfg.TTL)
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval)
	assert.Equal(t, 7, cfg.MaxSessions)
	assert.Equal(t, 32, cfg.SubscriberBuffer)
	assert.Equal(t, 3, cfg.Annotator.MaxMarkers)

	mgr, err := NewManager(cfg)
	require.NoError(t, err)
	mgr.Close()
}

func TestCreateRejectsBadView(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	v := testView()
	v.Width = -1
	_, err := m.Create(v)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestNewManagerValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = 0
	_, err := NewManager(cfg)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))

	cfg = DefaultConfig()
	cfg.Annotator.MaxFreq = cfg.Annotator.MinFreq
	_, err = NewManager(cfg)
	assert.Error(t, err)
}

func TestSessionLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSessions = 2
	m := newTestManager(t, cfg)

	for range 2 {
		_, err := m.Create(testView())
		require.NoError(t, err)
	}
	_, err := m.Create(testView())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryLimit))

	require.True(t, m.Delete("s-1"))
	_, err = m.Create(testView())
	assert.NoError(t, err, "deleting frees a slot")
}

func TestPointerAndViewFlow(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	s, err := m.Create(testView())
	require.NoError(t, err)

	frame := s.HandlePointer(drag(100, 100, 300, 300)...)
	require.Len(t, frame.Selections, 1)
	assert.InDelta(t, 100, frame.Selections[0].Rect.Left, 1e-9)

	zoom := 1000.0
	frame, err = s.UpdateView(ViewUpdate{Zoom: &zoom})
	require.NoError(t, err)
	assert.InDelta(t, 200, frame.Selections[0].Rect.Left, 1e-9)
	assert.InDelta(t, 1000, s.View().Zoom, 0)

	bad := -5.0
	_, err = s.UpdateView(ViewUpdate{Scroll: &bad})
	require.Error(t, err)
	assert.InDelta(t, 0, s.View().Scroll, 0, "rejected update changes nothing")

	_, err = s.SetFrequencyRange(50, 20)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	frame = s.ClearSelections()
	assert.Empty(t, frame.Selections)
}

func TestHoverAndPersistentLines(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	s, err := m.Create(testView())
	require.NoError(t, err)

	frame := s.HandlePointer(move(500, 400))
	require.True(t, frame.Crosshair.Visible)

	frame = s.HideHover()
	assert.False(t, frame.Crosshair.Visible)

	frame = s.RefreshHover()
	assert.True(t, frame.Crosshair.Visible)

	frame = s.SetPersistentLinesEnabled(false)
	assert.False(t, frame.PersistentLinesEnabled)
}

func TestSubscribeReceivesNotifications(t *testing.T) {
	var mu sync.Mutex
	var sunk []Event
	m := newTestManager(t, DefaultConfig(), WithSink(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		sunk = append(sunk, e)
	}))
	s, err := m.Create(testView())
	require.NoError(t, err)

	ch, cancel := s.Subscribe()
	defer cancel()

	s.HandlePointer(drag(100, 100, 300, 300)...)
	select {
	case n := <-ch:
		assert.Equal(t, annotator.NotifySelectionCreated, n.Type)
	case <-time.After(time.Second):
		t.Fatal("no notification received")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sunk, 1)
	assert.Equal(t, "s-1", sunk[0].SessionID)
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SubscriberBuffer = 1
	m := newTestManager(t, cfg)
	s, err := m.Create(testView())
	require.NoError(t, err)

	ch, cancel := s.Subscribe()
	defer cancel()

	s.HandlePointer(drag(100, 100, 300, 300)...)
	s.HandlePointer(drag(400, 100, 600, 300)...)

	n, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, annotator.NotifySelectionCreated, n.Type)
	_, ok = <-ch
	assert.False(t, ok, "channel closed after overflow")
	assert.Len(t, s.Selections(), 2, "engine never blocked")
}

func TestDeleteClosesSubscribers(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	s, err := m.Create(testView())
	require.NoError(t, err)
	ch, _ := s.Subscribe()

	require.True(t, m.Delete(s.ID))
	assert.False(t, m.Delete(s.ID))

	_, ok := <-ch
	assert.False(t, ok)
	assert.True(t, s.Closed())

	late, _ := s.Subscribe()
	_, ok = <-late
	assert.False(t, ok, "subscribing to a closed session yields a closed channel")
}

func TestCancelSubscriptionTwice(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	s, err := m.Create(testView())
	require.NoError(t, err)
	ch, cancel := s.Subscribe()
	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestExpiryClosesSession(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = 20 * time.Millisecond
	m := newTestManager(t, cfg)
	s, err := m.Create(testView())
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	m.DeleteExpired()

	assert.True(t, s.Closed())
	_, err = m.Get(s.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestGetRefreshesTTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = 60 * time.Millisecond
	m := newTestManager(t, cfg)
	s, err := m.Create(testView())
	require.NoError(t, err)

	for range 4 {
		time.Sleep(25 * time.Millisecond)
		_, err := m.Get(s.ID)
		require.NoError(t, err)
	}
	assert.False(t, s.Closed())
}

func TestMetricsFollowSessions(t *testing.T) {
	am, err := metrics.NewAnnotatorMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	m := newTestManager(t, DefaultConfig(), WithMetrics(am))

	s, err := m.Create(testView())
	require.NoError(t, err)
	s.HandlePointer(drag(100, 100, 300, 300)...)

	assert.InDelta(t, 1, gaugeValue(t, am, "annotator_sessions_active"), 0)
	assert.InDelta(t, 1, gaugeValue(t, am, "annotator_selections"), 0)

	m.Delete(s.ID)
	assert.InDelta(t, 0, gaugeValue(t, am, "annotator_sessions_active"), 0)
	assert.InDelta(t, 0, gaugeValue(t, am, "annotator_selections"), 0)
}

func TestConcurrentSessionAccess(t *testing.T) {
	m := newTestManager(t, DefaultConfig())
	s, err := m.Create(testView())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			x := float64(50 + i*100)
			s.HandlePointer(drag(x, 100, x+60, 300)...)
			zoom := 500.0
			_, _ = s.UpdateView(ViewUpdate{Zoom: &zoom})
			_ = s.Frame()
		})
	}
	wg.Wait()
	assert.NotEmpty(t, s.Selections())
}
