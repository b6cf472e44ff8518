package annotator

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/callscope/internal/logger"
)

type fakeHost struct {
	duration float64
	zoom     float64
	scroll   float64
	width    float64
	height   float64
	expanded bool
}

func (h *fakeHost) Duration() float64                     { return h.duration }
func (h *fakeHost) ZoomLevel() float64                    { return h.zoom }
func (h *fakeHost) ScrollLeft() float64                   { return h.scroll }
func (h *fakeHost) ViewportSize() (width, height float64) { return h.width, h.height }
func (h *fakeHost) ExpandedLayout() bool                  { return h.expanded }

// scenarioHost is 2 s at 500 px/s over an 800 px tall, 1000 px wide viewer.
func scenarioHost() *fakeHost {
	return &fakeHost{duration: 2, zoom: 500, width: 1000, height: 800}
}

type fakeRecorder struct {
	gestures      map[string]int
	selections    int
	markers       int
	reprojections int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{gestures: make(map[string]int)}
}

func (r *fakeRecorder) RecordGesture(gesture, outcome string) { r.gestures[gesture+"/"+outcome]++ }
func (r *fakeRecorder) SetSelections(n int)                   { r.selections = n }
func (r *fakeRecorder) SetMarkers(n int)                      { r.markers = n }
func (r *fakeRecorder) RecordReprojection()                   { r.reprojections++ }

type harness struct {
	t             *testing.T
	host          *fakeHost
	engine        *Engine
	recorder      *fakeRecorder
	notifications []Notification
}

func newHarness(t *testing.T, host *fakeHost) *harness {
	t.Helper()
	h := &harness{t: t, host: host, recorder: newFakeRecorder()}
	seq := 0
	e, err := New(host, DefaultConfig(),
		WithLogger(logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)),
		WithRecorder(h.recorder),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("sel-%d", seq)
		}),
		WithObserver(ObserverFunc(func(n Notification) {
			h.notifications = append(h.notifications, n)
		})),
	)
	require.NoError(t, err)
	h.engine = e
	return h
}

func (h *harness) move(x, y float64) {
	h.engine.Handle(PointerEvent{Action: ActionMove, X: x, Y: y})
}

func (h *harness) press(x, y float64) {
	h.engine.Handle(PointerEvent{Action: ActionPress, Button: ButtonPrimary, X: x, Y: y})
}

func (h *harness) release(x, y float64) {
	h.engine.Handle(PointerEvent{Action: ActionRelease, Button: ButtonPrimary, X: x, Y: y})
}

func (h *harness) rightClick(x, y float64) {
	h.engine.Handle(PointerEvent{Action: ActionPress, Button: ButtonSecondary, X: x, Y: y})
	h.engine.Handle(PointerEvent{Action: ActionRelease, Button: ButtonSecondary, X: x, Y: y})
}

// drag performs press, a move to the end point and release.
func (h *harness) drag(x0, y0, x1, y1 float64) {
	h.move(x0, y0)
	h.press(x0, y0)
	h.move(x1, y1)
	h.release(x1, y1)
}

func (h *harness) notificationTypes() []NotificationType {
	types := make([]NotificationType, 0, len(h.notifications))
	for _, n := range h.notifications {
		types = append(types, n.Type)
	}
	return types
}
