package annotator

import "github.com/tphakala/callscope/internal/viewport"

// Action is the kind of pointer event.
type Action string

const (
	ActionMove    Action = "move"
	ActionPress   Action = "press"
	ActionRelease Action = "release"
	ActionLeave   Action = "leave"
)

// Button identifies the pointer button of a press or release.
type Button string

const (
	ButtonNone      Button = "none"
	ButtonPrimary   Button = "primary"
	ButtonSecondary Button = "secondary"
)

// PointerEvent is a pointer sample in viewport-relative pixels. During resize and
// tooltip drags the coordinates may lie outside the viewport.
type PointerEvent struct {
	Action Action  `json:"action" yaml:"action"`
	Button Button  `json:"button,omitempty" yaml:"button,omitempty"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
}

func (p PointerEvent) point() viewport.Point {
	return viewport.Point{X: p.X, Y: p.Y}
}

// Host supplies the view parameters the engine reads but does not own.
type Host interface {
	Duration() float64
	ZoomLevel() float64
	ScrollLeft() float64
	ViewportSize() (width, height float64)
	// ExpandedLayout reports whether the container scrolls, which reserves the scrollbar band.
	ExpandedLayout() bool
}

// NotificationType names an engine notification.
type NotificationType string

const (
	NotifyExpandSelection   NotificationType = "expand-selection"
	NotifySelectionCreated  NotificationType = "selection-created"
	NotifySelectionRemoved  NotificationType = "selection-removed"
	NotifySelectionsCleared NotificationType = "selections-cleared"
	NotifyMarkerAdded       NotificationType = "marker-added"
	NotifyMarkerRemoved     NotificationType = "marker-removed"
)

// Notification is delivered synchronously to observers from inside the engine call
// that caused it.
type Notification struct {
	Type        NotificationType `json:"type" yaml:"type"`
	SelectionID string           `json:"selectionId,omitempty" yaml:"selection_id,omitempty"`
	Bounds      *viewport.Rect   `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Frequency   float64          `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Count       int              `json:"count,omitempty" yaml:"count,omitempty"`
}

// ExpandRequest is the payload handed to the crop/zoom collaborator.
type ExpandRequest struct {
	SelectionID string  `json:"selectionId" yaml:"selection_id"`
	StartTime   float64 `json:"startTime" yaml:"start_time"`
	EndTime     float64 `json:"endTime" yaml:"end_time"`
}

// ExpandRequest returns the expand payload of an expand-selection notification.
func (n Notification) ExpandRequest() (ExpandRequest, bool) {
	if n.Type != NotifyExpandSelection || n.Bounds == nil {
		return ExpandRequest{}, false
	}
	return ExpandRequest{
		SelectionID: n.SelectionID,
		StartTime:   n.Bounds.StartTime,
		EndTime:     n.Bounds.EndTime,
	}, true
}

// Observer receives engine notifications.
type Observer interface {
	Notify(n Notification)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(n Notification)

// Notify calls f(n).
func (f ObserverFunc) Notify(n Notification) { f(n) }

// Gesture names used with Recorder.
const (
	GestureDraw        = "draw"
	GestureResize      = "resize"
	GestureTooltipDrag = "tooltip_drag"
	GestureMarker      = "marker"
	GestureClose       = "close"
	GestureExpand      = "expand"
)

// Gesture outcomes used with Recorder.
const (
	OutcomeCreated   = "created"
	OutcomeDiscarded = "discarded"
	OutcomeCancelled = "cancelled"
	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
	OutcomeAdded     = "added"
	OutcomeRemoved   = "removed"
	OutcomeRejected  = "rejected"
	OutcomeActivated = "activated"
)

// Recorder receives gesture and projection statistics.
type Recorder interface {
	RecordGesture(gesture, outcome string)
	SetSelections(n int)
	SetMarkers(n int)
	RecordReprojection()
}

type nopRecorder struct{}

func (nopRecorder) RecordGesture(string, string) {}
func (nopRecorder) SetSelections(int)            {}
func (nopRecorder) SetMarkers(int)               {}
func (nopRecorder) RecordReprojection()          {}
