package api

import (
	"math"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/session"
)

// CreateSessionResponse is returned by POST /sessions.
type CreateSessionResponse struct {
	ID    string          `json:"id"`
	Frame annotator.Frame `json:"frame"`
}

// SessionResponse is returned by GET /sessions/:id.
type SessionResponse struct {
	ID    string          `json:"id"`
	View  session.View    `json:"view"`
	Frame annotator.Frame `json:"frame"`
}

// pointerEventDTO mirrors annotator.PointerEvent. A missing coordinate decodes as NaN so
// the engine can treat it as unusable input.
type pointerEventDTO struct {
	Action annotator.Action `json:"action"`
	Button annotator.Button `json:"button,omitempty"`
	X      *float64         `json:"x"`
	Y      *float64         `json:"y"`
}

func (p pointerEventDTO) toEvent() (annotator.PointerEvent, error) {
	switch p.Action {
	case annotator.ActionMove, annotator.ActionPress, annotator.ActionRelease, annotator.ActionLeave:
	default:
		return annotator.PointerEvent{}, badRequest("unknown pointer action %q", p.Action)
	}
	switch p.Button {
	case "", annotator.ButtonNone, annotator.ButtonPrimary, annotator.ButtonSecondary:
	default:
		return annotator.PointerEvent{}, badRequest("unknown pointer button %q", p.Button)
	}
	return annotator.PointerEvent{
		Action: p.Action,
		Button: p.Button,
		X:      coord(p.X),
		Y:      coord(p.Y),
	}, nil
}

func coord(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// PointerRequest is the body of POST /sessions/:id/pointer.
type PointerRequest struct {
	Events []pointerEventDTO `json:"events"`
}

// FrequencyRangeRequest is the body of PUT /sessions/:id/frequency-range.
type FrequencyRangeRequest struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// Hover actions accepted by POST /sessions/:id/hover.
const (
	HoverHide    = "hide"
	HoverRefresh = "refresh"
)

// HoverRequest is the body of POST /sessions/:id/hover.
type HoverRequest struct {
	Action string `json:"action"`
}

// PersistentLinesRequest is the body of PUT /sessions/:id/persistent-lines.
type PersistentLinesRequest struct {
	Enabled *bool `json:"enabled"`
}

// SelectionsResponse is returned by GET /sessions/:id/selections.
type SelectionsResponse struct {
	Selections []annotator.Selection `json:"selections"`
}
