package session

import (
	"fmt"

	"github.com/tphakala/callscope/internal/errors"
	"github.com/tphakala/callscope/internal/viewport"
)

// View is the host-side view state of one session: everything the engine reads from its
// host on every event.
type View struct {
	Duration float64 `json:"duration" yaml:"duration"` // seconds
	Zoom     float64 `json:"zoom" yaml:"zoom"`         // pixels per second
	Scroll   float64 `json:"scroll" yaml:"scroll"`     // horizontal scroll offset in pixels
	Width    float64 `json:"width" yaml:"width"`       // viewport width in pixels
	Height   float64 `json:"height" yaml:"height"`     // viewport height in pixels
	Expanded bool    `json:"expanded" yaml:"expanded"` // expanded layout reserves the scrollbar band
}

// ViewUpdate is a partial view change. Nil fields are left alone.
type ViewUpdate struct {
	Duration *float64 `json:"duration,omitempty"`
	Zoom     *float64 `json:"zoom,omitempty"`
	Scroll   *float64 `json:"scroll,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Expanded *bool    `json:"expanded,omitempty"`
}

// Validate rejects non-finite and negative values. A zero duration or zoom is accepted; the
// engine treats such a view as invalid and skips geometry until it changes.
func (v View) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"duration", v.Duration},
		{"zoom", v.Zoom},
		{"scroll", v.Scroll},
		{"width", v.Width},
		{"height", v.Height},
	}
	for _, f := range fields {
		if !viewport.Finite(f.value) || f.value < 0 {
			return errors.New(fmt.Errorf("view %s must be a finite non-negative number, got %v", f.name, f.value)).
				Component("session").
				Category(errors.CategoryValidation).
				Context("field", f.name).
				Build()
		}
	}
	return nil
}

// Apply returns v with the non-nil fields of u applied.
func (v View) Apply(u ViewUpdate) View {
	if u.Duration != nil {
		v.Duration = *u.Duration
	}
	if u.Zoom != nil {
		v.Zoom = *u.Zoom
	}
	if u.Scroll != nil {
		v.Scroll = *u.Scroll
	}
	if u.Width != nil {
		v.Width = *u.Width
	}
	if u.Height != nil {
		v.Height = *u.Height
	}
	if u.Expanded != nil {
		v.Expanded = *u.Expanded
	}
	return v
}

// hostView exposes a View to the engine. Reads happen under the session lock.
type hostView struct {
	view *View
}

func (h hostView) Duration() float64                     { return h.view.Duration }
func (h hostView) ZoomLevel() float64                    { return h.view.Zoom }
func (h hostView) ScrollLeft() float64                   { return h.view.Scroll }
func (h hostView) ViewportSize() (width, height float64) { return h.view.Width, h.view.Height }
func (h hostView) ExpandedLayout() bool                  { return h.view.Expanded }
