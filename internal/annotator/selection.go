package annotator

import (
	"fmt"
	"math"

	"github.com/tphakala/callscope/internal/viewport"
)

// Kind decides the presentation of a selection. It is fixed at creation.
type Kind string

const (
	KindShort Kind = "short" // measurement tooltip
	KindLong  Kind = "long"  // expand and close affordances
)

// Selection is the domain truth of one region of interest.
type Selection struct {
	ID     string        `json:"id" yaml:"id"`
	Bounds viewport.Rect `json:"bounds" yaml:"bounds"`
	Kind   Kind          `json:"kind" yaml:"kind"`
}

// selection pairs the domain truth with its presentation state.
type selection struct {
	Selection
	tooltipOffset viewport.Point
}

// Measurements are the derived acoustic values of a selection.
type Measurements struct {
	FreqHigh   float64         `json:"freqHigh"`
	FreqLow    float64         `json:"freqLow"`
	Bandwidth  float64         `json:"bandwidth"`
	DurationMs float64         `json:"durationMs"`
	Display    MeasurementText `json:"display"`
}

// MeasurementText holds the one-decimal display strings.
type MeasurementText struct {
	FreqHigh  string `json:"freqHigh"`
	FreqLow   string `json:"freqLow"`
	Bandwidth string `json:"bandwidth"`
	Duration  string `json:"duration"`
}

// Label is a text anchored at a content-space point.
type Label struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// TooltipView is the projected measurement tooltip of a short selection.
type TooltipView struct {
	Rect     viewport.PixelRect `json:"rect"`
	Close    viewport.PixelRect `json:"close"`
	Lines    []string           `json:"lines"`
	Offset   viewport.Point     `json:"offset"`
	Detached bool               `json:"detached"`
}

// SelectionView is the projection of one selection against the current view. Every
// field is derived; nothing here is read back into the domain.
type SelectionView struct {
	ID            string              `json:"id"`
	Kind          Kind                `json:"kind"`
	Rect          viewport.PixelRect  `json:"rect"`
	Measurements  Measurements        `json:"measurements"`
	DurationLabel Label               `json:"durationLabel"`
	Tooltip       *TooltipView        `json:"tooltip,omitempty"`
	Expand        *viewport.PixelRect `json:"expand,omitempty"`
	Close         *viewport.PixelRect `json:"close,omitempty"`
}

const (
	affordanceInset   = 2
	tooltipCloseRight = 6
	labelInset        = 2
)

func measure(r viewport.Rect) Measurements {
	m := Measurements{
		FreqHigh:   r.FreqHigh,
		FreqLow:    r.FreqLow,
		Bandwidth:  r.Bandwidth(),
		DurationMs: r.Duration() * 1000,
	}
	m.Display = MeasurementText{
		FreqHigh:  fmt.Sprintf("%.1f", m.FreqHigh),
		FreqLow:   fmt.Sprintf("%.1f", m.FreqLow),
		Bandwidth: fmt.Sprintf("%.1f", m.Bandwidth),
		Duration:  fmt.Sprintf("%.1f", m.DurationMs),
	}
	return m
}

func kindFor(r viewport.Rect, cfg *Config) Kind {
	if r.Duration()*1000 <= cfg.ShortSelectionMs {
		return KindShort
	}
	return KindLong
}

// project is a pure function of the selection, its presentation state, the view and cfg.
func project(s *selection, v viewport.View, cfg *Config) SelectionView {
	rect := v.ToPixels(s.Bounds)
	m := measure(s.Bounds)

	sv := SelectionView{
		ID:           s.ID,
		Kind:         s.Kind,
		Rect:         rect,
		Measurements: m,
		DurationLabel: Label{
			Text: m.Display.Duration + " ms",
			X:    rect.Left + labelInset,
			Y:    rect.Bottom() - labelInset,
		},
	}

	size := cfg.AffordanceSize
	switch s.Kind {
	case KindShort:
		anchor := tooltipAnchor(rect, cfg)
		tip := viewport.PixelRect{
			Left:   anchor.X + s.tooltipOffset.X,
			Top:    anchor.Y + s.tooltipOffset.Y,
			Width:  cfg.TooltipWidth,
			Height: cfg.TooltipHeight,
		}
		sv.Tooltip = &TooltipView{
			Rect: tip,
			Close: viewport.PixelRect{
				Left:   tip.Right() - tooltipCloseRight - size,
				Top:    tip.Top + affordanceInset,
				Width:  size,
				Height: size,
			},
			Lines: []string{
				"F.high: " + m.Display.FreqHigh + " kHz",
				"F.Low: " + m.Display.FreqLow + " kHz",
				"Bandwidth: " + m.Display.Bandwidth + " kHz",
				"Duration: " + m.Display.Duration + " ms",
			},
			Offset:   s.tooltipOffset,
			Detached: s.tooltipOffset != (viewport.Point{}),
		}
	default:
		closeRect := viewport.PixelRect{
			Left:   rect.Right() - affordanceInset - size,
			Top:    rect.Top + affordanceInset,
			Width:  size,
			Height: size,
		}
		expandRect := closeRect
		expandRect.Left = closeRect.Left - affordanceInset - size
		sv.Close = &closeRect
		sv.Expand = &expandRect
	}
	return sv
}

// tooltipAnchor is where an attached tooltip sits: to the right of the rect, top-aligned.
func tooltipAnchor(rect viewport.PixelRect, cfg *Config) viewport.Point {
	return viewport.Point{X: rect.Right() + cfg.TooltipGap, Y: rect.Top}
}

// clampBounds enforces the minimum duration and bandwidth by moving the end and high edges.
func clampBounds(r viewport.Rect, cfg *Config) viewport.Rect {
	r.EndTime = math.Max(r.EndTime, r.StartTime+cfg.MinDuration)
	r.FreqHigh = math.Max(r.FreqHigh, r.FreqLow+cfg.MinBandwidth)
	return r
}
