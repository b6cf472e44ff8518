package annotator

import (
	"fmt"

	"github.com/tphakala/callscope/internal/viewport"
)

// LabelAlign tells the host which side of LabelX the crosshair label extends to.
type LabelAlign string

const (
	AlignLeft  LabelAlign = "left"  // label starts at LabelX
	AlignRight LabelAlign = "right" // label ends at LabelX
)

// Crosshair is the hover readout in viewport space. The horizontal line spans the
// viewport width at Y and the vertical line spans the render height at X.
type Crosshair struct {
	Visible    bool       `json:"visible"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Frequency  float64    `json:"frequency"`
	TimeMs     float64    `json:"timeMs"`
	Label      string     `json:"label"`
	LabelX     float64    `json:"labelX"`
	LabelAlign LabelAlign `json:"labelAlign"`
}

// crosshairAt computes the readout for a viewport point. It reports false when the point
// is outside the hover area: non-finite, outside the viewport or inside the scrollbar band.
func crosshairAt(p viewport.Point, v viewport.View, width, height, band float64, cfg *Config) (Crosshair, bool) {
	if !p.Finite() || !v.Valid() {
		return Crosshair{}, false
	}
	if p.X < 0 || p.X > width || p.Y < 0 || p.Y > height-band {
		return Crosshair{}, false
	}

	freq := v.PixelToFreq(p.Y)
	timeMs := v.PixelToTime(v.ContentX(p.X)) * 1000

	ch := Crosshair{
		Visible:    true,
		X:          p.X,
		Y:          p.Y,
		Frequency:  freq,
		TimeMs:     timeMs,
		Label:      fmt.Sprintf("%.1f kHz  %.1f ms", freq, timeMs),
		LabelX:     p.X + cfg.LabelOffset,
		LabelAlign: AlignLeft,
	}
	if width-p.X < cfg.LabelFlipMargin {
		ch.LabelX = p.X - cfg.LabelOffset
		ch.LabelAlign = AlignRight
	}
	return ch, true
}

func (e *Engine) hideCrosshair() {
	e.crosshair = Crosshair{}
}

// idleMove handles a pointer sample while Idle: suppressing targets win over hover.
func (e *Engine) idleMove(p viewport.Point) {
	if !p.Finite() {
		e.hideCrosshair()
		e.cursor = CursorDefault
		return
	}
	c := e.content(p)
	if t, ok := e.targetAt(c); ok {
		e.setState(Suppressed{Target: t})
		e.hideCrosshair()
		e.cursor = cursorForTarget(t)
		return
	}

	e.updateHover(p)
	if _, edges, ok := e.resizeAt(c); ok {
		e.cursor = edges.Cursor()
		return
	}
	if e.crosshair.Visible {
		e.cursor = CursorNone
	} else {
		e.cursor = CursorDefault
	}
}

// updateHover redraws the crosshair at p, hiding it outside the hover area.
func (e *Engine) updateHover(p viewport.Point) {
	if _, idle := e.state.(Idle); !idle {
		e.hideCrosshair()
		return
	}
	width, height := e.host.ViewportSize()
	ch, ok := crosshairAt(p, e.view(), width, height, e.band(), &e.cfg)
	if !ok {
		e.hideCrosshair()
		return
	}
	e.crosshair = ch
}

func cursorForTarget(t Target) Cursor {
	if t.Kind == TargetTooltip {
		return CursorMove
	}
	return CursorPointer
}
