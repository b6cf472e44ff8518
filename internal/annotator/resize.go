package annotator

import (
	"math"

	"github.com/tphakala/callscope/internal/viewport"
)

// edgesAt returns the edges whose band contains c. The band lies inside the rect. Left wins
// over right and top over bottom when a thin rect puts c in both bands.
func edgesAt(rect viewport.PixelRect, c viewport.Point, threshold float64) Edges {
	if !rect.Contains(c) {
		return 0
	}
	offX := c.X - rect.Left
	offY := c.Y - rect.Top

	var edges Edges
	switch {
	case offX < threshold:
		edges |= EdgeLeft
	case offX > rect.Width-threshold:
		edges |= EdgeRight
	}
	switch {
	case offY < threshold:
		edges |= EdgeTop
	case offY > rect.Height-threshold:
		edges |= EdgeBottom
	}
	return edges
}

// applyResize moves the locked edges of r to the content-space point c. The opposite edge
// stays fixed and each moved edge is clamped so the minimum duration and bandwidth hold.
// It reports false when the pointer maps to a non-finite domain value.
func applyResize(r viewport.Rect, edges Edges, c viewport.Point, v viewport.View, cfg *Config) (viewport.Rect, bool) {
	if edges.Has(EdgeLeft) || edges.Has(EdgeRight) {
		t := v.PixelToTime(c.X)
		if !viewport.Finite(t) {
			return r, false
		}
		if edges.Has(EdgeLeft) {
			r.StartTime = math.Min(t, r.EndTime-cfg.MinDuration)
		} else {
			r.EndTime = math.Max(t, r.StartTime+cfg.MinDuration)
		}
	}
	if edges.Has(EdgeTop) || edges.Has(EdgeBottom) {
		f := v.PixelToFreq(c.Y)
		if !viewport.Finite(f) {
			return r, false
		}
		if edges.Has(EdgeTop) {
			r.FreqHigh = math.Max(f, r.FreqLow+cfg.MinBandwidth)
		} else {
			r.FreqLow = math.Min(f, r.FreqHigh-cfg.MinBandwidth)
		}
	}
	return r, true
}

func (e *Engine) resizeMove(s Resizing, p viewport.Point) {
	sel := e.find(s.SelectionID)
	if sel == nil {
		e.abortGesture(GestureResize, "selection vanished")
		return
	}
	if !p.Finite() {
		e.abortGesture(GestureResize, "non-finite pointer")
		return
	}
	v := e.view()
	if !v.Valid() {
		e.abortGesture(GestureResize, "invalid view")
		return
	}
	next, ok := applyResize(sel.Bounds, s.Edges, viewport.Point{X: v.ContentX(p.X), Y: p.Y}, v, &e.cfg)
	if !ok {
		e.abortGesture(GestureResize, "non-finite domain value")
		return
	}
	sel.Bounds = next
	e.reproject()
}

func (e *Engine) dragMove(s DraggingTooltip, p viewport.Point) {
	idx := e.index(s.SelectionID)
	if idx < 0 || e.views[idx].Tooltip == nil {
		e.abortGesture(GestureTooltipDrag, "tooltip vanished")
		return
	}
	if !p.Finite() {
		e.abortGesture(GestureTooltipDrag, "non-finite pointer")
		return
	}
	v := e.view()
	if !v.Valid() {
		e.abortGesture(GestureTooltipDrag, "invalid view")
		return
	}
	c := viewport.Point{X: v.ContentX(p.X), Y: p.Y}
	anchor := tooltipAnchor(e.views[idx].Rect, &e.cfg)
	e.selections[idx].tooltipOffset = viewport.Point{
		X: c.X - s.Grab.X - anchor.X,
		Y: c.Y - s.Grab.Y - anchor.Y,
	}
	e.views[idx] = project(e.selections[idx], v, &e.cfg)
}
