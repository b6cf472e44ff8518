package annotator

import (
	"strings"

	"github.com/tphakala/callscope/internal/viewport"
)

// State is the interaction state. Exactly one value is active at a time; the concrete
// types below are the only implementations.
type State interface {
	Name() string
	isState()
}

// Idle tracks hover.
type Idle struct{}

// Drawing holds a provisional rectangle. Both points are in content space.
type Drawing struct {
	Anchor  viewport.Point
	Current viewport.Point
}

// Resizing writes pointer movement into the locked edges of one selection.
type Resizing struct {
	SelectionID string
	Edges       Edges
}

// DraggingTooltip moves a detached tooltip. Grab is the pointer offset from the tooltip's
// top-left corner at press time.
type DraggingTooltip struct {
	SelectionID string
	Grab        viewport.Point
}

// Suppressed blocks hover and gesture initiation while the pointer is over a tooltip or
// an affordance. Armed is set by a primary press on a button target.
type Suppressed struct {
	Target Target
	Armed  bool
}

func (Idle) Name() string            { return "idle" }
func (Drawing) Name() string         { return "drawing" }
func (Resizing) Name() string        { return "resizing" }
func (DraggingTooltip) Name() string { return "dragging_tooltip" }
func (Suppressed) Name() string      { return "suppressed" }

func (Idle) isState()            {}
func (Drawing) isState()         {}
func (Resizing) isState()        {}
func (DraggingTooltip) isState() {}
func (Suppressed) isState()      {}

// TargetKind is the kind of element a Suppressed state is over.
type TargetKind string

const (
	TargetTooltip      TargetKind = "tooltip"
	TargetTooltipClose TargetKind = "tooltip_close"
	TargetExpand       TargetKind = "expand"
	TargetClose        TargetKind = "close"
)

// Target is a suppressing element of one selection.
type Target struct {
	Kind        TargetKind `json:"kind"`
	SelectionID string     `json:"selectionId"`
}

// button reports whether the target activates on click.
func (t Target) button() bool {
	return t.Kind != TargetTooltip
}

// Edges is the set of selection edges locked by a resize.
type Edges uint8

const (
	EdgeLeft Edges = 1 << iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

// Has reports whether all edges in o are set.
func (e Edges) Has(o Edges) bool { return e&o == o && o != 0 }

// String returns the compass direction, for example "nw" or "e".
func (e Edges) String() string {
	var sb strings.Builder
	if e.Has(EdgeTop) {
		sb.WriteByte('n')
	} else if e.Has(EdgeBottom) {
		sb.WriteByte('s')
	}
	if e.Has(EdgeLeft) {
		sb.WriteByte('w')
	} else if e.Has(EdgeRight) {
		sb.WriteByte('e')
	}
	return sb.String()
}

// Cursor is the pointer cursor the host should show.
type Cursor string

const (
	CursorDefault Cursor = "default"
	CursorNone    Cursor = "none"
	CursorNWSE    Cursor = "nwse-resize"
	CursorNESW    Cursor = "nesw-resize"
	CursorEW      Cursor = "ew-resize"
	CursorNS      Cursor = "ns-resize"
	CursorMove    Cursor = "move"
	CursorPointer Cursor = "pointer"
)

// Cursor returns the resize cursor for the edge set.
func (e Edges) Cursor() Cursor {
	switch {
	case e.Has(EdgeLeft|EdgeTop), e.Has(EdgeRight|EdgeBottom):
		return CursorNWSE
	case e.Has(EdgeRight|EdgeTop), e.Has(EdgeLeft|EdgeBottom):
		return CursorNESW
	case e.Has(EdgeLeft), e.Has(EdgeRight):
		return CursorEW
	case e.Has(EdgeTop), e.Has(EdgeBottom):
		return CursorNS
	default:
		return CursorDefault
	}
}
