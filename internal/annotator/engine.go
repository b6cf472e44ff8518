// Package annotator is the interactive selection engine of the spectrogram viewer. It
// turns pointer events into hover readouts, selection rectangles, tooltip drags and
// persistent frequency markers, and keeps their pixel projection in sync with the view.
//
// An Engine is not safe for concurrent use. Every call must come from one goroutine, or
// be serialized by the caller, the way a UI thread delivers events.
package annotator

import (
	"slices"

	"github.com/google/uuid"

	"github.com/tphakala/callscope/internal/errors"
	"github.com/tphakala/callscope/internal/logger"
	"github.com/tphakala/callscope/internal/viewport"
)

// Engine owns all selection, marker and interaction state of one spectrogram view.
type Engine struct {
	host Host
	cfg  Config

	minFreq float64
	maxFreq float64

	state       State
	selections  []*selection
	views       []SelectionView
	markers     registry
	markerViews []MarkerView

	crosshair   Crosshair
	cursor      Cursor
	lastPointer viewport.Point
	hasPointer  bool

	persistentLines bool

	log       logger.Logger
	observers []Observer
	recorder  Recorder
	newID     func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithObserver adds a notification observer. Observers are called in registration order.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithRecorder sets the statistics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithIDGenerator replaces the selection ID generator.
func WithIDGenerator(f func() string) Option {
	return func(e *Engine) {
		if f != nil {
			e.newID = f
		}
	}
}

// New creates an engine reading view parameters from host.
func New(host Host, cfg Config, opts ...Option) (*Engine, error) {
	if host == nil {
		return nil, errors.Newf("annotator host is required").
			Component("annotator").
			Category(errors.CategoryValidation).
			Build()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		host:            host,
		cfg:             cfg,
		minFreq:         cfg.MinFreq,
		maxFreq:         cfg.MaxFreq,
		state:           Idle{},
		cursor:          CursorDefault,
		persistentLines: cfg.PersistentLinesEnabled,
		log:             GetLogger(),
		recorder:        nopRecorder{},
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.reproject()
	e.recorder.SetSelections(0)
	e.recorder.SetMarkers(0)
	return e, nil
}

// State returns the current interaction state.
func (e *Engine) State() State {
	return e.state
}

// Handle feeds one pointer event through the interaction state machine.
func (e *Engine) Handle(ev PointerEvent) {
	p := ev.point()
	button := ev.Button
	if button == "" {
		button = ButtonPrimary
	}

	switch ev.Action {
	case ActionMove:
		e.onMove(p)
	case ActionPress:
		switch button {
		case ButtonPrimary:
			e.onPrimaryPress(p)
		case ButtonSecondary:
			e.onSecondaryPress(p)
		}
	case ActionRelease:
		if button != ButtonSecondary {
			e.onRelease(p)
		}
	case ActionLeave:
		e.onLeave()
	default:
		e.log.Debug("ignoring unknown pointer action", logger.String("action", string(ev.Action)))
	}
}

func (e *Engine) onMove(p viewport.Point) {
	e.lastPointer = p
	e.hasPointer = true

	switch s := e.state.(type) {
	case Idle:
		e.idleMove(p)
	case Suppressed:
		if t, ok := e.targetAt(e.content(p)); ok && p.Finite() {
			e.setState(Suppressed{Target: t, Armed: s.Armed && t == s.Target})
			e.hideCrosshair()
			e.cursor = cursorForTarget(t)
			return
		}
		e.setState(Idle{})
		e.idleMove(p)
	case Drawing:
		if !e.insideDrawArea(p) {
			e.cancelDraw("pointer left the drawing area")
			e.updateHover(p)
			return
		}
		s.Current = e.content(p)
		e.state = s
	case Resizing:
		e.resizeMove(s, p)
	case DraggingTooltip:
		e.dragMove(s, p)
	}
}

func (e *Engine) onPrimaryPress(p viewport.Point) {
	if !p.Finite() {
		e.log.Debug("ignoring press with non-finite coordinates")
		return
	}
	c := e.content(p)

	switch s := e.state.(type) {
	case Idle:
		if t, ok := e.targetAt(c); ok {
			e.setState(Suppressed{Target: t})
			e.pressTarget(t, c)
			return
		}
		if id, edges, ok := e.resizeAt(c); ok {
			e.setState(Resizing{SelectionID: id, Edges: edges})
			e.hideCrosshair()
			e.cursor = edges.Cursor()
			return
		}
		if !e.insideDrawArea(p) {
			return
		}
		e.setState(Drawing{Anchor: c, Current: c})
		e.hideCrosshair()
		e.cursor = CursorNone
	case Suppressed:
		t, ok := e.targetAt(c)
		if !ok {
			e.setState(Idle{})
			e.onPrimaryPress(p)
			return
		}
		if t != s.Target {
			e.setState(Suppressed{Target: t})
		}
		e.pressTarget(t, c)
	}
}

// pressTarget starts a tooltip drag or arms a button target.
func (e *Engine) pressTarget(t Target, c viewport.Point) {
	if t.button() {
		e.setState(Suppressed{Target: t, Armed: true})
		e.cursor = CursorPointer
		return
	}
	idx := e.index(t.SelectionID)
	tip := e.views[idx].Tooltip
	e.setState(DraggingTooltip{
		SelectionID: t.SelectionID,
		Grab:        viewport.Point{X: c.X - tip.Rect.Left, Y: c.Y - tip.Rect.Top},
	})
	e.cursor = CursorMove
}

func (e *Engine) onRelease(p viewport.Point) {
	switch s := e.state.(type) {
	case Drawing:
		if e.insideDrawArea(p) {
			s.Current = e.content(p)
		}
		e.setState(Idle{})
		e.materialize(s)
	case Resizing:
		e.recorder.RecordGesture(GestureResize, OutcomeCompleted)
		if sel := e.find(s.SelectionID); sel != nil {
			e.log.Debug("resize completed",
				logger.String("selection_id", s.SelectionID),
				logger.String("edges", s.Edges.String()),
				logger.Float64("duration_ms", sel.Bounds.Duration()*1000),
				logger.Float64("bandwidth", sel.Bounds.Bandwidth()))
		}
		e.setState(Idle{})
	case DraggingTooltip:
		e.recorder.RecordGesture(GestureTooltipDrag, OutcomeCompleted)
		e.setState(Idle{})
	case Suppressed:
		if s.Armed && p.Finite() {
			if t, ok := e.targetAt(e.content(p)); ok && t == s.Target {
				e.activate(t)
			}
		}
		e.setState(Idle{})
	default:
		return
	}
	// The next sample decides hover and suppression from scratch.
	e.lastPointer = p
	e.hasPointer = true
	e.idleMove(p)
}

func (e *Engine) onLeave() {
	e.hasPointer = false
	switch e.state.(type) {
	case Drawing:
		e.cancelDraw("pointer left the viewer")
	case Suppressed:
		e.setState(Idle{})
	case Resizing, DraggingTooltip:
		// tracked globally until release
		return
	}
	e.hideCrosshair()
	e.cursor = CursorDefault
}

func (e *Engine) onSecondaryPress(p viewport.Point) {
	if !e.persistentLines || !p.Finite() {
		return
	}
	if _, height := e.host.ViewportSize(); p.Y > height-e.band() {
		return
	}
	if t, ok := e.targetAt(e.content(p)); ok && (t.Kind == TargetTooltip || t.Kind == TargetTooltipClose) {
		return
	}
	v := e.view()
	if !v.FreqValid() {
		return
	}
	freq := v.PixelToFreq(p.Y)
	if !viewport.Finite(freq) {
		return
	}

	result, m := e.markers.toggle(freq, e.cfg.MarkerTolerance, e.cfg.MaxMarkers)
	switch result {
	case markerAdded:
		e.recorder.RecordGesture(GestureMarker, OutcomeAdded)
		e.notify(Notification{Type: NotifyMarkerAdded, Frequency: m.Frequency})
	case markerRemoved:
		e.recorder.RecordGesture(GestureMarker, OutcomeRemoved)
		e.notify(Notification{Type: NotifyMarkerRemoved, Frequency: m.Frequency})
	case markerRejected:
		e.recorder.RecordGesture(GestureMarker, OutcomeRejected)
		e.log.Debug("marker capacity reached",
			logger.Float64("frequency", freq),
			logger.Int("max_markers", e.cfg.MaxMarkers))
		return
	}
	e.markerViews = e.markers.project(v)
	e.recorder.SetMarkers(len(e.markers.markers))
}

// materialize turns a finished draw into a selection when it is large enough.
func (e *Engine) materialize(d Drawing) {
	rect := viewport.Normalize(d.Anchor, d.Current)
	if rect.Width <= e.cfg.MinGesturePixels || rect.Height <= e.cfg.MinGesturePixels {
		e.recorder.RecordGesture(GestureDraw, OutcomeDiscarded)
		e.log.Debug("draw discarded",
			logger.Float64("width", rect.Width),
			logger.Float64("height", rect.Height))
		return
	}
	v := e.view()
	bounds := v.ToDomain(rect)
	if !v.Valid() || !bounds.Finite() {
		e.recorder.RecordGesture(GestureDraw, OutcomeDiscarded)
		e.log.Debug("draw discarded on invalid view")
		return
	}
	bounds = clampBounds(bounds, &e.cfg)

	sel := &selection{Selection: Selection{ID: e.newID(), Bounds: bounds, Kind: kindFor(bounds, &e.cfg)}}
	e.selections = append(e.selections, sel)
	e.views = append(e.views, project(sel, v, &e.cfg))

	e.recorder.RecordGesture(GestureDraw, OutcomeCreated)
	e.recorder.SetSelections(len(e.selections))
	e.log.Debug("selection created",
		logger.String("selection_id", sel.ID),
		logger.String("kind", string(sel.Kind)),
		logger.Float64("start_time", bounds.StartTime),
		logger.Float64("end_time", bounds.EndTime),
		logger.Float64("freq_low", bounds.FreqLow),
		logger.Float64("freq_high", bounds.FreqHigh))
	b := sel.Bounds
	e.notify(Notification{Type: NotifySelectionCreated, SelectionID: sel.ID, Bounds: &b})
}

func (e *Engine) cancelDraw(reason string) {
	e.recorder.RecordGesture(GestureDraw, OutcomeCancelled)
	e.log.Debug("draw cancelled", logger.String("reason", reason))
	e.setState(Idle{})
	e.hideCrosshair()
}

func (e *Engine) abortGesture(gesture, reason string) {
	e.recorder.RecordGesture(gesture, OutcomeAborted)
	e.log.Debug("gesture aborted", logger.String("gesture", gesture), logger.String("reason", reason))
	e.setState(Idle{})
	e.hideCrosshair()
	e.cursor = CursorDefault
}

func (e *Engine) activate(t Target) {
	switch t.Kind {
	case TargetClose, TargetTooltipClose:
		if e.removeSelection(t.SelectionID) {
			e.recorder.RecordGesture(GestureClose, OutcomeActivated)
		}
	case TargetExpand:
		sel := e.find(t.SelectionID)
		if sel == nil {
			return
		}
		e.recorder.RecordGesture(GestureExpand, OutcomeActivated)
		b := sel.Bounds
		e.notify(Notification{Type: NotifyExpandSelection, SelectionID: sel.ID, Bounds: &b})
	}
}

// removeSelection drops the selection and its projection in one step.
func (e *Engine) removeSelection(id string) bool {
	idx := e.index(id)
	if idx < 0 {
		return false
	}
	b := e.selections[idx].Bounds
	e.selections = slices.Delete(e.selections, idx, idx+1)
	e.views = slices.Delete(e.views, idx, idx+1)
	e.recorder.SetSelections(len(e.selections))
	e.log.Debug("selection removed", logger.String("selection_id", id))
	e.notify(Notification{Type: NotifySelectionRemoved, SelectionID: id, Bounds: &b})
	return true
}

// UpdateSelections re-projects every selection and marker against the current view. It
// is idempotent and never touches domain values. An invalid time axis leaves the last
// selection projection in place; markers follow the frequency axis only.
func (e *Engine) UpdateSelections() {
	e.reproject()
}

func (e *Engine) reproject() {
	v := e.view()
	if v.FreqValid() {
		e.markerViews = e.markers.project(v)
	}
	if !v.Valid() {
		e.log.Debug("skipping re-projection on invalid view",
			logger.Float64("duration", v.Duration),
			logger.Float64("zoom", v.ZoomLevel))
		return
	}
	views := make([]SelectionView, len(e.selections))
	for i, sel := range e.selections {
		views[i] = project(sel, v, &e.cfg)
	}
	e.views = views
	e.recorder.RecordReprojection()
}

// ClearSelections removes every selection and its artifacts. A gesture bound to a
// selection is abandoned.
func (e *Engine) ClearSelections() {
	n := len(e.selections)
	e.selections = nil
	e.views = nil
	switch e.state.(type) {
	case Resizing, DraggingTooltip, Suppressed:
		e.setState(Idle{})
		e.cursor = CursorDefault
	}
	e.recorder.SetSelections(0)
	e.log.Debug("selections cleared", logger.Int("count", n))
	e.notify(Notification{Type: NotifySelectionsCleared, Count: n})
}

// SetFrequencyRange changes the displayed frequency bounds and re-projects. Invalid
// ranges return a validation error and change nothing.
func (e *Engine) SetFrequencyRange(minFreq, maxFreq float64) error {
	if err := validateFrequencyRange(minFreq, maxFreq); err != nil {
		return errors.New(err).
			Component("annotator").
			Category(errors.CategoryValidation).
			Context("operation", "set_frequency_range").
			Context("min_freq", minFreq).
			Context("max_freq", maxFreq).
			Build()
	}
	e.minFreq = minFreq
	e.maxFreq = maxFreq
	e.log.Debug("frequency range changed",
		logger.Float64("min_freq", minFreq),
		logger.Float64("max_freq", maxFreq))
	e.reproject()
	return nil
}

// FrequencyRange returns the displayed frequency bounds.
func (e *Engine) FrequencyRange() (minFreq, maxFreq float64) {
	return e.minFreq, e.maxFreq
}

// HideHover force-hides the crosshair.
func (e *Engine) HideHover() {
	e.hideCrosshair()
	if _, idle := e.state.(Idle); idle {
		e.cursor = CursorDefault
	}
}

// RefreshHover re-runs hover at the last known pointer position, for use after the view
// changed without a pointer event. Suppression over an interactive element is lifted
// when the element moved away from the pointer.
func (e *Engine) RefreshHover() {
	if !e.hasPointer {
		return
	}
	switch e.state.(type) {
	case Idle, Suppressed:
		e.onMove(e.lastPointer)
	}
}

// SetPersistentLinesEnabled enables or disables marker toggling.
func (e *Engine) SetPersistentLinesEnabled(enabled bool) {
	e.persistentLines = enabled
}

// PersistentLinesEnabled reports whether marker toggling is enabled.
func (e *Engine) PersistentLinesEnabled() bool {
	return e.persistentLines
}

// Selections returns the domain truth of every selection in creation order.
func (e *Engine) Selections() []Selection {
	out := make([]Selection, len(e.selections))
	for i, sel := range e.selections {
		out[i] = sel.Selection
	}
	return out
}

// Markers returns the persistent markers in creation order.
func (e *Engine) Markers() []Marker {
	return slices.Clone(e.markers.markers)
}

func (e *Engine) setState(next State) {
	if prev := e.state; prev.Name() != next.Name() {
		e.log.Debug("state transition",
			logger.String("from", prev.Name()),
			logger.String("to", next.Name()))
	}
	e.state = next
}

func (e *Engine) notify(n Notification) {
	for _, o := range e.observers {
		o.Notify(n)
	}
}

// view builds the transform from live host parameters. It is never cached.
func (e *Engine) view() viewport.View {
	return viewport.View{
		Duration:     e.host.Duration(),
		ZoomLevel:    e.host.ZoomLevel(),
		RenderHeight: e.cfg.RenderHeight,
		MinFreq:      e.minFreq,
		MaxFreq:      e.maxFreq,
		ScrollLeft:   e.host.ScrollLeft(),
	}
}

func (e *Engine) content(p viewport.Point) viewport.Point {
	return viewport.Point{X: p.X + e.host.ScrollLeft(), Y: p.Y}
}

// band is the reserved scrollbar band height.
func (e *Engine) band() float64 {
	if e.host.ExpandedLayout() {
		return e.cfg.ScrollbarBand
	}
	return 0
}

// insideDrawArea reports whether a viewport point may start or continue a draw.
func (e *Engine) insideDrawArea(p viewport.Point) bool {
	if !p.Finite() {
		return false
	}
	width, height := e.host.ViewportSize()
	return p.X >= 0 && p.X <= width && p.Y >= 0 && p.Y <= height-e.band()
}

func (e *Engine) index(id string) int {
	return slices.IndexFunc(e.selections, func(s *selection) bool { return s.ID == id })
}

func (e *Engine) find(id string) *selection {
	if idx := e.index(id); idx >= 0 {
		return e.selections[idx]
	}
	return nil
}

// targetAt hit-tests suppressing elements in priority order: tooltip close buttons,
// tooltip bodies, then affordances. Within each class the most recent selection wins.
func (e *Engine) targetAt(c viewport.Point) (Target, bool) {
	if !c.Finite() {
		return Target{}, false
	}
	for i := len(e.views) - 1; i >= 0; i-- {
		if tip := e.views[i].Tooltip; tip != nil && tip.Close.Contains(c) {
			return Target{Kind: TargetTooltipClose, SelectionID: e.views[i].ID}, true
		}
	}
	for i := len(e.views) - 1; i >= 0; i-- {
		if tip := e.views[i].Tooltip; tip != nil && tip.Rect.Contains(c) {
			return Target{Kind: TargetTooltip, SelectionID: e.views[i].ID}, true
		}
	}
	for i := len(e.views) - 1; i >= 0; i-- {
		sv := e.views[i]
		if sv.Close != nil && sv.Close.Contains(c) {
			return Target{Kind: TargetClose, SelectionID: sv.ID}, true
		}
		if sv.Expand != nil && sv.Expand.Contains(c) {
			return Target{Kind: TargetExpand, SelectionID: sv.ID}, true
		}
	}
	return Target{}, false
}

// resizeAt returns the topmost selection whose resize band contains c.
func (e *Engine) resizeAt(c viewport.Point) (string, Edges, bool) {
	if !c.Finite() {
		return "", 0, false
	}
	for i := len(e.views) - 1; i >= 0; i-- {
		if edges := edgesAt(e.views[i].Rect, c, e.cfg.EdgeThreshold); edges != 0 {
			return e.views[i].ID, edges, true
		}
	}
	return "", 0, false
}
