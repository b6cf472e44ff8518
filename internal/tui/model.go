package tui

import (
	"context"
	"errors"
	"fmt"
	"math"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/logger"
)

// statusRows is the number of terminal rows below the spectrogram area.
const statusRows = 2

// Frequency range scale factors for [ and ].
const (
	narrowFactor = 0.8
	widenFactor  = 1.25
)

// Model is the bubbletea model of the terminal viewer.
type Model struct {
	cfg    Config
	host   *host
	engine *annotator.Engine
	log    logger.Logger
	styles styles

	cols, rows int // spectrogram area in cells

	pressed annotator.Button // button of the press in progress, for terminals that omit it on release
	inside  bool             // pointer last seen over the spectrogram area
	pending []annotator.Notification
	status  string // summary of the last notification
}

// New builds a model. The engine sees an empty viewport until the first window size message.
func New(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tui config: %w", err)
	}
	m := &Model{
		cfg:    cfg,
		host:   &host{duration: cfg.Duration, zoom: cfg.Zoom},
		log:    GetLogger(),
		styles: defaultStyles(),
	}
	engine, err := annotator.New(m.host, cfg.Annotator,
		annotator.WithLogger(m.log.Module("annotator")),
		annotator.WithObserver(annotator.ObserverFunc(func(n annotator.Notification) {
			m.pending = append(m.pending, n)
		})))
	if err != nil {
		return nil, err
	}
	m.engine = engine
	return m, nil
}

// Run shows the viewer until the user quits or ctx ends.
func Run(ctx context.Context, cfg Config) error {
	m, err := New(cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run terminal viewer: %w", err)
	}
	return nil
}

// Frame returns the engine snapshot the next View will draw.
func (m *Model) Frame() annotator.Frame {
	return m.engine.Frame()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.BlurMsg:
		m.leave()
	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
	}
	m.processNotifications()
	return m, nil
}

func (m *Model) resize(width, height int) {
	m.cols = max(width, 1)
	maxRows := int(math.Ceil(m.cfg.Annotator.RenderHeight / m.cfg.CellHeight))
	m.rows = max(min(height-statusRows, maxRows), 1)

	m.host.width = float64(m.cols) * m.cfg.CellWidth
	m.host.height = float64(m.rows) * m.cfg.CellHeight
	m.host.clampScroll()
	m.reproject()
}

// reproject follows every host-side view change.
func (m *Model) reproject() {
	m.engine.UpdateSelections()
	m.engine.RefreshHover()
}

// pixel maps a cell to the pixel at its centre.
func (m *Model) pixel(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * m.cfg.CellWidth, (float64(row) + 0.5) * m.cfg.CellHeight
}

func (m *Model) overArea(col, row int) bool {
	return col >= 0 && col < m.cols && row >= 0 && row < m.rows
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	x, y := m.pixel(msg.X, msg.Y)
	over := m.overArea(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionMotion:
		// Plain motion off the area is a leave; drags keep reporting positions.
		if !over && msg.Button == tea.MouseButtonNone && m.pressed == "" {
			m.leave()
			return
		}
		m.inside = over
		m.engine.Handle(annotator.PointerEvent{Action: annotator.ActionMove, X: x, Y: y})

	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.press(annotator.ButtonPrimary, x, y)
		case tea.MouseButtonRight:
			m.press(annotator.ButtonSecondary, x, y)
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelLeft:
			m.scrollBy(-m.cfg.ScrollStep)
		case tea.MouseButtonWheelDown, tea.MouseButtonWheelRight:
			m.scrollBy(m.cfg.ScrollStep)
		}

	case tea.MouseActionRelease:
		button := m.pressed
		switch msg.Button {
		case tea.MouseButtonLeft:
			button = annotator.ButtonPrimary
		case tea.MouseButtonRight:
			button = annotator.ButtonSecondary
		}
		if button == "" {
			return
		}
		m.pressed = ""
		m.engine.Handle(annotator.PointerEvent{Action: annotator.ActionRelease, Button: button, X: x, Y: y})
	}
}

func (m *Model) press(button annotator.Button, x, y float64) {
	m.pressed = button
	m.engine.Handle(annotator.PointerEvent{Action: annotator.ActionPress, Button: button, X: x, Y: y})
}

func (m *Model) leave() {
	if !m.inside && m.pressed == "" {
		return
	}
	m.inside = false
	m.pressed = ""
	m.engine.Handle(annotator.PointerEvent{Action: annotator.ActionLeave})
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "+", "=":
		m.zoomBy(m.cfg.ZoomStep)
	case "-", "_":
		m.zoomBy(1 / m.cfg.ZoomStep)
	case "left", "h":
		m.scrollBy(-m.cfg.ScrollStep)
	case "right", "l":
		m.scrollBy(m.cfg.ScrollStep)
	case "[":
		m.scaleFrequency(narrowFactor)
	case "]":
		m.scaleFrequency(widenFactor)
	case "c":
		m.engine.ClearSelections()
	case "p":
		m.engine.SetPersistentLinesEnabled(!m.engine.PersistentLinesEnabled())
	case "e":
		m.host.expanded = !m.host.expanded
		m.reproject()
	}
	return nil
}

// zoomBy scales the zoom level around the time at the centre of the viewport.
func (m *Model) zoomBy(factor float64) {
	h := m.host
	center := (h.scroll + h.width/2) / h.zoom
	h.zoom *= factor
	h.scroll = center*h.zoom - h.width/2
	h.clampScroll()
	m.reproject()
}

func (m *Model) scrollBy(dx float64) {
	m.host.scroll += dx
	m.host.clampScroll()
	m.reproject()
}

// scaleFrequency resizes the displayed range around its centre within the configured bounds.
func (m *Model) scaleFrequency(factor float64) {
	lo, hi := m.engine.FrequencyRange()
	center, half := (lo+hi)/2, (hi-lo)/2*factor
	lo = math.Max(m.cfg.Annotator.MinFreq, center-half)
	hi = math.Min(m.cfg.Annotator.MaxFreq, center+half)
	if err := m.engine.SetFrequencyRange(lo, hi); err != nil {
		m.log.Debug("frequency range not changed", logger.Error(err))
		return
	}
	m.engine.RefreshHover()
}

// zoomTo fits [start, end] seconds to the viewport. It stands in for the crop/zoom
// collaborator of expand requests.
func (m *Model) zoomTo(start, end float64) {
	h := m.host
	if end <= start || h.width <= 0 {
		return
	}
	h.zoom = h.width / (end - start)
	h.scroll = start * h.zoom
	h.clampScroll()
	m.reproject()
}

func (m *Model) processNotifications() {
	for len(m.pending) > 0 {
		batch := m.pending
		m.pending = nil
		for _, n := range batch {
			m.status = describe(n)
			if req, ok := n.ExpandRequest(); ok {
				m.log.Debug("expanding selection",
					logger.String("selection_id", req.SelectionID),
					logger.Float64("start", req.StartTime),
					logger.Float64("end", req.EndTime))
				m.zoomTo(req.StartTime, req.EndTime)
			}
		}
	}
}

func describe(n annotator.Notification) string {
	switch n.Type {
	case annotator.NotifyMarkerAdded, annotator.NotifyMarkerRemoved:
		return fmt.Sprintf("%s %.1f kHz", n.Type, n.Frequency)
	case annotator.NotifySelectionsCleared:
		return fmt.Sprintf("%s (%d)", n.Type, n.Count)
	default:
		return string(n.Type)
	}
}
