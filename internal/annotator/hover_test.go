package annotator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoverCrosshair(t *testing.T) {
	h := newHarness(t, scenarioHost())

	h.move(500, 400)
	frame := h.engine.Frame()
	ch := frame.Crosshair
	require.True(t, ch.Visible)
	assert.InDelta(t, 69, ch.Frequency, tolerance)
	assert.InDelta(t, 1000, ch.TimeMs, tolerance)
	assert.Equal(t, "69.0 kHz  1000.0 ms", ch.Label)
	assert.InDelta(t, 512, ch.LabelX, tolerance)
	assert.Equal(t, AlignLeft, ch.LabelAlign)
	assert.Equal(t, CursorNone, frame.Cursor)
}

func TestHoverLabelFlipsNearRightEdge(t *testing.T) {
	tests := []struct {
		name  string
		x     float64
		align LabelAlign
		labX  float64
	}{
		{"far from edge", 880, AlignLeft, 892},
		{"inside flip margin", 881, AlignRight, 869},
		{"at edge", 1000, AlignRight, 988},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, scenarioHost())
			h.move(tt.x, 400)
			ch := h.engine.Frame().Crosshair
			require.True(t, ch.Visible)
			assert.Equal(t, tt.align, ch.LabelAlign)
			assert.InDelta(t, tt.labX, ch.LabelX, tolerance)
		})
	}
}

func TestHoverUsesScroll(t *testing.T) {
	host := scenarioHost()
	host.scroll = 250
	h := newHarness(t, host)

	h.move(250, 400)
	assert.InDelta(t, 1000, h.engine.Frame().Crosshair.TimeMs, tolerance)
	assert.InDelta(t, 250, h.engine.Frame().Crosshair.X, tolerance, "crosshair stays in viewport space")
}

func TestHoverHidden(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
		x, y  float64
	}{
		{"scrollbar band", func(h *harness) {
			h.host.height = 820
			h.host.expanded = true
		}, 400, 805},
		{"non-finite", func(*harness) {}, math.NaN(), 100},
		{"outside viewport", func(*harness) {}, 1200, 100},
		{"invalid view", func(h *harness) { h.host.duration = 0 }, 400, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, scenarioHost())
			tt.setup(h)
			h.move(tt.x, tt.y)
			frame := h.engine.Frame()
			assert.False(t, frame.Crosshair.Visible)
			assert.Equal(t, CursorDefault, frame.Cursor)
		})
	}
}

func TestHoverHiddenDuringGestures(t *testing.T) {
	h := newHarness(t, scenarioHost())
	h.move(100, 100)
	require.True(t, h.engine.Frame().Crosshair.Visible)

	h.press(100, 100)
	h.move(200, 200)
	assert.False(t, h.engine.Frame().Crosshair.Visible, "hidden while drawing")

	h.release(200, 200)
	assert.True(t, h.engine.Frame().Crosshair.Visible, "redrawn after release")
}

func TestHoverSuppressedOverTooltip(t *testing.T) {
	h := newHarness(t, scenarioHost())
	h.drag(100, 100, 130, 200)

	h.move(200, 150)
	frame := h.engine.Frame()
	assert.Equal(t, "suppressed", frame.State)
	assert.False(t, frame.Crosshair.Visible)
	assert.Equal(t, CursorMove, frame.Cursor)
	require.NotNil(t, frame.Target)
	assert.Equal(t, Target{Kind: TargetTooltip, SelectionID: "sel-1"}, *frame.Target)

	h.engine.RefreshHover()
	assert.False(t, h.engine.Frame().Crosshair.Visible, "refresh keeps suppression")

	h.move(600, 500)
	assert.Equal(t, "idle", h.engine.Frame().State)
	assert.True(t, h.engine.Frame().Crosshair.Visible)
}

func TestRefreshHoverLiftsSuppressionWhenTooltipMoves(t *testing.T) {
	host := scenarioHost()
	h := newHarness(t, host)
	h.drag(100, 100, 130, 200)

	h.move(145, 105)
	require.Equal(t, "suppressed", h.engine.Frame().State)

	host.zoom = 2000
	h.engine.UpdateSelections()
	h.engine.RefreshHover()

	frame := h.engine.Frame()
	assert.Equal(t, "idle", frame.State)
	assert.Nil(t, frame.Target)
	assert.True(t, frame.Crosshair.Visible)
	require.NotNil(t, frame.Selections[0].Tooltip)
	assert.Greater(t, frame.Selections[0].Tooltip.Rect.Left, 145.0)
}

func TestPressOnTooltipNeverDraws(t *testing.T) {
	h := newHarness(t, scenarioHost())
	h.drag(100, 100, 130, 200)

	// press without a preceding move still hit-tests the tooltip
	h.press(200, 150)
	assert.IsType(t, DraggingTooltip{}, h.engine.State())
	h.release(200, 150)
	assert.Len(t, h.engine.Selections(), 1)
}

func TestLeaveHidesCrosshair(t *testing.T) {
	h := newHarness(t, scenarioHost())
	h.move(500, 400)
	h.engine.Handle(PointerEvent{Action: ActionLeave})
	assert.False(t, h.engine.Frame().Crosshair.Visible)

	h.engine.RefreshHover()
	assert.False(t, h.engine.Frame().Crosshair.Visible, "no redraw after the pointer left")
}

func TestHideAndRefreshHover(t *testing.T) {
	host := scenarioHost()
	h := newHarness(t, host)
	h.move(500, 400)

	h.engine.HideHover()
	assert.False(t, h.engine.Frame().Crosshair.Visible)

	host.zoom = 1000
	h.engine.UpdateSelections()
	h.engine.RefreshHover()
	ch := h.engine.Frame().Crosshair
	require.True(t, ch.Visible)
	assert.InDelta(t, 500, ch.TimeMs, tolerance, "re-evaluated against the new zoom")
	assert.Equal(t, "69.0 kHz  500.0 ms", ch.Label)
}

func TestRefreshHoverWithoutPointer(t *testing.T) {
	h := newHarness(t, scenarioHost())
	h.engine.RefreshHover()
	assert.False(t, h.engine.Frame().Crosshair.Visible)
}

func TestRefreshHoverAfterFrequencyChange(t *testing.T) {
	h := newHarness(t, scenarioHost())
	h.move(500, 400)
	require.NoError(t, h.engine.SetFrequencyRange(20, 100))
	h.engine.RefreshHover()
	assert.InDelta(t, 60, h.engine.Frame().Crosshair.Frequency, tolerance)
}
