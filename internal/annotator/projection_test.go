package annotator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateSelectionsIsIdempotent(t *testing.T) {
	h := newHarness(t, scenarioHost())
	h.drag(100, 100, 300, 300)
	h.drag(400, 200, 440, 400)
	h.rightClick(600, 250)

	h.engine.UpdateSelections()
	first, err := json.Marshal(h.engine.Frame())
	require.NoError(t, err)

	h.engine.UpdateSelections()
	second, err := json.Marshal(h.engine.Frame())
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
}

func TestReprojectionFollowsView(t *testing.T) {
	host := scenarioHost()
	h := newHarness(t, host)
	h.drag(100, 100, 300, 300)
	before := h.engine.Selections()[0].Bounds

	host.zoom = 1000
	host.scroll = 150
	h.engine.UpdateSelections()

	frame := h.engine.Frame()
	rect := frame.Selections[0].Rect
	assert.InDelta(t, 200, rect.Left, tolerance)
	assert.InDelta(t, 400, rect.Width, tolerance)
	assert.InDelta(t, 100, rect.Top, tolerance, "vertical projection does not depend on zoom")
	assert.InDelta(t, 2000, frame.ContentWidth, tolerance)
	assert.InDelta(t, 150, frame.ScrollLeft, tolerance)
	assert.Equal(t, before, h.engine.Selections()[0].Bounds, "domain values are untouched")
}

func TestInvalidViewKeepsLastProjection(t *testing.T) {
	host := scenarioHost()
	h := newHarness(t, host)
	h.drag(100, 100, 300, 300)
	rect := h.engine.Frame().Selections[0].Rect

	host.duration = 0
	h.engine.UpdateSelections()
	assert.Equal(t, rect, h.engine.Frame().Selections[0].Rect)
}

func TestTooltipDragSurvivesReprojection(t *testing.T) {
	host := scenarioHost()
	h := newHarness(t, host)
	h.drag(100, 100, 130, 200)

	tip := h.engine.Frame().Selections[0].Tooltip
	require.NotNil(t, tip)
	assert.InDelta(t, 140, tip.Rect.Left, tolerance)
	assert.InDelta(t, 100, tip.Rect.Top, tolerance)
	assert.False(t, tip.Detached)

	// grab the tooltip at (40, 50) from its corner
	h.move(180, 150)
	h.press(180, 150)
	require.IsType(t, DraggingTooltip{}, h.engine.State())
	h.move(380, 350)

	tip = h.engine.Frame().Selections[0].Tooltip
	assert.InDelta(t, 340, tip.Rect.Left, tolerance)
	assert.InDelta(t, 300, tip.Rect.Top, tolerance)
	assert.True(t, tip.Detached)

	h.release(380, 350)
	assert.Equal(t, 1, h.recorder.gestures[GestureTooltipDrag+"/"+OutcomeCompleted])

	h.engine.UpdateSelections()
	tip = h.engine.Frame().Selections[0].Tooltip
	assert.InDelta(t, 340, tip.Rect.Left, tolerance)

	host.zoom = 1000
	h.engine.UpdateSelections()
	tip = h.engine.Frame().Selections[0].Tooltip
	assert.InDelta(t, 470, tip.Rect.Left, tolerance, "offset is kept relative to the moved anchor")
	assert.InDelta(t, 300, tip.Rect.Top, tolerance)
	assert.InDelta(t, tip.Rect.Right()-20, tip.Close.Left, tolerance)
}

func TestTooltipDragLeavesDomainAlone(t *testing.T) {
	h := newHarness(t, scenarioHost())
	h.drag(100, 100, 130, 200)
	before := h.engine.Selections()[0]

	h.drag(180, 150, 600, 600)

	assert.Equal(t, before, h.engine.Selections()[0])
	assert.Len(t, h.engine.Selections(), 1, "dragging a tooltip never draws")
}

func TestFrameIsDeepCopy(t *testing.T) {
	h := newHarness(t, scenarioHost())
	h.drag(100, 100, 130, 200)
	h.drag(400, 100, 600, 300)
	h.rightClick(700, 400)

	frame := h.engine.Frame()
	frame.Selections[0].Tooltip.Lines[0] = "mutated"
	frame.Selections[0].Tooltip.Rect.Left = -1
	frame.Selections[1].Close.Left = -1
	frame.Markers[0].Y = -1

	fresh := h.engine.Frame()
	assert.NotEqual(t, "mutated", fresh.Selections[0].Tooltip.Lines[0])
	assert.NotEqual(t, -1.0, fresh.Selections[0].Tooltip.Rect.Left)
	assert.NotEqual(t, -1.0, fresh.Selections[1].Close.Left)
	assert.NotEqual(t, -1.0, fresh.Markers[0].Y)
}

func TestFrameEmptyCollections(t *testing.T) {
	h := newHarness(t, scenarioHost())
	data, err := json.Marshal(h.engine.Frame())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"selections":[]`)
	assert.Contains(t, string(data), `"markers":[]`)
}

func TestProvisionalRectUsesContentSpace(t *testing.T) {
	host := scenarioHost()
	host.scroll = 100
	h := newHarness(t, host)
	h.move(50, 50)
	h.press(50, 50)
	h.move(20, 150)

	frame := h.engine.Frame()
	require.NotNil(t, frame.Provisional)
	assert.InDelta(t, 120, frame.Provisional.Left, tolerance, "content space")
	assert.InDelta(t, 30, frame.Provisional.Width, tolerance)
	assert.InDelta(t, 100, frame.Provisional.Height, tolerance)
}
