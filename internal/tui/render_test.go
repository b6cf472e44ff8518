package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/viewport"
)

func TestViewBeforeSize(t *testing.T) {
	m, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, m.View(), "waiting")
}

func TestViewLayout(t *testing.T) {
	m := newSizedModel(t, DefaultConfig(), 100, 42)
	drag(m, 10, 10, 30, 20)
	m.Update(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 60, 30))

	out := m.View()
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 42)
	assert.Contains(t, out, "┌")
	assert.Contains(t, out, "┼")
	assert.Contains(t, out, m.Frame().Crosshair.Label)
	assert.Contains(t, lines[40], "zoom 100 px/s")
	assert.Contains(t, lines[40], "1 selections")
	assert.Contains(t, lines[41], "q quit")
}

func TestCanvasDrawsFrame(t *testing.T) {
	c := newCanvas(40, 20, 10, 10)
	c.draw(annotator.Frame{
		ScrollLeft: 100,
		Markers:    []annotator.MarkerView{{Frequency: 42.5, Y: 150}},
		Selections: []annotator.SelectionView{{
			Rect:          viewport.PixelRect{Left: 150, Top: 20, Width: 100, Height: 50},
			DurationLabel: annotator.Label{Text: "200.0 ms", X: 150, Y: 80},
			Close:         &viewport.PixelRect{Left: 230, Top: 20, Width: 14, Height: 14},
		}},
		Provisional: &viewport.PixelRect{Left: 300, Top: 100, Width: 50, Height: 30},
	})

	at := func(x, y int) rune { return c.cells[y][x].r }
	assert.Equal(t, '┌', at(5, 2))
	assert.Equal(t, '┘', at(15, 7))
	assert.Equal(t, '×', at(13, 2))
	assert.Equal(t, layerAffordance, c.cells[2][13].l)
	assert.Equal(t, "200.0 ms", string(runesAt(c, 5, 8, 8)))
	assert.Equal(t, '┆', at(20, 11))
	assert.Contains(t, string(runesAt(c, 0, 15, 40)), "42.5 kHz")
}

func TestCrosshairLabelAlignsRight(t *testing.T) {
	c := newCanvas(40, 20, 10, 10)
	c.drawCrosshair(annotator.Crosshair{
		Visible: true, X: 350, Y: 100,
		Label: "abc", LabelX: 338, LabelAlign: annotator.AlignRight,
	})

	assert.Equal(t, '┼', c.cells[10][35].r)
	assert.Equal(t, "abc", string(runesAt(c, 31, 9, 3)))
}

func TestCanvasClipsOutOfRange(t *testing.T) {
	c := newCanvas(4, 2, 10, 10)
	c.text(2, 1, "hello", layerLabel)
	c.put(-1, 0, 'x', layerLabel)
	assert.Equal(t, "he", string(runesAt(c, 2, 1, 2)))
}

func TestRenderKeepsText(t *testing.T) {
	c := newCanvas(6, 1, 10, 10)
	c.text(0, 0, "ab", layerLabel)
	c.text(3, 0, "cd", layerMarker)
	assert.Contains(t, c.render(defaultStyles()), "ab")
	assert.Contains(t, c.render(defaultStyles()), "cd")
}

func runesAt(c *canvas, x, y, n int) []rune {
	out := make([]rune, 0, n)
	for i := x; i < x+n && i < c.cols; i++ {
		out = append(out, c.cells[y][i].r)
	}
	return out
}
