package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/viewport"
)

const helpText = "+/- zoom  ←/→ scroll  [/] freq  c clear  p lines  e layout  q quit"

type cell struct {
	r rune
	l layer
}

// canvas is a rune grid in viewport cells.
type canvas struct {
	cols, rows int
	cells      [][]cell
	cellW      float64
	cellH      float64
}

func newCanvas(cols, rows int, cellW, cellH float64) *canvas {
	c := &canvas{cols: cols, rows: rows, cellW: cellW, cellH: cellH, cells: make([][]cell, rows)}
	for y := range c.cells {
		row := make([]cell, cols)
		for x := range row {
			row[x] = cell{r: ' ', l: layerBackground}
			if x%10 == 0 && y%4 == 0 {
				row[x].r = '·'
			}
		}
		c.cells[y] = row
	}
	return c
}

func (c *canvas) col(px float64) int { return int(math.Floor(px / c.cellW)) }
func (c *canvas) row(py float64) int { return int(math.Floor(py / c.cellH)) }

func (c *canvas) put(x, y int, r rune, l layer) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.cells[y][x] = cell{r: r, l: l}
}

func (c *canvas) text(x, y int, s string, l layer) {
	for i, r := range []rune(s) {
		c.put(x+i, y, r, l)
	}
}

func (c *canvas) fill(x0, y0, x1, y1 int, l layer) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.put(x, y, ' ', l)
		}
	}
}

type boxRunes struct {
	h, v, tl, tr, bl, br rune
}

var (
	solidBox  = boxRunes{'─', '│', '┌', '┐', '└', '┘'}
	dashedBox = boxRunes{'┄', '┆', '┌', '┐', '└', '┘'}
)

// box outlines a viewport pixel rectangle.
func (c *canvas) box(left, top, width, height float64, b boxRunes, l layer) (x0, y0, x1, y1 int) {
	x0, y0 = c.col(left), c.row(top)
	x1, y1 = c.col(left+width), c.row(top+height)
	for x := x0 + 1; x < x1; x++ {
		c.put(x, y0, b.h, l)
		c.put(x, y1, b.h, l)
	}
	for y := y0 + 1; y < y1; y++ {
		c.put(x0, y, b.v, l)
		c.put(x1, y, b.v, l)
	}
	c.put(x0, y0, b.tl, l)
	c.put(x1, y0, b.tr, l)
	c.put(x0, y1, b.bl, l)
	c.put(x1, y1, b.br, l)
	return x0, y0, x1, y1
}

// draw paints f onto the canvas. Frame geometry is in content space except the crosshair.
func (c *canvas) draw(f annotator.Frame) {
	scroll := f.ScrollLeft

	for _, mk := range f.Markers {
		y := c.row(mk.Y)
		for x := 0; x < c.cols; x++ {
			c.put(x, y, '─', layerMarker)
		}
		c.text(1, y, fmt.Sprintf(" %.1f kHz ", mk.Frequency), layerMarker)
	}

	for i := range f.Selections {
		c.drawSelection(&f.Selections[i], scroll)
	}

	if p := f.Provisional; p != nil {
		c.box(p.Left-scroll, p.Top, p.Width, p.Height, dashedBox, layerProvisional)
	}

	if ch := f.Crosshair; ch.Visible {
		c.drawCrosshair(ch)
	}
}

func (c *canvas) drawSelection(sv *annotator.SelectionView, scroll float64) {
	r := sv.Rect
	c.box(r.Left-scroll, r.Top, r.Width, r.Height, solidBox, layerSelection)

	if lbl := sv.DurationLabel; lbl.Text != "" {
		c.text(c.col(lbl.X-scroll), c.row(lbl.Y), lbl.Text, layerLabel)
	}

	if tt := sv.Tooltip; tt != nil {
		x0, y0, x1, y1 := c.box(tt.Rect.Left-scroll, tt.Rect.Top, tt.Rect.Width, tt.Rect.Height, solidBox, layerTooltip)
		c.fill(x0+1, y0+1, x1-1, y1-1, layerTooltip)
		for i, line := range tt.Lines {
			if y0+1+i >= y1 {
				break
			}
			c.text(x0+1, y0+1+i, truncate(line, x1-x0-1), layerTooltip)
		}
		c.affordance(tt.Close, scroll, '×')
	}
	if sv.Expand != nil {
		c.affordance(*sv.Expand, scroll, '⤢')
	}
	if sv.Close != nil {
		c.affordance(*sv.Close, scroll, '×')
	}
}

// affordance marks the cell holding the centre of a button.
func (c *canvas) affordance(r viewport.PixelRect, scroll float64, glyph rune) {
	c.put(c.col(r.Left+r.Width/2-scroll), c.row(r.Top+r.Height/2), glyph, layerAffordance)
}

func (c *canvas) drawCrosshair(ch annotator.Crosshair) {
	cx, cy := c.col(ch.X), c.row(ch.Y)
	for y := 0; y < c.rows; y++ {
		c.put(cx, y, '│', layerCrosshair)
	}
	for x := 0; x < c.cols; x++ {
		c.put(x, cy, '─', layerCrosshair)
	}
	c.put(cx, cy, '┼', layerCrosshair)

	labelRow := cy - 1
	if labelRow < 0 {
		labelRow = cy + 1
	}
	start := c.col(ch.LabelX)
	if ch.LabelAlign == annotator.AlignRight {
		start -= len([]rune(ch.Label)) - 1
	}
	c.text(start, labelRow, ch.Label, layerReadout)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

// render styles the canvas row by row, one lipgloss render per run of equal layers.
func (c *canvas) render(st styles) string {
	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].l == row[start].l {
				continue
			}
			run := make([]rune, 0, x-start)
			for _, cl := range row[start:x] {
				run = append(run, cl.r)
			}
			b.WriteString(st.layers[row[start].l].Render(string(run)))
			start = x
		}
	}
	return b.String()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.cols == 0 || m.rows == 0 {
		return "waiting for terminal size…"
	}
	f := m.engine.Frame()
	c := newCanvas(m.cols, m.rows, m.cfg.CellWidth, m.cfg.CellHeight)
	c.draw(f)

	lines := "off"
	if f.PersistentLinesEnabled {
		lines = "on"
	}
	layout := "compact"
	if m.host.expanded {
		layout = "expanded"
	}
	status := fmt.Sprintf(" zoom %.0f px/s  scroll %.0f px  %.1f-%.1f kHz  lines %s  %s  %s  %d selections",
		m.host.zoom, m.host.scroll, f.FrequencyRange.Min, f.FrequencyRange.Max,
		lines, layout, f.State, len(f.Selections))
	if m.status != "" {
		status += "  | " + m.status
	}

	return c.render(m.styles) + "\n" +
		m.styles.statusBar.Width(m.cols).Render(truncate(status, m.cols)) + "\n" +
		m.styles.help.Render(truncate(helpText, m.cols))
}
