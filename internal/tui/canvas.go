package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuircle/internal/braille"
	"github.com/verte-zerg/tuircle/internal/geom"
)

// surface maps terminal cells to surface coordinates. One cell spans
// cellWidth x cellHeight surface units.
type surface struct {
	cols       int
	rows       int
	cellWidth  float64
	cellHeight float64
}

// point returns the surface point at the middle of a cell.
func (s surface) point(col, row int) geom.Point {
	return geom.Pt((float64(col)+0.5)*s.cellWidth, (float64(row)+0.5)*s.cellHeight)
}

// center returns the middle of the surface.
func (s surface) center() geom.Point {
	return geom.Pt(float64(s.cols)*s.cellWidth/2, float64(s.rows)*s.cellHeight/2)
}

// cell returns the cell that contains p.
func (s surface) cell(p geom.Point) (int, int) {
	return int(math.Floor(p.X / s.cellWidth)), int(math.Floor(p.Y / s.cellHeight))
}

func (s surface) dot(p geom.Point) (int, int) {
	x := int(math.Floor(p.X / (s.cellWidth / braille.DotsX)))
	y := int(math.Floor(p.Y / (s.cellHeight / braille.DotsY)))
	return x, y
}

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellCurve
	cellCenter
	cellText
)

type overlay struct {
	row   int
	text  string
	style lipgloss.Style
}

// canvas composes the braille curve, the center marker and text overlays.
type canvas struct {
	surf     surface
	grid     *braille.Grid
	centerAt [2]int
	overlays []overlay
}

func newCanvas(surf surface) *canvas {
	c := &canvas{surf: surf, grid: braille.New(surf.cols, surf.rows)}
	col, row := surf.cell(surf.center())
	c.centerAt = [2]int{col, row}
	return c
}

// polyline draws consecutive points as connected braille lines.
func (c *canvas) polyline(points []geom.Point) {
	for i, p := range points {
		x, y := c.surf.dot(p)
		if i == 0 {
			c.grid.Set(x, y)
			continue
		}
		px, py := c.surf.dot(points[i-1])
		c.grid.Line(px, py, x, y, nil)
	}
}

// text centers s on row. Rows outside the canvas are ignored.
func (c *canvas) text(row int, s string, style lipgloss.Style) {
	if s == "" || row < 0 || row >= c.surf.rows {
		return
	}
	c.overlays = append(c.overlays, overlay{row: row, text: s, style: style})
}

func (c *canvas) render(curve, center lipgloss.Style) string {
	var out strings.Builder
	for row := 0; row < c.surf.rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(c.renderRow(row, curve, center))
	}
	return out.String()
}

func (c *canvas) renderRow(row int, curve, center lipgloss.Style) string {
	var ov *overlay
	for i := range c.overlays {
		if c.overlays[i].row == row {
			ov = &c.overlays[i]
		}
	}
	start, end := -1, -1
	if ov != nil {
		w := runewidth.StringWidth(ov.text)
		if w > c.surf.cols {
			ov.text = runewidth.Truncate(ov.text, c.surf.cols, "")
			w = runewidth.StringWidth(ov.text)
		}
		start = (c.surf.cols - w) / 2
		end = start + w
	}

	var b strings.Builder
	var run strings.Builder
	kind := cellEmpty
	flush := func() {
		if run.Len() == 0 {
			return
		}
		switch kind {
		case cellCurve:
			b.WriteString(curve.Render(run.String()))
		case cellCenter:
			b.WriteString(center.Render(run.String()))
		default:
			b.WriteString(run.String())
		}
		run.Reset()
	}
	for col := 0; col < c.surf.cols; col++ {
		if col == start {
			flush()
			b.WriteString(ov.style.Render(ov.text))
			kind = cellText
		}
		if col >= start && col < end {
			continue
		}
		next, r := c.cellAt(col, row)
		if next != kind {
			flush()
			kind = next
		}
		run.WriteRune(r)
	}
	flush()
	return b.String()
}

func (c *canvas) cellAt(col, row int) (cellKind, rune) {
	if col == c.centerAt[0] && row == c.centerAt[1] {
		return cellCenter, '●'
	}
	mask := c.grid.Mask(col, row)
	if mask == 0 {
		return cellEmpty, ' '
	}
	return cellCurve, braille.Rune(mask)
}
