// Package braille rasterizes lines into a grid of braille cells. Each cell
// holds 2x4 dots.
package braille

import "math"

// Dot resolution of a single cell.
const (
	DotsX = 2
	DotsY = 4
)

// Grid is a rows x cols grid of braille cells.
type Grid struct {
	cells [][]uint8
}

// New returns an empty grid.
func New(cols, rows int) *Grid {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	cells := make([][]uint8, rows)
	for y := range cells {
		cells[y] = make([]uint8, cols)
	}
	return &Grid{cells: cells}
}

// Rows returns the number of cell rows.
func (g *Grid) Rows() int {
	return len(g.cells)
}

// Cols returns the number of cell columns.
func (g *Grid) Cols() int {
	if len(g.cells) == 0 {
		return 0
	}
	return len(g.cells[0])
}

// Set turns on the dot at dot coordinates x, y. Dots outside the grid are dropped.
func (g *Grid) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cellY := y / DotsY
	cellX := x / DotsX
	if cellY >= len(g.cells) || cellX >= len(g.cells[cellY]) {
		return
	}
	g.cells[cellY][cellX] |= dotMask(x%DotsX, y%DotsY)
}

// Line sets the dots of a line between two dot coordinates. When keep is
// non-nil only dots it accepts are set.
func (g *Grid) Line(x0, y0, x1, y1 int, keep func(x int) bool) {
	Walk(x0, y0, x1, y1, func(x, y int) {
		if keep == nil || keep(x) {
			g.Set(x, y)
		}
	})
}

// Mask returns the dot mask of a cell.
func (g *Grid) Mask(col, row int) uint8 {
	if row < 0 || row >= len(g.cells) || col < 0 || col >= len(g.cells[row]) {
		return 0
	}
	return g.cells[row][col]
}

// Rune returns the braille character of a cell.
func (g *Grid) Rune(col, row int) rune {
	return Rune(g.Mask(col, row))
}

// Rune converts a dot mask to its braille character.
func Rune(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

// Walk calls plot for every point of a Bresenham line.
func Walk(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func dotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}
