package grid

import (
	"image"
	"math"
)

// Layout describes a Cols x Rows grid of square cells Cell pixels wide.
type Layout struct {
	Cols int
	Rows int
	Cell int
}

// DefaultCell is the side of one cell in pixels.
const DefaultCell = 256

// DefaultLayout is the 2x2 grid of 256px cells, a 512x512 canvas.
var DefaultLayout = Layout{Cols: 2, Rows: 2, Cell: DefaultCell}

// LayoutFor picks the smallest near-square grid holding n images:
// ceil(sqrt(n)) columns and as many rows as needed.
func LayoutFor(n, cell int) Layout {
	if n < 1 {
		n = 1
	}
	if cell <= 0 {
		cell = DefaultCell
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	return Layout{Cols: cols, Rows: rows, Cell: cell}
}

// Capacity is the number of cells.
func (l Layout) Capacity() int { return l.Cols * l.Rows }

// Bounds is the full canvas rectangle.
func (l Layout) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.Cols*l.Cell, l.Rows*l.Cell)
}

// CellRect returns the rectangle of cell i in row-major order. For the
// default layout: 0 top-left, 1 top-right, 2 bottom-left, 3 bottom-right.
func (l Layout) CellRect(i int) image.Rectangle {
	x := (i % l.Cols) * l.Cell
	y := (i / l.Cols) * l.Cell
	return image.Rect(x, y, x+l.Cell, y+l.Cell)
}
