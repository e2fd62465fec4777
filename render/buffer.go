package render

import (
	"hash/fnv"
)

// Grid is a row-major 2-D array of cells
// Invariant: len(cells) == rows*cols; resizing always produces a new grid
type Grid struct {
	rows  int
	cols  int
	cells []Cell
}

// NewGrid creates a grid filled with Blank cells
func NewGrid(rows, cols int) *Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	g := &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}
	g.Fill(Blank)
	return g
}

// Rows returns the grid height
func (g *Grid) Rows() int { return g.rows }

// Cols returns the grid width
func (g *Grid) Cols() int { return g.cols }

// Len returns the number of cells
func (g *Grid) Len() int { return len(g.cells) }

// inBounds returns true if the position is inside the grid
func (g *Grid) inBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// At returns the cell at row, col; out of range returns Blank
func (g *Grid) At(row, col int) Cell {
	if !g.inBounds(row, col) {
		return Blank
	}
	return g.cells[row*g.cols+col]
}

// Set writes a cell, ignoring out of range positions and empty glyphs
func (g *Grid) Set(row, col int, c Cell) bool {
	if !g.inBounds(row, col) || c.Glyph == "" {
		return false
	}
	g.cells[row*g.cols+col] = c
	return true
}

// Row returns the backing slice for one row; callers must not retain it across a swap
func (g *Grid) Row(row int) []Cell {
	if row < 0 || row >= g.rows {
		return nil
	}
	start := row * g.cols
	return g.cells[start : start+g.cols : start+g.cols]
}

// Fill sets every cell to c using exponential copy
func (g *Grid) Fill(c Cell) {
	if len(g.cells) == 0 {
		return
	}
	g.cells[0] = c
	for filled := 1; filled < len(g.cells); filled *= 2 {
		copy(g.cells[filled:], g.cells[:filled])
	}
}

// SameSize reports whether both grids have identical dimensions
func (g *Grid) SameSize(o *Grid) bool {
	return o != nil && g.rows == o.rows && g.cols == o.cols
}

// Equal compares dimensions and every cell
func (g *Grid) Equal(o *Grid) bool {
	if !g.SameSize(o) {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy
func (g *Grid) Clone() *Grid {
	c := &Grid{rows: g.rows, cols: g.cols, cells: make([]Cell, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Resize returns a freshly allocated blank grid of the new size
// No content is carried over; the caller is expected to repaint everything
func (g *Grid) Resize(rows, cols int) *Grid {
	return NewGrid(rows, cols)
}

// Hash returns an FNV-1a hash over glyphs in row-major order
func (g *Grid) Hash() uint64 {
	h := fnv.New64a()
	var sep = []byte{0xff}
	for i := range g.cells {
		h.Write([]byte(g.cells[i].Glyph))
		h.Write(sep)
	}
	return h.Sum64()
}

// String returns the glyph content, one line per row, continuation cells omitted
func (g *Grid) String() string {
	b := make([]byte, 0, len(g.cells)+g.rows)
	for r := 0; r < g.rows; r++ {
		if r > 0 {
			b = append(b, '\n')
		}
		for _, c := range g.Row(r) {
			if c.IsContinuation() {
				continue
			}
			b = append(b, c.Glyph...)
		}
	}
	return string(b)
}
