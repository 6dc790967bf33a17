package force

import "math"

// Grid is a uniform spatial index over glyph rest positions
// Cells are stored as one packed index array (counting sort) so rebuilds and queries do not allocate per cell
type Grid struct {
	cellSize   float64
	minX, minY float64
	cols, rows int

	// start[c]..start[c+1] is the slice of items belonging to cell c
	start []int32
	items []int32
}

// NewGrid creates an empty grid with square cells of the given size
func NewGrid(cellSize float64) *Grid {
	return &Grid{cellSize: cellSize}
}

// Rebuild indexes every valid glyph; invalid glyphs get cell -1
func (g *Grid) Rebuild(glyphs []glyph) {
	g.cols, g.rows = 0, 0
	g.items = g.items[:0]

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range glyphs {
		gl := &glyphs[i]
		gl.cell = -1
		if !gl.valid {
			continue
		}
		minX = math.Min(minX, gl.x)
		minY = math.Min(minY, gl.y)
		maxX = math.Max(maxX, gl.x)
		maxY = math.Max(maxY, gl.y)
	}
	if math.IsInf(minX, 1) {
		g.start = g.start[:0]
		return
	}

	g.minX, g.minY = minX, minY
	g.cols = int((maxX-minX)/g.cellSize) + 1
	g.rows = int((maxY-minY)/g.cellSize) + 1
	cells := g.cols * g.rows

	if cap(g.start) < cells+1 {
		g.start = make([]int32, cells+1)
	} else {
		g.start = g.start[:cells+1]
		clear(g.start)
	}

	// Count per cell, shifted by one for the prefix sum
	for i := range glyphs {
		gl := &glyphs[i]
		if !gl.valid {
			continue
		}
		gl.cell = g.cellOf(gl.x, gl.y)
		g.start[gl.cell+1]++
	}
	for c := 1; c <= cells; c++ {
		g.start[c] += g.start[c-1]
	}

	total := int(g.start[cells])
	if cap(g.items) < total {
		g.items = make([]int32, total)
	} else {
		g.items = g.items[:total]
	}

	fill := make([]int32, cells)
	for i := range glyphs {
		gl := &glyphs[i]
		if gl.cell < 0 {
			continue
		}
		g.items[g.start[gl.cell]+fill[gl.cell]] = int32(i)
		fill[gl.cell]++
	}
}

func (g *Grid) cellOf(x, y float64) int {
	cx := int((x - g.minX) / g.cellSize)
	cy := int((y - g.minY) / g.cellSize)
	return cy*g.cols + cx
}

// Query calls fn for every glyph index whose cell overlaps the square of half-size r around (x, y)
func (g *Grid) Query(x, y, r float64, fn func(i int)) {
	if g.cols == 0 {
		return
	}

	x0 := int(math.Floor((x - r - g.minX) / g.cellSize))
	x1 := int(math.Floor((x + r - g.minX) / g.cellSize))
	y0 := int(math.Floor((y - r - g.minY) / g.cellSize))
	y1 := int(math.Floor((y + r - g.minY) / g.cellSize))

	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 >= g.cols {
		x1 = g.cols - 1
	}
	if y1 >= g.rows {
		y1 = g.rows - 1
	}

	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			c := cy*g.cols + cx
			for _, i := range g.items[g.start[c]:g.start[c+1]] {
				fn(int(i))
			}
		}
	}
}

// Len returns the number of indexed glyphs
func (g *Grid) Len() int {
	return len(g.items)
}
