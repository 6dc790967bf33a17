package layout

import "github.com/lixenwraith/folio/force"

// Cell is one grapheme placed on the page
// It is the force target for animated blocks; displacement is in surface units
type Cell struct {
	doc *Document

	Text  string
	Width int
	Block int // index into the page blocks
	Col   int // page column
	Row   int // page row, before scrolling

	animated bool
	dx, dy   float64
	forced   bool
}

var (
	_ force.Target = (*Cell)(nil)
	_ force.Marker = (*Cell)(nil)
)

// Geometry returns the centre of the cell on the surface; cells scrolled out of view have no position
func (c *Cell) Geometry() (force.Geometry, bool) {
	d := c.doc
	screen, ok := d.screenRow(c.Row)
	if !ok {
		return force.Geometry{}, false
	}
	return force.Geometry{
		X:    (float64(d.opts.Left+c.Col) + float64(c.Width)/2) * d.opts.CellWidth,
		Y:    (float64(screen) + 0.5) * d.opts.CellHeight,
		Size: d.opts.CellHeight,
	}, true
}

func (c *Cell) ApplyDisplacement(dx, dy float64) {
	c.dx, c.dy = dx, dy
}

func (c *Cell) ClearDisplacement() {
	c.dx, c.dy = 0, 0
}

func (c *Cell) MarkForced(forced bool) {
	c.forced = forced
}

// Animated reports whether the cell was registered with the animator
func (c *Cell) Animated() bool { return c.animated }

// Forced reports the debug mark
func (c *Cell) Forced() bool { return c.forced }

// Displacement returns the current translation in surface units
func (c *Cell) Displacement() (dx, dy float64) { return c.dx, c.dy }

// Offset returns the translation scaled by gain and rounded to whole terminal cells
func (c *Cell) Offset(gain float64) (cols, rows int) {
	o := c.doc.opts
	return round(c.dx * gain / o.CellWidth), round(c.dy * gain / o.CellHeight)
}

func round(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}
