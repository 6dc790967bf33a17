// Package layout places page text on a terminal grid and exposes each grapheme as a force target
package layout

import (
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/lixenwraith/folio/content"
	"github.com/lixenwraith/folio/force"
)

// Options controls placement and which blocks join the cursor effect
type Options struct {
	CellWidth  float64 // surface units per column, roughly the pixel width of a terminal cell
	CellHeight float64 // surface units per row
	Left       int     // first screen column of the page
	Top        int     // first screen row of the page
	Height     int     // visible page rows
	MaxWidth   int     // reading width cap in columns, 0 for none

	MaxGlyphs int // total animated graphemes
	MaxChars  int // per block unless it opts in
	MinChars  int // shorter blocks are left static

	Logger *zap.Logger
}

// DefaultOptions returns the placement used by the viewer
func DefaultOptions() Options {
	return Options{
		CellWidth:  8,
		CellHeight: 16,
		Left:       2,
		Top:        2,
		Height:     20,
		MaxWidth:   80,
		MaxGlyphs:  3000,
		MaxChars:   150,
		MinChars:   2,
	}
}

// Line is one wrapped row of a block
type Line struct {
	Block int
	Kind  content.BlockKind
	Row   int
	Cells []*Cell
}

// LinkRef locates a link block on the page
type LinkRef struct {
	Block  int
	Text   string
	Target string
	Rows   [2]int // first and last page row
}

// Stats counts what Build registered
type Stats struct {
	Cells    int
	Animated int
	Skipped  int // animated blocks left static
	Failed   int // blocks that could not be decomposed
}

// Document is a page laid out for a given width
type Document struct {
	page  *content.Page
	opts  Options
	log   *zap.Logger
	width int

	blocks  [][]*Cell // cells per page block
	lines   []Line
	rows    int
	scroll  int
	targets []force.Target
	links   []LinkRef
	stats   Stats
}

// Build lays out page for a surface width in columns
func Build(page *content.Page, width int, opts Options) *Document {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	d := &Document{
		page:   page,
		opts:   opts,
		log:    log,
		blocks: make([][]*Cell, len(page.Blocks)),
	}

	for i, b := range page.Blocks {
		if b.Text == "" {
			continue
		}
		if !utf8.ValidString(b.Text) {
			d.stats.Failed++
			log.Warn("block skipped: invalid UTF-8", zap.String("page", page.Slug), zap.Int("block", i))
			continue
		}

		clusters := Split(b.Text)
		cells := make([]*Cell, len(clusters))
		for k, c := range clusters {
			cells[k] = &Cell{doc: d, Text: c.Text, Width: c.Width, Block: i}
		}
		d.blocks[i] = cells
		d.stats.Cells += len(cells)

		if b.Animated() {
			d.register(i, b, cells)
		}
		if b.Kind == content.Link {
			d.links = append(d.links, LinkRef{Block: i, Text: b.Text, Target: b.Target})
		}
	}

	d.Reflow(width)

	log.Debug("page laid out",
		zap.String("page", page.Slug),
		zap.Int("cells", d.stats.Cells),
		zap.Int("animated", d.stats.Animated),
		zap.Int("skipped", d.stats.Skipped),
		zap.Int("rows", d.rows))
	return d
}

// register adds the cells of one block as force targets, subject to the glyph limits
func (d *Document) register(i int, b content.Block, cells []*Cell) {
	o := d.opts
	n := len(cells)
	switch {
	case n < o.MinChars:
		return
	case o.MaxGlyphs > 0 && d.stats.Animated >= o.MaxGlyphs:
		d.stats.Skipped++
		d.log.Warn("glyph limit reached, block left static", zap.Int("block", i))
		return
	case o.MaxChars > 0 && n > o.MaxChars && !b.Optin():
		d.stats.Skipped++
		d.log.Debug("long block left static", zap.Int("block", i), zap.Int("chars", n))
		return
	}
	for _, c := range cells {
		c.animated = true
		d.targets = append(d.targets, c)
	}
	d.stats.Animated += n
}

// Reflow wraps every block to width; cells keep their identity so the animator only needs a Refresh
func (d *Document) Reflow(width int) {
	d.width = width
	wrap := d.wrapWidth()

	d.lines = d.lines[:0]
	row := 0
	for i, b := range d.page.Blocks {
		cells := d.blocks[i]
		if len(cells) == 0 {
			d.lines = append(d.lines, Line{Block: i, Kind: b.Kind, Row: row})
			row++
			continue
		}
		for _, seg := range wrapCells(cells, wrap) {
			col := 0
			for _, c := range seg {
				c.Row, c.Col = row, col
				col += c.Width
			}
			d.lines = append(d.lines, Line{Block: i, Kind: b.Kind, Row: row, Cells: seg})
			row++
		}
	}
	d.rows = row

	for k := range d.links {
		first, last := -1, -1
		for _, ln := range d.lines {
			if ln.Block != d.links[k].Block {
				continue
			}
			if first < 0 {
				first = ln.Row
			}
			last = ln.Row
		}
		d.links[k].Rows = [2]int{first, last}
	}

	d.clampScroll()
}

func (d *Document) wrapWidth() int {
	w := d.width - 2*d.opts.Left
	if d.opts.MaxWidth > 0 && w > d.opts.MaxWidth {
		w = d.opts.MaxWidth
	}
	if w < 1 {
		w = 1
	}
	return w
}

// wrapCells splits cells into rows no wider than width, breaking after the last space
// Spaces never open a row; they hang at the end of the previous one
func wrapCells(cells []*Cell, width int) [][]*Cell {
	var out [][]*Cell
	start, used, brk := 0, 0, -1
	for i, c := range cells {
		if isSpace(c.Text) {
			used += c.Width
			brk = i + 1
			continue
		}
		if used+c.Width > width && i > start {
			end := i
			if brk > start {
				end = brk
			}
			out = append(out, cells[start:end])
			start = end
			used = 0
			for _, w := range cells[start:i] {
				used += w.Width
			}
			brk = -1
		}
		used += c.Width
	}
	if start < len(cells) {
		out = append(out, cells[start:])
	}
	return out
}

// SetViewport sets the screen rows available to the page
func (d *Document) SetViewport(top, height int) {
	d.opts.Top = top
	d.opts.Height = height
	d.clampScroll()
}

// Scroll moves the view by delta rows and reports whether it moved
func (d *Document) Scroll(delta int) bool {
	prev := d.scroll
	d.scroll += delta
	d.clampScroll()
	return d.scroll != prev
}

func (d *Document) clampScroll() {
	limit := d.rows - d.opts.Height
	if limit < 0 {
		limit = 0
	}
	if d.scroll > limit {
		d.scroll = limit
	}
	if d.scroll < 0 {
		d.scroll = 0
	}
}

// screenRow maps a page row to its screen row; false when scrolled out of view
func (d *Document) screenRow(row int) (int, bool) {
	if row < d.scroll || row >= d.scroll+d.opts.Height {
		return 0, false
	}
	return d.opts.Top + row - d.scroll, true
}

// ScreenRow is the exported form of screenRow for renderers
func (d *Document) ScreenRow(row int) (int, bool) {
	return d.screenRow(row)
}

// LinkAt returns the index of the link under a screen position, or -1
func (d *Document) LinkAt(col, row int) int {
	for _, ln := range d.lines {
		if ln.Kind != content.Link || len(ln.Cells) == 0 {
			continue
		}
		screen, ok := d.screenRow(ln.Row)
		if !ok || screen != row {
			continue
		}
		last := ln.Cells[len(ln.Cells)-1]
		if col < d.opts.Left || col >= d.opts.Left+last.Col+last.Width {
			continue
		}
		for k, l := range d.links {
			if l.Block == ln.Block {
				return k
			}
		}
	}
	return -1
}

// LineAt returns the first wrapped row of a block shown at a screen row
func (d *Document) LineAt(row int) (Line, bool) {
	for _, ln := range d.lines {
		if screen, ok := d.screenRow(ln.Row); ok && screen == row {
			return ln, true
		}
	}
	return Line{}, false
}

// Reveal scrolls the minimum needed to show page row
func (d *Document) Reveal(row int) {
	switch {
	case row < d.scroll:
		d.scroll = row
	case row >= d.scroll+d.opts.Height:
		d.scroll = row - d.opts.Height + 1
	}
	d.clampScroll()
}

// Page returns the laid out page
func (d *Document) Page() *content.Page { return d.page }

// Lines returns every wrapped row in page order
func (d *Document) Lines() []Line { return d.lines }

// Targets returns the animated cells in page order
func (d *Document) Targets() []force.Target { return d.targets }

// Links returns the page links in page order
func (d *Document) Links() []LinkRef { return d.links }

// Rows returns the total page rows
func (d *Document) Rows() int { return d.rows }

// Offset returns the first visible page row
func (d *Document) Offset() int { return d.scroll }

// Width returns the surface width the page was last wrapped to
func (d *Document) Width() int { return d.width }

// Options returns the placement options
func (d *Document) Options() Options { return d.opts }

// Stats returns what Build registered
func (d *Document) Stats() Stats { return d.stats }
