package render

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/folio/content"
	"github.com/lixenwraith/folio/layout"
	"github.com/lixenwraith/folio/theme"
)

// MenuItem is one header entry, label already shortened for the width
type MenuItem struct {
	Label  string
	Slug   string
	Active bool
}

// Frame is everything one Draw needs
type Frame struct {
	Doc       *layout.Document
	Palette   theme.Palette
	Menu      []MenuItem
	ThemeIcon string
	Dates     map[int]string // block index -> date text
	Footer    string
	Status    string // empty hides the status line
	Opacity   float64
	Gain      float64 // displacement magnification
	Debug     bool
	Focus     int // focused link, -1 for none
}

// HotspotKind tells the viewer what a click hit
type HotspotKind uint8

const (
	HotMenu HotspotKind = iota
	HotTheme
)

// Hotspot is a clickable header region
type Hotspot struct {
	Kind   HotspotKind
	Slug   string
	X0, X1 int // [X0, X1)
	Y      int
}

// Contains reports whether the screen position hits the hotspot
func (h Hotspot) Contains(x, y int) bool {
	return y == h.Y && x >= h.X0 && x < h.X1
}

// Rows reserved outside the page viewport
const (
	HeaderRows = 2 // menu and a spacer
	FooterRows = 2 // last updated and status
)

// Viewport returns the screen rows available to the page for a screen height
func Viewport(height int) (top, rows int) {
	rows = height - HeaderRows - FooterRows
	if rows < 1 {
		rows = 1
	}
	return HeaderRows, rows
}

// Draw renders f and returns the header hotspots; the caller calls Show
func Draw(s tcell.Screen, f Frame) []Hotspot {
	w, h := s.Size()
	st := newStyler(f.Palette, f.Opacity)
	s.SetStyle(st.base())
	s.Clear()

	hot := drawHeader(s, st, f, w)
	if f.Doc != nil {
		drawPage(s, st, f, w, h)
	}
	drawFooter(s, st, f, w, h)
	return hot
}

func drawHeader(s tcell.Screen, st styler, f Frame, w int) []Hotspot {
	var hot []Hotspot
	x := 2
	if f.Doc != nil {
		x = f.Doc.Options().Left
	}
	for _, item := range f.Menu {
		style := st.always(f.Palette.Muted)
		if item.Active {
			style = st.always(f.Palette.Accent).Bold(true)
		}
		end := drawText(s, x, 0, w, item.Label, style)
		hot = append(hot, Hotspot{Kind: HotMenu, Slug: item.Slug, X0: x, X1: end, Y: 0})
		x = end + 2
	}
	if f.ThemeIcon != "" {
		ix := w - 1 - layout.Width(f.ThemeIcon)
		if ix >= x {
			end := drawText(s, ix, 0, w, f.ThemeIcon, st.always(f.Palette.Foreground))
			hot = append(hot, Hotspot{Kind: HotTheme, X0: ix, X1: end, Y: 0})
		}
	}
	return hot
}

func drawPage(s tcell.Screen, st styler, f Frame, w, h int) {
	doc := f.Doc
	o := doc.Options()
	top, bottom := o.Top, o.Top+o.Height
	if bottom > h {
		bottom = h
	}

	focusBlock := -1
	if links := doc.Links(); f.Focus >= 0 && f.Focus < len(links) {
		focusBlock = links[f.Focus].Block
	}

	for _, ln := range doc.Lines() {
		row, ok := doc.ScreenRow(ln.Row)
		if !ok {
			continue
		}
		base := blockColor(f.Palette, ln.Kind)
		end := o.Left

		for _, c := range ln.Cells {
			x, y := o.Left+c.Col, row
			end = x + c.Width

			fg := base
			if c.Animated() {
				dx, dy := c.Displacement()
				fg = f.Palette.Tint(base, intensity(dx, dy, o.CellWidth, f.Gain))
				cols, rows := c.Offset(f.Gain)
				x += cols
				y += rows
			}
			if f.Debug && c.Forced() {
				fg = f.Palette.Debug
			}
			if y < top || y >= bottom || x < 0 || x+c.Width > w {
				continue
			}

			style := st.with(fg)
			switch ln.Kind {
			case content.Heading:
				style = style.Bold(true)
			case content.Link:
				style = style.Underline(true)
				if ln.Block == focusBlock {
					style = style.Reverse(true)
				}
			}
			putCluster(s, x, y, c.Text, style)
		}

		if ln.Kind == content.Date {
			if text, ok := f.Dates[ln.Block]; ok && text != "" {
				drawText(s, end+2, row, w, text, st.with(f.Palette.Foreground))
			}
		}
	}
}

// intensity maps a displacement to a tint weight in [0,1]; one drawn column of travel is full tint
func intensity(dx, dy, cellWidth, gain float64) float64 {
	m := math.Sqrt(dx*dx+dy*dy) * gain / cellWidth
	if m > 1 {
		return 1
	}
	return m
}

func drawFooter(s tcell.Screen, st styler, f Frame, w, h int) {
	if f.Footer != "" && h >= 2 {
		x := w - 1 - layout.Width(f.Footer)
		if x < 0 {
			x = 0
		}
		drawText(s, x, h-2, w, f.Footer, st.always(f.Palette.Muted))
	}
	if f.Status != "" && h >= 1 {
		drawText(s, 0, h-1, w, f.Status, st.always(f.Palette.Muted))
	}
}

// drawText writes text from x, clipped at maxX, and returns the column after the last cluster
func drawText(s tcell.Screen, x, y, maxX int, text string, style tcell.Style) int {
	for _, c := range layout.Split(text) {
		if x+c.Width > maxX {
			break
		}
		putCluster(s, x, y, c.Text, style)
		x += c.Width
	}
	return x
}

func putCluster(s tcell.Screen, x, y int, cluster string, style tcell.Style) {
	runes := []rune(cluster)
	if len(runes) == 0 {
		return
	}
	s.SetContent(x, y, runes[0], runes[1:], style)
}
