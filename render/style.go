// Package render draws a laid out page, its header and status line onto a tcell screen
package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/folio/content"
	"github.com/lixenwraith/folio/theme"
)

// Color converts a palette color to a true-color tcell color
func Color(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// fade blends fg toward the background as opacity drops
func fade(p theme.Palette, fg colorful.Color, opacity float64) colorful.Color {
	if opacity >= 1 {
		return fg
	}
	if opacity <= 0 {
		return p.Background
	}
	return fg.BlendLab(p.Background, 1-opacity).Clamped()
}

// blockColor is the resting color of a block kind
func blockColor(p theme.Palette, kind content.BlockKind) colorful.Color {
	switch kind {
	case content.Link:
		return p.Accent
	case content.Paragraph, content.Date:
		return p.Muted
	}
	return p.Foreground
}

// styler caches the base style for one frame
type styler struct {
	pal     theme.Palette
	opacity float64
	bg      tcell.Color
}

func newStyler(p theme.Palette, opacity float64) styler {
	return styler{pal: p, opacity: opacity, bg: Color(p.Background)}
}

func (s styler) base() tcell.Style {
	return tcell.StyleDefault.Background(s.bg).Foreground(Color(s.pal.Foreground))
}

func (s styler) with(fg colorful.Color) tcell.Style {
	return tcell.StyleDefault.Background(s.bg).Foreground(Color(fade(s.pal, fg, s.opacity)))
}

// always ignores the page fade; header and status stay readable during transitions
func (s styler) always(fg colorful.Color) tcell.Style {
	return tcell.StyleDefault.Background(s.bg).Foreground(Color(fg))
}
