package theme

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Palette is the set of colors a theme draws with
type Palette struct {
	Background colorful.Color
	Foreground colorful.Color
	Muted      colorful.Color
	Accent     colorful.Color
	Highlight  colorful.Color // strongest displacement tint
	Debug      colorful.Color
}

// PaletteHex is the configurable hex form of a Palette
type PaletteHex struct {
	Background string `yaml:"background"`
	Foreground string `yaml:"foreground"`
	Muted      string `yaml:"muted"`
	Accent     string `yaml:"accent"`
	Highlight  string `yaml:"highlight"`
	Debug      string `yaml:"debug"`
}

// DefaultPalettes returns the built-in light and dark palettes
func DefaultPalettes() map[Theme]PaletteHex {
	return map[Theme]PaletteHex{
		Light: {
			Background: "#f5f3ee",
			Foreground: "#1c1c1c",
			Muted:      "#7a7770",
			Accent:     "#2d4bd6",
			Highlight:  "#d64b2d",
			Debug:      "#ff0000",
		},
		Dark: {
			Background: "#121212",
			Foreground: "#e8e6e1",
			Muted:      "#8a8780",
			Accent:     "#8fa6ff",
			Highlight:  "#ffb36b",
			Debug:      "#ff4040",
		},
	}
}

// Parse converts hex strings, falling back to fallback for any entry that does not parse
func (h PaletteHex) Parse(fallback PaletteHex) Palette {
	pick := func(v, def string) colorful.Color {
		if c, err := colorful.Hex(v); err == nil {
			return c
		}
		c, _ := colorful.Hex(def)
		return c
	}
	return Palette{
		Background: pick(h.Background, fallback.Background),
		Foreground: pick(h.Foreground, fallback.Foreground),
		Muted:      pick(h.Muted, fallback.Muted),
		Accent:     pick(h.Accent, fallback.Accent),
		Highlight:  pick(h.Highlight, fallback.Highlight),
		Debug:      pick(h.Debug, fallback.Debug),
	}
}

// Palettes resolves configured palettes over the defaults
func Palettes(configured map[Theme]PaletteHex) map[Theme]Palette {
	defs := DefaultPalettes()
	out := make(map[Theme]Palette, len(defs))
	for t, def := range defs {
		out[t] = configured[t].Parse(def)
	}
	return out
}

// Tint blends base toward the highlight by t in [0,1], in Lab space so the midpoint stays readable
func (p Palette) Tint(base colorful.Color, t float64) colorful.Color {
	if t <= 0 {
		return base
	}
	if t >= 1 {
		return p.Highlight
	}
	return base.BlendLab(p.Highlight, t).Clamped()
}
