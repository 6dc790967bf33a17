package layout

import (
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Cluster is one user-perceived character with its terminal width
type Cluster struct {
	Text  string
	Width int
}

// Split breaks text into grapheme clusters measured in terminal cells
func Split(text string) []Cluster {
	if text == "" {
		return nil
	}
	g := uniseg.NewGraphemes(text)
	out := make([]Cluster, 0, len(text))
	for g.Next() {
		s := g.Str()
		out = append(out, Cluster{Text: s, Width: cellWidth(s)})
	}
	return out
}

// cellWidth prefers runewidth and falls back to uniseg for clusters it reports as zero
func cellWidth(s string) int {
	w := runewidth.StringWidth(s)
	if w <= 0 {
		w = uniseg.StringWidth(s)
	}
	if w <= 0 {
		w = 1
	}
	return w
}

func isSpace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return s != ""
}

// Width returns the terminal width of text
func Width(text string) int {
	n := 0
	for _, c := range Split(text) {
		n += c.Width
	}
	return n
}
