// Package menu shortens header menu labels to their initials as the surface narrows
package menu

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Breakpoint marks which items show an initial at or below Width
type Breakpoint struct {
	Width    float64 `yaml:"width"`
	Initials []bool  `yaml:"initials"`
}

// DefaultBreakpoints is the four-item table the site shipped with
// Items are About, Exhibitions, Works, Contact in menu order
func DefaultBreakpoints() []Breakpoint {
	return []Breakpoint{
		{Width: 880, Initials: []bool{false, false, false, false}},
		{Width: 780, Initials: []bool{false, false, true, false}},
		{Width: 720, Initials: []bool{false, true, true, false}},
		{Width: 660, Initials: []bool{true, true, true, false}},
		{Width: 600, Initials: []bool{true, true, true, true}},
	}
}

// Menu resolves display labels for a surface width
type Menu struct {
	table []Breakpoint
}

// New creates a menu over the breakpoint table; rows are sorted widest first
func New(table []Breakpoint) *Menu {
	t := append([]Breakpoint(nil), table...)
	sort.SliceStable(t, func(i, j int) bool { return t[i].Width > t[j].Width })
	return &Menu{table: t}
}

// Active returns the narrowest breakpoint whose width is still >= width
// Widths above the widest row use the widest row
func (m *Menu) Active(width float64) (Breakpoint, bool) {
	if len(m.table) == 0 {
		return Breakpoint{}, false
	}
	active := m.table[0]
	for _, bp := range m.table {
		if width <= bp.Width {
			active = bp
		} else {
			break
		}
	}
	return active, true
}

// Labels returns the labels to draw at width
func (m *Menu) Labels(labels []string, width float64) []string {
	out := make([]string, len(labels))
	bp, ok := m.Active(width)
	for i, l := range labels {
		if ok && i < len(bp.Initials) && bp.Initials[i] {
			out[i] = Initial(l)
		} else {
			out[i] = l
		}
	}
	return out
}

// Initial returns the first letter of label, upper-cased
func Initial(label string) string {
	label = strings.TrimSpace(label)
	r, size := utf8.DecodeRuneInString(label)
	if size == 0 || r == utf8.RuneError {
		return label
	}
	return strings.ToUpper(string(r))
}

// LabelFromSlug derives a menu label from a page slug, e.g. "solo-shows" -> "Solo Shows"
// A Caser keeps state, so each call builds its own
func LabelFromSlug(slug string) string {
	return cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
}
