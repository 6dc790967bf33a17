package layout

import (
	"strings"
	"testing"

	"github.com/lixenwraith/folio/content"
	"github.com/lixenwraith/folio/force"
)

func page(blocks ...content.Block) *content.Page {
	return &content.Page{Slug: "test", Blocks: blocks}
}

func testOptions() Options {
	o := DefaultOptions()
	o.Left = 2
	o.Top = 3
	o.Height = 10
	o.MaxWidth = 0
	o.CellWidth = 1
	o.CellHeight = 2
	return o
}

func rowText(ln Line) string {
	var sb strings.Builder
	for _, c := range ln.Cells {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

func TestWrapBreaksAfterSpaces(t *testing.T) {
	p := page(content.Block{Kind: content.Heading, Text: "hello world foo"})
	d := Build(p, 11+4, testOptions()) // wrap width 11 after both margins

	lines := d.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if got := rowText(lines[0]); got != "hello world " {
		t.Errorf("row 0 = %q", got)
	}
	if got := rowText(lines[1]); got != "foo" {
		t.Errorf("row 1 = %q", got)
	}
	if c := lines[1].Cells[0]; c.Row != 1 || c.Col != 0 {
		t.Errorf("f placed at (%d,%d), want (0,1)", c.Col, c.Row)
	}
}

func TestWrapHardBreaksLongWords(t *testing.T) {
	p := page(content.Block{Kind: content.Paragraph, Text: "abcdefgh"})
	d := Build(p, 3+4, testOptions())

	var rows []string
	for _, ln := range d.Lines() {
		rows = append(rows, rowText(ln))
	}
	if got := strings.Join(rows, "|"); got != "abc|def|gh" {
		t.Errorf("rows = %q", got)
	}
}

func TestWideGraphemes(t *testing.T) {
	p := page(content.Block{Kind: content.Heading, Text: "日本é"})
	d := Build(p, 80, testOptions())

	cells := d.Lines()[0].Cells
	if len(cells) != 3 {
		t.Fatalf("cells = %d, want 3 clusters", len(cells))
	}
	wantCols := []int{0, 2, 4}
	for i, c := range cells {
		if c.Col != wantCols[i] {
			t.Errorf("cell %d col = %d, want %d", i, c.Col, wantCols[i])
		}
	}
	if cells[2].Text != "é" || cells[2].Width != 1 {
		t.Errorf("combining cluster = %q width %d", cells[2].Text, cells[2].Width)
	}
	if Width("日本") != 4 {
		t.Errorf("Width = %d, want 4", Width("日本"))
	}
}

func TestRegistrationLimits(t *testing.T) {
	long := strings.Repeat("x", 151)
	p := page(
		content.Block{Kind: content.Heading, Text: "A"},        // too short
		content.Block{Kind: content.Subheading, Text: long},    // too long
		content.Block{Kind: content.Feature, Text: long},       // opted in
		content.Block{Kind: content.Paragraph, Text: "static"}, // never animated
		content.Block{Kind: content.Link, Text: "go", Target: "x"},
	)
	d := Build(p, 400, testOptions())

	st := d.Stats()
	if st.Animated != 151+2 {
		t.Errorf("Animated = %d, want %d", st.Animated, 151+2)
	}
	if st.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", st.Skipped)
	}
	if len(d.Targets()) != st.Animated {
		t.Errorf("targets = %d, want %d", len(d.Targets()), st.Animated)
	}
}

func TestGlyphCapChecksBeforeBlock(t *testing.T) {
	o := testOptions()
	o.MaxGlyphs = 5
	p := page(
		content.Block{Kind: content.Heading, Text: "abcd"},
		content.Block{Kind: content.Heading, Text: "efgh"},
		content.Block{Kind: content.Heading, Text: "ijkl"},
	)
	d := Build(p, 80, o)
	if got := d.Stats().Animated; got != 8 {
		t.Errorf("Animated = %d, want 8", got)
	}
	if got := d.Stats().Skipped; got != 1 {
		t.Errorf("Skipped = %d, want 1", got)
	}
}

func TestInvalidBlockSkipped(t *testing.T) {
	p := page(
		content.Block{Kind: content.Heading, Text: "ok"},
		content.Block{Kind: content.Heading, Text: "bad\xff"},
		content.Block{Kind: content.Heading, Text: "also"},
	)
	d := Build(p, 80, testOptions())
	if d.Stats().Failed != 1 {
		t.Errorf("Failed = %d, want 1", d.Stats().Failed)
	}
	if d.Stats().Animated != 6 {
		t.Errorf("Animated = %d, want 6", d.Stats().Animated)
	}
}

func TestCellGeometry(t *testing.T) {
	p := page(content.Block{Kind: content.Heading, Text: "ab"})
	d := Build(p, 80, testOptions())

	g, ok := d.Lines()[0].Cells[1].Geometry()
	if !ok {
		t.Fatal("visible cell has no geometry")
	}
	want := force.Geometry{X: 3.5, Y: 7, Size: 2}
	if g != want {
		t.Errorf("Geometry = %+v, want %+v", g, want)
	}
}

func TestScrollHidesCells(t *testing.T) {
	o := testOptions()
	o.Height = 1
	p := page(
		content.Block{Kind: content.Heading, Text: "one"},
		content.Block{Kind: content.Heading, Text: "two"},
	)
	d := Build(p, 80, o)
	first := d.Lines()[0].Cells[0]
	second := d.Lines()[1].Cells[0]

	if _, ok := second.Geometry(); ok {
		t.Error("row below the viewport reports a position")
	}
	if !d.Scroll(5) {
		t.Fatal("Scroll did not move")
	}
	if d.Offset() != 1 {
		t.Errorf("Offset = %d, want clamp to 1", d.Offset())
	}
	if _, ok := first.Geometry(); ok {
		t.Error("row above the viewport reports a position")
	}
	g, ok := second.Geometry()
	if !ok || g.Y != (3+0.5)*2 {
		t.Errorf("scrolled geometry = %+v ok=%v", g, ok)
	}
	if d.Scroll(1) {
		t.Error("Scroll past the end moved")
	}
}

func TestReflowKeepsCells(t *testing.T) {
	p := page(content.Block{Kind: content.Heading, Text: "hello world"})
	d := Build(p, 80, testOptions())
	targets := d.Targets()
	w := targets[6].(*Cell)
	if w.Row != 0 || w.Col != 6 {
		t.Fatalf("w at (%d,%d)", w.Col, w.Row)
	}

	d.Reflow(6 + 4)
	if d.Targets()[6] != targets[6] {
		t.Fatal("Reflow replaced cells")
	}
	if w.Row != 1 || w.Col != 0 {
		t.Errorf("after reflow w at (%d,%d), want (0,1)", w.Col, w.Row)
	}
}

func TestLinkAt(t *testing.T) {
	p := page(
		content.Block{Kind: content.Heading, Text: "Home"},
		content.Block{Kind: content.Link, Text: "Projects", Target: "projects.html"},
	)
	d := Build(p, 80, testOptions())

	if got := d.LinkAt(2, 4); got != 0 {
		t.Errorf("LinkAt on link = %d, want 0", got)
	}
	if got := d.LinkAt(2+8, 4); got != -1 {
		t.Errorf("LinkAt past the text = %d", got)
	}
	if got := d.LinkAt(2, 3); got != -1 {
		t.Errorf("LinkAt on heading = %d", got)
	}
	if l := d.Links()[0]; l.Rows != [2]int{1, 1} {
		t.Errorf("link rows = %v", l.Rows)
	}

	if ln, ok := d.LineAt(4); !ok || ln.Block != 1 || ln.Kind != content.Link {
		t.Errorf("LineAt(4) = %+v, %t", ln, ok)
	}
	if _, ok := d.LineAt(9); ok {
		t.Error("LineAt below the page found a line")
	}
}

func TestCellOffset(t *testing.T) {
	p := page(content.Block{Kind: content.Heading, Text: "ab"})
	d := Build(p, 80, testOptions())
	c := d.Lines()[0].Cells[0]

	c.ApplyDisplacement(1.6, -2.9)
	if cols, rows := c.Offset(1); cols != 2 || rows != -1 {
		t.Errorf("Offset = (%d,%d), want (2,-1)", cols, rows)
	}
	if cols, _ := c.Offset(2); cols != 3 {
		t.Errorf("Offset(2) cols = %d, want 3", cols)
	}
	c.ClearDisplacement()
	if cols, rows := c.Offset(1); cols != 0 || rows != 0 {
		t.Errorf("Offset after clear = (%d,%d)", cols, rows)
	}
}
