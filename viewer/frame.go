package viewer

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/folio/audio"
	"github.com/lixenwraith/folio/content"
	"github.com/lixenwraith/folio/datefx"
	"github.com/lixenwraith/folio/force"
	"github.com/lixenwraith/folio/layout"
	"github.com/lixenwraith/folio/logging"
	"github.com/lixenwraith/folio/menu"
	"github.com/lixenwraith/folio/render"
)

// fpsSmoothing weights the newest frame in the fps average
const fpsSmoothing = 0.1

// frame runs once per tick on the loop goroutine
func (a *App) frame(now time.Time) bool {
	a.tickFPS(now)

	opacity := 1.0
	if tr := a.nav.Transition(); tr != nil {
		opacity = tr.Opacity(now)
		if a.pending != nil && tr.Swapped() {
			a.swap()
		}
	}

	if st := a.anim.Frame(); !st.Skipped {
		a.lastStats = st
	}
	for _, i := range a.board.Finished(now) {
		a.play(audio.CueBell)
		a.log.Debug("countdown finished", zap.Int("item", i))
	}

	a.draw(now, opacity)
	return true
}

func (a *App) draw(now time.Time, opacity float64) {
	tm := a.themes.Manager()
	f := render.Frame{
		Doc:       a.doc,
		Palette:   a.palettes[tm.Current()],
		Menu:      a.menuItems(),
		ThemeIcon: tm.Icon(),
		Dates:     a.dateTexts(now),
		Footer:    a.footer(),
		Status:    a.statusLine(now),
		Opacity:   opacity,
		Gain:      a.cfg.Render.Gain,
		Debug:     a.anim.Debug(),
		Focus:     a.focus,
	}
	a.hotspots = render.Draw(a.screen, f)
	a.screen.Show()
}

// show lays out p from the top and hands its cells to the animator
func (a *App) show(p *content.Page) {
	a.shown = p
	a.doc = layout.Build(p, a.width, a.layoutOptions())
	a.anim.SetTargets(a.doc.Targets())

	a.dateBlocks = a.dateBlocks[:0]
	for i, b := range p.Blocks {
		if b.Kind == content.Date {
			a.dateBlocks = append(a.dateBlocks, i)
		}
	}
	a.board.SetItems(p.Dates())
	a.board.Resize(a.surfaceWidth(), a.clock.Now())

	a.focus, a.hover = -1, -1
	a.page.Set(p.Slug)

	st := a.doc.Stats()
	a.log.Debug("page shown",
		zap.String("slug", p.Slug),
		zap.Int("cells", st.Cells),
		zap.Int("animated", st.Animated),
		zap.Int("skipped", st.Skipped),
		zap.Int("failed", st.Failed))
}

// swap shows the page the running transition was waiting for
func (a *App) swap() {
	p := a.pending
	a.pending = nil
	if p != nil {
		a.show(p)
	}
}

// relayout rebuilds the current page after an edit, keeping the scroll position
func (a *App) relayout(p *content.Page) {
	offset := a.doc.Offset()
	a.show(p)
	if a.doc.Scroll(offset) {
		a.anim.Refresh()
	}
}

// resize rewraps the page for the new screen size
func (a *App) resize() {
	w, h := a.screen.Size()
	if w == a.width && h == a.height {
		return
	}
	a.width, a.height = w, h

	top, rows := render.Viewport(h)
	a.doc.SetViewport(top, rows)
	a.doc.Reflow(w)
	a.anim.Refresh()
	a.board.Resize(a.surfaceWidth(), a.clock.Now())

	a.log.Debug("resized", zap.Int("width", w), zap.Int("height", h), zap.Int("rows", a.doc.Rows()))
}

func (a *App) layoutOptions() layout.Options {
	o := layout.DefaultOptions()
	o.CellWidth = a.cfg.Render.CellWidth
	o.CellHeight = a.cfg.Render.CellHeight
	o.MaxWidth = a.cfg.Render.MaxWidth
	o.Top, o.Height = render.Viewport(a.height)
	o.Logger = logging.Named(a.log, "layout")
	return o
}

// surfaceWidth is the screen width in the units the breakpoints are written in
func (a *App) surfaceWidth() float64 {
	return float64(a.width) * a.cfg.Render.CellWidth
}

// refreshMenu re-reads the page list; the index is reached through Back or its links
func (a *App) refreshMenu() {
	a.menuPages = a.menuPages[:0]
	a.menuLabels = a.menuLabels[:0]
	for _, p := range a.site.Manager().Pages() {
		if p.Slug == content.IndexSlug {
			continue
		}
		label := p.Menu
		if label == "" {
			label = menu.LabelFromSlug(p.Slug)
		}
		a.menuPages = append(a.menuPages, p)
		a.menuLabels = append(a.menuLabels, label)
	}
}

func (a *App) menuItems() []render.MenuItem {
	labels := a.menu.Labels(a.menuLabels, a.surfaceWidth())
	items := make([]render.MenuItem, len(labels))
	for i, label := range labels {
		slug := a.menuPages[i].Slug
		items[i] = render.MenuItem{
			Label:  label,
			Slug:   slug,
			Active: a.shown != nil && a.shown.Slug == slug,
		}
	}
	return items
}

func (a *App) dateTexts(now time.Time) map[int]string {
	if len(a.dateBlocks) == 0 {
		return nil
	}
	out := make(map[int]string, len(a.dateBlocks))
	for i, block := range a.dateBlocks {
		out[block] = a.board.Text(i, now)
	}
	return out
}

func (a *App) footer() string {
	if a.shown == nil || a.shown.Updated.IsZero() {
		return ""
	}
	return datefx.LastUpdated(a.shown.Updated)
}

func (a *App) statusLine(now time.Time) string {
	if !a.cfg.Render.StatusLine {
		return ""
	}

	var b strings.Builder
	if a.message != "" && now.Sub(a.messageAt) < messageTTL {
		b.WriteString(a.message)
		b.WriteString("  |  ")
	}
	slug := ""
	if a.shown != nil {
		slug = a.shown.Slug
	}
	fmt.Fprintf(&b, "%s  %d glyphs  %d forced  %d returning  %.0f fps",
		slug, a.anim.Len(), a.lastStats.Forced, a.lastStats.Returning, a.fps.Get())

	if a.anim.Debug() {
		for _, m := range a.metrics.Snapshot() {
			fmt.Fprintf(&b, "  %s=%s", m.Name, m.Value)
		}
	}
	return b.String()
}

func (a *App) tickFPS(now time.Time) {
	defer func() { a.lastFrame = now }()
	if a.lastFrame.IsZero() {
		return
	}
	dt := now.Sub(a.lastFrame).Seconds()
	if dt <= 0 {
		return
	}
	inst := 1 / dt
	if cur := a.fps.Get(); cur > 0 {
		inst = cur + (inst-cur)*fpsSmoothing
	}
	a.fps.Set(inst)
}

// notify shows msg on the status line for a few seconds
func (a *App) notify(msg string) {
	a.message = msg
	a.messageAt = a.clock.Now()
	a.log.Debug("status message", zap.String("message", msg))
}

func (a *App) play(c audio.Cue) {
	if p := a.sound.Player(); p != nil {
		p.Play(c)
	}
}

// Animator exposes the force animator for inspection
func (a *App) Animator() *force.Animator {
	return a.anim
}
