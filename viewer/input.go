package viewer

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/folio/audio"
	"github.com/lixenwraith/folio/content"
	"github.com/lixenwraith/folio/navigation"
	"github.com/lixenwraith/folio/render"
)

// scrollStep is the wheel and arrow key scroll distance in rows
const scrollStep = 3

// handleEvent runs on the loop goroutine; false quits
func (a *App) handleEvent(ev any) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)

	case *tcell.EventMouse:
		a.handleMouse(ev)

	case *tcell.EventFocus:
		if ev.Focused {
			a.anim.Enter()
		} else {
			a.anim.Leave()
		}

	case *tcell.EventResize:
		a.screen.Sync()
		a.resize()

	case themeChanged:
		a.notify(fmt.Sprintf("%s theme", ev.theme))

	case pagesChanged:
		a.pagesChanged(ev.slugs)
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		a.navigate(a.nav.Back())
	case tcell.KeyRight:
		a.navigate(a.nav.Forward())
	case tcell.KeyTab:
		a.cycleFocus(1)
	case tcell.KeyBacktab:
		a.cycleFocus(-1)
	case tcell.KeyEnter:
		a.followFocused()
	case tcell.KeyUp:
		a.scroll(-1)
	case tcell.KeyDown:
		a.scroll(1)
	case tcell.KeyPgUp:
		a.scroll(-a.pageRows())
	case tcell.KeyPgDn:
		a.scroll(a.pageRows())
	case tcell.KeyHome:
		a.scroll(-a.doc.Rows())
	case tcell.KeyEnd:
		a.scroll(a.doc.Rows())

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 't':
			t := a.themes.Manager().Toggle()
			a.notify(fmt.Sprintf("%s theme", t))
		case 'a':
			a.themes.Manager().EnableAuto()
			a.notify(a.themes.Manager().Title())
		case 'd':
			if a.anim.ToggleDebug() {
				a.notify("debug on")
			} else {
				a.notify("debug off")
			}
		case 'm':
			if p := a.sound.Player(); p != nil {
				if p.ToggleMute() {
					a.notify("sound off")
				} else {
					a.notify("sound on")
				}
			}
		case 'r':
			a.reload()
		case 'j':
			a.scroll(1)
		case 'k':
			a.scroll(-1)
		case 'h':
			a.navigate(a.nav.Back())
		case 'l':
			a.navigate(a.nav.Forward())
		}
	}
	return true
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	o := a.doc.Options()
	a.anim.OnSample((float64(x)+0.5)*o.CellWidth, (float64(y)+0.5)*o.CellHeight)
	a.hoverDate(y)

	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		a.scroll(-scrollStep)
	case buttons&tcell.WheelDown != 0:
		a.scroll(scrollStep)
	}

	down := buttons&tcell.Button1 != 0
	if down && !a.pressed {
		a.click(x, y)
	}
	a.pressed = down
}

// click acts on the header first, then on page links
func (a *App) click(x, y int) {
	for _, h := range a.hotspots {
		if !h.Contains(x, y) {
			continue
		}
		switch h.Kind {
		case render.HotMenu:
			a.navigate(a.nav.Go("/" + h.Slug))
		case render.HotTheme:
			t := a.themes.Manager().Toggle()
			a.notify(fmt.Sprintf("%s theme", t))
		}
		return
	}

	if i := a.doc.LinkAt(x, y); i >= 0 {
		a.focus = i
		a.follow(a.doc.Links()[i].Target)
	}
}

// hoverDate restarts a date countdown when the pointer moves onto its row
func (a *App) hoverDate(y int) {
	item := -1
	if ln, ok := a.doc.LineAt(y); ok && ln.Kind == content.Date {
		for i, b := range a.dateBlocks {
			if b == ln.Block {
				item = i
				break
			}
		}
	}
	if item != a.hover && item >= 0 {
		a.board.Hover(item, a.clock.Now())
	}
	a.hover = item
}

func (a *App) cycleFocus(dir int) {
	links := a.doc.Links()
	if len(links) == 0 {
		return
	}
	switch {
	case a.focus < 0 && dir < 0:
		a.focus = len(links) - 1
	case a.focus < 0:
		a.focus = 0
	default:
		a.focus = (a.focus + dir + len(links)) % len(links)
	}
	a.doc.Reveal(links[a.focus].Rows[0])
	a.anim.Refresh()
}

func (a *App) followFocused() {
	links := a.doc.Links()
	if a.focus < 0 || a.focus >= len(links) {
		return
	}
	a.follow(links[a.focus].Target)
}

func (a *App) follow(href string) {
	p, err := a.nav.Go(href)
	if errors.Is(err, navigation.ErrExternal) {
		a.notify("external link: " + href)
		return
	}
	a.navigate(p, err)
}

// navigate applies the result of a navigator call
func (a *App) navigate(p *content.Page, err error) {
	switch {
	case errors.Is(err, navigation.ErrTransitioning), errors.Is(err, navigation.ErrNoHistory):
		return
	case errors.Is(err, navigation.ErrExternal):
		a.notify("external link")
		return
	case err != nil:
		a.log.Warn("navigation failed", zap.Error(err))
		a.notify("page unavailable")
		return
	case p == a.shown && a.pending == nil:
		return
	}

	a.pending = p
	a.focus = -1
	a.play(audio.CueWhoosh)
	if tr := a.nav.Transition(); tr == nil || tr.Swapped() {
		a.swap()
	}
}

func (a *App) scroll(delta int) {
	if a.doc.Scroll(delta) {
		a.anim.Refresh()
	}
}

func (a *App) pageRows() int {
	_, rows := render.Viewport(a.height)
	if rows > 1 {
		return rows - 1
	}
	return 1
}

// reload re-reads the current page from disk, keeping the scroll position
func (a *App) reload() {
	p, err := a.nav.Reload()
	if err != nil {
		a.log.Warn("reload failed", zap.Error(err))
		a.notify("reload failed")
		return
	}
	a.metrics.Counter(MetricReloads).Add(1)
	a.refreshMenu()
	if a.pending != nil {
		a.pending = p
		return
	}
	a.relayout(p)
}

// pagesChanged drops edited pages from the cache and re-lays out the current one
func (a *App) pagesChanged(slugs []string) {
	current := false
	for _, slug := range slugs {
		a.nav.Invalidate(slug)
		if cur := a.nav.Current(); cur != nil && slug == cur.Slug {
			current = true
		}
	}
	a.log.Debug("site changed", zap.Strings("slugs", slugs), zap.Bool("current", current))

	if err := a.site.Manager().Discover(); err != nil {
		a.log.Warn("rescan failed", zap.Error(err))
	}
	if current {
		a.reload()
		return
	}
	a.refreshMenu()
}
