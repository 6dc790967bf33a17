// Package viewer runs the site on a terminal screen
// The loop goroutine owns layout, navigation history and the animator; other goroutines only post events
package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/folio/audio"
	"github.com/lixenwraith/folio/config"
	"github.com/lixenwraith/folio/content"
	"github.com/lixenwraith/folio/datefx"
	"github.com/lixenwraith/folio/engine"
	"github.com/lixenwraith/folio/force"
	"github.com/lixenwraith/folio/layout"
	"github.com/lixenwraith/folio/logging"
	"github.com/lixenwraith/folio/menu"
	"github.com/lixenwraith/folio/navigation"
	"github.com/lixenwraith/folio/render"
	"github.com/lixenwraith/folio/service"
	"github.com/lixenwraith/folio/status"
	"github.com/lixenwraith/folio/theme"
)

// Metric names published by the viewer
const (
	MetricFPS     = "viewer.fps"
	MetricPage    = "viewer.page"
	MetricDropped = "viewer.events_dropped"
	MetricReloads = "viewer.reloads"
)

// messageTTL is how long a status message stays on the status line
const messageTTL = 3 * time.Second

// Events posted to the loop from background goroutines
type (
	pagesChanged struct{ slugs []string }
	themeChanged struct{ theme theme.Theme }
)

// Option configures an App
type Option func(*App)

// WithClock injects the time source shared by every component
func WithClock(c engine.TimeProvider) Option {
	return func(a *App) { a.clock = c }
}

// WithLogger attaches the root logger
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithThemeStore replaces the persisted theme state
func WithThemeStore(s theme.Store) Option {
	return func(a *App) { a.store = s }
}

// WithMute starts with audio muted
func WithMute(m bool) Option {
	return func(a *App) { a.mute = m }
}

// WithSystemDark reports the terminal's dark background preference
func WithSystemDark(dark bool) Option {
	return func(a *App) { a.systemDark = dark }
}

// App is the interactive viewer
type App struct {
	cfg        config.Config
	screen     tcell.Screen
	clock      engine.TimeProvider
	log        *zap.Logger
	store      theme.Store
	mute       bool
	systemDark bool

	hub      *service.Hub
	site     *content.Service
	sound    *audio.Service
	themes   *theme.Service
	nav      *navigation.Navigator
	anim     *force.Animator
	menu     *menu.Menu
	board    *datefx.Board
	loop     *engine.Loop
	metrics  *status.Registry
	palettes map[theme.Theme]theme.Palette

	// Loop-owned state
	doc        *layout.Document
	shown      *content.Page // page laid out in doc
	pending    *content.Page // page waiting for the transition swap
	dateBlocks []int         // block index of each date item
	menuPages  []*content.Page
	menuLabels []string
	hotspots   []render.Hotspot
	focus      int // focused link, -1 for none
	hover      int // date item under the pointer, -1 for none
	pressed    bool
	width      int
	height     int
	message    string
	messageAt  time.Time
	lastFrame  time.Time
	lastStats  force.FrameStats

	fps  *status.Gauge
	page *status.Label
}

// New assembles the viewer on an initialized screen; Run takes ownership of the screen
func New(cfg config.Config, screen tcell.Screen, opts ...Option) (*App, error) {
	if screen == nil {
		return nil, errors.New("viewer: nil screen")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		screen:  screen,
		clock:   engine.NewMonotonicTimeProvider(),
		log:     zap.NewNop(),
		metrics: status.NewRegistry(),
		focus:   -1,
		hover:   -1,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		path := cfg.Theme.StateFile
		if path == "" {
			path = theme.DefaultStatePath()
		}
		a.store = theme.FileStore{Path: path}
	}

	anim, err := force.NewAnimator(cfg.Force,
		force.WithClock(a.clock),
		force.WithLogger(logging.Named(a.log, "force")),
		force.WithMetrics(a.metrics))
	if err != nil {
		return nil, err
	}
	a.anim = anim

	mgr := content.NewManager(cfg.Site.Dir, logging.Named(a.log, "content"))
	a.site = content.NewService(mgr, cfg.Site.Debounce, logging.Named(a.log, "watcher"))
	a.sound = audio.NewService(cfg.Audio, logging.Named(a.log, "audio"))

	tm := theme.NewManager(cfg.Theme.Config, a.store, a.clock, a.systemDark, logging.Named(a.log, "theme"))
	if err := applyInitialTheme(tm, cfg.Theme.Initial); err != nil {
		return nil, err
	}
	a.themes = theme.NewService(tm, cfg.Theme.CheckInterval, logging.Named(a.log, "theme"))
	a.themes.OnChange = func(t theme.Theme) {
		a.loop.Post(themeChanged{theme: t})
	}
	a.palettes = theme.Palettes(cfg.Theme.Palettes)

	a.hub = service.NewHub(logging.Named(a.log, "hub"))
	for _, s := range []service.Service{a.site, a.sound, a.themes} {
		if err := a.hub.Register(s); err != nil {
			return nil, err
		}
	}

	a.nav = navigation.New(mgr, a.clock, cfg.Transition, logging.Named(a.log, "nav"))
	a.menu = menu.New(cfg.Menu.Breakpoints)
	a.board = datefx.NewBoard(cfg.Dates)
	a.loop = engine.NewLoop(cfg.Render.FPS, cfg.Render.QueueSize, a.clock)

	a.fps = a.metrics.Gauge(MetricFPS)
	a.page = a.metrics.Label(MetricPage)
	return a, nil
}

// applyInitialTheme sets the configured start mode; the user's saved choice is not overwritten
func applyInitialTheme(m *theme.Manager, initial string) error {
	switch initial {
	case "":
		return nil
	case "auto":
		m.Follow()
		return nil
	}
	return m.Apply(theme.Theme(initial))
}

// Run shows the site until the user quits or ctx is cancelled
// The screen is finalized before Run returns
func (a *App) Run(ctx context.Context) error {
	if err := a.start(ctx); err != nil {
		a.screen.Fini()
		return err
	}
	defer a.hub.StopAll()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer a.screen.Fini()
		return a.loop.Run(gctx, engine.Handlers{
			OnEvent: a.handleEvent,
			OnFrame: a.frame,
			OnStop:  a.stop,
		})
	})
	g.Go(func() error {
		a.poll()
		return nil
	})
	g.Go(func() error {
		a.forwardChanges(gctx)
		return nil
	})
	if a.cfg.Site.Preload {
		slugs := a.site.Manager().Slugs()
		g.Go(func() error {
			n := a.nav.Preload(slugs)
			a.log.Debug("pages preloaded", zap.Int("loaded", n), zap.Int("total", len(slugs)))
			return nil
		})
	}

	err := g.Wait()
	a.log.Info("viewer stopped",
		zap.Int64("frames", a.loop.Frames()),
		zap.Int64("dropped_events", a.loop.Dropped()))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// start brings up services and lays out the index page
func (a *App) start(ctx context.Context) error {
	if err := a.hub.InitAll(content.WatchOption(a.cfg.Site.Watch), audio.MuteOption(a.mute)); err != nil {
		return fmt.Errorf("init services: %w", err)
	}
	if err := a.hub.StartAll(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	a.screen.EnableMouse(tcell.MouseMotionEvents)
	a.screen.EnableFocus()
	a.width, a.height = a.screen.Size()

	p, err := a.nav.Open(content.IndexSlug)
	if err != nil {
		a.hub.StopAll()
		return fmt.Errorf("open index: %w", err)
	}
	a.refreshMenu()
	a.show(p)
	// The pointer starts inside until the terminal reports otherwise
	a.anim.Enter()

	a.log.Info("viewer started",
		zap.String("site", a.site.Manager().Dir()),
		zap.Int("width", a.width),
		zap.Int("height", a.height),
		zap.String("theme", string(a.themes.Manager().Current())))
	return nil
}

// stop runs on the loop goroutine after the last frame
func (a *App) stop() {
	a.anim.Stop()
	a.board.Cleanup()
}

// poll forwards terminal events until the screen is finalized
func (a *App) poll() {
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		if !a.loop.Post(ev) {
			select {
			case <-a.loop.Done():
				return
			default:
				a.metrics.Counter(MetricDropped).Add(1)
			}
		}
	}
}

// forwardChanges relays watcher notifications into the loop
func (a *App) forwardChanges(ctx context.Context) {
	changes := a.site.Changes()
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.loop.Done():
			return
		case slugs, ok := <-changes:
			if !ok {
				return
			}
			a.loop.Post(pagesChanged{slugs: slugs})
		}
	}
}

// Metrics exposes the status registry
func (a *App) Metrics() *status.Registry {
	return a.metrics
}
