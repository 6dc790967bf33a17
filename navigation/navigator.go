package navigation

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lixenwraith/folio/content"
	"github.com/lixenwraith/folio/engine"
)

var (
	// ErrTransitioning is returned while a page fade is still running
	ErrTransitioning = errors.New("navigation in progress")
	// ErrNoHistory is returned by Back and Forward at either end of the history
	ErrNoHistory = errors.New("no history")
	// ErrNotStarted is returned before the first page is opened
	ErrNotStarted = errors.New("navigator not started")
)

// Loader is the page source; content.Manager satisfies it
type Loader interface {
	Load(slug string) (*content.Page, error)
	Discover() error
}

// Navigator tracks the current page, history and a page cache
// History and transition state belong to the frame loop; the cache may be filled from any goroutine
type Navigator struct {
	loader Loader
	clock  engine.TimeProvider
	cfg    TransitionConfig
	log    *zap.Logger

	mu    sync.RWMutex
	cache map[string]*content.Page

	current    *content.Page
	back       []string
	forward    []string
	transition *Transition
}

// New creates a navigator; call Open before navigating
func New(loader Loader, clock engine.TimeProvider, cfg TransitionConfig, log *zap.Logger) *Navigator {
	if log == nil {
		log = zap.NewNop()
	}
	if clock == nil {
		clock = engine.NewMonotonicTimeProvider()
	}
	return &Navigator{
		loader: loader,
		clock:  clock,
		cfg:    cfg,
		log:    log,
		cache:  make(map[string]*content.Page),
	}
}

// Open shows slug without a transition and clears history
func (n *Navigator) Open(slug string) (*content.Page, error) {
	p, err := n.load(slug)
	if err != nil {
		return nil, err
	}
	n.current = p
	n.back, n.forward = nil, nil
	n.transition = nil
	return p, nil
}

// Current returns the page being shown
func (n *Navigator) Current() *content.Page {
	return n.current
}

// Go follows href from the current page
// Following a link to the current page does nothing; a failed load keeps the current page
func (n *Navigator) Go(href string) (*content.Page, error) {
	if n.current == nil {
		return nil, ErrNotStarted
	}
	slug, err := Resolve(n.current.Slug, href)
	if err != nil {
		return nil, err
	}
	if slug == n.current.Slug {
		return n.current, nil
	}
	if n.Transitioning() {
		return nil, ErrTransitioning
	}

	p, err := n.load(slug)
	if err != nil {
		return nil, err
	}
	n.back = append(n.back, n.current.Slug)
	n.forward = n.forward[:0]
	n.show(p)
	return p, nil
}

// Back returns to the previous page
func (n *Navigator) Back() (*content.Page, error) {
	return n.step(&n.back, &n.forward)
}

// Forward re-opens a page left with Back
func (n *Navigator) Forward() (*content.Page, error) {
	return n.step(&n.forward, &n.back)
}

func (n *Navigator) step(from, to *[]string) (*content.Page, error) {
	if n.current == nil {
		return nil, ErrNotStarted
	}
	if len(*from) == 0 {
		return nil, ErrNoHistory
	}
	if n.Transitioning() {
		return nil, ErrTransitioning
	}

	slug := (*from)[len(*from)-1]
	p, err := n.load(slug)
	if err != nil {
		return nil, err
	}
	*from = (*from)[:len(*from)-1]
	*to = append(*to, n.current.Slug)
	n.show(p)
	return p, nil
}

func (n *Navigator) show(p *content.Page) {
	n.log.Debug("navigate", zap.String("from", n.current.Slug), zap.String("to", p.Slug))
	n.current = p
	n.transition = NewTransition(n.cfg, n.clock.Now())
}

// Transition returns the running fade, nil once none was started
func (n *Navigator) Transition() *Transition {
	return n.transition
}

// Transitioning reports whether a fade is still running
func (n *Navigator) Transitioning() bool {
	if n.transition == nil {
		return false
	}
	n.transition.Advance(n.clock.Now())
	return !n.transition.Done()
}

// History returns copies of the back and forward stacks
func (n *Navigator) History() (back, forward []string) {
	return append([]string(nil), n.back...), append([]string(nil), n.forward...)
}

// load serves from the cache, then the loader; a miss triggers one rediscovery and retry
func (n *Navigator) load(slug string) (*content.Page, error) {
	n.mu.RLock()
	p, ok := n.cache[slug]
	n.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := n.loader.Load(slug)
	if err != nil {
		n.log.Warn("page load failed, rescanning site", zap.String("slug", slug), zap.Error(err))
		if derr := n.loader.Discover(); derr != nil {
			return nil, fmt.Errorf("load %s: %w (rescan: %v)", slug, err, derr)
		}
		if p, err = n.loader.Load(slug); err != nil {
			return nil, fmt.Errorf("load %s: %w", slug, err)
		}
	}

	n.mu.Lock()
	n.cache[slug] = p
	n.mu.Unlock()
	return p, nil
}

// Preload fills the cache; failures are logged and skipped
func (n *Navigator) Preload(slugs []string) int {
	loaded := 0
	for _, slug := range slugs {
		n.mu.RLock()
		_, ok := n.cache[slug]
		n.mu.RUnlock()
		if ok {
			continue
		}

		p, err := n.loader.Load(slug)
		if err != nil {
			n.log.Debug("preload skipped", zap.String("slug", slug), zap.Error(err))
			continue
		}
		n.mu.Lock()
		n.cache[slug] = p
		n.mu.Unlock()
		loaded++
	}
	return loaded
}

// Invalidate drops slug from the cache
func (n *Navigator) Invalidate(slug string) {
	n.mu.Lock()
	delete(n.cache, slug)
	n.mu.Unlock()
}

// Reload re-reads the current page, bypassing the cache
// On failure the current page stays on screen
func (n *Navigator) Reload() (*content.Page, error) {
	if n.current == nil {
		return nil, ErrNotStarted
	}
	n.Invalidate(n.current.Slug)
	p, err := n.load(n.current.Slug)
	if err != nil {
		return nil, err
	}
	n.current = p
	return p, nil
}

// Cached reports whether slug is in the cache
func (n *Navigator) Cached(slug string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.cache[slug]
	return ok
}
