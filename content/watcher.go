package content

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	// DefaultDebounce lets editors finish writing before a page is reloaded
	DefaultDebounce = 300 * time.Millisecond
	sweepInterval   = 50 * time.Millisecond
)

// ErrWatcherRunning is returned by a second Start
var ErrWatcherRunning = errors.New("watcher already running")

// WatcherStats counts filesystem activity seen by the watcher
type WatcherStats struct {
	Created   int
	Modified  int
	Removed   int
	Delivered int
	Dropped   int // batches lost because the consumer was behind
	Errors    int
}

// Watcher reports settled page changes in the site directory as slug batches
type Watcher struct {
	dir      string
	debounce time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	fs      *fsnotify.Watcher
	pending map[string]time.Time
	stats   WatcherStats
	running bool

	changes chan []string
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for dir; debounce <= 0 selects DefaultDebounce
func NewWatcher(dir string, debounce time.Duration, log *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		log:      log,
		pending:  make(map[string]time.Time),
		changes:  make(chan []string, 4),
	}
}

// Changes delivers sorted slugs of pages created, modified or removed
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

// Start begins watching; it returns once the directory is registered
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return ErrWatcherRunning
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.fs = fw
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.run(ctx, fw, w.stopCh, w.doneCh)

	w.log.Info("watching site directory", zap.String("dir", w.dir))
	return nil
}

// Stop ends watching and waits for the event goroutine to exit
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh, fw := w.stopCh, w.doneCh, w.fs
	w.mu.Unlock()

	close(stopCh)
	<-doneCh

	if err := fw.Close(); err != nil {
		w.log.Warn("close watcher", zap.Error(err))
	}
	w.log.Debug("watcher stopped")
}

// Running reports whether the event goroutine is active
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Stats returns a copy of the activity counters
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case now := <-sweep.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if filepath.Ext(name) != PageExt || strings.HasPrefix(name, ".") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case ev.Has(fsnotify.Create):
		w.stats.Created++
	case ev.Has(fsnotify.Write):
		w.stats.Modified++
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.stats.Removed++
	default:
		return
	}
	w.pending[SlugOf(name)] = time.Now()
}

// flush delivers slugs whose last event is older than the debounce window
func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	var ready []string
	for slug, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, slug)
			delete(w.pending, slug)
		}
	}
	w.mu.Unlock()

	if len(ready) == 0 {
		return
	}
	sort.Strings(ready)

	select {
	case w.changes <- ready:
		w.mu.Lock()
		w.stats.Delivered += len(ready)
		w.mu.Unlock()
		w.log.Debug("pages changed", zap.Strings("slugs", ready))
	default:
		w.mu.Lock()
		w.stats.Dropped++
		w.mu.Unlock()
		w.log.Warn("page change batch dropped", zap.Strings("slugs", ready))
	}
}
