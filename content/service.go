package content

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ServiceName identifies the site watcher in the service hub
const ServiceName = "content"

// Service exposes Manager discovery and the Watcher through the service lifecycle
type Service struct {
	manager *Manager
	watcher *Watcher
	watch   bool
	log     *zap.Logger
}

// NewService wraps m; watching is enabled by Init
func NewService(m *Manager, debounce time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		manager: m,
		watcher: NewWatcher(m.Dir(), debounce, log.Named("watcher")),
		log:     log,
	}
}

func (s *Service) Name() string           { return ServiceName }
func (s *Service) Dependencies() []string { return nil }

// Init discovers the site; a WatchOption arg toggles the watcher
func (s *Service) Init(args ...any) error {
	for _, arg := range args {
		if w, ok := arg.(WatchOption); ok {
			s.watch = bool(w)
		}
	}
	if err := s.manager.Discover(); err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	return nil
}

// Start launches the watcher; a directory that cannot be watched is logged and ignored
func (s *Service) Start(ctx context.Context) error {
	if !s.watch {
		return nil
	}
	if err := s.watcher.Start(ctx); err != nil {
		s.log.Warn("site watcher unavailable", zap.Error(err))
	}
	return nil
}

// Stop ends watching
func (s *Service) Stop() error {
	s.watcher.Stop()
	return nil
}

// Manager returns the wrapped manager
func (s *Service) Manager() *Manager {
	return s.manager
}

// Changes forwards the watcher's change batches
func (s *Service) Changes() <-chan []string {
	return s.watcher.Changes()
}

// WatchOption is passed to Init to enable live reloading
type WatchOption bool
