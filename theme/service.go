package theme

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ServiceName identifies the theme ticker in the service hub
const ServiceName = "theme"

// Service re-checks the time of day on an interval while the viewer runs
type Service struct {
	mgr      *Manager
	interval time.Duration
	log      *zap.Logger

	// OnChange is called from the ticker goroutine after an automatic switch
	OnChange func(Theme)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewService wraps mgr; a non-positive interval falls back to one minute
func NewService(mgr *Manager, interval time.Duration, log *zap.Logger) *Service {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{mgr: mgr, interval: interval, log: log}
}

func (s *Service) Name() string           { return ServiceName }
func (s *Service) Dependencies() []string { return nil }

// Init applies the first check so a long-lived process starts on the right palette
func (s *Service) Init(args ...any) error {
	s.mgr.Check()
	return nil
}

// Start launches the ticker
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
	return nil
}

func (s *Service) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.mgr.Check() {
				continue
			}
			t := s.mgr.Current()
			s.log.Info("theme switched by clock", zap.String("theme", string(t)))
			if s.OnChange != nil {
				s.OnChange(t)
			}
		}
	}
}

// Stop ends the ticker and waits for it; safe to call twice
func (s *Service) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Manager returns the wrapped manager
func (s *Service) Manager() *Manager {
	return s.mgr
}
