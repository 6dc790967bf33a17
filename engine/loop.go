package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrLoopRunning is returned when Run is called on a loop that is already running
var ErrLoopRunning = errors.New("loop already running")

// Handlers are invoked from the loop goroutine only
// Any nil handler is skipped
type Handlers struct {
	// OnEvent receives posted events; returning false ends the loop
	OnEvent func(ev any) bool
	// OnFrame runs once per tick; returning false ends the loop
	OnFrame func(now time.Time) bool
	// OnStop runs after the last event or frame, before Run returns
	OnStop func()
}

// Loop is the single logical thread of the viewer
// Input events and frame ticks are serialized through one select so handler state needs no locking
type Loop struct {
	interval time.Duration
	clock    TimeProvider
	events   chan any

	stopCh   chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	frames  atomic.Int64
	dropped atomic.Int64
}

// NewLoop creates a loop ticking at fps with an event queue of the given capacity
func NewLoop(fps, queue int, clock TimeProvider) *Loop {
	if fps <= 0 {
		fps = 60
	}
	if queue <= 0 {
		queue = 100
	}
	if clock == nil {
		clock = NewMonotonicTimeProvider()
	}
	return &Loop{
		interval: time.Second / time.Duration(fps),
		clock:    clock,
		events:   make(chan any, queue),
		stopCh:   make(chan struct{}),
	}
}

// Post enqueues an event without blocking
// Returns false when the queue is full or the loop has stopped
func (l *Loop) Post(ev any) bool {
	select {
	case <-l.stopCh:
		return false
	default:
	}

	select {
	case l.events <- ev:
		return true
	default:
		l.dropped.Add(1)
		return false
	}
}

// Run blocks until the context is cancelled, Stop is called or a handler returns false
// Returns nil on a handler or Stop exit, ctx.Err() on cancellation
func (l *Loop) Run(ctx context.Context, h Handlers) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	defer func() {
		l.Stop()
		if h.OnStop != nil {
			h.OnStop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-l.stopCh:
			return nil

		case ev := <-l.events:
			if h.OnEvent != nil && !h.OnEvent(ev) {
				return nil
			}

		case <-ticker.C:
			l.frames.Add(1)
			if h.OnFrame != nil && !h.OnFrame(l.clock.Now()) {
				return nil
			}
		}
	}
}

// Stop ends scheduling; safe to call multiple times and from any goroutine
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Done is closed once the loop is stopped
func (l *Loop) Done() <-chan struct{} {
	return l.stopCh
}

// Frames returns the number of ticks delivered
func (l *Loop) Frames() int64 {
	return l.frames.Load()
}

// Dropped returns the number of events rejected because the queue was full
func (l *Loop) Dropped() int64 {
	return l.dropped.Load()
}

// Interval returns the frame period
func (l *Loop) Interval() time.Duration {
	return l.interval
}
