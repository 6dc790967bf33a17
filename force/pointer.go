package force

import (
	"math"
	"time"
)

// Tracker turns raw pointer samples into a smoothed velocity and an idle classification
// Not safe for concurrent use; samples and frames share one goroutine
type Tracker struct {
	X, Y         float64
	PrevX, PrevY float64
	VX, VY       float64
	Speed        float64

	// Inside is false after the pointer left the surface
	Inside bool

	smoothing float64
	timeout   time.Duration

	lastSample time.Time
	sampled    bool
}

// NewTracker creates a tracker with the given smoothing weight and idle window
func NewTracker(smoothing float64, idleTimeout time.Duration) *Tracker {
	return &Tracker{
		Inside:    true,
		smoothing: smoothing,
		timeout:   idleTimeout,
	}
}

// OnSample records a pointer position taken at now
func (t *Tracker) OnSample(x, y float64, now time.Time) {
	t.PrevX, t.PrevY = t.X, t.Y
	t.X, t.Y = x, y

	rawX := t.X - t.PrevX
	rawY := t.Y - t.PrevY

	t.VX = t.VX*(1-t.smoothing) + rawX*t.smoothing
	t.VY = t.VY*(1-t.smoothing) + rawY*t.smoothing
	t.Speed = math.Sqrt(t.VX*t.VX + t.VY*t.VY)

	t.lastSample = now
	t.sampled = true
}

// Idle reports whether no sample arrived within the idle window
// A tracker that never received a sample is not idle
func (t *Tracker) Idle(now time.Time) bool {
	if !t.sampled {
		return false
	}
	return now.Sub(t.lastSample) >= t.timeout
}

// LastSample returns the time of the newest sample and whether one exists
func (t *Tracker) LastSample() (time.Time, bool) {
	return t.lastSample, t.sampled
}
