package force

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/folio/engine"
	"github.com/lixenwraith/folio/status"
)

// Metric names published when a registry is attached
const (
	MetricFrames    = "force.frames"
	MetricSkipped   = "force.frames_skipped"
	MetricGlyphs    = "force.glyphs"
	MetricForced    = "force.forced"
	MetricReturning = "force.returning"
)

// FrameStats summarizes one scheduled frame
type FrameStats struct {
	Frame     uint64
	Skipped   bool // idle throttle dropped this frame
	Stopped   bool
	Evaluated int // field evaluations
	Forced    int
	Returning int
	Settled   int // glyphs that reached rest this frame
}

// Option configures an Animator
type Option func(*Animator)

// WithClock injects the time source used for idle detection and the wave phase
func WithClock(c engine.TimeProvider) Option {
	return func(a *Animator) { a.clock = c }
}

// WithLogger attaches a logger
func WithLogger(l *zap.Logger) Option {
	return func(a *Animator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithMetrics publishes frame counters into r
func WithMetrics(r *status.Registry) Option {
	return func(a *Animator) { a.metrics = r }
}

// Animator displaces glyphs near the pointer every frame and eases them back to rest
// All methods must be called from the same goroutine (the frame loop)
type Animator struct {
	cfg     Config
	field   Field
	tracker *Tracker
	clock   engine.TimeProvider
	log     *zap.Logger

	glyphs []glyph
	grid   *Grid

	// moving holds indices of glyphs not at rest; active holds last frame's active glyphs
	moving []int
	active []int
	seen   []uint64

	frame     uint64
	frameSkip int
	debug     bool
	stopped   bool
	last      FrameStats

	metrics *status.Registry
	mFrames *atomic.Int64
	mSkip   *atomic.Int64
	mGlyphs *atomic.Int64
	mForced *atomic.Int64
	mReturn *atomic.Int64
}

// NewAnimator validates cfg and returns an animator with no glyphs
func NewAnimator(cfg Config, opts ...Option) (*Animator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Animator{
		cfg:     cfg,
		field:   NewField(cfg.ForceRadius),
		tracker: NewTracker(cfg.VelocitySmoothing, cfg.IdleTimeout),
		clock:   engine.NewMonotonicTimeProvider(),
		log:     zap.NewNop(),
		grid:    NewGrid(cfg.ForceRadius),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.metrics != nil {
		a.mFrames = a.metrics.Counter(MetricFrames)
		a.mSkip = a.metrics.Counter(MetricSkipped)
		a.mGlyphs = a.metrics.Counter(MetricGlyphs)
		a.mForced = a.metrics.Counter(MetricForced)
		a.mReturn = a.metrics.Counter(MetricReturning)
	}
	return a, nil
}

// Config returns the constants the animator was built with
func (a *Animator) Config() Config {
	return a.cfg
}

// SetTargets replaces the tracked glyphs; previous glyphs are put back at rest first
// Nil targets are skipped so a partially built layout still animates
func (a *Animator) SetTargets(targets []Target) {
	a.ResetAll()

	a.glyphs = a.glyphs[:0]
	for _, t := range targets {
		if t == nil {
			continue
		}
		a.glyphs = append(a.glyphs, glyph{target: t, cell: -1})
	}
	a.moving = a.moving[:0]
	a.active = a.active[:0]
	a.seen = make([]uint64, len(a.glyphs))

	a.Refresh()
}

// Refresh re-reads every rest position after a layout change and rebuilds the spatial index
func (a *Animator) Refresh() {
	valid := 0
	for i := range a.glyphs {
		g := &a.glyphs[i]
		g.refresh(a.cfg.MaxForce)
		if g.valid {
			valid++
			continue
		}
		// A glyph losing its position cannot be driven home by frames
		if g.phase != AtRest {
			a.settle(g)
		}
	}
	a.compactMoving()

	if len(a.glyphs) >= a.cfg.GridThreshold {
		a.grid.Rebuild(a.glyphs)
	}
	if a.mGlyphs != nil {
		a.mGlyphs.Store(int64(valid))
	}

	a.log.Debug("glyph positions refreshed",
		zap.Int("valid", valid),
		zap.Int("total", len(a.glyphs)))
}

// OnSample feeds a pointer position in surface units
func (a *Animator) OnSample(x, y float64) {
	a.tracker.OnSample(x, y, a.clock.Now())
}

// Enter marks the pointer as back on the surface
func (a *Animator) Enter() {
	a.tracker.Inside = true
}

// Leave marks the pointer as gone and releases every glyph at once
func (a *Animator) Leave() {
	a.tracker.Inside = false
	a.ResetAll()
}

// Idle reports the tracker's idle classification at the current time
func (a *Animator) Idle() bool {
	return a.tracker.Idle(a.clock.Now())
}

// Pointer returns the tracker; callers must treat it as read-only
func (a *Animator) Pointer() *Tracker {
	return a.tracker
}

// Frame runs one scheduled update
func (a *Animator) Frame() FrameStats {
	if a.stopped {
		return FrameStats{Frame: a.frame, Stopped: true}
	}

	a.frame++
	now := a.clock.Now()
	stats := FrameStats{Frame: a.frame}

	if a.tracker.Idle(now) {
		a.frameSkip++
		if a.frameSkip < a.cfg.IdleFrameSkip {
			stats.Skipped = true
			a.publish(stats)
			return stats
		}
		a.frameSkip = 0
	}

	for _, i := range a.active {
		a.glyphs[i].active = false
	}
	a.active = a.active[:0]

	if len(a.glyphs) >= a.cfg.GridThreshold {
		a.scanGrid(now, &stats)
	} else {
		a.scanLinear(now, &stats)
	}
	a.compactMoving()

	a.publish(stats)
	return stats
}

// scanLinear visits every glyph with a coarse box pre-check
func (a *Animator) scanLinear(now time.Time, stats *FrameStats) {
	check := a.cfg.ForceRadius * a.cfg.PrecheckFactor
	px, py := a.tracker.X, a.tracker.Y

	for i := range a.glyphs {
		g := &a.glyphs[i]
		if !g.valid {
			continue
		}

		dx := g.x - px
		if dx < 0 {
			dx = -dx
		}
		dy := g.y - py
		if dy < 0 {
			dy = -dy
		}
		if dx > check && dy > check && g.phase == AtRest {
			continue
		}

		a.update(i, now, stats)
	}
}

// scanGrid visits glyphs in cells near the pointer plus every glyph still off rest
func (a *Animator) scanGrid(now time.Time, stats *FrameStats) {
	stamp := a.frame

	a.grid.Query(a.tracker.X, a.tracker.Y, a.cfg.ForceRadius, func(i int) {
		a.seen[i] = stamp
		a.update(i, now, stats)
	})

	// update may append to moving; only the glyphs present at entry need a visit
	n := len(a.moving)
	for k := 0; k < n; k++ {
		i := a.moving[k]
		if a.seen[i] == stamp || !a.glyphs[i].valid {
			continue
		}
		a.seen[i] = stamp
		a.update(i, now, stats)
	}
}

// update applies the per-glyph state machine
func (a *Animator) update(i int, now time.Time, stats *FrameStats) {
	g := &a.glyphs[i]
	eps := a.cfg.Epsilon

	f, active := a.field.Evaluate(g.x, g.y, g.maxDis, a.tracker, now)
	stats.Evaluated++
	g.active = active
	if active {
		a.active = append(a.active, i)
	}

	hasForce := f.X > eps || f.X < -eps || f.Y > eps || f.Y < -eps
	returning := g.dx > eps || g.dx < -eps || g.dy > eps || g.dy < -eps

	switch {
	case hasForce:
		if g.phase == AtRest {
			a.moving = append(a.moving, i)
		}
		g.dx, g.dy = f.X, f.Y
		g.phase = Forced
		g.target.ApplyDisplacement(g.dx, g.dy)
		a.mark(g, true)
		stats.Forced++

	case returning:
		keep := 1 - a.cfg.ReturnSpeed
		g.dx *= keep
		g.dy *= keep
		a.mark(g, false)
		if g.dx <= eps && g.dx >= -eps && g.dy <= eps && g.dy >= -eps {
			a.settle(g)
			stats.Settled++
			return
		}
		g.phase = Returning
		g.target.ApplyDisplacement(g.dx, g.dy)
		stats.Returning++
	}
}

// settle snaps a glyph to rest and clears its visual translation
func (a *Animator) settle(g *glyph) {
	g.dx, g.dy = 0, 0
	g.phase = AtRest
	g.target.ClearDisplacement()
	a.mark(g, false)
}

func (a *Animator) mark(g *glyph, forced bool) {
	want := forced && a.debug
	if g.marked == want {
		return
	}
	if m, ok := g.target.(Marker); ok {
		m.MarkForced(want)
		g.marked = want
	}
}

// compactMoving drops glyphs that came to rest from the moving list
func (a *Animator) compactMoving() {
	kept := a.moving[:0]
	for _, i := range a.moving {
		if a.glyphs[i].phase != AtRest {
			kept = append(kept, i)
		}
	}
	a.moving = kept
}

// ResetAll puts every glyph at rest immediately and cancels any decay in progress
func (a *Animator) ResetAll() {
	for i := range a.glyphs {
		g := &a.glyphs[i]
		g.dx, g.dy = 0, 0
		g.active = false
		g.phase = AtRest
		g.target.ClearDisplacement()
		a.mark(g, false)
	}
	a.moving = a.moving[:0]
	a.active = a.active[:0]
}

// Stop resets every glyph and refuses further frames; safe to call twice
func (a *Animator) Stop() {
	if a.stopped {
		return
	}
	a.ResetAll()
	a.stopped = true
	a.log.Debug("animator stopped", zap.Uint64("frames", a.frame))
}

// Stopped reports whether Stop was called
func (a *Animator) Stopped() bool {
	return a.stopped
}

func (a *Animator) publish(stats FrameStats) {
	a.last = stats
	if a.metrics == nil {
		return
	}
	a.mFrames.Add(1)
	if stats.Skipped {
		a.mSkip.Add(1)
		return
	}
	a.mForced.Store(int64(stats.Forced))
	a.mReturn.Store(int64(stats.Returning))
}

// Stats returns the counters of the most recent frame
func (a *Animator) Stats() FrameStats {
	return a.last
}

// Len returns the number of tracked glyphs
func (a *Animator) Len() int {
	return len(a.glyphs)
}

// ToggleDebug flips debug marking and returns the new state
func (a *Animator) ToggleDebug() bool {
	a.debug = !a.debug
	for i := range a.glyphs {
		g := &a.glyphs[i]
		a.mark(g, g.phase == Forced)
	}
	a.log.Info("debug mode toggled", zap.Bool("debug", a.debug))
	return a.debug
}

// Debug reports whether debug marking is on
func (a *Animator) Debug() bool {
	return a.debug
}

// Snapshot copies the state of every glyph
func (a *Animator) Snapshot() []GlyphState {
	out := make([]GlyphState, len(a.glyphs))
	for i := range a.glyphs {
		out[i] = a.glyphs[i].state()
	}
	return out
}

// String summarizes the animator for debug output
func (a *Animator) String() string {
	return fmt.Sprintf("animator{glyphs=%d moving=%d frame=%d idle=%t debug=%t}",
		len(a.glyphs), len(a.moving), a.frame, a.Idle(), a.debug)
}
