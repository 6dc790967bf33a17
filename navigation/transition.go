package navigation

import (
	"time"

	"github.com/charmbracelet/harmonica"
)

// TransitionConfig shapes the fade between pages
type TransitionConfig struct {
	Enabled     bool          `yaml:"enabled"`
	FPS         int           `yaml:"fps"`
	Frequency   float64       `yaml:"frequency"` // spring angular frequency
	Damping     float64       `yaml:"damping"`
	MaxDuration time.Duration `yaml:"max_duration"` // hard stop if the spring never settles
}

// DefaultTransitionConfig returns a critically damped fade of roughly a third of a second per side
func DefaultTransitionConfig() TransitionConfig {
	return TransitionConfig{
		Enabled:     true,
		FPS:         60,
		Frequency:   14,
		Damping:     1,
		MaxDuration: 2 * time.Second,
	}
}

const (
	settleDelta = 0.02
	maxCatchUp  = 600 // spring steps per call
)

// Transition fades the old page out, swaps, and fades the new page in
type Transition struct {
	cfg    TransitionConfig
	spring harmonica.Spring
	dt     time.Duration

	start time.Time
	steps int

	pos, vel float64
	target   float64
	swapped  bool
	done     bool
}

// NewTransition starts a fade at now
func NewTransition(cfg TransitionConfig, now time.Time) *Transition {
	t := &Transition{cfg: cfg, start: now, pos: 1}
	if !cfg.Enabled || cfg.FPS <= 0 {
		t.swapped, t.done = true, true
		return t
	}
	t.spring = harmonica.NewSpring(harmonica.FPS(cfg.FPS), cfg.Frequency, cfg.Damping)
	t.dt = time.Second / time.Duration(cfg.FPS)
	return t
}

// Advance steps the spring up to now
func (t *Transition) Advance(now time.Time) {
	if t.done {
		return
	}
	if t.cfg.MaxDuration > 0 && now.Sub(t.start) >= t.cfg.MaxDuration {
		t.finish()
		return
	}

	want := int(now.Sub(t.start) / t.dt)
	for n := 0; t.steps < want && n < maxCatchUp; n++ {
		t.steps++
		t.pos, t.vel = t.spring.Update(t.pos, t.vel, t.target)

		if !t.swapped && t.pos <= settleDelta {
			t.pos, t.vel = 0, 0
			t.swapped = true
			t.target = 1
			continue
		}
		if t.swapped && t.pos >= 1-settleDelta {
			t.finish()
			return
		}
	}
}

func (t *Transition) finish() {
	t.pos, t.vel = 1, 0
	t.swapped, t.done = true, true
}

// Opacity returns the page opacity in [0,1] at now
func (t *Transition) Opacity(now time.Time) float64 {
	t.Advance(now)
	switch {
	case t.pos < 0:
		return 0
	case t.pos > 1:
		return 1
	}
	return t.pos
}

// Swapped reports whether the fade-out finished and the new page should be shown
func (t *Transition) Swapped() bool { return t.swapped }

// Done reports whether the fade-in finished
func (t *Transition) Done() bool { return t.done }
