package force

import (
	"time"

	"github.com/lixenwraith/folio/engine"
)

// fakeTarget records every call the animator makes
type fakeTarget struct {
	geo Geometry
	ok  bool

	dx, dy  float64
	applies int
	clears  int
	marked  bool
}

func newTarget(x, y, size float64) *fakeTarget {
	return &fakeTarget{geo: Geometry{X: x, Y: y, Size: size}, ok: true}
}

func (f *fakeTarget) Geometry() (Geometry, bool) { return f.geo, f.ok }

func (f *fakeTarget) ApplyDisplacement(dx, dy float64) {
	f.dx, f.dy = dx, dy
	f.applies++
}

func (f *fakeTarget) ClearDisplacement() {
	f.dx, f.dy = 0, 0
	f.clears++
}

func (f *fakeTarget) MarkForced(forced bool) { f.marked = forced }

func epochClock() *engine.MockTimeProvider {
	return engine.NewMockTimeProvider(time.UnixMilli(0))
}

func newTestAnimator(cfg Config, clock engine.TimeProvider, targets ...*fakeTarget) *Animator {
	a, err := NewAnimator(cfg, WithClock(clock))
	if err != nil {
		panic(err)
	}
	ts := make([]Target, len(targets))
	for i, t := range targets {
		ts[i] = t
	}
	a.SetTargets(ts)
	return a
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
