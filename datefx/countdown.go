package datefx

import "time"

const (
	// DefaultDuration is the length of one countdown run
	DefaultDuration = 3000 * time.Millisecond
	// DefaultFPS is the countdown step rate
	DefaultFPS = 30
)

// Countdown walks a displayed date from End back to Start in fixed steps
type Countdown struct {
	Start, End time.Time

	begin    time.Time
	steps    int
	interval time.Duration
	perStep  time.Duration
}

// NewCountdown prepares a countdown that begins at begin
func NewCountdown(start, end, begin time.Time, duration time.Duration, fps int) *Countdown {
	if fps <= 0 {
		fps = DefaultFPS
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	interval := time.Second / time.Duration(fps)
	steps := int(duration / interval)
	if steps < 1 {
		steps = 1
	}
	return &Countdown{
		Start:    start,
		End:      end,
		begin:    begin,
		steps:    steps,
		interval: interval,
		perStep:  end.Sub(start) / time.Duration(steps),
	}
}

// Steps returns the number of date changes in one run
func (c *Countdown) Steps() int {
	return c.steps
}

// step is the number of completed steps at now, clamped to [0, steps]
func (c *Countdown) step(now time.Time) int {
	elapsed := now.Sub(c.begin)
	if elapsed < 0 {
		return 0
	}
	s := int(elapsed / c.interval)
	if s > c.steps {
		s = c.steps
	}
	return s
}

// Date returns the date shown at now
func (c *Countdown) Date(now time.Time) time.Time {
	s := c.step(now)
	if s >= c.steps {
		return c.Start
	}
	return c.End.Add(-c.perStep * time.Duration(s))
}

// Value returns the formatted date shown at now
func (c *Countdown) Value(now time.Time) string {
	return Format(c.Date(now))
}

// Done reports whether the countdown reached the start date
func (c *Countdown) Done(now time.Time) bool {
	return c.step(now) >= c.steps
}

// Restart begins a new run at now
func (c *Countdown) Restart(now time.Time) {
	c.begin = now
}
