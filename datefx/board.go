package datefx

import "time"

// BoardConfig controls when and how date items animate
type BoardConfig struct {
	NarrowWidth  float64       `yaml:"narrow_width"` // animate only at or below this surface width
	InitialDelay time.Duration `yaml:"initial_delay"`
	Stagger      time.Duration `yaml:"stagger"`
	Duration     time.Duration `yaml:"duration"`
	FPS          int           `yaml:"fps"`
}

// DefaultBoardConfig mirrors the site's original timings
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		NarrowWidth:  700,
		InitialDelay: 1500 * time.Millisecond,
		Stagger:      200 * time.Millisecond,
		Duration:     DefaultDuration,
		FPS:          DefaultFPS,
	}
}

// Item is one date range on a page
type Item struct {
	Label      string
	Start, End time.Time
}

// Board runs the countdowns of every date item on the current page
type Board struct {
	cfg    BoardConfig
	items  []Item
	runs   []*Countdown
	done   []bool
	narrow bool
}

// NewBoard creates a board in wide mode
func NewBoard(cfg BoardConfig) *Board {
	return &Board{cfg: cfg}
}

// SetItems replaces the date items and drops every running countdown
func (b *Board) SetItems(items []Item) {
	b.Cleanup()
	b.items = append(b.items[:0], items...)
}

// Items returns the current date items
func (b *Board) Items() []Item {
	return b.items
}

// Narrow reports whether countdowns are shown
func (b *Board) Narrow() bool {
	return b.narrow
}

// Resize switches between animated and static display
// Entering narrow mode schedules staggered countdowns starting from now
func (b *Board) Resize(width float64, now time.Time) {
	narrow := width <= b.cfg.NarrowWidth
	if narrow == b.narrow && (len(b.runs) > 0 || !narrow) {
		return
	}
	b.Cleanup()
	b.narrow = narrow
	if !narrow {
		return
	}

	b.runs = make([]*Countdown, len(b.items))
	b.done = make([]bool, len(b.items))
	for i, it := range b.items {
		begin := now.Add(b.cfg.InitialDelay + time.Duration(i)*b.cfg.Stagger)
		b.runs[i] = NewCountdown(it.Start, it.End, begin, b.cfg.Duration, b.cfg.FPS)
	}
}

// Hover restarts the countdown of item i at now; ignored in wide mode
func (b *Board) Hover(i int, now time.Time) {
	if !b.narrow || i < 0 || i >= len(b.runs) {
		return
	}
	b.runs[i].Restart(now)
	b.done[i] = false
}

// Text returns the display string of item i at now
func (b *Board) Text(i int, now time.Time) string {
	if i < 0 || i >= len(b.items) {
		return ""
	}
	it := b.items[i]
	if !b.narrow || i >= len(b.runs) {
		return Format(it.Start) + " – " + Format(it.End)
	}
	return b.runs[i].Value(now)
}

// Finished returns indices whose countdown completed since the previous call
func (b *Board) Finished(now time.Time) []int {
	var out []int
	for i, r := range b.runs {
		if !b.done[i] && r.Done(now) {
			b.done[i] = true
			out = append(out, i)
		}
	}
	return out
}

// Cleanup cancels every countdown
func (b *Board) Cleanup() {
	b.runs = nil
	b.done = nil
}
