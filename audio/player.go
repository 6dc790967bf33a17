// Package audio plays short synthesized cues for navigation and date countdowns
package audio

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

// ErrUnavailable is returned when no audio device could be opened
var ErrUnavailable = errors.New("audio unavailable")

// Output is the sink a Player mixes into; the speaker in production
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Close()
}

type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate, n int) error { return speaker.Init(rate, n) }
func (speakerOutput) Play(s beep.Streamer)                   { speaker.Play(s) }
func (speakerOutput) Lock()                                  { speaker.Lock() }
func (speakerOutput) Unlock()                                { speaker.Unlock() }
func (speakerOutput) Close()                                 { speaker.Close() }

// Player owns the mixer feeding the output
// Safe for concurrent use; every method is a no-op before Open succeeds
type Player struct {
	cfg Config
	out Output
	log *zap.Logger

	mu     sync.Mutex
	mixer  *beep.Mixer
	open   bool
	played map[Cue]int

	muted atomic.Bool
}

// NewPlayer creates a player for the system speaker
func NewPlayer(cfg Config, log *zap.Logger) *Player {
	return newPlayer(cfg, speakerOutput{}, log)
}

func newPlayer(cfg Config, out Output, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Player{
		cfg:    cfg,
		out:    out,
		log:    log,
		mixer:  &beep.Mixer{},
		played: make(map[Cue]int),
	}
	p.muted.Store(!cfg.Enabled)
	return p
}

// Open initializes the output; calling it twice is a no-op
func (p *Player) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open {
		return nil
	}

	rate := beep.SampleRate(p.cfg.SampleRate)
	if err := p.out.Init(rate, rate.N(p.cfg.Buffer)); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	p.out.Play(p.mixer)
	p.open = true
	p.log.Info("audio opened", zap.Int("sample_rate", p.cfg.SampleRate))
	return nil
}

// Play queues c; false when closed or muted
func (p *Player) Play(c Cue) bool {
	if p.muted.Load() {
		return false
	}
	s := Streamer(c, p.cfg)
	if s == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return false
	}

	p.out.Lock()
	p.mixer.Add(s)
	p.out.Unlock()
	p.played[c]++
	return true
}

// ToggleMute flips mute and returns the new state
func (p *Player) ToggleMute() bool {
	for {
		old := p.muted.Load()
		if p.muted.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// SetMuted sets the mute state
func (p *Player) SetMuted(m bool) {
	p.muted.Store(m)
}

// Muted reports the mute state
func (p *Player) Muted() bool {
	return p.muted.Load()
}

// IsOpen reports whether the output is running
func (p *Player) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Played returns how many times c was queued
func (p *Player) Played(c Cue) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played[c]
}

// Close drops queued sounds and releases the output
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return
	}
	p.out.Lock()
	p.mixer.Clear()
	p.out.Unlock()
	p.out.Close()
	p.open = false
}
