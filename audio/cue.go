package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Cue is a short sound tied to a viewer event
type Cue uint8

const (
	CueWhoosh Cue = iota // page navigation
	CueBell              // countdown finished
)

func (c Cue) String() string {
	switch c {
	case CueWhoosh:
		return "whoosh"
	case CueBell:
		return "bell"
	}
	return "unknown"
}

const (
	whooshDuration = 180 * time.Millisecond
	whooshAttack   = 20 * time.Millisecond
	whooshRelease  = 140 * time.Millisecond

	bellDuration         = 600 * time.Millisecond
	bellAttack           = 5 * time.Millisecond
	bellFundamentalDecay = 550 * time.Millisecond
	bellOvertoneDecay    = 300 * time.Millisecond
)

// noise is band-less white noise limited to a duration
type noise struct {
	remaining int
	rng       *rand.Rand
}

func newNoise(d time.Duration, rate beep.SampleRate) beep.Streamer {
	return &noise{remaining: rate.N(d), rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (n *noise) Stream(samples [][2]float64) (int, bool) {
	if n.remaining <= 0 {
		return 0, false
	}
	k := len(samples)
	if k > n.remaining {
		k = n.remaining
	}
	for i := 0; i < k; i++ {
		v := n.rng.Float64()*2 - 1
		samples[i][0] = v
		samples[i][1] = v
	}
	n.remaining -= k
	return k, true
}

func (n *noise) Err() error { return nil }

// envelope applies a linear attack and release over a fixed length
type envelope struct {
	streamer beep.Streamer
	pos      int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, total, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(total),
	}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	if e.pos >= e.total {
		return 0, false
	}
	if rest := e.total - e.pos; len(samples) > rest {
		samples = samples[:rest]
	}
	n, ok := e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		}
		if start := e.total - e.release; e.pos >= start && e.release > 0 {
			vol = float64(e.total-e.pos) / float64(e.release)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales linearly; effects.Volume works in log2 so zero means silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

func tone(rate beep.SampleRate, freq float64, d time.Duration) beep.Streamer {
	s, err := generators.SineTone(rate, freq)
	if err != nil {
		// frequency above Nyquist
		return beep.Silence(rate.N(d))
	}
	return beep.Take(rate.N(d), s)
}

// whoosh is a short enveloped noise burst
func whoosh(cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	shaped := newEnvelope(newNoise(whooshDuration, rate), whooshDuration, whooshAttack, whooshRelease, rate)
	return newVolume(shaped, clamp01(cfg.WhooshVolume)*clamp01(cfg.Volume))
}

// bell is an A5 fundamental with an octave overtone
func bell(cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	fund := newEnvelope(tone(rate, 880, bellDuration), bellDuration, bellAttack, bellFundamentalDecay, rate)
	over := newEnvelope(tone(rate, 1760, bellDuration), bellDuration, bellAttack, bellOvertoneDecay, rate)
	mixed := beep.Take(rate.N(bellDuration), beep.Mix(newVolume(fund, 0.7), newVolume(over, 0.3)))

	return newVolume(mixed, clamp01(cfg.BellVolume)*clamp01(cfg.Volume))
}

// Streamer builds a fresh streamer for c
func Streamer(c Cue, cfg Config) beep.Streamer {
	switch c {
	case CueWhoosh:
		return whoosh(cfg)
	case CueBell:
		return bell(cfg)
	}
	return nil
}
