package audio

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/gopxl/beep"
)

type fakeOutput struct {
	initErr error
	inits   int
	played  []beep.Streamer
	closed  bool
}

func (f *fakeOutput) Init(rate beep.SampleRate, n int) error {
	f.inits++
	return f.initErr
}
func (f *fakeOutput) Play(s beep.Streamer) { f.played = append(f.played, s) }
func (f *fakeOutput) Lock()                {}
func (f *fakeOutput) Unlock()              {}
func (f *fakeOutput) Close()               { f.closed = true }

// drain streams s to completion and returns the sample count and peak amplitude
func drain(t *testing.T, s beep.Streamer) (int, float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			for _, v := range smp {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("non-finite sample %v", v)
				}
				if a := math.Abs(v); a > peak {
					peak = a
				}
			}
		}
		total += n
		if !ok || n == 0 {
			return total, peak
		}
	}
	t.Fatal("streamer never finished")
	return 0, 0
}

func TestCueLengths(t *testing.T) {
	cfg := DefaultConfig()
	rate := beep.SampleRate(cfg.SampleRate)

	tests := []struct {
		cue  Cue
		want int
	}{
		{CueWhoosh, rate.N(whooshDuration)},
		{CueBell, rate.N(bellDuration)},
	}
	for _, tt := range tests {
		t.Run(tt.cue.String(), func(t *testing.T) {
			n, peak := drain(t, Streamer(tt.cue, cfg))
			if n != tt.want {
				t.Errorf("samples = %d, want %d", n, tt.want)
			}
			if peak > 1 {
				t.Errorf("peak = %f, want <= 1", peak)
			}
			if peak == 0 {
				t.Error("cue is silent")
			}
		})
	}
}

func TestZeroVolumeIsSilent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Volume = 0
	_, peak := drain(t, Streamer(CueWhoosh, cfg))
	if peak != 0 {
		t.Errorf("peak = %f, want silence", peak)
	}
}

func TestUnknownCue(t *testing.T) {
	if Streamer(Cue(99), DefaultConfig()) != nil {
		t.Error("unknown cue produced a streamer")
	}
}

func TestPlayerLifecycle(t *testing.T) {
	out := &fakeOutput{}
	p := newPlayer(DefaultConfig(), out, nil)

	if p.Play(CueBell) {
		t.Error("Play before Open succeeded")
	}
	if err := p.Open(); err != nil {
		t.Fatal(err)
	}
	if err := p.Open(); err != nil {
		t.Fatal(err)
	}
	if out.inits != 1 || len(out.played) != 1 {
		t.Errorf("inits=%d played=%d, want 1/1", out.inits, len(out.played))
	}

	if !p.Play(CueWhoosh) {
		t.Error("Play after Open failed")
	}
	if p.Played(CueWhoosh) != 1 {
		t.Errorf("Played = %d", p.Played(CueWhoosh))
	}

	if !p.ToggleMute() {
		t.Error("ToggleMute did not mute")
	}
	if p.Play(CueWhoosh) {
		t.Error("Play while muted succeeded")
	}
	p.SetMuted(false)

	p.Close()
	p.Close()
	if !out.closed || p.IsOpen() {
		t.Error("Close did not release the output")
	}
	if p.Play(CueWhoosh) {
		t.Error("Play after Close succeeded")
	}
}

func TestPlayerOpenFailure(t *testing.T) {
	p := newPlayer(DefaultConfig(), &fakeOutput{initErr: errors.New("no device")}, nil)
	err := p.Open()
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if p.Play(CueBell) {
		t.Error("Play on a failed player succeeded")
	}
}

func TestServiceDegradesWithoutDevice(t *testing.T) {
	s := NewService(DefaultConfig(), nil)
	s.out = &fakeOutput{initErr: errors.New("no device")}

	if err := s.Init(MuteOption(false)); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start must not fail without a device: %v", err)
	}
	if s.Player().IsOpen() {
		t.Error("player open without a device")
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
}

func TestServiceMuteOption(t *testing.T) {
	s := NewService(DefaultConfig(), nil)
	s.out = &fakeOutput{}
	if err := s.Init(MuteOption(true)); err != nil {
		t.Fatal(err)
	}
	if !s.Player().Muted() {
		t.Error("MuteOption(true) left the player unmuted")
	}
}

func TestServiceDisabledSkipsDevice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	s := NewService(cfg, nil)
	out := &fakeOutput{initErr: errors.New("must not be called")}
	s.out = out
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Player().IsOpen() || out.inits != 0 {
		t.Error("disabled service opened the output")
	}
	if s.Player().Play(CueBell) {
		t.Error("disabled service played a cue")
	}
}
