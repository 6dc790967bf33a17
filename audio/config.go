package audio

import "time"

// Config controls the navigation and countdown cues
type Config struct {
	Enabled      bool          `yaml:"enabled"`
	Volume       float64       `yaml:"volume"` // master, 0..1
	WhooshVolume float64       `yaml:"whoosh_volume"`
	BellVolume   float64       `yaml:"bell_volume"`
	SampleRate   int           `yaml:"sample_rate"`
	Buffer       time.Duration `yaml:"buffer"`
}

// DefaultConfig returns quiet cues, enabled
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		Volume:       0.5,
		WhooshVolume: 0.4,
		BellVolume:   0.6,
		SampleRate:   44100,
		Buffer:       100 * time.Millisecond,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
