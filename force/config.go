package force

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every Config.Validate failure
var ErrInvalidConfig = errors.New("invalid force config")

// Config holds the animator constants; fixed once the animator is built
type Config struct {
	ForceRadius       float64       `yaml:"force_radius"`       // surface units
	MaxForce          float64       `yaml:"max_force"`          // fraction of glyph size
	VelocitySmoothing float64       `yaml:"velocity_smoothing"` // weight of the newest sample
	ReturnSpeed       float64       `yaml:"return_speed"`       // per-frame decay fraction
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	IdleFrameSkip     int           `yaml:"idle_frame_skip"` // 1 of N frames runs while idle
	Epsilon           float64       `yaml:"epsilon"`
	PrecheckFactor    float64       `yaml:"precheck_factor"`
	GridThreshold     int           `yaml:"grid_threshold"` // glyph count that switches to the grid path
}

// DefaultConfig returns the tuned defaults
func DefaultConfig() Config {
	return Config{
		ForceRadius:       80,
		MaxForce:          1.2,
		VelocitySmoothing: 0.3,
		ReturnSpeed:       0.1,
		IdleTimeout:       500 * time.Millisecond,
		IdleFrameSkip:     5,
		Epsilon:           0.1,
		PrecheckFactor:    1.5,
		GridThreshold:     256,
	}
}

// Validate reports the first out-of-range constant
func (c Config) Validate() error {
	switch {
	case c.ForceRadius <= 0:
		return fmt.Errorf("%w: force_radius must be positive, got %v", ErrInvalidConfig, c.ForceRadius)
	case c.MaxForce <= 0:
		return fmt.Errorf("%w: max_force must be positive, got %v", ErrInvalidConfig, c.MaxForce)
	case c.VelocitySmoothing <= 0 || c.VelocitySmoothing > 1:
		return fmt.Errorf("%w: velocity_smoothing must be in (0,1], got %v", ErrInvalidConfig, c.VelocitySmoothing)
	case c.ReturnSpeed <= 0 || c.ReturnSpeed > 1:
		return fmt.Errorf("%w: return_speed must be in (0,1], got %v", ErrInvalidConfig, c.ReturnSpeed)
	case c.IdleTimeout <= 0:
		return fmt.Errorf("%w: idle_timeout must be positive, got %v", ErrInvalidConfig, c.IdleTimeout)
	case c.IdleFrameSkip < 1:
		return fmt.Errorf("%w: idle_frame_skip must be at least 1, got %d", ErrInvalidConfig, c.IdleFrameSkip)
	case c.Epsilon <= 0:
		return fmt.Errorf("%w: epsilon must be positive, got %v", ErrInvalidConfig, c.Epsilon)
	case c.PrecheckFactor < 1:
		return fmt.Errorf("%w: precheck_factor must be >= 1, got %v", ErrInvalidConfig, c.PrecheckFactor)
	}
	return nil
}
