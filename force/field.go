package force

import (
	"math"
	"time"
)

const (
	minNormalizedDistance = 0.1
	speedGain             = 0.2
	maxSpeedMultiplier    = 2.0
	baseIntensityFloor    = 0.5
	timeScale             = 0.002 // per millisecond
	waveDistanceScale     = 0.1
	secondWaveFrequency   = 1.5
	secondWaveAmplitude   = 0.4
	flowSpeedThreshold    = 0.1
	flowAmplitude         = 0.5
)

// Force is the displacement the field wants for a glyph this frame
type Force struct {
	X, Y      float64
	Intensity float64 // base intensity; zero when gated out
}

// Field evaluates the proximity force around the pointer
type Field struct {
	radius   float64
	radiusSq float64
}

// NewField creates a field with force radius r
func NewField(r float64) Field {
	return Field{radius: r, radiusSq: r * r}
}

// Radius returns the force radius
func (f Field) Radius() float64 {
	return f.radius
}

// Evaluate computes the bounded displacement for a glyph resting at (gx, gy)
// The returned bool is the glyph's active flag for this frame
// A pointer that is outside or has never been sampled exerts no force
func (f Field) Evaluate(gx, gy, maxDis float64, p *Tracker, now time.Time) (Force, bool) {
	if !p.Inside || !p.sampled {
		return Force{}, false
	}

	dx := gx - p.X
	dy := gy - p.Y
	distSq := dx*dx + dy*dy
	if distSq > f.radiusSq {
		return Force{}, false
	}

	dist := math.Sqrt(distSq)

	n := dist / f.radius
	if n < minNormalizedDistance {
		n = minNormalizedDistance
	}
	falloff := (1 - n) * (1 - n)

	speedMult := p.Speed * speedGain
	if speedMult > maxSpeedMultiplier {
		speedMult = maxSpeedMultiplier
	}
	base := falloff * (baseIntensityFloor + speedMult)

	t := float64(now.UnixMilli()) * timeScale
	w := dist * waveDistanceScale
	wave1 := math.Sin(t+w) * base
	wave2 := math.Cos(t+w*secondWaveFrequency) * base * secondWaveAmplitude

	var flowX, flowY float64
	if p.Speed > flowSpeedThreshold {
		flowX = p.VX / p.Speed * base * flowAmplitude
		flowY = p.VY / p.Speed * base * flowAmplitude
	}

	fx := flowX + wave2
	fy := wave1 + flowY

	limit := maxDis * 2
	if fx > limit {
		fx = limit
	} else if fx < -limit {
		fx = -limit
	}
	if fy > limit {
		fy = limit
	} else if fy < -limit {
		fy = -limit
	}

	return Force{X: fx, Y: fy, Intensity: base}, true
}
