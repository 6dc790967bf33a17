package force

// Geometry is the rest placement of a glyph as reported by the layout
type Geometry struct {
	X, Y float64 // centre, surface units
	Size float64 // drives the maximum displacement
}

// Target is the capability a layout adapter exposes for one glyph
// The animator never touches presentation APIs beyond these calls
type Target interface {
	// Geometry returns the rest placement; ok=false means no valid position yet
	Geometry() (g Geometry, ok bool)
	// ApplyDisplacement sets the visual translation relative to rest
	ApplyDisplacement(dx, dy float64)
	// ClearDisplacement puts the glyph back at rest
	ClearDisplacement()
}

// Marker is optionally implemented by targets that can show debug state
type Marker interface {
	MarkForced(forced bool)
}

// Phase is the implicit per-glyph state
type Phase uint8

const (
	AtRest Phase = iota
	Forced
	Returning
)

func (p Phase) String() string {
	switch p {
	case Forced:
		return "forced"
	case Returning:
		return "returning"
	default:
		return "rest"
	}
}

// glyph is the animator-owned record for one target
type glyph struct {
	target Target

	x, y   float64
	valid  bool
	maxDis float64

	dx, dy float64
	active bool
	phase  Phase
	marked bool

	// cell in the spatial grid, -1 when not indexed
	cell int
}

// GlyphState is a read-only copy of a glyph for debugging and tests
type GlyphState struct {
	X, Y            float64
	DX, DY          float64
	MaxDisplacement float64
	Valid           bool
	Active          bool
	Phase           Phase
}

func (g *glyph) state() GlyphState {
	return GlyphState{
		X:               g.x,
		Y:               g.y,
		DX:              g.dx,
		DY:              g.dy,
		MaxDisplacement: g.maxDis,
		Valid:           g.valid,
		Active:          g.active,
		Phase:           g.phase,
	}
}

// refresh re-reads the rest geometry from the target
// A zero on either axis counts as no position, as for a glyph the layout has not placed yet
func (g *glyph) refresh(maxForce float64) {
	geo, ok := g.target.Geometry()
	if !ok || geo.X == 0 || geo.Y == 0 {
		g.valid = false
		return
	}
	g.x, g.y = geo.X, geo.Y
	g.maxDis = geo.Size * maxForce
	g.valid = true
}
