// Package layout assigns fallback positions to diagram nodes that were
// declared without explicit coordinates.
//
// Positions follow a widening spiral around a fixed center. A [Spiral] holds
// the angle accumulator for one parse pass; create a fresh one per parse so
// repeated or concurrent parses cannot interfere:
//
//	s := layout.NewSpiral(layout.DefaultConfig())
//	x, y := s.Next() // first auto-placed node
//	x, y = s.Next()  // second, further out
//
// The sequence depends only on how many nodes were placed before. Inserting
// a coordinate-less node early in a document therefore shifts every later
// auto-placed node; this is expected behavior.
package layout

import "math"

// Default spiral parameters.
const (
	DefaultCenterX    = 400.0
	DefaultCenterY    = 300.0
	DefaultBaseRadius = 80.0
	DefaultStep       = 0.5  // radians per placed node
	DefaultGrowth     = 25.0 // radius pixels per radian of accumulated angle
)

// Config holds the spiral parameters.
type Config struct {
	CenterX    float64 `toml:"center_x" json:"center_x"`
	CenterY    float64 `toml:"center_y" json:"center_y"`
	BaseRadius float64 `toml:"base_radius" json:"base_radius"`
	Step       float64 `toml:"step" json:"step"`
	Growth     float64 `toml:"growth" json:"growth"`

	// CenterSet marks CenterX and CenterY as chosen, so a zero center is
	// kept instead of replaced by the default.
	CenterSet bool `toml:"-" json:"-"`
}

// DefaultConfig returns the default spiral parameters.
func DefaultConfig() Config {
	return Config{
		CenterX:    DefaultCenterX,
		CenterY:    DefaultCenterY,
		BaseRadius: DefaultBaseRadius,
		Step:       DefaultStep,
		Growth:     DefaultGrowth,
		CenterSet:  true,
	}
}

// WithDefaults fills unset fields from DefaultConfig. Zero means unset for
// every field, except the center when CenterSet is true; BaseRadius, Step
// and Growth must also be positive.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if !c.CenterSet {
		if c.CenterX == 0 {
			c.CenterX = d.CenterX
		}
		if c.CenterY == 0 {
			c.CenterY = d.CenterY
		}
		c.CenterSet = true
	}
	if c.BaseRadius <= 0 {
		c.BaseRadius = d.BaseRadius
	}
	if c.Step <= 0 {
		c.Step = d.Step
	}
	if c.Growth <= 0 {
		c.Growth = d.Growth
	}
	return c
}

// Spiral generates deterministic fallback positions for one parse pass.
// It is not safe for concurrent use.
type Spiral struct {
	cfg   Config
	angle float64
	count int
}

// NewSpiral creates a spiral with its angle accumulator at zero.
func NewSpiral(cfg Config) *Spiral {
	return &Spiral{cfg: cfg.WithDefaults()}
}

// Next advances the angle by one step and returns the rounded position at
// the new angle. The radius grows linearly with the accumulated angle, so
// consecutive positions never coincide.
func (s *Spiral) Next() (x, y float64) {
	s.angle += s.cfg.Step
	s.count++
	r := s.cfg.BaseRadius + s.cfg.Growth*s.angle
	x = math.Round(s.cfg.CenterX + r*math.Cos(s.angle))
	y = math.Round(s.cfg.CenterY + r*math.Sin(s.angle))
	return x, y
}

// Placed returns how many positions have been generated.
func (s *Spiral) Placed() int { return s.count }

// Angle returns the accumulated angle in radians.
func (s *Spiral) Angle() float64 { return s.angle }
