package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Body is a point mass moving in the plane.
// Position is in metres, Velocity in m/s and Mass in kg.
type Body struct {
	Position r2.Vec
	Velocity r2.Vec
	Mass     float64
	Label    string
}

func NewBody(label string, pos, vel r2.Vec, mass float64) *Body {
	return &Body{Position: pos, Velocity: vel, Mass: mass, Label: label}
}

func (b *Body) Clone() *Body {
	c := *b
	return &c
}

// Validate reports whether the body can take part in a simulation.
func (b *Body) Validate() error {
	if math.IsNaN(b.Mass) || math.IsInf(b.Mass, 0) || b.Mass <= 0 {
		return fmt.Errorf("mass must be positive and finite, got %g", b.Mass)
	}
	if !finite(b.Position) {
		return fmt.Errorf("position must be finite, got %v", b.Position)
	}
	if !finite(b.Velocity) {
		return fmt.Errorf("velocity must be finite, got %v", b.Velocity)
	}
	return nil
}

// IsFinite reports whether position and velocity hold no NaN or Inf.
func (b *Body) IsFinite() bool {
	return finite(b.Position) && finite(b.Velocity)
}

func (b *Body) Momentum() r2.Vec {
	return r2.Scale(b.Mass, b.Velocity)
}

func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * r2.Norm2(b.Velocity)
}

func (b *Body) String() string {
	name := b.Label
	if name == "" {
		name = "body"
	}
	return fmt.Sprintf("%s{pos=(%g, %g) vel=(%g, %g) mass=%g}",
		name, b.Position.X, b.Position.Y, b.Velocity.X, b.Velocity.Y, b.Mass)
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
