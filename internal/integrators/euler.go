package integrators

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/physics"
)

// SymplecticEuler is the semi-implicit Euler scheme: velocity is updated
// from the force first, then position from the updated velocity.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (e *SymplecticEuler) Name() string { return "symplectic-euler" }

// Advance moves b forward by dt under a constant force.
func (e *SymplecticEuler) Advance(b *physics.Body, force r2.Vec, dt float64) {
	b.Velocity = r2.Add(b.Velocity, r2.Scale(dt/b.Mass, force))
	b.Position = r2.Add(b.Position, r2.Scale(dt, b.Velocity))
}

// Step advances every body with its own force. forces must be index-aligned
// with bodies and computed before the call.
func (e *SymplecticEuler) Step(bodies []*physics.Body, forces []r2.Vec, dt float64) error {
	if len(forces) != len(bodies) {
		return fmt.Errorf("integrators: %d forces for %d bodies", len(forces), len(bodies))
	}
	for i, b := range bodies {
		e.Advance(b, forces[i], dt)
	}
	return nil
}
