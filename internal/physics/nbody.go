package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Energy returns kinetic plus gravitational potential energy of the system.
// Coincident bodies make the potential -Inf.
func (f *ForceField) Energy(bodies []*Body) float64 {
	ke := 0.0
	pe := 0.0

	for i, bi := range bodies {
		ke += bi.KineticEnergy()

		for j := i + 1; j < len(bodies); j++ {
			r := r2.Norm(r2.Sub(bodies[j].Position, bi.Position))
			if r == 0 {
				return math.Inf(-1)
			}
			pe -= f.G * bi.Mass * bodies[j].Mass / r
		}
	}

	return ke + pe
}

// Momentum returns the total linear momentum.
func Momentum(bodies []*Body) r2.Vec {
	var p r2.Vec
	for _, b := range bodies {
		p = r2.Add(p, b.Momentum())
	}
	return p
}

// AngularMomentum returns the z component of the total angular momentum
// about the origin.
func AngularMomentum(bodies []*Body) float64 {
	L := 0.0
	for _, b := range bodies {
		L += b.Mass * r2.Cross(b.Position, b.Velocity)
	}
	return L
}

// CenterOfMass returns the mass-weighted mean position and the total mass.
func CenterOfMass(bodies []*Body) (r2.Vec, float64) {
	var c r2.Vec
	total := 0.0
	for _, b := range bodies {
		c = r2.Add(c, r2.Scale(b.Mass, b.Position))
		total += b.Mass
	}
	if total == 0 {
		return r2.Vec{}, 0
	}
	return r2.Scale(1/total, c), total
}

// CircularVelocity returns the velocity that puts b on a circular orbit
// around central, counter-clockwise, relative to central's own velocity.
func CircularVelocity(central, b *Body, g float64) r2.Vec {
	d := r2.Sub(b.Position, central.Position)
	r := r2.Norm(d)
	if r == 0 {
		return central.Velocity
	}
	v := math.Sqrt(g * central.Mass / r)
	tangent := r2.Vec{X: -d.Y / r, Y: d.X / r}
	return r2.Add(central.Velocity, r2.Scale(v, tangent))
}
