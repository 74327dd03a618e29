package physics

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// G is the Newtonian gravitational constant in m^3 kg^-1 s^-2.
const G = 6.67408e-11

// ForceField evaluates pairwise Newtonian gravity. Every evaluation is O(n^2)
// over the body set; there is no spatial partitioning, so it suits small n.
type ForceField struct {
	G float64
}

func NewForceField() *ForceField {
	return &ForceField{G: G}
}

// NetForce returns the force exerted on bodies[target] by every other body.
// Bodies are told apart by index, so two bodies with identical fields still
// attract each other. Zero separation between distinct bodies yields an error
// wrapping dynamo.ErrNumericalSingularity.
func (f *ForceField) NetForce(target int, bodies []*Body) (r2.Vec, error) {
	if target < 0 || target >= len(bodies) {
		return r2.Vec{}, fmt.Errorf("target index %d out of range [0, %d)", target, len(bodies))
	}

	bt := bodies[target]
	var net r2.Vec
	for j, other := range bodies {
		if j == target {
			continue
		}
		force, err := f.pair(bt, other)
		if err != nil {
			return r2.Vec{}, &dynamo.PairError{Target: target, Other: j, Wrapped: err}
		}
		net = r2.Add(net, force)
	}
	return net, nil
}

// Forces fills dst with the net force on every body, computed from the
// current positions before anything is mutated. dst is resized when its
// length does not match. On error dst contents are unspecified.
func (f *ForceField) Forces(bodies []*Body, dst []r2.Vec) ([]r2.Vec, error) {
	n := len(bodies)
	if len(dst) != n {
		dst = make([]r2.Vec, n)
	}
	for i := range dst {
		dst[i] = r2.Vec{}
	}

	// Each unordered pair is evaluated once and applied with opposite signs,
	// which keeps the total momentum change exactly zero per pair.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			fij, err := f.pair(bodies[i], bodies[j])
			if err != nil {
				return dst, &dynamo.PairError{Target: i, Other: j, Wrapped: err}
			}
			dst[i] = r2.Add(dst[i], fij)
			dst[j] = r2.Sub(dst[j], fij)
		}
	}
	return dst, nil
}

// pair returns the force on a due to b.
func (f *ForceField) pair(a, b *Body) (r2.Vec, error) {
	d := r2.Sub(b.Position, a.Position)
	r := r2.Norm(d)
	if r == 0 {
		return r2.Vec{}, dynamo.ErrNumericalSingularity
	}
	return r2.Scale(f.G*a.Mass*b.Mass/(r*r*r), d), nil
}
