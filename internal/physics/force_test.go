package physics

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/dynamo"
)

func TestNetForce_IdenticalBodiesAttract(t *testing.T) {
	a := NewBody("twin", r2.Vec{X: 0, Y: 0}, r2.Vec{}, 1e10)
	b := NewBody("twin", r2.Vec{X: 1, Y: 0}, r2.Vec{}, 1e10)
	c := b.Clone()

	// b and c hold identical fields; each must still pull on a.
	ff := NewForceField()
	bodies := []*Body{a, b}
	fa, err := ff.NetForce(0, bodies)
	if err != nil {
		t.Fatalf("NetForce failed: %v", err)
	}
	if fa.X <= 0 {
		t.Errorf("expected a to be pulled towards +x, got %v", fa)
	}

	bodies = []*Body{a, b, c}
	if *b != *c {
		t.Fatalf("test setup: b and c should hold identical fields")
	}
	fa3, err := ff.NetForce(0, bodies)
	if err != nil {
		t.Fatalf("NetForce failed: %v", err)
	}
	if math.Abs(fa3.X-2*fa.X) > 1e-12*math.Abs(fa.X) {
		t.Errorf("identical bodies should each contribute: got %g, want %g", fa3.X, 2*fa.X)
	}
}

func TestNetForce_IdenticalStateIsSingular(t *testing.T) {
	a := NewBody("x", r2.Vec{X: 3, Y: 4}, r2.Vec{X: 1}, 5)
	b := NewBody("x", r2.Vec{X: 3, Y: 4}, r2.Vec{X: 1}, 5)

	ff := NewForceField()
	_, err := ff.NetForce(0, []*Body{a, b})
	if !errors.Is(err, dynamo.ErrNumericalSingularity) {
		t.Fatalf("expected ErrNumericalSingularity, got %v", err)
	}

	var pe *dynamo.PairError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PairError, got %T", err)
	}
	if pe.Target != 0 || pe.Other != 1 {
		t.Errorf("expected pair (0, 1), got (%d, %d)", pe.Target, pe.Other)
	}
}

func TestNetForce_InverseSquare(t *testing.T) {
	tests := []struct {
		name string
		r    float64
	}{
		{"unit", 1},
		{"earth-moon", 3.844e8},
		{"close", 1e-3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m1, m2 := 5.972e24, 7.342e22
			a := NewBody("a", r2.Vec{}, r2.Vec{}, m1)
			b := NewBody("b", r2.Vec{X: tt.r}, r2.Vec{}, m2)

			f, err := NewForceField().NetForce(0, []*Body{a, b})
			if err != nil {
				t.Fatalf("NetForce failed: %v", err)
			}

			want := G * m1 * m2 / (tt.r * tt.r)
			if math.Abs(f.X-want)/want > 1e-12 {
				t.Errorf("force = %g, want %g", f.X, want)
			}
			if f.Y != 0 {
				t.Errorf("expected no y component, got %g", f.Y)
			}
		})
	}
}

func TestNetForce_OutOfRange(t *testing.T) {
	ff := NewForceField()
	if _, err := ff.NetForce(2, []*Body{NewBody("", r2.Vec{}, r2.Vec{}, 1)}); err == nil {
		t.Error("expected error for out-of-range target")
	}
}

func TestForces_MatchNetForce(t *testing.T) {
	bodies := []*Body{
		NewBody("a", r2.Vec{X: 0, Y: 0}, r2.Vec{}, 3e20),
		NewBody("b", r2.Vec{X: 1e6, Y: 2e5}, r2.Vec{}, 1e19),
		NewBody("c", r2.Vec{X: -4e5, Y: 7e5}, r2.Vec{}, 5e18),
		NewBody("d", r2.Vec{X: 2e5, Y: -9e5}, r2.Vec{}, 8e20),
	}

	ff := NewForceField()
	all, err := ff.Forces(bodies, nil)
	if err != nil {
		t.Fatalf("Forces failed: %v", err)
	}

	for i := range bodies {
		f, err := ff.NetForce(i, bodies)
		if err != nil {
			t.Fatalf("NetForce(%d) failed: %v", i, err)
		}
		scale := r2.Norm(f)
		if r2.Norm(r2.Sub(f, all[i])) > 1e-9*scale {
			t.Errorf("body %d: Forces=%v NetForce=%v", i, all[i], f)
		}
	}
}

func TestForces_NewtonsThirdLaw(t *testing.T) {
	bodies := []*Body{
		NewBody("a", r2.Vec{X: 1, Y: 2}, r2.Vec{}, 7e9),
		NewBody("b", r2.Vec{X: -3, Y: 5}, r2.Vec{}, 2e9),
		NewBody("c", r2.Vec{X: 4, Y: -1}, r2.Vec{}, 9e9),
	}

	forces, err := NewForceField().Forces(bodies, make([]r2.Vec, 1))
	if err != nil {
		t.Fatalf("Forces failed: %v", err)
	}
	if len(forces) != len(bodies) {
		t.Fatalf("expected %d forces, got %d", len(bodies), len(forces))
	}

	var sum r2.Vec
	for _, f := range forces {
		sum = r2.Add(sum, f)
	}
	if r2.Norm(sum) > 1e-15 {
		t.Errorf("net internal force should vanish, got %v", sum)
	}
}

func TestForces_Singularity(t *testing.T) {
	bodies := []*Body{
		NewBody("a", r2.Vec{X: 0}, r2.Vec{}, 1),
		NewBody("b", r2.Vec{X: 5}, r2.Vec{}, 1),
		NewBody("c", r2.Vec{X: 5}, r2.Vec{}, 1),
	}

	_, err := NewForceField().Forces(bodies, nil)
	if !errors.Is(err, dynamo.ErrNumericalSingularity) {
		t.Fatalf("expected ErrNumericalSingularity, got %v", err)
	}
}

func TestSingleBodyHasNoForce(t *testing.T) {
	b := NewBody("lonely", r2.Vec{X: 10, Y: -3}, r2.Vec{}, 1e30)
	f, err := NewForceField().NetForce(0, []*Body{b})
	if err != nil {
		t.Fatalf("NetForce failed: %v", err)
	}
	if f != (r2.Vec{}) {
		t.Errorf("expected zero force, got %v", f)
	}
}
