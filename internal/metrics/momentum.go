package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

// MomentumDrift is the largest change in total linear momentum, relative to
// the sum of the bodies' momentum magnitudes at t=0.
type MomentumDrift struct {
	name     string
	initial  r2.Vec
	scale    float64
	maxDrift float64
	started  bool
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Start(bodies []*physics.Body) {
	m.initial = physics.Momentum(bodies)
	m.scale = 0
	for _, b := range bodies {
		m.scale += r2.Norm(b.Momentum())
	}
	m.started = true
}

func (m *MomentumDrift) OnSnapshot(_ sim.Snapshot, bodies []*physics.Body) {
	if !m.started {
		m.Start(bodies)
		return
	}
	d := r2.Norm(r2.Sub(physics.Momentum(bodies), m.initial))
	if m.scale > 0 {
		d /= m.scale
	}
	m.maxDrift = math.Max(m.maxDrift, d)
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = r2.Vec{}
	m.scale = 0
	m.maxDrift = 0
	m.started = false
}

// AngularMomentumDrift is the largest relative change in angular momentum
// about the origin.
type AngularMomentumDrift struct {
	name     string
	initial  float64
	maxDrift float64
	started  bool
}

func NewAngularMomentumDrift() *AngularMomentumDrift {
	return &AngularMomentumDrift{name: "angular_momentum_drift"}
}

func (a *AngularMomentumDrift) Name() string { return a.name }

func (a *AngularMomentumDrift) Start(bodies []*physics.Body) {
	a.initial = physics.AngularMomentum(bodies)
	a.started = true
}

func (a *AngularMomentumDrift) OnSnapshot(_ sim.Snapshot, bodies []*physics.Body) {
	if !a.started {
		a.Start(bodies)
		return
	}
	d := math.Abs(physics.AngularMomentum(bodies) - a.initial)
	if a.initial != 0 {
		d /= math.Abs(a.initial)
	}
	a.maxDrift = math.Max(a.maxDrift, d)
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = 0
	a.maxDrift = 0
	a.started = false
}
