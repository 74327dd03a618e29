package metrics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

// Stability is the fraction of steps in which every body stayed within
// threshold metres of the centre of mass.
type Stability struct {
	name       string
	threshold  float64
	factor     float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

// NewBoundStability sets the threshold at Start to factor times the largest
// initial distance from the centre of mass, so it fits any system's scale.
func NewBoundStability(factor float64) *Stability {
	return &Stability{
		name:   "stability",
		factor: factor,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Threshold() float64 { return s.threshold }

func (s *Stability) Start(bodies []*physics.Body) {
	if s.factor > 0 {
		s.threshold = s.factor * spread(bodies)
	}
}

func (s *Stability) OnSnapshot(_ sim.Snapshot, bodies []*physics.Body) {
	s.samples++
	if s.threshold <= 0 {
		return
	}
	com, _ := physics.CenterOfMass(bodies)
	for _, b := range bodies {
		if r2.Norm(r2.Sub(b.Position, com)) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// spread is the largest distance of any body from the centre of mass.
func spread(bodies []*physics.Body) float64 {
	com, _ := physics.CenterOfMass(bodies)
	d := 0.0
	for _, b := range bodies {
		if r := r2.Norm(r2.Sub(b.Position, com)); r > d {
			d = r
		}
	}
	return d
}
