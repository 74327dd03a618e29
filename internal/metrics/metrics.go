// Package metrics tracks conserved quantities of a running simulation.
//
// Every metric is a [sim.Observer]: register it with sim.WithObserver and
// call Start with the initial bodies before the first step.
package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

type Metric interface {
	sim.Observer
	Name() string
	// Start records the baseline state at t=0.
	Start(bodies []*physics.Body)
	Value() float64
	Reset()
}

// Set fans a snapshot out to several metrics.
type Set []Metric

func (s Set) Start(bodies []*physics.Body) {
	for _, m := range s {
		m.Reset()
		m.Start(bodies)
	}
}

func (s Set) OnSnapshot(snap sim.Snapshot, bodies []*physics.Body) {
	for _, m := range s {
		m.OnSnapshot(snap, bodies)
	}
}

func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

// Summary describes a sampled series.
type Summary struct {
	N      int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	s := Summary{N: len(xs), Min: floats.Min(xs), Max: floats.Max(xs)}
	if len(xs) == 1 {
		s.Mean = xs[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("n=%d min=%.6g max=%.6g mean=%.6g sd=%.3g", s.N, s.Min, s.Max, s.Mean, s.StdDev)
}
