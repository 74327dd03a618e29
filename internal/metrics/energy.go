package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

// EnergyDrift is the largest relative deviation of total energy from its
// value at t=0. Series keeps every sample for plotting.
type EnergyDrift struct {
	name          string
	field         *physics.ForceField
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	started       bool
	series        []float64
}

func NewEnergyDrift(field *physics.ForceField) *EnergyDrift {
	return &EnergyDrift{
		name:  "energy_drift",
		field: field,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Start(bodies []*physics.Body) {
	e.initialEnergy = e.field.Energy(bodies)
	e.currentEnergy = e.initialEnergy
	e.series = append(e.series[:0], e.initialEnergy)
	e.started = true
}

func (e *EnergyDrift) OnSnapshot(_ sim.Snapshot, bodies []*physics.Body) {
	if !e.started {
		e.Start(bodies)
		return
	}

	energy := e.field.Energy(bodies)
	e.currentEnergy = energy
	e.series = append(e.series, energy)

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Initial() float64 { return e.initialEnergy }
func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

// Series returns the total energy at t=0 and after every step.
func (e *EnergyDrift) Series() []float64 { return e.series }

func (e *EnergyDrift) Summary() Summary { return Summarize(e.series) }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.started = false
	e.series = e.series[:0]
}
