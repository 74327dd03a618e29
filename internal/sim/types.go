package sim

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

const (
	DefaultScale         = 2.0
	DefaultFrameInterval = 5 * time.Millisecond
)

// Unbounded as an end time produces an infinite stream.
var Unbounded = math.Inf(1)

// Config is everything needed to construct an Engine.
type Config struct {
	Step    float64
	EndTime float64
	Bodies  []*physics.Body
	Display Display
}

// Display carries renderer hints. The engine never reads them; they are
// handed back unchanged through Engine.Display.
type Display struct {
	PointSizes    []float64
	PointColors   []string
	Scale         float64
	FrameInterval time.Duration
}

func DefaultDisplay() Display {
	return Display{Scale: DefaultScale, FrameInterval: DefaultFrameInterval}
}

// Validate checks the physical part of the configuration.
func (c Config) Validate() error {
	if math.IsNaN(c.Step) || math.IsInf(c.Step, 0) || c.Step <= 0 {
		return dynamo.Invalid("step", "must be positive and finite, got %g", c.Step)
	}
	if math.IsNaN(c.EndTime) || c.EndTime < 0 {
		return dynamo.Invalid("end_time", "must be non-negative or unbounded, got %g", c.EndTime)
	}
	if len(c.Bodies) == 0 {
		return dynamo.Invalid("bodies", "at least one body is required")
	}
	for i, b := range c.Bodies {
		if b == nil {
			return dynamo.Invalid("bodies", "body %d is nil", i)
		}
		if err := b.Validate(); err != nil {
			return dynamo.Invalid("bodies", "body %d (%s): %v", i, b.Label, err)
		}
	}
	return nil
}

// Snapshot is the set of body positions after one step, in body order.
type Snapshot struct {
	Step      int
	Time      float64
	Positions []r2.Vec
}

// Observer is notified after every committed step. Bodies must not be
// modified by the observer.
type Observer interface {
	OnSnapshot(snap Snapshot, bodies []*physics.Body)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(snap Snapshot, bodies []*physics.Body)

func (f ObserverFunc) OnSnapshot(snap Snapshot, bodies []*physics.Body) { f(snap, bodies) }

type State int

const (
	Initialized State = iota
	Stepping
	Terminated
	Failed
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Stepping:
		return "stepping"
	case Terminated:
		return "terminated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
