package sim

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
)

// Engine advances a body system one fixed step per pull.
//
// An Engine is not safe for concurrent use. It is single pass: once it has
// terminated or failed, construct a new one to start over.
type Engine struct {
	bodies     []*physics.Body
	staged     []*physics.Body
	forces     []r2.Vec
	field      *physics.ForceField
	integrator *integrators.SymplecticEuler
	observers  []Observer
	display    Display
	log        logrus.FieldLogger

	step    float64
	endTime float64
	steps   int
	state   State
	err     error
}

type Option func(*Engine)

func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// WithForceField replaces the physical constant, for tests in natural units.
func WithForceField(f *physics.ForceField) Option {
	return func(e *Engine) { e.field = f }
}

// New validates cfg and returns an engine at t=0. The engine takes copies of
// the bodies; later changes to cfg.Bodies do not affect it.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := len(cfg.Bodies)
	e := &Engine{
		bodies:     make([]*physics.Body, n),
		staged:     make([]*physics.Body, n),
		forces:     make([]r2.Vec, n),
		field:      physics.NewForceField(),
		integrator: integrators.NewSymplecticEuler(),
		display:    cfg.Display,
		log:        discardLogger(),
		step:       cfg.Step,
		endTime:    cfg.EndTime,
		state:      Initialized,
	}
	for i, b := range cfg.Bodies {
		e.bodies[i] = b.Clone()
		e.staged[i] = b.Clone()
	}
	for _, opt := range opts {
		opt(e)
	}

	e.log.WithFields(logrus.Fields{
		"bodies":   n,
		"step":     e.step,
		"end_time": e.endTime,
	}).Debug("engine initialized")

	return e, nil
}

// Next computes one step and returns the updated positions. It returns
// io.EOF once the end time is reached. A failed step leaves every body
// untouched and the error is returned again on every later call.
func (e *Engine) Next() (Snapshot, error) {
	switch e.state {
	case Failed:
		return Snapshot{}, e.err
	case Terminated:
		return Snapshot{}, io.EOF
	}

	t := e.Time()
	if t >= e.endTime {
		e.state = Terminated
		e.log.WithField("t", t).WithField("steps", e.steps).Debug("end time reached")
		return Snapshot{}, io.EOF
	}

	if err := e.advance(); err != nil {
		e.state = Failed
		e.err = &dynamo.StepError{Step: e.steps + 1, Time: t, Wrapped: err}
		e.log.WithError(e.err).Warn("step failed")
		return Snapshot{}, e.err
	}

	e.steps++
	e.state = Stepping

	snap := Snapshot{Step: e.steps, Time: e.Time(), Positions: e.Positions()}
	for _, o := range e.observers {
		o.OnSnapshot(snap, e.bodies)
	}
	return snap, nil
}

// advance computes every force from the current state, integrates a staged
// copy and commits only when the staged state is finite.
func (e *Engine) advance() error {
	forces, err := e.field.Forces(e.bodies, e.forces)
	if err != nil {
		return err
	}
	e.forces = forces

	for i, b := range e.bodies {
		*e.staged[i] = *b
	}
	if err := e.integrator.Step(e.staged, e.forces, e.step); err != nil {
		return err
	}
	for i, b := range e.staged {
		if !b.IsFinite() {
			return fmt.Errorf("body %d (%s): %w", i, b.Label, dynamo.ErrSimulationDivergence)
		}
	}

	for i, b := range e.staged {
		e.bodies[i].Position = b.Position
		e.bodies[i].Velocity = b.Velocity
	}
	return nil
}

// Run pulls snapshots until the stream ends, fn returns false, a step fails
// or ctx is done. Reaching the end time is not an error.
func (e *Engine) Run(ctx context.Context, fn func(Snapshot) bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		snap, err := e.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !fn(snap) {
			return nil
		}
	}
}

// Time is the current simulation time. It is derived from the step count so
// that an end time of N*step yields exactly N snapshots.
func (e *Engine) Time() float64 { return float64(e.steps) * e.step }

func (e *Engine) Steps() int        { return e.steps }
func (e *Engine) StepSize() float64 { return e.step }
func (e *Engine) EndTime() float64  { return e.endTime }
func (e *Engine) State() State      { return e.state }
func (e *Engine) Err() error        { return e.err }
func (e *Engine) Display() Display  { return e.display }
func (e *Engine) Len() int          { return len(e.bodies) }

// Positions returns a copy of the current positions in body order.
func (e *Engine) Positions() []r2.Vec {
	pos := make([]r2.Vec, len(e.bodies))
	for i, b := range e.bodies {
		pos[i] = b.Position
	}
	return pos
}

// Bodies returns copies of the current bodies.
func (e *Engine) Bodies() []*physics.Body {
	out := make([]*physics.Body, len(e.bodies))
	for i, b := range e.bodies {
		out[i] = b.Clone()
	}
	return out
}

// Energy returns the total mechanical energy of the current state.
func (e *Engine) Energy() float64 { return e.field.Energy(e.bodies) }

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
