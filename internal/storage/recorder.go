package storage

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

// Recording is a trajectory: positions of every body at each sampled time.
type Recording struct {
	Labels    []string
	Times     []float64
	Positions [][]r2.Vec
}

// Len is the number of samples.
func (r *Recording) Len() int { return len(r.Times) }

// Track returns the path of body i.
func (r *Recording) Track(i int) []r2.Vec {
	out := make([]r2.Vec, len(r.Positions))
	for k, p := range r.Positions {
		out[k] = p[i]
	}
	return out
}

// Recorder is a sim.Observer that keeps every stride-th snapshot.
type Recorder struct {
	rec    Recording
	stride int
}

func NewRecorder(stride int) *Recorder {
	if stride < 1 {
		stride = 1
	}
	return &Recorder{stride: stride}
}

// Start stores the initial positions as the sample at t=0.
func (r *Recorder) Start(bodies []*physics.Body) {
	r.rec = Recording{Labels: make([]string, len(bodies))}
	pos := make([]r2.Vec, len(bodies))
	for i, b := range bodies {
		r.rec.Labels[i] = b.Label
		pos[i] = b.Position
	}
	r.rec.Times = append(r.rec.Times, 0)
	r.rec.Positions = append(r.rec.Positions, pos)
}

func (r *Recorder) OnSnapshot(snap sim.Snapshot, _ []*physics.Body) {
	if snap.Step%r.stride != 0 {
		return
	}
	r.rec.Times = append(r.rec.Times, snap.Time)
	r.rec.Positions = append(r.rec.Positions, snap.Positions)
}

func (r *Recorder) Recording() *Recording { return &r.rec }
