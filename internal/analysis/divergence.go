package analysis

import (
	"context"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

type DivergenceResult struct {
	Times         []float64
	LogSeparation []float64
	// Exponent is the least-squares slope of LogSeparation over Times,
	// in 1/s.
	Exponent float64
}

// Divergence runs cfg next to a copy whose last body is displaced by
// perturb metres along x, and fits the growth of their separation. The
// separation is the largest position difference over all bodies.
func Divergence(ctx context.Context, cfg sim.Config, perturb float64, opts ...sim.Option) (*DivergenceResult, error) {
	if math.IsInf(cfg.EndTime, 1) {
		return nil, dynamo.Invalid("end_time", "divergence needs a finite end time")
	}
	if perturb <= 0 {
		return nil, dynamo.Invalid("perturbation", "must be positive, got %g", perturb)
	}

	base, err := sim.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	shifted := cfg
	shifted.Bodies = make([]*physics.Body, len(cfg.Bodies))
	for i, b := range cfg.Bodies {
		shifted.Bodies[i] = b.Clone()
	}
	last := shifted.Bodies[len(shifted.Bodies)-1]
	last.Position = r2.Add(last.Position, r2.Vec{X: perturb})

	near, err := sim.New(shifted, opts...)
	if err != nil {
		return nil, err
	}

	res := &DivergenceResult{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		a, errA := base.Next()
		b, errB := near.Next()
		if errA == io.EOF || errB == io.EOF {
			break
		}
		if errA != nil {
			return nil, errA
		}
		if errB != nil {
			return nil, fmt.Errorf("perturbed run: %w", errB)
		}

		sep := 0.0
		for i := range a.Positions {
			sep = math.Max(sep, r2.Norm(r2.Sub(a.Positions[i], b.Positions[i])))
		}
		if sep == 0 {
			continue
		}
		res.Times = append(res.Times, a.Time)
		res.LogSeparation = append(res.LogSeparation, math.Log(sep/perturb))
	}

	if len(res.Times) >= 2 {
		_, res.Exponent = stat.LinearRegression(res.Times, res.LogSeparation, nil, false)
	}
	return res, nil
}
