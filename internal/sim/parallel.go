package sim

import (
	"context"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// Result is the outcome of one ensemble member.
type Result struct {
	Config      Config
	Bodies      []*physics.Body
	Steps       int
	Time        float64
	EnergyDrift float64
	Err         error
}

// Ensemble runs independent engines side by side, one goroutine each.
type Ensemble struct {
	configs []Config
	opts    []Option
	member  func(i int) []Option
}

// NewEnsemble applies opts to every member. Members run concurrently, so an
// observer or logger passed here must be safe for concurrent use; give each
// member its own with WithMemberOptions.
func NewEnsemble(configs []Config, opts ...Option) *Ensemble {
	return &Ensemble{configs: configs, opts: opts}
}

// WithMemberOptions adds the options fn returns for member i, after the
// shared ones.
func (e *Ensemble) WithMemberOptions(fn func(i int) []Option) *Ensemble {
	e.member = fn
	return e
}

// Run drives every member to its end time and returns results in config
// order. Member failures are reported per result, not as the return error.
func (e *Ensemble) Run(ctx context.Context) ([]Result, error) {
	for i, cfg := range e.configs {
		if math.IsInf(cfg.EndTime, 1) {
			return nil, dynamo.Invalid("end_time", "ensemble member %d is unbounded", i)
		}
	}

	results := make([]Result, len(e.configs))

	var wg sync.WaitGroup
	for i := range e.configs {
		opts := e.opts
		if e.member != nil {
			opts = append(append([]Option(nil), e.opts...), e.member(i)...)
		}
		wg.Add(1)
		go func(idx int, opts []Option) {
			defer wg.Done()
			results[idx] = runMember(ctx, e.configs[idx], opts)
		}(i, opts)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func runMember(ctx context.Context, cfg Config, opts []Option) Result {
	res := Result{Config: cfg}

	engine, err := New(cfg, opts...)
	if err != nil {
		res.Err = err
		return res
	}

	e0 := engine.Energy()
	res.Err = engine.Run(ctx, func(Snapshot) bool { return true })
	res.Bodies = engine.Bodies()
	res.Steps = engine.Steps()
	res.Time = engine.Time()
	if e0 != 0 {
		res.EnergyDrift = math.Abs((engine.Energy() - e0) / e0)
	}
	return res
}

// Reference returns the index of the successful member with the smallest
// step, or -1 when every member failed.
func Reference(results []Result) int {
	ref := -1
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		if ref < 0 || r.Config.Step < results[ref].Config.Step {
			ref = i
		}
	}
	return ref
}

// MaxOffset is the largest final position difference between the bodies of
// r and ref. ok is false when either failed or they differ in size.
func MaxOffset(r, ref Result) (d float64, ok bool) {
	if r.Err != nil || ref.Err != nil || len(r.Bodies) != len(ref.Bodies) {
		return 0, false
	}
	for i := range r.Bodies {
		d = math.Max(d, r2.Norm(r2.Sub(r.Bodies[i].Position, ref.Bodies[i].Position)))
	}
	return d, true
}
