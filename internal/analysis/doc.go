// Package analysis extracts orbital characteristics from simulated runs.
//
//   - [Period]: dominant period of a uniformly sampled series
//   - [Divergence]: growth rate of the separation between two nearby
//     trajectories of the same system
//
// # Chaos Detection
//
// A clearly positive divergence exponent indicates chaotic motion:
//
//	res, err := analysis.Divergence(ctx, cfg, 1e3)
//	if err == nil && res.Exponent > 0 {
//	    // nearby trajectories separate exponentially
//	}
package analysis
