// Package physics provides the point-mass model and Newtonian gravity.
//
//   - [Body]: mutable point mass with position, velocity, mass and label
//   - [ForceField]: pairwise gravitational force evaluation
//
// Bodies are identified by their index in the slice handed to a
// [ForceField]; equal field values never make two bodies the same body.
//
// # Conservation
//
// Closed systems conserve momentum and, approximately, energy:
//
//	ff := physics.NewForceField()
//	e0 := ff.Energy(bodies)
//	p0 := physics.Momentum(bodies)
package physics
