// Package viz renders body systems in the terminal.
//
// The live view ([Model]) is a Bubble Tea program that pulls snapshots
// from a [sim.Engine] on every tick; the engine knows nothing about it.
// Everything here is presentation: viewport sizing, colours and dot sizes
// come from the engine's display hints.
//
//   - [Canvas]: Braille pixel grid with per-cell body colours
//   - [Viewport]: square window scaled from the initial positions
//   - [PlotTrajectories]: static plot of a recorded run
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+ -   - Steps per frame
//	z Z   - Zoom in/out
//	f     - Fit view
//	c     - Toggle trails
//	t     - Cycle themes
//	?     - Help
package viz
