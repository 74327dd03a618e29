package viz

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// Viewport is a square window [-Extent, Extent] on both axes, centred on
// the origin.
type Viewport struct {
	Extent float64
}

// NewViewport sizes the window to scale times the largest absolute
// coordinate in positions.
func NewViewport(positions []r2.Vec, scale float64) Viewport {
	if len(positions) == 0 {
		return Viewport{Extent: 1}
	}
	coords := make([]float64, 0, 2*len(positions))
	for _, p := range positions {
		coords = append(coords, math.Abs(p.X), math.Abs(p.Y))
	}
	ext := scale * floats.Max(coords)
	if ext <= 0 || math.IsNaN(ext) || math.IsInf(ext, 0) {
		ext = 1
	}
	return Viewport{Extent: ext}
}

// Zoom returns a viewport factor times closer.
func (v Viewport) Zoom(factor float64) Viewport {
	return Viewport{Extent: v.Extent / factor}
}

// Project maps p onto a w x h pixel grid with y pointing up. ok is false
// when p falls outside the window.
func (v Viewport) Project(p r2.Vec, w, h int) (x, y int, ok bool) {
	fx := (p.X + v.Extent) / (2 * v.Extent)
	fy := (v.Extent - p.Y) / (2 * v.Extent)
	x = int(math.Round(fx * float64(w-1)))
	y = int(math.Round(fy * float64(h-1)))
	ok = fx >= 0 && fx <= 1 && fy >= 0 && fy <= 1
	return x, y, ok
}
