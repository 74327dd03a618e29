package viz

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

// TrajectoryCanvas draws every recorded track on a w x h cell canvas and
// marks the final positions. The window is sized from all recorded
// positions, not just the first. It returns nil for an empty recording.
func TrajectoryCanvas(rec *storage.Recording, display sim.Display, w, h int) *Canvas {
	if rec.Len() == 0 {
		return nil
	}
	scale := display.Scale
	if scale <= 0 {
		scale = 1.1
	}

	all := make([]r2.Vec, 0, rec.Len()*len(rec.Labels))
	for _, p := range rec.Positions {
		all = append(all, p...)
	}
	vp := NewViewport(all, scale)

	trails := make([][]r2.Vec, len(rec.Labels))
	for i := range trails {
		trails[i] = rec.Track(i)
	}

	c := NewCanvas(w, h)
	Draw(c, vp, rec.Positions[rec.Len()-1], trails, display.PointSizes)
	return c
}

// PlotTrajectories renders TrajectoryCanvas with body colours.
func PlotTrajectories(rec *storage.Recording, display sim.Display, w, h int) string {
	c := TrajectoryCanvas(rec, display, w, h)
	if c == nil {
		return ""
	}
	return c.Render(func(i int) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(CurrentTheme.BodyColor(i, display.PointColors))
	})
}

// SeparationChart plots the distance between bodies i and j over time.
func SeparationChart(rec *storage.Recording, i, j, w, h int) string {
	n := len(rec.Labels)
	if rec.Len() < 2 || i < 0 || j < 0 || i >= n || j >= n {
		return ""
	}
	d := make([]float64, rec.Len())
	for k, p := range rec.Positions {
		d[k] = r2.Norm(r2.Sub(p[i], p[j]))
	}
	caption := fmt.Sprintf("|%s - %s| (m)", name(rec.Labels, i), name(rec.Labels, j))
	return asciigraph.Plot(d, asciigraph.Height(h), asciigraph.Width(w), asciigraph.Caption(caption))
}

func name(labels []string, i int) string {
	if labels[i] != "" {
		return labels[i]
	}
	return fmt.Sprintf("body%d", i)
}
