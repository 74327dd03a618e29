package export

import (
	"fmt"
	"os"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
)

const background = "#0a0a0a"

// CanvasToSVG converts a Braille canvas to SVG format. Cells drawn by a
// body take that body's colour from colors.
func CanvasToSVG(canvas *viz.Canvas, scale float64, colors []string) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	dotRadius := scale * 0.4

	for y := 0; y < canvas.SubHeight(); y++ {
		for x := 0; x < canvas.SubWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fill := "#00ff00"
			if o := canvas.Owner[y/4][x/2]; o != viz.NoOwner && o < len(colors) && colors[o] != "" {
				fill = colors[o]
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", cx, cy, dotRadius, fill)
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoriesToSVG draws one path per body on a square, origin-centred
// plot, with a dot at each body's final position.
func TrajectoriesToSVG(rec *storage.Recording, display sim.Display, size int) string {
	if rec.Len() < 2 {
		return ""
	}

	all := make([]r2.Vec, 0, rec.Len()*len(rec.Labels))
	for _, p := range rec.Positions {
		all = append(all, p...)
	}
	scale := display.Scale
	if scale <= 0 {
		scale = 1.1
	}
	vp := viz.NewViewport(all, scale)

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, size, size, size, size, background)

	last := rec.Positions[rec.Len()-1]
	for i := range rec.Labels {
		color := bodyColor(display.PointColors, i)

		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color)
		for k, p := range rec.Track(i) {
			x, y, _ := vp.Project(p, size, size)
			if k == 0 {
				fmt.Fprintf(&sb, "%d,%d", x, y)
			} else {
				fmt.Fprintf(&sb, " L%d,%d", x, y)
			}
		}
		sb.WriteString("\"/>\n")

		x, y, _ := vp.Project(last[i], size, size)
		fmt.Fprintf(&sb, "<circle cx=\"%d\" cy=\"%d\" r=\"%d\" fill=\"%s\"><title>%s</title></circle>\n",
			x, y, viz.DotRadius(display.PointSizes, i)+2, color, rec.Labels[i])
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryCanvasSVG is the Braille trajectory plot of rec as dots, w x h
// cells with scale pixels per sub-pixel.
func TrajectoryCanvasSVG(rec *storage.Recording, display sim.Display, w, h int, scale float64) string {
	c := viz.TrajectoryCanvas(rec, display, w, h)
	if c == nil {
		return ""
	}
	colors := make([]string, len(rec.Labels))
	for i := range colors {
		colors[i] = bodyColor(display.PointColors, i)
	}
	return CanvasToSVG(c, scale, colors)
}

// WriteSVG writes svg to path.
func WriteSVG(path, svg string) error {
	return os.WriteFile(path, []byte(svg), 0644)
}

var palette = []string{"#ffd700", "#ff8c00", "#1e90ff", "#00ced1", "#ff4500", "#a9a9a9"}

func bodyColor(hints []string, i int) string {
	if i < len(hints) && hints[i] != "" {
		return hints[i]
	}
	return palette[i%len(palette)]
}
