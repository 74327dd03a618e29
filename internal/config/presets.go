package config

import (
	"math"
	"sort"

	"github.com/san-kum/gravsim/internal/physics"
)

const (
	AU  = 1.496e11
	Day = 86400.0
)

var Presets = map[string]func() *System{
	"solar":      solar,
	"earth-moon": earthMoon,
	"binary":     binary,
}

// Inner solar system with the moon, integrated daily with no end time.
func solar() *System {
	return &System{
		Name:    "solar",
		Step:    Day,
		EndTime: EndTime(math.Inf(1)),
		Bodies: []BodyConfig{
			{Label: "sun", Mass: 1.9885e30, Color: "#bfbf00", Size: 750},
			{Label: "mercury", Position: [2]float64{0.387 * AU, 0}, Velocity: [2]float64{0, 47362}, Mass: 3.3011e23, Color: "#ffa500", Size: 50},
			{Label: "venus", Position: [2]float64{0.723 * AU, 0}, Velocity: [2]float64{0, 35020}, Mass: 4.8675e24, Color: "#0000ff", Size: 75},
			{Label: "earth", Position: [2]float64{AU, 0}, Velocity: [2]float64{0, 29780}, Mass: 5.97237e24, Color: "#00bfbf", Size: 150},
			{Label: "mars", Position: [2]float64{1.523 * AU, 0}, Velocity: [2]float64{0, 24007}, Mass: 6.4171e23, Color: "#ff0000", Size: 125},
			{Label: "moon", Position: [2]float64{AU + 384399e3, 0}, Velocity: [2]float64{0, 29780 + 1022}, Mass: 7.342e22, Color: "#808080", Size: 30},
		},
		Display: DisplayConfig{Scale: 2, FrameIntervalMs: 3.5},
	}
}

// Earth and moon from rest-frame earth, one sidereal month at one-minute steps.
func earthMoon() *System {
	return &System{
		Name:    "earth-moon",
		Step:    60,
		EndTime: EndTime(27.3 * Day),
		Bodies: []BodyConfig{
			{Label: "earth", Mass: 5.972e24, Color: "#00bfbf", Size: 150},
			{Label: "moon", Position: [2]float64{3.844e8, 0}, Velocity: [2]float64{0, 1022}, Mass: 7.342e22, Color: "#808080", Size: 30},
		},
		Display: DisplayConfig{Scale: 1.5},
	}
}

// Two equal stars on a shared circular orbit about the origin.
func binary() *System {
	const (
		m = 1e30
		r = 1e11
	)
	v := math.Sqrt(physics.G * m / (4 * r))
	return &System{
		Name:    "binary",
		Step:    3600,
		EndTime: EndTime(365 * Day),
		Bodies: []BodyConfig{
			{Label: "a", Position: [2]float64{-r, 0}, Velocity: [2]float64{0, -v}, Mass: m, Color: "#ff8700", Size: 200},
			{Label: "b", Position: [2]float64{r, 0}, Velocity: [2]float64{0, v}, Mass: m, Color: "#5fafff", Size: 200},
		},
		Display: DisplayConfig{Scale: 1.5},
	}
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *System {
	mk, ok := Presets[name]
	if !ok {
		return nil
	}
	return mk()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
