package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

const (
	DefaultStep    = 86400.0
	DefaultEndTime = 365 * 86400.0
)

// System is the on-disk description of a body system.
type System struct {
	Name    string        `yaml:"name"`
	Step    float64       `yaml:"step"`
	EndTime EndTime       `yaml:"end_time"`
	Bodies  []BodyConfig  `yaml:"bodies"`
	Display DisplayConfig `yaml:"display,omitempty"`
}

type BodyConfig struct {
	Label    string     `yaml:"label"`
	Position [2]float64 `yaml:"position,flow"`
	Velocity [2]float64 `yaml:"velocity,flow"`
	Mass     float64    `yaml:"mass"`

	// Orbits names an earlier body. The velocity above is then taken
	// relative to a circular orbit around it.
	Orbits string `yaml:"orbits,omitempty"`

	Color string  `yaml:"color,omitempty"`
	Size  float64 `yaml:"size,omitempty"`
}

type DisplayConfig struct {
	Scale           float64 `yaml:"scale,omitempty"`
	FrameIntervalMs float64 `yaml:"frame_interval_ms,omitempty"`
}

// EndTime is a simulation end time that also accepts "inf" in YAML.
type EndTime float64

func (e EndTime) Unbounded() bool { return math.IsInf(float64(e), 1) }

func (e EndTime) String() string {
	if e.Unbounded() {
		return "inf"
	}
	return strconv.FormatFloat(float64(e), 'g', -1, 64)
}

func (e *EndTime) UnmarshalYAML(node *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(node.Value)) {
	case "inf", "+inf", ".inf", "infinity", "unbounded", "never":
		*e = EndTime(math.Inf(1))
		return nil
	}
	var f float64
	if err := node.Decode(&f); err != nil {
		return fmt.Errorf("end_time: %w", err)
	}
	*e = EndTime(f)
	return nil
}

func (e EndTime) MarshalYAML() (interface{}, error) {
	if e.Unbounded() {
		return "inf", nil
	}
	return float64(e), nil
}

// ParseEndTime accepts the same spellings as the YAML field.
func ParseEndTime(s string) (EndTime, error) {
	var e EndTime
	err := e.UnmarshalYAML(&yaml.Node{Kind: yaml.ScalarNode, Value: s})
	return e, err
}

func DefaultSystem() *System {
	return &System{
		Name:    "system",
		Step:    DefaultStep,
		EndTime: DefaultEndTime,
	}
}

func Load(path string) (*System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*System, error) {
	sys := DefaultSystem()
	if err := yaml.Unmarshal(data, sys); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return sys, nil
}

func Save(path string, sys *System) error {
	data, err := yaml.Marshal(sys)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildBodies builds the physical bodies in file order, resolving orbits.
func (s *System) BuildBodies() ([]*physics.Body, error) {
	bodies := make([]*physics.Body, len(s.Bodies))
	index := make(map[string]int, len(s.Bodies))

	for i, bc := range s.Bodies {
		b := physics.NewBody(bc.Label,
			r2.Vec{X: bc.Position[0], Y: bc.Position[1]},
			r2.Vec{X: bc.Velocity[0], Y: bc.Velocity[1]},
			bc.Mass)

		if bc.Orbits != "" {
			c, ok := index[bc.Orbits]
			if !ok {
				return nil, dynamo.Invalid("bodies", "body %d (%s) orbits %q, which is not listed before it", i, bc.Label, bc.Orbits)
			}
			b.Velocity = r2.Add(b.Velocity, physics.CircularVelocity(bodies[c], b, physics.G))
		}

		bodies[i] = b
		if bc.Label != "" {
			index[bc.Label] = i
		}
	}
	return bodies, nil
}

// EngineConfig converts the file into an engine configuration. The result
// is not validated; sim.New does that.
func (s *System) EngineConfig() (sim.Config, error) {
	bodies, err := s.BuildBodies()
	if err != nil {
		return sim.Config{}, err
	}
	return sim.Config{
		Step:    s.Step,
		EndTime: float64(s.EndTime),
		Bodies:  bodies,
		Display: s.DisplayHints(),
	}, nil
}

// DisplayHints returns renderer hints with defaults filled in. Per-body
// sizes and colours are only set when at least one body carries one.
func (s *System) DisplayHints() sim.Display {
	d := sim.DefaultDisplay()
	if s.Display.Scale > 0 {
		d.Scale = s.Display.Scale
	}
	if s.Display.FrameIntervalMs > 0 {
		d.FrameInterval = time.Duration(s.Display.FrameIntervalMs * float64(time.Millisecond))
	}

	var hasColor, hasSize bool
	for _, b := range s.Bodies {
		hasColor = hasColor || b.Color != ""
		hasSize = hasSize || b.Size > 0
	}
	if hasColor {
		d.PointColors = make([]string, len(s.Bodies))
		for i, b := range s.Bodies {
			d.PointColors[i] = b.Color
		}
	}
	if hasSize {
		d.PointSizes = make([]float64, len(s.Bodies))
		for i, b := range s.Bodies {
			d.PointSizes[i] = b.Size
		}
	}
	return d
}

// Labels returns body labels in order, numbering unlabelled bodies.
func (s *System) Labels() []string {
	labels := make([]string, len(s.Bodies))
	for i, b := range s.Bodies {
		labels[i] = b.Label
		if labels[i] == "" {
			labels[i] = fmt.Sprintf("body%d", i)
		}
	}
	return labels
}
