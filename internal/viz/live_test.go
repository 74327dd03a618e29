package viz

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

func newTestEngine(t *testing.T, end float64, bodies ...*physics.Body) *sim.Engine {
	t.Helper()
	e, err := sim.New(sim.Config{Step: 1, EndTime: end, Bodies: bodies})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func pairBodies() []*physics.Body {
	return []*physics.Body{
		physics.NewBody("a", r2.Vec{X: -1e3}, r2.Vec{Y: -1}, 1e12),
		physics.NewBody("b", r2.Vec{X: 1e3}, r2.Vec{Y: 1}, 1e12),
	}
}

func tick(m Model) Model {
	next, _ := m.Update(TickMsg(time.Now()))
	return next.(Model)
}

func TestModel_PullsUntilEnd(t *testing.T) {
	engine := newTestEngine(t, 3, pairBodies()...)
	m := NewModel(engine, "pair", []string{"a", "b"})

	for i := 0; i < 3; i++ {
		m = tick(m)
	}
	if m.Done() {
		t.Fatal("done before the end time")
	}
	if engine.Steps() != 3 {
		t.Errorf("steps = %d, want 3", engine.Steps())
	}

	m = tick(m)
	if !m.Done() || m.Err() != nil {
		t.Errorf("expected clean finish, done=%v err=%v", m.Done(), m.Err())
	}
	if len(m.trails[0]) != 3 {
		t.Errorf("trail length = %d, want 3", len(m.trails[0]))
	}
	// the tick that hit the end committed nothing and adds no sample
	if len(m.energyHistory) != 3 {
		t.Errorf("energy samples = %d, want 3", len(m.energyHistory))
	}
}

func TestModel_Pause(t *testing.T) {
	engine := newTestEngine(t, sim.Unbounded, pairBodies()...)
	m := NewModel(engine, "pair", nil)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(Model)
	m = tick(m)

	if engine.Steps() != 0 {
		t.Errorf("paused view advanced %d steps", engine.Steps())
	}
}

func TestModel_Speed(t *testing.T) {
	engine := newTestEngine(t, sim.Unbounded, pairBodies()...)
	m := NewModel(engine, "pair", nil)

	for i := 0; i < 3; i++ {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
		m = next.(Model)
	}
	m = tick(m)

	if engine.Steps() != 8 {
		t.Errorf("steps = %d, want 8", engine.Steps())
	}
}

func TestModel_Failure(t *testing.T) {
	b := pairBodies()
	b[1].Position = b[0].Position
	engine := newTestEngine(t, 10, b...)
	m := tick(NewModel(engine, "bad", nil))

	if !m.Done() || !errors.Is(m.Err(), dynamo.ErrNumericalSingularity) {
		t.Errorf("done=%v err=%v", m.Done(), m.Err())
	}
	if !strings.Contains(m.View(), "FAILED") {
		t.Error("view does not report failure")
	}
	if len(m.energyHistory) != 0 {
		t.Errorf("failed tick recorded %d energy samples", len(m.energyHistory))
	}
}

func TestModel_DriftSparkline(t *testing.T) {
	engine := newTestEngine(t, sim.Unbounded, pairBodies()...)
	m := NewModel(engine, "pair", nil)
	for i := 0; i < 5; i++ {
		m = tick(m)
	}

	drift := m.driftHistory()
	if len(drift) != 5 {
		t.Fatalf("drift samples = %d, want 5", len(drift))
	}
	if !strings.ContainsAny(m.View(), "▁▂▃▄▅▆▇") {
		t.Error("view has no drift sparkline")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1, 0.5, 0, 1}, 5); got != "▁█▄▁█" {
		t.Errorf("Sparkline = %q", got)
	}
	if got := Sparkline([]float64{5, 5, 5}, 10); got != "▁▁▁" {
		t.Errorf("flat Sparkline = %q", got)
	}
	if got := Sparkline(nil, 4); got != "────" {
		t.Errorf("empty Sparkline = %q", got)
	}
	if got := []rune(Sparkline(make([]float64, 100), 10)); len(got) != 10 {
		t.Errorf("sampled width = %d, want 10", len(got))
	}
}

func TestModel_View(t *testing.T) {
	engine := newTestEngine(t, 10, pairBodies()...)
	m := tick(NewModel(engine, "pair", []string{"alpha", "beta"}))

	v := m.View()
	for _, want := range []string{"PAIR", "alpha", "beta", "RUNNING"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{30, "30.00 s"},
		{7200, "2.00 h"},
		{86400 * 3, "3.00 d"},
		{365.25 * 86400 * 2, "2.00 yr"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
