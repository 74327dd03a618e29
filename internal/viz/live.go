package viz

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 50
	historyCapacity = 600
	trailCapacity   = 400
	maxStepsPerTick = 4096
)

type TickMsg time.Time

// Model is the live view. It pulls snapshots from an engine on every tick
// and never touches the engine otherwise.
type Model struct {
	engine        *sim.Engine
	name          string
	labels        []string
	display       sim.Display
	width, height int
	canvas        *Canvas
	viewport      Viewport
	positions     []r2.Vec
	trails        [][]r2.Vec
	energyHistory []float64
	initialEnergy float64
	stepsPerTick  int
	running       bool
	showTrails    bool
	showHelp      bool
	done          bool
	err           error
}

// NewModel builds a live view of engine. labels name the bodies in order.
func NewModel(engine *sim.Engine, name string, labels []string) Model {
	display := engine.Display()
	if display.Scale <= 0 {
		display.Scale = sim.DefaultScale
	}
	if display.FrameInterval <= 0 {
		display.FrameInterval = sim.DefaultFrameInterval
	}

	pos := engine.Positions()
	return Model{
		engine:        engine,
		name:          name,
		labels:        labels,
		display:       display,
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		viewport:      NewViewport(pos, display.Scale),
		positions:     pos,
		trails:        make([][]r2.Vec, len(pos)),
		energyHistory: make([]float64, 0, historyCapacity),
		initialEnergy: engine.Energy(),
		stepsPerTick:  1,
		running:       true,
		showTrails:    true,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.display.FrameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "z":
			m.viewport = m.viewport.Zoom(1.25)
		case "Z":
			m.viewport = m.viewport.Zoom(0.8)
		case "f":
			m.viewport = NewViewport(m.positions, m.display.Scale)
		case "c":
			m.showTrails = !m.showTrails
			m.clearTrails()
		case "t":
			CurrentTheme = NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width-panelWidth-4, msg.Height-2)
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	w, h = max(w, 20), max(h, 10)
	if w == m.width && h == m.height {
		return
	}
	m.width, m.height = w, h
	m.canvas = NewCanvas(w, h)
}

// advance pulls up to stepsPerTick snapshots. The end of the stream and a
// failed step both stop the view; only the latter is shown as an error.
// An energy sample is taken only when at least one step was committed.
func (m *Model) advance() {
	pulled := 0
	for i := 0; i < m.stepsPerTick; i++ {
		snap, err := m.engine.Next()
		if err == io.EOF {
			m.done = true
			break
		}
		if err != nil {
			m.err = err
			m.done = true
			break
		}
		pulled++
		m.positions = snap.Positions
		if m.showTrails {
			for j, p := range snap.Positions {
				m.trails[j] = append(m.trails[j], p)
				if len(m.trails[j]) > trailCapacity {
					m.trails[j] = m.trails[j][1:]
				}
			}
		}
	}

	if pulled == 0 {
		return
	}
	m.energyHistory = append(m.energyHistory, m.engine.Energy())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

func (m *Model) clearTrails() {
	for i := range m.trails {
		m.trails[i] = m.trails[i][:0]
	}
}

// driftHistory is the relative energy drift of every recorded sample.
func (m Model) driftHistory() []float64 {
	out := make([]float64, len(m.energyHistory))
	for i, e := range m.energyHistory {
		out[i] = math.Abs((e - m.initialEnergy) / m.initialEnergy)
	}
	return out
}

func (m Model) Done() bool { return m.done }
func (m Model) Err() error { return m.err }

// DotRadius converts a size hint into a disc radius in sub-pixels.
func DotRadius(sizes []float64, i int) int {
	if i >= len(sizes) || sizes[i] <= 0 {
		return 1
	}
	return min(int(math.Sqrt(sizes[i])/9), 3)
}

// Draw renders trails and bodies onto c.
func Draw(c *Canvas, vp Viewport, positions []r2.Vec, trails [][]r2.Vec, sizes []float64) {
	c.Clear()
	sw, sh := c.SubWidth(), c.SubHeight()

	for i, trail := range trails {
		for k := 1; k < len(trail); k++ {
			x0, y0, ok0 := vp.Project(trail[k-1], sw, sh)
			x1, y1, ok1 := vp.Project(trail[k], sw, sh)
			if ok0 && ok1 {
				c.DrawLine(x0, y0, x1, y1, i)
			}
		}
	}

	for i, p := range positions {
		if x, y, ok := vp.Project(p, sw, sh); ok {
			c.Disc(x, y, DotRadius(sizes, i), i)
		}
	}
}

func (m Model) bodyStyle(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.BodyColor(i, m.display.PointColors))
}

func (m Model) View() string {
	Draw(m.canvas, m.viewport, m.positions, m.trails, m.display.PointSizes)
	canvasView := canvasStyle.Render(m.canvas.Render(m.bodyStyle))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(StatusFailed.Render("FAILED") + "\n")
		s.WriteString(valueStyle.Width(panelWidth-8).Render(m.err.Error()) + "\n")
	case m.done:
		s.WriteString(StatusDone.Render("FINISHED") + "\n")
	case !m.running:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n")
	default:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n")
	}
	s.WriteString("\n")

	t := m.engine.Time()
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(FormatDuration(t)) + "\n")
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d (x%d/frame)", m.engine.Steps(), m.stepsPerTick)) + "\n")
	if end := m.engine.EndTime(); !math.IsInf(end, 1) && end > 0 {
		s.WriteString(labelStyle.Render("Progress") + ProgressBar(t/end, 20) + "\n")
	}
	s.WriteString(labelStyle.Render("View") + valueStyle.Render(fmt.Sprintf("±%.3g m", m.viewport.Extent)) + "\n")

	if n := len(m.energyHistory); n > 0 {
		e := m.energyHistory[n-1]
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.6g J", e)) + "\n")
		if m.initialEnergy != 0 {
			drift := math.Abs((e - m.initialEnergy) / m.initialEnergy)
			s.WriteString(labelStyle.Render("Drift") + valueStyle.Render(fmt.Sprintf("%.3e", drift)) + "\n")
			if n > 1 {
				s.WriteString(labelStyle.Render("") + Sparkline(m.driftHistory(), 24) + "\n")
			}
		}
	}
	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\nBODIES\n")
	for i := range m.positions {
		label := fmt.Sprintf("body%d", i)
		if i < len(m.labels) && m.labels[i] != "" {
			label = m.labels[i]
		}
		s.WriteString(m.bodyStyle(i).Render("● ") + labelStyle.Render(label) + "\n")
	}

	help := "SP:Pause +/-:Speed Q:Quit ?:Help"
	if m.showHelp {
		help = "SP  pause/resume\n+/- steps per frame\nz/Z zoom in/out\nf   fit view\nc   toggle trails\nt   cycle theme\nq   quit"
	}
	s.WriteString(helpStyle.Render(help))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(s.String()))
}

// FormatDuration prints simulation seconds in the largest sensible unit.
func FormatDuration(seconds float64) string {
	switch {
	case seconds >= 365.25*86400:
		return fmt.Sprintf("%.2f yr", seconds/(365.25*86400))
	case seconds >= 86400:
		return fmt.Sprintf("%.2f d", seconds/86400)
	case seconds >= 3600:
		return fmt.Sprintf("%.2f h", seconds/3600)
	default:
		return fmt.Sprintf("%.2f s", seconds)
	}
}

// Run shows the live view until the user quits.
func Run(m Model) (Model, error) {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return m, err
	}
	if fm, ok := final.(Model); ok {
		return fm, nil
	}
	return m, nil
}
