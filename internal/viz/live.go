package viz

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dampsim/internal/dynamo"
	"github.com/san-kum/dampsim/internal/physics"
)

// DefaultInterval is the delay between replayed samples.
const DefaultInterval = 50 * time.Millisecond

const (
	liveWidth   = 48
	liveHeight  = 12
	historySpan = 120
)

type FrameMsg time.Time

// Model replays a finished trajectory, one sample per frame.
type Model struct {
	tr       *dynamo.Trajectory
	energy   *dynamo.EnergySeries
	osc      *physics.Oscillator
	frames   int
	frame    int
	interval time.Duration
	running  bool
	canvas   *Canvas
	lo, hi   float64
}

// NewModel prepares a replay of tr. Frames stop at the first non-finite
// sample. e and osc may be nil.
func NewModel(tr *dynamo.Trajectory, e *dynamo.EnergySeries, osc *physics.Oscillator, interval time.Duration) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	frames := finitePrefix(tr.X, tr.V)
	lo, hi := 0.0, 0.0
	for i := 0; i < frames; i++ {
		if i == 0 {
			lo, hi = tr.X[0], tr.X[0]
		}
		lo, hi = math.Min(lo, tr.X[i]), math.Max(hi, tr.X[i])
	}
	if osc != nil {
		eq := osc.Equilibrium()
		lo, hi = math.Min(lo, eq), math.Max(hi, eq)
	}
	if hi-lo < 1e-12 {
		lo, hi = lo-1, hi+1
	}
	return Model{
		tr:       tr,
		energy:   e,
		osc:      osc,
		frames:   frames,
		interval: interval,
		running:  frames > 1,
		canvas:   NewCanvas(liveWidth, liveHeight),
		lo:       lo,
		hi:       hi,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return FrameMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Frame is the index of the sample currently shown.
func (m Model) Frame() int { return m.frame }

func (m Model) Running() bool { return m.running }

// Update handles keys and advances the replay on every frame tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			if m.frame < m.frames-1 {
				m.running = !m.running
			}
		case "r":
			m.frame = 0
			m.running = m.frames > 1
		}
	case FrameMsg:
		if m.running {
			m.frame++
			if m.frame >= m.frames-1 {
				m.frame = max(m.frames-1, 0)
				m.running = false
			}
		}
		return m, m.tick()
	}
	return m, nil
}

// massX maps a displacement to a horizontal dot coordinate.
func (m Model) massX(x float64) int {
	cw, _ := m.canvas.Dots()
	left, right := 24, cw-6
	return left + int((x-m.lo)/(m.hi-m.lo)*float64(right-left))
}

func (m Model) draw() {
	m.canvas.Clear()
	if m.frames == 0 {
		return
	}
	cw, ch := m.canvas.Dots()
	cy := ch / 2
	mx := m.massX(m.tr.X[m.frame])
	m.canvas.DrawSpring(2, mx-4, cy, 10, 5)
	m.canvas.FillRect(mx, cy, 4)
	m.canvas.DrawLine(0, cy+12, cw-1, cy+12)
	if m.osc != nil {
		ex := m.massX(m.osc.Equilibrium())
		for y := cy + 9; y <= cy+11; y++ {
			m.canvas.Set(ex, y)
		}
	}
}

// Snapshot draws the given frame and returns the canvas. Frames outside
// the finite range select the last finite sample.
func (m Model) Snapshot(frame int) (*Canvas, error) {
	if m.frames == 0 {
		return nil, ErrNoData
	}
	if frame < 0 || frame >= m.frames {
		frame = m.frames - 1
	}
	m.frame = frame
	m.draw()
	return m.canvas, nil
}

// View renders the canvas next to the running series and readouts.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render("SPRING-MASS-DAMPER") + "\n")
	status := statusRunning.Render("RUNNING")
	if !m.running {
		status = statusPaused.Render("PAUSED")
		if m.frames > 0 && m.frame == m.frames-1 {
			status = statusPaused.Render("DONE")
		}
	}
	s.WriteString(status + "\n\n")

	if m.frames == 0 {
		s.WriteString(warnStyle.Render("no finite samples") + "\n")
		return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	}

	from := max(0, m.frame+1-historySpan)
	if m.frame-from >= 1 {
		chart := asciigraph.Plot(m.tr.X[from:m.frame+1], asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("x(t)"))
		s.WriteString(chart + "\n\n")
	}

	cur := m.tr.At(m.frame)
	s.WriteString(row("sample", fmt.Sprintf("%d/%d", m.frame+1, m.frames)))
	s.WriteString(row("time", fmt.Sprintf("%.2fs", cur.T)))
	s.WriteString(row("x", fmt.Sprintf("%+.4f m", cur.X)))
	s.WriteString(row("v", fmt.Sprintf("%+.4f m/s", cur.V)))
	if m.energy != nil && m.frame < m.energy.Len() {
		s.WriteString(row("energy", fmt.Sprintf("%.4f J", m.energy.Total[m.frame])))
		s.WriteString(row("dissipated", fmt.Sprintf("%.4f J", m.energy.Loss[m.frame])))
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Restart Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// Live runs the replay as an interactive program.
type Live struct {
	Osc      *physics.Oscillator
	Interval time.Duration
	Input    io.Reader
}

func (l Live) Render(w io.Writer, tr *dynamo.Trajectory, e *dynamo.EnergySeries) error {
	if tr == nil || tr.Len() == 0 {
		return ErrNoData
	}
	in := l.Input
	if in == nil {
		in = os.Stdin
	}
	p := tea.NewProgram(NewModel(tr, e, l.Osc, l.Interval), tea.WithOutput(w), tea.WithInput(in))
	_, err := p.Run()
	return err
}
