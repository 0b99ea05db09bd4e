package viz

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/dampsim/internal/dynamo"
	"github.com/san-kum/dampsim/internal/integrators"
	"github.com/san-kum/dampsim/internal/metrics"
	"github.com/san-kum/dampsim/internal/physics"
)

func referenceRun(t *testing.T) (*physics.Oscillator, *dynamo.Trajectory, *dynamo.EnergySeries) {
	t.Helper()
	osc, err := physics.NewOscillator(0.65, physics.Spring{Stiffness: 5.5}, physics.Damper{Coefficient: 0.8})
	if err != nil {
		t.Fatalf("NewOscillator failed: %v", err)
	}
	tr, err := integrators.NewEuler().Integrate(osc, -0.2, 0.1, dynamo.Span{T0: 0, T1: 2}, 0.01)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	return osc, tr, metrics.Account(osc, tr)
}

func divergedRun() (*dynamo.Trajectory, *dynamo.EnergySeries) {
	tr := &dynamo.Trajectory{
		T:  []float64{0, 1, 2, 3},
		X:  []float64{1, 2, math.Inf(1), math.NaN()},
		V:  []float64{0, 1, 2, math.NaN()},
		A:  []float64{0, 0, 0, 0},
		Dt: 1,
	}
	e := &dynamo.EnergySeries{
		Potential: []float64{1, 2, 3, 4},
		Kinetic:   []float64{0, 1, 2, 3},
		Total:     []float64{1, 3, 5, 7},
		Loss:      []float64{0, 0, 0, 0},
	}
	return tr, e
}

func TestCanvas_SetAndBounds(t *testing.T) {
	c := NewCanvas(4, 2)
	w, h := c.Dots()
	if w != 8 || h != 8 {
		t.Fatalf("Dots() = (%d, %d), want (8, 8)", w, h)
	}

	c.Set(3, 5)
	if !c.IsSet(3, 5) {
		t.Error("dot (3,5) not set")
	}
	if c.IsSet(2, 5) {
		t.Error("neighbouring dot set")
	}

	// ignored, no panic
	c.Set(-1, 0)
	c.Set(100, 100)

	c.Clear()
	if c.IsSet(3, 5) {
		t.Error("Clear left dot set")
	}
}

func TestCanvas_String(t *testing.T) {
	c := NewCanvas(3, 2)
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, line := range lines {
		if line != "\u2800\u2800\u2800" {
			t.Errorf("blank row = %q", line)
		}
	}

	c.Set(0, 0)
	if !strings.HasPrefix(c.String(), "\u2801") {
		t.Errorf("top-left dot should render as U+2801, got %q", c.String())
	}
}

func TestCanvas_DrawLineEndpoints(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(1, 2, 15, 17)
	if !c.IsSet(1, 2) || !c.IsSet(15, 17) {
		t.Error("line endpoints not set")
	}
	c.DrawLine(5, 3, 5, 3)
	if !c.IsSet(5, 3) {
		t.Error("degenerate line not drawn")
	}
}

func TestCanvas_DrawSpring(t *testing.T) {
	c := NewCanvas(20, 6)
	c.DrawSpring(2, 30, 12, 6, 3)
	for y := 6; y <= 18; y++ {
		if !c.IsSet(2, y) {
			t.Fatalf("wall dot (2,%d) missing", y)
		}
	}
	if !c.IsSet(30, 12) {
		t.Error("spring does not reach its end point")
	}
}

func TestSparkline(t *testing.T) {
	if got := utf8.RuneCountInString(Sparkline(nil, 5)); got != 5 {
		t.Errorf("empty sparkline width = %d, want 5", got)
	}

	values := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	if got := utf8.RuneCountInString(Sparkline(values, 8)); got < 8 {
		t.Errorf("sparkline shows %d runes, want at least 8", got)
	}

	withGap := Sparkline([]float64{1, math.NaN(), 2}, 3)
	if !strings.Contains(withGap, " ") {
		t.Errorf("NaN should render as a gap, got %q", withGap)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"summary", "plot", "live", "none"} {
		r, err := Lookup(name, nil)
		if err != nil {
			t.Errorf("Lookup(%q) failed: %v", name, err)
		}
		if r == nil {
			t.Errorf("Lookup(%q) returned nil", name)
		}
	}

	_, err := Lookup("hologram", nil)
	if !errors.Is(err, ErrUnknownRenderer) {
		t.Errorf("unknown renderer error = %v", err)
	}

	names := Names()
	if len(names) != 4 || names[0] != "live" {
		t.Errorf("Names() = %v", names)
	}
}

func TestNopRender(t *testing.T) {
	var buf bytes.Buffer
	if err := (Nop{}).Render(&buf, nil, nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("Nop wrote %q", buf.String())
	}
}

func TestSummaryRender(t *testing.T) {
	osc, tr, e := referenceRun(t)

	var buf bytes.Buffer
	if err := (Summary{Osc: osc}).Render(&buf, tr, e); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"SPRING-MASS-DAMPER", "underdamped", "samples", "dissipated", "residual"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "diverged") {
		t.Error("finite run reported as diverged")
	}
}

func TestSummaryRender_WithoutOscillator(t *testing.T) {
	_, tr, e := referenceRun(t)

	var buf bytes.Buffer
	if err := (Summary{}).Render(&buf, tr, e); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.Contains(buf.String(), "regime") {
		t.Error("derived parameters shown without an oscillator")
	}
}

func TestSummaryRender_Diverged(t *testing.T) {
	tr, e := divergedRun()

	var buf bytes.Buffer
	if err := (Summary{}).Render(&buf, tr, e); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "diverged at sample 2") {
		t.Errorf("missing divergence warning:\n%s", buf.String())
	}
}

func TestSummaryRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := (Summary{}).Render(&buf, &dynamo.Trajectory{}, nil)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("error = %v, want ErrNoData", err)
	}
}

func TestPlotRender(t *testing.T) {
	_, tr, e := referenceRun(t)

	var buf bytes.Buffer
	if err := (Plot{Width: 40, Height: 5}).Render(&buf, tr, e); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"displacement x(t)",
		"phase space (x, v)",
		"velocity v(t)",
		"potential and kinetic energy",
		"energy dissipated",
		"total mechanical energy",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("plot missing panel %q", want)
		}
	}
}

func TestPlotRender_TruncatesAtDivergence(t *testing.T) {
	tr, e := divergedRun()

	var buf bytes.Buffer
	if err := (Plot{Width: 20, Height: 4}).Render(&buf, tr, e); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "showing 2 of 4 samples") {
		t.Errorf("missing truncation note:\n%s", buf.String())
	}
}

func TestPlotRender_TooShort(t *testing.T) {
	tr := &dynamo.Trajectory{T: []float64{0}, X: []float64{1}, V: []float64{0}, A: []float64{0}, Dt: 0.1}
	e := &dynamo.EnergySeries{Potential: []float64{1}, Kinetic: []float64{0}, Total: []float64{1}, Loss: []float64{0}}
	if err := (Plot{}).Render(&bytes.Buffer{}, tr, e); !errors.Is(err, ErrNoData) {
		t.Errorf("error = %v, want ErrNoData", err)
	}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_AdvancesOneSamplePerFrame(t *testing.T) {
	osc, tr, e := referenceRun(t)
	var m tea.Model = NewModel(tr, e, osc, 0)

	for i := 0; i < 5; i++ {
		var cmd tea.Cmd
		m, cmd = m.Update(FrameMsg{})
		if cmd == nil {
			t.Fatal("frame tick not rescheduled")
		}
	}
	if got := m.(Model).Frame(); got != 5 {
		t.Errorf("Frame() = %d, want 5", got)
	}
	if want := fmt.Sprintf("6/%d", tr.Len()); !strings.Contains(m.View(), want) {
		t.Errorf("view does not show sample counter:\n%s", m.View())
	}
}

func TestModel_PauseRestartQuit(t *testing.T) {
	osc, tr, e := referenceRun(t)
	var m tea.Model = NewModel(tr, e, osc, DefaultInterval)

	m, _ = m.Update(FrameMsg{})
	m, _ = m.Update(key(" "))
	if m.(Model).Running() {
		t.Fatal("space did not pause")
	}
	m, _ = m.Update(FrameMsg{})
	if got := m.(Model).Frame(); got != 1 {
		t.Errorf("paused replay advanced to %d", got)
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view does not show PAUSED")
	}

	m, _ = m.Update(key("r"))
	if m.(Model).Frame() != 0 || !m.(Model).Running() {
		t.Error("r did not restart the replay")
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestModel_StopsAtLastFiniteSample(t *testing.T) {
	tr, e := divergedRun()
	var m tea.Model = NewModel(tr, e, nil, DefaultInterval)

	for i := 0; i < 10; i++ {
		m, _ = m.Update(FrameMsg{})
	}
	if got := m.(Model).Frame(); got != 1 {
		t.Errorf("Frame() = %d, want 1", got)
	}
	if m.(Model).Running() {
		t.Error("replay still running after the last sample")
	}
	if !strings.Contains(m.View(), "DONE") {
		t.Error("view does not show DONE")
	}
}

func TestModel_NoFiniteSamples(t *testing.T) {
	tr := &dynamo.Trajectory{T: []float64{0}, X: []float64{math.NaN()}, V: []float64{0}, A: []float64{0}}
	m := NewModel(tr, nil, nil, DefaultInterval)
	if m.Running() {
		t.Error("empty replay should not run")
	}
	if !strings.Contains(m.View(), "no finite samples") {
		t.Error("missing empty-replay notice")
	}
}

func TestModel_Snapshot(t *testing.T) {
	osc, tr, e := referenceRun(t)
	m := NewModel(tr, e, osc, DefaultInterval)

	far := 0
	for i := range tr.X {
		if math.Abs(tr.X[i]-tr.X[0]) > math.Abs(tr.X[far]-tr.X[0]) {
			far = i
		}
	}

	first, err := m.Snapshot(0)
	if err != nil {
		t.Fatal(err)
	}
	start := first.String()

	moved, _ := m.Snapshot(far)
	if moved.String() == start {
		t.Error("mass did not move between snapshots")
	}

	clamped, _ := m.Snapshot(-1)
	last := clamped.String()
	end, _ := m.Snapshot(tr.Len() - 1)
	if end.String() != last {
		t.Error("out of range frame should select the last sample")
	}
	if m.Frame() != 0 {
		t.Errorf("Snapshot changed the replay frame to %d", m.Frame())
	}

	nan := &dynamo.Trajectory{T: []float64{0}, X: []float64{math.NaN()}, V: []float64{0}, A: []float64{0}}
	if _, err := NewModel(nan, nil, nil, 0).Snapshot(0); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestLiveRender_Empty(t *testing.T) {
	if err := (Live{}).Render(&bytes.Buffer{}, &dynamo.Trajectory{}, nil); !errors.Is(err, ErrNoData) {
		t.Errorf("error = %v, want ErrNoData", err)
	}
}
