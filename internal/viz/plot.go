package viz

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dampsim/internal/analysis"
	"github.com/san-kum/dampsim/internal/dynamo"
)

const (
	defaultPlotWidth  = 80
	defaultPlotHeight = 10
)

// Plot draws the six dashboard panels. Samples from the first non-finite
// value onwards are left out.
type Plot struct {
	Width, Height int
}

func (p Plot) size() (int, int) {
	w, h := p.Width, p.Height
	if w <= 0 {
		w = defaultPlotWidth
	}
	if h <= 0 {
		h = defaultPlotHeight
	}
	return w, h
}

func (p Plot) Render(w io.Writer, tr *dynamo.Trajectory, e *dynamo.EnergySeries) error {
	if tr == nil || e == nil {
		return ErrNoData
	}
	n := finitePrefix(tr.X, tr.V, tr.A, e.Potential, e.Kinetic, e.Total, e.Loss)
	if n < 2 {
		return ErrNoData
	}
	width, height := p.size()

	opts := func(caption string) []asciigraph.Option {
		return []asciigraph.Option{
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(caption),
		}
	}

	panels := []string{
		asciigraph.Plot(tr.X[:n], opts("displacement x(t) [m]")...),
		Section("phase space (x, v)", analysis.PhasePortraitToASCII(analysis.NewPhasePortrait(tr, n), width, height*2)),
		asciigraph.PlotMany([][]float64{tr.V[:n], tr.A[:n]}, opts("velocity v(t) [m/s] and acceleration a(t) [m/s²]")...),
		asciigraph.PlotMany([][]float64{e.Potential[:n], e.Kinetic[:n]}, opts("potential and kinetic energy [J]")...),
		asciigraph.Plot(e.Loss[:n], opts("energy dissipated [J]")...),
		asciigraph.Plot(e.Total[:n], opts("total mechanical energy [J]")...),
	}

	if n < tr.Len() {
		if _, err := fmt.Fprintf(w, "%s\n\n", warnStyle.Render(fmt.Sprintf("showing %d of %d samples (diverged)", n, tr.Len()))); err != nil {
			return err
		}
	}
	for _, panel := range panels {
		if _, err := fmt.Fprintf(w, "%s\n\n", panel); err != nil {
			return err
		}
	}
	return nil
}
