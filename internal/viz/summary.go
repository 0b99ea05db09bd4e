package viz

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/dampsim/internal/dynamo"
	"github.com/san-kum/dampsim/internal/metrics"
	"github.com/san-kum/dampsim/internal/physics"
)

// Summary prints derived parameters, the final state and the energy budget.
type Summary struct {
	Osc *physics.Oscillator
}

func (s Summary) Render(w io.Writer, tr *dynamo.Trajectory, e *dynamo.EnergySeries) error {
	if tr == nil || tr.Len() == 0 {
		return ErrNoData
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("SPRING-MASS-DAMPER") + "\n\n")

	if s.Osc != nil {
		var p strings.Builder
		p.WriteString(row("mass", fmt.Sprintf("%.4g kg", s.Osc.Mass)))
		p.WriteString(row("stiffness", fmt.Sprintf("%.4g N/m", s.Osc.Spring.Stiffness)))
		p.WriteString(row("damping", fmt.Sprintf("%.4g N·s/m", s.Osc.Damper.Coefficient)))
		p.WriteString(row("formulation", s.Osc.Formulation.String()))
		p.WriteString(row("omega_n", fmt.Sprintf("%.4f rad/s", s.Osc.NaturalFrequency())))
		p.WriteString(row("zeta", fmt.Sprintf("%.4f", s.Osc.DampingRatio())))
		p.WriteString(row("regime", s.Osc.Regime().String()))
		p.WriteString(row("equilibrium", fmt.Sprintf("%.4f m", s.Osc.Equilibrium())))
		b.WriteString(Section("parameters", p.String()) + "\n")
	}

	last := tr.Len() - 1
	var r strings.Builder
	r.WriteString(row("samples", fmt.Sprintf("%d", tr.Len())))
	r.WriteString(row("span", fmt.Sprintf("[%g, %g] s", tr.T[0], tr.T[last])))
	r.WriteString(row("dt", fmt.Sprintf("%g s", tr.Dt)))
	r.WriteString(row("final x", fmt.Sprintf("%.6f m", tr.X[last])))
	r.WriteString(row("final v", fmt.Sprintf("%.6f m/s", tr.V[last])))
	r.WriteString(row("x(t)", Sparkline(tr.X, 40)))
	b.WriteString(Section("trajectory", r.String()) + "\n")

	if idx, ok := tr.Diverged(); ok {
		b.WriteString(warnStyle.Render(fmt.Sprintf("diverged at sample %d (t = %g)", idx, tr.T[idx])) + "\n\n")
	}

	if e != nil && e.Len() > 0 {
		budget := metrics.Summarize(e)
		var en strings.Builder
		en.WriteString(row("initial", fmt.Sprintf("%.6f J", budget.Initial)))
		en.WriteString(row("final", fmt.Sprintf("%.6f J", budget.Final)))
		en.WriteString(row("dissipated", fmt.Sprintf("%.6f J", budget.Dissipated)))
		en.WriteString(row("spread", fmt.Sprintf("%.3e J", budget.Spread)))
		en.WriteString(row("residual", fmt.Sprintf("%.3e J (%.2e rel)", budget.MaxResidual, budget.RelResidual)))
		en.WriteString(row("total(t)", Sparkline(e.Total, 40)))
		b.WriteString(Section("energy", en.String()))
	}

	_, err := fmt.Fprintln(w, panelStyle.Render(strings.TrimRight(b.String(), "\n")))
	return err
}
