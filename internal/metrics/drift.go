package metrics

import (
	"math"

	"github.com/san-kum/dampsim/internal/dynamo"
)

// Budget summarizes an EnergySeries.
type Budget struct {
	Initial     float64 `json:"initial"`
	Final       float64 `json:"final"`
	Dissipated  float64 `json:"dissipated"`
	Spread      float64 `json:"spread"`
	MaxResidual float64 `json:"max_residual"`
	RelResidual float64 `json:"rel_residual"`
}

// Spread is max(total) - min(total).
func Spread(e *dynamo.EnergySeries) float64 {
	if e.Len() == 0 {
		return 0
	}
	lo, hi := e.Total[0], e.Total[0]
	for _, v := range e.Total {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi - lo
}

// MaxResidual is max_i |total[i] + loss[i] - total[0]|, the worst violation
// of the energy balance.
func MaxResidual(e *dynamo.EnergySeries) float64 {
	if e.Len() == 0 {
		return 0
	}
	worst := 0.0
	for i := range e.Total {
		worst = math.Max(worst, math.Abs(e.Balance(i)-e.Total[0]))
	}
	return worst
}

func Summarize(e *dynamo.EnergySeries) Budget {
	if e.Len() == 0 {
		return Budget{}
	}
	last := e.Len() - 1
	b := Budget{
		Initial:     e.Total[0],
		Final:       e.Total[last],
		Dissipated:  e.Loss[last],
		Spread:      Spread(e),
		MaxResidual: MaxResidual(e),
	}
	if b.Initial != 0 {
		b.RelResidual = b.MaxResidual / math.Abs(b.Initial)
	}
	return b
}
