package analysis

import (
	"math"

	"github.com/san-kum/dampsim/internal/dynamo"
	"github.com/san-kum/dampsim/internal/physics"
)

// SignChanges counts strict sign changes, skipping exact zeros.
func SignChanges(xs []float64) int {
	changes := 0
	prev := 0.0
	for _, x := range xs {
		if x == 0 || math.IsNaN(x) {
			continue
		}
		if prev != 0 && (x > 0) != (prev > 0) {
			changes++
		}
		prev = x
	}
	return changes
}

// Peaks returns the indices of strict local maxima of |xs|.
func Peaks(xs []float64) []int {
	peaks := make([]int, 0)
	for i := 1; i < len(xs)-1; i++ {
		a, b, c := math.Abs(xs[i-1]), math.Abs(xs[i]), math.Abs(xs[i+1])
		if b > a && b >= c {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// LogDecrement estimates ln(x_n / x_{n+1}) averaged over successive
// positive peaks of xs. It returns 0 when fewer than two peaks exist.
func LogDecrement(xs []float64) float64 {
	var positive []float64
	for _, i := range Peaks(xs) {
		if xs[i] > 0 {
			positive = append(positive, xs[i])
		}
	}
	if len(positive) < 2 {
		return 0
	}

	n := len(positive) - 1
	return math.Log(positive[0]/positive[n]) / float64(n)
}

// DampingFromDecrement converts a logarithmic decrement to a damping ratio.
func DampingFromDecrement(delta float64) float64 {
	return delta / math.Sqrt(4*math.Pi*math.Pi+delta*delta)
}

type Report struct {
	Regime            string  `json:"regime"`
	DampingRatio      float64 `json:"damping_ratio"`
	NaturalFrequency  float64 `json:"natural_frequency"`
	DampedFrequencyHz float64 `json:"damped_frequency_hz"`
	DominantHz        float64 `json:"dominant_hz"`
	SignChanges       int     `json:"sign_changes"`
	LogDecrement      float64 `json:"log_decrement"`
	EstimatedDamping  float64 `json:"estimated_damping"`
	Consistent        bool    `json:"consistent"`
}

// Inspect measures tr and checks the observed crossings against the regime
// predicted by osc. Displacements are taken relative to the equilibrium.
func Inspect(osc *physics.Oscillator, tr *dynamo.Trajectory) Report {
	offsets := make([]float64, tr.Len())
	for i, x := range tr.X {
		offsets[i] = osc.Offset(x)
	}

	spacing := 0.0
	if tr.Len() > 1 {
		spacing = (tr.T[tr.Len()-1] - tr.T[0]) / float64(tr.Len()-1)
	}

	r := Report{
		Regime:            osc.Regime().String(),
		DampingRatio:      osc.DampingRatio(),
		NaturalFrequency:  osc.NaturalFrequency(),
		DampedFrequencyHz: osc.DampedFrequency() / (2 * math.Pi),
		DominantHz:        DominantFrequency(offsets, spacing),
		SignChanges:       SignChanges(offsets),
		LogDecrement:      LogDecrement(offsets),
	}
	r.EstimatedDamping = DampingFromDecrement(r.LogDecrement)

	switch osc.Regime() {
	case physics.Critical, physics.Overdamped:
		r.Consistent = r.SignChanges <= 1
	default:
		r.Consistent = r.SignChanges >= 1
	}
	return r
}
