package dynamo

import "math"

// Span is a closed time interval [T0, T1].
type Span struct {
	T0 float64
	T1 float64
}

func (s Span) Length() float64 { return s.T1 - s.T0 }

// Sample is one row of a trajectory.
type Sample struct {
	T float64
	X float64
	V float64
	A float64
}

// Trajectory holds equal-length sequences indexed by step.
// Dt is the integration step, which differs slightly from the grid spacing
// (T1-T0)/(N-1) of the materialized time axis.
type Trajectory struct {
	T  []float64
	X  []float64
	V  []float64
	A  []float64
	Dt float64
}

func (tr *Trajectory) Len() int { return len(tr.T) }

func (tr *Trajectory) At(i int) Sample {
	return Sample{T: tr.T[i], X: tr.X[i], V: tr.V[i], A: tr.A[i]}
}

// Diverged reports the first index holding a non-finite value.
func (tr *Trajectory) Diverged() (int, bool) {
	for i := range tr.T {
		if !IsFinite(tr.X[i]) || !IsFinite(tr.V[i]) || !IsFinite(tr.A[i]) {
			return i, true
		}
	}
	return -1, false
}

// EnergySeries is derived from a Trajectory and shares its index domain.
type EnergySeries struct {
	Potential []float64
	Kinetic   []float64
	Total     []float64
	Loss      []float64
}

func (e *EnergySeries) Len() int { return len(e.Total) }

// Balance is mechanical energy plus cumulative dissipation at sample i.
func (e *EnergySeries) Balance(i int) float64 {
	return e.Total[i] + e.Loss[i]
}

// Accelerator maps instantaneous displacement and velocity to acceleration.
type Accelerator interface {
	Acceleration(x, v float64) float64
}

// Observer is called once per sample, in index order, as soon as the
// displacement and velocity of that sample are known.
type Observer interface {
	OnSample(i int, x, v float64)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
