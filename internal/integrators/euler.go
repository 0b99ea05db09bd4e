package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/dampsim/internal/dynamo"
)

// DefaultMaxSamples bounds the size of a single trajectory (four float64
// slices of this length).
const DefaultMaxSamples = 1 << 24

// Euler is the explicit forward Euler scheme. Both the velocity and the
// displacement update use derivatives taken at the old state.
type Euler struct {
	MaxSamples int
}

func NewEuler() *Euler {
	return &Euler{MaxSamples: DefaultMaxSamples}
}

// Step advances (x, v) by dt and returns the new state together with the
// acceleration evaluated at the old state.
func (e *Euler) Step(acc dynamo.Accelerator, x, v, dt float64) (xNew, vNew, a float64) {
	a = acc.Acceleration(x, v)
	vNew = v + a*dt
	xNew = x + v*dt
	return xNew, vNew, a
}

// Samples returns the number of grid points for span at step dt,
// floor((t1-t0)/dt), after validating the inputs.
func (e *Euler) Samples(span dynamo.Span, dt float64) (int, error) {
	if !dynamo.IsFinite(dt) || dt <= 0 {
		return 0, fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidStep, dt)
	}
	if !dynamo.IsFinite(span.T0) || !dynamo.IsFinite(span.T1) || span.T1 <= span.T0 {
		return 0, fmt.Errorf("%w: span [%g, %g] must satisfy t1 > t0", dynamo.ErrInvalidStep, span.T0, span.T1)
	}

	steps := math.Floor(span.Length() / dt)
	if steps < 1 {
		return 0, fmt.Errorf("%w: span %g shorter than dt %g", dynamo.ErrEmptySpan, span.Length(), dt)
	}

	limit := e.MaxSamples
	if limit <= 0 {
		limit = DefaultMaxSamples
	}
	if steps > float64(limit) {
		return 0, fmt.Errorf("%w: %g samples exceed limit %d", dynamo.ErrInvalidStep, steps, limit)
	}
	return int(steps), nil
}

// Integrate produces the trajectory starting from (x0, v0) over span.
// Observers see every sample in order while the trajectory is built.
// Non-finite values arising during the run are kept, not reported.
func (e *Euler) Integrate(acc dynamo.Accelerator, x0, v0 float64, span dynamo.Span, dt float64, observers ...dynamo.Observer) (*dynamo.Trajectory, error) {
	n, err := e.Samples(span, dt)
	if err != nil {
		return nil, err
	}
	if !dynamo.IsFinite(x0) || !dynamo.IsFinite(v0) {
		return nil, fmt.Errorf("%w: x0=%g v0=%g", dynamo.ErrInvalidState, x0, v0)
	}

	tr := &dynamo.Trajectory{
		T:  Linspace(span.T0, span.T1, n),
		X:  make([]float64, n),
		V:  make([]float64, n),
		A:  make([]float64, n),
		Dt: dt,
	}

	tr.X[0], tr.V[0] = x0, v0
	notify(observers, 0, x0, v0)

	for i := 1; i < n; i++ {
		tr.X[i], tr.V[i], tr.A[i-1] = e.Step(acc, tr.X[i-1], tr.V[i-1], dt)
		notify(observers, i, tr.X[i], tr.V[i])
	}

	tr.A[n-1] = acc.Acceleration(tr.X[n-1], tr.V[n-1])

	return tr, nil
}

func notify(observers []dynamo.Observer, i int, x, v float64) {
	for _, obs := range observers {
		obs.OnSample(i, x, v)
	}
}

// Linspace returns n evenly spaced values from start to stop inclusive.
// The last value is exactly stop.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	out[0] = start
	if n == 1 {
		return out
	}

	step := (stop - start) / float64(n-1)
	for i := 1; i < n-1; i++ {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}
