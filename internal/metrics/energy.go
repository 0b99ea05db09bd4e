package metrics

import (
	"github.com/san-kum/dampsim/internal/dynamo"
	"github.com/san-kum/dampsim/internal/physics"
)

// Accountant builds an EnergySeries one sample at a time. It implements
// dynamo.Observer so it can run inline with the integrator; Account runs the
// same code as a post-pass, so both paths give identical series.
//
// Dissipation uses the left-endpoint rectangle rule,
// loss[i] = loss[i-1] + c*v[i-1]^2*dt, matching the velocity sample the
// Euler step used to move from i-1 to i.
type Accountant struct {
	osc    *physics.Oscillator
	dt     float64
	series *dynamo.EnergySeries
	prevV  float64
	next   int
}

// NewAccountant prepares an accountant for n samples taken at step dt.
func NewAccountant(osc *physics.Oscillator, dt float64, n int) *Accountant {
	return &Accountant{
		osc: osc,
		dt:  dt,
		series: &dynamo.EnergySeries{
			Potential: make([]float64, n),
			Kinetic:   make([]float64, n),
			Total:     make([]float64, n),
			Loss:      make([]float64, n),
		},
	}
}

// OnSample implements dynamo.Observer. Samples must arrive in index order.
func (a *Accountant) OnSample(i int, x, v float64) {
	if i != a.next || i >= len(a.series.Total) {
		return
	}
	s := a.series

	s.Potential[i] = a.osc.PotentialEnergy(x)
	s.Kinetic[i] = a.osc.KineticEnergy(v)
	s.Total[i] = s.Potential[i] + s.Kinetic[i]
	if i > 0 {
		s.Loss[i] = s.Loss[i-1] + a.osc.Damper.Power(a.prevV)*a.dt
	}

	a.prevV = v
	a.next++
}

// Series returns the accumulated series. It is complete once every sample
// has been observed.
func (a *Accountant) Series() *dynamo.EnergySeries {
	return a.series
}

// Complete reports whether every sample has been observed.
func (a *Accountant) Complete() bool {
	return a.next == len(a.series.Total)
}

// Account derives the energy series of tr after the fact.
func Account(osc *physics.Oscillator, tr *dynamo.Trajectory) *dynamo.EnergySeries {
	acct := NewAccountant(osc, tr.Dt, tr.Len())
	for i := 0; i < tr.Len(); i++ {
		acct.OnSample(i, tr.X[i], tr.V[i])
	}
	return acct.Series()
}
