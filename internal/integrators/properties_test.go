package integrators_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dampsim/internal/dynamo"
	"github.com/san-kum/dampsim/internal/integrators"
	"github.com/san-kum/dampsim/internal/metrics"
	"github.com/san-kum/dampsim/internal/physics"
)

var _ = Describe("Forward Euler on the damped oscillator", func() {
	var (
		euler *integrators.Euler
		span  dynamo.Span
	)

	BeforeEach(func() {
		euler = integrators.NewEuler()
		span = dynamo.Span{T0: 0, T1: 10}
	})

	build := func(mass, k, c float64) *physics.Oscillator {
		osc, err := physics.NewOscillator(mass, physics.Spring{Stiffness: k}, physics.Damper{Coefficient: c})
		Expect(err).NotTo(HaveOccurred())
		return osc
	}

	run := func(osc *physics.Oscillator, x0, v0, dt float64) (*dynamo.Trajectory, *dynamo.EnergySeries) {
		tr, err := euler.Integrate(osc, x0, v0, span, dt)
		Expect(err).NotTo(HaveOccurred())
		return tr, metrics.Account(osc, tr)
	}

	Context("with the reference parameters", func() {
		var (
			tr *dynamo.Trajectory
			e  *dynamo.EnergySeries
		)

		BeforeEach(func() {
			tr, e = run(build(0.65, 5.5, 0.8), -0.2, 0.1, 0.01)
		})

		It("produces floor((t1-t0)/dt) samples on a grid spanning the interval", func() {
			Expect(tr.T).To(HaveLen(1000))
			Expect(tr.X).To(HaveLen(1000))
			Expect(tr.V).To(HaveLen(1000))
			Expect(tr.A).To(HaveLen(1000))
			Expect(tr.T[0]).To(Equal(0.0))
			Expect(tr.T[999]).To(BeNumerically("<=", 10.0))
		})

		It("evaluates the first acceleration at the initial state", func() {
			Expect(tr.A[0]).To(BeNumerically("~", (-5.5*(-0.2)-0.8*0.1)/0.65, 1e-9))
		})

		It("never lets the dissipated energy decrease", func() {
			for i := 1; i < e.Len(); i++ {
				Expect(e.Loss[i]).To(BeNumerically(">=", e.Loss[i-1]))
			}
		})

		It("stays finite", func() {
			_, diverged := tr.Diverged()
			Expect(diverged).To(BeFalse())
		})
	})

	It("is deterministic", func() {
		osc := build(0.65, 5.5, 0.8)
		a, _ := run(osc, -0.2, 0.1, 0.01)
		b, _ := run(osc, -0.2, 0.1, 0.01)
		Expect(a).To(Equal(b))
	})

	It("keeps the undamped energy spread shrinking at least linearly with dt", func() {
		osc := build(1, 1, 0)
		_, coarse := run(osc, 1, 0, 0.01)
		_, fine := run(osc, 1, 0, 0.005)

		Expect(metrics.Spread(fine)).To(BeNumerically("<", 0.5*metrics.Spread(coarse)))
	})

	It("keeps the damped energy balance within a constant times dt", func() {
		osc := build(0.65, 5.5, 0.8)
		for _, dt := range []float64{0.01, 0.005, 0.0025} {
			_, e := run(osc, -0.2, 0.1, dt)
			// 0.5 * omega^2 * E0 * T is a loose constant for this decay.
			c := 0.5 * osc.NaturalFrequency() * osc.NaturalFrequency() * e.Total[0] * span.Length()
			Expect(metrics.MaxResidual(e)).To(BeNumerically("<", c*dt), "dt=%g", dt)
		}
	})

	DescribeTable("regime classification",
		func(c float64, regime physics.Regime, minChanges, maxChanges int) {
			osc := build(1, 1, c)
			Expect(osc.Regime()).To(Equal(regime))

			tr, _ := run(osc, 1, 0, 0.01)
			changes := signChanges(tr.X)
			Expect(changes).To(BeNumerically(">=", minChanges))
			Expect(changes).To(BeNumerically("<=", maxChanges))
		},
		Entry("underdamped oscillates", 0.2, physics.Underdamped, 2, math.MaxInt),
		Entry("critical crosses at most once", 2.0, physics.Critical, 0, 1),
		Entry("overdamped crosses at most once", 5.0, physics.Overdamped, 0, 1),
	)
})

func signChanges(xs []float64) int {
	changes := 0
	prev := 0.0
	for _, x := range xs {
		if x == 0 {
			continue
		}
		if prev != 0 && (x > 0) != (prev > 0) {
			changes++
		}
		prev = x
	}
	return changes
}
