// Package dynamo provides the core value types shared by the oscillator
// model, the integrator and the energy accountant.
//
//   - [Trajectory]: time, displacement, velocity and acceleration samples
//   - [EnergySeries]: potential, kinetic, total and dissipated energy
//   - [Accelerator]: anything that maps (x, v) to an acceleration
//   - [Observer]: per-sample hook invoked while a trajectory is produced
//
// # Example
//
//	osc, _ := physics.NewOscillator(0.65, physics.Spring{Stiffness: 5.5}, physics.Damper{Coefficient: 0.8})
//	traj, _ := integrators.NewEuler().Integrate(osc, -0.2, 0.1, dynamo.Span{T0: 0, T1: 10}, 0.01)
//	energy := metrics.Account(osc, traj)
//
// # Ownership
//
// A Trajectory or EnergySeries is written once by the call that creates it
// and belongs to the caller afterwards. Renderers and exporters read them by
// index and must not modify the slices.
package dynamo
