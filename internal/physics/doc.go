// Package physics provides the damped spring-mass oscillator model.
//
// The model is built from two force laws and a mass:
//
//   - [Spring]: Hooke restoring force, -k * extension
//   - [Damper]: viscous force, -c * velocity
//   - [Oscillator]: composes both (plus optional gravity) into an
//     acceleration function and exposes derived parameters
//
// # Formulations
//
// [EquilibriumRelative] measures displacement from the static equilibrium
// and has no gravity term; it is the default. [Absolute] measures
// displacement from the spring anchor with a rest length and a gravity load,
// which moves the equilibrium to RestLength - Mass*Gravity/Stiffness.
// Potential energy is always taken relative to the equilibrium, so the
// energy identities hold in both formulations.
//
//	osc, err := physics.NewOscillator(0.65,
//	    physics.Spring{Stiffness: 5.5, RestLength: 0.3},
//	    physics.Damper{Coefficient: 0.8},
//	    physics.WithFormulation(physics.Absolute),
//	    physics.WithGravity(physics.StandardGravity),
//	)
package physics
