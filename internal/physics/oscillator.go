package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/dampsim/internal/dynamo"
)

const (
	StandardGravity = 9.81

	// criticalTolerance is the band around a damping ratio of 1 treated as
	// critical damping.
	criticalTolerance = 1e-9
)

type Formulation int

const (
	EquilibriumRelative Formulation = iota
	Absolute
)

func (f Formulation) String() string {
	switch f {
	case EquilibriumRelative:
		return "equilibrium"
	case Absolute:
		return "absolute"
	}
	return fmt.Sprintf("formulation(%d)", int(f))
}

func ParseFormulation(s string) (Formulation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "equilibrium", "relative":
		return EquilibriumRelative, nil
	case "absolute":
		return Absolute, nil
	}
	return 0, fmt.Errorf("%w: unknown formulation %q", dynamo.ErrInvalidParameter, s)
}

type Regime int

const (
	Undamped Regime = iota
	Underdamped
	Critical
	Overdamped
)

func (r Regime) String() string {
	switch r {
	case Undamped:
		return "undamped"
	case Underdamped:
		return "underdamped"
	case Critical:
		return "critical"
	case Overdamped:
		return "overdamped"
	}
	return "unknown"
}

// Oscillator is a single degree of freedom damped spring-mass system.
// It is a value object: construct it with NewOscillator and do not modify
// its fields afterwards.
type Oscillator struct {
	Mass        float64
	Spring      Spring
	Damper      Damper
	Gravity     float64
	Formulation Formulation
}

type Option func(*Oscillator)

// WithGravity sets the gravity load. It only acts in the Absolute formulation.
func WithGravity(g float64) Option {
	return func(o *Oscillator) { o.Gravity = g }
}

func WithFormulation(f Formulation) Option {
	return func(o *Oscillator) { o.Formulation = f }
}

func NewOscillator(mass float64, spring Spring, damper Damper, opts ...Option) (*Oscillator, error) {
	o := &Oscillator{
		Mass:   mass,
		Spring: spring,
		Damper: damper,
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Oscillator) validate() error {
	checks := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"mass", o.Mass, true},
		{"stiffness", o.Spring.Stiffness, true},
		{"damping", o.Damper.Coefficient, false},
		{"gravity", o.Gravity, false},
	}

	for _, c := range checks {
		bad := !dynamo.IsFinite(c.value) || c.value < 0 || (c.positive && c.value == 0)
		if bad {
			return &dynamo.ParameterError{Name: c.name, Value: c.value, Wrapped: dynamo.ErrInvalidParameter}
		}
	}
	if !dynamo.IsFinite(o.Spring.RestLength) {
		return &dynamo.ParameterError{Name: "rest_length", Value: o.Spring.RestLength, Wrapped: dynamo.ErrInvalidParameter}
	}

	switch o.Formulation {
	case EquilibriumRelative, Absolute:
	default:
		return &dynamo.ParameterError{Name: "formulation", Value: float64(o.Formulation), Wrapped: dynamo.ErrInvalidParameter}
	}
	return nil
}

// Acceleration implements dynamo.Accelerator.
func (o *Oscillator) Acceleration(x, v float64) float64 {
	if o.Formulation == Absolute {
		net := o.Spring.Force(x-o.Spring.RestLength) + o.Damper.Force(v) - o.Mass*o.Gravity
		return net / o.Mass
	}
	return (o.Spring.Force(x) + o.Damper.Force(v)) / o.Mass
}

// Equilibrium is the displacement at which the net static force vanishes.
func (o *Oscillator) Equilibrium() float64 {
	if o.Formulation == Absolute {
		return o.Spring.RestLength - o.Mass*o.Gravity/o.Spring.Stiffness
	}
	return 0
}

// Offset returns x measured from the equilibrium.
func (o *Oscillator) Offset(x float64) float64 {
	return x - o.Equilibrium()
}

func (o *Oscillator) PotentialEnergy(x float64) float64 {
	return o.Spring.Potential(o.Offset(x))
}

func (o *Oscillator) KineticEnergy(v float64) float64 {
	return 0.5 * o.Mass * v * v
}

// Energy returns the mechanical energy of the state (x, v).
func (o *Oscillator) Energy(x, v float64) float64 {
	return o.PotentialEnergy(x) + o.KineticEnergy(v)
}

func (o *Oscillator) NaturalFrequency() float64 {
	return math.Sqrt(o.Spring.Stiffness / o.Mass)
}

func (o *Oscillator) DampingRatio() float64 {
	return o.Damper.Coefficient / (2 * math.Sqrt(o.Spring.Stiffness*o.Mass))
}

// DampedFrequency is the angular frequency of the decaying oscillation,
// zero when the system does not oscillate.
func (o *Oscillator) DampedFrequency() float64 {
	zeta := o.DampingRatio()
	if zeta >= 1 {
		return 0
	}
	return o.NaturalFrequency() * math.Sqrt(1-zeta*zeta)
}

// CriticalDamping is the damping coefficient giving a ratio of exactly 1.
func (o *Oscillator) CriticalDamping() float64 {
	return 2 * math.Sqrt(o.Spring.Stiffness*o.Mass)
}

func (o *Oscillator) Regime() Regime {
	zeta := o.DampingRatio()
	switch {
	case o.Damper.Coefficient == 0:
		return Undamped
	case math.Abs(zeta-1) <= criticalTolerance:
		return Critical
	case zeta < 1:
		return Underdamped
	default:
		return Overdamped
	}
}

func (o *Oscillator) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":        o.Mass,
		"stiffness":   o.Spring.Stiffness,
		"rest_length": o.Spring.RestLength,
		"damping":     o.Damper.Coefficient,
		"gravity":     o.Gravity,
	}
}
