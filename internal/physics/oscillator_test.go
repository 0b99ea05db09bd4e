package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/dampsim/internal/dynamo"
)

func newTestOscillator(t *testing.T, mass, k, c float64, opts ...Option) *Oscillator {
	t.Helper()
	osc, err := NewOscillator(mass, Spring{Stiffness: k}, Damper{Coefficient: c}, opts...)
	if err != nil {
		t.Fatalf("NewOscillator failed: %v", err)
	}
	return osc
}

func TestSpringDamperForces(t *testing.T) {
	s := Spring{Stiffness: 5.5}
	if got := s.Force(-0.2); math.Abs(got-1.1) > 1e-12 {
		t.Errorf("spring force = %f, want 1.1", got)
	}
	if got := s.Potential(-0.2); math.Abs(got-0.11) > 1e-12 {
		t.Errorf("spring potential = %f, want 0.11", got)
	}

	d := Damper{Coefficient: 0.8}
	if got := d.Force(0.1); math.Abs(got+0.08) > 1e-12 {
		t.Errorf("damper force = %f, want -0.08", got)
	}
	if got := d.Power(-0.5); math.Abs(got-0.2) > 1e-12 {
		t.Errorf("damper power = %f, want 0.2", got)
	}
}

func TestNewOscillator_InvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		mass   float64
		spring Spring
		damper Damper
		opts   []Option
		field  string
	}{
		{"zero mass", 0, Spring{Stiffness: 1}, Damper{}, nil, "mass"},
		{"negative mass", -1, Spring{Stiffness: 1}, Damper{}, nil, "mass"},
		{"NaN mass", math.NaN(), Spring{Stiffness: 1}, Damper{}, nil, "mass"},
		{"zero stiffness", 1, Spring{Stiffness: 0}, Damper{}, nil, "stiffness"},
		{"negative stiffness", 1, Spring{Stiffness: -2}, Damper{}, nil, "stiffness"},
		{"negative damping", 1, Spring{Stiffness: 1}, Damper{Coefficient: -0.1}, nil, "damping"},
		{"negative gravity", 1, Spring{Stiffness: 1}, Damper{}, []Option{WithGravity(-9.81)}, "gravity"},
		{"infinite rest length", 1, Spring{Stiffness: 1, RestLength: math.Inf(1)}, Damper{}, nil, "rest_length"},
		{"bad formulation", 1, Spring{Stiffness: 1}, Damper{}, []Option{WithFormulation(Formulation(7))}, "formulation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			osc, err := NewOscillator(tt.mass, tt.spring, tt.damper, tt.opts...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if osc != nil {
				t.Error("expected nil oscillator on error")
			}
			if !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
			var pe *dynamo.ParameterError
			if !errors.As(err, &pe) || pe.Name != tt.field {
				t.Errorf("expected field %q, got %v", tt.field, err)
			}
		})
	}
}

func TestAcceleration_Equilibrium(t *testing.T) {
	osc := newTestOscillator(t, 1.0, 10.0, 0.5)

	if a := osc.Acceleration(0, 0); a != 0 {
		t.Errorf("acceleration at equilibrium should be 0, got %f", a)
	}
}

func TestAcceleration_Reference(t *testing.T) {
	osc := newTestOscillator(t, 0.65, 5.5, 0.8)

	want := (-5.5*(-0.2) - 0.8*0.1) / 0.65
	if got := osc.Acceleration(-0.2, 0.1); math.Abs(got-want) > 1e-12 {
		t.Errorf("acceleration = %.12f, want %.12f", got, want)
	}
}

func TestAcceleration_RelativeIgnoresGravity(t *testing.T) {
	plain := newTestOscillator(t, 1, 4, 0.2)
	loaded := newTestOscillator(t, 1, 4, 0.2, WithGravity(StandardGravity))

	if plain.Acceleration(0.3, -0.1) != loaded.Acceleration(0.3, -0.1) {
		t.Error("gravity must not act in the equilibrium-relative formulation")
	}
}

func TestAbsoluteFormulation(t *testing.T) {
	osc, err := NewOscillator(0.65,
		Spring{Stiffness: 5.5, RestLength: 0.3},
		Damper{Coefficient: 0.8},
		WithFormulation(Absolute),
		WithGravity(StandardGravity),
	)
	if err != nil {
		t.Fatalf("NewOscillator failed: %v", err)
	}

	eq := osc.Equilibrium()
	wantEq := 0.3 - 0.65*StandardGravity/5.5
	if math.Abs(eq-wantEq) > 1e-12 {
		t.Errorf("equilibrium = %f, want %f", eq, wantEq)
	}

	if a := osc.Acceleration(eq, 0); math.Abs(a) > 1e-12 {
		t.Errorf("acceleration at shifted equilibrium should vanish, got %e", a)
	}

	// Same dynamics as the relative model once displacement is offset.
	rel := newTestOscillator(t, 0.65, 5.5, 0.8)
	for _, x := range []float64{-0.5, -0.1, 0.2, 1.0} {
		got := osc.Acceleration(eq+x, 0.4)
		want := rel.Acceleration(x, 0.4)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("x=%f: absolute %f vs relative %f", x, got, want)
		}
	}

	if pe := osc.PotentialEnergy(eq); pe != 0 {
		t.Errorf("potential at equilibrium should be 0, got %f", pe)
	}
}

func TestDerivedParameters(t *testing.T) {
	osc := newTestOscillator(t, 0.65, 5.5, 0.8)

	wn := math.Sqrt(5.5 / 0.65)
	if math.Abs(osc.NaturalFrequency()-wn) > 1e-12 {
		t.Errorf("natural frequency = %f, want %f", osc.NaturalFrequency(), wn)
	}

	zeta := 0.8 / (2 * math.Sqrt(5.5*0.65))
	if math.Abs(osc.DampingRatio()-zeta) > 1e-12 {
		t.Errorf("damping ratio = %f, want %f", osc.DampingRatio(), zeta)
	}

	wd := wn * math.Sqrt(1-zeta*zeta)
	if math.Abs(osc.DampedFrequency()-wd) > 1e-12 {
		t.Errorf("damped frequency = %f, want %f", osc.DampedFrequency(), wd)
	}

	if math.Abs(osc.CriticalDamping()-2*math.Sqrt(5.5*0.65)) > 1e-12 {
		t.Errorf("critical damping = %f", osc.CriticalDamping())
	}
}

func TestRegime(t *testing.T) {
	tests := []struct {
		c    float64
		want Regime
	}{
		{0, Undamped},
		{0.5, Underdamped},
		{2, Critical},
		{5, Overdamped},
	}

	for _, tt := range tests {
		osc := newTestOscillator(t, 1, 1, tt.c)
		if got := osc.Regime(); got != tt.want {
			t.Errorf("c=%f: regime = %s, want %s", tt.c, got, tt.want)
		}
		if osc.Regime() != Underdamped && osc.Regime() != Undamped && osc.DampedFrequency() != 0 {
			t.Errorf("c=%f: non-oscillatory regime should have zero damped frequency", tt.c)
		}
	}
}

func TestParseFormulation(t *testing.T) {
	tests := []struct {
		in      string
		want    Formulation
		wantErr bool
	}{
		{"", EquilibriumRelative, false},
		{"equilibrium", EquilibriumRelative, false},
		{"Absolute", Absolute, false},
		{"sideways", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFormulation(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormulation(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseFormulation(%q) = %s, want %s", tt.in, got, tt.want)
		}
		if !tt.wantErr && got.String() == "" {
			t.Errorf("empty String() for %d", got)
		}
	}
}

func TestEnergy(t *testing.T) {
	osc := newTestOscillator(t, 2, 8, 0)

	if e := osc.Energy(0.5, 0); math.Abs(e-1.0) > 1e-12 {
		t.Errorf("potential-only energy = %f, want 1.0", e)
	}
	if e := osc.Energy(0, 1); math.Abs(e-1.0) > 1e-12 {
		t.Errorf("kinetic-only energy = %f, want 1.0", e)
	}
}
