package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dampsim/internal/dynamo"
	"github.com/san-kum/dampsim/internal/physics"
)

const (
	DefaultMass      = 0.65
	DefaultStiffness = 5.5
	DefaultDamping   = 0.8
	DefaultPos       = -0.2
	DefaultVel       = 0.1
	DefaultT1        = 10.0
	DefaultDt        = 0.01
	DefaultRender    = "summary"
)

type Config struct {
	Mass        float64         `yaml:"mass" json:"mass"`
	Spring      physics.Spring  `yaml:"spring" json:"spring"`
	Damper      physics.Damper  `yaml:"damper" json:"damper"`
	Gravity     float64         `yaml:"gravity" json:"gravity"`
	Formulation string          `yaml:"formulation" json:"formulation"`
	InitState   InitStateConfig `yaml:"init_state" json:"init_state"`
	T0          float64         `yaml:"t0" json:"t0"`
	T1          float64         `yaml:"t1" json:"t1"`
	Dt          float64         `yaml:"dt" json:"dt"`
	Render      string          `yaml:"render" json:"render"`
}

// InitStateConfig holds the initial displacement and velocity. In the
// absolute formulation Pos is measured from the anchor.
type InitStateConfig struct {
	Pos float64 `yaml:"pos" json:"pos"`
	Vel float64 `yaml:"vel" json:"vel"`
}

func DefaultConfig() *Config {
	return &Config{
		Mass:        DefaultMass,
		Spring:      physics.Spring{Stiffness: DefaultStiffness},
		Damper:      physics.Damper{Coefficient: DefaultDamping},
		Formulation: physics.EquilibriumRelative.String(),
		InitState: InitStateConfig{
			Pos: DefaultPos,
			Vel: DefaultVel,
		},
		T1:     DefaultT1,
		Dt:     DefaultDt,
		Render: DefaultRender,
	}
}

func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto reads the YAML file at path over a copy of base. Keys missing
// from the file keep the values from base.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Span() dynamo.Span {
	return dynamo.Span{T0: c.T0, T1: c.T1}
}

// Oscillator builds the model described by the config.
func (c *Config) Oscillator() (*physics.Oscillator, error) {
	f, err := physics.ParseFormulation(c.Formulation)
	if err != nil {
		return nil, err
	}
	return physics.NewOscillator(c.Mass, c.Spring, c.Damper,
		physics.WithFormulation(f),
		physics.WithGravity(c.Gravity),
	)
}

// Validate checks everything that can be checked without integrating.
func (c *Config) Validate() error {
	if _, err := c.Oscillator(); err != nil {
		return fmt.Errorf("oscillator: %w", err)
	}
	if !dynamo.IsFinite(c.Dt) || c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidStep, c.Dt)
	}
	if !dynamo.IsFinite(c.T0) || !dynamo.IsFinite(c.T1) || c.T1 <= c.T0 {
		return fmt.Errorf("%w: t1 (%g) must exceed t0 (%g)", dynamo.ErrInvalidStep, c.T1, c.T0)
	}
	if !dynamo.IsFinite(c.InitState.Pos) || !dynamo.IsFinite(c.InitState.Vel) {
		return fmt.Errorf("%w: pos=%g vel=%g", dynamo.ErrInvalidState, c.InitState.Pos, c.InitState.Vel)
	}
	return nil
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Params lists the names accepted by SetParam.
var Params = []string{"mass", "stiffness", "rest_length", "damping", "gravity", "pos", "vel", "dt"}

// SetParam sets a single numeric field by name.
func (c *Config) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		c.Mass = value
	case "stiffness":
		c.Spring.Stiffness = value
	case "rest_length":
		c.Spring.RestLength = value
	case "damping":
		c.Damper.Coefficient = value
	case "gravity":
		c.Gravity = value
	case "pos":
		c.InitState.Pos = value
	case "vel":
		c.InitState.Vel = value
	case "dt":
		c.Dt = value
	default:
		return fmt.Errorf("unknown parameter %q (available: %v)", name, Params)
	}
	return nil
}
