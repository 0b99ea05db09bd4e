package config

import (
	"sort"

	"github.com/san-kum/dampsim/internal/physics"
)

var presets = map[string]*Config{
	"reference": DefaultConfig(),
	"undamped": {
		Mass: 1.0, Spring: physics.Spring{Stiffness: 1.0}, Formulation: "equilibrium",
		InitState: InitStateConfig{Pos: 1.0}, T1: 20.0, Dt: 0.001, Render: DefaultRender,
	},
	"underdamped": {
		Mass: 1.0, Spring: physics.Spring{Stiffness: 1.0}, Damper: physics.Damper{Coefficient: 0.2},
		Formulation: "equilibrium", InitState: InitStateConfig{Pos: 1.0}, T1: 30.0, Dt: 0.01, Render: DefaultRender,
	},
	"critical": {
		Mass: 1.0, Spring: physics.Spring{Stiffness: 1.0}, Damper: physics.Damper{Coefficient: 2.0},
		Formulation: "equilibrium", InitState: InitStateConfig{Pos: 1.0}, T1: 15.0, Dt: 0.01, Render: DefaultRender,
	},
	"overdamped": {
		Mass: 1.0, Spring: physics.Spring{Stiffness: 1.0}, Damper: physics.Damper{Coefficient: 5.0},
		Formulation: "equilibrium", InitState: InitStateConfig{Pos: 1.0}, T1: 30.0, Dt: 0.01, Render: DefaultRender,
	},
	"hanging": {
		Mass: 0.65, Spring: physics.Spring{Stiffness: 5.5, RestLength: 0.3}, Damper: physics.Damper{Coefficient: 0.8},
		Gravity: physics.StandardGravity, Formulation: "absolute",
		InitState: InitStateConfig{Pos: 0.1, Vel: -0.2}, T1: 10.0, Dt: 0.01, Render: DefaultRender,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
