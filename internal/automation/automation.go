package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dampsim/internal/analysis"
	"github.com/san-kum/dampsim/internal/config"
	"github.com/san-kum/dampsim/internal/experiment"
	"github.com/san-kum/dampsim/internal/storage"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and applies the keys
// present under config.
type ScenarioStep struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
	Save   bool      `yaml:"save"`
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Name  string
	RunID string
	Meta  storage.RunMetadata
}

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

// Resolve builds the config for the step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if !s.Config.IsZero() {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// RunScenario executes all steps in order. Steps marked save are written to
// store; a nil store saves nothing. Results for completed steps are returned
// alongside the first error.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store, logger *zap.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		logger.Info("running scenario step",
			zap.String("scenario", scenario.Name),
			zap.String("step", name),
			zap.Int("index", i+1),
			zap.Int("total", len(scenario.Steps)))

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}

		exp, err := experiment.New(cfg, logger.With(zap.String("step", name)))
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}

		run, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) run: %w", i+1, name, err)
		}

		res := StepResult{Name: name}
		if step.Save && store != nil {
			if res.RunID, err = store.Save(run); err != nil {
				return results, fmt.Errorf("step %d (%s) save: %w", i+1, name, err)
			}
		}
		res.Meta = run.Meta
		results = append(results, res)
	}

	return results, nil
}

// ParameterSweep varies one named parameter of Base over [Min, Max].
type ParameterSweep struct {
	Base  *config.Config
	Param string
	Min   float64
	Max   float64
	Steps int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	Value        float64
	DampingRatio float64
	Regime       string
	FinalEnergy  float64
	Dissipated   float64
	SignChanges  int
	Diverged     bool
}

// RunSweep executes a parameter sweep, one run per value.
func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *zap.Logger) ([]SweepResult, error) {
	if sweep.Steps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.Steps)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	paramStep := 0.0
	if sweep.Steps > 1 {
		paramStep = (sweep.Max - sweep.Min) / float64(sweep.Steps-1)
	}

	results := make([]SweepResult, 0, sweep.Steps)
	for i := 0; i < sweep.Steps; i++ {
		value := sweep.Min + float64(i)*paramStep
		if i == sweep.Steps-1 && sweep.Steps > 1 {
			value = sweep.Max
		}

		cfg := sweep.Base.Clone()
		if err := cfg.SetParam(sweep.Param, value); err != nil {
			return results, err
		}

		exp, err := experiment.New(cfg, logger)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, value, err)
		}
		run, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, value, err)
		}

		results = append(results, SweepResult{
			Value:        value,
			DampingRatio: run.Meta.DampingRatio,
			Regime:       run.Meta.Regime,
			FinalEnergy:  run.Meta.Energy.Final,
			Dissipated:   run.Meta.Energy.Dissipated,
			SignChanges:  analysis.Inspect(exp.Oscillator(), run.Trajectory).SignChanges,
			Diverged:     run.Meta.Diverged,
		})

		logger.Debug("sweep point", zap.String("param", sweep.Param), zap.Float64("value", value), zap.Int("index", i+1))
	}

	return results, nil
}
