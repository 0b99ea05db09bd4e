package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/dampsim/internal/config"
	"github.com/san-kum/dampsim/internal/storage"
)

const scenarioYAML = `name: regimes
description: one run per damping regime
steps:
  - name: light
    preset: underdamped
    config:
      t1: 5
    save: true
  - preset: critical
    config:
      t1: 5
      init_state:
        vel: 0.5
  - name: custom
    config:
      mass: 2
      damper:
        coefficient: 10
      t1: 2
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)
	assert.Equal(t, "regimes", sc.Name)
	require.Len(t, sc.Steps, 3)
	assert.True(t, sc.Steps[0].Save)

	cfg, err := sc.Steps[1].Resolve()
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Damper.Coefficient, "preset value kept")
	assert.Equal(t, 5.0, cfg.T1)
	assert.Equal(t, 0.5, cfg.InitState.Vel)
	assert.Equal(t, 1.0, cfg.InitState.Pos, "sibling key from preset kept")

	cfg, err = sc.Steps[2].Resolve()
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Mass)
	assert.Equal(t, config.DefaultStiffness, cfg.Spring.Stiffness)
}

func TestLoadScenario_Errors(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadScenario(writeScenario(t, "name: empty\n"))
	assert.ErrorIs(t, err, ErrEmptyScenario)

	_, err = LoadScenario(writeScenario(t, "steps: [\n"))
	assert.Error(t, err)
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)

	store := storage.New(t.TempDir(), nil)
	results, err := RunScenario(context.Background(), sc, store, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "light", results[0].Name)
	assert.NotEmpty(t, results[0].RunID)
	assert.Equal(t, "underdamped", results[0].Meta.Regime)

	assert.Equal(t, "step-2", results[1].Name)
	assert.Empty(t, results[1].RunID)
	assert.Equal(t, "critical", results[1].Meta.Regime)

	assert.Equal(t, "overdamped", results[2].Meta.Regime)

	runs, err := store.List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, results[0].RunID, runs[0].ID)
}

func TestRunScenario_StopsAtFailingStep(t *testing.T) {
	body := `steps:
  - preset: undamped
    config: {t1: 1}
  - preset: nope
  - preset: critical
`
	sc, err := LoadScenario(writeScenario(t, body))
	require.NoError(t, err)

	results, err := RunScenario(context.Background(), sc, nil, nil)
	assert.ErrorContains(t, err, "unknown preset")
	assert.Len(t, results, 1)
}

func TestRunSweep_Damping(t *testing.T) {
	base := config.GetPreset("undamped")
	base.T1 = 10
	base.Dt = 0.01

	results, err := RunSweep(context.Background(), &ParameterSweep{
		Base:  base,
		Param: "damping",
		Min:   0,
		Max:   4,
		Steps: 5,
	}, nil)
	require.NoError(t, err)
	require.Len(t, results, 5)

	want := []string{"undamped", "underdamped", "critical", "overdamped", "overdamped"}
	for i, r := range results {
		assert.InDelta(t, float64(i), r.Value, 1e-12)
		assert.Equal(t, want[i], r.Regime, "c=%g", r.Value)
		assert.False(t, r.Diverged)
	}

	assert.Zero(t, results[0].Dissipated)
	assert.GreaterOrEqual(t, results[0].SignChanges, 3)
	assert.GreaterOrEqual(t, results[1].SignChanges, 1)
	assert.LessOrEqual(t, results[2].SignChanges, 1)
	assert.Equal(t, 0.0, base.Damper.Coefficient, "base must not be modified")
}

func TestRunSweep_Errors(t *testing.T) {
	base := config.DefaultConfig()

	results, err := RunSweep(context.Background(), &ParameterSweep{Base: base, Param: "colour", Min: 0, Max: 1, Steps: 2}, nil)
	assert.ErrorContains(t, err, "unknown parameter")
	assert.Empty(t, results)

	_, err = RunSweep(context.Background(), &ParameterSweep{Base: base, Param: "mass", Min: 1, Max: 2, Steps: 0}, nil)
	assert.Error(t, err)

	results, err = RunSweep(context.Background(), &ParameterSweep{Base: base, Param: "mass", Min: 1, Max: -1, Steps: 3}, nil)
	assert.Error(t, err)
	assert.Len(t, results, 1)
}
