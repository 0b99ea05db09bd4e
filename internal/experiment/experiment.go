package experiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/dampsim/internal/config"
	"github.com/san-kum/dampsim/internal/integrators"
	"github.com/san-kum/dampsim/internal/metrics"
	"github.com/san-kum/dampsim/internal/physics"
	"github.com/san-kum/dampsim/internal/storage"
)

// Experiment is one configured integration: oscillator, Euler integrator
// and an energy accountant observing every sample.
type Experiment struct {
	cfg    *config.Config
	osc    *physics.Oscillator
	euler  *integrators.Euler
	logger *zap.Logger
}

// New validates cfg and builds the oscillator it describes. The config is
// copied, later changes to cfg do not affect the experiment.
func New(cfg *config.Config, logger *zap.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	osc, err := cfg.Oscillator()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Experiment{
		cfg:    cfg.Clone(),
		osc:    osc,
		euler:  integrators.NewEuler(),
		logger: logger,
	}, nil
}

func (e *Experiment) Oscillator() *physics.Oscillator { return e.osc }

func (e *Experiment) Config() *config.Config { return e.cfg.Clone() }

// Run integrates the configured span and accounts energy while the
// trajectory is built. The returned run is not yet saved; its metadata
// has no ID.
func (e *Experiment) Run(ctx context.Context) (*storage.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	span := e.cfg.Span()
	n, err := e.euler.Samples(span, e.cfg.Dt)
	if err != nil {
		return nil, err
	}

	acct := metrics.NewAccountant(e.osc, e.cfg.Dt, n)
	start := time.Now()
	tr, err := e.euler.Integrate(e.osc, e.cfg.InitState.Pos, e.cfg.InitState.Vel, span, e.cfg.Dt, acct)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	if !acct.Complete() {
		return nil, fmt.Errorf("energy accounting saw fewer than %d samples", n)
	}
	series := acct.Series()
	budget := metrics.Summarize(series)
	divergedAt, diverged := tr.Diverged()

	e.logger.Debug("integration finished",
		zap.Int("samples", tr.Len()),
		zap.Float64("dt", e.cfg.Dt),
		zap.Duration("elapsed", elapsed),
		zap.String("regime", e.osc.Regime().String()))

	if diverged {
		e.logger.Warn("trajectory diverged",
			zap.Int("sample", divergedAt),
			zap.Float64("t", tr.T[divergedAt]),
			zap.Float64("dt", e.cfg.Dt))
	}

	return &storage.Run{
		Meta: storage.RunMetadata{
			Config:           e.cfg.Clone(),
			Samples:          tr.Len(),
			Dt:               e.cfg.Dt,
			Regime:           e.osc.Regime().String(),
			NaturalFrequency: e.osc.NaturalFrequency(),
			DampingRatio:     e.osc.DampingRatio(),
			Diverged:         diverged,
			Energy:           budget,
		},
		Trajectory: tr,
		Energy:     series,
	}, nil
}
