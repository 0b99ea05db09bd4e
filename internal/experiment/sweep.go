package experiment

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/dampsim/internal/config"
)

// DefaultSweepSteps are the dt values used when a sweep is given none.
var DefaultSweepSteps = []float64{0.1, 0.05, 0.02, 0.01, 0.005, 0.002, 0.001}

// Point is the energy behaviour of one integration in a sweep.
type Point struct {
	Dt          float64       `json:"dt"`
	Samples     int           `json:"samples"`
	Spread      float64       `json:"spread"`
	MaxResidual float64       `json:"max_residual"`
	RelResidual float64       `json:"rel_residual"`
	Diverged    bool          `json:"diverged"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Sweep integrates base once per step size, concurrently, and reports the
// results in the order of dts. Runs share nothing but the read-only base
// config. The first failing run cancels the rest.
func Sweep(ctx context.Context, base *config.Config, dts []float64, logger *zap.Logger) ([]Point, error) {
	if len(dts) == 0 {
		dts = DefaultSweepSteps
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	points := make([]Point, len(dts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, dt := range dts {
		i, dt := i, dt
		g.Go(func() error {
			cfg := base.Clone()
			cfg.Dt = dt

			exp, err := New(cfg, logger.With(zap.Float64("dt", dt)))
			if err != nil {
				return err
			}

			start := time.Now()
			run, err := exp.Run(ctx)
			if err != nil {
				return err
			}

			points[i] = Point{
				Dt:          dt,
				Samples:     run.Meta.Samples,
				Spread:      run.Meta.Energy.Spread,
				MaxResidual: run.Meta.Energy.MaxResidual,
				RelResidual: run.Meta.Energy.RelResidual,
				Diverged:    run.Meta.Diverged,
				Elapsed:     time.Since(start),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("sweep finished", zap.Int("runs", len(points)))
	return points, nil
}
