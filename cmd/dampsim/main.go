package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/dampsim/internal/analysis"
	"github.com/san-kum/dampsim/internal/audio"
	"github.com/san-kum/dampsim/internal/automation"
	"github.com/san-kum/dampsim/internal/config"
	"github.com/san-kum/dampsim/internal/dynamo"
	"github.com/san-kum/dampsim/internal/experiment"
	"github.com/san-kum/dampsim/internal/export"
	"github.com/san-kum/dampsim/internal/integrators"
	"github.com/san-kum/dampsim/internal/physics"
	"github.com/san-kum/dampsim/internal/storage"
	"github.com/san-kum/dampsim/internal/viz"
)

var (
	dataDir string
	verbose bool
	// Model
	mass        float64
	stiffness   float64
	damping     float64
	restLength  float64
	gravity     float64
	formulation string
	// Initial state and grid
	pos float64
	vel float64
	t0  float64
	t1  float64
	dt  float64
	// Config file
	configFile string
	// Preset name
	preset string
	// Output
	render      string
	noSave      bool
	interval    time.Duration
	sweepDts    []float64
	writeConfig string
	svgKind     string
	svgWidth    int
	svgHeight   int
	svgFrame    int
	wavOut      string
	wavSpeed    float64
	// Parameter sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	logger *zap.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if kind := dynamo.Kind(err); kind != "" {
			fmt.Fprintf(os.Stderr, "error (%s): %v\n", kind, err)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dampsim",
		Short: "damped spring-mass simulator with energy accounting",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dampsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate, account energy and save the run",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().StringVar(&render, "render", config.DefaultRender, "renderer ("+strings.Join(viz.Names(), ", ")+")")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and decay analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "integrate and replay the motion in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addModelFlags(liveCmd)
	liveCmd.Flags().DurationVar(&interval, "interval", viz.DefaultInterval, "delay between frames")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "compare energy behaviour across step sizes",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepDts, "dts", nil, "step sizes (default "+fmt.Sprint(experiment.DefaultSweepSteps)+")")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "show derived parameters without integrating",
		Args:  cobra.NoArgs,
		RunE:  showInfo,
	}
	addModelFlags(infoCmd)
	infoCmd.Flags().StringVar(&writeConfig, "write-config", "", "write the resolved config to this yaml file")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a run plot as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgKind, "kind", "displacement", "plot kind ("+strings.Join(export.Kinds, ", ")+")")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")
	exportSVGCmd.Flags().IntVar(&svgFrame, "frame", -1, "sample drawn by --kind canvas (-1 for the last)")

	exportWAVCmd := &cobra.Command{
		Use:   "export-wav [run_id]",
		Short: "sonify a run to a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE:  exportWAV,
	}
	exportWAVCmd.Flags().StringVarP(&wavOut, "output", "o", "", "output file (default <run_id>.wav)")
	exportWAVCmd.Flags().Float64Var(&wavSpeed, "speed", 1, "simulated seconds per second of audio")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario of chained runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	paramSweepCmd := &cobra.Command{
		Use:   "param-sweep",
		Short: "sweep one physical parameter across a range",
		Args:  cobra.NoArgs,
		RunE:  runParamSweep,
	}
	addModelFlags(paramSweepCmd)
	paramSweepCmd.Flags().StringVar(&sweepParam, "param", "damping", "parameter ("+strings.Join(config.Params, ", ")+")")
	paramSweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	paramSweepCmd.Flags().Float64Var(&sweepMax, "max", 4, "last value")
	paramSweepCmd.Flags().IntVar(&sweepSteps, "steps", 9, "number of values")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, exportWAVCmd, liveCmd, sweepCmd, paramSweepCmd, scenarioCmd, presetsCmd, infoCmd)
	return rootCmd
}

func addModelFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&mass, "mass", def.Mass, "mass [kg]")
	cmd.Flags().Float64VarP(&stiffness, "stiffness", "k", def.Spring.Stiffness, "spring constant [N/m]")
	cmd.Flags().Float64VarP(&damping, "damping", "c", def.Damper.Coefficient, "damping coefficient [N·s/m]")
	cmd.Flags().Float64Var(&restLength, "rest-length", def.Spring.RestLength, "spring rest length [m] (absolute)")
	cmd.Flags().Float64Var(&gravity, "gravity", def.Gravity, "gravitational acceleration [m/s²] (absolute)")
	cmd.Flags().StringVar(&formulation, "formulation", def.Formulation, "equilibrium or absolute")
	cmd.Flags().Float64Var(&pos, "pos", def.InitState.Pos, "initial displacement [m]")
	cmd.Flags().Float64Var(&vel, "vel", def.InitState.Vel, "initial velocity [m/s]")
	cmd.Flags().Float64Var(&t0, "t0", def.T0, "start time [s]")
	cmd.Flags().Float64Var(&t1, "t1", def.T1, "end time [s]")
	cmd.Flags().Float64Var(&dt, "dt", def.Dt, "timestep [s]")
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOnto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("mass") {
		cfg.Mass = mass
	}
	if flags.Changed("stiffness") {
		cfg.Spring.Stiffness = stiffness
	}
	if flags.Changed("damping") {
		cfg.Damper.Coefficient = damping
	}
	if flags.Changed("rest-length") {
		cfg.Spring.RestLength = restLength
	}
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if flags.Changed("formulation") {
		cfg.Formulation = formulation
	}
	if flags.Changed("pos") {
		cfg.InitState.Pos = pos
	}
	if flags.Changed("vel") {
		cfg.InitState.Vel = vel
	}
	if flags.Changed("t0") {
		cfg.T0 = t0
	}
	if flags.Changed("t1") {
		cfg.T1 = t1
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if f := flags.Lookup("render"); f != nil && f.Changed {
		cfg.Render = render
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func getLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, getLogger())
	if err != nil {
		return err
	}
	renderer, err := viz.Lookup(cfg.Render, exp.Oscillator())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	start := time.Now()
	run, err := exp.Run(commandContext(cmd))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := renderer.Render(out, run.Trajectory, run.Energy); err != nil {
		return err
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	if noSave {
		return nil
	}

	st := storage.New(dataDir, getLogger())
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(run)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "run id: %s\n", runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, getLogger())
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSAMPLES\tDT\tREGIME\tZETA\tDIVERGED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4fs\t%s\t%.3f\t%v\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Samples,
			run.Dt,
			run.Regime,
			run.DampingRatio,
			run.Diverged,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	run, err := storage.New(dataDir, getLogger()).LoadRun(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", run.Meta.ID)
	fmt.Fprintf(out, "regime: %s\n", run.Meta.Regime)
	fmt.Fprintf(out, "samples: %d\n\n", run.Trajectory.Len())

	return viz.Plot{}.Render(out, run.Trajectory, run.Energy)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	run, err := storage.New(dataDir, getLogger()).LoadRun(args[0])
	if err != nil {
		return err
	}
	if run.Meta.Config == nil {
		return fmt.Errorf("run %s has no config", run.Meta.ID)
	}
	osc, err := run.Meta.Config.Oscillator()
	if err != nil {
		return err
	}
	if n, diverged := run.Trajectory.Diverged(); diverged {
		return fmt.Errorf("run %s diverged at sample %d, nothing to analyze", run.Meta.ID, n)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "frequency analysis: %s\n\n", run.Meta.ID)

	offsets := make([]float64, run.Trajectory.Len())
	for i, x := range run.Trajectory.X {
		offsets[i] = osc.Offset(x)
	}
	ps := analysis.PowerSpectrum(analysis.PadPow2(offsets))
	if plotData := ps[:len(ps)/4]; len(plotData) > 1 {
		graph := asciigraph.Plot(plotData,
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (x - x_eq)"),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}

	r := analysis.Inspect(osc, run.Trajectory)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "regime\t%s\n", r.Regime)
	fmt.Fprintf(w, "damping ratio\t%.4f\n", r.DampingRatio)
	fmt.Fprintf(w, "natural frequency\t%.4f rad/s\n", r.NaturalFrequency)
	fmt.Fprintf(w, "damped frequency\t%.4f hz\n", r.DampedFrequencyHz)
	fmt.Fprintf(w, "dominant frequency\t%.4f hz\n", r.DominantHz)
	if r.DominantHz > 0 {
		fmt.Fprintf(w, "period\t%.4f s\n", 1/r.DominantHz)
	}
	fmt.Fprintf(w, "sign changes\t%d\n", r.SignChanges)
	fmt.Fprintf(w, "log decrement\t%.4f\n", r.LogDecrement)
	fmt.Fprintf(w, "estimated damping\t%.4f\n", r.EstimatedDamping)
	fmt.Fprintf(w, "consistent\t%v\n", r.Consistent)
	return w.Flush()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	run, err := storage.New(dataDir, getLogger()).LoadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(cmd.OutOrStdout(), run.Trajectory, run.Energy)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	run, err := storage.New(dataDir, getLogger()).LoadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(cmd.OutOrStdout(), run)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	run, err := storage.New(dataDir, getLogger()).LoadRun(args[0])
	if err != nil {
		return err
	}
	if svgKind == "canvas" {
		var osc *physics.Oscillator
		if run.Meta.Config != nil {
			if osc, err = run.Meta.Config.Oscillator(); err != nil {
				return err
			}
		}
		return export.WriteFrameSVG(cmd.OutOrStdout(), run.Trajectory, run.Energy, osc, svgFrame, svgWidth)
	}
	return export.WriteSVG(cmd.OutOrStdout(), svgKind, run.Trajectory, run.Energy, svgWidth, svgHeight)
}

func exportWAV(cmd *cobra.Command, args []string) error {
	run, err := storage.New(dataDir, getLogger()).LoadRun(args[0])
	if err != nil {
		return err
	}

	out := wavOut
	if out == "" {
		out = args[0] + ".wav"
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := audio.WriteWAV(f, run.Trajectory, run.Energy, wavSpeed); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir, getLogger())
	if err := st.Init(); err != nil {
		return err
	}

	results, err := automation.RunScenario(commandContext(cmd), scenario, st, getLogger())

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tREGIME\tSAMPLES\tFINAL_E\tDISSIPATED\tRUN")
	for _, r := range results {
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.6f\t%.6f\t%s\n",
			r.Name, r.Meta.Regime, r.Meta.Samples, r.Meta.Energy.Final, r.Meta.Energy.Dissipated, id)
	}
	if flushErr := w.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	return err
}

func runParamSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(commandContext(cmd), &automation.ParameterSweep{
		Base:  cfg,
		Param: sweepParam,
		Min:   sweepMin,
		Max:   sweepMax,
		Steps: sweepSteps,
	}, getLogger())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tZETA\tREGIME\tCROSSINGS\tFINAL_E\tDISSIPATED\tDIVERGED\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%.3f\t%s\t%d\t%.6f\t%.6f\t%v\n",
			r.Value, r.DampingRatio, r.Regime, r.SignChanges, r.FinalEnergy, r.Dissipated, r.Diverged)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, getLogger())
	if err != nil {
		return err
	}
	run, err := exp.Run(commandContext(cmd))
	if err != nil {
		return err
	}

	live := viz.Live{Osc: exp.Oscillator(), Interval: interval, Input: cmd.InOrStdin()}
	return live.Render(cmd.OutOrStdout(), run.Trajectory, run.Energy)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	points, err := experiment.Sweep(commandContext(cmd), cfg, sweepDts, getLogger())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "dt sweep over [%g, %g] s\n\n", cfg.T0, cfg.T1)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSAMPLES\tSPREAD\tMAX_RESIDUAL\tREL_RESIDUAL\tDIVERGED\tTIME")
	for _, p := range points {
		fmt.Fprintf(w, "%g\t%d\t%.3e\t%.3e\t%.3e\t%v\t%v\n",
			p.Dt, p.Samples, p.Spread, p.MaxResidual, p.RelResidual, p.Diverged, p.Elapsed.Round(time.Microsecond))
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "presets:")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		osc, err := cfg.Oscillator()
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		fmt.Fprintf(out, "  %-12s %-12s zeta=%.3f\n", name, osc.Regime(), osc.DampingRatio())
	}
	return nil
}

func showInfo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	osc, err := cfg.Oscillator()
	if err != nil {
		return err
	}
	n, err := integrators.NewEuler().Samples(cfg.Span(), cfg.Dt)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	params := osc.GetParams()
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%g\n", name, params[name])
	}
	fmt.Fprintf(w, "formulation\t%s\n", osc.Formulation)
	fmt.Fprintf(w, "natural frequency\t%.4f rad/s\n", osc.NaturalFrequency())
	fmt.Fprintf(w, "damping ratio\t%.4f\n", osc.DampingRatio())
	fmt.Fprintf(w, "critical damping\t%.4f N·s/m\n", osc.CriticalDamping())
	fmt.Fprintf(w, "regime\t%s\n", osc.Regime())
	if osc.Regime() == physics.Underdamped || osc.Regime() == physics.Undamped {
		fmt.Fprintf(w, "damped frequency\t%.4f rad/s\n", osc.DampedFrequency())
	}
	fmt.Fprintf(w, "equilibrium\t%.4f m\n", osc.Equilibrium())
	fmt.Fprintf(w, "initial energy\t%.6f J\n", osc.Energy(cfg.InitState.Pos, cfg.InitState.Vel))
	fmt.Fprintf(w, "samples\t%d\n", n)
	if err := w.Flush(); err != nil {
		return err
	}

	if writeConfig != "" {
		if err := config.Save(writeConfig, cfg); err != nil {
			return err
		}
		fmt.Fprintf(out, "config written to %s\n", writeConfig)
	}
	return nil
}
