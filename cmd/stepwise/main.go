package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/stepwise/internal/automation"
	"github.com/san-kum/stepwise/internal/config"
	"github.com/san-kum/stepwise/internal/experiment"
	"github.com/san-kum/stepwise/internal/export"
	"github.com/san-kum/stepwise/internal/logging"
)

var (
	logLevel  string
	logFormat string

	configFile  string
	preset      string
	method      string
	t0          float64
	t1          float64
	steps       int
	y0          []float64
	params      map[string]string
	saveMemory  bool
	startFactor int
	complexMode bool

	format  string
	outFile string
	maxRows int
	plot    bool

	// order, tune
	minSteps int
	maxSteps int
	factors  []int

	// lyapunov, bifurcation
	samples      int
	interval     float64
	transient    float64
	seed         uint64
	compareWith  string
	bifParam     string
	bifMin       float64
	bifMax       float64
	bifCount     int
	bifRecord    float64
	stepsPerUnit int

	// spectrum, phase, view
	component int
	xAxis     int
	yAxis     int
	poincare  int
	threshold float64
	dt        float64
	chunk     int
	theme     string
	saveDir   string

	steppers []string
	branch   int
	order    int
	games    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "stepwise",
		Short:         "fixed-step ODE integration lab",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatConsole, "log format (console, json)")

	solveCmd := &cobra.Command{
		Use:   "solve [model]",
		Short: "integrate a model and print the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	runFlags(solveCmd)
	solveCmd.Flags().StringVar(&format, "format", config.DefaultFormat, "output format (table, csv, json, svg)")
	solveCmd.Flags().StringVarP(&outFile, "out", "o", "", "write to file, format from extension")
	solveCmd.Flags().IntVar(&maxRows, "rows", 20, "rows shown in table format")
	solveCmd.Flags().BoolVar(&plot, "plot", false, "plot each component")

	orderCmd := &cobra.Command{
		Use:   "order [model]",
		Short: "measure the convergence order against the closed form",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runOrder,
	}
	runFlags(orderCmd)
	orderCmd.Flags().IntVar(&minSteps, "min-steps", 32, "smallest step count")
	orderCmd.Flags().IntVar(&maxSteps, "max-steps", 512, "largest step count")

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid search the ABM start factor",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	runFlags(tuneCmd)
	tuneCmd.Flags().IntSliceVar(&factors, "factors", []int{1, 2, 4, 8}, "start factors to try")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [model]",
		Short: "sample the maximal Lyapunov exponent",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLyapunov,
	}
	runFlags(lyapunovCmd)
	lyapunovCmd.Flags().IntVar(&samples, "samples", 0, "number of samples")
	lyapunovCmd.Flags().Float64Var(&interval, "interval", 0, "time between samples")
	lyapunovCmd.Flags().Float64Var(&transient, "transient", 0, "time discarded before sampling")
	lyapunovCmd.Flags().Uint64Var(&seed, "seed", 0, "seed for the initial separation")
	lyapunovCmd.Flags().StringVar(&compareWith, "compare", "", "also print the single-trajectory estimate using this stepper")
	lyapunovCmd.Flags().BoolVar(&plot, "plot", false, "plot the samples")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [model]",
		Short: "dominant frequency of one component",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSpectrum,
	}
	runFlags(spectrumCmd)
	spectrumCmd.Flags().IntVar(&component, "component", 0, "state component")
	spectrumCmd.Flags().BoolVar(&plot, "plot", false, "plot the power spectrum")

	phaseCmd := &cobra.Command{
		Use:   "phase [model]",
		Short: "phase portrait or Poincare section",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPhase,
	}
	runFlags(phaseCmd)
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	phaseCmd.Flags().IntVar(&poincare, "poincare", -1, "component whose upward crossings define the section")
	phaseCmd.Flags().Float64Var(&threshold, "threshold", 0, "crossing level for --poincare")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation [model]",
		Short: "sweep a parameter and plot the peaks of a component",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBifurcation,
	}
	runFlags(bifurcationCmd)
	bifurcationCmd.Flags().StringVar(&bifParam, "param", "", "parameter to sweep")
	bifurcationCmd.Flags().Float64Var(&bifMin, "min", 0, "first parameter value")
	bifurcationCmd.Flags().Float64Var(&bifMax, "max", 1, "last parameter value")
	bifurcationCmd.Flags().IntVar(&bifCount, "count", 100, "number of parameter values")
	bifurcationCmd.Flags().IntVar(&component, "component", 0, "state component")
	bifurcationCmd.Flags().Float64Var(&transient, "transient", 50, "time discarded per run")
	bifurcationCmd.Flags().Float64Var(&bifRecord, "record", 50, "time recorded per run")
	bifurcationCmd.Flags().IntVar(&stepsPerUnit, "steps-per-unit", 100, "ABM steps per unit of time")
	_ = bifurcationCmd.MarkFlagRequired("param")

	energyCmd := &cobra.Command{
		Use:   "energy [model]",
		Short: "compare energy drift across steppers",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnergy,
	}
	runFlags(energyCmd)
	energyCmd.Flags().StringSliceVar(&steppers, "steppers", []string{"euler", "verlet", "rk4", "rk45"}, "steppers to compare")

	viewCmd := &cobra.Command{
		Use:   "view [model]",
		Short: "integrate with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runView,
	}
	runFlags(viewCmd)
	viewCmd.Flags().Float64Var(&dt, "dt", 0, "step size (default (t1-t0)/steps)")
	viewCmd.Flags().IntVar(&chunk, "chunk", 20, "steps per frame")
	viewCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	viewCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	viewCmd.Flags().StringVar(&theme, "theme", "neon", "color theme")
	viewCmd.Flags().StringVar(&saveDir, "save-dir", ".", "directory for svg snapshots")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scenario of steps and sweeps",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPresets,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models and steppers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := experiment.NewRegistry()
			var rows [][]string
			for _, name := range registry.ListModels() {
				rows = append(rows, []string{"model", name})
			}
			for _, name := range registry.ListSteppers() {
				rows = append(rows, []string{"stepper", name})
			}
			return printTable(cmd.OutOrStdout(), []string{"KIND", "NAME"}, rows)
		},
	}

	rootCmd.AddCommand(solveCmd, orderCmd, tuneCmd, lyapunovCmd, spectrumCmd, phaseCmd,
		bifurcationCmd, energyCmd, viewCmd, batchCmd, presetsCmd, modelsCmd,
		specialCmd(), montyHallCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runFlags registers the flags shared by every command that integrates a model.
func runFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&method, "method", config.DefaultMethod, "integration method (euler, rk4, abm)")
	cmd.Flags().Float64Var(&t0, "t0", 0, "start time")
	cmd.Flags().Float64Var(&t1, "t1", config.DefaultT1, "end time")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().Float64SliceVar(&y0, "y0", nil, "initial state (default: model default)")
	cmd.Flags().StringToStringVar(&params, "param", nil, "model parameter name=value")
	cmd.Flags().BoolVar(&saveMemory, "save-memory", false, "keep only the last four samples (abm)")
	cmd.Flags().IntVar(&startFactor, "start-factor", 2, "RK4 refinement of the abm bootstrap")
	cmd.Flags().BoolVar(&complexMode, "complex", false, "integrate the native complex form")
}

func newLogger() (zerolog.Logger, error) {
	return logging.New(logging.Options{Level: logLevel, Format: logFormat, Output: os.Stderr})
}

// loadConfig layers defaults, then a preset, then a config file, then the
// flags the user actually set.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	model := config.DefaultModel
	if len(args) > 0 {
		model = args[0]
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) == 0 {
			model = cfg.Model
		}
	}
	cfg.Model = model

	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("t0") {
		cfg.T0 = t0
	}
	if flags.Changed("t1") {
		cfg.T1 = t1
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("y0") {
		cfg.Y0 = y0
	}
	if flags.Changed("save-memory") {
		cfg.SaveMemory = saveMemory
	}
	if flags.Changed("start-factor") {
		cfg.StartFactor = startFactor
	}
	if flags.Changed("complex") {
		cfg.Complex = complexMode
	}
	if flags.Changed("format") {
		cfg.Format = format
	}
	if flags.Changed("param") {
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, len(params))
		}
		for name, raw := range params {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", name, err)
			}
			cfg.Params[name] = v
		}
	}
	return cfg, cfg.Validate()
}

// session is the common state of commands that integrate a model.
type session struct {
	ctx      context.Context
	cancel   context.CancelFunc
	log      zerolog.Logger
	cfg      *config.Config
	registry *experiment.Registry
	exp      *experiment.Experiment
}

func newSession(cmd *cobra.Command, args []string) (*session, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, err
	}
	log = logging.Component(log, cmd.Name())
	registry := experiment.NewRegistry()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	return &session{
		ctx:      ctx,
		cancel:   cancel,
		log:      log,
		cfg:      cfg,
		registry: registry,
		exp:      experiment.New(cfg, registry, log),
	}, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.cancel()

	out, err := s.exp.Run(s.ctx)
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := automation.Save(outFile, out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outFile)
	} else if err := writeOutcome(cmd.OutOrStdout(), out, s.cfg.Format); err != nil {
		return err
	}

	if plot {
		plotOutcome(cmd.OutOrStdout(), out)
	}
	return nil
}

func writeOutcome(w io.Writer, out *experiment.Outcome, format string) error {
	switch format {
	case "csv":
		if out.Complex != nil {
			return export.WriteCSV(w, out.Complex)
		}
		return export.WriteCSV(w, out.Real)
	case "json":
		if out.Complex != nil {
			return export.WriteJSON(w, out.Meta(), out.Complex)
		}
		return export.WriteJSON(w, out.Meta(), out.Real)
	case "svg":
		res := out.Real
		if out.Complex != nil {
			res = export.Realify(out.Complex)
		}
		return export.WriteSVG(w, res, 800, 600)
	}

	var err error
	if out.Complex != nil {
		err = export.WriteTable(w, out.Complex, maxRows)
	} else {
		err = export.WriteTable(w, out.Real, maxRows)
	}
	if err != nil {
		return err
	}
	return printMetrics(w, out)
}

func printMetrics(w io.Writer, out *experiment.Outcome) error {
	rows := [][]string{
		{"model", out.Config.Model},
		{"method", out.Config.Method},
		{"evaluations", strconv.Itoa(out.Evaluations())},
		{"elapsed", out.Elapsed.String()},
	}
	for _, name := range sortedKeys(out.Metrics) {
		rows = append(rows, []string{name, fmt.Sprintf("%.6g", out.Metrics[name])})
	}
	return printTable(w, []string{"METRIC", "VALUE"}, rows)
}

func plotOutcome(w io.Writer, out *experiment.Outcome) {
	const maxPlots = 6
	if out.Complex != nil {
		for i := 0; i < min(out.Complex.Dim(), maxPlots); i++ {
			printPlot(w, export.Modulus(out.Complex.Component(i)), fmt.Sprintf("|y%d| vs time", i))
		}
		return
	}
	for i := 0; i < min(out.Real.Dim(), maxPlots); i++ {
		printPlot(w, out.Real.Component(i), fmt.Sprintf("y%d vs time", i))
	}
}

func printPlot(w io.Writer, data []float64, caption string) {
	if len(data) < 2 {
		return
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Fprintln(w, graph)
	fmt.Fprintln(w)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func printTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.String())
	return err
}
