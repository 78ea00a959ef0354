package main

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/san-kum/stepwise/internal/automation"
	"github.com/san-kum/stepwise/internal/config"
	"github.com/san-kum/stepwise/internal/experiment"
	"github.com/san-kum/stepwise/internal/special"
	"github.com/san-kum/stepwise/internal/stochastic"
	"github.com/san-kum/stepwise/internal/viz"
)

func runView(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.cancel()

	sys, err := s.registry.Build(s.cfg.Model, s.cfg.Params, s.cfg.Y0)
	if err != nil {
		return err
	}
	y, err := experiment.InitialState(sys, s.cfg.Y0)
	if err != nil {
		return err
	}

	step := dt
	if !cmd.Flags().Changed("dt") {
		step = (s.cfg.T1 - s.cfg.T0) / float64(s.cfg.Steps)
	}

	m, err := viz.NewModel(sys, viz.Options{
		Name:        s.cfg.Model,
		Y0:          y,
		T0:          s.cfg.T0,
		T1:          s.cfg.T1,
		Dt:          step,
		Chunk:       chunk,
		StartFactor: s.cfg.StartFactor,
		X:           xAxis,
		Y:           yAxis,
		Theme:       theme,
		SaveDir:     saveDir,
	})
	if err != nil {
		return err
	}
	if err := viz.Run(m); err != nil {
		return err
	}
	if m.Err() != nil {
		return m.Err()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "t = %.6g  evaluations = %d\n", m.T(), m.Evaluations())
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	outcomes, runErr := automation.RunScenario(ctx, scenario, registry, log)
	w := cmd.OutOrStdout()
	if len(outcomes) > 0 {
		rows := make([][]string, len(outcomes))
		for i, out := range outcomes {
			rows[i] = []string{
				strconv.Itoa(i + 1),
				out.Config.Model,
				out.Config.Method,
				strconv.Itoa(out.Evaluations()),
				fmt.Sprintf("%.6g", out.Metrics["final_norm"]),
				out.Elapsed.String(),
			}
		}
		if err := printTable(w, []string{"STEP", "MODEL", "METHOD", "EVALS", "|y(t1)|", "ELAPSED"}, rows); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	for i := range scenario.Sweeps {
		sweep := &scenario.Sweeps[i]
		results, err := automation.RunSweep(ctx, sweep, registry, log)
		if err != nil {
			return fmt.Errorf("sweep %d: %w", i+1, err)
		}
		rows := make([][]string, len(results))
		for j, r := range results {
			rows[j] = []string{
				fmt.Sprintf("%.4g", r.ParamValue),
				fmt.Sprintf("%.6g", r.MinEnergy),
				fmt.Sprintf("%.6g", r.MaxEnergy),
				strconv.Itoa(r.Evaluations),
			}
		}
		fmt.Fprintf(w, "sweep %s over %s\n", sweep.Model, sweep.ParamName)
		if err := printTable(w, []string{sweep.ParamName, "MIN ENERGY", "MAX ENERGY", "EVALS"}, rows); err != nil {
			return err
		}
	}
	return nil
}

func runPresets(cmd *cobra.Command, args []string) error {
	models := args
	if len(models) == 0 {
		models = sortedKeys(config.Presets)
	}
	var rows [][]string
	for _, model := range models {
		for _, name := range config.ListPresets(model) {
			p := config.GetPreset(model, name)
			rows = append(rows, []string{model, name, p.Method, fmt.Sprintf("[%g, %g]", p.T0, p.T1), strconv.Itoa(p.Steps)})
		}
	}
	if len(rows) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no presets for model: %v\n", models)
		return nil
	}
	return printTable(cmd.OutOrStdout(), []string{"MODEL", "PRESET", "METHOD", "SPAN", "STEPS"}, rows)
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

var derivFuncs = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"exp":  math.Exp,
	"log":  math.Log,
	"sqrt": math.Sqrt,
	"atan": math.Atan,
}

func specialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "special",
		Short: "special functions and numerical helpers",
	}

	lambertCmd := &cobra.Command{
		Use:   "lambertw [--branch k] [--] z",
		Short: "Lambert W on branch 0 or -1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			w, err := special.LambertW(v[0], branch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "W_%d(%g) = %.16g\n", branch, v[0], w)
			return nil
		},
	}
	lambertCmd.Flags().IntVar(&branch, "branch", 0, "branch (0 or -1)")

	zetaCmd := &cobra.Command{
		Use:   "zeta [s]",
		Short: "Riemann zeta for real s > 1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			z, err := special.Zeta(v[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "zeta(%g) = %.16g\n", v[0], z)
			return nil
		},
	}

	quadraticCmd := &cobra.Command{
		Use:   "quadratic [a] [b] [c]",
		Short: "roots of a x^2 + b x + c",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			x1, x2, err := special.QuadraticRoots(v[0], v[1], v[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "x1 = %v\nx2 = %v\n", x1, x2)
			return nil
		},
	}

	derivCmd := &cobra.Command{
		Use:       "deriv [sin|cos|exp|log|sqrt|atan] [x]",
		Short:     "numerical derivative of an elementary function",
		Args:      cobra.ExactArgs(2),
		ValidArgs: sortedKeys(derivFuncs),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := derivFuncs[args[0]]
			if !ok {
				return fmt.Errorf("unknown function %q (available: %v)", args[0], sortedKeys(derivFuncs))
			}
			v, err := parseFloats(args[1:])
			if err != nil {
				return err
			}
			d, errEst, err := special.Derivative(f, v[0], order)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "d^%d/dx^%d %s(%g) = %.12g (± %.1e)\n", order, order, args[0], v[0], d, errEst)
			return nil
		},
	}
	derivCmd.Flags().IntVar(&order, "order", 1, "derivative order (0-3)")

	// Stop flag parsing at the first positional so negative numbers pass
	// through. A negative first argument still needs "--".
	for _, c := range []*cobra.Command{lambertCmd, zetaCmd, quadraticCmd, derivCmd} {
		c.Flags().SetInterspersed(false)
	}

	cmd.AddCommand(lambertCmd, zetaCmd, quadraticCmd, derivCmd)
	return cmd
}

func montyHallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "montyhall",
		Short: "simulate the Monty Hall game with both strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if games < 1 {
				return fmt.Errorf("games must be positive, got %d", games)
			}
			stick := stochastic.PlayMany(stochastic.NewSource(seed), games, false)
			swap := stochastic.PlayMany(stochastic.NewSource(seed), games, true)
			rows := [][]string{
				{"stick", strconv.Itoa(stick.Wins), fmt.Sprintf("%.4f", stick.Rate())},
				{"switch", strconv.Itoa(swap.Wins), fmt.Sprintf("%.4f", swap.Rate())},
			}
			return printTable(cmd.OutOrStdout(), []string{"STRATEGY", "WINS", "RATE"}, rows)
		},
	}
	cmd.Flags().IntVar(&games, "games", 10000, "games per strategy")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
