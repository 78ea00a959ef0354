package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/san-kum/stepwise/internal/analysis"
	"github.com/san-kum/stepwise/internal/dynamo"
	"github.com/san-kum/stepwise/internal/experiment"
	"github.com/san-kum/stepwise/internal/optim"
)

// startSpinner shows progress on stderr while a long computation runs.
func startSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + suffix
	s.Start()
	return s
}

func runOrder(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.cancel()

	report, err := s.exp.OrderStudy(s.ctx, minSteps, maxSteps)
	if err != nil {
		return err
	}

	rows := make([][]string, len(report.Points))
	for i, p := range report.Points {
		rows[i] = []string{
			strconv.Itoa(p.Steps),
			fmt.Sprintf("%.4g", p.Dt),
			fmt.Sprintf("%.4e", p.Error),
			strconv.Itoa(p.Evaluations),
		}
	}
	w := cmd.OutOrStdout()
	if err := printTable(w, []string{"STEPS", "DT", "ERROR", "EVALS"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: err = %.3e * dt^%.3f\n", report.Method, report.Prefactor, report.Order)
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.cancel()

	best, trials, err := optim.TuneStartFactor(s.ctx, s.cfg, s.registry, s.log, factors)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(trials))
	for _, tr := range trials {
		status := fmt.Sprintf("%.4e", tr.Value)
		if tr.Err != nil {
			status = tr.Err.Error()
		}
		rows = append(rows, []string{
			fmt.Sprintf("%g", tr.Params["start_factor"]),
			status,
			fmt.Sprintf("%g", tr.Metrics["evaluations"]),
		})
	}
	w := cmd.OutOrStdout()
	if err := printTable(w, []string{"START FACTOR", "MAX ERROR", "EVALS"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "best start factor: %g\n", best.Params["start_factor"])
	return nil
}

func runLyapunov(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.cancel()

	flags := cmd.Flags()
	lc := &s.cfg.Lyapunov
	if flags.Changed("samples") {
		lc.Samples = samples
	}
	if flags.Changed("interval") {
		lc.Interval = interval
	}
	if flags.Changed("transient") {
		lc.Transient = transient
	}
	if flags.Changed("seed") {
		lc.Seed = seed
	}

	sp := startSpinner(fmt.Sprintf("sampling %s (%d samples)", s.cfg.Model, lc.Samples))
	run, err := s.exp.Lyapunov(s.ctx)
	sp.Stop()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	mean, std := analysis.Summary(run.Samples)
	fmt.Fprintf(w, "lambda_max = %.4f ± %.4f (%d samples)\n", mean, std, len(run.Samples))

	if compareWith != "" {
		est, err := s.exp.SeparationExponent(compareWith, lc.MinNorm)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "single trajectory (%s): %.4f\n", compareWith, est)
	}
	if plot {
		printPlot(w, run.Samples, "lyapunov samples")
	}
	return nil
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.cancel()

	freq, out, err := s.exp.Spectrum(s.ctx, component)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "dominant frequency of y%d: %.4f\n", component, freq)
	if freq > 0 {
		fmt.Fprintf(w, "period: %.4f\n", 1/freq)
	}

	if plot {
		dt := dynamo.Span{Start: s.cfg.T0, End: s.cfg.T1}.Step(s.cfg.Steps)
		_, power, err := analysis.PowerSpectrum(out.Real.Component(component), dt)
		if err != nil {
			return err
		}
		printPlot(w, power[:max(2, len(power)/4)], fmt.Sprintf("power spectrum (y%d)", component))
	}
	return nil
}

func runPhase(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.cancel()

	cfg := s.cfg.Clone()
	cfg.SaveMemory = false
	cfg.Complex = false
	out, err := experiment.New(cfg, s.registry, s.log).Run(s.ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if poincare >= 0 {
		section, err := analysis.GeneratePoincareSection(out.Real, poincare, threshold, xAxis, yAxis)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "poincare section y%d = %g (%d crossings)\n", poincare, threshold, len(section.Points))
		fmt.Fprintln(w, analysis.PoincareSectionToASCII(section, 80, 24))
		return nil
	}

	portrait, err := analysis.PhasePortrait(out.Real, xAxis, yAxis)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "phase portrait y%d vs y%d\n", yAxis, xAxis)
	fmt.Fprintln(w, analysis.PhasePortraitToASCII(portrait, 80, 24))
	return nil
}

func runBifurcation(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.cancel()

	bcfg := analysis.BifurcationConfig{
		Param:        bifParam,
		Min:          bifMin,
		Max:          bifMax,
		Steps:        bifCount,
		Component:    component,
		Transient:    transient,
		Record:       bifRecord,
		StepsPerUnit: stepsPerUnit,
	}

	sp := startSpinner(fmt.Sprintf("sweeping %s over [%g, %g]", bifParam, bifMin, bifMax))
	data, err := s.exp.Bifurcation(bcfg)
	sp.Stop()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "bifurcation of y%d in %s\n", component, bifParam)
	fmt.Fprintln(w, analysis.BifurcationToASCII(data, 80, 24))
	return nil
}

func runEnergy(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.cancel()

	points, err := s.exp.EnergyStudy(s.ctx, steppers)
	if err != nil {
		return err
	}

	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{p.Integrator, fmt.Sprintf("%.4e", p.MaxDrift), fmt.Sprintf("%.8g", p.Final)}
	}
	return printTable(cmd.OutOrStdout(), []string{"INTEGRATOR", "MAX DRIFT", "FINAL ENERGY"}, rows)
}
