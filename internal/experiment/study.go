package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/stepwise/internal/analysis"
	"github.com/san-kum/stepwise/internal/dynamo"
	"github.com/san-kum/stepwise/internal/integrators"
)

var (
	ErrNoExact  = errors.New("model has no closed-form solution from t0 = 0")
	ErrNoEnergy = errors.New("model has no energy function")
)

type OrderPoint struct {
	Steps       int
	Dt          float64
	Error       float64
	Evaluations int
}

// OrderReport is the error of the final state against the closed form for a
// doubling sequence of step counts, with the fitted power law.
type OrderReport struct {
	Method    string
	Points    []OrderPoint
	Order     float64
	Prefactor float64
}

// OrderStudy runs the configured method for minSteps, 2*minSteps, ... up to
// maxSteps and fits err = prefactor * dt^order.
func (e *Experiment) OrderStudy(ctx context.Context, minSteps, maxSteps int) (*OrderReport, error) {
	if minSteps < 1 || maxSteps < minSteps {
		return nil, fmt.Errorf("order study: need 1 <= min-steps <= max-steps, got %d..%d", minSteps, maxSteps)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	sys, y0, err := e.prepare()
	if err != nil {
		return nil, err
	}
	exact, ok := sys.(dynamo.Exact)
	if !ok || e.cfg.T0 != 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoExact, e.cfg.Model)
	}
	want := exact.Solution(y0, e.cfg.T1)
	f := WithContext(ctx, dynamo.AsFunc(sys))
	span := dynamo.Span{Start: e.cfg.T0, End: e.cfg.T1}

	report := &OrderReport{Method: e.cfg.Method}
	var dts, errs []float64
	for nt := minSteps; nt <= maxSteps; nt *= 2 {
		cfg := e.cfg.Clone()
		cfg.Steps = nt
		cfg.SaveMemory = true
		res, err := integrate(f, span, []float64(y0), cfg, nil)
		if err != nil {
			return nil, fmt.Errorf("steps=%d: %w", nt, err)
		}
		got := res.Final()
		worst := 0.0
		for i := range got {
			worst = math.Max(worst, math.Abs(got[i]-want[i]))
		}
		p := OrderPoint{Steps: nt, Dt: span.Step(nt), Error: worst, Evaluations: res.Evaluations}
		report.Points = append(report.Points, p)
		dts = append(dts, p.Dt)
		errs = append(errs, p.Error)
		e.log.Debug().Int("steps", nt).Float64("error", worst).Msg("order point")
	}

	report.Order, report.Prefactor, err = analysis.ErrorOrder(dts, errs)
	if err != nil {
		return report, err
	}
	return report, nil
}

// EnergyPoint is the largest energy deviation seen along one trajectory.
type EnergyPoint struct {
	Integrator string
	MaxDrift   float64
	Final      float64
}

// EnergyStudy follows the configured model with each named stepper and with
// bounded-memory ABM, recording the worst deviation from the initial energy.
func (e *Experiment) EnergyStudy(ctx context.Context, steppers []string) ([]EnergyPoint, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	sys, y0, err := e.prepare()
	if err != nil {
		return nil, err
	}
	h, ok := sys.(dynamo.Hamiltonian)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoEnergy, e.cfg.Model)
	}
	span := dynamo.Span{Start: e.cfg.T0, End: e.cfg.T1}
	dt := span.Step(e.cfg.Steps)
	e0 := h.Energy(y0, span.Start)

	var points []EnergyPoint
	for _, name := range steppers {
		integ, err := e.registry.GetStepper(name)
		if err != nil {
			return nil, err
		}
		p := EnergyPoint{Integrator: name}
		x := y0.Clone()
		for n := 0; n < e.cfg.Steps; n++ {
			if n&0x3ff == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			t := span.Start + float64(n)*dt
			x = integ.Step(sys, x, t, dt)
			if !x.IsValid() {
				return nil, &dynamo.StepError{Step: n + 1, Time: t + dt, Wrapped: dynamo.ErrInvalidState}
			}
			p.MaxDrift = math.Max(p.MaxDrift, math.Abs(h.Energy(x, t+dt)-e0))
		}
		p.Final = h.Energy(x, span.End)
		points = append(points, p)
	}

	abm := EnergyPoint{Integrator: "abm"}
	res, err := integrators.ABM(WithContext(ctx, dynamo.AsFunc(sys)), span, []float64(y0), e.cfg.Steps, integrators.ABMOptions[float64]{
		SaveMemory:  true,
		StartFactor: e.cfg.StartFactor,
		Observer: func(t float64, y []float64) {
			abm.MaxDrift = math.Max(abm.MaxDrift, math.Abs(h.Energy(y, t)-e0))
		},
	})
	if err != nil {
		return nil, err
	}
	abm.Final = h.Energy(res.Final(), span.End)
	points = append(points, abm)
	return points, nil
}

// Lyapunov samples the maximal Lyapunov exponent of the configured model.
func (e *Experiment) Lyapunov(ctx context.Context) (*analysis.LyapunovRun, error) {
	sys, y0, err := e.prepare()
	if err != nil {
		return nil, err
	}
	cfg := e.cfg.Lyapunov
	if cfg.Start == 0 {
		cfg.Start = e.cfg.T0
	}
	e.log.Debug().
		Int("samples", cfg.Samples).
		Float64("interval", cfg.Interval).
		Uint64("seed", cfg.Seed).
		Msg("lyapunov sampling")
	return analysis.LyapunovSampler(WithContext(ctx, dynamo.AsFunc(sys)), y0, cfg)
}

// Spectrum runs the configured model with full history and returns the
// dominant frequency of one component.
func (e *Experiment) Spectrum(ctx context.Context, component int) (float64, *Outcome, error) {
	cfg := e.cfg.Clone()
	cfg.SaveMemory = false
	cfg.Complex = false
	sub := &Experiment{cfg: cfg, registry: e.registry, log: e.log}
	out, err := sub.Run(ctx)
	if err != nil {
		return 0, nil, err
	}
	if component < 0 || component >= out.Real.Dim() {
		return 0, out, analysis.ErrComponent
	}
	dt := dynamo.Span{Start: cfg.T0, End: cfg.T1}.Step(cfg.Steps)
	freq, err := analysis.DominantFrequency(out.Real.Component(component), dt)
	return freq, out, err
}

// Bifurcation sweeps one model parameter and collects the peaks of a component.
func (e *Experiment) Bifurcation(bcfg analysis.BifurcationConfig) ([]analysis.BifurcationPoint, error) {
	sys, y0, err := e.prepare()
	if err != nil {
		return nil, err
	}
	return analysis.BifurcationDiagram(sys, y0, bcfg)
}

// SeparationExponent is the single-trajectory Lyapunov estimate using a named
// stepper.
func (e *Experiment) SeparationExponent(stepper string, perturbation float64) (float64, error) {
	sys, y0, err := e.prepare()
	if err != nil {
		return 0, err
	}
	integ, err := e.registry.GetStepper(stepper)
	if err != nil {
		return 0, err
	}
	dt := (e.cfg.T1 - e.cfg.T0) / float64(e.cfg.Steps)
	return analysis.SeparationExponent(sys, integ, y0, dt, e.cfg.T1-e.cfg.T0, perturbation), nil
}
