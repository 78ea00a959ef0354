package analysis

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/stepwise/internal/dynamo"
	"github.com/san-kum/stepwise/internal/integrators"
)

// LyapunovConfig controls the sampler. Every sample evolves a base state and a
// neighbour MinNorm away for Interval time units using StepsPerInterval RK4 steps.
type LyapunovConfig struct {
	MinNorm          float64 `yaml:"min_norm"`
	Interval         float64 `yaml:"interval"`
	Samples          int     `yaml:"samples"`
	StepsPerInterval int     `yaml:"steps_per_interval"`
	Transient        float64 `yaml:"transient"`
	Start            float64 `yaml:"start"`
	Seed             uint64  `yaml:"seed"`

	// Direction is the initial separation; random when nil.
	Direction []float64 `yaml:"-"`
	Debug     bool      `yaml:"-"`
}

func DefaultLyapunovConfig() LyapunovConfig {
	return LyapunovConfig{
		MinNorm:          1e-7,
		Interval:         10,
		Samples:          100,
		StepsPerInterval: 1000,
		Transient:        20,
	}
}

func (c LyapunovConfig) Validate() error {
	if c.MinNorm <= 0 || c.Interval <= 0 || c.Samples < 1 || c.StepsPerInterval < 1 || c.Transient < 0 {
		return ErrConfig
	}
	return nil
}

// Segment is one sampling interval kept when Debug is set.
type Segment struct {
	T  []float64
	Y  [][]float64
	DY [][]float64
}

// LyapunovRun holds the samples and, with Debug, the evolution behind them.
type LyapunovRun struct {
	Samples  []float64
	Segments []Segment
	Final    []float64
}

// Lyapunov returns uncorrelated samples of the maximal Lyapunov exponent of f.
// Each sample is the slope of log|dy| against t over one interval; the
// separation is then pulled back to MinNorm along its current direction.
func Lyapunov(f dynamo.Func[float64], y0 []float64, cfg LyapunovConfig) ([]float64, error) {
	run, err := LyapunovSampler(f, y0, cfg)
	if err != nil {
		return nil, err
	}
	return run.Samples, nil
}

func LyapunovSampler(f dynamo.Func[float64], y0 []float64, cfg LyapunovConfig) (*LyapunovRun, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(y0) == 0 {
		return nil, dynamo.ErrInvalidState
	}

	t := cfg.Start
	y := dynamo.Clone(y0)
	if cfg.Transient > 0 {
		steps := max(1, int(math.Ceil(cfg.Transient/cfg.Interval*float64(cfg.StepsPerInterval))))
		res, err := integrators.RK4(f, dynamo.Span{Start: t, End: t + cfg.Transient}, y, steps)
		if err != nil {
			return nil, err
		}
		y = res.Final()
		t += cfg.Transient
	}

	dy := cfg.Direction
	if dy == nil {
		rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
		dy = make([]float64, len(y))
		for i := range dy {
			dy[i] = rng.Float64() - 0.5
		}
	} else if len(dy) != len(y) {
		return nil, dynamo.ErrDimensionMismatch
	}
	dy = dynamo.Clone(dy)

	run := &LyapunovRun{Samples: make([]float64, 0, cfg.Samples)}
	logs := make([]float64, cfg.StepsPerInterval+1)

	for s := 0; s < cfg.Samples; s++ {
		norm := floats.Norm(dy, 2)
		if norm == 0 || math.IsNaN(norm) {
			return nil, dynamo.ErrInvalidState
		}
		floats.Scale(cfg.MinNorm/norm, dy)

		span := dynamo.Span{Start: t, End: t + cfg.Interval}
		base, err := integrators.RK4(f, span, y, cfg.StepsPerInterval)
		if err != nil {
			return nil, err
		}
		shifted := dynamo.Clone(y)
		floats.Add(shifted, dy)
		pert, err := integrators.RK4(f, span, shifted, cfg.StepsPerInterval)
		if err != nil {
			return nil, err
		}

		var seg Segment
		for n := range base.T {
			sep := floats.SubTo(make([]float64, len(y)), pert.Sample(n), base.Sample(n))
			logs[n] = math.Log(floats.Norm(sep, 2))
			if cfg.Debug {
				seg.Y = append(seg.Y, base.Sample(n))
				seg.DY = append(seg.DY, sep)
			}
		}
		_, lam := stat.LinearRegression(base.T, logs, nil, false)
		run.Samples = append(run.Samples, lam)

		if cfg.Debug {
			seg.T = base.T
			run.Segments = append(run.Segments, seg)
		}

		y = base.Final()
		dy = floats.SubTo(make([]float64, len(y)), pert.Final(), y)
		t = span.End
	}

	run.Final = y
	return run, nil
}

// Summary returns the mean and sample standard deviation.
func Summary(samples []float64) (mean, std float64) {
	if len(samples) == 1 {
		return samples[0], 0
	}
	return stat.MeanStdDev(samples, nil)
}

// SeparationExponent estimates the largest Lyapunov exponent in a single run
// by following two nearby trajectories with a stepper and renormalizing their
// separation whenever it exceeds one.
func SeparationExponent(dyn dynamo.System, integ dynamo.Integrator, x0 dynamo.State, dt, duration, perturbation float64) float64 {
	if len(x0) == 0 || perturbation <= 0 || dt <= 0 {
		return 0
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += perturbation

	sumLog := 0.0
	steps := int(math.Round(duration / dt))
	for n := 0; n < steps; n++ {
		t := float64(n) * dt
		x = integ.Step(dyn, x, t, dt)
		xp = integ.Step(dyn, xp, t, dt)

		sep := xp.Sub(x).Norm()
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / perturbation)
		xp = x.Add(xp.Sub(x).Scale(perturbation / sep))
	}

	if steps == 0 {
		return 0
	}
	return sumLog / (float64(steps) * dt)
}
