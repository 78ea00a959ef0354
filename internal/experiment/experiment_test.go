package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/stepwise/internal/config"
	"github.com/san-kum/stepwise/internal/dynamo"
	"github.com/san-kum/stepwise/internal/physics"
)

func newExperiment(cfg *config.Config) *Experiment {
	return New(cfg, NewRegistry(), zerolog.Nop())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	models := r.ListModels()
	assert.Contains(t, models, "lorenz")
	assert.Contains(t, models, "mathieu")
	assert.IsIncreasing(t, models)
	assert.Equal(t, []string{"euler", "rk4", "rk45", "verlet"}, r.ListSteppers())

	_, err := r.GetModel("three_body")
	assert.ErrorIs(t, err, ErrUnknownModel)
	assert.EqualError(t, err, "unknown model: three_body")

	_, err = r.GetStepper("leapfrog")
	assert.ErrorIs(t, err, ErrUnknownStepper)

	a, err := r.GetModel("lorenz")
	require.NoError(t, err)
	b, err := r.GetModel("lorenz")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestRegistryBuild(t *testing.T) {
	r := NewRegistry()

	sys, err := r.Build("lorenz", map[string]float64{"rho": 45.92, "sigma": 16}, nil)
	require.NoError(t, err)
	l := sys.(*physics.Lorenz)
	assert.Equal(t, 45.92, l.Rho)
	assert.Equal(t, 16.0, l.Sigma)

	sys, err = r.Build("decay", nil, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, sys.StateDim())

	_, err = r.Build("harmonic", map[string]float64{"mass": 2}, nil)
	assert.ErrorIs(t, err, physics.ErrUnknownParam)
}

func TestRunDecay(t *testing.T) {
	out, err := newExperiment(config.DefaultConfig()).Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, out.Real)
	assert.Nil(t, out.Complex)
	assert.Len(t, out.Times(), 501)
	assert.Less(t, out.Metrics["max_error"], 1e-10)
	assert.Equal(t, float64(out.Evaluations()), out.Metrics["evaluations"])
	assert.NotNil(t, out.Real.Restart)

	meta := out.Meta()
	assert.Equal(t, "decay", meta.Model)
	assert.Equal(t, "abm", meta.Method)
	assert.Equal(t, out.Evaluations(), meta.Evaluations)
}

func TestRunMethods(t *testing.T) {
	tests := []struct {
		method string
		tol    float64
	}{
		{"euler", 5e-2},
		{"rk4", 1e-9},
		{"abm", 1e-8},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			cfg := config.GetPreset("harmonic", "cycle")
			cfg.Method = tt.method
			out, err := newExperiment(cfg).Run(context.Background())
			require.NoError(t, err)
			assert.Less(t, out.Metrics["max_error"], tt.tol)
			assert.Contains(t, out.Metrics, "energy_drift")
		})
	}
}

func TestRunComplexRotor(t *testing.T) {
	cfg := config.GetPreset("rotor", "complex")
	out, err := newExperiment(cfg).Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, out.Complex)
	assert.Equal(t, 1, out.Complex.Dim())
	assert.Less(t, out.Metrics["max_error"], 1e-9)
	assert.InDelta(t, 1.0, out.Metrics["final_norm"], 1e-9)
}

func TestRunSaveMemory(t *testing.T) {
	cfg := config.GetPreset("decay", "wide")
	out, err := newExperiment(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, out.Times(), 4)
	assert.Equal(t, 4096, out.Real.Dim())
}

func TestRunObserver(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SaveMemory = true
	e := newExperiment(cfg)
	seen := 0
	e.Observer = func(float64, []float64) { seen++ }

	_, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.Steps+1, seen)
}

func TestRunErrors(t *testing.T) {
	t.Run("complex form missing", func(t *testing.T) {
		cfg := config.GetPreset("lorenz", "classic")
		cfg.Complex = true
		cfg.Steps = 100
		_, err := newExperiment(cfg).Run(context.Background())
		assert.ErrorIs(t, err, ErrNoComplexForm)
	})

	t.Run("wrong y0 length", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Model = "lorenz"
		cfg.Y0 = []float64{1, 2}
		_, err := newExperiment(cfg).Run(context.Background())
		assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Method = "leapfrog"
		_, err := newExperiment(cfg).Run(context.Background())
		assert.ErrorIs(t, err, config.ErrInvalid)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newExperiment(config.DefaultConfig()).Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestComplexPairs(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := ToComplex(x)
	assert.Equal(t, []complex128{complex(1, 2), complex(3, 4)}, y)
	assert.Equal(t, dynamo.State(x), FromComplex(y))
}

func TestOrderStudy(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Method = "rk4"
	report, err := newExperiment(cfg).OrderStudy(context.Background(), 32, 512)
	require.NoError(t, err)

	require.Len(t, report.Points, 5)
	assert.Equal(t, 32, report.Points[0].Steps)
	assert.Equal(t, 512, report.Points[4].Steps)
	assert.InDelta(t, 4.0, report.Order, 0.1)
	assert.Less(t, report.Prefactor, 1e-3)

	cfg.Method = "euler"
	report, err = newExperiment(cfg).OrderStudy(context.Background(), 64, 1024)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, report.Order, 0.1)
}

func TestOrderStudyNeedsClosedForm(t *testing.T) {
	cfg := config.GetPreset("lorenz", "classic")
	_, err := newExperiment(cfg).OrderStudy(context.Background(), 32, 64)
	assert.ErrorIs(t, err, ErrNoExact)

	_, err = newExperiment(config.DefaultConfig()).OrderStudy(context.Background(), 64, 32)
	assert.Error(t, err)
}

func TestEnergyStudy(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model = "harmonic"
	cfg.T1 = 20
	cfg.Steps = 2000
	points, err := newExperiment(cfg).EnergyStudy(context.Background(), []string{"euler", "rk4", "verlet"})
	require.NoError(t, err)
	require.Len(t, points, 4)

	drift := map[string]float64{}
	for _, p := range points {
		drift[p.Integrator] = p.MaxDrift
	}
	assert.Greater(t, drift["euler"], 1e-2)
	assert.Less(t, drift["verlet"], 1e-4)
	assert.Less(t, drift["rk4"], 1e-8)
	assert.Less(t, drift["abm"], 1e-8)
	assert.Equal(t, "abm", points[3].Integrator)

	cfg.Model = "lorenz"
	_, err = newExperiment(cfg).EnergyStudy(context.Background(), []string{"rk4"})
	assert.ErrorIs(t, err, ErrNoEnergy)
}

func TestSpectrum(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model = "harmonic"
	cfg.T1 = 200
	cfg.Steps = 20000
	cfg.SaveMemory = true

	freq, out, err := newExperiment(cfg).Spectrum(context.Background(), 0)
	require.NoError(t, err)
	assert.InDelta(t, 1/(2*math.Pi), freq, 0.01)
	assert.Len(t, out.Times(), 20001)

	_, _, err = newExperiment(cfg).Spectrum(context.Background(), 5)
	assert.Error(t, err)
}

func TestLyapunovHarmonic(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model = "harmonic"
	cfg.Lyapunov.Samples = 5
	cfg.Lyapunov.StepsPerInterval = 200
	cfg.Lyapunov.Transient = 0
	cfg.Lyapunov.Seed = 1

	run, err := newExperiment(cfg).Lyapunov(context.Background())
	require.NoError(t, err)
	require.Len(t, run.Samples, 5)
	for _, s := range run.Samples {
		assert.InDelta(t, 0, s, 1e-3)
	}
}
