package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/stepwise/internal/analysis"
	"github.com/san-kum/stepwise/internal/config"
	"github.com/san-kum/stepwise/internal/dynamo"
	"github.com/san-kum/stepwise/internal/export"
	"github.com/san-kum/stepwise/internal/integrators"
)

var ErrNoComplexForm = errors.New("model has no complex form")

// ComplexModel is implemented by models that can also run on a native complex
// state of half the real dimension.
type ComplexModel interface {
	ComplexFunc() dynamo.Func[complex128]
}

// Outcome is the product of one run. Exactly one of Real and Complex is set.
type Outcome struct {
	Config  *config.Config
	Real    *integrators.Result[float64]
	Complex *integrators.Result[complex128]
	Metrics map[string]float64
	Elapsed time.Duration
}

func (o *Outcome) Evaluations() int {
	if o.Complex != nil {
		return o.Complex.Evaluations
	}
	return o.Real.Evaluations
}

// Times returns the time grid of whichever result is set.
func (o *Outcome) Times() []float64 {
	if o.Complex != nil {
		return o.Complex.T
	}
	return o.Real.T
}

func (o *Outcome) Meta() export.Meta {
	return export.Meta{
		Model:       o.Config.Model,
		Method:      o.Config.Method,
		T0:          o.Config.T0,
		T1:          o.Config.T1,
		Steps:       o.Config.Steps,
		Evaluations: o.Evaluations(),
		Metrics:     o.Metrics,
	}
}

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	log      zerolog.Logger

	// Observer, when set, sees every real sample of an ABM run.
	Observer func(t float64, y []float64)
}

func New(cfg *config.Config, registry *Registry, log zerolog.Logger) *Experiment {
	return &Experiment{cfg: cfg, registry: registry, log: log}
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Run integrates the configured model with the configured method.
func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sys, y0, err := e.prepare()
	if err != nil {
		return nil, err
	}

	span := dynamo.Span{Start: cfg.T0, End: cfg.T1}
	log := e.log.With().Str("model", cfg.Model).Str("method", cfg.Method).Logger()
	log.Debug().
		Float64("t0", cfg.T0).
		Float64("t1", cfg.T1).
		Int("steps", cfg.Steps).
		Bool("complex", cfg.Complex).
		Bool("save_memory", cfg.SaveMemory).
		Msg("run starting")

	start := time.Now()
	out := &Outcome{Config: cfg, Metrics: make(map[string]float64)}

	if cfg.Complex {
		cm, ok := sys.(ComplexModel)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoComplexForm, cfg.Model)
		}
		f := WithContext(ctx, cm.ComplexFunc())
		out.Complex, err = integrate(f, span, ToComplex(y0), cfg, nil)
	} else {
		f := WithContext(ctx, dynamo.AsFunc(sys))
		out.Real, err = integrate(f, span, y0, cfg, e.Observer)
	}
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		return nil, err
	}
	out.Elapsed = time.Since(start)

	e.measure(out, sys, y0)
	if (out.Real != nil && !allFinite(out.Real.Final())) || (out.Complex != nil && !allFinite(out.Complex.Final())) {
		log.Warn().Float64("final_norm", out.Metrics["final_norm"]).Msg("final state is not finite")
	}
	log.Info().
		Int("evaluations", out.Evaluations()).
		Dur("elapsed", out.Elapsed).
		Msg("run finished")
	return out, nil
}

// prepare builds the model and resolves the initial state.
func (e *Experiment) prepare() (dynamo.System, dynamo.State, error) {
	sys, err := e.registry.Build(e.cfg.Model, e.cfg.Params, e.cfg.Y0)
	if err != nil {
		return nil, nil, err
	}
	y0, err := InitialState(sys, e.cfg.Y0)
	if err != nil {
		return nil, nil, fmt.Errorf("model %s: %w", e.cfg.Model, err)
	}
	return sys, y0, nil
}

func integrate[T dynamo.Scalar](f dynamo.Func[T], span dynamo.Span, y0 []T, cfg *config.Config, observer func(float64, []T)) (*integrators.Result[T], error) {
	switch cfg.Method {
	case "euler":
		return integrators.Euler(f, span, y0, cfg.Steps)
	case "rk4":
		return integrators.RK4(f, span, y0, cfg.Steps)
	case "abm":
		return integrators.ABM(f, span, y0, cfg.Steps, integrators.ABMOptions[T]{
			SaveMemory:  cfg.SaveMemory,
			StartFactor: cfg.StartFactor,
			Observer:    observer,
		})
	}
	return nil, fmt.Errorf("%w: method %q", config.ErrInvalid, cfg.Method)
}

func allFinite[T dynamo.Scalar](y []T) bool {
	for _, v := range y {
		if !dynamo.IsFinite(v) {
			return false
		}
	}
	return true
}

func (e *Experiment) measure(out *Outcome, sys dynamo.System, y0 dynamo.State) {
	out.Metrics["evaluations"] = float64(out.Evaluations())
	out.Metrics["elapsed_ms"] = float64(out.Elapsed.Microseconds()) / 1000

	var final dynamo.State
	if out.Real != nil {
		final = out.Real.Final()
	} else {
		final = FromComplex(out.Complex.Final())
	}
	out.Metrics["final_norm"] = final.Norm()

	if h, ok := sys.(dynamo.Hamiltonian); ok {
		e0 := h.Energy(y0, e.cfg.T0)
		out.Metrics["energy_drift"] = math.Abs(h.Energy(final, e.cfg.T1) - e0)
	}

	// closed forms are written for trajectories starting at t = 0
	exact, ok := sys.(dynamo.Exact)
	if !ok || e.cfg.T0 != 0 {
		return
	}
	if out.Real != nil {
		out.Metrics["max_error"] = analysis.MaxError(out.Real, func(t float64) []float64 {
			return exact.Solution(y0, t)
		})
	} else {
		out.Metrics["max_error"] = analysis.MaxError(out.Complex, func(t float64) []complex128 {
			return ToComplex(exact.Solution(y0, t))
		})
	}
}

// InitialState returns y0, or the model's default when y0 is empty.
func InitialState(sys dynamo.System, y0 []float64) (dynamo.State, error) {
	if len(y0) == 0 {
		d, ok := sys.(dynamo.Defaulted)
		if !ok {
			return nil, errors.New("no initial state given and no default")
		}
		y0 = d.DefaultState()
	}
	if len(y0) != sys.StateDim() {
		return nil, fmt.Errorf("%w: y0 has %d entries, model needs %d", dynamo.ErrDimensionMismatch, len(y0), sys.StateDim())
	}
	return dynamo.State(y0).Clone(), nil
}

// ToComplex pairs consecutive real entries into complex numbers.
func ToComplex(x []float64) []complex128 {
	y := make([]complex128, len(x)/2)
	for k := range y {
		y[k] = complex(x[2*k], x[2*k+1])
	}
	return y
}

// FromComplex is the inverse of ToComplex.
func FromComplex(y []complex128) dynamo.State {
	x := make(dynamo.State, 2*len(y))
	for k, v := range y {
		x[2*k], x[2*k+1] = real(v), imag(v)
	}
	return x
}

// WithContext stops f once ctx is done. The check runs on the first call and
// every 256 calls after it.
func WithContext[T dynamo.Scalar](ctx context.Context, f dynamo.Func[T]) dynamo.Func[T] {
	calls := 0
	return func(t float64, y []T) ([]T, error) {
		calls++
		if calls&0xff == 1 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		return f(t, y)
	}
}
