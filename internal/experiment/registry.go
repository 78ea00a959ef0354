package experiment

import (
	"errors"
	"fmt"
	"slices"

	"github.com/san-kum/stepwise/internal/dynamo"
	"github.com/san-kum/stepwise/internal/integrators"
	"github.com/san-kum/stepwise/internal/physics"
)

var (
	ErrUnknownModel   = errors.New("unknown model")
	ErrUnknownStepper = errors.New("unknown stepper")
)

// Registry maps names to model and single-step integrator factories. Every
// lookup returns a fresh instance, so callers may tune parameters freely.
type Registry struct {
	models   map[string]func() dynamo.System
	steppers map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:   make(map[string]func() dynamo.System),
		steppers: make(map[string]func() dynamo.Integrator),
	}

	r.models["decay"] = func() dynamo.System { return physics.NewDecay() }
	r.models["harmonic"] = func() dynamo.System { return physics.NewHarmonic() }
	r.models["rotor"] = func() dynamo.System { return physics.NewRotor() }
	r.models["lorenz"] = func() dynamo.System { return physics.NewLorenz() }
	r.models["rossler"] = func() dynamo.System { return physics.NewRossler() }
	r.models["vanderpol"] = func() dynamo.System { return physics.NewVanDerPol() }
	r.models["duffing"] = func() dynamo.System { return physics.NewDuffing() }
	r.models["pendulum"] = func() dynamo.System { return physics.NewPendulum() }
	r.models["mathieu"] = func() dynamo.System { return physics.NewMathieu() }

	r.steppers["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.steppers["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.steppers["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }
	r.steppers["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }

	return r
}

func (r *Registry) GetModel(name string) (dynamo.System, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return fn(), nil
}

func (r *Registry) GetStepper(name string) (dynamo.Integrator, error) {
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStepper, name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListSteppers() []string {
	return sortedKeys(r.steppers)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Build returns the named model with params applied. A decay model takes its
// dimension from y0.
func (r *Registry) Build(name string, params map[string]float64, y0 []float64) (dynamo.System, error) {
	sys, err := r.GetModel(name)
	if err != nil {
		return nil, err
	}
	if d, ok := sys.(*physics.Decay); ok && len(y0) > 0 {
		d.Dim = len(y0)
	}
	if len(params) == 0 {
		return sys, nil
	}
	tunable, ok := sys.(dynamo.Configurable)
	if !ok {
		return nil, fmt.Errorf("model %s has no parameters", name)
	}
	for _, k := range sortedKeys(params) {
		if err := tunable.SetParam(k, params[k]); err != nil {
			return nil, fmt.Errorf("model %s: %w", name, err)
		}
	}
	return sys, nil
}
