package dynamo

import (
	"math"
	"math/cmplx"
)

// Scalar is the element type of a state vector.
type Scalar interface {
	float64 | complex128
}

// Func evaluates dy/dt at (t, y). The returned slice must have len(y) entries.
type Func[T Scalar] func(t float64, y []T) ([]T, error)

// Span is a closed integration interval [Start, End].
type Span struct {
	Start float64
	End   float64
}

func (s Span) Length() float64 { return s.End - s.Start }

// Step returns the uniform step for nt steps over the span.
func (s Span) Step(nt int) float64 {
	return s.Length() / float64(nt)
}

func (s Span) Validate(nt int) error {
	if nt < 1 {
		return ErrStepCount
	}
	if !(s.End > s.Start) || math.IsInf(s.Length(), 0) || math.IsNaN(s.Length()) {
		return ErrInvalidSpan
	}
	return nil
}

// FromReal converts a real coefficient into the scalar type of a state.
func FromReal[T Scalar](x float64) T {
	var out T
	switch p := any(&out).(type) {
	case *float64:
		*p = x
	case *complex128:
		*p = complex(x, 0)
	}
	return out
}

// Abs returns the modulus of a scalar.
func Abs[T Scalar](x T) float64 {
	switch v := any(x).(type) {
	case float64:
		return math.Abs(v)
	case complex128:
		return cmplx.Abs(v)
	}
	return 0
}

func IsFinite[T Scalar](x T) bool {
	switch v := any(x).(type) {
	case float64:
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	case complex128:
		return !cmplx.IsNaN(v) && !cmplx.IsInf(v)
	}
	return false
}

// Clone copies a vector so later writes to the source do not leak into stored samples.
func Clone[T Scalar](y []T) []T {
	c := make([]T, len(y))
	copy(c, y)
	return c
}

// State is a real state vector used by the named models.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// System is a named model with real state dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Hamiltonian systems expose a conserved (or slowly varying) energy.
type Hamiltonian interface {
	Energy(x State, t float64) float64
}

// Exact is implemented by models with a closed-form solution.
type Exact interface {
	Solution(x0 State, t float64) State
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Defaulted models provide a sensible initial state.
type Defaulted interface {
	DefaultState() State
}

// AsFunc adapts a System to the derivative function used by the integrators.
func AsFunc(sys System) Func[float64] {
	dim := sys.StateDim()
	return func(t float64, y []float64) ([]float64, error) {
		if len(y) != dim {
			return nil, ErrDimensionMismatch
		}
		return sys.Derive(State(y), t), nil
	}
}

// Integrator advances a named model by one fixed step.
type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, t, dt, tol float64) (State, float64, error)
}
