package integrators

import "github.com/san-kum/stepwise/internal/dynamo"

// counter wraps a derivative function with length checks and an evaluation count.
type counter[T dynamo.Scalar] struct {
	f     dynamo.Func[T]
	dim   int
	evals int
}

func newCounter[T dynamo.Scalar](f dynamo.Func[T], dim int) *counter[T] {
	return &counter[T]{f: f, dim: dim}
}

func (c *counter[T]) eval(step int, t float64, y []T) ([]T, error) {
	c.evals++
	dy, err := c.f(t, y)
	if err != nil {
		return nil, &dynamo.StepError{Step: step, Time: t, Wrapped: err}
	}
	if len(dy) != c.dim {
		return nil, &dynamo.StepError{Step: step, Time: t, Wrapped: dynamo.ErrDimensionMismatch}
	}
	return dy, nil
}

// axpy returns y + a*x as a new vector.
func axpy[T dynamo.Scalar](y []T, a T, x []T) []T {
	out := make([]T, len(y))
	for i := range y {
		out[i] = y[i] + a*x[i]
	}
	return out
}
