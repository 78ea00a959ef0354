package integrators

import "github.com/san-kum/stepwise/internal/dynamo"

// Euler integrates f over span with nt forward Euler steps and returns nt+1 samples.
func Euler[T dynamo.Scalar](f dynamo.Func[T], span dynamo.Span, y0 []T, nt int) (*Result[T], error) {
	if err := span.Validate(nt); err != nil {
		return nil, err
	}
	dt := span.Step(nt)
	h := dynamo.FromReal[T](dt)
	c := newCounter(f, len(y0))

	ts := make([]float64, 0, nt+1)
	ys := make([][]T, 0, nt+1)
	ts = append(ts, span.Start)
	ys = append(ys, dynamo.Clone(y0))

	y := ys[0]
	for n := 0; n < nt; n++ {
		t := span.Start + float64(n)*dt
		dy, err := c.eval(n, t, y)
		if err != nil {
			return nil, err
		}
		y = axpy(y, h, dy)
		ts = append(ts, span.Start+float64(n+1)*dt)
		ys = append(ys, y)
	}

	return newResult(ts, ys, c.evals), nil
}

type EulerStepper struct{}

func NewEuler() *EulerStepper {
	return &EulerStepper{}
}

func (e *EulerStepper) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	dx := dyn.Derive(x, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
