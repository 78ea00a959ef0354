package integrators

import "github.com/san-kum/stepwise/internal/dynamo"

// RK4 integrates f over span with nt classical Runge-Kutta steps and returns nt+1 samples.
func RK4[T dynamo.Scalar](f dynamo.Func[T], span dynamo.Span, y0 []T, nt int) (*Result[T], error) {
	if err := span.Validate(nt); err != nil {
		return nil, err
	}
	dt := span.Step(nt)
	c := newCounter(f, len(y0))

	ts := make([]float64, 0, nt+1)
	ys := make([][]T, 0, nt+1)
	ts = append(ts, span.Start)
	ys = append(ys, dynamo.Clone(y0))

	y := ys[0]
	for n := 0; n < nt; n++ {
		t := span.Start + float64(n)*dt
		next, err := rk4Step(c, n, t, y, dt)
		if err != nil {
			return nil, err
		}
		y = next
		ts = append(ts, span.Start+float64(n+1)*dt)
		ys = append(ys, y)
	}

	return newResult(ts, ys, c.evals), nil
}

func rk4Step[T dynamo.Scalar](c *counter[T], n int, t float64, y []T, dt float64) ([]T, error) {
	h := dynamo.FromReal[T](dt)
	half := dynamo.FromReal[T](dt * 0.5)

	k1, err := c.eval(n, t, y)
	if err != nil {
		return nil, err
	}
	k2, err := c.eval(n, t+dt*0.5, axpy(y, half, k1))
	if err != nil {
		return nil, err
	}
	k3, err := c.eval(n, t+dt*0.5, axpy(y, half, k2))
	if err != nil {
		return nil, err
	}
	k4, err := c.eval(n, t+dt, axpy(y, h, k3))
	if err != nil {
		return nil, err
	}

	h6 := dynamo.FromReal[T](dt / 6.0)
	result := make([]T, len(y))
	for i := range y {
		result[i] = y[i] + h6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result, nil
}

// RK4Stepper advances named models; it reuses its stage buffers between calls.
type RK4Stepper struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4Stepper {
	return &RK4Stepper{}
}

func (r *RK4Stepper) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4Stepper) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, dyn.Derive(x, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, dyn.Derive(r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, dyn.Derive(r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, dyn.Derive(r.scratch, t+dt))

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return result
}
