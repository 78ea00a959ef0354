package integrators

import (
	"math"

	"github.com/san-kum/stepwise/internal/dynamo"
)

// Dormand-Prince 5(4) tableau.
var (
	dpC = [7]float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1}
	dpA = [6][5]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
	}
	dpB = [6]float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0}
	// dpE is B minus the embedded 4th-order weights, including the FSAL stage.
	dpE = [7]float64{-71.0 / 57600.0, 0, 71.0 / 16695.0, -71.0 / 1920.0, 17253.0 / 339200.0, -22.0 / 525.0, 1.0 / 40.0}
)

// StepRK45 takes one Dormand-Prince step of size h from (t, y), reusing fy = f(t, y).
// It returns the 5th-order solution and its derivative f(t+h, yNew).
func StepRK45[T dynamo.Scalar](f dynamo.Func[T], t float64, y, fy []T, h float64) ([]T, []T, error) {
	yNew, fNew, _, err := dopri(newCounter(f, len(y)), t, y, fy, h)
	return yNew, fNew, err
}

func dopri[T dynamo.Scalar](c *counter[T], t float64, y, fy []T, h float64) (yNew, fNew, errEst []T, err error) {
	n := len(y)
	var k [7][]T
	k[0] = fy

	for s := 1; s < 6; s++ {
		ys := dynamo.Clone(y)
		for j := 0; j < s; j++ {
			a := dynamo.FromReal[T](h * dpA[s][j])
			for i := 0; i < n; i++ {
				ys[i] += a * k[j][i]
			}
		}
		if k[s], err = c.eval(0, t+dpC[s]*h, ys); err != nil {
			return nil, nil, nil, err
		}
	}

	yNew = dynamo.Clone(y)
	for j := 0; j < 6; j++ {
		b := dynamo.FromReal[T](h * dpB[j])
		for i := 0; i < n; i++ {
			yNew[i] += b * k[j][i]
		}
	}
	if k[6], err = c.eval(0, t+h, yNew); err != nil {
		return nil, nil, nil, err
	}

	errEst = make([]T, n)
	for j := 0; j < 7; j++ {
		e := dynamo.FromReal[T](h * dpE[j])
		for i := 0; i < n; i++ {
			errEst[i] += e * k[j][i]
		}
	}
	return yNew, k[6], errEst, nil
}

var _ dynamo.AdaptiveIntegrator = (*RK45)(nil)

// RK45 is an adaptive Dormand-Prince stepper for named models.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	newX, _, _ := r.StepAdaptive(dyn, x, t, dt, 1e-6)
	return newX
}

// StepAdaptive takes one step of size dt and proposes the next step size for tolerance tol.
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64, error) {
	c := newCounter(dynamo.AsFunc(dyn), len(x))
	fx, err := c.eval(0, t, x)
	if err != nil {
		return nil, 0, err
	}
	xNew, _, errEst, err := dopri(c, t, x, fx, dt)
	if err != nil {
		return nil, 0, err
	}

	errMax := 0.0
	for i := range x {
		scale := math.Abs(x[i]) + math.Abs(dt*fx[i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(errEst[i])/scale)
	}

	errRatio := errMax / tol

	var dtNew float64
	switch {
	case errRatio > 1:
		dtNew = dt * math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
	case errRatio > 0:
		dtNew = dt * math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
	default:
		dtNew = dt * r.maxScale
	}

	return xNew, dtNew, nil
}
