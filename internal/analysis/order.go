package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/stepwise/internal/dynamo"
	"github.com/san-kum/stepwise/internal/integrators"
)

// ErrorOrder fits err = prefactor * h^order by least squares in log space.
func ErrorOrder(steps, errs []float64) (order, prefactor float64, err error) {
	if len(steps) != len(errs) || len(steps) < 2 {
		return 0, 0, ErrTooFewPoints
	}
	logH := make([]float64, len(steps))
	logE := make([]float64, len(errs))
	for i := range steps {
		if steps[i] <= 0 || errs[i] <= 0 {
			return 0, 0, ErrNonPositive
		}
		logH[i] = math.Log(steps[i])
		logE[i] = math.Log(errs[i])
	}
	alpha, beta := stat.LinearRegression(logH, logE, nil, false)
	return beta, math.Exp(alpha), nil
}

// MaxError is the largest componentwise deviation of res from exact over the grid.
func MaxError[T dynamo.Scalar](res *integrators.Result[T], exact func(t float64) []T) float64 {
	worst := 0.0
	for n, t := range res.T {
		want := exact(t)
		for i := range res.Y {
			worst = math.Max(worst, dynamo.Abs(res.Y[i][n]-want[i]))
		}
	}
	return worst
}
