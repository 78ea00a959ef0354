package special

import "math"

const (
	richardsonShrink = 1.4
	richardsonLevels = 10
	richardsonSafe   = 2.0
	derivativeStep   = 0.2
)

// Derivative returns the d-th derivative of f at x for d in 0..3 together
// with an error estimate. Central differences of shrinking step are combined
// by Richardson extrapolation and the best tableau entry is kept.
func Derivative(f func(float64) float64, x float64, d int) (value, errEst float64, err error) {
	if d < 0 || d > 3 {
		return 0, 0, ErrOrder
	}
	if d == 0 {
		return f(x), 0, nil
	}

	h := derivativeStep
	con2 := richardsonShrink * richardsonShrink
	var tab [richardsonLevels][richardsonLevels]float64

	tab[0][0] = centralDifference(f, x, h, d)
	value, errEst = tab[0][0], math.Inf(1)

	for i := 1; i < richardsonLevels; i++ {
		h /= richardsonShrink
		tab[0][i] = centralDifference(f, x, h, d)
		fac := con2
		for j := 1; j <= i; j++ {
			tab[j][i] = (tab[j-1][i]*fac - tab[j-1][i-1]) / (fac - 1)
			fac *= con2
			e := math.Max(math.Abs(tab[j][i]-tab[j-1][i]), math.Abs(tab[j][i]-tab[j-1][i-1]))
			if e <= errEst {
				errEst, value = e, tab[j][i]
			}
		}
		// higher orders stopped improving
		if math.Abs(tab[i][i]-tab[i-1][i-1]) >= richardsonSafe*errEst {
			break
		}
	}
	return value, errEst, nil
}

func centralDifference(f func(float64) float64, x, h float64, d int) float64 {
	switch d {
	case 1:
		return (f(x+h) - f(x-h)) / (2 * h)
	case 2:
		return (f(x+h) - 2*f(x) + f(x-h)) / (h * h)
	default:
		return (f(x+2*h) - 2*f(x+h) + 2*f(x-h) - f(x-2*h)) / (2 * h * h * h)
	}
}
