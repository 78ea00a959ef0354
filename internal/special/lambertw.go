package special

import (
	"fmt"
	"math"
)

const branchPoint = -1 / math.E

// LambertW returns w on branch k of w e^w = z. Branch 0 gives w >= -1 for
// z >= -1/e; branch -1 gives w <= -1 for -1/e <= z <= 0.
func LambertW(z float64, k int) (float64, error) {
	if k != 0 && k != -1 {
		return 0, fmt.Errorf("%w (got %d)", ErrBranch, k)
	}
	if math.IsNaN(z) || z < branchPoint {
		return 0, fmt.Errorf("%w: z = %g < %g", ErrDomain, z, branchPoint)
	}
	if k == -1 && z > 0 {
		return 0, fmt.Errorf("%w: z = %g > 0 on branch -1", ErrDomain, z)
	}

	switch {
	case z == branchPoint:
		return -1, nil
	case z == 0 && k == 0:
		return 0, nil
	case z == 0:
		return math.Inf(-1), nil
	case math.IsInf(z, 1):
		return math.Inf(1), nil
	}

	w := lambertGuess(z, k)
	prev := math.Inf(1)
	for i := 0; i < 64; i++ {
		ew := math.Exp(w)
		f := w*ew - z
		wp1 := w + 1
		if wp1 == 0 {
			return w, nil
		}
		next := w - f/(ew*wp1-(w+2)*f/(2*wp1))
		// near the branch point rounding stalls the iteration before the tolerance
		delta := math.Abs(next - w)
		if delta <= 1e-15*(1+math.Abs(next)) || delta >= prev {
			return next, nil
		}
		prev, w = delta, next
	}
	return w, ErrNoConverge
}

func lambertGuess(z float64, k int) float64 {
	// series about the branch point, p -> 0 as z -> -1/e
	p := math.Sqrt(math.Max(0, 2*(math.E*z+1)))
	if k == -1 {
		if z < -0.25 {
			return -1 - p - p*p/3 - 11*p*p*p/72
		}
		l1 := math.Log(-z)
		l2 := math.Log(-l1)
		return l1 - l2 + l2/l1
	}
	switch {
	case z < -0.25:
		return -1 + p - p*p/3 + 11*p*p*p/72
	case z < 3:
		return math.Log1p(z) * 0.8
	default:
		l1 := math.Log(z)
		l2 := math.Log(l1)
		return l1 - l2 + l2/l1
	}
}
