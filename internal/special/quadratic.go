package special

import (
	"math/cmplx"
)

// QuadraticRoots returns the roots of a x² + b x + c = 0. The larger root is
// formed without subtracting nearly equal numbers and the smaller one follows
// from x1 x2 = c/a, so both keep full relative precision.
func QuadraticRoots(a, b, c float64) (x1, x2 complex128, err error) {
	if a == 0 {
		return 0, 0, ErrDegenerate
	}
	sqd := cmplx.Sqrt(complex(b*b-4*a*c, 0))
	m, p := complex(-b, 0)-sqd, complex(-b, 0)+sqd
	q := p
	if cmplx.Abs(m) > cmplx.Abs(p) {
		q = m
	}
	if q == 0 {
		return 0, 0, nil
	}
	x1 = q / complex(2*a, 0)
	x2 = complex(2*c, 0) / q
	return x1, x2, nil
}
