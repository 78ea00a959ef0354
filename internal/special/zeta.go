package special

import (
	"fmt"
	"math"
)

// bernoulli holds B_2k / (2k)! for k = 1..8.
var bernoulli = [...]float64{
	1.0 / 6 / 2,
	-1.0 / 30 / 24,
	1.0 / 42 / 720,
	-1.0 / 30 / 40320,
	5.0 / 66 / 3628800,
	-691.0 / 2730 / 479001600,
	7.0 / 6 / 87178291200,
	-3617.0 / 510 / 20922789888000,
}

const zetaCutoff = 10

// Zeta evaluates the Riemann zeta function for real s > 1 by Euler-Maclaurin
// summation. The tail is summed in closed form, so accuracy holds as s -> 1.
func Zeta(s float64) (float64, error) {
	if !(s > 1) {
		return 0, fmt.Errorf("%w: zeta needs s > 1, got %g", ErrDomain, s)
	}
	if math.IsInf(s, 1) {
		return 1, nil
	}

	sum := 0.0
	for n := zetaCutoff - 1; n >= 1; n-- {
		sum += math.Pow(float64(n), -s)
	}

	N := float64(zetaCutoff)
	nPow := math.Pow(N, -s)
	tail := N*nPow/(s-1) + nPow/2

	// rising factorial s (s+1) ... (s+2k-2) times N^(-s-2k+1)
	rise := s
	term := nPow / N
	for k, b := range bernoulli {
		if k > 0 {
			rise *= (s + float64(2*k-1)) * (s + float64(2*k))
			term /= N * N
		}
		tail += b * rise * term
	}
	return sum + tail, nil
}
