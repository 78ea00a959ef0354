package special

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mathext"
)

func TestQuadraticRoots(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c float64
		roots   [2]complex128
	}{
		{"real roots", 1, -3, 2, [2]complex128{2, 1}},
		{"complex roots", 1, 2, 5, [2]complex128{complex(-1, -2), complex(-1, 2)}},
		{"double root", 1, 2, 1, [2]complex128{-1, -1}},
		{"zero roots", 2, 0, 0, [2]complex128{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x1, x2, err := QuadraticRoots(tt.a, tt.b, tt.c)
			require.NoError(t, err)
			got := map[complex128]bool{x1: true, x2: true}
			for _, want := range tt.roots {
				found := false
				for r := range got {
					if math.Abs(real(r)-real(want)) < 1e-12 && math.Abs(imag(r)-imag(want)) < 1e-12 {
						found = true
					}
				}
				assert.True(t, found, "missing root %v in (%v, %v)", want, x1, x2)
			}
		})
	}
}

func TestQuadraticRootsAvoidCancellation(t *testing.T) {
	x1, x2, err := QuadraticRoots(1, 1e8, 1)
	require.NoError(t, err)
	assert.InEpsilon(t, -1e8, real(x1), 1e-15)
	assert.InEpsilon(t, -1e-8, real(x2), 1e-15)
	assert.Zero(t, imag(x2))

	_, _, err = QuadraticRoots(0, 1, 1)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestLambertWKnownValues(t *testing.T) {
	tests := []struct {
		z    float64
		k    int
		want float64
	}{
		{1, 0, 0.5671432904097838},
		{math.E, 0, 1},
		{0, 0, 0},
		{-0.1, -1, -3.577152063957297},
		{-1 / math.E, 0, -1},
		{-1 / math.E, -1, -1},
	}
	for _, tt := range tests {
		w, err := LambertW(tt.z, tt.k)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, w, 1e-14, "W_%d(%g)", tt.k, tt.z)
	}

	w, err := LambertW(0, -1)
	require.NoError(t, err)
	assert.True(t, math.IsInf(w, -1))
}

func TestLambertWInverts(t *testing.T) {
	zMin := -1 / math.E
	for i := 1; i <= 400; i++ {
		frac := float64(i) / 400
		z := zMin + frac*frac*frac*(0-zMin)

		for _, k := range []int{0, -1} {
			if k == -1 && z >= 0 {
				continue
			}
			w, err := LambertW(z, k)
			require.NoError(t, err)
			if k == 0 {
				assert.GreaterOrEqual(t, w, -1.0)
			} else {
				assert.LessOrEqual(t, w, -1.0)
			}
			assert.InDelta(t, z, w*math.Exp(w), 1e-15, "branch %d at z=%g", k, z)
		}
	}

	for _, z := range []float64{1e-10, 0.5, 2.9, 3, 10, 1e5} {
		w, err := LambertW(z, 0)
		require.NoError(t, err)
		assert.InEpsilon(t, z, w*math.Exp(w), 1e-14)
	}
}

func TestLambertWInvalid(t *testing.T) {
	_, err := LambertW(0.1, 1)
	require.ErrorIs(t, err, ErrBranch)
	assert.Contains(t, err.Error(), "(got 1)")

	_, err = LambertW(-0.5, 0)
	assert.ErrorIs(t, err, ErrDomain)

	_, err = LambertW(-10, -1)
	assert.ErrorIs(t, err, ErrDomain)

	_, err = LambertW(0.5, -1)
	assert.ErrorIs(t, err, ErrDomain)

	_, err = LambertW(math.NaN(), 0)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestZetaKnownValues(t *testing.T) {
	tests := map[float64]float64{
		2:    1.6449340668482264365,
		3:    1.2020569031595942854,
		10:   1.0009945751278180854,
		1.5:  2.6123753486854883433,
		1.1:  10.584448464950809826,
		1.01: 100.57794333849687249,
	}
	for s, want := range tests {
		got, err := Zeta(s)
		require.NoError(t, err)
		assert.InEpsilon(t, want, got, 1e-14, "zeta(%g)", s)
	}
}

func TestZetaMatchesGonum(t *testing.T) {
	for s := 1.05; s < 40; s *= 1.3 {
		got, err := Zeta(s)
		require.NoError(t, err)
		assert.InEpsilon(t, mathext.Zeta(s, 1), got, 1e-13, "zeta(%g)", s)
	}
}

func TestZetaNearPole(t *testing.T) {
	// zeta(s) = 1/(s-1) + gamma + O(s-1)
	const eulerGamma = 0.5772156649015329
	for _, eps := range []float64{1e-3, 1e-6, 1e-9} {
		s := 1 + eps
		got, err := Zeta(s)
		require.NoError(t, err)
		assert.InDelta(t, 1/(s-1)+eulerGamma, got, 0.1*eps+1e-6)
	}
}

func TestZetaDomain(t *testing.T) {
	for _, s := range []float64{1, 0.5, -2, math.NaN()} {
		_, err := Zeta(s)
		assert.ErrorIs(t, err, ErrDomain, "s=%g", s)
	}
}

func TestDerivativeOfSine(t *testing.T) {
	exact := []func(float64) float64{
		math.Sin,
		math.Cos,
		func(x float64) float64 { return -math.Sin(x) },
		func(x float64) float64 { return -math.Cos(x) },
	}
	rtol := []float64{1e-7, 1e-6, 1e-5, 0.1}

	for _, x := range []float64{0, 1, 10} {
		for d := 0; d <= 3; d++ {
			got, errEst, err := Derivative(math.Sin, x, d)
			require.NoError(t, err)
			want := exact[d](x)
			assert.InDelta(t, want, got, rtol[d]*math.Abs(want)+1e-9, "d=%d x=%g", d, x)
			assert.GreaterOrEqual(t, errEst, 0.0)
		}
	}
}

func TestDerivativeOfPolynomial(t *testing.T) {
	cubic := func(x float64) float64 { return 2*x*x*x - x + 4 }
	want := []float64{cubic(1.5), 6*1.5*1.5 - 1, 12 * 1.5, 12}
	for d, w := range want {
		got, _, err := Derivative(cubic, 1.5, d)
		require.NoError(t, err)
		assert.InDelta(t, w, got, 1e-8, "d=%d", d)
	}

	_, _, err := Derivative(cubic, 0, 4)
	assert.ErrorIs(t, err, ErrOrder)
	_, _, err = Derivative(cubic, 0, -1)
	assert.ErrorIs(t, err, ErrOrder)
}
