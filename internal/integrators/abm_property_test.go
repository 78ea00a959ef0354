package integrators

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/san-kum/stepwise/internal/dynamo"
)

func damped(t float64, y []float64) ([]float64, error) {
	out := make([]float64, len(y))
	for i := range y {
		out[i] = -t*y[i] + 0.1*float64(i)
	}
	return out, nil
}

// TestABMRestartProperty checks that N+M steps in one call equal N steps
// followed by Continue for M, bit for bit.
func TestABMRestartProperty(t *testing.T) {
	const total = 64
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("split runs equal one run", prop.ForAll(
		func(split int, saveMemory bool) bool {
			span := dynamo.Span{Start: 0, End: 1}
			y0 := []float64{1, -0.5}
			opts := ABMOptions[float64]{SaveMemory: saveMemory}

			full, err := ABM(damped, span, y0, total, opts)
			if err != nil {
				t.Logf("full run: %v", err)
				return false
			}

			headSpan := dynamo.Span{Start: 0, End: float64(split) / total}
			head, err := ABM(damped, headSpan, y0, split, opts)
			if err != nil {
				t.Logf("head run (split %d): %v", split, err)
				return false
			}
			tail, err := Continue(damped, *head.Restart, total-split, opts)
			if err != nil {
				t.Logf("continue (split %d): %v", split, err)
				return false
			}

			if !reflect.DeepEqual(tail.Restart, full.Restart) {
				return false
			}
			return reflect.DeepEqual(tail.Final(), full.Final())
		},
		gen.IntRange(4, total-1),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestABMMemoryModesProperty checks that bounded memory changes what is
// retained, never what is computed.
func TestABMMemoryModesProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("observers see identical trajectories", prop.ForAll(
		func(nt, dim int, seed int64) bool {
			rng := rand.New(rand.NewSource(seed))
			y0 := make([]float64, dim)
			for i := range y0 {
				y0[i] = rng.Float64()*20 - 10
			}
			span := dynamo.Span{Start: 0, End: 2}

			var fullSeen, boundedSeen [][]float64
			full, err := ABM(damped, span, y0, nt, ABMOptions[float64]{
				Observer: func(t float64, y []float64) { fullSeen = append(fullSeen, dynamo.Clone(y)) },
			})
			if err != nil {
				return false
			}
			bounded, err := ABM(damped, span, y0, nt, ABMOptions[float64]{
				SaveMemory: true,
				Observer:   func(t float64, y []float64) { boundedSeen = append(boundedSeen, dynamo.Clone(y)) },
			})
			if err != nil {
				return false
			}

			if len(fullSeen) != nt+1 || !reflect.DeepEqual(fullSeen, boundedSeen) {
				return false
			}
			window := len(bounded.T)
			if window != min(nt+1, historyLen) {
				return false
			}
			return reflect.DeepEqual(bounded.T, full.T[nt+1-window:])
		},
		gen.IntRange(1, 300),
		gen.IntRange(1, 8),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// TestABMComplexMatchesRealPairs checks that a complex run equals the real
// run of its real and imaginary parts for a real-coefficient system.
func TestABMComplexMatchesRealPairs(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("complex decay splits into real parts", prop.ForAll(
		func(re, im float64, nt int) bool {
			span := dynamo.Span{Start: 0, End: 1}
			cdecay := func(t float64, y []complex128) ([]complex128, error) {
				return []complex128{complex(-t, 0) * y[0]}, nil
			}

			c, err := ABM(cdecay, span, []complex128{complex(re, im)}, nt, ABMOptions[complex128]{})
			if err != nil {
				return false
			}
			r, err := ABM(gaussian, span, []float64{re}, nt, ABMOptions[float64]{})
			if err != nil {
				return false
			}
			i, err := ABM(gaussian, span, []float64{im}, nt, ABMOptions[float64]{})
			if err != nil {
				return false
			}

			got := c.Final()[0]
			return closeTo(real(got), r.Final()[0]) && closeTo(imag(got), i.Final()[0])
		},
		gen.Float64Range(-5, 5),
		gen.Float64Range(-5, 5),
		gen.IntRange(1, 200),
	))

	properties.TestingRun(t)
}
