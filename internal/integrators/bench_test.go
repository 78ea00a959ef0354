package integrators

import (
	"testing"

	"github.com/san-kum/stepwise/internal/dynamo"
)

func benchRotor(t float64, y []complex128) ([]complex128, error) {
	return []complex128{complex(0, 2) * y[0]}, nil
}

func BenchmarkEuler(b *testing.B) {
	span := dynamo.Span{Start: 0, End: 1}
	for i := 0; i < b.N; i++ {
		if _, err := Euler(gaussian, span, []float64{1}, 1000); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRK4(b *testing.B) {
	span := dynamo.Span{Start: 0, End: 1}
	for i := 0; i < b.N; i++ {
		if _, err := RK4(gaussian, span, []float64{1}, 1000); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkABM(b *testing.B) {
	span := dynamo.Span{Start: 0, End: 1}
	for i := 0; i < b.N; i++ {
		if _, err := ABM(gaussian, span, []float64{1}, 1000, ABMOptions[float64]{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkABMSaveMemory(b *testing.B) {
	span := dynamo.Span{Start: 0, End: 1}
	opts := ABMOptions[float64]{SaveMemory: true}
	for i := 0; i < b.N; i++ {
		if _, err := ABM(gaussian, span, []float64{1}, 1000, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkABMComplex(b *testing.B) {
	span := dynamo.Span{Start: 0, End: 1}
	for i := 0; i < b.N; i++ {
		if _, err := ABM(benchRotor, span, []complex128{1}, 1000, ABMOptions[complex128]{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRK4Stepper(b *testing.B) {
	integrator := NewRK4()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK45Stepper(b *testing.B) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}
