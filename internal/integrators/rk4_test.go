package integrators

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/san-kum/stepwise/internal/dynamo"
	"gonum.org/v1/gonum/stat"
)

func gaussian(t float64, y []float64) ([]float64, error) {
	return []float64{-t * y[0]}, nil
}

func gaussianExact(t float64) float64 {
	return math.Exp(-t * t / 2)
}

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (s *simpleDynamics) StateDim() int { return 2 }

func TestRK4Gaussian(t *testing.T) {
	res, err := RK4(gaussian, dynamo.Span{Start: 0, End: 1}, []float64{1.0}, 500)
	if err != nil {
		t.Fatalf("rk4 failed: %v", err)
	}
	if res.Len() != 501 {
		t.Fatalf("expected 501 samples, got %d", res.Len())
	}
	for n, tn := range res.T {
		if d := math.Abs(res.Y[0][n] - gaussianExact(tn)); d > 1e-12 {
			t.Fatalf("sample %d (t=%.4f): error %e", n, tn, d)
		}
	}
	if res.Evaluations != 4*500 {
		t.Errorf("expected %d evaluations, got %d", 4*500, res.Evaluations)
	}
}

func TestEulerGaussian(t *testing.T) {
	res, err := Euler(gaussian, dynamo.Span{Start: 0, End: 1}, []float64{1.0}, 500)
	if err != nil {
		t.Fatalf("euler failed: %v", err)
	}
	for n, tn := range res.T {
		exact := gaussianExact(tn)
		if d := math.Abs(res.Y[0][n] - exact); d > 1e-8+1e-3*exact {
			t.Fatalf("sample %d (t=%.4f): error %e", n, tn, d)
		}
	}
	if math.Abs(res.T[len(res.T)-1]-1.0) > 1e-12 {
		t.Errorf("final time %f, expected 1", res.T[len(res.T)-1])
	}
}

func TestRK4ErrorScaling(t *testing.T) {
	var logH, logErr []float64
	for nt := 32; nt <= 512; nt *= 2 {
		res, err := RK4(gaussian, dynamo.Span{Start: 0, End: 1}, []float64{1.0}, nt)
		if err != nil {
			t.Fatalf("nt=%d: %v", nt, err)
		}
		e := math.Abs(res.Final()[0] - gaussianExact(1))
		logH = append(logH, math.Log(1/float64(nt)))
		logErr = append(logErr, math.Log(e))
	}

	loga, p := stat.LinearRegression(logH, logErr, nil, false)
	if math.Abs(p-4) > 0.04 {
		t.Errorf("expected order ~4, got %.4f", p)
	}
	if a := math.Exp(loga); a >= 1e-3 {
		t.Errorf("error prefactor too large: %e", a)
	}
}

func TestEulerFirstOrder(t *testing.T) {
	errAt := func(nt int) float64 {
		res, err := Euler(gaussian, dynamo.Span{Start: 0, End: 1}, []float64{1.0}, nt)
		if err != nil {
			t.Fatalf("nt=%d: %v", nt, err)
		}
		return math.Abs(res.Final()[0] - gaussianExact(1))
	}
	ratio := errAt(200) / errAt(400)
	if math.Abs(ratio-2) > 0.1 {
		t.Errorf("halving dt should halve the error, ratio %.3f", ratio)
	}
}

func TestComplexRotor(t *testing.T) {
	const omega = 2.0
	rotor := func(t float64, y []complex128) ([]complex128, error) {
		return []complex128{complex(0, omega) * y[0]}, nil
	}
	span := dynamo.Span{Start: 0, End: 1}
	y0 := []complex128{1}

	tests := []struct {
		name string
		run  func() (*Result[complex128], error)
		tol  float64
	}{
		{"euler", func() (*Result[complex128], error) { return Euler(rotor, span, y0, 4000) }, 2e-3},
		{"rk4", func() (*Result[complex128], error) { return RK4(rotor, span, y0, 200) }, 1e-9},
		{"abm", func() (*Result[complex128], error) { return ABM(rotor, span, y0, 200, ABMOptions[complex128]{}) }, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.run()
			if err != nil {
				t.Fatalf("integration failed: %v", err)
			}
			for n, tn := range res.T {
				exact := cmplx.Exp(complex(0, omega*tn))
				if d := cmplx.Abs(res.Y[0][n] - exact); d > tt.tol {
					t.Fatalf("t=%.4f: error %e", tn, d)
				}
			}
		})
	}
}

func TestInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		span dynamo.Span
		nt   int
		want error
	}{
		{"zero steps", dynamo.Span{Start: 0, End: 1}, 0, dynamo.ErrStepCount},
		{"negative steps", dynamo.Span{Start: 0, End: 1}, -3, dynamo.ErrStepCount},
		{"empty span", dynamo.Span{Start: 1, End: 1}, 10, dynamo.ErrInvalidSpan},
		{"reversed span", dynamo.Span{Start: 1, End: 0}, 10, dynamo.ErrInvalidSpan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Euler(gaussian, tt.span, []float64{1}, tt.nt); !errors.Is(err, tt.want) {
				t.Errorf("euler: expected %v, got %v", tt.want, err)
			}
			if _, err := RK4(gaussian, tt.span, []float64{1}, tt.nt); !errors.Is(err, tt.want) {
				t.Errorf("rk4: expected %v, got %v", tt.want, err)
			}
			if _, err := ABM(gaussian, tt.span, []float64{1}, tt.nt, ABMOptions[float64]{}); !errors.Is(err, tt.want) {
				t.Errorf("abm: expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDerivativeErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	f := func(t float64, y []float64) ([]float64, error) {
		if t > 0.5 {
			return nil, boom
		}
		return []float64{-y[0]}, nil
	}

	_, err := RK4(f, dynamo.Span{Start: 0, End: 1}, []float64{1}, 10)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	var stepErr *dynamo.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected *dynamo.StepError, got %T", err)
	}
	if stepErr.Time <= 0.5 {
		t.Errorf("error reported at t=%f, expected after 0.5", stepErr.Time)
	}
}

func TestDimensionMismatch(t *testing.T) {
	f := func(t float64, y []float64) ([]float64, error) {
		return []float64{1, 2, 3}, nil
	}
	_, err := Euler(f, dynamo.Span{Start: 0, End: 1}, []float64{1}, 4)
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRK4StepperAccuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestEulerStepperMatchesEuler(t *testing.T) {
	dyn := &simpleDynamics{}
	res, err := Euler(dynamo.AsFunc(dyn), dynamo.Span{Start: 0, End: 1}, []float64{1, 0}, 10)
	if err != nil {
		t.Fatalf("euler failed: %v", err)
	}

	x := dynamo.State{1, 0}
	for i := 0; i < 10; i++ {
		x = NewEuler().Step(dyn, x, float64(i)*0.1, 0.1)
	}
	final := res.Final()
	for i := range x {
		if math.Abs(x[i]-final[i]) > 1e-14 {
			t.Errorf("component %d: stepper %.15f, solver %.15f", i, x[i], final[i])
		}
	}
}
