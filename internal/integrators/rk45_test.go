package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/stepwise/internal/dynamo"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State, t float64) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func TestStepRK45Gaussian(t *testing.T) {
	errAt := func(nt int) float64 {
		h := 1 / float64(nt)
		y := []float64{1.0}
		fy, _ := gaussian(0, y)
		for n := 0; n < nt; n++ {
			var err error
			y, fy, err = StepRK45(gaussian, float64(n)*h, y, fy, h)
			if err != nil {
				t.Fatalf("step %d: %v", n, err)
			}
		}
		return math.Abs(y[0] - gaussianExact(1))
	}

	e10, e20 := errAt(10), errAt(20)
	if e10 > 1e-8 {
		t.Errorf("10 steps: error %e", e10)
	}
	if ratio := e10 / e20; ratio < 16 {
		t.Errorf("halving h should reduce the error by at least 16, got %.2f", ratio)
	}
}

func TestStepRK45ReturnsDerivative(t *testing.T) {
	y := []float64{1.0}
	fy, _ := gaussian(0, y)
	yNew, fNew, err := StepRK45(gaussian, 0, y, fy, 0.25)
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	want, _ := gaussian(0.25, yNew)
	if fNew[0] != want[0] {
		t.Errorf("derivative at new point: got %v, expected %v", fNew[0], want[0])
	}
}

func TestRK45_Step(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}
	dt := 0.01

	for i := 0; i < 1000; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
	}

	if !x.IsValid() {
		t.Error("RK45 produced invalid state")
	}
	if math.Abs(x[0]-math.Cos(10)) > 1e-9 {
		t.Errorf("position error too large: got %.10f, expected %.10f", x[0], math.Cos(10))
	}
}

func TestRK45_EnergyConservation(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	initialEnergy := dyn.Energy(x0, 0)
	x := x0.Clone()
	dt := 0.01

	for i := 0; i < 10000; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
	}

	drift := math.Abs(dyn.Energy(x, 100)-initialEnergy) / initialEnergy
	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45_AdaptiveStep(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	tests := []struct {
		name   string
		tol    float64
		shrink bool
	}{
		{"tight tolerance", 1e-12, true},
		{"loose tolerance", 1e-2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, newDt, err := integrator.StepAdaptive(dyn, x0, 0, 0.1, tt.tol)
			if err != nil {
				t.Fatalf("StepAdaptive returned error: %v", err)
			}
			if !x.IsValid() {
				t.Error("StepAdaptive produced invalid state")
			}
			if newDt <= 0 {
				t.Fatalf("StepAdaptive returned invalid dt: %f", newDt)
			}
			if tt.shrink && newDt >= 0.1 {
				t.Errorf("expected a smaller step, got %f", newDt)
			}
			if !tt.shrink && newDt <= 0.1 {
				t.Errorf("expected a larger step, got %f", newDt)
			}
		})
	}
}

func TestVerletEnergyBounded(t *testing.T) {
	integrator := NewVerlet()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}
	dt := 0.05

	maxDrift := 0.0
	for i := 0; i < 20000; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
		maxDrift = math.Max(maxDrift, math.Abs(dyn.Energy(x, 0)-0.5))
	}
	if maxDrift > 1e-3 {
		t.Errorf("verlet energy error should stay bounded, got %e", maxDrift)
	}
}
