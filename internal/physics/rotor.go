package physics

import (
	"math/cmplx"

	"github.com/san-kum/stepwise/internal/dynamo"
)

// Rotor is dy/dt = i Omega y. As a System the state is [Re y, Im y].
type Rotor struct {
	Omega float64
}

func NewRotor() *Rotor         { return &Rotor{Omega: 2} }
func (r *Rotor) StateDim() int { return 2 }

func (r *Rotor) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{-r.Omega * x[1], r.Omega * x[0]}
}

func (r *Rotor) Solution(x0 dynamo.State, t float64) dynamo.State {
	y := r.ComplexSolution(complex(x0[0], x0[1]), t)
	return dynamo.State{real(y), imag(y)}
}

// ComplexFunc is the derivative on the native complex state.
func (r *Rotor) ComplexFunc() dynamo.Func[complex128] {
	w := complex(0, r.Omega)
	return func(_ float64, y []complex128) ([]complex128, error) {
		dy := make([]complex128, len(y))
		for i := range y {
			dy[i] = w * y[i]
		}
		return dy, nil
	}
}

func (r *Rotor) ComplexSolution(y0 complex128, t float64) complex128 {
	return y0 * cmplx.Exp(complex(0, r.Omega*t))
}

// Energy is |y|², conserved by the exact flow.
func (r *Rotor) Energy(x dynamo.State, _ float64) float64 {
	return x[0]*x[0] + x[1]*x[1]
}

func (r *Rotor) DefaultState() dynamo.State { return dynamo.State{1, 0} }

func (r *Rotor) GetParams() map[string]float64 {
	return map[string]float64{"omega": r.Omega}
}

func (r *Rotor) SetParam(name string, value float64) error {
	return setParam(map[string]*float64{"omega": &r.Omega}, name, value)
}
