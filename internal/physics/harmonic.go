package physics

import (
	"math"

	"github.com/san-kum/stepwise/internal/dynamo"
)

// Harmonic is the undamped oscillator d²x/dt² = -Omega² x with state [x, v].
type Harmonic struct {
	Omega float64
}

func NewHarmonic() *Harmonic      { return &Harmonic{Omega: 1} }
func (h *Harmonic) StateDim() int { return 2 }

func (h *Harmonic) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{x[1], -h.Omega * h.Omega * x[0]}
}

func (h *Harmonic) Solution(x0 dynamo.State, t float64) dynamo.State {
	s, c := math.Sincos(h.Omega * t)
	return dynamo.State{
		x0[0]*c + x0[1]/h.Omega*s,
		-x0[0]*h.Omega*s + x0[1]*c,
	}
}

func (h *Harmonic) Energy(x dynamo.State, _ float64) float64 {
	return 0.5*x[1]*x[1] + 0.5*h.Omega*h.Omega*x[0]*x[0]
}

func (h *Harmonic) DefaultState() dynamo.State { return dynamo.State{1, 0} }

func (h *Harmonic) GetParams() map[string]float64 {
	return map[string]float64{"omega": h.Omega}
}

func (h *Harmonic) SetParam(name string, value float64) error {
	return setParam(map[string]*float64{"omega": &h.Omega}, name, value)
}
