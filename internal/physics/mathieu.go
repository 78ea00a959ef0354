package physics

import (
	"math"

	"github.com/san-kum/stepwise/internal/dynamo"
)

// Mathieu is the parametrically driven oscillator
//
//	x'' = -omega(t)² x,  omega(t)² = Omega0² (1 + H cos(OmegaP t))
//
// Driving at OmegaP = 2 Omega0 pumps energy into the oscillation.
type Mathieu struct {
	Omega0 float64
	H      float64
	OmegaP float64
}

func NewMathieu() *Mathieu { return &Mathieu{Omega0: 1, H: 0.1, OmegaP: 2} }

func (m *Mathieu) StateDim() int { return 2 }

func (m *Mathieu) omega2(t float64) float64 {
	return m.Omega0 * m.Omega0 * (1 + m.H*math.Cos(m.OmegaP*t))
}

func (m *Mathieu) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -m.omega2(t) * x[0]}
}

// Energy is the instantaneous oscillator energy; it is not conserved while driven.
func (m *Mathieu) Energy(x dynamo.State, t float64) float64 {
	return 0.5*x[1]*x[1] + 0.5*m.omega2(t)*x[0]*x[0]
}

func (m *Mathieu) DefaultState() dynamo.State { return dynamo.State{0, 1} }

func (m *Mathieu) GetParams() map[string]float64 {
	return map[string]float64{"omega0": m.Omega0, "h": m.H, "omega_p": m.OmegaP}
}

func (m *Mathieu) SetParam(name string, value float64) error {
	return setParam(map[string]*float64{"omega0": &m.Omega0, "h": &m.H, "omega_p": &m.OmegaP}, name, value)
}
