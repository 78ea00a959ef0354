package physics

import (
	"math"

	"github.com/san-kum/stepwise/internal/dynamo"
)

// Duffing implements a nonlinear oscillator driven by Gamma cos(Omega t).
// The forcing enters through t, so the state is just [x, v].
type Duffing struct {
	Alpha, Beta, Delta, Gamma, Omega float64
}

func NewDuffing() *Duffing {
	return &Duffing{-1.0, 1.0, 0.3, 0.5, 1.2}
}

func (d *Duffing) StateDim() int { return 2 }

func (d *Duffing) Derive(s dynamo.State, t float64) dynamo.State {
	x, v := s[0], s[1]
	return dynamo.State{v, -d.Delta*v - d.Alpha*x - d.Beta*x*x*x + d.Gamma*math.Cos(d.Omega*t)}
}

func (d *Duffing) DefaultState() dynamo.State { return dynamo.State{1.0, 0.0} }

// Energy of the unforced, undamped oscillator.
func (d *Duffing) Energy(s dynamo.State, _ float64) float64 {
	x, v := s[0], s[1]
	return 0.5*v*v + 0.5*d.Alpha*x*x + 0.25*d.Beta*x*x*x*x
}

func (d *Duffing) GetParams() map[string]float64 {
	return map[string]float64{"alpha": d.Alpha, "beta": d.Beta, "delta": d.Delta, "gamma": d.Gamma, "omega": d.Omega}
}

func (d *Duffing) SetParam(n string, v float64) error {
	return setParam(map[string]*float64{
		"alpha": &d.Alpha, "beta": &d.Beta, "delta": &d.Delta, "gamma": &d.Gamma, "omega": &d.Omega,
	}, n, v)
}
