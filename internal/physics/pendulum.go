package physics

import (
	"math"

	"github.com/san-kum/stepwise/internal/dynamo"
)

// Pendulum is a damped rigid pendulum with state [theta, omega].
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
	}
}

func (p *Pendulum) StateDim() int {
	return 2
}

func (p *Pendulum) Derive(x dynamo.State, _ float64) dynamo.State {
	theta, omega := x[0], x[1]
	inertia := p.Mass * p.Length * p.Length
	alpha := (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta)) / inertia
	return dynamo.State{omega, alpha}
}

func (p *Pendulum) Energy(x dynamo.State, _ float64) float64 {
	v := p.Length * x[1]
	ke := 0.5 * p.Mass * v * v
	pe := p.Mass * p.Gravity * p.Length * (1.0 - math.Cos(x[0]))
	return ke + pe
}

func (p *Pendulum) DefaultState() dynamo.State { return dynamo.State{math.Pi / 4, 0} }

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    p.Mass,
		"length":  p.Length,
		"damping": p.Damping,
		"gravity": p.Gravity,
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	return setParam(map[string]*float64{
		"mass":    &p.Mass,
		"length":  &p.Length,
		"damping": &p.Damping,
		"gravity": &p.Gravity,
	}, name, value)
}
