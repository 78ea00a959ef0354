package physics

import (
	"math"

	"github.com/san-kum/stepwise/internal/dynamo"
)

// Decay is the Gaussian decay dy/dt = -Rate t y applied to every component.
type Decay struct {
	Rate float64
	Dim  int
}

func NewDecay() *Decay { return &Decay{Rate: 1, Dim: 1} }

func (d *Decay) StateDim() int { return d.Dim }

func (d *Decay) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, len(x))
	for i, v := range x {
		dx[i] = -d.Rate * t * v
	}
	return dx
}

// Solution is exact for trajectories starting at t = 0.
func (d *Decay) Solution(x0 dynamo.State, t float64) dynamo.State {
	return x0.Scale(math.Exp(-d.Rate * t * t / 2))
}

func (d *Decay) DefaultState() dynamo.State {
	x := make(dynamo.State, d.Dim)
	for i := range x {
		x[i] = 1
	}
	return x
}

func (d *Decay) GetParams() map[string]float64 {
	return map[string]float64{"rate": d.Rate}
}

func (d *Decay) SetParam(name string, value float64) error {
	return setParam(map[string]*float64{"rate": &d.Rate}, name, value)
}
