package integrators

import "github.com/san-kum/stepwise/internal/dynamo"

// Verlet is a velocity Verlet stepper for models whose state is laid out as
// positions followed by velocities. Only the velocity half of Derive is used.
type Verlet struct {
	drift dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(v.drift) != n {
		v.drift = make(dynamo.State, n)
	}

	acc := dyn.Derive(x, t)
	next := make(dynamo.State, n)

	// kick, drift
	for i := 0; i < half; i++ {
		vHalf := x[half+i] + 0.5*dt*acc[half+i]
		next[i] = x[i] + dt*vHalf
		v.drift[i] = next[i]
		v.drift[half+i] = vHalf
	}

	// kick with the acceleration at the new positions
	accNew := dyn.Derive(v.drift, t+dt)
	for i := 0; i < half; i++ {
		next[half+i] = v.drift[half+i] + 0.5*dt*accNew[half+i]
	}
	return next
}
