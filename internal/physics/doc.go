// Package physics provides the models the integrators are exercised on.
//
// Every model implements [dynamo.System]. Most also implement
// [dynamo.Configurable] and [dynamo.Defaulted]; models with a closed-form
// solution implement [dynamo.Exact], and conservative or parametrically
// driven ones implement [dynamo.Hamiltonian]:
//
//   - [Decay]: dy/dt = -k t y, solution y0 exp(-k t²/2)
//   - [Harmonic]: undamped oscillator with angular frequency omega
//   - [Rotor]: dy/dt = i omega y, also available as a complex derivative
//   - [Lorenz], [Rossler]: chaotic attractors
//   - [VanDerPol]: relaxation oscillator with a limit cycle
//   - [Duffing]: periodically forced nonlinear oscillator
//   - [Pendulum]: damped nonlinear pendulum
//   - [Mathieu]: parametric resonance, omega²(t) = omega0²(1 + h cos(omegaP t))
//
// A model plugs into the generic integrators through [dynamo.AsFunc]:
//
//	res, err := integrators.ABM(dynamo.AsFunc(physics.NewMathieu()), span, y0, 2000, integrators.ABMOptions[float64]{})
package physics
