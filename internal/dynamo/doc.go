// Package dynamo provides the primitives shared by the integrators and models.
//
//   - [Scalar]: element type of a state vector (float64 or complex128)
//   - [Func]: derivative function dy/dt = f(t, y)
//   - [Span]: integration interval and its uniform step
//   - [State]: real state vector used by named models
//   - [System]: interface for named models (dX/dt = f(X, t))
//
// # Example
//
//	dyn := physics.NewLorenz()
//	res, err := integrators.RK4(dynamo.AsFunc(dyn), dynamo.Span{End: 10}, dyn.DefaultState(), 1000)
package dynamo
