// Package analysis turns integrator output into numbers worth reporting.
//
//   - [ErrorOrder]: convergence order from errors at several step sizes
//   - [MaxError]: deviation of a trajectory from a closed-form solution
//   - [Lyapunov]: samples of the maximal Lyapunov exponent
//   - [SeparationExponent]: quick single-run estimate using a stepper
//   - [DominantFrequency], [PowerSpectrum]: spectral content of a component
//   - [BifurcationDiagram]: peak values of a component across a parameter sweep
//   - [PhasePortrait], [PoincareSection]: 2D views of a trajectory
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lams, err := analysis.Lyapunov(dynamo.AsFunc(physics.NewLorenz()), y0, analysis.DefaultLyapunovConfig())
//	mean, std := analysis.Summary(lams)
package analysis
