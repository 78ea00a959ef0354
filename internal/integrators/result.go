package integrators

import "github.com/san-kum/stepwise/internal/dynamo"

// Result holds the time grid and trajectory produced by one integration call.
// Y is stored dimension-major: Y[i][n] is component i at sample n.
type Result[T dynamo.Scalar] struct {
	T           []float64
	Y           [][]T
	Evaluations int

	// Restart is set by ABM only.
	Restart *Restart[T]
}

// Restart is the minimal trailing state needed to resume an ABM integration.
// Tail samples sit on the grid Origin + n*Step, starting at n = Index.
type Restart[T dynamo.Scalar] struct {
	Origin      float64
	Step        float64
	Index       int
	States      [][]T
	Derivatives [][]T
	Correction  []T
}

// Times returns the grid times of the tail samples.
func (r Restart[T]) Times() []float64 {
	ts := make([]float64, len(r.States))
	for k := range ts {
		ts[k] = r.Origin + float64(r.Index+k)*r.Step
	}
	return ts
}

// Start is the time of the oldest tail sample.
func (r Restart[T]) Start() float64 {
	return r.Origin + float64(r.Index)*r.Step
}

// End is the time of the newest tail sample.
func (r Restart[T]) End() float64 {
	return r.Origin + float64(r.Index+len(r.States)-1)*r.Step
}

func (r *Result[T]) Len() int { return len(r.T) }

func (r *Result[T]) Dim() int { return len(r.Y) }

// Sample returns the state at sample n as a fresh vector.
func (r *Result[T]) Sample(n int) []T {
	y := make([]T, len(r.Y))
	for i := range r.Y {
		y[i] = r.Y[i][n]
	}
	return y
}

// Final returns the last state of the trajectory.
func (r *Result[T]) Final() []T {
	if len(r.T) == 0 {
		return nil
	}
	return r.Sample(len(r.T) - 1)
}

// Component returns the time series of one state component.
func (r *Result[T]) Component(i int) []T {
	return r.Y[i]
}

// newResult transposes sample-major rows into the dimension-major layout.
func newResult[T dynamo.Scalar](ts []float64, rows [][]T, evals int) *Result[T] {
	dim := 0
	if len(rows) > 0 {
		dim = len(rows[0])
	}
	y := make([][]T, dim)
	for i := range y {
		y[i] = make([]T, len(rows))
		for n, row := range rows {
			y[i][n] = row[i]
		}
	}
	return &Result[T]{T: ts, Y: y, Evaluations: evals}
}
