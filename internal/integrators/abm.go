package integrators

import (
	"math"

	"github.com/san-kum/stepwise/internal/dynamo"
)

// DefaultStartFactor is the bootstrap refinement used when ABMOptions.StartFactor is zero.
const DefaultStartFactor = 2

// ABMOptions tunes a predictor-corrector run.
type ABMOptions[T dynamo.Scalar] struct {
	// Restart resumes from the tail of a previous run instead of bootstrapping.
	Restart *Restart[T]

	// SaveMemory keeps only the four newest samples while iterating. The result
	// then holds just that window.
	SaveMemory bool

	// StartFactor is the RK4 refinement used to bootstrap the first samples.
	StartFactor int

	// Observer sees every sample of the output grid in order. It must not
	// modify y.
	Observer func(t float64, y []T)
}

// ABM integrates f with the 5th-order Adams-Bashforth-Moulton predictor-corrector
// averaging the Milne and Adams cases (Hamming, section 23.10).
//
// Without a restart the first samples are computed by RK4 at StartFactor times the
// resolution. With a restart, nt counts steps from the oldest tail sample and the
// grid is taken from the bundle. Fewer than four steps return the bootstrap prefix.
func ABM[T dynamo.Scalar](f dynamo.Func[T], span dynamo.Span, y0 []T, nt int, opts ABMOptions[T]) (*Result[T], error) {
	if err := span.Validate(nt); err != nil {
		return nil, err
	}
	sf := opts.StartFactor
	if sf == 0 {
		sf = DefaultStartFactor
	}
	if sf < 1 {
		return nil, dynamo.ErrStartFactor
	}

	origin, dt := span.Start, span.Step(nt)
	index := 0
	bootEvals := 0

	var states, derivs [][]T
	var dcp []T

	if r := opts.Restart; r != nil {
		if len(r.States) == 0 {
			return nil, dynamo.ErrShortHistory
		}
		if !closeTo(r.Start(), span.Start) || !closeTo(r.Step, dt) {
			return nil, dynamo.ErrRestartMismatch
		}
		origin, dt, index = r.Origin, r.Step, r.Index
		states = r.States
		if len(r.Derivatives) == len(r.States) {
			derivs = r.Derivatives
		}
		dcp = r.Correction
	} else {
		boot, err := RK4(f, dynamo.Span{Start: span.Start, End: span.Start + historyLen*dt}, y0, historyLen*sf)
		if err != nil {
			return nil, err
		}
		bootEvals = boot.Evaluations
		for k := 0; k <= historyLen; k++ {
			states = append(states, boot.Sample(k*sf))
		}
	}

	if len(states) > nt+1 {
		states = states[:nt+1]
	}
	if derivs != nil {
		derivs = derivs[:len(states)]
	}

	dim := len(states[0])
	if dcp == nil {
		dcp = make([]T, dim)
	} else if len(dcp) != dim {
		return nil, dynamo.ErrDimensionMismatch
	}

	c := newCounter(f, dim)
	c.evals = bootEvals
	timeAt := func(n int) float64 { return origin + float64(n)*dt }

	var hist history[T]
	var ts []float64
	var rows [][]T
	if !opts.SaveMemory {
		ts = make([]float64, 0, nt+1)
		rows = make([][]T, 0, nt+1)
	}

	record := func(s sample[T]) {
		hist.push(s)
		t := timeAt(s.n)
		if !opts.SaveMemory {
			ts = append(ts, t)
			rows = append(rows, s.y)
		}
		if opts.Observer != nil {
			opts.Observer(t, s.y)
		}
	}

	for k, y := range states {
		if len(y) != dim {
			return nil, dynamo.ErrDimensionMismatch
		}
		n := index + k
		var dy []T
		if derivs != nil {
			if dy = derivs[k]; len(dy) != dim {
				return nil, dynamo.ErrDimensionMismatch
			}
		} else {
			var err error
			if dy, err = c.eval(n, timeAt(n), y); err != nil {
				return nil, err
			}
		}
		record(sample[T]{n: n, y: y, dy: dy})
	}

	remaining := nt - (len(states) - 1)
	if remaining > 0 && hist.len() < historyLen {
		return nil, dynamo.ErrShortHistory
	}

	pc := dynamo.FromReal[T](dt / 48)
	cc := dynamo.FromReal[T](dt / 48 * 161 / 170)

	for step := 0; step < remaining; step++ {
		s0, s1, s2, s3 := hist.back(0), hist.back(1), hist.back(2), hist.back(3)
		n := s0.n + 1
		tNew := timeAt(n)

		p := make([]T, dim)
		m := make([]T, dim)
		for i := range p {
			p[i] = (s0.y[i]+s1.y[i])/2 + pc*(119*s0.dy[i]-99*s1.dy[i]+69*s2.dy[i]-17*s3.dy[i])
			m[i] = p[i] + dcp[i]
		}
		dm, err := c.eval(n, tNew, m)
		if err != nil {
			return nil, err
		}

		next := make([]T, dim)
		yNew := make([]T, dim)
		for i := range next {
			next[i] = cc * (17*dm[i] - 68*s0.dy[i] + 102*s1.dy[i] - 68*s2.dy[i] + 17*s3.dy[i])
			yNew[i] = p[i] + next[i]
		}
		dcp = next

		dyNew, err := c.eval(n, tNew, yNew)
		if err != nil {
			return nil, err
		}
		record(sample[T]{n: n, y: yNew, dy: dyNew})
	}

	tail := hist.ordered()
	last := tail[len(tail)-1]
	if !closeTo(timeAt(last.n), span.End) {
		return nil, &dynamo.StepError{Step: last.n, Time: timeAt(last.n), Wrapped: dynamo.ErrEndpointMismatch}
	}

	if opts.SaveMemory {
		ts = make([]float64, len(tail))
		rows = make([][]T, len(tail))
		for k, s := range tail {
			ts[k] = timeAt(s.n)
			rows[k] = s.y
		}
	}

	res := newResult(ts, rows, c.evals)
	res.Restart = newRestart(origin, dt, tail, dcp)
	return res, nil
}

// Continue resumes an ABM run from its restart bundle for steps more steps. The
// output grid starts at the oldest tail sample.
func Continue[T dynamo.Scalar](f dynamo.Func[T], r Restart[T], steps int, opts ABMOptions[T]) (*Result[T], error) {
	if steps < 1 {
		return nil, dynamo.ErrStepCount
	}
	if len(r.States) == 0 {
		return nil, dynamo.ErrShortHistory
	}
	nt := len(r.States) - 1 + steps
	span := dynamo.Span{Start: r.Start(), End: r.Origin + float64(r.Index+nt)*r.Step}
	opts.Restart = &r
	return ABM(f, span, nil, nt, opts)
}

func newRestart[T dynamo.Scalar](origin, dt float64, tail []sample[T], dcp []T) *Restart[T] {
	r := &Restart[T]{
		Origin:      origin,
		Step:        dt,
		Index:       tail[0].n,
		States:      make([][]T, len(tail)),
		Derivatives: make([][]T, len(tail)),
		Correction:  dynamo.Clone(dcp),
	}
	for k, s := range tail {
		r.States[k] = s.y
		r.Derivatives[k] = s.dy
	}
	return r
}

// closeTo compares grid times with 1e-8 absolute and 1e-5 relative tolerance.
func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-8+1e-5*math.Abs(b)
}
