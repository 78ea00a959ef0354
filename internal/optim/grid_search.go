package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/stepwise/internal/experiment"
)

var ErrNoTrials = errors.New("optim: no trial produced the metric")

// Trial is one grid point and the metric it scored.
type Trial struct {
	Params  map[string]float64
	Value   float64
	Metrics map[string]float64
	Err     error
}

// GridSearch evaluates every combination of the given parameter values and
// keeps the one with the smallest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs all trials in grid order. Failed trials are kept with their
// error and never win.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (best Trial, trials []Trial, err error) {
	if len(g.paramNames) != len(g.ranges) {
		return Trial{}, nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best.Value = math.Inf(1)
	err = g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &best, &trials)
	if err != nil {
		return Trial{}, trials, err
	}
	if best.Params == nil {
		return Trial{}, trials, ErrNoTrials
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	best *Trial,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		trial := Trial{Params: maps.Clone(current), Value: math.NaN()}
		defer func() { *trials = append(*trials, trial) }()

		exp, err := buildExperiment(current)
		if err != nil {
			trial.Err = err
			return nil
		}
		out, err := exp.Run(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			trial.Err = err
			return nil
		}

		trial.Metrics = out.Metrics
		val, ok := out.Metrics[metricName]
		if !ok {
			trial.Err = fmt.Errorf("optim: run has no metric %q", metricName)
			return nil
		}
		trial.Value = val
		if val < best.Value {
			*best = trial
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := maps.Clone(current)
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, best, trials); err != nil {
			return err
		}
	}
	return nil
}
