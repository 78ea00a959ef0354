package optim

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/san-kum/stepwise/internal/config"
	"github.com/san-kum/stepwise/internal/experiment"
)

// Apply sets a grid parameter on a run configuration. "start_factor", "steps"
// and "t1" address run fields; "param.<name>" addresses a model parameter.
func Apply(cfg *config.Config, name string, value float64) error {
	switch {
	case name == "start_factor":
		cfg.StartFactor = int(value)
	case name == "steps":
		cfg.Steps = int(value)
	case name == "t1":
		cfg.T1 = value
	case strings.HasPrefix(name, "param."):
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[strings.TrimPrefix(name, "param.")] = value
	default:
		return fmt.Errorf("optim: unknown grid parameter %q", name)
	}
	return nil
}

// TuneStartFactor runs ABM for each bootstrap refinement and returns the one
// with the smallest max_error, plus every trial.
func TuneStartFactor(ctx context.Context, base *config.Config, registry *experiment.Registry, log zerolog.Logger, factors []int) (Trial, []Trial, error) {
	values := make([]float64, len(factors))
	for i, f := range factors {
		values[i] = float64(f)
	}
	grid := NewGridSearch([]string{"start_factor"}, [][]float64{values})
	return grid.Search(ctx, func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		cfg.Method = "abm"
		cfg.SaveMemory = true
		for k, v := range params {
			if err := Apply(cfg, k, v); err != nil {
				return nil, err
			}
		}
		return experiment.New(cfg, registry, log), nil
	}, "max_error")
}
