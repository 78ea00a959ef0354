package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/stepwise/internal/config"
	"github.com/san-kum/stepwise/internal/dynamo"
	"github.com/san-kum/stepwise/internal/experiment"
	"github.com/san-kum/stepwise/internal/export"
	"github.com/san-kum/stepwise/internal/integrators"
)

var ErrUnknownPreset = errors.New("automation: unknown preset")

// Scenario is a scripted batch of runs and parameter sweeps.
type Scenario struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Steps       []ScenarioStep   `yaml:"steps"`
	Sweeps      []ParameterSweep `yaml:"sweeps"`
}

// ScenarioStep is one run. Fields not given in the file come from the named
// preset, or from the defaults when no preset is named.
type ScenarioStep struct {
	Preset string
	SaveAs string
	Config *config.Config
}

func (s *ScenarioStep) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Model  string `yaml:"model"`
		Preset string `yaml:"preset"`
		SaveAs string `yaml:"save_as"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if head.Preset != "" {
		cfg = config.GetPreset(head.Model, head.Preset)
		if cfg == nil {
			return fmt.Errorf("%w: %s/%s", ErrUnknownPreset, head.Model, head.Preset)
		}
	}
	if err := node.Decode(cfg); err != nil {
		return err
	}

	s.Preset, s.SaveAs, s.Config = head.Preset, head.SaveAs, cfg
	return nil
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// RunScenario executes all steps in order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, log zerolog.Logger) ([]*experiment.Outcome, error) {
	results := make([]*experiment.Outcome, 0, len(scenario.Steps))
	log = log.With().Str("scenario", scenario.Name).Logger()

	for i, step := range scenario.Steps {
		log.Info().
			Int("step", i+1).
			Int("of", len(scenario.Steps)).
			Str("model", step.Config.Model).
			Str("method", step.Config.Method).
			Msg("running step")

		out, err := experiment.New(step.Config, registry, log).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, out)

		if step.SaveAs != "" {
			if err := Save(step.SaveAs, out); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			log.Info().Str("path", step.SaveAs).Msg("saved")
		}
	}

	return results, nil
}

// Save writes an outcome to path, choosing the format from the extension.
func Save(path string, out *experiment.Outcome) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if out.Complex != nil {
			return export.WriteJSON(file, out.Meta(), out.Complex)
		}
		return export.WriteJSON(file, out.Meta(), out.Real)
	case ".csv":
		if out.Complex != nil {
			return export.WriteCSV(file, out.Complex)
		}
		return export.WriteCSV(file, out.Real)
	case ".svg":
		res := out.Real
		if out.Complex != nil {
			res = export.Realify(out.Complex)
		}
		return export.WriteSVG(file, res, 800, 600)
	default:
		return fmt.Errorf("unsupported output extension %q", ext)
	}
}

// ParameterSweep runs one model across evenly spaced values of a parameter.
type ParameterSweep struct {
	Model     string    `yaml:"model"`
	ParamName string    `yaml:"param"`
	ParamMin  float64   `yaml:"min"`
	ParamMax  float64   `yaml:"max"`
	NumSteps  int       `yaml:"count"`
	Duration  float64   `yaml:"duration"`
	Steps     int       `yaml:"steps"`
	InitState []float64 `yaml:"init_state"`
}

// SweepResult holds the energy range seen along one run of a sweep.
type SweepResult struct {
	ParamValue  float64
	FinalState  dynamo.State
	MaxEnergy   float64
	MinEnergy   float64
	Evaluations int
}

// RunSweep integrates each parameter value with bounded-memory ABM and reads
// the energy through the observer. Each point builds its own model instance
// so parameters never leak between points.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, log zerolog.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 || sweep.Steps < 1 || sweep.Duration <= 0 {
		return nil, fmt.Errorf("sweep %s: count, steps and duration must be positive", sweep.ParamName)
	}

	probe, err := registry.GetModel(sweep.Model)
	if err != nil {
		return nil, err
	}
	if _, ok := probe.(dynamo.Configurable); !ok {
		return nil, fmt.Errorf("model %s is not tunable", sweep.Model)
	}
	if _, err := experiment.InitialState(probe, sweep.InitState); err != nil {
		return nil, err
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}
	results := make([]SweepResult, sweep.NumSteps)

	for i := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		paramVal := sweep.ParamMin + float64(i)*paramStep
		dyn, err := registry.Build(sweep.Model, map[string]float64{sweep.ParamName: paramVal}, sweep.InitState)
		if err != nil {
			return nil, err
		}
		x0, err := experiment.InitialState(dyn, sweep.InitState)
		if err != nil {
			return nil, err
		}

		r := SweepResult{ParamValue: paramVal, MaxEnergy: math.Inf(-1), MinEnergy: math.Inf(1)}
		var observer func(float64, []float64)
		ec, hasEnergy := dyn.(dynamo.Hamiltonian)
		if hasEnergy {
			observer = func(t float64, y []float64) {
				e := ec.Energy(y, t)
				r.MaxEnergy = math.Max(r.MaxEnergy, e)
				r.MinEnergy = math.Min(r.MinEnergy, e)
			}
		}

		f := experiment.WithContext(ctx, dynamo.AsFunc(dyn))
		res, err := integrators.ABM(f, dynamo.Span{End: sweep.Duration}, []float64(x0), sweep.Steps, integrators.ABMOptions[float64]{
			SaveMemory: true,
			Observer:   observer,
		})
		if err != nil {
			return results[:i], fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}
		if !hasEnergy {
			r.MaxEnergy, r.MinEnergy = 0, 0
		}
		r.FinalState = res.Final()
		r.Evaluations = res.Evaluations
		results[i] = r

		log.Debug().
			Int("point", i+1).
			Int("of", sweep.NumSteps).
			Float64(sweep.ParamName, paramVal).
			Msg("sweep point")
	}
	return results, nil
}
