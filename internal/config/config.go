package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/stepwise/internal/analysis"
)

const (
	DefaultModel  = "decay"
	DefaultMethod = "abm"
	DefaultSteps  = 500
	DefaultT1     = 1.0
	DefaultFormat = "table"
)

// Methods accepted by Config.Method.
var Methods = []string{"euler", "rk4", "abm"}

// Config describes one integration run.
type Config struct {
	Model       string             `yaml:"model"`
	Method      string             `yaml:"method"`
	T0          float64            `yaml:"t0"`
	T1          float64            `yaml:"t1"`
	Steps       int                `yaml:"steps"`
	Y0          []float64          `yaml:"y0,omitempty"`
	SaveMemory  bool               `yaml:"save_memory"`
	StartFactor int                `yaml:"start_factor"`
	Complex     bool               `yaml:"complex,omitempty"`
	Params      map[string]float64 `yaml:"params,omitempty"`
	Format      string             `yaml:"format"`

	Lyapunov analysis.LyapunovConfig `yaml:"lyapunov"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:       DefaultModel,
		Method:      DefaultMethod,
		T0:          0,
		T1:          DefaultT1,
		Steps:       DefaultSteps,
		StartFactor: 2,
		Format:      DefaultFormat,
		Lyapunov:    analysis.DefaultLyapunovConfig(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields that the integrators would otherwise reject deep
// inside a run.
func (c *Config) Validate() error {
	switch c.Method {
	case "euler", "rk4", "abm":
	default:
		return fmt.Errorf("%w: method %q", ErrInvalid, c.Method)
	}
	if c.Steps < 1 {
		return fmt.Errorf("%w: steps must be at least 1", ErrInvalid)
	}
	if !(c.T1 > c.T0) {
		return fmt.Errorf("%w: t1 must be greater than t0", ErrInvalid)
	}
	if c.StartFactor < 0 {
		return fmt.Errorf("%w: start_factor must not be negative", ErrInvalid)
	}
	switch c.Format {
	case "table", "csv", "json", "svg":
	default:
		return fmt.Errorf("%w: format %q", ErrInvalid, c.Format)
	}
	return nil
}

// Clone returns a deep copy so presets are never modified by callers.
func (c *Config) Clone() *Config {
	out := *c
	if c.Y0 != nil {
		out.Y0 = append([]float64(nil), c.Y0...)
	}
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}
