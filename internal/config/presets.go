package config

import (
	"math"
	"slices"
)

var Presets = map[string]map[string]*Config{
	"decay": {
		"gaussian": {
			Model: "decay", Method: "abm", T1: 1, Steps: 500, StartFactor: 2,
			Y0: []float64{1},
		},
		"wide": {
			Model: "decay", Method: "abm", T1: 1, Steps: 40, StartFactor: 2,
			SaveMemory: true, Y0: ramp(4096),
		},
	},
	"harmonic": {
		"cycle": {
			Model: "harmonic", Method: "abm", T1: 2 * math.Pi, Steps: 1000, StartFactor: 2,
			Y0: []float64{1, 0},
		},
		"long": {
			Model: "harmonic", Method: "abm", T1: 1000, Steps: 200000, StartFactor: 2,
			SaveMemory: true, Y0: []float64{1, 0},
		},
	},
	"rotor": {
		"complex": {
			Model: "rotor", Method: "abm", T1: 1, Steps: 200, StartFactor: 2,
			Complex: true, Y0: []float64{1, 0},
		},
		"real": {
			Model: "rotor", Method: "rk4", T1: 1, Steps: 200,
			Y0: []float64{1, 0},
		},
	},
	"lorenz": {
		"classic": {
			Model: "lorenz", Method: "abm", T1: 50, Steps: 50000, StartFactor: 2,
			Y0:     []float64{1, 1, 1},
			Params: map[string]float64{"sigma": 10, "rho": 28, "beta": 8.0 / 3.0},
		},
		"wolf": {
			Model: "lorenz", Method: "abm", T1: 50, Steps: 50000, StartFactor: 2,
			Y0:     []float64{1, 1, 1},
			Params: map[string]float64{"sigma": 16, "rho": 45.92, "beta": 4},
		},
		"strong": {
			Model: "lorenz", Method: "abm", T1: 50, Steps: 50000, StartFactor: 2,
			Y0:     []float64{1, 1, 1},
			Params: map[string]float64{"sigma": 16, "rho": 40, "beta": 4},
		},
	},
	"mathieu": {
		"resonant": {
			Model: "mathieu", Method: "abm", T1: 100, Steps: 20000, StartFactor: 2,
			Y0:     []float64{0, 1},
			Params: map[string]float64{"omega0": 1, "h": 0.1, "omega_p": 2},
		},
		"detuned": {
			Model: "mathieu", Method: "abm", T1: 100, Steps: 20000, StartFactor: 2,
			Y0:     []float64{0, 1},
			Params: map[string]float64{"omega0": 1, "h": 0.1, "omega_p": 3.3},
		},
	},
	"pendulum": {
		"small": {
			Model: "pendulum", Method: "rk4", T1: 20, Steps: 2000,
			Y0: []float64{0.2, 0},
		},
		"large": {
			Model: "pendulum", Method: "rk4", T1: 20, Steps: 2000,
			Y0: []float64{2.5, 0},
		},
	},
	"vanderpol": {
		"relaxation": {
			Model: "vanderpol", Method: "abm", T1: 50, Steps: 20000, StartFactor: 2,
			Y0: []float64{0.5, 0}, Params: map[string]float64{"mu": 5},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil when it does not exist.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	if out.Format == "" {
		out.Format = DefaultFormat
	}
	if out.Lyapunov.Samples == 0 {
		out.Lyapunov = DefaultConfig().Lyapunov
	}
	return out
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func ramp(n int) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = float64(i)
	}
	return y
}
