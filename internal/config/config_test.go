package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "decay", cfg.Model)
	assert.Equal(t, "abm", cfg.Method)
	assert.Equal(t, 2, cfg.StartFactor)
	assert.Greater(t, cfg.T1, cfg.T0)
	assert.NoError(t, cfg.Validate())
	assert.NoError(t, cfg.Lyapunov.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte("model: lorenz\nmethod: rk4\nt1: 5\nsteps: 100\ny0: [1, 2, 3]\nparams:\n  rho: 45.92\nlyapunov:\n  samples: 7\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "lorenz", cfg.Model)
	assert.Equal(t, "rk4", cfg.Method)
	assert.Equal(t, 5.0, cfg.T1)
	assert.Equal(t, 100, cfg.Steps)
	assert.Equal(t, []float64{1, 2, 3}, cfg.Y0)
	assert.Equal(t, 45.92, cfg.Params["rho"])
	assert.Equal(t, 7, cfg.Lyapunov.Samples)
	// untouched fields keep their defaults
	assert.Equal(t, 2, cfg.StartFactor)
	assert.Equal(t, 1e-7, cfg.Lyapunov.MinNorm)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := GetPreset("mathieu", "resonant")
	require.NotNil(t, cfg)
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps: [not, a, number]\n"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown method", func(c *Config) { c.Method = "rk45" }},
		{"zero steps", func(c *Config) { c.Steps = 0 }},
		{"empty span", func(c *Config) { c.T1 = c.T0 }},
		{"negative start factor", func(c *Config) { c.StartFactor = -1 }},
		{"unknown format", func(c *Config) { c.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("lorenz", "wolf")
	require.NotNil(t, cfg)
	assert.Equal(t, 45.92, cfg.Params["rho"])
	assert.NoError(t, cfg.Validate())

	cfg.Params["rho"] = 0
	cfg.Y0[0] = 99
	again := GetPreset("lorenz", "wolf")
	assert.Equal(t, 45.92, again.Params["rho"], "presets must not be shared")
	assert.Equal(t, 1.0, again.Y0[0])
}

func TestGetPresetNotFound(t *testing.T) {
	assert.Nil(t, GetPreset("lorenz", "nonexistent"))
	assert.Nil(t, GetPreset("nonexistent", "classic"))
}

func TestListPresets(t *testing.T) {
	assert.Equal(t, []string{"classic", "strong", "wolf"}, ListPresets("lorenz"))
	assert.Nil(t, ListPresets("nonexistent"))
}

func TestPresetsAreValid(t *testing.T) {
	for model := range Presets {
		for _, name := range ListPresets(model) {
			cfg := GetPreset(model, name)
			assert.Equal(t, model, cfg.Model, "%s/%s", model, name)
			assert.NoError(t, cfg.Validate(), "%s/%s", model, name)
		}
	}
}
