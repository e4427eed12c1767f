package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "demandcast/internal/errors"
	"demandcast/pkg/contracts/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)

	assert.Equal(t, 12, cfg.Forecast.DefaultHorizon)
	assert.Equal(t, 60, cfg.Forecast.MaxHorizon)
	assert.Equal(t, domain.DefaultFactors(), cfg.Forecast.Factors)
	assert.Equal(t, 6, cfg.Forecast.TestPeriods)
	assert.Equal(t, domain.DefaultTestFactors(), cfg.Forecast.TestFactors)
	assert.Equal(t, uint64(0), cfg.Forecast.Seed)
	assert.Equal(t, 4, cfg.Forecast.MaxConcurrency)

	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
	assert.True(t, cfg.Telemetry.MetricsEnabled)
}

func TestLoadFile_Precedence(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 5s
forecast:
  default_horizon: 18
  factors:
    seasonality: 0.4
    trend: 1
    noise: 0.05
logging:
  level: debug
`)

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, 18, cfg.Forecast.DefaultHorizon)
		assert.Equal(t, domain.Factors{Seasonality: 0.4, Trend: 1, Noise: 0.05}, cfg.Forecast.Factors)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, 6, cfg.Forecast.TestPeriods)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("DEMAND_SERVER_PORT", "7070")
		t.Setenv("DEMAND_FORECAST_FACTORS_NOISE", "0.2")
		t.Setenv("DEMAND_FORECAST_SEED", "42")

		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, 0.2, cfg.Forecast.Factors.Noise)
		assert.Equal(t, 0.4, cfg.Forecast.Factors.Seasonality)
		assert.Equal(t, uint64(42), cfg.Forecast.Seed)
	})

	t.Run("config path from environment", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, path)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
	})
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "malformed yaml", yaml: "server: [unclosed"},
		{name: "bad port", yaml: "server:\n  port: 70000"},
		{name: "horizon above max", yaml: "forecast:\n  default_horizon: 61"},
		{name: "zero concurrency", yaml: "forecast:\n  max_concurrency: 0"},
		{name: "noise above one", yaml: "forecast:\n  factors:\n    noise: 1.5"},
		{name: "unknown log level", yaml: "logging:\n  level: loud"},
		{name: "unknown trace exporter", yaml: "telemetry:\n  trace_exporter: jaeger"},
		{name: "bad env value", env: map[string]string{"DEMAND_SERVER_PORT": "not-a-number"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfig(t, tt.yaml)

			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Equal(t, apierrors.ErrTypeConfig, apierrors.TypeOf(err))
		})
	}

	t.Run("missing explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent.yaml")
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.True(t, os.IsNotExist(errors.Unwrap(err)))

		var appErr *apierrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, path, appErr.Context["path"])
	})
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().validate())
}
