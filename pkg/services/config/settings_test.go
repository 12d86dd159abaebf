package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	cfg, err := LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:5000", cfg.BackendURL)
	assert.Equal(t, 30, cfg.ForecastDays)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Zero(t, cfg.Server.RefreshInterval)
}

func TestLoadSettings_ValidYAML_PopulatesAllFields(t *testing.T) {
	// Given
	dir := t.TempDir()
	path := filepath.Join(dir, "valid.yaml")
	content := `backend_url: "http://analytics:5000"
forecast_days: 14
theme: "dark"
db_path: "/tmp/atlas.db"
server:
  host: "0.0.0.0"
  port: "9090"
  shutdown_timeout: "3s"
  refresh_interval: "5m"`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// When
	cfg, err := LoadSettings(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "http://analytics:5000", cfg.BackendURL)
	assert.Equal(t, 14, cfg.ForecastDays)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, "/tmp/atlas.db", cfg.DBPath)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Server.RefreshInterval)
}

func TestLoadSettings_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`forecast_days: 14`), 0o644))

	t.Setenv("SALES_ATLAS_FORECAST_DAYS", "60")
	t.Setenv("SALES_ATLAS_SERVER_PORT", "7000")

	cfg, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.ForecastDays)
	assert.Equal(t, "7000", cfg.Server.Port)
}

func TestLoadSettings_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid days", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`forecast_days: 0`), 0o644))
		_, err := LoadSettings(path)
		assert.ErrorContains(t, err, "forecast_days")
	})

	t.Run("negative refresh interval", func(t *testing.T) {
		t.Setenv("SALES_ATLAS_SERVER_REFRESH_INTERVAL", "-1m")
		_, err := LoadSettings("")
		assert.ErrorContains(t, err, "refresh_interval")
	})
}

func TestRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".salesatlascfg")
	content := `[local]
backend_url = http://127.0.0.1:5000

[staging]
backend_url = https://staging.example.com
forecast_days = 7

[empty]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg, err := NewRegistry(path)
	require.NoError(t, err)
	ctx := context.Background()

	profiles, err := reg.GetProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"local", "staging"}, profiles)

	p, err := reg.GetProfile(ctx, "staging")
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", p.BackendURL)
	assert.Equal(t, 7, p.ForecastDays)

	_, err = reg.GetProfile(ctx, "missing")
	assert.Error(t, err)
	_, err = reg.GetProfile(ctx, "empty")
	assert.Error(t, err)

	cfg := &Settings{BackendURL: "http://local", ForecastDays: 30}
	cfg.ApplyProfile(p)
	assert.Equal(t, "https://staging.example.com", cfg.BackendURL)
	assert.Equal(t, 7, cfg.ForecastDays)
}
