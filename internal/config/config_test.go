package config

import (
	"os"
	"path/filepath"
	"testing"

	"fedash/internal/engine"
	"fedash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, []string{"South Asia", "LAC"}, cfg.Dashboard.DefaultRegions)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fedash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  rate_limit: 5
data:
  path: /srv/merged_data.csv
logging:
  level: debug
dashboard:
  default_regions: [SSA]
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5.0, cfg.Server.RateLimit)
	assert.Equal(t, "/srv/merged_data.csv", cfg.Data.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"SSA"}, cfg.Dashboard.DefaultRegions)
	// untouched keys keep defaults
	assert.Equal(t, "relative_reduction", cfg.Dashboard.DefaultMetric)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [oops"), 0644))
	_, err := Load(bad)
	assert.Error(t, err)

	level := filepath.Join(dir, "level.yaml")
	require.NoError(t, os.WriteFile(level, []byte("logging:\n  level: loud\n"), 0644))
	_, err = Load(level)
	assert.ErrorContains(t, err, "logging.level")

	metric := filepath.Join(dir, "metric.yaml")
	require.NoError(t, os.WriteFile(metric, []byte("dashboard:\n  default_metric: prevalence\n"), 0644))
	_, err = Load(metric)
	assert.ErrorIs(t, err, engine.ErrUnknownMetric)
	assert.ErrorContains(t, err, "dashboard.default_metric")
}

func TestDashboardMetric(t *testing.T) {
	m, err := DefaultConfig().Dashboard.Metric()
	require.NoError(t, err)
	assert.Equal(t, models.MetricRelativeReduction, m)

	m, err = DashboardConfig{DefaultMetric: "d_iron_r_2030"}.Metric()
	require.NoError(t, err)
	assert.Equal(t, models.MetricDalysSaved, m)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("data and addr", func(t *testing.T) {
		t.Setenv("FEDASH_DATA", "/tmp/x.csv")
		t.Setenv("FEDASH_ADDR", "127.0.0.1:1")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/tmp/x.csv", cfg.Data.Path)
		assert.Equal(t, "127.0.0.1:1", cfg.Server.Addr)
	})

	t.Run("log level is lowercased", func(t *testing.T) {
		t.Setenv("FEDASH_LOG_LEVEL", "WARN")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("bad rate limit ignored", func(t *testing.T) {
		t.Setenv("FEDASH_RATE_LIMIT", "fast")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Zero(t, cfg.Server.RateLimit)
	})
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fedash.yaml")
	cfg := DefaultConfig()
	cfg.Server.Addr = ":7000"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", loaded.Server.Addr)
}
