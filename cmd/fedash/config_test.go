package main

import (
	"os"
	"path/filepath"
	"testing"

	"fedash/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit(t *testing.T) {
	t.Setenv("FEDASH_ADDR", ":9100")
	path := filepath.Join(t.TempDir(), "etc", "fedash.yaml")

	out, err := execute(t, "config", "init", "--config", path, "--data", "/srv/merged_data.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	t.Setenv("FEDASH_ADDR", "")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, "/srv/merged_data.csv", cfg.Data.Path)
	assert.Equal(t, "relative_reduction", cfg.Dashboard.DefaultMetric)

	_, err = execute(t, "config", "init", "--config", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "config", "init", "--config", path, "--force")
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "default_metric: relative_reduction")
}
