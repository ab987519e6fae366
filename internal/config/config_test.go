package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gonewton/internal/config"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	cfg, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Solver.MaxIterations)
	assert.Equal(t, 400, cfg.Plot.Samples)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, config.BackendMemory, cfg.Archive.Backend)
	assert.Equal(t, config.Duration(time.Hour), cfg.Archive.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := write(t, "newton.yaml", `
solver:
  max_iterations: 20
archive:
  backend: redis
  ttl: 15m
  redis:
    addr: cache:6379
log:
  level: debug
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Solver.MaxIterations)
	assert.Equal(t, config.BackendRedis, cfg.Archive.Backend)
	assert.Equal(t, config.Duration(15*time.Minute), cfg.Archive.TTL)
	assert.Equal(t, "cache:6379", cfg.Archive.Redis.Addr)
	assert.Equal(t, "gonewton:", cfg.Archive.Redis.Prefix)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched sections keep their defaults
	assert.Equal(t, 400, cfg.Plot.Samples)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "newton.json", `{"plot": {"samples": 100}, "server": {"addr": ":9090", "read_timeout": "2s"}}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Plot.Samples)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, config.Duration(2*time.Second), cfg.Server.ReadTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	for name, content := range map[string]string{
		"iterations.yaml": "solver:\n  max_iterations: 0\n",
		"samples.yaml":    "plot:\n  samples: 1\n",
		"many_iter.yaml":  "solver:\n  max_iterations: 10001\n",
		"many_samp.yaml":  "plot:\n  samples: 20000000\n",
		"backend.yaml":    "archive:\n  backend: etcd\n",
		"level.yaml":      "log:\n  level: loud\n",
		"ttl.yaml":        "archive:\n  ttl: soon\n",
		"broken.json":     "{",
	} {
		_, err := config.Load(write(t, name, content))
		assert.Error(t, err, name)
	}
}
