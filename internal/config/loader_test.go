package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sitesmith.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Pipeline.MaxIterations)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8088
pipeline:
  output_dir: /tmp/sites
  concurrency: 4
qa:
  navigation_timeout: 10s
store:
  driver: sqlite
  path: /tmp/gen.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "/tmp/sites", cfg.Pipeline.OutputDir)
	assert.Equal(t, 4, cfg.Pipeline.Concurrency)
	assert.Equal(t, 5, cfg.Pipeline.MaxIterations, "unset keys keep defaults")
	assert.Equal(t, 10*time.Second, cfg.QA.NavigationTimeout)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8088\n")
	t.Setenv("SITESMITH_SERVER_PORT", "7070")
	t.Setenv("SITESMITH_PIPELINE_MAX_ITERATIONS", "3")
	t.Setenv("SITESMITH_GENERATION_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Pipeline.MaxIterations)
	assert.True(t, cfg.Generation.APIKey.IsSet())
	assert.Equal(t, "sk-test", cfg.Generation.APIKey.Value())
}

func TestLoad_RejectsInvalidResult(t *testing.T) {
	path := writeConfig(t, "store:\n  driver: mongo\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoad_RejectsWorldWritableFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8088\n")
	require.NoError(t, os.Chmod(path, 0666))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "world-writable")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.port", envKey("SITESMITH_SERVER_PORT"))
	assert.Equal(t, "pipeline.max_iterations", envKey("SITESMITH_PIPELINE_MAX_ITERATIONS"))
	assert.Equal(t, "debug", envKey("SITESMITH_DEBUG"))
}
