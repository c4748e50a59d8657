package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_MatchesDocumentedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 8, cfg.MaxIters)
	assert.Equal(t, "120s", cfg.ModelTimeout)
	assert.True(t, cfg.Browser.Headless)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxIters)
}

func TestLoad_ReadsYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dsstar.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_iters: 3\nmodel_base_url: http://example.test\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxIters)
	assert.Equal(t, "http://example.test", cfg.ModelBaseURL)
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dsstar.yaml")

	cfg := DefaultConfig()
	cfg.MaxIters = 5
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.MaxIters)
}

func TestApplyEnvOverrides_ClampsMaxItersAndSetsDebug(t *testing.T) {
	t.Setenv("DSSTAR_MAX_ITERS", "99")
	t.Setenv("DSSTAR_MODEL_BASE_URL", "http://override.test")
	t.Setenv("DSSTAR_DEBUG", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxIters) // clamped to upper bound
	assert.Equal(t, "http://override.test", cfg.ModelBaseURL)
	assert.True(t, cfg.DebugMode)
}

func TestClampMaxIters_EnforcesBounds(t *testing.T) {
	assert.Equal(t, 8, ClampMaxIters(0))
	assert.Equal(t, 1, ClampMaxIters(1))
	assert.Equal(t, 10, ClampMaxIters(50))
}

func TestGetModelTimeout_FallsBackOnMalformedValue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelTimeout = "not-a-duration"
	assert.Equal(t, "2m0s", cfg.GetModelTimeout().String())
}
