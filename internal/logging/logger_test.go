package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_SilentWhenDebugModeDisabled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir, false, LevelInfo))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	Get(CategoryBoot).Info("should not panic or write")
}

func TestInitialize_WritesLogFileWhenDebugModeEnabled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir, true, LevelDebug))

	Get(CategoryOrchestrator).Info("run started")

	logsDirPath := filepath.Join(dir, ".dsstar", "logs")
	entries, err := os.ReadDir(logsDirPath)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestLogger_RespectsMinLevel(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir, true, LevelWarn))

	l := Get(CategoryScanner)
	l.Debug("should be filtered")
	l.Warn("should be written")

	logsDirPath := filepath.Join(dir, ".dsstar", "logs")
	entries, err := os.ReadDir(logsDirPath)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	data, err := os.ReadFile(filepath.Join(logsDirPath, entries[0].Name()))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "should be filtered")
	assert.Contains(t, string(data), "should be written")
}
