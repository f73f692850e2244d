package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader() *Loader {
	// Isolated viper instance so tests don't leak state through the global.
	return &Loader{v: viper.New()}
}

func TestLoad_DefaultsAreValid(t *testing.T) {
	l := newTestLoader()
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultParams().NPool, cfg.Params.NPool)
	assert.Len(t, cfg.Params.ConvBlocks, 3)
}

func TestLoadWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "platecrnn.yaml")
	content := `
log_level: debug
output_dir: /tmp/out
params:
  max_chars_per_string: 8
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	l := newTestLoader()
	cfg, err := l.LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, 8, cfg.Params.MaxCharsPerString)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Untouched keys keep defaults.
	assert.Equal(t, ";", cfg.Params.CSVDelimiter)
}

func TestLoadWithFile_Missing(t *testing.T) {
	l := newTestLoader()
	_, err := l.LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadWithFile_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "platecrnn.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o644))

	l := newTestLoader()
	_, err := l.LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestGetConfigSearchPaths(t *testing.T) {
	paths := GetConfigSearchPaths()
	assert.NotEmpty(t, paths)
	assert.Equal(t, ".", paths[0])
}
