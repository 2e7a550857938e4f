package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.Overpass.Endpoint)
	assert.InDelta(t, 1.0, cfg.Overpass.RateLimitQPS, 0.001)
	assert.Equal(t, 180, cfg.Overpass.TimeoutSecs)
	assert.Equal(t, 180*time.Second, cfg.Overpass.Timeout())
	assert.Equal(t, 2, cfg.Overpass.RetryAttempts)
	assert.Equal(t, 14, cfg.Resolve.Zoom)
	assert.InDelta(t, 0.6, cfg.Resolve.MatchCutoff, 0.001)
	assert.Equal(t, 3, cfg.Resolve.MaxCandidates)
	assert.True(t, cfg.Resolve.Neighborhood)
	assert.Equal(t, "utf-8", cfg.Source.Encoding)
	assert.Equal(t, "txt_number", cfg.Source.Number)
	assert.Equal(t, "txt_street", cfg.Source.Street)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	yaml := `
overpass:
  endpoint: http://localhost:12345/api/interpreter
  rate_limit_qps: 5
resolve:
  zoom: 15
  neighborhood: false
source:
  encoding: latin1
  street_field: st_name
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:12345/api/interpreter", cfg.Overpass.Endpoint)
	assert.InDelta(t, 5.0, cfg.Overpass.RateLimitQPS, 0.001)
	assert.Equal(t, 15, cfg.Resolve.Zoom)
	assert.False(t, cfg.Resolve.Neighborhood)
	assert.Equal(t, "latin1", cfg.Source.Encoding)
	assert.Equal(t, "st_name", cfg.Source.Street)
	// Untouched keys keep defaults.
	assert.Equal(t, "txt_number", cfg.Source.Number)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
