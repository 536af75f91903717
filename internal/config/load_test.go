package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "failed to write test config")
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
[tmdb]
api_key = "abc123"
base_url = "http://localhost:9999"
language = "fr-FR"
region = "FR"
timeout = "3s"
cache_ttl = "1h"

[display]
orientation = "landscape"
overview_width = 80

[log]
level = "debug"

[database]
path = "/tmp/flickster.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.TMDB.APIKey)
	assert.Equal(t, "http://localhost:9999", cfg.TMDB.BaseURL)
	assert.Equal(t, "fr-FR", cfg.TMDB.Language)
	assert.Equal(t, "FR", cfg.TMDB.Region)
	assert.Equal(t, 3*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, time.Hour, cfg.TMDB.CacheTTL)
	assert.Equal(t, "landscape", cfg.Display.Orientation)
	assert.Equal(t, 80, cfg.Display.OverviewWidth)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/flickster.db", cfg.Database.Path)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
[tmdb]
api_key = "abc123"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.TMDB.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.TMDB.Timeout)
	assert.Equal(t, DefaultCacheTTL, cfg.TMDB.CacheTTL)
	assert.Equal(t, "portrait", cfg.Display.Orientation)
	assert.Equal(t, DefaultOverviewWidth, cfg.Display.OverviewWidth)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Database.Path, "event log is off by default")
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("FLICKSTER_TEST_KEY", "from-env")

	path := writeConfig(t, `
[tmdb]
api_key = "${FLICKSTER_TEST_KEY}"
language = "${FLICKSTER_TEST_UNSET_LANG:-de-DE}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.TMDB.APIKey)
	assert.Equal(t, "de-DE", cfg.TMDB.Language)
}

func TestLoad_MissingEnvAndValidation(t *testing.T) {
	path := writeConfig(t, `
[tmdb]
api_key = "${FLICKSTER_TEST_NONEXISTENT_KEY_98765}"

[display]
orientation = "diagonal"
`)

	_, err := Load(path)
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr), "expected *config.Error, got %T", err)
	assert.Equal(t, path, cfgErr.Path)
	assert.Equal(t, []string{"FLICKSTER_TEST_NONEXISTENT_KEY_98765"}, cfgErr.Missing)
	require.Len(t, cfgErr.Errors, 1)
	assert.Contains(t, cfgErr.Errors[0], "display.orientation")
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "[tmdb\napi_key = ")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}
