package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("APP_ENV")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SERVER_PORT")

	os.Setenv("TRACK_TABLES_PATH", "./refdata")
	defer os.Unsetenv("TRACK_TABLES_PATH")

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "cache.json", cfg.Cache.FilePath)
	assert.Equal(t, 10, cfg.Cache.OverlayTTLSeconds)
	assert.Equal(t, "https://t.17track.net/restapi/track", cfg.Tracking.APIURL)
	assert.Equal(t, "https://m.17track.net/", cfg.Tracking.Referer)
	assert.Equal(t, 10, cfg.Tracking.ProxyTimeoutSeconds)
	assert.Equal(t, 5, cfg.Session.MaxCaptureAttempts)
	assert.Equal(t, 3600, cfg.Daemon.TrackIntervalSeconds)
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	os.Setenv("APP_ENV", "production")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("TRACK_TABLES_PATH", "/var/lib/tracker/tables")
	os.Setenv("CACHE_FILE", "/tmp/tracker-cache.json")
	os.Setenv("DAEMON_TRACK_INTERVAL_SECONDS", "60")
	defer func() {
		os.Unsetenv("APP_ENV")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("TRACK_TABLES_PATH")
		os.Unsetenv("CACHE_FILE")
		os.Unsetenv("DAEMON_TRACK_INTERVAL_SECONDS")
	}()

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "/var/lib/tracker/tables", cfg.Tracking.TablesPath)
	assert.Equal(t, "/tmp/tracker-cache.json", cfg.Cache.FilePath)
	assert.Equal(t, 60, cfg.Daemon.TrackIntervalSeconds)
}

// TestLoad_MissingRequired verifies that a missing required field fails the load.
func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("TRACK_TABLES_PATH")

	cfg, err := Load(t.TempDir())
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRACK_TABLES_PATH")
}
