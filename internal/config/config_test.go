package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks format validation and defaulting behaviour.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Nil config.
	require.Error(t, Validate(nil))

	// Empty config gets defaults.
	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultListenAddress, cfg.ListenAddress)
	require.Equal(t, DefaultAlarmsFilename, cfg.AlarmsFile)
	require.Equal(t, DefaultTickInterval, cfg.TickInterval)
	require.Equal(t, DefaultMaxAlarms, cfg.MaxAlarms)

	// Bad listen address.
	cfg = &Config{ListenAddress: "bad:address"}
	require.Error(t, Validate(cfg))

	// Bad update folder.
	cfg = &Config{UpdateFolder: "::not-a-url"}
	require.Error(t, Validate(cfg))

	// Okay with update folder.
	cfg = &Config{UpdateFolder: "https://updates.local/bell-timer"}
	require.NoError(t, Validate(cfg))
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := &Config{
		ListenAddress: "127.0.0.1:5001",
		ServerURL:     "http://127.0.0.1:5001",
		AlarmsFile:    "alarms.json",
		LogLevel:      "debug",
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ListenAddress, loaded.ListenAddress)
	require.Equal(t, cfg.ServerURL, loaded.ServerURL)
	require.Equal(t, cfg.LogLevel, loaded.LogLevel)

	// Defaults were applied on load.
	require.Equal(t, DefaultRingDuration, loaded.RingDuration)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadMissingFile verifies that a missing settings file is an error.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
