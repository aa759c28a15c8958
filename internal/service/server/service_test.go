package server

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/require"

	"github.com/vcns/bell-timer/internal/config"
)

func writeSettings(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, config.DefaultConfigFilename)
	require.NoError(t, config.Save(path, &config.Config{
		ListenAddress: "127.0.0.1:0",
		AlarmsFile:    filepath.Join(dir, "alarms.json"),
		AudioDir:      filepath.Join(dir, "audio"),
	}))

	return path
}

func TestRunFailsWithoutSettings(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "load settings")
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeSettings(t, dir)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, &Options{ConfigPath: path})
	}()

	// Give the group a moment to start before tearing it down.
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestRunRefusesSecondInstance(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeSettings(t, dir)

	lock := flock.New(filepath.Join(dir, "alarms.json") + ".daemon.lock")
	locked, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	t.Cleanup(func() {
		require.NoError(t, lock.Unlock())
	})

	err = Run(context.Background(), &Options{ConfigPath: path})
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestRunOverridesListenAddress(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeSettings(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, &Options{
			ConfigPath:    path,
			ListenAddress: "127.0.0.1:18492",
		})
	}()

	require.Eventually(t, func() bool {
		resp, reqErr := http.Get("http://127.0.0.1:18492/api/healthz")
		if reqErr != nil {
			return false
		}

		defer func() {
			_ = resp.Body.Close()
		}()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
