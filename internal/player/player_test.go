package player

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeSound drops a placeholder sound file and returns its path.
func writeSound(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "a.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o600))

	return path
}

// TestPlayMissingFile surfaces a resource error when the file vanished.
func TestPlayMissingFile(t *testing.T) {
	t.Parallel()

	p := NewExecPlayer(context.Background(), time.Second, WithCommand("true"))

	err := p.Play(context.Background(), filepath.Join(t.TempDir(), "gone.wav"))
	require.Error(t, err)
}

// TestPlayCompletes runs a command that exits immediately.
func TestPlayCompletes(t *testing.T) {
	t.Parallel()

	p := NewExecPlayer(context.Background(), time.Second, WithCommand("true"))
	require.True(t, p.Available())

	require.NoError(t, p.Play(context.Background(), writeSound(t)))
}

// TestPlayBoundedByRingDuration treats a deadline-stopped playback as success.
func TestPlayBoundedByRingDuration(t *testing.T) {
	t.Parallel()

	// The shell ignores the appended path argument and sleeps past the deadline.
	p := NewExecPlayer(context.Background(), 50*time.Millisecond, WithCommand("sh", "-c", "sleep 5 #"))

	started := time.Now()
	require.NoError(t, p.Play(context.Background(), writeSound(t)))
	require.Less(t, time.Since(started), 2*time.Second)
}

// TestPlayUnavailable degrades to an error instead of panicking on hosts
// without any playback command.
func TestPlayUnavailable(t *testing.T) {
	t.Parallel()

	p := &ExecPlayer{ringFor: time.Second}
	require.False(t, p.Available())

	err := p.Play(context.Background(), writeSound(t))
	require.ErrorIs(t, err, ErrAudioUnavailable)
}
