package alarms

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/vcns/bell-timer/internal/domain/alarm"
)

// TestLoadMissingFile verifies a missing file yields an empty list, not an error.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)
}

// TestSaveLoadRoundtrip ensures Save followed by Load returns equal records.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "alarms.json")
	repo := NewFileRepository(file)

	want := []domain.Alarm{
		{ID: "a1", Day: "Monday", Time: "07:00", Label: "Wake", Sound: "a.wav"},
		{ID: "a2", Day: "Friday", Time: "21:30", Label: "Wind down", Sound: "b.wav"},
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	// The canonical shape is a top-level object with an "alarms" array.
	contents, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"alarms"`)
}

// TestLoadCorruptFile verifies invalid JSON resets to empty without raising
// and moves the broken file aside.
func TestLoadCorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "alarms.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o600))

	repo := NewFileRepository(file)

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)

	// Original content is preserved aside for inspection.
	aside, err := os.ReadFile(file + ".corrupt")
	require.NoError(t, err)
	require.Equal(t, "{not json", string(aside))
}

// TestSaveLeavesNoTempFiles verifies the atomic write cleans up after itself.
func TestSaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo := NewFileRepository(filepath.Join(dir, "alarms.json"))

	require.NoError(t, repo.Save(context.Background(), []domain.Alarm{
		{ID: "a1", Day: "Monday", Time: "07:00", Label: "Wake", Sound: "a.wav"},
	}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	for _, entry := range entries {
		require.False(t, strings.Contains(entry.Name(), ".tmp-"),
			"temp file left behind: %s", entry.Name())
	}
}

// TestSaveOverwritesCompletely ensures a shrinking list never leaves stale bytes.
func TestSaveOverwritesCompletely(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "alarms.json")
	repo := NewFileRepository(file)

	long := make([]domain.Alarm, 0, 20)
	for i := 0; i < 20; i++ {
		long = append(long, domain.Alarm{ID: "x", Day: "Monday", Time: "07:00", Sound: "a.wav"})
	}

	require.NoError(t, repo.Save(context.Background(), long))
	require.NoError(t, repo.Save(context.Background(), nil))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)
}
