package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/vcns/bell-timer/internal/domain/alarm"
	repo "github.com/vcns/bell-timer/internal/repository/alarms"
	"github.com/vcns/bell-timer/internal/sounds"
)

// newTestStore builds a store over temp storage with the given sounds available.
func newTestStore(t *testing.T, soundNames ...string) *Store {
	t.Helper()

	dir := t.TempDir()

	audioDir := filepath.Join(dir, "audio")
	require.NoError(t, os.MkdirAll(audioDir, 0o755))

	for _, name := range soundNames {
		require.NoError(t, os.WriteFile(filepath.Join(audioDir, name), []byte("RIFF"), 0o600))
	}

	repository := repo.NewFileRepository(filepath.Join(dir, "alarms.json"))

	return New(repository, sounds.New(audioDir), 3)
}

// TestAddGetDelete covers the basic CRUD cycle including persistence.
func TestAddGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t, "a.wav")

	added, err := s.Add(ctx, domain.Alarm{Day: "Monday", Time: "07:00", Sound: "a.wav"})
	require.NoError(t, err)
	require.NotEmpty(t, added.ID)
	require.Equal(t, domain.DefaultLabel, added.Label)

	got, err := s.Get(added.ID)
	require.NoError(t, err)
	require.Equal(t, added, got)

	require.NoError(t, s.Delete(ctx, added.ID))
	require.Zero(t, s.Count())

	err = s.Delete(ctx, added.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

// TestAddValidation rejects bad fields and unknown sounds.
func TestAddValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t, "a.wav")

	_, err := s.Add(ctx, domain.Alarm{Day: "Blursday", Time: "07:00", Sound: "a.wav"})
	require.ErrorIs(t, err, domain.ErrInvalid)

	_, err = s.Add(ctx, domain.Alarm{Day: "Monday", Time: "25:99", Sound: "a.wav"})
	require.ErrorIs(t, err, domain.ErrInvalid)

	// The sound must exist in the library at validation time.
	_, err = s.Add(ctx, domain.Alarm{Day: "Monday", Time: "07:00", Sound: "ghost.wav"})
	require.ErrorIs(t, err, sounds.ErrNotFound)
}

// TestAddLimit enforces the maximum alarm count.
func TestAddLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t, "a.wav")

	for i := 0; i < 3; i++ {
		_, err := s.Add(ctx, domain.Alarm{Day: "Monday", Time: "07:00", Label: string(rune('a' + i)), Sound: "a.wav"})
		require.NoError(t, err)
	}

	_, err := s.Add(ctx, domain.Alarm{Day: "Monday", Time: "08:00", Sound: "a.wav"})
	require.ErrorIs(t, err, ErrLimitExceeded)
}

// TestUpdate replaces fields and persists; unknown ids are 404s.
func TestUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t, "a.wav", "b.wav")

	added, err := s.Add(ctx, domain.Alarm{Day: "Monday", Time: "07:00", Sound: "a.wav"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, added.ID, domain.Alarm{Day: "Friday", Time: "06:30", Label: "Early", Sound: "b.wav"})
	require.NoError(t, err)
	require.Equal(t, added.ID, updated.ID)
	require.Equal(t, "Friday", updated.Day)

	_, err = s.Update(ctx, "nope", domain.Alarm{Day: "Friday", Time: "06:30", Sound: "b.wav"})
	require.ErrorIs(t, err, ErrNotFound)
}

// TestLoadRoundtrip verifies that a reloaded store sees what was saved.
func TestLoadRoundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	dir := t.TempDir()
	audioDir := filepath.Join(dir, "audio")
	require.NoError(t, os.MkdirAll(audioDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(audioDir, "a.wav"), []byte("RIFF"), 0o600))

	repository := repo.NewFileRepository(filepath.Join(dir, "alarms.json"))
	library := sounds.New(audioDir)

	first := New(repository, library, 10)
	added, err := first.Add(ctx, domain.Alarm{Day: "Monday", Time: "07:00", Label: "Wake", Sound: "a.wav"})
	require.NoError(t, err)

	second := New(repository, library, 10)
	require.NoError(t, second.Load(ctx))
	require.Equal(t, []domain.Alarm{added}, second.Snapshot())
}

// TestSnapshotIsACopy ensures mutating a snapshot cannot corrupt the store.
func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t, "a.wav")

	added, err := s.Add(ctx, domain.Alarm{Day: "Monday", Time: "07:00", Sound: "a.wav"})
	require.NoError(t, err)

	snap := s.Snapshot()
	snap[0].Label = "tampered"

	got, err := s.Get(added.ID)
	require.NoError(t, err)
	require.Equal(t, domain.DefaultLabel, got.Label)
}

// TestSoundInUse guards the sound library against deleting referenced files.
func TestSoundInUse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t, "a.wav")

	_, err := s.Add(ctx, domain.Alarm{Day: "Monday", Time: "07:00", Sound: "a.wav"})
	require.NoError(t, err)

	require.True(t, s.SoundInUse("a.wav"))
	require.False(t, s.SoundInUse("b.wav"))
}

// TestNext picks the soonest occurrence and skips malformed records.
func TestNext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t, "a.wav")

	_, err := s.Add(ctx, domain.Alarm{Day: "Wednesday", Time: "09:00", Sound: "a.wav"})
	require.NoError(t, err)

	_, err = s.Add(ctx, domain.Alarm{Day: "Monday", Time: "07:00", Sound: "a.wav"})
	require.NoError(t, err)

	// 2024-01-01 is a Monday.
	now := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)

	next, at, ok := s.Next(now)
	require.True(t, ok)
	require.Equal(t, "Monday", next.Day)
	require.Equal(t, time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC), at)
}

// TestPersistFailureSurfacedAndRolledBack keeps memory consistent when the
// repository cannot write.
func TestPersistFailureSurfacedAndRolledBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	dir := t.TempDir()
	audioDir := filepath.Join(dir, "audio")
	require.NoError(t, os.MkdirAll(audioDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(audioDir, "a.wav"), []byte("RIFF"), 0o600))

	s := New(failingRepo{}, sounds.New(audioDir), 10)

	_, err := s.Add(ctx, domain.Alarm{Day: "Monday", Time: "07:00", Sound: "a.wav"})
	require.Error(t, err)
	require.Zero(t, s.Count())
}

// failingRepo always fails to save.
type failingRepo struct{}

func (failingRepo) Load(context.Context) ([]domain.Alarm, error) {
	return []domain.Alarm{}, nil
}

func (failingRepo) Save(context.Context, []domain.Alarm) error {
	return errors.New("disk full")
}
