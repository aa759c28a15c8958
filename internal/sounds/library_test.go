package sounds

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestLibrary builds a library over a temp dir seeded with the given files.
func newTestLibrary(t *testing.T, names ...string) *Library {
	t.Helper()

	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("RIFF"), 0o600))
	}

	return New(dir)
}

// TestList returns only .wav files, sorted by name.
func TestList(t *testing.T) {
	t.Parallel()

	lib := newTestLibrary(t, "b.wav", "a.wav", "notes.txt", "c.WAV")

	list, err := lib.List()
	require.NoError(t, err)

	names := make([]string, 0, len(list))
	for _, s := range list {
		names = append(names, s.Name)
	}

	require.Equal(t, []string{"a.wav", "b.wav", "c.WAV"}, names)
}

// TestListMissingDir yields an empty list for a directory that does not exist.
func TestListMissingDir(t *testing.T) {
	t.Parallel()

	lib := New(filepath.Join(t.TempDir(), "nope"))

	list, err := lib.List()
	require.NoError(t, err)
	require.Empty(t, list)
}

// TestResolve validates names and existence.
func TestResolve(t *testing.T) {
	t.Parallel()

	lib := newTestLibrary(t, "a.wav")

	path, err := lib.Resolve("a.wav")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(lib.Dir(), "a.wav"), path)

	_, err = lib.Resolve("missing.wav")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = lib.Resolve("../escape.wav")
	require.ErrorIs(t, err, ErrInvalidName)

	_, err = lib.Resolve("song.mp3")
	require.ErrorIs(t, err, ErrInvalidName)

	_, err = lib.Resolve("")
	require.ErrorIs(t, err, ErrInvalidName)
}

// TestSaveAndRemove round-trips an upload and deletes it.
func TestSaveAndRemove(t *testing.T) {
	t.Parallel()

	lib := New(filepath.Join(t.TempDir(), "audio"))

	s, err := lib.Save("chime.wav", strings.NewReader("RIFF1234"))
	require.NoError(t, err)
	require.Equal(t, "chime.wav", s.Name)
	require.Equal(t, int64(8), s.Size)

	_, err = lib.Resolve("chime.wav")
	require.NoError(t, err)

	require.NoError(t, lib.Remove("chime.wav"))

	_, err = lib.Resolve("chime.wav")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestSaveRejectsBadNames keeps traversal and non-wav uploads out of the library.
func TestSaveRejectsBadNames(t *testing.T) {
	t.Parallel()

	lib := New(t.TempDir())

	_, err := lib.Save("../../etc/passwd.wav", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrInvalidName)

	_, err = lib.Save("payload.sh", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrInvalidName)
}
