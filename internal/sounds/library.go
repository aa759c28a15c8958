package sounds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	domain "github.com/vcns/bell-timer/internal/domain/alarm"
	"github.com/vcns/bell-timer/internal/logger"
)

var (
	// ErrNotFound is returned when a named sound does not exist in the library.
	ErrNotFound = errors.New("sound not found")
	// ErrInvalidName is returned for names that are not bare .wav file names.
	ErrInvalidName = errors.New("invalid sound name")
)

// Sound describes one playable file in the library.
type Sound struct {
	// Name is the bare file name inside the audio directory.
	Name string `json:"name"`
	// Size is the file size in bytes.
	Size int64 `json:"size_bytes"`
}

// Library manages the .wav files under a single audio directory.
// Names are always bare file names; path traversal is rejected.
type Library struct {
	dir string
}

// New creates a library rooted at the provided directory.
func New(dir string) *Library {
	return &Library{dir: filepath.Clean(dir)}
}

// Dir returns the audio directory path.
func (l *Library) Dir() string {
	return l.dir
}

// EnsureDir creates the audio directory if needed and warns when the
// library holds no playable files.
func (l *Library) EnsureDir(ctx context.Context) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create audio directory: %w", err)
	}

	list, err := l.List()
	if err != nil {
		return err
	}

	if len(list) == 0 {
		logger.WarnKV(ctx, "No .wav files found in audio directory", "dir", l.dir)
	}

	return nil
}

// List returns the playable sounds sorted by name.
func (l *Library) List() ([]Sound, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Sound{}, nil
		}

		return nil, fmt.Errorf("read audio directory: %w", err)
	}

	list := make([]Sound, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), domain.SoundExtension) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		list = append(list, Sound{Name: entry.Name(), Size: info.Size()})
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	return list, nil
}

// Resolve validates a sound name and returns its absolute path.
// The file must exist at call time.
func (l *Library) Resolve(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	path := filepath.Join(l.dir, name)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}

		return "", fmt.Errorf("stat sound file: %w", err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrInvalidName, name)
	}

	return path, nil
}

// Save stores an uploaded sound under the provided name.
func (l *Library) Save(name string, r io.Reader) (Sound, error) {
	if err := validateName(name); err != nil {
		return Sound{}, err
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return Sound{}, fmt.Errorf("create audio directory: %w", err)
	}

	path := filepath.Join(l.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return Sound{}, fmt.Errorf("create sound file: %w", err)
	}

	size, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)

		return Sound{}, fmt.Errorf("write sound file: %w", err)
	}

	if err = f.Close(); err != nil {
		return Sound{}, fmt.Errorf("close sound file: %w", err)
	}

	return Sound{Name: name, Size: size}, nil
}

// Remove deletes a sound from the library.
func (l *Library) Remove(name string) error {
	path, err := l.Resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove sound file: %w", err)
	}

	return nil
}

// validateName rejects anything but a bare *.wav file name.
func validateName(name string) error {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if !strings.EqualFold(filepath.Ext(name), domain.SoundExtension) {
		return fmt.Errorf("%w: %q is not a %s file", ErrInvalidName, name, domain.SoundExtension)
	}

	return nil
}
