package alarms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/vcns/bell-timer/internal/config"
	domain "github.com/vcns/bell-timer/internal/domain/alarm"
	"github.com/vcns/bell-timer/internal/logger"
)

// Repository defines persistence operations for the alarm list.
type Repository interface {
	Load(ctx context.Context) ([]domain.Alarm, error)
	Save(ctx context.Context, alarms []domain.Alarm) error
}

// document is the canonical on-disk shape: a top-level object with
// an "alarms" array.
type document struct {
	Alarms []domain.Alarm `json:"alarms"`
}

// FileRepository persists the alarm list to a JSON file on disk.
//
// Saves are atomic: the document is written to a temp file in the same
// directory, flushed, then renamed over the target, so readers never
// observe a half-written file. A flock sidecar serializes access with
// other processes sharing the same file.
type FileRepository struct {
	// path is the filesystem location of the alarms JSON file.
	path string
	// flk guards the file against concurrent access from other processes.
	flk *flock.Flock
	// mu serializes Load and Save within this process.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	path = filepath.Clean(path)

	return &FileRepository{
		path: path,
		flk:  flock.New(path + ".lock"),
	}
}

// Load reads the alarm list from disk.
//
// A missing file yields an empty list. A corrupt file is moved aside and
// also yields an empty list; parse failures are never propagated, per the
// degrade-and-continue policy for an unattended appliance.
func (r *FileRepository) Load(ctx context.Context) ([]domain.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.flk.Lock(); err != nil {
		return nil, fmt.Errorf("lock alarms file: %w", err)
	}

	defer func() {
		_ = r.flk.Unlock()
	}()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.InfoKV(ctx, "No alarms file yet, starting empty", "path", r.path)
			return []domain.Alarm{}, nil
		}

		return nil, fmt.Errorf("read alarms file: %w", err)
	}

	var doc document
	if err = json.Unmarshal(contents, &doc); err != nil {
		asidePath := r.path + ".corrupt"
		if renameErr := os.Rename(r.path, asidePath); renameErr != nil {
			logger.ErrorKV(ctx, "Failed to move corrupt alarms file aside",
				"path", r.path, "error", renameErr)
		}

		logger.ErrorKV(ctx, "Alarms file is corrupt, resetting to empty list",
			"path", r.path, "moved_to", asidePath, "error", err)

		return []domain.Alarm{}, nil
	}

	if doc.Alarms == nil {
		doc.Alarms = []domain.Alarm{}
	}

	return doc.Alarms, nil
}

// Save writes the alarm list to disk atomically.
func (r *FileRepository) Save(ctx context.Context, alarms []domain.Alarm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.flk.Lock(); err != nil {
		return fmt.Errorf("lock alarms file: %w", err)
	}

	defer func() {
		_ = r.flk.Unlock()
	}()

	data, err := json.MarshalIndent(document{Alarms: alarms}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode alarms: %w", err)
	}

	dir := filepath.Dir(r.path)

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp alarms file: %w", err)
	}

	tmpPath := tmp.Name()

	// Remove the temp file on any failure before the rename.
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp alarms file: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush temp alarms file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp alarms file: %w", err)
	}

	if err = os.Chmod(tmpPath, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("chmod temp alarms file: %w", err)
	}

	if err = os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("replace alarms file: %w", err)
	}

	logger.DebugKV(ctx, "Alarms persisted", "path", r.path, "count", len(alarms))

	return nil
}
