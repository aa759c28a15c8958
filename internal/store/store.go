package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/vcns/bell-timer/internal/domain/alarm"
	"github.com/vcns/bell-timer/internal/logger"
	repo "github.com/vcns/bell-timer/internal/repository/alarms"
	"github.com/vcns/bell-timer/internal/sounds"
)

var (
	// ErrNotFound is returned when no alarm carries the requested id.
	ErrNotFound = errors.New("alarm not found")
	// ErrLimitExceeded is returned when the alarm list is full.
	ErrLimitExceeded = errors.New("alarm limit exceeded")
)

// Store owns the in-memory alarm list and orchestrates persistence.
//
// It is the single holder of alarm state: the scheduler and the HTTP
// handlers receive the same instance explicitly, there is no package-level
// state. All access goes through the store's lock; readers get copies.
type Store struct {
	// repo persists the list; every successful mutation is written through.
	repo repo.Repository
	// library validates sound references at add/edit time.
	library *sounds.Library
	// maxAlarms caps the list length.
	maxAlarms int

	// mu protects alarms.
	mu sync.RWMutex
	// alarms is the owned list; slices handed out are always copies.
	alarms []domain.Alarm
}

// New creates a store backed by the provided repository and sound library.
func New(repository repo.Repository, library *sounds.Library, maxAlarms int) *Store {
	return &Store{
		repo:      repository,
		library:   library,
		maxAlarms: maxAlarms,
		alarms:    []domain.Alarm{},
	}
}

// Load populates the store from the repository. Records with malformed
// fields are kept (the scheduler skips them per tick) but logged, so a
// hand-edited file is visible in the logs without losing data.
func (s *Store) Load(ctx context.Context) error {
	loaded, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load alarms: %w", err)
	}

	for i := range loaded {
		if loaded[i].ID == "" {
			loaded[i].ID = uuid.NewString()
		}

		if err := loaded[i].Validate(); err != nil {
			logger.WarnKV(ctx, "Loaded alarm has invalid fields, it will never ring",
				"id", loaded[i].ID, "error", err)
		}
	}

	s.mu.Lock()
	s.alarms = loaded
	s.mu.Unlock()

	logger.InfoKV(ctx, "Alarms loaded", "count", len(loaded))

	return nil
}

// Snapshot returns a point-in-time copy of the list in storage order.
// The scheduler iterates the copy so concurrent edits never corrupt
// an in-flight tick.
func (s *Store) Snapshot() []domain.Alarm {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Alarm, len(s.alarms))
	copy(out, s.alarms)

	return out
}

// List returns a copy of the alarms in canonical display order.
func (s *Store) List() []domain.Alarm {
	out := s.Snapshot()
	domain.Sort(out)

	return out
}

// Count returns the number of stored alarms.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.alarms)
}

// Get returns the alarm with the provided id.
func (s *Store) Get(id string) (domain.Alarm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.alarms {
		if s.alarms[i].ID == id {
			return s.alarms[i].Clone(), nil
		}
	}

	return domain.Alarm{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Add validates and appends a new alarm, persisting the updated list.
// The input id is ignored; the store assigns one.
func (s *Store) Add(ctx context.Context, a domain.Alarm) (domain.Alarm, error) {
	if err := s.validate(&a); err != nil {
		return domain.Alarm{}, err
	}

	a.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxAlarms > 0 && len(s.alarms) >= s.maxAlarms {
		return domain.Alarm{}, fmt.Errorf("%w: maximum %d alarms", ErrLimitExceeded, s.maxAlarms)
	}

	s.alarms = append(s.alarms, a)

	if err := s.persist(ctx); err != nil {
		s.alarms = s.alarms[:len(s.alarms)-1]
		return domain.Alarm{}, err
	}

	logger.InfoKV(ctx, "Alarm added",
		"id", a.ID, "day", a.Day, "time", a.Time, "sound", a.Sound)

	return a, nil
}

// Update validates and replaces the alarm with the provided id,
// persisting the updated list.
func (s *Store) Update(ctx context.Context, id string, a domain.Alarm) (domain.Alarm, error) {
	if err := s.validate(&a); err != nil {
		return domain.Alarm{}, err
	}

	a.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1

	for i := range s.alarms {
		if s.alarms[i].ID == id {
			idx = i
			break
		}
	}

	if idx < 0 {
		return domain.Alarm{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	previous := s.alarms[idx]
	s.alarms[idx] = a

	if err := s.persist(ctx); err != nil {
		s.alarms[idx] = previous
		return domain.Alarm{}, err
	}

	logger.InfoKV(ctx, "Alarm updated",
		"id", a.ID, "day", a.Day, "time", a.Time, "sound", a.Sound)

	return a, nil
}

// Delete removes the alarm with the provided id, persisting the updated list.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1

	for i := range s.alarms {
		if s.alarms[i].ID == id {
			idx = i
			break
		}
	}

	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	removed := s.alarms[idx]
	s.alarms = append(s.alarms[:idx:idx], s.alarms[idx+1:]...)

	if err := s.persist(ctx); err != nil {
		// Put it back; the caller sees the failure, the list stays consistent.
		s.alarms = append(s.alarms[:idx], append([]domain.Alarm{removed}, s.alarms[idx:]...)...)
		return err
	}

	logger.InfoKV(ctx, "Alarm deleted", "id", id, "label", removed.Label)

	return nil
}

// SoundInUse reports whether any alarm references the named sound.
func (s *Store) SoundInUse(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.alarms {
		if s.alarms[i].Sound == name {
			return true
		}
	}

	return false
}

// Next returns the alarm that triggers soonest at or after now,
// with its trigger instant. Malformed entries are ignored.
func (s *Store) Next(now time.Time) (domain.Alarm, time.Time, bool) {
	snapshot := s.Snapshot()

	var (
		best   domain.Alarm
		bestAt time.Time
		found  bool
	)

	for i := range snapshot {
		at, err := snapshot[i].NextOccurrence(now)
		if err != nil {
			continue
		}

		if !found || at.Before(bestAt) {
			best, bestAt, found = snapshot[i], at, true
		}
	}

	return best, bestAt, found
}

// validate normalizes and checks field formats plus the sound reference.
func (s *Store) validate(a *domain.Alarm) error {
	a.Normalize()

	if err := a.Validate(); err != nil {
		return err
	}

	if s.library != nil {
		if _, err := s.library.Resolve(a.Sound); err != nil {
			return err
		}
	}

	return nil
}

// persist writes the current list through the repository.
// Callers must hold the write lock.
func (s *Store) persist(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	if err := s.repo.Save(ctx, s.alarms); err != nil {
		logger.ErrorKV(ctx, "Failed to persist alarms", "error", err)
		return fmt.Errorf("persist alarms: %w", err)
	}

	return nil
}
