package scheduler

import (
	"context"
	"sync"
	"time"

	domain "github.com/vcns/bell-timer/internal/domain/alarm"
	"github.com/vcns/bell-timer/internal/logger"
	"github.com/vcns/bell-timer/internal/player"
	"github.com/vcns/bell-timer/internal/sounds"
	"github.com/vcns/bell-timer/internal/watchdog"
)

// DefaultMaxConcurrentPlaybacks bounds simultaneous playback workers.
const DefaultMaxConcurrentPlaybacks = 4

// Snapshotter provides a point-in-time copy of the alarm list.
// The scheduler never holds the store lock while dispatching playback.
type Snapshotter interface {
	Snapshot() []domain.Alarm
}

// Scheduler polls the clock and dispatches playback for due alarms.
//
// One goroutine drives the tick loop; playback runs on a bounded worker
// pool so a slow or hung sound can never stall tick evaluation. An alarm
// fires at most once per matching minute even when the tick interval
// divides a minute into several checks: dedup compares a monotonic
// minute index (unix minutes), not wall-clock second equality.
type Scheduler struct {
	// store supplies alarm snapshots per tick.
	store Snapshotter
	// library resolves sound names to paths at trigger time.
	library *sounds.Library
	// snd plays resolved sound files.
	snd player.Player

	// interval is the tick period.
	interval time.Duration
	// now is injectable for tests.
	now func() time.Time
	// hb is stamped once per completed tick.
	hb *watchdog.Heartbeat
	// playbackErrors counts trigger-time resource and playback failures.
	playbackErrors *watchdog.Counter

	// workers limits concurrent playbacks.
	workers chan struct{}
	// wg tracks in-flight playback goroutines for shutdown.
	wg sync.WaitGroup

	// mu protects fired.
	mu sync.Mutex
	// fired maps a dedup key to the minute index it last rang in.
	fired map[string]int64
}

// Option configures the scheduler.
type Option func(*Scheduler)

// WithNow overrides the time source.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHeartbeat wires the watchdog heartbeat stamped each tick.
func WithHeartbeat(hb *watchdog.Heartbeat) Option {
	return func(s *Scheduler) {
		s.hb = hb
	}
}

// WithPlaybackErrorCounter wires the counter surfaced by the status endpoint.
func WithPlaybackErrorCounter(c *watchdog.Counter) Option {
	return func(s *Scheduler) {
		s.playbackErrors = c
	}
}

// WithMaxConcurrentPlaybacks bounds the playback worker pool.
func WithMaxConcurrentPlaybacks(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = make(chan struct{}, n)
		}
	}
}

// New creates a scheduler polling at the provided interval.
func New(store Snapshotter, library *sounds.Library, snd player.Player, interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:          store,
		library:        library,
		snd:            snd,
		interval:       interval,
		now:            time.Now,
		playbackErrors: &watchdog.Counter{},
		workers:        make(chan struct{}, DefaultMaxConcurrentPlaybacks),
		fired:          make(map[string]int64),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run drives the tick loop until the context is canceled, then waits for
// in-flight playbacks to wind down.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "scheduler")

	logger.InfoKV(ctx, "Scheduler started", "tick_interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First evaluation without waiting a full interval.
	s.CheckTick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			logger.Info(ctx, "Scheduler stopped")

			return nil
		case <-ticker.C:
			s.CheckTick(ctx)
		}
	}
}

// CheckTick evaluates all stored alarms against the current instant and
// dispatches playback for due, not-yet-fired entries. It never blocks on
// playback itself.
func (s *Scheduler) CheckTick(ctx context.Context) {
	now := s.now()

	var (
		minute = now.Unix() / 60
		day    = now.Weekday().String()
		clock  = now.Format(domain.ClockLayout)
	)

	for _, a := range s.store.Snapshot() {
		if err := a.Validate(); err != nil {
			// Malformed entry: skip it, keep the tick going.
			logger.WarnKV(ctx, "Skipping malformed alarm", "id", a.ID, "error", err)
			continue
		}

		if !a.Due(day, clock) {
			continue
		}

		if !s.markFired(a.Key(), minute) {
			// Already rang within this minute.
			continue
		}

		s.trigger(ctx, a)
	}

	s.pruneFired(minute)

	if s.hb != nil {
		s.hb.Beat()
	}
}

// trigger resolves the alarm's sound and dispatches playback asynchronously.
func (s *Scheduler) trigger(ctx context.Context, a domain.Alarm) {
	path, err := s.library.Resolve(a.Sound)
	if err != nil {
		// Resource error: this alarm is inert for the tick, others still fire.
		logger.ErrorKV(ctx, "Sound file unavailable, alarm skipped",
			"id", a.ID, "label", a.Label, "sound", a.Sound, "error", err)
		s.playbackErrors.Inc()

		return
	}

	logger.InfoKV(ctx, "Triggering alarm",
		"id", a.ID, "label", a.Label, "day", a.Day, "time", a.Time, "sound", a.Sound)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		select {
		case s.workers <- struct{}{}:
		case <-ctx.Done():
			return
		}

		defer func() {
			<-s.workers
		}()

		if err := s.snd.Play(ctx, path); err != nil {
			logger.ErrorKV(ctx, "Playback failed", "id", a.ID, "sound", a.Sound, "error", err)
			s.playbackErrors.Inc()
		}
	}()
}

// markFired records that the key rang in the given minute.
// It returns false when the key already fired within that minute.
func (s *Scheduler) markFired(key string, minute int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.fired[key]; ok && last == minute {
		return false
	}

	s.fired[key] = minute

	return true
}

// pruneFired drops markers from past minutes so the map stays bounded.
func (s *Scheduler) pruneFired(minute int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, last := range s.fired {
		if last != minute {
			delete(s.fired, key)
		}
	}
}
