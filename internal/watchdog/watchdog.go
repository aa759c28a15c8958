package watchdog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vcns/bell-timer/internal/logger"
)

// DefaultCheckInterval is how often the watchdog inspects the heartbeat.
const DefaultCheckInterval = 30 * time.Second

// Heartbeat records when the scheduler last completed a tick.
type Heartbeat struct {
	// now is injectable for tests.
	now func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewHeartbeat creates a heartbeat stamped at the current instant.
// A nil now function selects time.Now.
func NewHeartbeat(now func() time.Time) *Heartbeat {
	if now == nil {
		now = time.Now
	}

	return &Heartbeat{
		now:  now,
		last: now(),
	}
}

// Beat stamps the heartbeat.
func (h *Heartbeat) Beat() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = h.now()
}

// Age returns the time elapsed since the last beat.
func (h *Heartbeat) Age() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.now().Sub(h.last)
}

// Counter is a monotonically increasing error counter safe for concurrent use.
type Counter struct {
	n atomic.Int64
}

// Inc increments the counter.
func (c *Counter) Inc() {
	c.n.Add(1)
}

// Value returns the current count.
func (c *Counter) Value() int64 {
	return c.n.Load()
}

// Watchdog escalates when the heartbeat goes stale: the run loop returns
// an error so the process run group shuts down and the supervisor restarts
// the service. The process never limps on with a dead scheduler.
type Watchdog struct {
	// hb is the monitored heartbeat.
	hb *Heartbeat
	// timeout is the staleness threshold.
	timeout time.Duration
	// interval is how often the heartbeat is inspected.
	interval time.Duration
}

// New creates a watchdog over the provided heartbeat.
func New(hb *Heartbeat, timeout, interval time.Duration) *Watchdog {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}

	return &Watchdog{
		hb:       hb,
		timeout:  timeout,
		interval: interval,
	}
}

// Run blocks until the context is canceled or the heartbeat goes stale.
// A stale heartbeat is returned as an error.
func (w *Watchdog) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "watchdog")

	logger.InfoKV(ctx, "Watchdog started",
		"timeout", w.timeout.String(), "check_interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Watchdog stopped")
			return nil
		case <-ticker.C:
			if err := w.Check(); err != nil {
				logger.ErrorKV(ctx, "Heartbeat stale, escalating",
					"timeout", w.timeout.String(), "error", err)

				return err
			}
		}
	}
}

// Check performs a single staleness inspection. It backs Run's loop and
// lets tests exercise the decision without waiting on timers.
func (w *Watchdog) Check() error {
	if age := w.hb.Age(); age > w.timeout {
		return fmt.Errorf("watchdog: no heartbeat for %s", age)
	}

	return nil
}
