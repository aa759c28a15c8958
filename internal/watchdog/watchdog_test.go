package watchdog

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// TestHeartbeatAge tracks elapsed time and resets on Beat.
func TestHeartbeatAge(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	hb := NewHeartbeat(clock.Now)

	require.Zero(t, hb.Age())

	clock.Advance(time.Minute)
	require.Equal(t, time.Minute, hb.Age())

	hb.Beat()
	require.Zero(t, hb.Age())
}

// TestCheck escalates only past the timeout.
func TestCheck(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	hb := NewHeartbeat(clock.Now)
	wd := New(hb, 10*time.Minute, time.Second)

	clock.Advance(9 * time.Minute)
	require.NoError(t, wd.Check())

	clock.Advance(2 * time.Minute)
	require.Error(t, wd.Check())

	// A fresh beat clears the condition.
	hb.Beat()
	require.NoError(t, wd.Check())
}

// TestCounter increments atomically.
func TestCounter(t *testing.T) {
	t.Parallel()

	var c Counter

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}

	wg.Wait()
	require.EqualValues(t, 50, c.Value())
}
