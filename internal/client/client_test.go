package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	api "github.com/vcns/bell-timer/internal/api/http"
	domain "github.com/vcns/bell-timer/internal/domain/alarm"
	repo "github.com/vcns/bell-timer/internal/repository/alarms"
	"github.com/vcns/bell-timer/internal/sounds"
	"github.com/vcns/bell-timer/internal/store"
	"github.com/vcns/bell-timer/internal/watchdog"
)

type silentPlayer struct{}

func (silentPlayer) Play(context.Context, string) error { return nil }

func newTestClient(t *testing.T) *Client {
	t.Helper()

	dir := t.TempDir()
	audioDir := filepath.Join(dir, "audio")
	require.NoError(t, os.MkdirAll(audioDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(audioDir, "chime.wav"), []byte("RIFF"), 0o600))

	library := sounds.New(audioDir)
	st := store.New(repo.NewFileRepository(filepath.Join(dir, "alarms.json")), library, 10)
	require.NoError(t, st.Load(context.Background()))

	srv := api.NewServer(api.Options{
		Store:           st,
		Library:         library,
		Player:          silentPlayer{},
		Heartbeat:       watchdog.NewHeartbeat(nil),
		PlaybackErrors:  &watchdog.Counter{},
		WatchdogTimeout: 10 * time.Minute,
		AudioAvailable:  true,
	})

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return New(ts.URL, 5*time.Second)
}

func TestClientAlarmRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newTestClient(t)

	list, err := c.ListAlarms(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	added, err := c.AddAlarm(ctx, domain.Alarm{
		Day:   "Monday",
		Time:  "07:30",
		Label: "Wake up",
		Sound: "chime.wav",
	})
	require.NoError(t, err)
	require.NotEmpty(t, added.ID)

	updated, err := c.UpdateAlarm(ctx, added.ID, domain.Alarm{
		Day:   "Friday",
		Time:  "08:00",
		Sound: "chime.wav",
	})
	require.NoError(t, err)
	require.Equal(t, "Friday", updated.Day)

	next, err := c.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Equal(t, added.ID, next.Alarm.ID)
	require.False(t, next.At.IsZero())

	require.NoError(t, c.DeleteAlarm(ctx, added.ID))

	next, err = c.Next(ctx)
	require.NoError(t, err)
	require.Nil(t, next)
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newTestClient(t)

	err := c.DeleteAlarm(ctx, "missing")
	require.Error(t, err)

	var apiErr *APIError

	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 404, apiErr.StatusCode)
	require.Contains(t, apiErr.Message, "not found")
}

func TestClientSoundsAndStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newTestClient(t)

	uploaded, err := c.UploadSound(ctx, "bell.wav", strings.NewReader("RIFFdata"))
	require.NoError(t, err)
	require.Equal(t, "bell.wav", uploaded.Name)

	list, err := c.ListSounds(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, c.TestSound(ctx, "bell.wav"))
	require.NoError(t, c.DeleteSound(ctx, "bell.wav"))

	status, err := c.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, "running", status.Status)
	require.True(t, status.AudioAvailable)
}
