package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	api "github.com/vcns/bell-timer/internal/api/http"
	"github.com/vcns/bell-timer/internal/config"
	"github.com/vcns/bell-timer/internal/logger"
	"github.com/vcns/bell-timer/internal/player"
	repo "github.com/vcns/bell-timer/internal/repository/alarms"
	"github.com/vcns/bell-timer/internal/scheduler"
	"github.com/vcns/bell-timer/internal/sounds"
	"github.com/vcns/bell-timer/internal/store"
	"github.com/vcns/bell-timer/internal/watchdog"
)

// shutdownTimeout bounds the graceful HTTP drain on exit.
const shutdownTimeout = 10 * time.Second

// ErrAlreadyRunning indicates another bell-server holds the daemon lock.
var ErrAlreadyRunning = errors.New("another bell-server instance is already running")

// Options controls the bell-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the HTTP API.
	ListenAddress string
	// AlarmsFile provides an optional override for the alarm list JSON path.
	AlarmsFile string
	// AudioDir provides an optional override for the sound library directory.
	AudioDir string
}

// Run assembles the store, scheduler, watchdog and HTTP API and blocks
// until the context is canceled or one of them fails. A scheduler that
// stops beating takes the whole process down so the supervisor restarts it.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "bell-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	listenAddress := settings.ListenAddress
	if opts.ListenAddress != "" {
		listenAddress = opts.ListenAddress
	}

	alarmsFile := settings.AlarmsFile
	if opts.AlarmsFile != "" {
		alarmsFile = opts.AlarmsFile
	}

	audioDir := settings.AudioDir
	if opts.AudioDir != "" {
		audioDir = opts.AudioDir
	}

	// One server per alarms file. A second instance would double-fire
	// every alarm and race the JSON writes.
	daemonLock := flock.New(alarmsFile + ".daemon.lock")

	locked, err := daemonLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}

	if !locked {
		return ErrAlreadyRunning
	}

	defer func() {
		//nolint:errcheck // The lock dies with the process either way.
		daemonLock.Unlock()
	}()

	library := sounds.New(audioDir)
	if err = library.EnsureDir(ctx); err != nil {
		return fmt.Errorf("prepare sound library: %w", err)
	}

	st := store.New(repo.NewFileRepository(alarmsFile), library, settings.MaxAlarms)
	if err = st.Load(ctx); err != nil {
		return fmt.Errorf("initialise store: %w", err)
	}

	snd := player.NewExecPlayer(ctx, settings.RingDuration)
	hb := watchdog.NewHeartbeat(nil)
	playbackErrors := &watchdog.Counter{}

	sched := scheduler.New(st, library, snd, settings.TickInterval,
		scheduler.WithHeartbeat(hb),
		scheduler.WithPlaybackErrorCounter(playbackErrors))

	dog := watchdog.New(hb, settings.WatchdogTimeout, watchdog.DefaultCheckInterval)

	apiServer := api.NewServer(api.Options{
		Store:           st,
		Library:         library,
		Player:          snd,
		Heartbeat:       hb,
		PlaybackErrors:  playbackErrors,
		WatchdogTimeout: settings.WatchdogTimeout,
		AudioAvailable:  snd.Available(),
	})

	//nolint:exhaustruct // Unset timeouts keep their net/http defaults.
	httpServer := &http.Server{
		Addr:              listenAddress,
		Handler:           apiServer.Router(),
		ReadHeaderTimeout: settings.Timeout,
	}

	logger.InfoKV(ctx, "Bell server starting",
		"listen_address", listenAddress,
		"alarms_file", alarmsFile,
		"audio_dir", audioDir,
		"tick_interval", settings.TickInterval.String())

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return sched.Run(groupCtx)
	})

	group.Go(func() error {
		return dog.Run(groupCtx)
	})

	group.Go(func() error {
		if serveErr := httpServer.ListenAndServe(); serveErr != nil &&
			!errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", serveErr)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		logger.Info(ctx, "Shutting down HTTP server")

		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(groupCtx), shutdownTimeout)
		defer cancel()

		if shutdownErr := httpServer.Shutdown(drainCtx); shutdownErr != nil {
			return fmt.Errorf("shutdown HTTP server: %w", shutdownErr)
		}

		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Bell server stopped")

	return nil
}
