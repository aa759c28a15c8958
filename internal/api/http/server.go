package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/vcns/bell-timer/internal/player"
	"github.com/vcns/bell-timer/internal/sounds"
	"github.com/vcns/bell-timer/internal/store"
	"github.com/vcns/bell-timer/internal/watchdog"
)

// maxUploadBytes bounds a single sound upload.
const maxUploadBytes = 16 << 20

// Server exposes the alarm service over HTTP.
type Server struct {
	// store is the owned alarm list shared with the scheduler.
	store *store.Store
	// library is the .wav sound library.
	library *sounds.Library
	// snd plays test sounds on request.
	snd player.Player
	// hb is the scheduler heartbeat surfaced by status and health.
	hb *watchdog.Heartbeat
	// playbackErrors counts trigger-time failures.
	playbackErrors *watchdog.Counter
	// watchdogTimeout is the staleness threshold mirrored by health checks.
	watchdogTimeout time.Duration
	// audioAvailable reports whether a playback command was resolved.
	audioAvailable bool
	// startedAt anchors the uptime reported by the status endpoint.
	startedAt time.Time
	// now is injectable for tests.
	now func() time.Time
}

// Options wires the server's collaborators.
type Options struct {
	Store           *store.Store
	Library         *sounds.Library
	Player          player.Player
	Heartbeat       *watchdog.Heartbeat
	PlaybackErrors  *watchdog.Counter
	WatchdogTimeout time.Duration
	AudioAvailable  bool
	Now             func() time.Time
}

// NewServer creates the HTTP server around the provided collaborators.
func NewServer(opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	playbackErrors := opts.PlaybackErrors
	if playbackErrors == nil {
		playbackErrors = &watchdog.Counter{}
	}

	return &Server{
		store:           opts.Store,
		library:         opts.Library,
		snd:             opts.Player,
		hb:              opts.Heartbeat,
		playbackErrors:  playbackErrors,
		watchdogTimeout: opts.WatchdogTimeout,
		audioAvailable:  opts.AudioAvailable,
		startedAt:       now(),
		now:             now,
	}
}

// Router builds the chi routing tree for the API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
	}).Handler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/alarms", func(r chi.Router) {
			r.Get("/", s.listAlarms)
			r.Post("/", s.addAlarm)
			r.Get("/next", s.nextAlarm)
			r.Put("/{id}", s.updateAlarm)
			r.Delete("/{id}", s.deleteAlarm)
		})

		r.Route("/sounds", func(r chi.Router) {
			r.Get("/", s.listSounds)
			r.Post("/", s.uploadSound)
			r.Post("/test", s.testSound)
			r.Delete("/{name}", s.deleteSound)
		})

		r.Get("/status", s.status)
		r.Get("/healthz", s.healthz)

		r.Route("/system", func(r chi.Router) {
			r.Get("/time", s.timeStatus)
			r.Post("/timesync", s.timeSync)
			r.Post("/netplan-apply", s.netplanApply)
		})
	})

	return r
}
