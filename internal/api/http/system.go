package http

import (
	"net/http"
	"os"

	"github.com/vcns/bell-timer/internal/sysconf"
	"github.com/vcns/bell-timer/internal/version"
)

// Health states reported by the healthz endpoint.
const (
	healthHealthy  = "healthy"
	healthDegraded = "degraded"
	healthCritical = "critical"
)

// status reports process and scheduler vitals.
func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":                "running",
		"pid":                   os.Getpid(),
		"version":               version.Short(),
		"uptime_seconds":        int64(s.now().Sub(s.startedAt).Seconds()),
		"alarm_count":           s.store.Count(),
		"audio_available":       s.audioAvailable,
		"playback_errors":       s.playbackErrors.Value(),
		"heartbeat_age_seconds": s.hb.Age().Seconds(),
	})
}

// healthz derives a coarse health verdict from the scheduler heartbeat.
// Probes get a 503 only once the watchdog itself would escalate.
func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	var (
		age    = s.hb.Age()
		state  = healthHealthy
		status = http.StatusOK
	)

	switch {
	case age > s.watchdogTimeout:
		state = healthCritical
		status = http.StatusServiceUnavailable
	case age > s.watchdogTimeout/2:
		state = healthDegraded
	}

	respondJSON(w, status, map[string]any{
		"status":                state,
		"heartbeat_age_seconds": age.Seconds(),
		"playback_errors":       s.playbackErrors.Value(),
		"audio_available":       s.audioAvailable,
	})
}

// timeStatus reports the host timezone and NTP state.
func (s *Server) timeStatus(w http.ResponseWriter, r *http.Request) {
	status, err := sysconf.QueryTimeStatus(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// timeSync asks the host to enable NTP synchronization.
func (s *Server) timeSync(w http.ResponseWriter, r *http.Request) {
	respondResult(w, sysconf.EnableTimeSync(r.Context()))
}

// netplanApply asks the host to apply its current netplan configuration.
func (s *Server) netplanApply(w http.ResponseWriter, r *http.Request) {
	respondResult(w, sysconf.ApplyNetworkPlan(r.Context()))
}

// respondResult maps a pass/fail system command result onto HTTP statuses.
func respondResult(w http.ResponseWriter, result sysconf.Result) {
	status := http.StatusOK
	if !result.OK {
		status = http.StatusBadGateway
	}

	respondJSON(w, status, result)
}
