package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/vcns/bell-timer/internal/domain/alarm"
	"github.com/vcns/bell-timer/internal/sounds"
	"github.com/vcns/bell-timer/internal/store"
)

// listAlarms returns the alarm list in canonical display order.
func (s *Server) listAlarms(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"alarms": s.store.List()})
}

// addAlarm validates and stores a new alarm.
func (s *Server) addAlarm(w http.ResponseWriter, r *http.Request) {
	var a domain.Alarm
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	added, err := s.store.Add(r.Context(), a)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"alarm": added})
}

// updateAlarm replaces an existing alarm.
func (s *Server) updateAlarm(w http.ResponseWriter, r *http.Request) {
	var a domain.Alarm
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := s.store.Update(r.Context(), chi.URLParam(r, "id"), a)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"alarm": updated})
}

// deleteAlarm removes an alarm by id.
func (s *Server) deleteAlarm(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// nextAlarm reports the soonest upcoming alarm, if any.
func (s *Server) nextAlarm(w http.ResponseWriter, _ *http.Request) {
	next, at, ok := s.store.Next(s.now())
	if !ok {
		respondJSON(w, http.StatusOK, map[string]any{"alarm": nil})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"alarm": next,
		"at":    at.Format(time.RFC3339),
	})
}

// respondStoreError maps store and validation failures onto HTTP statuses.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrLimitExceeded),
		errors.Is(err, domain.ErrInvalid),
		errors.Is(err, sounds.ErrInvalidName),
		errors.Is(err, sounds.ErrNotFound):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
