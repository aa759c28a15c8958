package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/vcns/bell-timer/internal/logger"
	"github.com/vcns/bell-timer/internal/sounds"
)

// listSounds returns the playable files in the library.
func (s *Server) listSounds(w http.ResponseWriter, _ *http.Request) {
	list, err := s.library.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"sounds": list})
}

// uploadSound stores a multipart .wav upload in the library.
func (s *Server) uploadSound(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}

	defer func() {
		_ = file.Close()
	}()

	saved, err := s.library.Save(filepath.Base(header.Filename), file)
	if err != nil {
		respondSoundError(w, err)
		return
	}

	logger.InfoKV(r.Context(), "Sound uploaded", "name", saved.Name, "size", saved.Size)
	respondJSON(w, http.StatusCreated, map[string]any{"sound": saved})
}

// deleteSound removes a sound unless an alarm still references it.
func (s *Server) deleteSound(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if s.store.SoundInUse(name) {
		respondError(w, http.StatusConflict, "sound is referenced by an alarm")
		return
	}

	if err := s.library.Remove(name); err != nil {
		respondSoundError(w, err)
		return
	}

	logger.InfoKV(r.Context(), "Sound deleted", "name", name)
	w.WriteHeader(http.StatusNoContent)
}

// testSound plays a named sound once, fire-and-forget.
func (s *Server) testSound(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sound string `json:"sound"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Sound == "" {
		respondError(w, http.StatusBadRequest, "sound field is required")
		return
	}

	path, err := s.library.Resolve(req.Sound)
	if err != nil {
		respondSoundError(w, err)
		return
	}

	// Detached from the request: the test keeps ringing after the
	// response, bounded by the player's ring duration.
	playCtx := logger.WithName(context.WithoutCancel(r.Context()), "sound-test")

	go func() {
		if err := s.snd.Play(playCtx, path); err != nil {
			logger.ErrorKV(playCtx, "Test playback failed", "sound", req.Sound, "error", err)
			s.playbackErrors.Inc()
		}
	}()

	logger.InfoKV(r.Context(), "Sound test triggered", "sound", req.Sound)
	respondJSON(w, http.StatusAccepted, map[string]string{"message": "sound test triggered"})
}

// respondSoundError maps library failures onto HTTP statuses.
func respondSoundError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sounds.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sounds.ErrInvalidName):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
