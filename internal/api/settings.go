package api

import (
	"log/slog"
	"net/http"

	"github.com/zombor/fintrack-api/internal/settings"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	us, err := s.settings.Get(r.Context())
	if err != nil {
		slog.Error("Error reading settings", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, us)
}

// handleUpdateSettings replaces the settings record. Fields missing from the
// body take their default values, not their previous ones.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	us := settings.Defaults()
	if err := s.decodeRequest(r, &us); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.settings.Replace(r.Context(), us); err != nil {
		slog.Error("Error saving settings", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	slog.Info("Settings updated",
		"language", us.Language,
		"voice_commands", us.VoiceCommands,
		"vibration_feedback", us.VibrationFeedback,
	)

	s.apply(us)
	if us.VibrationFeedback {
		s.feedback.Success()
	}

	writeJSON(w, http.StatusOK, us)
}
