package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zombor/fintrack-api/internal/accessibility"
)

// formValue returns a trimmed form field, or fallback when it is absent
func formValue(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return fallback
}

// handleSpeak reads the posted text aloud. It returns once speech finishes.
func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	text := formValue(r, "text", "")
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	language := formValue(r, "language", accessibility.DefaultLanguage)

	if err := s.explainer.Speak(r.Context(), text, language); err != nil {
		slog.Error("Error speaking text", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error speaking text: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleVibrate queues a haptic cue
func (s *Server) handleVibrate(w http.ResponseWriter, r *http.Request) {
	pattern, err := accessibility.ParsePattern(formValue(r, "pattern", string(accessibility.Notification)))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error triggering vibration: %v", err))
		return
	}

	queued := s.feedback.Vibrate(pattern)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true, "queued": queued})
}

// handleExplain speaks the explanation of a UI element
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	elementID := formValue(r, "element_id", "")
	if elementID == "" {
		writeError(w, http.StatusBadRequest, "element_id is required")
		return
	}
	language := formValue(r, "language", accessibility.DefaultLanguage)

	if err := s.explainer.Explain(r.Context(), elementID, language); err != nil {
		slog.Error("Error explaining element", "element_id", elementID, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error explaining element: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type voiceCommandResponse struct {
	Matched bool   `json:"matched"`
	Command string `json:"command,omitempty"`
}

// handleVoiceCommand matches text recognised on the client against the
// command phrases
func (s *Server) handleVoiceCommand(w http.ResponseWriter, r *http.Request) {
	text := formValue(r, "text", "")
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	cmd, ok := s.voice.Submit(r.Context(), text)
	writeJSON(w, http.StatusOK, voiceCommandResponse{Matched: ok, Command: cmd.Name})
}

// handleDrainVoiceCommands hands over every queued command
func (s *Server) handleDrainVoiceCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]accessibility.Command{"commands": s.voice.Drain()})
}
