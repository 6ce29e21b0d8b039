package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/terra-clan/progress-tracker/internal/tracker"
)

// Response helpers

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, apiError{Error: code, Message: message})
}

// respondFailure maps a tracker error onto the two client-visible kinds,
// falling back to a 500 carrying the route's fixed message.
func respondFailure(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case tracker.IsValidation(err):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case tracker.IsNotFound(err):
		respondError(w, http.StatusNotFound, "not_found", notFoundMessage(err))
	default:
		slog.Error(fallback, "error", err, "method", r.Method, "path", r.URL.Path)
		respondError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, tracker.ErrLevelNotFound):
		return "Level not found"
	case errors.Is(err, tracker.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, tracker.ErrScheduleNotFound):
		return "Schedule not found"
	default:
		return "Learning note not found"
	}
}

// decodeBody reads a JSON request body into v, answering 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, invalidMessage string) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", invalidMessage)
		return false
	}
	return true
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	report := s.health.CheckAll(r.Context())
	if !report.Healthy {
		for _, c := range report.Checks {
			if !c.Healthy {
				slog.Warn("readiness check failed", "check", c.Name, "error", c.Error)
			}
		}
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"checks": report.Checks,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"checks": report.Checks,
	})
}
