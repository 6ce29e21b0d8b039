package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/terra-clan/progress-tracker/internal/models"
)

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.tracker.GetStats(r.Context())
	if err != nil {
		respondFailure(w, r, err, "Failed to fetch user stats")
		return
	}
	// nil encodes as null until the singleton exists
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleUpdateStats(w http.ResponseWriter, r *http.Request) {
	var patch models.StatsPatch
	if !decodeBody(w, r, &patch, "Invalid user stats data") {
		return
	}

	stats, err := s.tracker.UpdateStats(r.Context(), patch)
	if err != nil {
		respondFailure(w, r, err, "Failed to update user stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.tracker.Dashboard(r.Context())
	if err != nil {
		respondFailure(w, r, err, "Failed to fetch dashboard")
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now().In(s.tracker.Location())
	year, month := now.Year(), int(now.Month())

	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "year must be an integer")
			return
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "month must be an integer")
			return
		}
		month = n
	}

	cal, err := s.tracker.Calendar(r.Context(), year, time.Month(month))
	if err != nil {
		respondFailure(w, r, err, "Failed to fetch calendar")
		return
	}
	respondJSON(w, http.StatusOK, cal)
}
