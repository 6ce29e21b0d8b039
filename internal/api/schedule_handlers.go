package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/progress-tracker/internal/models"
)

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	start, ok := s.queryDate(w, r, "startDate")
	if !ok {
		return
	}
	end, ok := s.queryDate(w, r, "endDate")
	if !ok {
		return
	}

	schedules, err := s.tracker.ListSchedules(r.Context(), start, end)
	if err != nil {
		respondFailure(w, r, err, "Failed to fetch schedules")
		return
	}
	respondJSON(w, http.StatusOK, schedules)
}

// queryDate parses an optional date query parameter; absent yields nil
func (s *Server) queryDate(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	t, err := models.ParseDate(raw, s.tracker.Location())
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", name+": "+err.Error())
		return nil, false
	}
	return &t, true
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := s.tracker.GetSchedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, r, err, "Failed to fetch schedule")
		return
	}
	respondJSON(w, http.StatusOK, schedule)
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req models.CreateScheduleRequest
	if !decodeBody(w, r, &req, "Invalid schedule data") {
		return
	}

	schedule, err := s.tracker.CreateSchedule(r.Context(), req)
	if err != nil {
		respondFailure(w, r, err, "Failed to create schedule")
		return
	}
	respondJSON(w, http.StatusCreated, schedule)
}

func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateScheduleRequest
	if !decodeBody(w, r, &req, "Invalid schedule data") {
		return
	}

	schedule, err := s.tracker.UpdateSchedule(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondFailure(w, r, err, "Failed to update schedule")
		return
	}
	respondJSON(w, http.StatusOK, schedule)
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteSchedule(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondFailure(w, r, err, "Failed to delete schedule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
