package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/progress-tracker/internal/models"
)

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := s.tracker.ListLevels(r.Context())
	if err != nil {
		respondFailure(w, r, err, "Failed to fetch levels")
		return
	}
	respondJSON(w, http.StatusOK, levels)
}

func (s *Server) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	level, err := s.tracker.GetLevel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, r, err, "Failed to fetch level")
		return
	}
	respondJSON(w, http.StatusOK, level)
}

func (s *Server) handleCreateLevel(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLevelRequest
	if !decodeBody(w, r, &req, "Invalid level data") {
		return
	}

	level, err := s.tracker.CreateLevel(r.Context(), req)
	if err != nil {
		respondFailure(w, r, err, "Failed to create level")
		return
	}
	respondJSON(w, http.StatusCreated, level)
}

func (s *Server) handleUpdateLevel(w http.ResponseWriter, r *http.Request) {
	var patch models.LevelPatch
	if !decodeBody(w, r, &patch, "Invalid level data") {
		return
	}

	level, err := s.tracker.UpdateLevel(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondFailure(w, r, err, "Failed to update level")
		return
	}
	respondJSON(w, http.StatusOK, level)
}

func (s *Server) handleDeleteLevel(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteLevel(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondFailure(w, r, err, "Failed to delete level")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
