package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/progress-tracker/internal/models"
)

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.tracker.ListNotes(r.Context())
	if err != nil {
		respondFailure(w, r, err, "Failed to fetch learning notes")
		return
	}
	respondJSON(w, http.StatusOK, notes)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.tracker.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, r, err, "Failed to fetch learning note")
		return
	}
	respondJSON(w, http.StatusOK, note)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req models.CreateNoteRequest
	if !decodeBody(w, r, &req, "Invalid learning note data") {
		return
	}

	note, err := s.tracker.CreateNote(r.Context(), req)
	if err != nil {
		respondFailure(w, r, err, "Failed to create learning note")
		return
	}
	respondJSON(w, http.StatusCreated, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var patch models.NotePatch
	if !decodeBody(w, r, &patch, "Invalid learning note data") {
		return
	}

	note, err := s.tracker.UpdateNote(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondFailure(w, r, err, "Failed to update learning note")
		return
	}
	respondJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondFailure(w, r, err, "Failed to delete learning note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
