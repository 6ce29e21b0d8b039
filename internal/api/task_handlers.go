package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/progress-tracker/internal/models"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tracker.ListTasks(r.Context(), r.URL.Query().Get("levelId"))
	if err != nil {
		respondFailure(w, r, err, "Failed to fetch tasks")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tracker.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, r, err, "Failed to fetch task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if !decodeBody(w, r, &req, "Invalid task data") {
		return
	}

	task, err := s.tracker.CreateTask(r.Context(), req)
	if err != nil {
		respondFailure(w, r, err, "Failed to create task")
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if !decodeBody(w, r, &patch, "Invalid task data") {
		return
	}

	task, err := s.tracker.UpdateTask(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondFailure(w, r, err, "Failed to update task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondFailure(w, r, err, "Failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
