package models

import (
	"time"
)

// Task is a single unit of work inside a level
type Task struct {
	ID          string    `json:"id"`
	LevelID     string    `json:"levelId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsCompleted bool      `json:"isCompleted"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateTaskRequest represents a request to create a task
type CreateTaskRequest struct {
	LevelID     string `json:"levelId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsCompleted bool   `json:"isCompleted"`
	Order       int    `json:"order"`
}

// TaskPatch is a partial task update; nil means unchanged
type TaskPatch struct {
	LevelID     *string `json:"levelId,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsCompleted *bool   `json:"isCompleted,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

// ApplyTo merges the patch onto a copy of the task
func (p TaskPatch) ApplyTo(t Task) Task {
	if p.LevelID != nil {
		t.LevelID = *p.LevelID
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
	return t
}

// AffectsProgress reports whether applying the patch can change level progress
func (p TaskPatch) AffectsProgress() bool {
	return p.IsCompleted != nil || p.LevelID != nil
}
