package models

import (
	"time"
)

// LearningNote is a free-form note, optionally tied to a level or task
type LearningNote struct {
	ID        string    `json:"id"`
	Title     *string   `json:"title"`
	Content   string    `json:"content"`
	LevelID   *string   `json:"levelId"`
	TaskID    *string   `json:"taskId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateNoteRequest represents a request to create a learning note
type CreateNoteRequest struct {
	Title   *string `json:"title,omitempty"`
	Content string  `json:"content"`
	LevelID *string `json:"levelId,omitempty"`
	TaskID  *string `json:"taskId,omitempty"`
}

// NotePatch is a partial note update; nil means unchanged.
// An empty Title, LevelID or TaskID clears the field.
type NotePatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	LevelID *string `json:"levelId,omitempty"`
	TaskID  *string `json:"taskId,omitempty"`
}

// ApplyTo merges the patch onto a copy of the note
func (p NotePatch) ApplyTo(n LearningNote) LearningNote {
	if p.Title != nil {
		n.Title = optionalRef(*p.Title)
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.LevelID != nil {
		n.LevelID = optionalRef(*p.LevelID)
	}
	if p.TaskID != nil {
		n.TaskID = optionalRef(*p.TaskID)
	}
	return n
}
