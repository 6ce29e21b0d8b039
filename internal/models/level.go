package models

import (
	"time"
)

// LevelColor is the presentation tag of a level
type LevelColor string

const (
	ColorSuccess   LevelColor = "success"
	ColorSecondary LevelColor = "secondary"
	ColorPrimary   LevelColor = "primary"
	ColorAccent    LevelColor = "accent"
	ColorWarning   LevelColor = "warning"
	ColorDanger    LevelColor = "danger"
	ColorPurple    LevelColor = "purple"
)

// IsValid reports whether the color is one of the known tags
func (c LevelColor) IsValid() bool {
	switch c {
	case ColorSuccess, ColorSecondary, ColorPrimary, ColorAccent, ColorWarning, ColorDanger, ColorPurple:
		return true
	}
	return false
}

// Level is one step of the learning roadmap.
// Progress and IsCompleted are derived from the level's tasks.
type Level struct {
	ID          string     `json:"id"`
	LevelNumber int        `json:"levelNumber"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Color       LevelColor `json:"color"`
	Progress    int        `json:"progress"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// CreateLevelRequest represents a request to create a level
type CreateLevelRequest struct {
	LevelNumber int        `json:"levelNumber"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Color       LevelColor `json:"color"`
}

// LevelPatch holds the client-editable level fields; nil means unchanged
type LevelPatch struct {
	LevelNumber *int        `json:"levelNumber,omitempty"`
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Color       *LevelColor `json:"color,omitempty"`
}

// ApplyTo merges the patch onto a copy of the level
func (p LevelPatch) ApplyTo(l Level) Level {
	if p.LevelNumber != nil {
		l.LevelNumber = *p.LevelNumber
	}
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
	return l
}
