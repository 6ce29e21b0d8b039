package models

import (
	"time"
)

// ScheduleType classifies a scheduled goal
type ScheduleType string

const (
	ScheduleWeekly  ScheduleType = "weekly"
	ScheduleMonthly ScheduleType = "monthly"
	ScheduleCustom  ScheduleType = "custom"
)

// IsValid reports whether the schedule type is known
func (t ScheduleType) IsValid() bool {
	return t == ScheduleWeekly || t == ScheduleMonthly || t == ScheduleCustom
}

// Schedule is a goal placed on the calendar.
// LevelID and TaskID are associations only; the schedule outlives them.
type Schedule struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	TargetDate  time.Time    `json:"targetDate"`
	LevelID     *string      `json:"levelId"`
	TaskID      *string      `json:"taskId"`
	Type        ScheduleType `json:"type"`
	IsCompleted bool         `json:"isCompleted"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// CreateScheduleRequest represents a request to create a schedule.
// TargetDate is an ISO-8601 date or date-time string.
type CreateScheduleRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	TargetDate  string       `json:"targetDate"`
	LevelID     *string      `json:"levelId,omitempty"`
	TaskID      *string      `json:"taskId,omitempty"`
	Type        ScheduleType `json:"type"`
	IsCompleted bool         `json:"isCompleted"`
}

// UpdateScheduleRequest is the wire form of a partial schedule update
type UpdateScheduleRequest struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	TargetDate  *string       `json:"targetDate,omitempty"`
	LevelID     *string       `json:"levelId,omitempty"`
	TaskID      *string       `json:"taskId,omitempty"`
	Type        *ScheduleType `json:"type,omitempty"`
	IsCompleted *bool         `json:"isCompleted,omitempty"`
}

// SchedulePatch is a parsed partial schedule update; nil means unchanged.
// An empty LevelID or TaskID clears the association.
type SchedulePatch struct {
	Title       *string
	Description *string
	TargetDate  *time.Time
	LevelID     *string
	TaskID      *string
	Type        *ScheduleType
	IsCompleted *bool
}

// ApplyTo merges the patch onto a copy of the schedule
func (p SchedulePatch) ApplyTo(s Schedule) Schedule {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.TargetDate != nil {
		s.TargetDate = *p.TargetDate
	}
	if p.LevelID != nil {
		s.LevelID = optionalRef(*p.LevelID)
	}
	if p.TaskID != nil {
		s.TaskID = optionalRef(*p.TaskID)
	}
	if p.Type != nil {
		s.Type = *p.Type
	}
	if p.IsCompleted != nil {
		s.IsCompleted = *p.IsCompleted
	}
	return s
}

func optionalRef(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
