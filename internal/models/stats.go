package models

import (
	"time"
)

// UserStats is the per-user singleton holding streak and rollup counters
type UserStats struct {
	ID                  string     `json:"id"`
	StreakDays          int        `json:"streakDays"`
	LastActivityDate    *time.Time `json:"lastActivityDate"`
	TotalTasksCompleted int        `json:"totalTasksCompleted"`
	OverallProgress     int        `json:"overallProgress"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// StatsPatch is a partial stats update; nil means unchanged
type StatsPatch struct {
	StreakDays          *int       `json:"streakDays,omitempty"`
	LastActivityDate    *time.Time `json:"lastActivityDate,omitempty"`
	TotalTasksCompleted *int       `json:"totalTasksCompleted,omitempty"`
	OverallProgress     *int       `json:"overallProgress,omitempty"`
}

// ApplyTo merges the patch onto a copy of the stats
func (p StatsPatch) ApplyTo(s UserStats) UserStats {
	if p.StreakDays != nil {
		s.StreakDays = *p.StreakDays
	}
	if p.LastActivityDate != nil {
		t := *p.LastActivityDate
		s.LastActivityDate = &t
	}
	if p.TotalTasksCompleted != nil {
		s.TotalTasksCompleted = *p.TotalTasksCompleted
	}
	if p.OverallProgress != nil {
		s.OverallProgress = *p.OverallProgress
	}
	return s
}
