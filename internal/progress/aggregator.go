// Package progress derives level progress, completion and the overall
// summary from task state. Everything here is pure.
package progress

import (
	"github.com/terra-clan/progress-tracker/internal/models"
)

// LevelProgress is the aggregated completion state of one level
type LevelProgress struct {
	Completed   int
	Total       int
	Percent     int
	IsCompleted bool
}

// Percent returns round(100*completed/total), rounding halves up.
// A non-positive total yields 0.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	if completed < 0 {
		completed = 0
	}
	if completed > total {
		completed = total
	}
	return (200*completed + total) / (2 * total)
}

// ForTasks aggregates the given tasks, which are assumed to share a level
func ForTasks(tasks []models.Task) LevelProgress {
	completed := 0
	for _, t := range tasks {
		if t.IsCompleted {
			completed++
		}
	}
	pct := Percent(completed, len(tasks))
	return LevelProgress{
		Completed:   completed,
		Total:       len(tasks),
		Percent:     pct,
		IsCompleted: pct == 100,
	}
}

// Apply returns a copy of level with Progress and IsCompleted recomputed
// from tasks. All other fields are left as they are.
func Apply(level models.Level, tasks []models.Task) models.Level {
	lp := ForTasks(tasks)
	level.Progress = lp.Percent
	level.IsCompleted = lp.IsCompleted
	return level
}
