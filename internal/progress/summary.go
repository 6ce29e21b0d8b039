package progress

import (
	"sort"
	"time"

	"github.com/terra-clan/progress-tracker/internal/models"
)

// Summary rolls level and task state up into dashboard totals
type Summary struct {
	OverallProgress int
	TotalTasks      int
	CompletedTasks  int
	CompletedLevels int
	TotalLevels     int
	CurrentLevel    *models.Level
}

// Summarize computes overall progress weighted by task count and picks the
// level the learner is working on: the first started but unfinished level,
// otherwise the first unfinished one.
func Summarize(levels []models.Level, tasks []models.Task) Summary {
	overall := ForTasks(tasks)
	s := Summary{
		OverallProgress: overall.Percent,
		TotalTasks:      overall.Total,
		CompletedTasks:  overall.Completed,
		TotalLevels:     len(levels),
	}

	ordered := make([]models.Level, len(levels))
	copy(ordered, levels)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].LevelNumber < ordered[j].LevelNumber
	})

	var firstOpen *models.Level
	for i := range ordered {
		l := ordered[i]
		if l.IsCompleted {
			s.CompletedLevels++
			continue
		}
		if s.CurrentLevel == nil && l.Progress > 0 {
			s.CurrentLevel = &l
		}
		if firstOpen == nil {
			firstOpen = &l
		}
	}
	if s.CurrentLevel == nil {
		s.CurrentLevel = firstOpen
	}
	return s
}

// NextStreak returns the streak after activity at now.
// Activity on the same day keeps the streak (at least 1), activity on the
// following day extends it, anything else starts over at 1.
func NextStreak(current int, last *time.Time, now time.Time) int {
	if last == nil {
		return 1
	}
	switch daysBetween(*last, now) {
	case 0:
		if current < 1 {
			return 1
		}
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}

// StreakLapsed reports whether a day without activity has passed since last
func StreakLapsed(last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}
	return daysBetween(*last, now) > 1
}

// daysBetween counts calendar days from a to b in b's location
func daysBetween(a, b time.Time) int {
	a = a.In(b.Location())
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
