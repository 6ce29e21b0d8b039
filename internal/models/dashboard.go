package models

import (
	"time"
)

// Dashboard is the rolled-up view shown on the tracker home page
type Dashboard struct {
	OverallProgress     int        `json:"overallProgress"`
	TotalTasks          int        `json:"totalTasks"`
	TotalTasksCompleted int        `json:"totalTasksCompleted"`
	CompletedLevels     int        `json:"completedLevels"`
	TotalLevels         int        `json:"totalLevels"`
	CurrentLevel        *Level     `json:"currentLevel"`
	StreakDays          int        `json:"streakDays"`
	LastActivityDate    *time.Time `json:"lastActivityDate"`
	WeeklyGoals         GoalCount  `json:"weeklyGoals"`
	UpcomingSchedules   []Schedule `json:"upcomingSchedules"`
}

// GoalCount counts completed goals against all goals in a window
type GoalCount struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// CalendarDay is one cell of the month grid with the schedules due that day
type CalendarDay struct {
	Date           time.Time  `json:"date"`
	IsCurrentMonth bool       `json:"isCurrentMonth"`
	Schedules      []Schedule `json:"schedules"`
}

// CalendarMonth is the 6x7 month view
type CalendarMonth struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"`
}
