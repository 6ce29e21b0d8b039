package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/terra-clan/progress-tracker/internal/calendar"
	"github.com/terra-clan/progress-tracker/internal/models"
	"github.com/terra-clan/progress-tracker/internal/progress"
)

const upcomingLimit = 5

// Dashboard rolls levels, tasks, stats and this week's goals into one view
func (t *Tracker) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	levels, err := t.repo.ListLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}
	tasks, err := t.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	stats, err := t.repo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	summary := progress.Summarize(levels, tasks)
	d := &models.Dashboard{
		OverallProgress:     summary.OverallProgress,
		TotalTasks:          summary.TotalTasks,
		TotalTasksCompleted: summary.CompletedTasks,
		CompletedLevels:     summary.CompletedLevels,
		TotalLevels:         summary.TotalLevels,
		CurrentLevel:        summary.CurrentLevel,
		UpcomingSchedules:   []models.Schedule{},
	}
	if stats != nil {
		d.StreakDays = stats.StreakDays
		d.LastActivityDate = stats.LastActivityDate
	}

	now := t.now().In(t.loc)
	weekStart, weekEnd := calendar.WeekBounds(now)
	week, err := t.repo.ListSchedulesInRange(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list this week's schedules: %w", err)
	}
	for _, s := range week {
		if s.Type != models.ScheduleWeekly {
			continue
		}
		d.WeeklyGoals.Total++
		if s.IsCompleted {
			d.WeeklyGoals.Completed++
		}
	}

	ahead, err := t.repo.ListSchedulesInRange(ctx, calendar.StartOfDay(now), maxTime)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming schedules: %w", err)
	}
	for _, s := range ahead {
		if s.IsCompleted {
			continue
		}
		d.UpcomingSchedules = append(d.UpcomingSchedules, s)
		if len(d.UpcomingSchedules) == upcomingLimit {
			break
		}
	}

	return d, nil
}

// Calendar returns the 42-day grid for a month with each day's schedules
func (t *Tracker) Calendar(ctx context.Context, year int, month time.Month) (*models.CalendarMonth, error) {
	if month < time.January || month > time.December {
		return nil, invalid("month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return nil, invalid("year out of range")
	}

	grid := calendar.MonthGrid(year, month, t.loc)
	start, end := grid.Range()
	schedules, err := t.repo.ListSchedulesInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	out := &models.CalendarMonth{
		Year:  grid.Year,
		Month: int(grid.Month),
		Days:  make([]models.CalendarDay, len(grid.Days)),
	}
	for i, day := range grid.Days {
		out.Days[i] = models.CalendarDay{
			Date:           day.Date,
			IsCurrentMonth: day.IsCurrentMonth,
			Schedules:      []models.Schedule{},
		}
		for _, s := range schedules {
			if calendar.SameDay(s.TargetDate, day.Date, t.loc) {
				out.Days[i].Schedules = append(out.Days[i].Schedules, s)
			}
		}
	}
	return out, nil
}

// ExpireStreak resets the streak when a full day has passed without a
// completed task. It reports whether a reset happened.
func (t *Tracker) ExpireStreak(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats, err := t.repo.GetStats(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get user stats: %w", err)
	}
	if stats == nil || stats.StreakDays == 0 {
		return false, nil
	}
	if !progress.StreakLapsed(stats.LastActivityDate, t.now().In(t.loc)) {
		return false, nil
	}

	zero := 0
	if _, err := t.repo.UpdateStats(ctx, models.StatsPatch{StreakDays: &zero}); err != nil {
		return false, fmt.Errorf("failed to reset streak: %w", err)
	}
	return true, nil
}
