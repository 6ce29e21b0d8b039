package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/terra-clan/progress-tracker/internal/events"
	"github.com/terra-clan/progress-tracker/internal/models"
	"github.com/terra-clan/progress-tracker/internal/progress"
	"github.com/terra-clan/progress-tracker/internal/storage"
)

// ChangeKind describes what happened to a task
type ChangeKind string

const (
	TaskCreated ChangeKind = "created"
	TaskUpdated ChangeKind = "updated"
	TaskDeleted ChangeKind = "deleted"
)

// TaskChange is handed to hooks after a task mutation is committed.
// Before is nil for creations, After is nil for deletions.
type TaskChange struct {
	Kind   ChangeKind
	Before *models.Task
	After  *models.Task
	At     time.Time
}

// LevelIDs returns the distinct levels touched by the change
func (c TaskChange) LevelIDs() []string {
	var ids []string
	for _, t := range []*models.Task{c.Before, c.After} {
		if t == nil || t.LevelID == "" {
			continue
		}
		if len(ids) == 1 && ids[0] == t.LevelID {
			continue
		}
		ids = append(ids, t.LevelID)
	}
	return ids
}

// BecameCompleted reports whether the task went from open to completed
func (c TaskChange) BecameCompleted() bool {
	if c.After == nil || !c.After.IsCompleted {
		return false
	}
	return c.Before == nil || !c.Before.IsCompleted
}

// TaskHook reacts to committed task changes
type TaskHook interface {
	AfterTaskChange(ctx context.Context, change TaskChange) error
}

// TaskHookFunc adapts a function to TaskHook
type TaskHookFunc func(ctx context.Context, change TaskChange) error

// AfterTaskChange implements TaskHook
func (f TaskHookFunc) AfterTaskChange(ctx context.Context, change TaskChange) error {
	return f(ctx, change)
}

// LevelProgressHook recomputes progress for every level a change touches
type LevelProgressHook struct {
	repo      storage.Repository
	publisher events.Publisher
}

// NewLevelProgressHook creates the hook; publisher may be nil
func NewLevelProgressHook(repo storage.Repository, publisher events.Publisher) *LevelProgressHook {
	return &LevelProgressHook{repo: repo, publisher: publisher}
}

// AfterTaskChange implements TaskHook
func (h *LevelProgressHook) AfterTaskChange(ctx context.Context, change TaskChange) error {
	for _, levelID := range change.LevelIDs() {
		if _, err := h.Recompute(ctx, levelID); err != nil {
			return err
		}
	}
	return nil
}

// Recompute derives a level's progress from its current tasks and stores it.
// An unknown level is skipped and yields (nil, nil).
func (h *LevelProgressHook) Recompute(ctx context.Context, levelID string) (*models.Level, error) {
	level, err := h.repo.GetLevel(ctx, levelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load level %s: %w", levelID, err)
	}
	if level == nil {
		slog.Debug("skipping progress for unknown level", "level_id", levelID)
		return nil, nil
	}

	tasks, err := h.repo.ListTasksByLevel(ctx, levelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks of level %s: %w", levelID, err)
	}

	next := progress.Apply(*level, tasks)
	if next.Progress == level.Progress && next.IsCompleted == level.IsCompleted {
		return level, nil
	}

	updated, err := h.repo.SetLevelProgress(ctx, levelID, next.Progress, next.IsCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to store progress of level %s: %w", levelID, err)
	}
	if updated == nil {
		return nil, nil
	}

	slog.Info("level progress updated",
		"level_id", levelID,
		"level_number", updated.LevelNumber,
		"progress", updated.Progress,
		"completed", updated.IsCompleted,
	)
	publish(ctx, h.publisher, events.New(events.LevelProgress, updated))
	return updated, nil
}

// StatsHook keeps the UserStats rollup in step with task state
type StatsHook struct {
	repo      storage.Repository
	publisher events.Publisher
	loc       *time.Location
}

// NewStatsHook creates the hook. Streak days are counted in loc.
func NewStatsHook(repo storage.Repository, publisher events.Publisher, loc *time.Location) *StatsHook {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsHook{repo: repo, publisher: publisher, loc: loc}
}

// AfterTaskChange implements TaskHook
func (h *StatsHook) AfterTaskChange(ctx context.Context, change TaskChange) error {
	tasks, err := h.repo.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	overall := progress.ForTasks(tasks)

	patch := models.StatsPatch{
		TotalTasksCompleted: &overall.Completed,
		OverallProgress:     &overall.Percent,
	}

	if change.BecameCompleted() {
		current, err := h.repo.GetStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to load user stats: %w", err)
		}
		streak, last := 0, (*time.Time)(nil)
		if current != nil {
			streak, last = current.StreakDays, current.LastActivityDate
		}
		now := change.At.In(h.loc)
		next := progress.NextStreak(streak, last, now)
		patch.StreakDays = &next
		patch.LastActivityDate = &now
	}

	stats, err := h.repo.UpdateStats(ctx, patch)
	if err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}
	publish(ctx, h.publisher, events.New(events.StatsUpdated, stats))
	return nil
}

// EventHook publishes every task change
type EventHook struct {
	publisher events.Publisher
}

// NewEventHook creates the hook
func NewEventHook(publisher events.Publisher) *EventHook {
	return &EventHook{publisher: publisher}
}

// AfterTaskChange implements TaskHook
func (h *EventHook) AfterTaskChange(ctx context.Context, change TaskChange) error {
	var (
		eventType string
		task      *models.Task
	)
	switch change.Kind {
	case TaskCreated:
		eventType, task = events.TaskCreated, change.After
	case TaskDeleted:
		eventType, task = events.TaskDeleted, change.Before
	default:
		eventType, task = events.TaskUpdated, change.After
	}
	if h.publisher == nil {
		return nil
	}
	return h.publisher.Publish(ctx, events.New(eventType, task))
}

func publish(ctx context.Context, p events.Publisher, evt events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, evt); err != nil {
		slog.Warn("failed to publish event", "type", evt.Type, "error", err)
	}
}
