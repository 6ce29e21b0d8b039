// Package tracker implements the learning tracker's operations on top of a
// storage.Repository: validation, not-found reporting and the post-commit
// task hooks that keep level progress and user stats derived from tasks.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/terra-clan/progress-tracker/internal/models"
	"github.com/terra-clan/progress-tracker/internal/storage"
)

// Tracker serializes all writes through a single mutex so that a task
// mutation and the recomputations it triggers are never interleaved with
// another write.
type Tracker struct {
	repo  storage.Repository
	hooks []TaskHook
	loc   *time.Location
	now   func() time.Time

	mu sync.Mutex
}

// Option configures a Tracker
type Option func(*Tracker)

// WithHooks appends task hooks; they run in the given order
func WithHooks(hooks ...TaskHook) Option {
	return func(t *Tracker) {
		t.hooks = append(t.hooks, hooks...)
	}
}

// WithLocation sets the time zone used for day boundaries and date-only input
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New creates a Tracker
func New(repo storage.Repository, opts ...Option) *Tracker {
	t := &Tracker{
		repo: repo,
		loc:  time.UTC,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Location returns the tracker's time zone
func (t *Tracker) Location() *time.Location {
	return t.loc
}

// Ping checks the underlying repository
func (t *Tracker) Ping(ctx context.Context) error {
	return t.repo.Ping(ctx)
}

// runHooks hands a committed change to every hook. Failures are logged; the
// change itself already stands.
func (t *Tracker) runHooks(ctx context.Context, change TaskChange) {
	for _, h := range t.hooks {
		if err := h.AfterTaskChange(ctx, change); err != nil {
			slog.Error("task hook failed", "error", err, "kind", change.Kind)
		}
	}
}

// Levels

// ListLevels returns all levels ordered by level number
func (t *Tracker) ListLevels(ctx context.Context) ([]models.Level, error) {
	return t.repo.ListLevels(ctx)
}

// GetLevel returns one level
func (t *Tracker) GetLevel(ctx context.Context, id string) (*models.Level, error) {
	level, err := t.repo.GetLevel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get level: %w", err)
	}
	if level == nil {
		return nil, ErrLevelNotFound
	}
	return level, nil
}

// CreateLevel adds a level with no progress
func (t *Tracker) CreateLevel(ctx context.Context, req models.CreateLevelRequest) (*models.Level, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, invalid("title is required")
	}
	if req.LevelNumber < 1 {
		return nil, invalid("levelNumber must be a positive integer")
	}
	if !req.Color.IsValid() {
		return nil, invalid("unknown color %q", req.Color)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.ensureLevelNumberFree(ctx, req.LevelNumber, ""); err != nil {
		return nil, err
	}

	level := &models.Level{
		LevelNumber: req.LevelNumber,
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
	}
	if err := t.repo.CreateLevel(ctx, level); err != nil {
		return nil, fmt.Errorf("failed to create level: %w", err)
	}
	return level, nil
}

// UpdateLevel changes presentation fields of a level. Progress is never
// taken from the client.
func (t *Tracker) UpdateLevel(ctx context.Context, id string, patch models.LevelPatch) (*models.Level, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, err := t.repo.GetLevel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get level: %w", err)
	}
	if current == nil {
		return nil, ErrLevelNotFound
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, invalid("title must not be empty")
	}
	if patch.Color != nil && !patch.Color.IsValid() {
		return nil, invalid("unknown color %q", *patch.Color)
	}
	if patch.LevelNumber != nil && *patch.LevelNumber < 1 {
		return nil, invalid("levelNumber must be a positive integer")
	}
	if patch.LevelNumber != nil {
		if err := t.ensureLevelNumberFree(ctx, *patch.LevelNumber, id); err != nil {
			return nil, err
		}
	}

	level, err := t.repo.UpdateLevel(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update level: %w", err)
	}
	if level == nil {
		return nil, ErrLevelNotFound
	}
	return level, nil
}

// DeleteLevel removes a level. Its tasks, schedules and notes are kept.
func (t *Tracker) DeleteLevel(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed, err := t.repo.DeleteLevel(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete level: %w", err)
	}
	if !removed {
		return ErrLevelNotFound
	}
	return nil
}

func (t *Tracker) ensureLevelNumberFree(ctx context.Context, number int, selfID string) error {
	existing, err := t.repo.GetLevelByNumber(ctx, number)
	if err != nil {
		return fmt.Errorf("failed to look up level number: %w", err)
	}
	if existing != nil && existing.ID != selfID {
		return invalid("levelNumber %d is already used", number)
	}
	return nil
}

// Tasks

// ListTasks returns all tasks, or those of one level when levelID is set
func (t *Tracker) ListTasks(ctx context.Context, levelID string) ([]models.Task, error) {
	if levelID != "" {
		return t.repo.ListTasksByLevel(ctx, levelID)
	}
	return t.repo.ListTasks(ctx)
}

// GetTask returns one task
func (t *Tracker) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := t.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// CreateTask adds a task to an existing level
func (t *Tracker) CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	if strings.TrimSpace(req.LevelID) == "" {
		return nil, invalid("levelId is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, invalid("title is required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.ensureLevelExists(ctx, req.LevelID); err != nil {
		return nil, err
	}

	task := &models.Task{
		LevelID:     req.LevelID,
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		Order:       req.Order,
	}
	if err := t.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	created := *task
	t.runHooks(ctx, TaskChange{Kind: TaskCreated, After: &created, At: t.now()})
	return task, nil
}

// UpdateTask merges a patch onto a task. When the patch touches completion
// or ownership the hooks run after the task is stored.
func (t *Tracker) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	before, err := t.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if before == nil {
		return nil, ErrTaskNotFound
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, invalid("title must not be empty")
	}
	if patch.LevelID != nil && strings.TrimSpace(*patch.LevelID) == "" {
		return nil, invalid("levelId must not be empty")
	}

	if patch.LevelID != nil && *patch.LevelID != before.LevelID {
		if err := t.ensureLevelExists(ctx, *patch.LevelID); err != nil {
			return nil, err
		}
	}

	after, err := t.repo.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if after == nil {
		return nil, ErrTaskNotFound
	}

	if patch.AffectsProgress() {
		changed := *after
		t.runHooks(ctx, TaskChange{Kind: TaskUpdated, Before: before, After: &changed, At: t.now()})
	}
	return after, nil
}

// DeleteTask removes a task and recomputes its level
func (t *Tracker) DeleteTask(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	before, err := t.repo.GetTask(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	removed, err := t.repo.DeleteTask(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !removed {
		return ErrTaskNotFound
	}

	if before != nil {
		t.runHooks(ctx, TaskChange{Kind: TaskDeleted, Before: before, At: t.now()})
	}
	return nil
}

func (t *Tracker) ensureLevelExists(ctx context.Context, levelID string) error {
	level, err := t.repo.GetLevel(ctx, levelID)
	if err != nil {
		return fmt.Errorf("failed to get level: %w", err)
	}
	if level == nil {
		return invalid("level %s does not exist", levelID)
	}
	return nil
}

// Schedules

var (
	minTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxTime = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
)

// ListSchedules returns schedules ordered by target date. Either bound may
// be nil, leaving that side open; both bounds are inclusive.
func (t *Tracker) ListSchedules(ctx context.Context, start, end *time.Time) ([]models.Schedule, error) {
	if start == nil && end == nil {
		return t.repo.ListSchedules(ctx)
	}
	from, to := minTime, maxTime
	if start != nil {
		from = *start
	}
	if end != nil {
		to = *end
	}
	if to.Before(from) {
		return []models.Schedule{}, nil
	}
	return t.repo.ListSchedulesInRange(ctx, from, to)
}

// GetSchedule returns one schedule
func (t *Tracker) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	s, err := t.repo.GetSchedule(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	if s == nil {
		return nil, ErrScheduleNotFound
	}
	return s, nil
}

// CreateSchedule adds a goal to the calendar
func (t *Tracker) CreateSchedule(ctx context.Context, req models.CreateScheduleRequest) (*models.Schedule, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, invalid("title is required")
	}
	if !req.Type.IsValid() {
		return nil, invalid("type must be one of weekly, monthly, custom")
	}
	target, err := models.ParseDate(req.TargetDate, t.loc)
	if err != nil {
		return nil, invalid("targetDate: %v", err)
	}

	s := &models.Schedule{
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  target,
		LevelID:     nonEmpty(req.LevelID),
		TaskID:      nonEmpty(req.TaskID),
		Type:        req.Type,
		IsCompleted: req.IsCompleted,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.repo.CreateSchedule(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	return s, nil
}

// UpdateSchedule merges a partial update onto a schedule
func (t *Tracker) UpdateSchedule(ctx context.Context, id string, req models.UpdateScheduleRequest) (*models.Schedule, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.GetSchedule(ctx, id); err != nil {
		return nil, err
	}

	patch := models.SchedulePatch{
		Title:       req.Title,
		Description: req.Description,
		LevelID:     req.LevelID,
		TaskID:      req.TaskID,
		Type:        req.Type,
		IsCompleted: req.IsCompleted,
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, invalid("title must not be empty")
	}
	if req.Type != nil && !req.Type.IsValid() {
		return nil, invalid("type must be one of weekly, monthly, custom")
	}
	if req.TargetDate != nil {
		target, err := models.ParseDate(*req.TargetDate, t.loc)
		if err != nil {
			return nil, invalid("targetDate: %v", err)
		}
		patch.TargetDate = &target
	}

	s, err := t.repo.UpdateSchedule(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}
	if s == nil {
		return nil, ErrScheduleNotFound
	}
	return s, nil
}

// DeleteSchedule removes a schedule
func (t *Tracker) DeleteSchedule(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed, err := t.repo.DeleteSchedule(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if !removed {
		return ErrScheduleNotFound
	}
	return nil
}

// Learning notes

// ListNotes returns all notes, newest first
func (t *Tracker) ListNotes(ctx context.Context) ([]models.LearningNote, error) {
	return t.repo.ListNotes(ctx)
}

// GetNote returns one note
func (t *Tracker) GetNote(ctx context.Context, id string) (*models.LearningNote, error) {
	n, err := t.repo.GetNote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get learning note: %w", err)
	}
	if n == nil {
		return nil, ErrNoteNotFound
	}
	return n, nil
}

// CreateNote stores a new note
func (t *Tracker) CreateNote(ctx context.Context, req models.CreateNoteRequest) (*models.LearningNote, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, invalid("content is required")
	}

	n := &models.LearningNote{
		Title:   nonEmpty(req.Title),
		Content: req.Content,
		LevelID: nonEmpty(req.LevelID),
		TaskID:  nonEmpty(req.TaskID),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.repo.CreateNote(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create learning note: %w", err)
	}
	return n, nil
}

// UpdateNote merges a partial update onto a note
func (t *Tracker) UpdateNote(ctx context.Context, id string, patch models.NotePatch) (*models.LearningNote, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.GetNote(ctx, id); err != nil {
		return nil, err
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return nil, invalid("content must not be empty")
	}

	n, err := t.repo.UpdateNote(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update learning note: %w", err)
	}
	if n == nil {
		return nil, ErrNoteNotFound
	}
	return n, nil
}

// DeleteNote removes a note
func (t *Tracker) DeleteNote(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed, err := t.repo.DeleteNote(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete learning note: %w", err)
	}
	if !removed {
		return ErrNoteNotFound
	}
	return nil
}

// User stats

// GetStats returns the stats singleton, or nil if none exists yet
func (t *Tracker) GetStats(ctx context.Context) (*models.UserStats, error) {
	return t.repo.GetStats(ctx)
}

// UpdateStats merges a partial update onto the stats singleton, creating it
// when absent
func (t *Tracker) UpdateStats(ctx context.Context, patch models.StatsPatch) (*models.UserStats, error) {
	for name, v := range map[string]*int{
		"streakDays":          patch.StreakDays,
		"totalTasksCompleted": patch.TotalTasksCompleted,
	} {
		if v != nil && *v < 0 {
			return nil, invalid("%s must not be negative", name)
		}
	}
	if patch.OverallProgress != nil && (*patch.OverallProgress < 0 || *patch.OverallProgress > 100) {
		return nil, invalid("overallProgress must be between 0 and 100")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stats, err := t.repo.UpdateStats(ctx, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update user stats: %w", err)
	}
	return stats, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
