package storage

import (
	"context"
	"time"

	"github.com/terra-clan/progress-tracker/internal/models"
)

// Repository defines the interface for tracker persistence.
// Lookups and updates of an absent id return (nil, nil); deletes report
// whether anything was removed.
type Repository interface {
	// Levels
	ListLevels(ctx context.Context) ([]models.Level, error)
	GetLevel(ctx context.Context, id string) (*models.Level, error)
	GetLevelByNumber(ctx context.Context, number int) (*models.Level, error)
	CreateLevel(ctx context.Context, l *models.Level) error
	UpdateLevel(ctx context.Context, id string, patch models.LevelPatch) (*models.Level, error)
	SetLevelProgress(ctx context.Context, id string, progress int, completed bool) (*models.Level, error)
	DeleteLevel(ctx context.Context, id string) (bool, error)

	// Tasks
	ListTasks(ctx context.Context) ([]models.Task, error)
	ListTasksByLevel(ctx context.Context, levelID string) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) (bool, error)

	// Schedules
	ListSchedules(ctx context.Context) ([]models.Schedule, error)
	ListSchedulesInRange(ctx context.Context, start, end time.Time) ([]models.Schedule, error)
	GetSchedule(ctx context.Context, id string) (*models.Schedule, error)
	CreateSchedule(ctx context.Context, s *models.Schedule) error
	UpdateSchedule(ctx context.Context, id string, patch models.SchedulePatch) (*models.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) (bool, error)

	// Learning notes
	ListNotes(ctx context.Context) ([]models.LearningNote, error)
	GetNote(ctx context.Context, id string) (*models.LearningNote, error)
	CreateNote(ctx context.Context, n *models.LearningNote) error
	UpdateNote(ctx context.Context, id string, patch models.NotePatch) (*models.LearningNote, error)
	DeleteNote(ctx context.Context, id string) (bool, error)

	// User stats singleton
	GetStats(ctx context.Context) (*models.UserStats, error)
	UpdateStats(ctx context.Context, patch models.StatsPatch) (*models.UserStats, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
