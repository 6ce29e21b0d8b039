package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/progress-tracker/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 10
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 1
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// queryer is satisfied by both the pool and a transaction
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// collect runs a query and scans every row with scan
func collect[T any](ctx context.Context, q queryer, scan func(pgx.Row) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// one runs a single-row query; a missing row yields (nil, nil)
func one[T any](ctx context.Context, q queryer, scan func(pgx.Row) (T, error), query string, args ...any) (*T, error) {
	v, err := scan(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// patchRow loads a row for update inside a transaction, lets apply modify it
// and writes it back with store. A missing row yields (nil, nil).
func patchRow[T any](
	ctx context.Context,
	r *PostgresRepository,
	load func(context.Context, queryer) (*T, error),
	apply func(T) T,
	store func(context.Context, pgx.Tx, T) error,
) (*T, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := load(ctx, tx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	updated := apply(*current)
	if err := store(ctx, tx, updated); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &updated, nil
}

func (r *PostgresRepository) deleteByID(ctx context.Context, table, id string) (bool, error) {
	result, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return result.RowsAffected() > 0, nil
}

func newIdentity(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}

// Levels

const levelColumns = `id, level_number, title, description, color, progress, is_completed, created_at`

func scanLevel(row pgx.Row) (models.Level, error) {
	var l models.Level
	var color string
	err := row.Scan(&l.ID, &l.LevelNumber, &l.Title, &l.Description, &color, &l.Progress, &l.IsCompleted, &l.CreatedAt)
	l.Color = models.LevelColor(color)
	return l, err
}

// ListLevels returns all levels ordered by level number
func (r *PostgresRepository) ListLevels(ctx context.Context) ([]models.Level, error) {
	levels, err := collect(ctx, r.pool, scanLevel, `SELECT `+levelColumns+` FROM levels ORDER BY level_number ASC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}
	return levels, nil
}

// GetLevel retrieves a level by ID
func (r *PostgresRepository) GetLevel(ctx context.Context, id string) (*models.Level, error) {
	l, err := one(ctx, r.pool, scanLevel, `SELECT `+levelColumns+` FROM levels WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get level: %w", err)
	}
	return l, nil
}

// GetLevelByNumber retrieves a level by its roadmap position
func (r *PostgresRepository) GetLevelByNumber(ctx context.Context, number int) (*models.Level, error) {
	l, err := one(ctx, r.pool, scanLevel, `SELECT `+levelColumns+` FROM levels WHERE level_number = $1`, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get level by number: %w", err)
	}
	return l, nil
}

// CreateLevel inserts a new level
func (r *PostgresRepository) CreateLevel(ctx context.Context, l *models.Level) error {
	newIdentity(&l.ID, &l.CreatedAt)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO levels (id, level_number, title, description, color, progress, is_completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, l.ID, l.LevelNumber, l.Title, l.Description, string(l.Color), l.Progress, l.IsCompleted, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create level: %w", err)
	}
	return nil
}

func loadLevelForUpdate(id string) func(context.Context, queryer) (*models.Level, error) {
	return func(ctx context.Context, q queryer) (*models.Level, error) {
		return one(ctx, q, scanLevel, `SELECT `+levelColumns+` FROM levels WHERE id = $1 FOR UPDATE`, id)
	}
}

func storeLevel(ctx context.Context, tx pgx.Tx, l models.Level) error {
	_, err := tx.Exec(ctx, `
		UPDATE levels
		SET level_number = $2, title = $3, description = $4, color = $5, progress = $6, is_completed = $7
		WHERE id = $1
	`, l.ID, l.LevelNumber, l.Title, l.Description, string(l.Color), l.Progress, l.IsCompleted)
	return err
}

// UpdateLevel merges a patch onto a level
func (r *PostgresRepository) UpdateLevel(ctx context.Context, id string, patch models.LevelPatch) (*models.Level, error) {
	l, err := patchRow(ctx, r, loadLevelForUpdate(id), patch.ApplyTo, storeLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to update level: %w", err)
	}
	return l, nil
}

// SetLevelProgress replaces the derived progress fields of a level
func (r *PostgresRepository) SetLevelProgress(ctx context.Context, id string, progress int, completed bool) (*models.Level, error) {
	l, err := one(ctx, r.pool, scanLevel, `
		UPDATE levels SET progress = $2, is_completed = $3
		WHERE id = $1
		RETURNING `+levelColumns, id, progress, completed)
	if err != nil {
		return nil, fmt.Errorf("failed to set level progress: %w", err)
	}
	return l, nil
}

// DeleteLevel deletes a level by ID. Its tasks are left in place.
func (r *PostgresRepository) DeleteLevel(ctx context.Context, id string) (bool, error) {
	return r.deleteByID(ctx, "levels", id)
}

// Tasks

const taskColumns = `id, level_id, title, description, is_completed, "order", created_at`

func scanTask(row pgx.Row) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.LevelID, &t.Title, &t.Description, &t.IsCompleted, &t.Order, &t.CreatedAt)
	return t, err
}

// ListTasks returns all tasks ordered by their order field
func (r *PostgresRepository) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks, err := collect(ctx, r.pool, scanTask, `SELECT `+taskColumns+` FROM tasks ORDER BY "order" ASC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListTasksByLevel returns the tasks of one level ordered by their order field
func (r *PostgresRepository) ListTasksByLevel(ctx context.Context, levelID string) ([]models.Task, error) {
	tasks, err := collect(ctx, r.pool, scanTask,
		`SELECT `+taskColumns+` FROM tasks WHERE level_id = $1 ORDER BY "order" ASC, seq ASC`, levelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by level: %w", err)
	}
	return tasks, nil
}

// GetTask retrieves a task by ID
func (r *PostgresRepository) GetTask(ctx context.Context, id string) (*models.Task, error) {
	t, err := one(ctx, r.pool, scanTask, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// CreateTask inserts a new task
func (r *PostgresRepository) CreateTask(ctx context.Context, t *models.Task) error {
	newIdentity(&t.ID, &t.CreatedAt)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (id, level_id, title, description, is_completed, "order", created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.LevelID, t.Title, t.Description, t.IsCompleted, t.Order, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// UpdateTask merges a patch onto a task
func (r *PostgresRepository) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	load := func(ctx context.Context, q queryer) (*models.Task, error) {
		return one(ctx, q, scanTask, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
	}
	store := func(ctx context.Context, tx pgx.Tx, t models.Task) error {
		_, err := tx.Exec(ctx, `
			UPDATE tasks
			SET level_id = $2, title = $3, description = $4, is_completed = $5, "order" = $6
			WHERE id = $1
		`, t.ID, t.LevelID, t.Title, t.Description, t.IsCompleted, t.Order)
		return err
	}

	t, err := patchRow(ctx, r, load, patch.ApplyTo, store)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

// DeleteTask deletes a task by ID
func (r *PostgresRepository) DeleteTask(ctx context.Context, id string) (bool, error) {
	return r.deleteByID(ctx, "tasks", id)
}

// Schedules

const scheduleColumns = `id, title, description, target_date, level_id, task_id, type, is_completed, created_at`

func scanSchedule(row pgx.Row) (models.Schedule, error) {
	var s models.Schedule
	var kind string
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.TargetDate, &s.LevelID, &s.TaskID, &kind, &s.IsCompleted, &s.CreatedAt)
	s.Type = models.ScheduleType(kind)
	return s, err
}

// ListSchedules returns all schedules ordered by target date
func (r *PostgresRepository) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	schedules, err := collect(ctx, r.pool, scanSchedule,
		`SELECT `+scheduleColumns+` FROM schedules ORDER BY target_date ASC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

// ListSchedulesInRange returns schedules with start <= target_date <= end
func (r *PostgresRepository) ListSchedulesInRange(ctx context.Context, start, end time.Time) ([]models.Schedule, error) {
	schedules, err := collect(ctx, r.pool, scanSchedule, `
		SELECT `+scheduleColumns+` FROM schedules
		WHERE target_date >= $1 AND target_date <= $2
		ORDER BY target_date ASC, seq ASC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules in range: %w", err)
	}
	return schedules, nil
}

// GetSchedule retrieves a schedule by ID
func (r *PostgresRepository) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	s, err := one(ctx, r.pool, scanSchedule, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return s, nil
}

// CreateSchedule inserts a new schedule
func (r *PostgresRepository) CreateSchedule(ctx context.Context, s *models.Schedule) error {
	newIdentity(&s.ID, &s.CreatedAt)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO schedules (id, title, description, target_date, level_id, task_id, type, is_completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, s.ID, s.Title, s.Description, s.TargetDate, s.LevelID, s.TaskID, string(s.Type), s.IsCompleted, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// UpdateSchedule merges a patch onto a schedule
func (r *PostgresRepository) UpdateSchedule(ctx context.Context, id string, patch models.SchedulePatch) (*models.Schedule, error) {
	load := func(ctx context.Context, q queryer) (*models.Schedule, error) {
		return one(ctx, q, scanSchedule, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1 FOR UPDATE`, id)
	}
	store := func(ctx context.Context, tx pgx.Tx, s models.Schedule) error {
		_, err := tx.Exec(ctx, `
			UPDATE schedules
			SET title = $2, description = $3, target_date = $4, level_id = $5, task_id = $6, type = $7, is_completed = $8
			WHERE id = $1
		`, s.ID, s.Title, s.Description, s.TargetDate, s.LevelID, s.TaskID, string(s.Type), s.IsCompleted)
		return err
	}

	s, err := patchRow(ctx, r, load, patch.ApplyTo, store)
	if err != nil {
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}
	return s, nil
}

// DeleteSchedule deletes a schedule by ID
func (r *PostgresRepository) DeleteSchedule(ctx context.Context, id string) (bool, error) {
	return r.deleteByID(ctx, "schedules", id)
}

// Learning notes

const noteColumns = `id, title, content, level_id, task_id, created_at`

func scanNote(row pgx.Row) (models.LearningNote, error) {
	var n models.LearningNote
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.LevelID, &n.TaskID, &n.CreatedAt)
	return n, err
}

// ListNotes returns all notes, newest first
func (r *PostgresRepository) ListNotes(ctx context.Context) ([]models.LearningNote, error) {
	notes, err := collect(ctx, r.pool, scanNote,
		`SELECT `+noteColumns+` FROM learning_notes ORDER BY created_at DESC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list learning notes: %w", err)
	}
	return notes, nil
}

// GetNote retrieves a note by ID
func (r *PostgresRepository) GetNote(ctx context.Context, id string) (*models.LearningNote, error) {
	n, err := one(ctx, r.pool, scanNote, `SELECT `+noteColumns+` FROM learning_notes WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get learning note: %w", err)
	}
	return n, nil
}

// CreateNote inserts a new note
func (r *PostgresRepository) CreateNote(ctx context.Context, n *models.LearningNote) error {
	newIdentity(&n.ID, &n.CreatedAt)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO learning_notes (id, title, content, level_id, task_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.ID, n.Title, n.Content, n.LevelID, n.TaskID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create learning note: %w", err)
	}
	return nil
}

// UpdateNote merges a patch onto a note
func (r *PostgresRepository) UpdateNote(ctx context.Context, id string, patch models.NotePatch) (*models.LearningNote, error) {
	load := func(ctx context.Context, q queryer) (*models.LearningNote, error) {
		return one(ctx, q, scanNote, `SELECT `+noteColumns+` FROM learning_notes WHERE id = $1 FOR UPDATE`, id)
	}
	store := func(ctx context.Context, tx pgx.Tx, n models.LearningNote) error {
		_, err := tx.Exec(ctx, `
			UPDATE learning_notes SET title = $2, content = $3, level_id = $4, task_id = $5
			WHERE id = $1
		`, n.ID, n.Title, n.Content, n.LevelID, n.TaskID)
		return err
	}

	n, err := patchRow(ctx, r, load, patch.ApplyTo, store)
	if err != nil {
		return nil, fmt.Errorf("failed to update learning note: %w", err)
	}
	return n, nil
}

// DeleteNote deletes a note by ID
func (r *PostgresRepository) DeleteNote(ctx context.Context, id string) (bool, error) {
	return r.deleteByID(ctx, "learning_notes", id)
}

// User stats

const statsColumns = `id, streak_days, last_activity_date, total_tasks_completed, overall_progress, updated_at`

func scanStats(row pgx.Row) (models.UserStats, error) {
	var s models.UserStats
	err := row.Scan(&s.ID, &s.StreakDays, &s.LastActivityDate, &s.TotalTasksCompleted, &s.OverallProgress, &s.UpdatedAt)
	return s, err
}

// GetStats returns the stats singleton, or nil if it was never written
func (r *PostgresRepository) GetStats(ctx context.Context) (*models.UserStats, error) {
	s, err := one(ctx, r.pool, scanStats, `SELECT `+statsColumns+` FROM user_stats LIMIT 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return s, nil
}

// UpdateStats merges a patch onto the stats singleton, creating it with
// zeroed counters first if needed. updated_at is always refreshed.
func (r *PostgresRepository) UpdateStats(ctx context.Context, patch models.StatsPatch) (*models.UserStats, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO user_stats (id, updated_at) VALUES ($1, NOW())
		ON CONFLICT (singleton) DO NOTHING
	`, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialise user stats: %w", err)
	}

	current, err := one(ctx, tx, scanStats, `SELECT `+statsColumns+` FROM user_stats LIMIT 1 FOR UPDATE`)
	if err != nil {
		return nil, fmt.Errorf("failed to load user stats: %w", err)
	}
	if current == nil {
		return nil, fmt.Errorf("user stats row missing after initialisation")
	}

	updated := patch.ApplyTo(*current)
	updated.UpdatedAt = time.Now().UTC()

	_, err = tx.Exec(ctx, `
		UPDATE user_stats
		SET streak_days = $2, last_activity_date = $3, total_tasks_completed = $4, overall_progress = $5, updated_at = $6
		WHERE id = $1
	`, updated.ID, updated.StreakDays, updated.LastActivityDate, updated.TotalTasksCompleted, updated.OverallProgress, updated.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update user stats: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit user stats: %w", err)
	}
	return &updated, nil
}
