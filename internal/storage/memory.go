package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/progress-tracker/internal/models"
)

// entry pairs a stored value with its insertion sequence so listings can
// break ordering ties the way they were inserted.
type entry[T any] struct {
	seq   uint64
	value T
}

// collection is a mutex-guarded keyed map of one entity kind
type collection[T any] struct {
	mu      sync.RWMutex
	items   map[string]*entry[T]
	nextSeq uint64
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: make(map[string]*entry[T])}
}

func (c *collection[T]) get(id string) (*T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[id]
	if !ok {
		return nil, false
	}
	v := e.value
	return &v, true
}

func (c *collection[T]) put(id string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSeq++
	c.items[id] = &entry[T]{seq: c.nextSeq, value: v}
}

// update applies fn to the stored value under the write lock
func (c *collection[T]) update(id string, fn func(T) T) (*T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[id]
	if !ok {
		return nil, false
	}
	e.value = fn(e.value)
	v := e.value
	return &v, true
}

func (c *collection[T]) remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	return true
}

// list returns the values matching keep, sorted by less with insertion
// order as the tie breaker. Values are copied under the read lock; sorting
// works on the copies only.
func (c *collection[T]) list(keep func(T) bool, less func(a, b T) bool) []T {
	c.mu.RLock()
	entries := make([]entry[T], 0, len(c.items))
	for _, e := range c.items {
		if keep == nil || keep(e.value) {
			entries = append(entries, *e)
		}
	}
	c.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if less != nil {
			if less(a.value, b.value) {
				return true
			}
			if less(b.value, a.value) {
				return false
			}
		}
		return a.seq < b.seq
	})

	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out
}

// MemoryRepository implements Repository in process memory.
// Each entity kind has its own lock.
type MemoryRepository struct {
	levels    *collection[models.Level]
	tasks     *collection[models.Task]
	schedules *collection[models.Schedule]
	notes     *collection[models.LearningNote]

	statsMu sync.Mutex
	stats   *models.UserStats

	now func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		levels:    newCollection[models.Level](),
		tasks:     newCollection[models.Task](),
		schedules: newCollection[models.Schedule](),
		notes:     newCollection[models.LearningNote](),
		now:       time.Now,
	}
}

// Ping always succeeds for the memory backend
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op
func (r *MemoryRepository) Close() error {
	return nil
}

// stamp fills in a generated id and creation time when missing
func (r *MemoryRepository) stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = r.now().UTC()
	}
}

// Levels

func (r *MemoryRepository) ListLevels(ctx context.Context) ([]models.Level, error) {
	return r.levels.list(nil, func(a, b models.Level) bool {
		return a.LevelNumber < b.LevelNumber
	}), nil
}

func (r *MemoryRepository) GetLevel(ctx context.Context, id string) (*models.Level, error) {
	l, _ := r.levels.get(id)
	return l, nil
}

func (r *MemoryRepository) GetLevelByNumber(ctx context.Context, number int) (*models.Level, error) {
	found := r.levels.list(func(l models.Level) bool { return l.LevelNumber == number }, nil)
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *MemoryRepository) CreateLevel(ctx context.Context, l *models.Level) error {
	r.stamp(&l.ID, &l.CreatedAt)
	r.levels.put(l.ID, *l)
	return nil
}

func (r *MemoryRepository) UpdateLevel(ctx context.Context, id string, patch models.LevelPatch) (*models.Level, error) {
	l, _ := r.levels.update(id, patch.ApplyTo)
	return l, nil
}

func (r *MemoryRepository) SetLevelProgress(ctx context.Context, id string, progress int, completed bool) (*models.Level, error) {
	l, _ := r.levels.update(id, func(l models.Level) models.Level {
		l.Progress = progress
		l.IsCompleted = completed
		return l
	})
	return l, nil
}

func (r *MemoryRepository) DeleteLevel(ctx context.Context, id string) (bool, error) {
	return r.levels.remove(id), nil
}

// Tasks

func taskOrder(a, b models.Task) bool { return a.Order < b.Order }

func (r *MemoryRepository) ListTasks(ctx context.Context) ([]models.Task, error) {
	return r.tasks.list(nil, taskOrder), nil
}

func (r *MemoryRepository) ListTasksByLevel(ctx context.Context, levelID string) ([]models.Task, error) {
	return r.tasks.list(func(t models.Task) bool { return t.LevelID == levelID }, taskOrder), nil
}

func (r *MemoryRepository) GetTask(ctx context.Context, id string) (*models.Task, error) {
	t, _ := r.tasks.get(id)
	return t, nil
}

func (r *MemoryRepository) CreateTask(ctx context.Context, t *models.Task) error {
	r.stamp(&t.ID, &t.CreatedAt)
	r.tasks.put(t.ID, *t)
	return nil
}

func (r *MemoryRepository) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	t, _ := r.tasks.update(id, patch.ApplyTo)
	return t, nil
}

func (r *MemoryRepository) DeleteTask(ctx context.Context, id string) (bool, error) {
	return r.tasks.remove(id), nil
}

// Schedules

func scheduleOrder(a, b models.Schedule) bool { return a.TargetDate.Before(b.TargetDate) }

func (r *MemoryRepository) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	return r.schedules.list(nil, scheduleOrder), nil
}

func (r *MemoryRepository) ListSchedulesInRange(ctx context.Context, start, end time.Time) ([]models.Schedule, error) {
	return r.schedules.list(func(s models.Schedule) bool {
		return !s.TargetDate.Before(start) && !s.TargetDate.After(end)
	}, scheduleOrder), nil
}

func (r *MemoryRepository) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	s, _ := r.schedules.get(id)
	return s, nil
}

func (r *MemoryRepository) CreateSchedule(ctx context.Context, s *models.Schedule) error {
	r.stamp(&s.ID, &s.CreatedAt)
	r.schedules.put(s.ID, *s)
	return nil
}

func (r *MemoryRepository) UpdateSchedule(ctx context.Context, id string, patch models.SchedulePatch) (*models.Schedule, error) {
	s, _ := r.schedules.update(id, patch.ApplyTo)
	return s, nil
}

func (r *MemoryRepository) DeleteSchedule(ctx context.Context, id string) (bool, error) {
	return r.schedules.remove(id), nil
}

// Learning notes

func (r *MemoryRepository) ListNotes(ctx context.Context) ([]models.LearningNote, error) {
	notes := r.notes.list(nil, func(a, b models.LearningNote) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	return notes, nil
}

func (r *MemoryRepository) GetNote(ctx context.Context, id string) (*models.LearningNote, error) {
	n, _ := r.notes.get(id)
	return n, nil
}

func (r *MemoryRepository) CreateNote(ctx context.Context, n *models.LearningNote) error {
	r.stamp(&n.ID, &n.CreatedAt)
	r.notes.put(n.ID, *n)
	return nil
}

func (r *MemoryRepository) UpdateNote(ctx context.Context, id string, patch models.NotePatch) (*models.LearningNote, error) {
	n, _ := r.notes.update(id, patch.ApplyTo)
	return n, nil
}

func (r *MemoryRepository) DeleteNote(ctx context.Context, id string) (bool, error) {
	return r.notes.remove(id), nil
}

// User stats

func (r *MemoryRepository) GetStats(ctx context.Context) (*models.UserStats, error) {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	if r.stats == nil {
		return nil, nil
	}
	s := *r.stats
	return &s, nil
}

func (r *MemoryRepository) UpdateStats(ctx context.Context, patch models.StatsPatch) (*models.UserStats, error) {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()

	if r.stats == nil {
		r.stats = &models.UserStats{ID: uuid.NewString()}
	}
	updated := patch.ApplyTo(*r.stats)
	updated.UpdatedAt = r.now().UTC()
	r.stats = &updated

	s := updated
	return &s, nil
}
