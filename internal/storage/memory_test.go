package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/progress-tracker/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestMemoryLevelsOrderedByNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	for _, n := range []int{3, 1, 2} {
		require.NoError(t, repo.CreateLevel(ctx, &models.Level{LevelNumber: n, Title: "L", Color: models.ColorPrimary}))
	}

	levels, err := repo.ListLevels(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 3)
	for i, l := range levels {
		assert.Equal(t, i+1, l.LevelNumber)
		assert.NotEmpty(t, l.ID)
		assert.False(t, l.CreatedAt.IsZero())
	}

	byNumber, err := repo.GetLevelByNumber(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, byNumber)
	assert.Equal(t, 2, byNumber.LevelNumber)

	missing, err := repo.GetLevelByNumber(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryCreateAssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		task := &models.Task{LevelID: "lvl", Title: "t", Order: i}
		require.NoError(t, repo.CreateTask(ctx, task))
		require.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true

		stored, err := repo.GetTask(ctx, task.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, *task, *stored)
	}
}

func TestMemoryTasksByLevelStableOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	first := &models.Task{LevelID: "a", Title: "first", Order: 1}
	second := &models.Task{LevelID: "a", Title: "second", Order: 1}
	zero := &models.Task{LevelID: "a", Title: "zero", Order: 0}
	other := &models.Task{LevelID: "b", Title: "other", Order: 0}
	for _, task := range []*models.Task{first, second, zero, other} {
		require.NoError(t, repo.CreateTask(ctx, task))
	}

	tasks, err := repo.ListTasksByLevel(ctx, "a")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"zero", "first", "second"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})
}

func TestMemoryUpdateMergesOnlySuppliedFields(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	task := &models.Task{LevelID: "lvl", Title: "Read docs", Description: "chapter 1", Order: 4}
	require.NoError(t, repo.CreateTask(ctx, task))

	updated, err := repo.UpdateTask(ctx, task.ID, models.TaskPatch{IsCompleted: ptr(true)})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, "Read docs", updated.Title)
	assert.Equal(t, "chapter 1", updated.Description)
	assert.Equal(t, 4, updated.Order)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)

	missing, err := repo.UpdateTask(ctx, "nope", models.TaskPatch{Title: ptr("x")})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryDeleteReportsFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	note := &models.LearningNote{Content: "goroutines are cheap"}
	require.NoError(t, repo.CreateNote(ctx, note))

	removed, err := repo.DeleteNote(ctx, note.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteNote(ctx, note.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	for _, del := range []func(context.Context, string) (bool, error){
		repo.DeleteTask, repo.DeleteSchedule, repo.DeleteLevel,
	} {
		removed, err := del(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, removed)
	}
}

func TestMemorySchedulesInRangeInclusive(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)

	mk := func(title string, at time.Time) {
		require.NoError(t, repo.CreateSchedule(ctx, &models.Schedule{Title: title, TargetDate: at, Type: models.ScheduleCustom}))
	}
	mk("late", end)
	mk("before", start.Add(-time.Nanosecond))
	mk("early", start)
	mk("after", end.Add(time.Nanosecond))
	mk("late-twin", end)

	got, err := repo.ListSchedulesInRange(ctx, start, end)
	require.NoError(t, err)

	titles := make([]string, len(got))
	for i, s := range got {
		titles[i] = s.Title
	}
	assert.Equal(t, []string{"early", "late", "late-twin"}, titles)

	all, err := repo.ListSchedules(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, "before", all[0].Title)
	assert.Equal(t, "after", all[4].Title)
}

func TestMemoryNotesNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	notesAt := map[string]time.Duration{"old": 0, "new": 2 * time.Hour, "middle": time.Hour}
	for _, content := range []string{"old", "new", "middle"} {
		require.NoError(t, repo.CreateNote(ctx, &models.LearningNote{Content: content, CreatedAt: base.Add(notesAt[content])}))
	}

	notes, err := repo.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, "new", notes[0].Content)
	assert.Equal(t, "middle", notes[1].Content)
	assert.Equal(t, "old", notes[2].Content)
}

func TestMemoryStatsLazyCreation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	fixed := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Nil(t, stats)

	stats, err = repo.UpdateStats(ctx, models.StatsPatch{StreakDays: ptr(3)})
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.NotEmpty(t, stats.ID)
	assert.Equal(t, 3, stats.StreakDays)
	assert.Equal(t, 0, stats.TotalTasksCompleted)
	assert.Equal(t, 0, stats.OverallProgress)
	assert.Equal(t, fixed, stats.UpdatedAt)

	later := fixed.Add(time.Minute)
	repo.now = func() time.Time { return later }
	again, err := repo.UpdateStats(ctx, models.StatsPatch{})
	require.NoError(t, err)
	assert.Equal(t, stats.ID, again.ID)
	assert.Equal(t, 3, again.StreakDays)
	assert.Equal(t, later, again.UpdatedAt)
}

func TestMemorySetLevelProgress(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	level := &models.Level{LevelNumber: 1, Title: "HTML", Color: models.ColorSuccess}
	require.NoError(t, repo.CreateLevel(ctx, level))

	updated, err := repo.SetLevelProgress(ctx, level.ID, 100, true)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 100, updated.Progress)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, "HTML", updated.Title)

	missing, err := repo.SetLevelProgress(ctx, "ghost", 50, false)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryConcurrentListAndUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	var ids []string
	for i := 0; i < 10; i++ {
		task := &models.Task{LevelID: "lvl", Title: "t", Order: i}
		require.NoError(t, repo.CreateTask(ctx, task))
		ids = append(ids, task.ID)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, err := repo.UpdateTask(ctx, ids[i%len(ids)], models.TaskPatch{
				Order: ptr(i),
				Title: ptr("renamed"),
			})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			tasks, err := repo.ListTasksByLevel(ctx, "lvl")
			assert.NoError(t, err)
			assert.Len(t, tasks, len(ids))
			for j := 1; j < len(tasks); j++ {
				assert.LessOrEqual(t, tasks[j-1].Order, tasks[j].Order)
			}
		}
	}()
	wg.Wait()

	tasks, err := repo.ListTasks(ctx)
	require.NoError(t, err)
	for _, task := range tasks {
		assert.Equal(t, "renamed", task.Title)
	}
}
