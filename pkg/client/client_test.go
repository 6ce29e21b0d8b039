package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/progress-tracker/internal/api"
	"github.com/terra-clan/progress-tracker/internal/events"
	"github.com/terra-clan/progress-tracker/internal/health"
	"github.com/terra-clan/progress-tracker/internal/models"
	"github.com/terra-clan/progress-tracker/internal/storage"
	"github.com/terra-clan/progress-tracker/internal/tracker"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	repo := storage.NewMemoryRepository()
	hub := events.NewHub(8)
	tr := tracker.New(repo, tracker.WithHooks(
		tracker.NewLevelProgressHook(repo, hub),
		tracker.NewStatsHook(repo, hub, time.UTC),
	))
	checks := health.NewRegistry(time.Second)
	checks.Register(health.PingChecker("storage", repo))

	ts := httptest.NewServer(api.NewServer(tr, checks, hub).Router())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/", WithTimeout(5*time.Second))
}

func TestClientRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	stats, err := c.GetStats(ctx)
	require.NoError(t, err)
	assert.Nil(t, stats)

	level, err := c.CreateLevel(ctx, models.CreateLevelRequest{LevelNumber: 1, Title: "Basics", Color: models.ColorSuccess})
	require.NoError(t, err)

	a, err := c.CreateTask(ctx, models.CreateTaskRequest{LevelID: level.ID, Title: "a"})
	require.NoError(t, err)
	_, err = c.CreateTask(ctx, models.CreateTaskRequest{LevelID: level.ID, Title: "b", Order: 1})
	require.NoError(t, err)

	_, err = c.CompleteTask(ctx, a.ID, true)
	require.NoError(t, err)

	got, err := c.GetLevel(ctx, level.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Progress)

	tasks, err := c.ListTasks(ctx, level.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	stats, err = c.GetStats(ctx)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.TotalTasksCompleted)

	d, err := c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, d.OverallProgress)
}

func TestClientSchedulesAndNotes(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	for _, d := range []string{"2026-10-05", "2026-10-20"} {
		_, err := c.CreateSchedule(ctx, models.CreateScheduleRequest{Title: d, TargetDate: d, Type: models.ScheduleWeekly})
		require.NoError(t, err)
	}

	from := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)
	list, err := c.ListSchedules(ctx, from, time.Time{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2026-10-20", list[0].Title)

	all, err := c.ListSchedules(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	note, err := c.CreateNote(ctx, models.CreateNoteRequest{Content: "interfaces are satisfied implicitly"})
	require.NoError(t, err)
	require.NoError(t, c.DeleteNote(ctx, note.ID))

	err = c.DeleteNote(ctx, note.ID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestClientDecodesErrors(t *testing.T) {
	c := newTestClient(t)

	_, err := c.CreateTask(context.Background(), models.CreateTaskRequest{Title: "orphan"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.False(t, IsNotFound(err))
}
