package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/progress-tracker/internal/events"
	"github.com/terra-clan/progress-tracker/internal/health"
	"github.com/terra-clan/progress-tracker/internal/models"
	"github.com/terra-clan/progress-tracker/internal/storage"
	"github.com/terra-clan/progress-tracker/internal/tracker"
)

type testEnv struct {
	t      *testing.T
	server *Server
	checks *health.Registry
	hub    *events.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := storage.NewMemoryRepository()
	hub := events.NewHub(32)
	tr := tracker.New(repo, tracker.WithHooks(
		tracker.NewLevelProgressHook(repo, hub),
		tracker.NewStatsHook(repo, hub, time.UTC),
		tracker.NewEventHook(hub),
	))
	checks := health.NewRegistry(time.Second)
	checks.Register(health.PingChecker("storage", repo))

	return &testEnv{t: t, server: NewServer(tr, checks, hub), checks: checks, hub: hub}
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *testEnv) createLevel(number int) models.Level {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/levels", map[string]interface{}{
		"levelNumber": number, "title": "Level", "color": "primary",
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Level](e.t, rec)
}

func (e *testEnv) createTask(levelID, title string) models.Task {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/tasks", map[string]interface{}{"levelId": levelID, "title": title})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Task](e.t, rec)
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])

	rec = env.do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	env.checks.Register(health.PingChecker("redis", pingerFunc(func(context.Context) error {
		return errors.New("connection refused")
	})))
	rec = env.do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestTaskLifecycleUpdatesLevel(t *testing.T) {
	env := newTestEnv(t)
	level := env.createLevel(1)
	a := env.createTask(level.ID, "HTML")
	env.createTask(level.ID, "CSS")
	env.createTask(level.ID, "Responsive")

	assert.Equal(t, level.ID, a.LevelID)
	assert.False(t, a.IsCompleted)
	assert.NotEmpty(t, a.ID)

	rec := env.do(http.MethodPatch, "/api/tasks/"+a.ID, map[string]bool{"isCompleted": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Task](t, rec).IsCompleted)

	rec = env.do(http.MethodGet, "/api/levels/"+level.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Level](t, rec)
	assert.Equal(t, 33, got.Progress)
	assert.False(t, got.IsCompleted)

	rec = env.do(http.MethodGet, "/api/tasks?levelId="+level.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Task](t, rec), 3)

	rec = env.do(http.MethodDelete, "/api/tasks/"+a.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/levels/"+level.ID, nil)
	assert.Equal(t, 0, decode[models.Level](t, rec).Progress)

	rec = env.do(http.MethodDelete, "/api/tasks/"+a.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorResponses(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPatch, "/api/tasks/missing", map[string]bool{"isCompleted": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apiError{Error: "not_found", Message: "Task not found"}, decode[apiError](t, rec))

	rec = env.do(http.MethodPatch, "/api/tasks/missing", map[string]string{"title": ""})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/api/levels/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Level not found", decode[apiError](t, rec).Message)

	rec = env.do(http.MethodPost, "/api/tasks", `{"title": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid task data", decode[apiError](t, rec).Message)

	rec = env.do(http.MethodPost, "/api/tasks", map[string]string{"title": "no level"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decode[apiError](t, rec).Error)

	rec = env.do(http.MethodPatch, "/api/tasks/x", `{"isCompleted": "yes"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodDelete, "/api/learning-notes/missing", nil)
	assert.Equal(t, "Learning note not found", decode[apiError](t, rec).Message)

	rec = env.do(http.MethodDelete, "/api/schedules/missing", nil)
	assert.Equal(t, "Schedule not found", decode[apiError](t, rec).Message)
}

func TestLevelsListedByNumber(t *testing.T) {
	env := newTestEnv(t)
	env.createLevel(3)
	env.createLevel(1)
	two := env.createLevel(2)

	rec := env.do(http.MethodGet, "/api/levels", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	levels := decode[[]models.Level](t, rec)
	require.Len(t, levels, 3)
	for i, l := range levels {
		assert.Equal(t, i+1, l.LevelNumber)
	}

	rec = env.do(http.MethodPatch, "/api/levels/"+two.ID, map[string]string{"title": "Renamed", "color": "danger"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ColorDanger, decode[models.Level](t, rec).Color)

	rec = env.do(http.MethodPost, "/api/levels", map[string]interface{}{"levelNumber": 2, "title": "dup", "color": "primary"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodDelete, "/api/levels/"+two.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSchedulesFilteredByDate(t *testing.T) {
	env := newTestEnv(t)
	for _, d := range []string{"2026-10-31", "2026-10-01", "2026-11-02"} {
		rec := env.do(http.MethodPost, "/api/schedules", map[string]string{"title": d, "targetDate": d, "type": "custom"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := env.do(http.MethodGet, "/api/schedules?startDate=2026-10-01&endDate=2026-10-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]models.Schedule](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "2026-10-01", got[0].Title)
	assert.Equal(t, "2026-10-31", got[1].Title)

	rec = env.do(http.MethodGet, "/api/schedules?startDate=2026-10-02", nil)
	assert.Len(t, decode[[]models.Schedule](t, rec), 2)

	rec = env.do(http.MethodGet, "/api/schedules", nil)
	assert.Len(t, decode[[]models.Schedule](t, rec), 3)

	rec = env.do(http.MethodGet, "/api/schedules?endDate=tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/schedules", map[string]string{"title": "x", "targetDate": "31/10/2026", "type": "custom"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	id := got[0].ID
	rec = env.do(http.MethodPatch, "/api/schedules/"+id, map[string]interface{}{"isCompleted": true, "targetDate": "2026-10-03"})
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode[models.Schedule](t, rec)
	assert.True(t, s.IsCompleted)
	assert.Equal(t, 3, s.TargetDate.Day())
}

func TestLearningNotes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/learning-notes", map[string]string{"title": "Goroutines", "content": "share memory by communicating"})
	require.Equal(t, http.StatusCreated, rec.Code)
	note := decode[models.LearningNote](t, rec)
	require.NotNil(t, note.Title)
	assert.Nil(t, note.LevelID)

	rec = env.do(http.MethodPost, "/api/learning-notes", map[string]string{"title": "empty"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPatch, "/api/learning-notes/"+note.ID, map[string]string{"content": "edited"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "edited", decode[models.LearningNote](t, rec).Content)

	rec = env.do(http.MethodGet, "/api/learning-notes", nil)
	assert.Len(t, decode[[]models.LearningNote](t, rec), 1)

	rec = env.do(http.MethodGet, "/api/learning-notes/"+note.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodDelete, "/api/learning-notes/"+note.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUserStats(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/user-stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	rec = env.do(http.MethodPatch, "/api/user-stats", map[string]int{"streakDays": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.UserStats](t, rec)
	assert.Equal(t, 4, stats.StreakDays)
	assert.Equal(t, 0, stats.TotalTasksCompleted)

	rec = env.do(http.MethodPatch, "/api/user-stats", map[string]int{"overallProgress": 140})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/user-stats", nil)
	assert.Equal(t, 4, decode[models.UserStats](t, rec).StreakDays)
}

func TestDashboardAndCalendar(t *testing.T) {
	env := newTestEnv(t)
	level := env.createLevel(1)
	task := env.createTask(level.ID, "one")
	env.createTask(level.ID, "two")
	env.do(http.MethodPatch, "/api/tasks/"+task.ID, map[string]bool{"isCompleted": true})

	rec := env.do(http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[models.Dashboard](t, rec)
	assert.Equal(t, 50, d.OverallProgress)
	assert.Equal(t, 1, d.TotalTasksCompleted)
	require.NotNil(t, d.CurrentLevel)
	assert.Equal(t, level.ID, d.CurrentLevel.ID)
	assert.Equal(t, 1, d.StreakDays)

	rec = env.do(http.MethodGet, "/api/calendar?year=2026&month=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cal := decode[models.CalendarMonth](t, rec)
	assert.Len(t, cal.Days, 42)
	assert.Equal(t, time.Sunday, cal.Days[0].Date.Weekday())

	rec = env.do(http.MethodGet, "/api/calendar?year=2026&month=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/calendar?month=may", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventFeed(t *testing.T) {
	env := newTestEnv(t)
	level := env.createLevel(1)

	ts := httptest.NewServer(env.server.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	env.createTask(level.ID, "watch me")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	seen := map[string]bool{}
	for !seen[events.TaskCreated] {
		var evt events.Event
		require.NoError(t, conn.ReadJSON(&evt))
		seen[evt.Type] = true
	}
	assert.True(t, seen[events.TaskCreated])
}
