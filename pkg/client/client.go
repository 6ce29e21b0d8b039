package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/terra-clan/progress-tracker/internal/models"
)

// Client is a Go SDK for the progress-tracker API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new progress-tracker client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the server
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Levels

// ListLevels retrieves all levels ordered by level number
func (c *Client) ListLevels(ctx context.Context) ([]models.Level, error) {
	var levels []models.Level
	err := c.do(ctx, http.MethodGet, "/api/levels", nil, &levels)
	return levels, err
}

// GetLevel retrieves one level
func (c *Client) GetLevel(ctx context.Context, id string) (*models.Level, error) {
	var level models.Level
	if err := c.do(ctx, http.MethodGet, "/api/levels/"+url.PathEscape(id), nil, &level); err != nil {
		return nil, err
	}
	return &level, nil
}

// CreateLevel adds a level
func (c *Client) CreateLevel(ctx context.Context, req models.CreateLevelRequest) (*models.Level, error) {
	var level models.Level
	if err := c.do(ctx, http.MethodPost, "/api/levels", req, &level); err != nil {
		return nil, err
	}
	return &level, nil
}

// Tasks

// ListTasks retrieves tasks, optionally only those of one level
func (c *Client) ListTasks(ctx context.Context, levelID string) ([]models.Task, error) {
	path := "/api/tasks"
	if levelID != "" {
		path += "?levelId=" + url.QueryEscape(levelID)
	}
	var tasks []models.Task
	err := c.do(ctx, http.MethodGet, path, nil, &tasks)
	return tasks, err
}

// CreateTask adds a task to a level
func (c *Client) CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update to a task
func (c *Client) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CompleteTask marks a task done or not done
func (c *Client) CompleteTask(ctx context.Context, id string, done bool) (*models.Task, error) {
	return c.UpdateTask(ctx, id, models.TaskPatch{IsCompleted: &done})
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

// Schedules

// ListSchedules retrieves schedules with targetDate in [start, end]; zero
// times leave that side open
func (c *Client) ListSchedules(ctx context.Context, start, end time.Time) ([]models.Schedule, error) {
	q := url.Values{}
	if !start.IsZero() {
		q.Set("startDate", start.Format(time.RFC3339Nano))
	}
	if !end.IsZero() {
		q.Set("endDate", end.Format(time.RFC3339Nano))
	}
	path := "/api/schedules"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var schedules []models.Schedule
	err := c.do(ctx, http.MethodGet, path, nil, &schedules)
	return schedules, err
}

// CreateSchedule adds a goal to the calendar
func (c *Client) CreateSchedule(ctx context.Context, req models.CreateScheduleRequest) (*models.Schedule, error) {
	var s models.Schedule
	if err := c.do(ctx, http.MethodPost, "/api/schedules", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSchedule applies a partial update to a schedule
func (c *Client) UpdateSchedule(ctx context.Context, id string, req models.UpdateScheduleRequest) (*models.Schedule, error) {
	var s models.Schedule
	if err := c.do(ctx, http.MethodPatch, "/api/schedules/"+url.PathEscape(id), req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSchedule removes a schedule
func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/schedules/"+url.PathEscape(id), nil, nil)
}

// Learning notes

// ListNotes retrieves all notes, newest first
func (c *Client) ListNotes(ctx context.Context) ([]models.LearningNote, error) {
	var notes []models.LearningNote
	err := c.do(ctx, http.MethodGet, "/api/learning-notes", nil, &notes)
	return notes, err
}

// CreateNote stores a note
func (c *Client) CreateNote(ctx context.Context, req models.CreateNoteRequest) (*models.LearningNote, error) {
	var n models.LearningNote
	if err := c.do(ctx, http.MethodPost, "/api/learning-notes", req, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// DeleteNote removes a note
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/learning-notes/"+url.PathEscape(id), nil, nil)
}

// Stats and views

// GetStats retrieves the user stats; nil when none exist yet
func (c *Client) GetStats(ctx context.Context) (*models.UserStats, error) {
	var stats *models.UserStats
	if err := c.do(ctx, http.MethodGet, "/api/user-stats", nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// UpdateStats applies a partial update to the user stats
func (c *Client) UpdateStats(ctx context.Context, patch models.StatsPatch) (*models.UserStats, error) {
	var stats models.UserStats
	if err := c.do(ctx, http.MethodPatch, "/api/user-stats", patch, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Dashboard retrieves the rolled-up progress view
func (c *Client) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var d models.Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// do performs an HTTP request and decodes a JSON answer into out when set
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(respBody, apiErr)
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
