package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/julianstephens/tweeklike/internal/constants"
	apperrors "github.com/julianstephens/tweeklike/internal/errors"
	"github.com/julianstephens/tweeklike/internal/models"
)

// Client talks to the task API over HTTP/JSON.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.client = hc }
}

// WithTimeout bounds every call. Zero disables the per-call deadline.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: constants.DefaultRemoteTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ API = (*Client)(nil)

func (c *Client) List(ctx context.Context, from, to models.Date) ([]models.Task, error) {
	path := "/api/tasks"
	if !from.IsSomeday() && !to.IsSomeday() {
		q := url.Values{}
		q.Set("date_from", string(from))
		q.Set("date_to", string(to))
		path += "?" + q.Encode()
	}

	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return models.MigrateTasks(tasks), nil
}

func (c *Client) Create(ctx context.Context, req CreateRequest) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", req, &task)
	return task, err
}

func (c *Client) Patch(ctx context.Context, id string, patch models.Patch) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPatch, taskPath(id), patch, &task)
	return task, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func (c *Client) DeleteAndFuture(ctx context.Context, id string) ([]string, error) {
	var resp DeleteFutureResponse
	if err := c.do(ctx, http.MethodDelete, taskPath(id)+"/future", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Removed, nil
}

func (c *Client) AddSubtask(ctx context.Context, taskID, title string) (models.Subtask, error) {
	var st models.Subtask
	err := c.do(ctx, http.MethodPost, taskPath(taskID)+"/subtasks", SubtaskCreate{Title: title}, &st)
	return st, err
}

func (c *Client) SetSubtaskCompleted(ctx context.Context, taskID, subtaskID string, completed bool) (models.Subtask, error) {
	var st models.Subtask
	err := c.do(ctx, http.MethodPatch, subtaskPath(taskID, subtaskID), SubtaskUpdate{Completed: completed}, &st)
	return st, err
}

func (c *Client) DeleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	return c.do(ctx, http.MethodDelete, subtaskPath(taskID, subtaskID), nil, nil)
}

func (c *Client) SetRecurrence(ctx context.Context, id string, rule models.Recurrence) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id)+"/recurrence", rule, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) ClearRecurrence(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id)+"/recurrence", nil, nil)
}

func (c *Client) Move(ctx context.Context, req MoveRequest) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks/move", req, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) Rollover(ctx context.Context) (int, error) {
	var resp RolloverResponse
	if err := c.do(ctx, http.MethodPost, "/api/tasks/rollover", nil, &resp); err != nil {
		return 0, err
	}
	return resp.RolledOver, nil
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

func subtaskPath(taskID, subtaskID string) string {
	return taskPath(taskID) + "/subtasks/" + url.PathEscape(subtaskID)
}

// do sends one request and decodes a 2xx body into out. Error statuses are
// mapped onto ErrNotFound and ErrValidation where they correspond.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

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

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusError(status int, body []byte) error {
	var apiErr ErrorResponse
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		msg = apiErr.Error
	}

	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, msg)
	default:
		return fmt.Errorf("API error (status %d): %s", status, msg)
	}
}
