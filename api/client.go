package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// DefaultBaseURL is the public todolist service.
const DefaultBaseURL = "https://social-network.samuraijs.com/api/1.1/"

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 10 * time.Second

// APIKeyHeader carries the caller's API key.
const APIKeyHeader = "API-KEY"

// Backend is the request/response contract of the remote service.
type Backend interface {
	GetTodolists(ctx context.Context) ([]Todolist, error)
	CreateTodolist(ctx context.Context, title string) (Response[ItemData[Todolist]], error)
	DeleteTodolist(ctx context.Context, todolistID string) (Response[Empty], error)
	UpdateTodolist(ctx context.Context, todolistID, title string) (Response[Empty], error)
	GetTasks(ctx context.Context, todolistID string) (GetTasksResponse, error)
	CreateTask(ctx context.Context, todolistID, title string) (Response[ItemData[Task]], error)
	UpdateTask(ctx context.Context, todolistID, taskID string, model UpdateTaskModel) (Response[ItemData[Task]], error)
	DeleteTask(ctx context.Context, todolistID, taskID string) (Response[Empty], error)
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// BaseURL is the service root. Defaults to DefaultBaseURL.
	// A bare host:port or port is accepted and treated as http.
	BaseURL string

	// APIKey is sent in the API-KEY header when non-empty.
	APIKey string

	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client calls the remote todolist service over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ Backend = (*Client)(nil)

// NewClient creates a client for the configured service.
func NewClient(opts ClientOptions) *Client {
	baseURL := normalizeBaseURL(opts.BaseURL)

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: baseURL, apiKey: opts.APIKey, client: httpClient}
}

// normalizeBaseURL defaults an empty root to DefaultBaseURL, adds a
// missing scheme, and ends the root with exactly one slash.
func normalizeBaseURL(raw string) string {
	baseURL := strings.TrimSpace(raw)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return strings.TrimRight(baseURL, "/") + "/"
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetTodolists lists every todolist.
func (c *Client) GetTodolists(ctx context.Context) ([]Todolist, error) {
	var todolists []Todolist
	if err := c.do(ctx, http.MethodGet, "todo-lists", nil, &todolists); err != nil {
		return nil, err
	}
	if todolists == nil {
		todolists = []Todolist{}
	}
	return todolists, nil
}

// CreateTodolist creates a todolist; the server assigns its ID.
func (c *Client) CreateTodolist(ctx context.Context, title string) (Response[ItemData[Todolist]], error) {
	var response Response[ItemData[Todolist]]
	err := c.do(ctx, http.MethodPost, "todo-lists", titleRequest{Title: title}, &response)
	return response, err
}

// DeleteTodolist deletes a todolist and its tasks.
func (c *Client) DeleteTodolist(ctx context.Context, todolistID string) (Response[Empty], error) {
	var response Response[Empty]
	err := c.do(ctx, http.MethodDelete, todolistPath(todolistID), nil, &response)
	return response, err
}

// UpdateTodolist renames a todolist.
func (c *Client) UpdateTodolist(ctx context.Context, todolistID, title string) (Response[Empty], error) {
	var response Response[Empty]
	err := c.do(ctx, http.MethodPut, todolistPath(todolistID), titleRequest{Title: title}, &response)
	return response, err
}

// GetTasks lists the tasks of a todolist.
func (c *Client) GetTasks(ctx context.Context, todolistID string) (GetTasksResponse, error) {
	var response GetTasksResponse
	if err := c.do(ctx, http.MethodGet, tasksPath(todolistID), nil, &response); err != nil {
		return GetTasksResponse{}, err
	}
	if response.Items == nil {
		response.Items = []Task{}
	}
	return response, nil
}

// CreateTask creates a task in a todolist; the server assigns its ID.
func (c *Client) CreateTask(ctx context.Context, todolistID, title string) (Response[ItemData[Task]], error) {
	var response Response[ItemData[Task]]
	err := c.do(ctx, http.MethodPost, tasksPath(todolistID), titleRequest{Title: title}, &response)
	return response, err
}

// UpdateTask replaces every mutable field of a task.
func (c *Client) UpdateTask(ctx context.Context, todolistID, taskID string, model UpdateTaskModel) (Response[ItemData[Task]], error) {
	var response Response[ItemData[Task]]
	err := c.do(ctx, http.MethodPut, taskPath(todolistID, taskID), model, &response)
	return response, err
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, todolistID, taskID string) (Response[Empty], error) {
	var response Response[Empty]
	err := c.do(ctx, http.MethodDelete, taskPath(todolistID, taskID), nil, &response)
	return response, err
}

func todolistPath(todolistID string) string {
	return "todo-lists/" + url.PathEscape(todolistID)
}

func tasksPath(todolistID string) string {
	return todolistPath(todolistID) + "/tasks"
}

func taskPath(todolistID, taskID string) string {
	return tasksPath(todolistID) + "/" + url.PathEscape(taskID)
}

func (c *Client) do(ctx context.Context, method, path string, payload any, dest any) error {
	var body io.Reader
	if payload != nil {
		data, err := sonic.ConfigStd.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readErrorResponse(resp)
	}
	decoder := sonic.ConfigStd.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func readErrorResponse(resp *http.Response) error {
	statusErr := &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(data) == 0 {
		return statusErr
	}
	var payload struct {
		Messages []string `json:"messages"`
		Message  string   `json:"message"`
		Error    string   `json:"error"`
	}
	if err := sonic.ConfigStd.Unmarshal(data, &payload); err != nil {
		return statusErr
	}
	switch {
	case len(payload.Messages) > 0:
		statusErr.Message = payload.Messages[0]
	case payload.Message != "":
		statusErr.Message = payload.Message
	case payload.Error != "":
		statusErr.Message = payload.Error
	}
	return statusErr
}
