// Package client is a thin HTTP client for the task API. It backs the
// terminal client and carries the bearer token between calls.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/taskminder/taskminder/internal/dto"
	apierrors "github.com/taskminder/taskminder/internal/errors"
)

// ErrUnauthorized is returned when the server rejects the credential.
// Callers should discard their stored session and re-authenticate.
var ErrUnauthorized = errors.New("unauthorized")

// TaskPayload is the body shape for task creation.
type TaskPayload struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Reminder    *time.Time `json:"reminder,omitempty"`
}

// Client talks to a task API server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs a previously issued bearer token.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token, if any.
func (c *Client) Token() string {
	return c.token
}

// Signup registers a new user.
func (c *Client) Signup(username, email, password string) (*dto.UserDTO, error) {
	var user dto.UserDTO
	err := c.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(email, password string) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	err := c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// ListTasks fetches all tasks for the authenticated user.
func (c *Client) ListTasks() ([]dto.TaskDTO, error) {
	var tasks []dto.TaskDTO
	if err := c.do(http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(payload TaskPayload) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	if err := c.do(http.MethodPost, "/api/tasks", payload, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update; fields holds only the keys to
// change (a nil value clears an optional field).
func (c *Client) UpdateTask(id uint64, fields map[string]any) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	if err := c.do(http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), fields, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ToggleComplete flips a task's completed flag.
func (c *Client) ToggleComplete(id uint64) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	if err := c.do(http.MethodPut, fmt.Sprintf("/api/tasks/%d/complete", id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(id uint64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil, nil)
}

func (c *Client) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.token = ""
		return ErrUnauthorized
	}

	if resp.StatusCode >= 400 {
		var apiErr apierrors.APIError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return &apiErr
		}
		return fmt.Errorf("request failed: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
