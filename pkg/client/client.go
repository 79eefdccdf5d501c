// Package client is a Go client for the bug tracker REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	Errors     []string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Filters narrows ListBugs. Empty fields are not sent.
type Filters struct {
	Status   string
	Priority int
	SortBy   string
}

// Bug is a bug as returned by the API. Severity and Status carry the wire
// values ("low", "open", "in-progress" and so on).
type Bug struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Priority    int       `json:"priority"`
	Status      string    `json:"status"`
	ReportedBy  string    `json:"reportedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BugInput is the payload for create and update. Nil fields are omitted, so an
// update only touches the fields that are set.
type BugInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Severity    *string `json:"severity,omitempty"`
	Priority    *int    `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	ReportedBy  *string `json:"reportedBy,omitempty"`
}

// User is the public account view.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is returned by Register and Login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Client talks to the bug tracker API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New builds a client. An empty baseURL falls back to DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.token = token
}

type bugEnvelope struct {
	Data    Bug    `json:"data"`
	Message string `json:"message"`
}

type bugListEnvelope struct {
	Count int   `json:"count"`
	Data  []Bug `json:"data"`
}

// ListBugs GET /bugs.
func (c *Client) ListBugs(ctx context.Context, f Filters) ([]Bug, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Priority != 0 {
		q.Set("priority", strconv.Itoa(f.Priority))
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	path := "/bugs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out bugListEnvelope
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []Bug{}
	}
	return out.Data, nil
}

// GetBug GET /bugs/:id.
func (c *Client) GetBug(ctx context.Context, id string) (*Bug, error) {
	var out bugEnvelope
	if err := c.do(ctx, http.MethodGet, "/bugs/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// CreateBug POST /bugs.
func (c *Client) CreateBug(ctx context.Context, in BugInput) (*Bug, error) {
	var out bugEnvelope
	if err := c.do(ctx, http.MethodPost, "/bugs", in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateBug PUT /bugs/:id.
func (c *Client) UpdateBug(ctx context.Context, id string, in BugInput) (*Bug, error) {
	var out bugEnvelope
	if err := c.do(ctx, http.MethodPut, "/bugs/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// DeleteBug DELETE /bugs/:id.
func (c *Client) DeleteBug(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/bugs/"+url.PathEscape(id), nil, nil)
}

// Register POST /auth/register. The returned token is kept for later calls.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.authenticate(ctx, "/auth/register", body)
}

// Login POST /auth/login. The returned token is kept for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authenticate(ctx, "/auth/login", body)
}

// Me GET /auth/me.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*Session, error) {
	var out Session
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var env struct {
			Message string          `json:"message"`
			Code    string          `json:"code"`
			Errors  json.RawMessage `json:"errors"`
		}
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Message = env.Message
			apiErr.Code = env.Code
			_ = json.Unmarshal(env.Errors, &apiErr.Errors)
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// String helper for building BugInput literals.
func String(s string) *string { return &s }

// Int helper for building BugInput literals.
func Int(i int) *int { return &i }
