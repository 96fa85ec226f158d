package asana

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"projectpulse/internal/instrumentation"
)

// DefaultBaseURL is the upstream API root.
const DefaultBaseURL = "https://app.asana.com/api/1.0"

// pageLimit caps the result size of every list call.
const pageLimit = 100

// taskFields is the field selection requested for full task records.
const taskFields = "name,notes,completed,completed_at,created_at,modified_at,due_on,due_at,assignee.name,assignee.email,memberships.project.name,memberships.section.name,permalink_url"

// sectionTaskFields is the reduced field set for tasks listed per section.
const sectionTaskFields = "name,completed,completed_at,due_on,due_at,assignee.name"

// storyFields is the field selection for change-history entries.
const storyFields = "created_at,created_by.name,resource_subtype,old_dates,new_dates"

// ErrProjectNotFound is returned by FindProjectByName when no project
// matches. It is a lookup miss, not a transport failure.
var ErrProjectNotFound = errors.New("project not found")

// FetchError wraps a transport or API failure from the upstream service.
type FetchError struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream returned %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client is a rate-limited client for the task-tracking API. All methods
// issue exactly one rate-limiter check and one HTTP call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	workspace  string
	limiter    *rateLimiter
	metrics    *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the upstream API root. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRateLimit sets the request ceiling per 60-second window.
func WithRateLimit(limit int) Option {
	return func(c *Client) { c.limiter = newRateLimiter(limit) }
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics enables recording of rate-limiter stalls.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client authenticated with a static bearer token.
func NewClient(ctx context.Context, accessToken, workspace string, opts ...Option) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	c := &Client{
		httpClient: oauth2.NewClient(ctx, src),
		baseURL:    DefaultBaseURL,
		workspace:  workspace,
		limiter:    newRateLimiter(DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Workspace returns the workspace this client is scoped to.
func (c *Client) Workspace() string {
	return c.workspace
}

// get performs one rate-limited GET and returns the "data" node of the
// response body. Every vendor payload crosses this boundary before any
// internal logic sees it, so the upstream span lives here.
func (c *Client) get(ctx context.Context, operation, path string, query url.Values) (gjson.Result, error) {
	ctx, span := instrumentation.StartUpstreamSpan(ctx, instrumentation.ServiceAsana, operation)
	defer span.End()

	data, err := c.fetch(ctx, operation, path, query)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return gjson.Result{}, err
	}
	instrumentation.SetSpanSuccess(span)
	return data, nil
}

func (c *Client) fetch(ctx context.Context, operation, path string, query url.Values) (gjson.Result, error) {
	waited, err := c.limiter.wait(ctx)
	if err != nil {
		return gjson.Result{}, &FetchError{Operation: operation, Err: err}
	}
	if waited > 0 && c.metrics != nil {
		c.metrics.RecordRateLimitWait(ctx, waited)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return gjson.Result{}, &FetchError{Operation: operation, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, &FetchError{Operation: operation, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, &FetchError{Operation: operation, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "errors.0.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return gjson.Result{}, &FetchError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &FetchError{
			Operation: operation,
			Err:       errors.New("invalid JSON in response body"),
		}
	}

	return gjson.GetBytes(body, "data"), nil
}

// TaskFilters narrows a ListTasks call. Zero values are omitted from the
// request. Section-scoped listing has its own endpoint, see
// ListSectionTasks.
type TaskFilters struct {
	Project        string
	Assignee       string
	CompletedSince time.Time
	ModifiedSince  time.Time
	Fields         string
}

// ListTasks fetches up to one page of tasks matching the filters. When no
// project or assignee filter is given, the workspace filter is applied
// (the vendor requires at least one scope).
func (c *Client) ListTasks(ctx context.Context, f TaskFilters) ([]Task, error) {
	q := url.Values{}
	fields := f.Fields
	if fields == "" {
		fields = taskFields
	}
	q.Set("opt_fields", fields)
	q.Set("limit", fmt.Sprint(pageLimit))

	if f.Project != "" {
		q.Set("project", f.Project)
	} else {
		q.Set("workspace", c.workspace)
		if f.Assignee == "" {
			// the workspace scope additionally requires an assignee
			q.Set("assignee", "me")
		}
	}
	if f.Assignee != "" {
		q.Set("assignee", f.Assignee)
	}
	if !f.CompletedSince.IsZero() {
		q.Set("completed_since", f.CompletedSince.Format(time.RFC3339))
	}
	if !f.ModifiedSince.IsZero() {
		q.Set("modified_since", f.ModifiedSince.Format(time.RFC3339))
	}

	data, err := c.get(ctx, "list tasks", "/tasks", q)
	if err != nil {
		return nil, err
	}

	var out []Task
	data.ForEach(func(_, r gjson.Result) bool {
		out = append(out, toTask(r))
		return true
	})
	return out, nil
}

// GetTask fetches a single task by ID.
func (c *Client) GetTask(ctx context.Context, taskID string) (*Task, error) {
	q := url.Values{}
	q.Set("opt_fields", taskFields)

	data, err := c.get(ctx, "get task", "/tasks/"+url.PathEscape(taskID), q)
	if err != nil {
		return nil, err
	}

	t := toTask(data)
	return &t, nil
}

// ListStories fetches the change-history entries for a task, in the order
// the vendor returns them (no chronological guarantee beyond the vendor's
// own default).
func (c *Client) ListStories(ctx context.Context, taskID string) ([]Story, error) {
	q := url.Values{}
	q.Set("opt_fields", storyFields)
	q.Set("limit", fmt.Sprint(pageLimit))

	data, err := c.get(ctx, "list stories", "/tasks/"+url.PathEscape(taskID)+"/stories", q)
	if err != nil {
		return nil, err
	}

	var out []Story
	data.ForEach(func(_, r gjson.Result) bool {
		out = append(out, toStory(r))
		return true
	})
	return out, nil
}

// ListSections fetches the sections of a project.
func (c *Client) ListSections(ctx context.Context, projectID string) ([]Section, error) {
	q := url.Values{}
	q.Set("opt_fields", "name,project.name")
	q.Set("limit", fmt.Sprint(pageLimit))

	data, err := c.get(ctx, "list sections", "/projects/"+url.PathEscape(projectID)+"/sections", q)
	if err != nil {
		return nil, err
	}

	var out []Section
	data.ForEach(func(_, r gjson.Result) bool {
		out = append(out, toSection(r))
		return true
	})
	return out, nil
}

// ListSectionTasks fetches the tasks of a section with a reduced field set.
func (c *Client) ListSectionTasks(ctx context.Context, sectionID string) ([]Task, error) {
	q := url.Values{}
	q.Set("opt_fields", sectionTaskFields)
	q.Set("limit", fmt.Sprint(pageLimit))

	data, err := c.get(ctx, "list section tasks", "/sections/"+url.PathEscape(sectionID)+"/tasks", q)
	if err != nil {
		return nil, err
	}

	var out []Task
	data.ForEach(func(_, r gjson.Result) bool {
		out = append(out, toTask(r))
		return true
	})
	return out, nil
}

// ListUsers fetches all users of the workspace.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	q := url.Values{}
	q.Set("opt_fields", "name,email")
	q.Set("workspace", c.workspace)
	q.Set("limit", fmt.Sprint(pageLimit))

	data, err := c.get(ctx, "list users", "/users", q)
	if err != nil {
		return nil, err
	}

	var out []User
	data.ForEach(func(_, r gjson.Result) bool {
		if u := toUser(r); u != nil {
			out = append(out, *u)
		}
		return true
	})
	return out, nil
}

// GetMe fetches the currently authenticated user.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	q := url.Values{}
	q.Set("opt_fields", "name,email")

	data, err := c.get(ctx, "get current user", "/users/me", q)
	if err != nil {
		return nil, err
	}

	u := toUser(data)
	if u == nil {
		return nil, &FetchError{Operation: "get current user", Err: errors.New("empty user payload")}
	}
	return u, nil
}

// SearchUsers fetches the full user list and filters it by a
// case-insensitive substring match on name or email.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]User, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var out []User
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) {
			out = append(out, u)
		}
	}
	return out, nil
}

// ListProjects fetches all projects of the workspace.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	q := url.Values{}
	q.Set("opt_fields", "name")
	q.Set("workspace", c.workspace)
	q.Set("limit", fmt.Sprint(pageLimit))

	data, err := c.get(ctx, "list projects", "/projects", q)
	if err != nil {
		return nil, err
	}

	var out []Project
	data.ForEach(func(_, r gjson.Result) bool {
		out = append(out, toProject(r))
		return true
	})
	return out, nil
}

// FindProjectByName looks up a project by exact case-insensitive name over
// the full project list. Returns ErrProjectNotFound when nothing matches.
func (c *Client) FindProjectByName(ctx context.Context, name string) (*Project, error) {
	projects, err := c.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	for _, p := range projects {
		if strings.EqualFold(p.Name, name) {
			return &p, nil
		}
	}
	return nil, ErrProjectNotFound
}
