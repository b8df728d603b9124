package jira

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

// defaultSearchFields are requested when a search does not name fields
// explicitly, so table and analysis output always have useful data.
var defaultSearchFields = []string{
	"key", "summary", "status", "assignee", "priority",
	"issuetype", "created", "updated", "description", "labels",
}

// Config holds the connection settings for a Client.
type Config struct {
	BaseURL    string
	Username   string
	APIToken   string
	TimeoutMs  int
	MaxRetries int
}

// Client talks to the Jira Cloud REST API v3. It handles basic
// authentication, JSON (de)serialization, and retry with exponential
// backoff on HTTP 429 and 5xx responses.
type Client struct {
	baseURL    string
	username   string
	token      string
	http       *http.Client
	maxRetries int
	observer   Observer
}

// NewClient creates a Jira client. The observer may be nil.
func NewClient(cfg Config, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	timeout := 30 * time.Second
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		token:      cfg.APIToken,
		http:       &http.Client{Timeout: timeout},
		maxRetries: cfg.MaxRetries,
		observer:   observer,
	}
}

// BaseURL returns the root URL of the Jira instance.
func (c *Client) BaseURL() string { return c.baseURL }

// do performs an HTTP request against the API, retrying on 429
// (honoring Retry-After) and on 5xx, and unmarshals the JSON response
// into result when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	u := c.baseURL + path

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	start := time.Now()
	var lastStatus int
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		attempts = attempt + 1

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.SetBasicAuth(c.username, c.token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			c.emit(method, path, 0, start, attempts, err)
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			c.emit(method, path, resp.StatusCode, start, attempts, readErr)
			return fmt.Errorf("reading response body: %w", readErr)
		}
		lastStatus = resp.StatusCode

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if retryable && attempt < c.maxRetries {
			lastErr = apiError(method, path, resp.StatusCode, respBody)
			wait := retryAfterDuration(resp, attempt)
			select {
			case <-ctx.Done():
				c.emit(method, path, resp.StatusCode, start, attempts, ctx.Err())
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			err := apiError(method, path, resp.StatusCode, respBody)
			c.emit(method, path, resp.StatusCode, start, attempts, err)
			return err
		}

		if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
			c.emit(method, path, resp.StatusCode, start, attempts, nil)
			return nil
		}
		if err := json.Unmarshal(respBody, result); err != nil {
			c.emit(method, path, resp.StatusCode, start, attempts, err)
			return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
		}
		c.emit(method, path, resp.StatusCode, start, attempts, nil)
		return nil
	}

	c.emit(method, path, lastStatus, start, attempts, lastErr)
	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

func (c *Client) emit(method, path string, status int, start time.Time, attempts int, err error) {
	c.observer.OnCallComplete(CallEvent{
		Method:    method,
		Path:      path,
		Status:    status,
		LatencyMs: time.Since(start).Milliseconds(),
		Attempts:  attempts,
		Err:       err,
	})
}

func apiError(method, path string, status int, body []byte) error {
	apiErr := &APIError{StatusCode: status, Method: method, Path: path}
	var parsed ErrorResponse
	if json.Unmarshal(body, &parsed) == nil {
		apiErr.Messages = parsed.ErrorMessages
		for field, msg := range parsed.Errors {
			apiErr.Messages = append(apiErr.Messages, field+": "+msg)
		}
	}
	if len(apiErr.Messages) == 0 && len(body) > 0 {
		apiErr.Messages = []string{strings.TrimSpace(string(body))}
	}
	return apiErr
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration, falling back to exponential backoff when it is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}

// Issue fetches a single issue by key. Expand values like "changelog"
// or "transitions" request the corresponding expansions.
func (c *Client) Issue(ctx context.Context, key string, expand ...string) (*Issue, error) {
	if key == "" {
		return nil, fmt.Errorf("issue key is required")
	}
	path := "/rest/api/3/issue/" + url.PathEscape(key)
	if len(expand) > 0 {
		path += "?expand=" + url.QueryEscape(strings.Join(expand, ","))
	}
	var issue Issue
	if err := c.do(ctx, http.MethodGet, path, nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// CreateIssue creates a new issue from a fields map and returns the
// created key. Description values should be ADF documents.
func (c *Client) CreateIssue(ctx context.Context, fields map[string]any) (*CreatedIssue, error) {
	var created CreatedIssue
	err := c.do(ctx, http.MethodPost, "/rest/api/3/issue", map[string]any{"fields": fields}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateIssue updates fields on an existing issue.
func (c *Client) UpdateIssue(ctx context.Context, key string, fields map[string]any) error {
	path := "/rest/api/3/issue/" + url.PathEscape(key)
	return c.do(ctx, http.MethodPut, path, map[string]any{"fields": fields}, nil)
}

// DeleteIssue deletes an issue.
func (c *Client) DeleteIssue(ctx context.Context, key string) error {
	path := "/rest/api/3/issue/" + url.PathEscape(key)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// AddComment adds a comment to an issue. The body must be an ADF document.
func (c *Client) AddComment(ctx context.Context, key string, body any) (*Comment, error) {
	path := "/rest/api/3/issue/" + url.PathEscape(key) + "/comment"
	var comment Comment
	if err := c.do(ctx, http.MethodPost, path, map[string]any{"body": body}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// Transitions lists the workflow transitions currently available to an issue.
func (c *Client) Transitions(ctx context.Context, key string) ([]Transition, error) {
	path := "/rest/api/3/issue/" + url.PathEscape(key) + "/transitions"
	var resp TransitionsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transitions, nil
}

// TransitionIssue moves an issue through the named transition, optionally
// updating fields in the same request.
func (c *Client) TransitionIssue(ctx context.Context, key, transitionID string, fields map[string]any) error {
	path := "/rest/api/3/issue/" + url.PathEscape(key) + "/transitions"
	body := map[string]any{"transition": map[string]any{"id": transitionID}}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// SearchRequest holds the parameters for a JQL search.
type SearchRequest struct {
	JQL        string
	Fields     []string // defaults to defaultSearchFields when empty
	Expand     []string
	MaxResults int
	PageToken  string
}

// searchEnvelope keeps the raw issue objects alongside the typed decode so
// custom fields survive for export.
type searchEnvelope struct {
	Issues        []json.RawMessage `json:"issues"`
	IsLast        bool              `json:"isLast"`
	NextPageToken string            `json:"nextPageToken"`
}

// Search runs a single page of a JQL search against /rest/api/3/search/jql.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if strings.TrimSpace(req.JQL) == "" {
		return nil, fmt.Errorf("jql is required")
	}

	q := url.Values{}
	q.Set("jql", req.JQL)
	if req.MaxResults > 0 {
		q.Set("maxResults", strconv.Itoa(req.MaxResults))
	}
	fields := req.Fields
	if len(fields) == 0 {
		fields = defaultSearchFields
	}
	q.Set("fields", strings.Join(fields, ","))
	if len(req.Expand) > 0 {
		q.Set("expand", strings.Join(req.Expand, ","))
	}
	if req.PageToken != "" {
		q.Set("nextPageToken", req.PageToken)
	}

	var envelope searchEnvelope
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/search/jql?"+q.Encode(), nil, &envelope); err != nil {
		return nil, err
	}

	resp := &SearchResponse{
		IsLast:        envelope.IsLast,
		NextPageToken: envelope.NextPageToken,
		RawIssues:     envelope.Issues,
	}
	for _, raw := range envelope.Issues {
		var issue Issue
		if err := json.Unmarshal(raw, &issue); err != nil {
			return nil, fmt.Errorf("decoding issue: %w", err)
		}
		resp.Issues = append(resp.Issues, issue)
	}
	return resp, nil
}

// SearchAll fetches every page of a JQL search using token pagination.
func (c *Client) SearchAll(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	all := &SearchResponse{IsLast: true}
	req.PageToken = ""
	for {
		page, err := c.Search(ctx, req)
		if err != nil {
			return nil, err
		}
		all.Issues = append(all.Issues, page.Issues...)
		all.RawIssues = append(all.RawIssues, page.RawIssues...)
		if page.IsLast || page.NextPageToken == "" || len(page.Issues) == 0 {
			return all, nil
		}
		req.PageToken = page.NextPageToken
	}
}

// Projects lists recently viewed projects.
func (c *Client) Projects(ctx context.Context, recent int) ([]Project, error) {
	path := "/rest/api/3/project"
	if recent > 0 {
		path += "?recent=" + strconv.Itoa(recent)
	}
	var projects []Project
	if err := c.do(ctx, http.MethodGet, path, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ProjectByKey fetches a single project.
func (c *Client) ProjectByKey(ctx context.Context, key string) (*Project, error) {
	var project Project
	path := "/rest/api/3/project/" + url.PathEscape(key)
	if err := c.do(ctx, http.MethodGet, path, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Fields lists all field definitions.
func (c *Client) Fields(ctx context.Context) ([]FieldDef, error) {
	var fields []FieldDef
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/field", nil, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// CustomFieldID resolves a custom field ID by its display name.
// Returns an empty string when no field matches.
func (c *Client) CustomFieldID(ctx context.Context, name string) (string, error) {
	fields, err := c.Fields(ctx)
	if err != nil {
		return "", err
	}
	for _, f := range fields {
		if f.Name == name {
			return f.ID, nil
		}
	}
	return "", nil
}

// epicLinkFieldIDs are custom field IDs commonly used for the epic link
// on instances where the field is not named "Epic Link".
var epicLinkFieldIDs = []string{
	"customfield_10014",
	"customfield_10008",
	"customfield_10011",
}

// EpicLinkFieldID discovers the epic link custom field: standard name
// first, then well-known field IDs. Empty string when none exists.
func (c *Client) EpicLinkFieldID(ctx context.Context) (string, error) {
	id, err := c.CustomFieldID(ctx, "Epic Link")
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	fields, err := c.Fields(ctx)
	if err != nil {
		return "", err
	}
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.ID] = true
	}
	for _, candidate := range epicLinkFieldIDs {
		if known[candidate] {
			return candidate, nil
		}
	}
	return "", nil
}

// Epics searches a project's epics, newest first.
func (c *Client) Epics(ctx context.Context, projectKey string, maxResults int) ([]Issue, error) {
	jql := fmt.Sprintf("project = %s AND issuetype = Epic ORDER BY created DESC", projectKey)
	resp, err := c.Search(ctx, SearchRequest{JQL: jql, MaxResults: maxResults})
	if err != nil {
		return nil, err
	}
	return resp.Issues, nil
}

// Priorities lists available priorities.
func (c *Client) Priorities(ctx context.Context) ([]Priority, error) {
	var priorities []Priority
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/priority", nil, &priorities); err != nil {
		return nil, err
	}
	return priorities, nil
}

// Statuses lists all statuses defined on the instance.
func (c *Client) Statuses(ctx context.Context) ([]Status, error) {
	var statuses []Status
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/status", nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// AssignableUsers lists users assignable to issues in a project.
func (c *Client) AssignableUsers(ctx context.Context, projectKey, query string, maxResults int) ([]User, error) {
	q := url.Values{}
	q.Set("project", projectKey)
	if query != "" {
		q.Set("query", query)
	}
	if maxResults > 0 {
		q.Set("maxResults", strconv.Itoa(maxResults))
	}
	var users []User
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/user/assignable/search?"+q.Encode(), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Myself fetches the authenticated user.
func (c *Client) Myself(ctx context.Context) (*Myself, error) {
	var me Myself
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/myself", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// ServerInfo fetches instance information.
func (c *Client) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/serverInfo", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
