package jira

import "encoding/json"

// SearchResponse is the response from GET /rest/api/3/search/jql.
// Pagination is token-based: pass NextPageToken back to fetch the
// following page; IsLast reports whether more pages remain.
type SearchResponse struct {
	Issues        []Issue `json:"issues"`
	IsLast        bool    `json:"isLast"`
	NextPageToken string  `json:"nextPageToken,omitempty"`

	// RawIssues mirrors Issues as the undecoded API objects, preserving
	// custom fields for the export formatters.
	RawIssues []json.RawMessage `json:"-"`
}

// Issue represents a single Jira issue from the REST API.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self,omitempty"`
	Fields IssueFields `json:"fields"`
	// Populated when expand=changelog was requested.
	Changelog *Changelog `json:"changelog,omitempty"`
	// Populated when expand=transitions was requested.
	Transitions []Transition `json:"transitions,omitempty"`
}

// IssueFields contains the standard fields of a Jira issue.
// Description is raw ADF; use adf.ExtractText to render it.
type IssueFields struct {
	Summary     string          `json:"summary"`
	Status      *Status         `json:"status,omitempty"`
	Priority    *Priority       `json:"priority,omitempty"`
	IssueType   *IssueType      `json:"issuetype,omitempty"`
	Assignee    *User           `json:"assignee,omitempty"`
	Reporter    *User           `json:"reporter,omitempty"`
	Project     *Project        `json:"project,omitempty"`
	Created     string          `json:"created,omitempty"`
	Updated     string          `json:"updated,omitempty"`
	Labels      []string        `json:"labels,omitempty"`
	Description json.RawMessage `json:"description,omitempty"`
}

// Status represents the workflow status of a Jira issue.
type Status struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	StatusCategory *StatusCategory `json:"statusCategory,omitempty"`
}

// StatusCategory is the broad category a status belongs to.
type StatusCategory struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Priority represents the priority level of a Jira issue.
type Priority struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IssueType represents the type of a Jira issue (Bug, Story, Epic, ...).
type IssueType struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subtask bool   `json:"subtask,omitempty"`
}

// User represents a Jira Cloud user.
type User struct {
	AccountID    string `json:"accountId,omitempty"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress,omitempty"`
	Active       bool   `json:"active,omitempty"`
}

// Project represents a Jira project.
type Project struct {
	ID   string `json:"id,omitempty"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Changelog holds an issue's change history when expand=changelog
// was requested.
type Changelog struct {
	StartAt    int             `json:"startAt"`
	MaxResults int             `json:"maxResults"`
	Total      int             `json:"total"`
	Histories  []ChangeHistory `json:"histories"`
}

// ChangeHistory is one timestamped entry in an issue's changelog.
// Created uses Jira's timestamp format (2006-01-02T15:04:05.000-0700).
type ChangeHistory struct {
	ID      string       `json:"id"`
	Author  *User        `json:"author,omitempty"`
	Created string       `json:"created"`
	Items   []ChangeItem `json:"items"`
}

// ChangeItem is a single field change within a changelog entry.
// For status changes, Field is "status" and FromString/ToString carry
// the display names of the old and new statuses.
type ChangeItem struct {
	Field      string `json:"field"`
	FieldType  string `json:"fieldtype,omitempty"`
	From       string `json:"from,omitempty"`
	FromString string `json:"fromString,omitempty"`
	To         string `json:"to,omitempty"`
	ToString   string `json:"toString,omitempty"`
}

// Transition represents a workflow transition available to an issue.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   Status `json:"to"`
}

// TransitionsResponse wraps the list of transitions returned by
// GET /rest/api/3/issue/{key}/transitions.
type TransitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}

// FieldDef is a field definition from GET /rest/api/3/field, used to
// discover custom field IDs by display name.
type FieldDef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Custom bool   `json:"custom"`
}

// Comment is a created comment returned by the comment endpoint.
type Comment struct {
	ID      string `json:"id"`
	Author  *User  `json:"author,omitempty"`
	Created string `json:"created"`
}

// CreatedIssue is the response from POST /rest/api/3/issue.
type CreatedIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// ServerInfo is the response from GET /rest/api/3/serverInfo.
type ServerInfo struct {
	BaseURL        string `json:"baseUrl"`
	Version        string `json:"version"`
	DeploymentType string `json:"deploymentType"`
	ServerTitle    string `json:"serverTitle"`
}

// Myself is the response from GET /rest/api/3/myself.
type Myself struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	Active       bool   `json:"active"`
}

// ErrorResponse is the standard Jira error response body.
type ErrorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}
