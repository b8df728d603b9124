package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/dawiddutoit/jira-tool/internal/jira"
)

// IssueOption customizes a fixture issue.
type IssueOption func(*jira.Issue)

// WithStatus sets the issue's current status name.
func WithStatus(name string) IssueOption {
	return func(i *jira.Issue) {
		i.Fields.Status = &jira.Status{Name: name}
	}
}

// WithCreated sets the issue's creation timestamp.
func WithCreated(created string) IssueOption {
	return func(i *jira.Issue) {
		i.Fields.Created = created
	}
}

// WithStatusChange appends one status transition to the changelog.
func WithStatusChange(created, from, to string) IssueOption {
	return func(i *jira.Issue) {
		if i.Changelog == nil {
			i.Changelog = &jira.Changelog{}
		}
		i.Changelog.Histories = append(i.Changelog.Histories, jira.ChangeHistory{
			Created: created,
			Items: []jira.ChangeItem{
				{Field: "status", FieldType: "jira", FromString: from, ToString: to},
			},
		})
	}
}

// NewIssue creates a fixture issue with sensible defaults.
func NewIssue(key string, opts ...IssueOption) jira.Issue {
	issue := jira.Issue{
		ID:   "10000",
		Key:  key,
		Self: "https://example.atlassian.net/rest/api/3/issue/" + key,
		Fields: jira.IssueFields{
			Summary: "Fixture issue " + key,
			Status:  &jira.Status{Name: "To Do"},
			Created: "2024-01-01T09:00:00.000+0000",
		},
	}
	for _, opt := range opts {
		opt(&issue)
	}
	return issue
}

// RawIssue renders a fixture issue as the raw JSON document the
// tracker would return for it.
func RawIssue(issue jira.Issue) json.RawMessage {
	data, err := json.Marshal(issue)
	if err != nil {
		panic(fmt.Sprintf("marshaling fixture issue: %v", err))
	}
	return data
}

// RawIssues renders a batch of fixture issues.
func RawIssues(issues ...jira.Issue) []json.RawMessage {
	raw := make([]json.RawMessage, len(issues))
	for i, issue := range issues {
		raw[i] = RawIssue(issue)
	}
	return raw
}
