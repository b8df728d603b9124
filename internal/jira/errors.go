package jira

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized indicates the credentials were rejected (401/403).
	ErrUnauthorized = errors.New("jira authentication failed: check JIRA_USERNAME and JIRA_API_TOKEN")

	// ErrNotFound indicates the requested resource does not exist (404).
	ErrNotFound = errors.New("jira resource not found")

	// ErrRateLimited indicates the request was rejected with 429 and all
	// retry attempts were exhausted.
	ErrRateLimited = errors.New("jira rate limit exceeded")
)

// APIError carries the status code and server-provided messages of a
// failed Jira API call.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("jira API error (%d) on %s %s: %s",
			e.StatusCode, e.Method, e.Path, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("jira API error (%d) on %s %s", e.StatusCode, e.Method, e.Path)
}

// Is maps APIError status codes onto the package sentinels so callers
// can use errors.Is without inspecting codes.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == 401 || e.StatusCode == 403
	case ErrNotFound:
		return e.StatusCode == 404
	case ErrRateLimited:
		return e.StatusCode == 429
	}
	return false
}
