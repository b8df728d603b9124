// Package analysis computes how long issues spend in each workflow
// state, derived from their changelog history.
package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/dawiddutoit/jira-tool/internal/jira"
)

// Transition is one observed change of an issue's status field. The
// synthetic creation transition has an empty FromState.
type Transition struct {
	Timestamp time.Time
	FromState string
	ToState   string
	Author    string
}

// jiraTimestampLayout is the format Jira Cloud reports changelog and
// field timestamps in, e.g. "2024-01-02T09:30:00.000+0000".
const jiraTimestampLayout = "2006-01-02T15:04:05.000-0700"

// ParseTimestamp parses a Jira timestamp, accepting both the native
// Jira layout and RFC 3339.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(jiraTimestampLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// ExtractTransitions derives the ordered status transition sequence
// for one issue from its changelog. An issue whose changelog carries
// no status history yields an empty sequence; otherwise the issue's
// creation is synthesized as the first transition, its state taken
// from the FromString of the earliest status change. The returned
// sequence is sorted ascending by timestamp regardless of changelog
// entry order.
//
// skipped counts changelog entries dropped for unparseable timestamps.
func ExtractTransitions(issue jira.Issue) (transitions []Transition, skipped int, err error) {
	if issue.Fields.Status == nil {
		return nil, 0, fmt.Errorf("issue %s: missing status field", issue.Key)
	}
	created, err := ParseTimestamp(issue.Fields.Created)
	if err != nil {
		return nil, 0, fmt.Errorf("issue %s: created: %w", issue.Key, err)
	}

	var changes []Transition
	if issue.Changelog != nil {
		for _, history := range issue.Changelog.Histories {
			for _, item := range history.Items {
				if item.Field != "status" {
					continue
				}
				at, err := ParseTimestamp(history.Created)
				if err != nil {
					skipped++
					continue
				}
				var author string
				if history.Author != nil {
					author = history.Author.DisplayName
				}
				changes = append(changes, Transition{
					Timestamp: at,
					FromState: item.FromString,
					ToState:   item.ToString,
					Author:    author,
				})
			}
		}
	}

	if len(changes) == 0 {
		return nil, skipped, nil
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Timestamp.Before(changes[j].Timestamp)
	})

	transitions = make([]Transition, 0, len(changes)+1)
	transitions = append(transitions, Transition{
		Timestamp: created,
		ToState:   changes[0].FromState,
	})
	transitions = append(transitions, changes...)
	return transitions, skipped, nil
}

// FilterTransitions keeps transitions within [from, to]. Nil bounds
// are open.
func FilterTransitions(transitions []Transition, from, to *time.Time) []Transition {
	if from == nil && to == nil {
		return transitions
	}
	filtered := make([]Transition, 0, len(transitions))
	for _, tr := range transitions {
		if from != nil && tr.Timestamp.Before(*from) {
			continue
		}
		if to != nil && tr.Timestamp.After(*to) {
			continue
		}
		filtered = append(filtered, tr)
	}
	return filtered
}
