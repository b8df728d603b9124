package analysis

import (
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/dawiddutoit/jira-tool/internal/jira"
)

// Analyzer runs the full state-duration pipeline over a batch of
// issues: extract transitions, apply the optional date filter, then
// calculate per-state durations.
type Analyzer struct {
	Window BusinessWindow
	Now    func() time.Time
	Log    *charmlog.Logger
}

// NewAnalyzer creates an analyzer with the default business window.
// logger may be nil to silence per-issue warnings.
func NewAnalyzer(logger *charmlog.Logger) *Analyzer {
	return &Analyzer{
		Window: DefaultBusinessWindow(),
		Now:    time.Now,
		Log:    logger,
	}
}

// IssueResult is one issue's analysis. Err is set when the issue's
// record was unusable; such issues contribute no durations but never
// abort the batch.
type IssueResult struct {
	IssueKey    string
	Summary     string
	Transitions []Transition
	Durations   []Duration
	Err         error
}

// AnalyzeIssues analyzes each issue independently. from and to bound
// the transitions considered; nil bounds are open. Issues with
// malformed records are reported in their result and skipped.
func (a *Analyzer) AnalyzeIssues(issues []jira.Issue, from, to *time.Time) []IssueResult {
	now := a.Now()
	results := make([]IssueResult, 0, len(issues))

	for _, issue := range issues {
		result := IssueResult{
			IssueKey: issue.Key,
			Summary:  issue.Fields.Summary,
		}

		transitions, skipped, err := ExtractTransitions(issue)
		if err != nil {
			result.Err = err
			a.warn("skipping issue", "issue", issue.Key, "err", err)
			results = append(results, result)
			continue
		}
		if skipped > 0 {
			a.warn("dropped malformed changelog entries", "issue", issue.Key, "count", skipped)
		}

		transitions = FilterTransitions(transitions, from, to)
		result.Transitions = transitions
		result.Durations = CalculateDurations(transitions, now, a.Window)
		results = append(results, result)
	}
	return results
}

func (a *Analyzer) warn(msg string, keyvals ...any) {
	if a.Log != nil {
		a.Log.Warn(msg, keyvals...)
	}
}
