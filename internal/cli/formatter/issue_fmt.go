package formatter

import (
	"fmt"
	"strings"

	"github.com/dawiddutoit/jira-tool/internal/adf"
	"github.com/dawiddutoit/jira-tool/internal/analysis"
	"github.com/dawiddutoit/jira-tool/internal/jira"
)

const summaryColumnWidth = 60

// UserDisplay returns a user's display name or a placeholder.
func UserDisplay(u *jira.User) string {
	if u == nil || u.DisplayName == "" {
		return "Unassigned"
	}
	return u.DisplayName
}

func statusPill(s *jira.Status) string {
	if s == nil {
		return StyleDim.Render("● Unknown")
	}
	category := ""
	if s.StatusCategory != nil {
		category = s.StatusCategory.Key
	}
	return StatusPill(s.Name, category)
}

func priorityName(p *jira.Priority) string {
	if p == nil {
		return ""
	}
	return p.Name
}

// FormatIssue renders a single issue as a boxed detail view.
func FormatIssue(issue jira.Issue) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s\n\n", Bold(issue.Key), StyleFg.Render(issue.Fields.Summary)))

	rowsOut := [][2]string{
		{"Status", statusPill(issue.Fields.Status)},
		{"Type", labelOrDash(typeName(issue.Fields.IssueType))},
		{"Priority", PriorityIndicator(priorityName(issue.Fields.Priority))},
		{"Assignee", StyleFg.Render(UserDisplay(issue.Fields.Assignee))},
		{"Reporter", StyleFg.Render(UserDisplay(issue.Fields.Reporter))},
	}
	if created := formatJiraDate(issue.Fields.Created); created != "" {
		rowsOut = append(rowsOut, [2]string{"Created", Dim(created)})
	}
	if updated := formatJiraDate(issue.Fields.Updated); updated != "" {
		rowsOut = append(rowsOut, [2]string{"Updated", Dim(updated)})
	}
	if len(issue.Fields.Labels) > 0 {
		rowsOut = append(rowsOut, [2]string{"Labels", Dim(strings.Join(issue.Fields.Labels, ", "))})
	}
	for _, row := range rowsOut {
		b.WriteString(fmt.Sprintf("%-10s %s\n", Dim(row[0]), row[1]))
	}

	if text := adf.ExtractText(issue.Fields.Description); text != "" {
		b.WriteString("\n")
		b.WriteString(Header("Description"))
		b.WriteString("\n")
		b.WriteString(StyleFg.Render(text))
		b.WriteString("\n")
	}

	return RenderBox("", b.String())
}

func typeName(t *jira.IssueType) string {
	if t == nil {
		return ""
	}
	return t.Name
}

func labelOrDash(s string) string {
	if s == "" {
		return Dim("--")
	}
	return StyleFg.Render(s)
}

func formatJiraDate(s string) string {
	if s == "" {
		return ""
	}
	at, err := analysis.ParseTimestamp(s)
	if err != nil {
		return s
	}
	return HumanTimestamp(at)
}

// FormatIssueList renders issues as an aligned table.
func FormatIssueList(issues []jira.Issue) string {
	headers := []string{"KEY", "SUMMARY", "STATUS", "PRIORITY", "ASSIGNEE"}
	rows := make([][]string, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, []string{
			Bold(issue.Key),
			StyleFg.Render(Truncate(issue.Fields.Summary, summaryColumnWidth)),
			statusPill(issue.Fields.Status),
			PriorityIndicator(priorityName(issue.Fields.Priority)),
			StyleFg.Render(UserDisplay(issue.Fields.Assignee)),
		})
	}
	return RenderTable(headers, rows)
}

// FormatTransitionList renders the transitions currently available
// for an issue.
func FormatTransitionList(transitions []jira.Transition) string {
	headers := []string{"ID", "NAME", "TO STATUS"}
	rows := make([][]string, 0, len(transitions))
	for _, tr := range transitions {
		rows = append(rows, []string{
			Dim(tr.ID),
			StyleFg.Render(tr.Name),
			statusPill(&tr.To),
		})
	}
	return RenderTable(headers, rows)
}
