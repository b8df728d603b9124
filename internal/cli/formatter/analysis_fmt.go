package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/dawiddutoit/jira-tool/internal/analysis"
	"github.com/dawiddutoit/jira-tool/internal/snapshot"
)

// FormatAnalysis renders state duration results for the terminal, one
// section per issue. detailed adds the interval boundaries.
func FormatAnalysis(results []analysis.IssueResult, detailed bool) string {
	var b strings.Builder

	for i, result := range results {
		if i > 0 {
			b.WriteString("\n")
		}

		if result.Err != nil {
			b.WriteString(fmt.Sprintf("%s  %s\n", Bold(result.IssueKey), StyleRed.Render("skipped: "+result.Err.Error())))
			continue
		}

		title := result.IssueKey
		if result.Summary != "" {
			title += "  " + result.Summary
		}
		b.WriteString(Header(title))
		b.WriteString("\n")

		if len(result.Durations) == 0 {
			b.WriteString(Dim("no state history") + "\n")
			continue
		}

		headers := []string{"STATE", "CALENDAR DAYS", "BUSINESS HOURS", "TIME IN STATE"}
		if detailed {
			headers = append(headers, "FROM", "TO")
		}
		rows := make([][]string, 0, len(result.Durations))
		for _, d := range result.Durations {
			state := StyleFg.Render(d.State)
			if d.End == nil {
				state = StyleGreen.Render(d.State + " (current)")
			}
			row := []string{
				state,
				fmt.Sprintf("%.2f", d.CalendarDays),
				fmt.Sprintf("%.2f", d.BusinessHours),
				Dim(FormatHours(d.CalendarDays * 24)),
			}
			if detailed {
				end := Dim("now")
				if d.End != nil {
					end = Dim(d.End.UTC().Format(time.RFC3339))
				}
				row = append(row, Dim(d.Start.UTC().Format(time.RFC3339)), end)
			}
			rows = append(rows, row)
		}
		b.WriteString(RenderAlignedTable(headers, rows, []int{1, 2}))
	}

	return b.String()
}

// FormatSnapshotList renders stored snapshots as a table.
func FormatSnapshotList(snaps []*snapshot.Snapshot) string {
	headers := []string{"ID", "LABEL", "ISSUES", "TAKEN", "JQL"}
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		label := s.Label
		if label == "" {
			label = "--"
		}
		rows = append(rows, []string{
			Dim(s.ID[:8]),
			StyleFg.Render(label),
			fmt.Sprintf("%d", s.IssueCount),
			Dim(HumanTimestamp(s.TakenAt)),
			Dim(Truncate(s.JQL, 48)),
		})
	}
	return RenderAlignedTable(headers, rows, []int{2})
}

// FormatSnapshot renders a single snapshot's metadata.
func FormatSnapshot(s *snapshot.Snapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-8s %s\n", Dim("ID"), Bold(s.ID)))
	if s.Label != "" {
		b.WriteString(fmt.Sprintf("%-8s %s\n", Dim("Label"), StyleFg.Render(s.Label)))
	}
	b.WriteString(fmt.Sprintf("%-8s %s\n", Dim("JQL"), StyleFg.Render(s.JQL)))
	b.WriteString(fmt.Sprintf("%-8s %s\n", Dim("Taken"), StyleFg.Render(s.TakenAt.Format(time.RFC3339))))
	b.WriteString(fmt.Sprintf("%-8s %d\n", Dim("Issues"), s.IssueCount))
	return b.String()
}
