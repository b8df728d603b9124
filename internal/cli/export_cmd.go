package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dawiddutoit/jira-tool/internal/cli/formatter"
	"github.com/dawiddutoit/jira-tool/internal/export"
	"github.com/dawiddutoit/jira-tool/internal/jira"
)

// exportFields is what the export command requests for every issue.
var exportFields = []string{
	"summary", "status", "assignee", "priority", "issuetype",
	"created", "updated", "description", "labels",
}

func newExportCmd(app *App) *cobra.Command {
	var (
		project   string
		status    string
		assignee  string
		priority  string
		issueType string
		component string
		created   string
		jql       string
		format    string
		output    string
		limit     int
		fetchAll  bool
		stats     bool
		groupBy   string
		expand    []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export filtered issues to a table, JSON, JSONL or CSV",
		Long: `Assembles a JQL query from the filter flags (or takes one verbatim via
--jql) and exports the matching issues. Without --status the query
excludes Done, Closed and Cancelled issues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.NewClient()
			if err != nil {
				return err
			}

			if project == "" {
				project = app.Config.DefaultProject
			}
			if component == "" {
				component = app.Config.DefaultComponent
			}
			if jql == "" && project == "" {
				return fmt.Errorf("no project given and JIRA_DEFAULT_PROJECT is unset")
			}
			if groupBy != "" {
				switch groupBy {
				case "status", "assignee", "priority":
				default:
					return fmt.Errorf("invalid --group-by %q, want status, assignee or priority", groupBy)
				}
			}

			query := jql
			if query == "" {
				query = buildExportJQL(project, status, assignee, priority, issueType, component, created)
			}
			fmt.Println(formatter.Dim("Query: " + query))

			req := jira.SearchRequest{
				JQL:        query,
				Fields:     exportFields,
				Expand:     expand,
				MaxResults: app.maxResults(limit),
			}

			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner("fetching issues")
			}
			var resp *jira.SearchResponse
			if fetchAll {
				resp, err = client.SearchAll(context.Background(), req)
			} else {
				resp, err = client.Search(context.Background(), req)
			}
			stop()
			if err != nil {
				return err
			}
			if !fetchAll && !resp.IsLast && (format == export.FormatTable || output != "") {
				fmt.Println(formatter.Dim(fmt.Sprintf("Retrieved %d results (more available); add --all to fetch everything", len(resp.Issues))))
			}
			if len(resp.Issues) == 0 {
				fmt.Println("No issues found matching the criteria.")
				return nil
			}

			if stats {
				fmt.Println(renderExportStats(resp.Issues))
			}
			if groupBy != "" {
				fmt.Println(renderExportGroups(resp.Issues, groupBy))
			}

			if format == export.FormatTable {
				if !stats && groupBy == "" {
					fmt.Println(formatter.FormatIssueList(resp.Issues))
					fmt.Println(formatter.Dim(fmt.Sprintf("Total: %d issues", len(resp.Issues))))
				}
				return nil
			}

			issues, err := export.DecodeIssues(resp.RawIssues)
			if err != nil {
				return err
			}

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				out = f
			} else if stats || groupBy != "" {
				// Stats and grouping already wrote to stdout; mixing in
				// machine-readable output would corrupt both.
				return fmt.Errorf("--output is required for %s format when using --stats or --group-by", format)
			}

			if err := export.Write(out, format, issues); err != nil {
				return err
			}
			if output != "" {
				fmt.Printf("Exported %d issues to %s\n", len(issues), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project key (default from config)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status; 'open', 'active' or 'all' keep the default exclusion")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Filter by assignee name, 'unassigned' or 'me'")
	cmd.Flags().StringVar(&priority, "priority", "", "Filter by priority name")
	cmd.Flags().StringVar(&issueType, "type", "", "Filter by issue type")
	cmd.Flags().StringVar(&component, "component", "", "Filter by component (default from config)")
	cmd.Flags().StringVar(&created, "created", "", "Filter by creation date, e.g. -7d or 2024-01-01")
	cmd.Flags().StringVar(&jql, "jql", "", "Custom JQL query, overrides the filter flags")
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatTable, "Output format: table, json, jsonl or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results per page (default from config)")
	cmd.Flags().BoolVar(&fetchAll, "all", false, "Follow pagination and fetch every match")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print summary statistics")
	cmd.Flags().StringVar(&groupBy, "group-by", "", "Group results by status, assignee or priority")
	cmd.Flags().StringSliceVar(&expand, "expand", nil, "Expansions to request, e.g. changelog")

	return cmd
}

// buildExportJQL assembles the filter flags into a JQL query. Absent a
// status filter the closed statuses are excluded so the default export
// is the working set.
func buildExportJQL(project, status, assignee, priority, issueType, component, created string) string {
	filters := []string{fmt.Sprintf("project = %s", strings.ToUpper(project))}

	switch strings.ToLower(status) {
	case "", "open", "active", "all":
		filters = append(filters, "status NOT IN (Done, Closed, Cancelled)")
	default:
		filters = append(filters, fmt.Sprintf("status = %q", status))
	}

	switch strings.ToLower(assignee) {
	case "":
	case "unassigned":
		filters = append(filters, "assignee = EMPTY")
	case "me":
		filters = append(filters, "assignee = currentUser()")
	default:
		filters = append(filters, fmt.Sprintf("assignee ~ %q", assignee))
	}

	if priority != "" {
		filters = append(filters, fmt.Sprintf("priority = %q", priority))
	}
	if issueType != "" {
		filters = append(filters, fmt.Sprintf("issuetype = %q", issueType))
	}
	if component != "" {
		filters = append(filters, fmt.Sprintf("component = %q", component))
	}
	if created != "" {
		filters = append(filters, fmt.Sprintf("created >= %s", created))
	}

	return strings.Join(filters, " AND ")
}

func exportGroupKey(issue jira.Issue, groupBy string) string {
	switch groupBy {
	case "status":
		if issue.Fields.Status != nil {
			return issue.Fields.Status.Name
		}
	case "priority":
		if issue.Fields.Priority != nil {
			return issue.Fields.Priority.Name
		}
	case "assignee":
		if issue.Fields.Assignee != nil {
			return issue.Fields.Assignee.DisplayName
		}
		return "Unassigned"
	case "type":
		if issue.Fields.IssueType != nil {
			return issue.Fields.IssueType.Name
		}
	}
	return "Unknown"
}

func countBy(issues []jira.Issue, groupBy string) []string {
	counts := map[string]int{}
	for _, issue := range issues {
		counts[exportGroupKey(issue, groupBy)]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("  %s: %d", k, counts[k]))
	}
	return lines
}

func renderExportStats(issues []jira.Issue) string {
	var b strings.Builder
	b.WriteString(formatter.Header("Summary statistics") + "\n")
	fmt.Fprintf(&b, "Total issues: %d\n", len(issues))

	for _, section := range []struct{ title, key string }{
		{"By status", "status"},
		{"By priority", "priority"},
		{"By type", "type"},
		{"By assignee", "assignee"},
	} {
		b.WriteString("\n" + formatter.Bold(section.title) + "\n")
		b.WriteString(strings.Join(countBy(issues, section.key), "\n") + "\n")
	}
	return b.String()
}

func renderExportGroups(issues []jira.Issue, groupBy string) string {
	groups := map[string][]jira.Issue{}
	for _, issue := range issues {
		key := exportGroupKey(issue, groupBy)
		groups[key] = append(groups[key], issue)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(formatter.Header("Grouped by "+groupBy) + "\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s (%d issues)\n", formatter.Bold(k), len(groups[k]))
		b.WriteString(formatter.FormatIssueList(groups[k]) + "\n")
	}
	return b.String()
}
