package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dawiddutoit/jira-tool/internal/analysis"
	"github.com/dawiddutoit/jira-tool/internal/cli/formatter"
	"github.com/dawiddutoit/jira-tool/internal/jira"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze issue history",
	}
	cmd.AddCommand(newStateDurationsCmd(app))
	return cmd
}

func newStateDurationsCmd(app *App) *cobra.Command {
	var (
		inputPath  string
		snapshotID string
		jql        string
		output     string
		dateFrom   string
		dateTo     string
		hoursSpec  string
		weekdays   []string
		detailed   bool
		pretty     bool
	)

	cmd := &cobra.Command{
		Use:   "state-durations",
		Short: "Compute time spent in each workflow state",
		Long: `Reads issue changelogs and reports how long each issue spent in every
workflow state, in calendar days and business hours. Issues come from a
live JQL query, a saved snapshot, or a JSON file exported earlier.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			issues, err := loadAnalysisIssues(app, inputPath, snapshotID, jql)
			if err != nil {
				return err
			}

			from, to, err := parseDateRange(dateFrom, dateTo)
			if err != nil {
				return err
			}

			analyzer := analysis.NewAnalyzer(app.Log)
			if hoursSpec != "" || len(weekdays) > 0 {
				window, err := parseBusinessWindow(hoursSpec, weekdays)
				if err != nil {
					return err
				}
				analyzer.Window = window
			}

			results := analyzer.AnalyzeIssues(issues, from, to)

			if pretty {
				fmt.Println(formatter.FormatAnalysis(results, detailed))
				return nil
			}

			var w io.Writer = os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if detailed {
				err = analysis.WriteDetailedCSV(w, results)
			} else {
				err = analysis.WriteCSV(w, results)
			}
			if err != nil {
				return err
			}
			if output != "" {
				fmt.Printf("Wrote analysis for %d issues to %s\n", len(issues), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Read issues from a JSON file instead of the API")
	cmd.Flags().StringVar(&snapshotID, "snapshot", "", "Read issues from a saved snapshot (ID or prefix)")
	cmd.Flags().StringVar(&jql, "jql", "", "Fetch issues matching this JQL query")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write CSV to a file instead of stdout")
	cmd.Flags().StringVar(&dateFrom, "date-from", "", "Only count transitions on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dateTo, "date-to", "", "Only count transitions on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&hoursSpec, "business-hours", "", "Business hours as START-END, e.g. 9-17")
	cmd.Flags().StringSliceVar(&weekdays, "business-days", nil, "Business days, e.g. mon,tue,wed,thu,fri")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Include interval start and end times")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Render a table instead of CSV")
	cmd.MarkFlagsMutuallyExclusive("input", "snapshot", "jql")

	return cmd
}

// loadAnalysisIssues resolves the issue source for an analysis run. Exactly
// one of inputPath, snapshotID or jql selects the source; all empty is an
// error since there is nothing to analyze.
func loadAnalysisIssues(app *App, inputPath, snapshotID, jql string) ([]jira.Issue, error) {
	switch {
	case inputPath != "":
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("read input file: %w", err)
		}
		var issues []jira.Issue
		if err := json.Unmarshal(data, &issues); err != nil {
			return nil, fmt.Errorf("parse input file %s: %w", inputPath, err)
		}
		return issues, nil

	case snapshotID != "":
		snap, err := app.Snapshots.Get(context.Background(), snapshotID)
		if err != nil {
			return nil, err
		}
		issues := make([]jira.Issue, 0, len(snap.Issues))
		for i, raw := range snap.Issues {
			var issue jira.Issue
			if err := json.Unmarshal(raw, &issue); err != nil {
				return nil, fmt.Errorf("parse issue %d in snapshot %s: %w", i, snap.ID, err)
			}
			issues = append(issues, issue)
		}
		return issues, nil

	case jql != "":
		client, err := app.NewClient()
		if err != nil {
			return nil, err
		}
		resp, err := client.SearchAll(context.Background(), jira.SearchRequest{
			JQL:        jql,
			Fields:     []string{"summary", "status", "created"},
			Expand:     []string{"changelog"},
			MaxResults: app.maxResults(0),
		})
		if err != nil {
			return nil, err
		}
		return resp.Issues, nil

	default:
		return nil, fmt.Errorf("one of --input, --snapshot or --jql is required")
	}
}

func parseDateRange(dateFrom, dateTo string) (from, to *time.Time, err error) {
	if dateFrom != "" {
		t, err := time.Parse("2006-01-02", dateFrom)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --date-from: %w", err)
		}
		from = &t
	}
	if dateTo != "" {
		t, err := time.Parse("2006-01-02", dateTo)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --date-to: %w", err)
		}
		// Inclusive upper bound: cover the whole named day.
		t = t.Add(24*time.Hour - time.Nanosecond)
		to = &t
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, fmt.Errorf("--date-from is after --date-to")
	}
	return from, to, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday,
	"wed": time.Wednesday, "thu": time.Thursday, "fri": time.Friday,
	"sat": time.Saturday,
}

func parseBusinessWindow(hoursSpec string, weekdays []string) (analysis.BusinessWindow, error) {
	window := analysis.DefaultBusinessWindow()

	if hoursSpec != "" {
		start, end, ok := strings.Cut(hoursSpec, "-")
		if !ok {
			return window, fmt.Errorf("invalid --business-hours %q, want START-END", hoursSpec)
		}
		startHour, err := strconv.Atoi(strings.TrimSpace(start))
		if err != nil {
			return window, fmt.Errorf("invalid --business-hours %q: %w", hoursSpec, err)
		}
		endHour, err := strconv.Atoi(strings.TrimSpace(end))
		if err != nil {
			return window, fmt.Errorf("invalid --business-hours %q: %w", hoursSpec, err)
		}
		window.StartHour = startHour
		window.EndHour = endHour
	}

	if len(weekdays) > 0 {
		days := make(map[time.Weekday]bool, len(weekdays))
		for _, name := range weekdays {
			key := strings.ToLower(strings.TrimSpace(name))
			if len(key) > 3 {
				key = key[:3]
			}
			day, ok := weekdayNames[key]
			if !ok {
				return window, fmt.Errorf("invalid --business-days entry %q", name)
			}
			days[day] = true
		}
		window.Weekdays = days
	}

	if err := window.Validate(); err != nil {
		return window, err
	}
	return window, nil
}
