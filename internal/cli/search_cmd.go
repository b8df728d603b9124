package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dawiddutoit/jira-tool/internal/cli/formatter"
	"github.com/dawiddutoit/jira-tool/internal/export"
	"github.com/dawiddutoit/jira-tool/internal/jira"
)

func newSearchCmd(app *App) *cobra.Command {
	var (
		maxResults int
		all        bool
		fields     []string
		expand     []string
		format     string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "search JQL",
		Short: "Search issues with JQL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.NewClient()
			if err != nil {
				return err
			}

			req := jira.SearchRequest{
				JQL:        args[0],
				Fields:     fields,
				Expand:     expand,
				MaxResults: app.maxResults(maxResults),
			}

			var resp *jira.SearchResponse
			if all {
				resp, err = client.SearchAll(context.Background(), req)
			} else {
				resp, err = client.Search(context.Background(), req)
			}
			if err != nil {
				return err
			}

			if len(resp.Issues) == 0 {
				fmt.Println("No issues found.")
				return nil
			}
			if !all && !resp.IsLast {
				fmt.Println(formatter.Dim(fmt.Sprintf("Retrieved %d results (more available); add --all to fetch everything", len(resp.Issues))))
			}

			if format == export.FormatTable {
				fmt.Println(formatter.FormatIssueList(resp.Issues))
				fmt.Println(formatter.Dim(fmt.Sprintf("%d issues", len(resp.Issues))))
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
			}
			if err := export.Write(out, format, issues); err != nil {
				return err
			}
			if output != "" {
				fmt.Printf("Wrote %d issues to %s\n", len(issues), output)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxResults, "max", "n", 0, "Maximum results per page (default from config)")
	cmd.Flags().BoolVar(&all, "all", false, "Follow pagination and fetch every match")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "Fields to request (comma separated)")
	cmd.Flags().StringSliceVar(&expand, "expand", nil, "Expansions to request, e.g. changelog")
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatTable, "Output format: table, json, jsonl or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}

func newProjectsCmd(app *App) *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List visible projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.NewClient()
			if err != nil {
				return err
			}

			projects, err := client.Projects(context.Background(), recent)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Println("No projects found.")
				return nil
			}

			headers := []string{"KEY", "NAME"}
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{formatter.Bold(p.Key), p.Name})
			}
			fmt.Println(formatter.RenderTable(headers, rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 0, "Only the N most recently used projects")

	return cmd
}

func newEpicsCmd(app *App) *cobra.Command {
	var maxResults int

	cmd := &cobra.Command{
		Use:   "epics PROJECT",
		Short: "List a project's epics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.NewClient()
			if err != nil {
				return err
			}

			epics, err := client.Epics(context.Background(), strings.ToUpper(args[0]), maxResults)
			if err != nil {
				return err
			}
			if len(epics) == 0 {
				fmt.Println("No epics found.")
				return nil
			}

			fmt.Println(formatter.FormatIssueList(epics))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxResults, "max", 50, "Maximum epics to list")

	return cmd
}

func newEpicCmd(app *App) *cobra.Command {
	var withChildren bool

	cmd := &cobra.Command{
		Use:   "epic KEY",
		Short: "Show an epic, optionally with its child issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.NewClient()
			if err != nil {
				return err
			}
			ctx := context.Background()

			epic, err := client.Issue(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(formatter.FormatIssue(*epic))
			if !withChildren {
				return nil
			}

			// Children link through parent on team-managed projects and
			// the epic link field on company-managed ones.
			jql := fmt.Sprintf(`parent = %s OR "Epic Link" = %s ORDER BY created ASC`, epic.Key, epic.Key)
			children, err := client.SearchAll(ctx, jira.SearchRequest{JQL: jql})
			if err != nil {
				return err
			}
			if len(children.Issues) == 0 {
				fmt.Println("No child issues.")
				return nil
			}

			fmt.Println(formatter.Header("Children"))
			fmt.Println(formatter.FormatIssueList(children.Issues))
			return nil
		},
	}

	cmd.Flags().BoolVar(&withChildren, "children", false, "Also list the epic's child issues")

	return cmd
}
