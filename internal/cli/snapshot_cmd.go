package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/dawiddutoit/jira-tool/internal/cli/formatter"
	"github.com/dawiddutoit/jira-tool/internal/jira"
)

func newSnapshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save and manage local issue snapshots",
		Long: `Snapshots store the raw issues a JQL query returned, changelogs
included, in the local database. Analyses can then be re-run against a
snapshot without touching the API.`,
	}
	cmd.AddCommand(
		newSnapshotSaveCmd(app),
		newSnapshotListCmd(app),
		newSnapshotShowCmd(app),
		newSnapshotDeleteCmd(app),
	)
	return cmd
}

func newSnapshotSaveCmd(app *App) *cobra.Command {
	var (
		jql   string
		label string
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Fetch issues and save them as a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.NewClient()
			if err != nil {
				return err
			}
			ctx := context.Background()

			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner("fetching issues")
			}
			resp, err := client.SearchAll(ctx, jira.SearchRequest{
				JQL:        jql,
				Fields:     []string{"summary", "status", "created"},
				Expand:     []string{"changelog"},
				MaxResults: app.maxResults(0),
			})
			stop()
			if err != nil {
				return err
			}
			if len(resp.RawIssues) == 0 {
				return fmt.Errorf("query matched no issues, nothing to save")
			}

			snap, err := app.Snapshots.Save(ctx, label, jql, resp.RawIssues)
			if err != nil {
				return err
			}
			fmt.Printf("Saved snapshot %s (%d issues)\n", snap.ID[:8], snap.IssueCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&jql, "jql", "", "JQL query to snapshot")
	cmd.Flags().StringVar(&label, "label", "", "Human-readable label")
	_ = cmd.MarkFlagRequired("jql")

	return cmd
}

func newSnapshotListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := app.Snapshots.List(context.Background())
			if err != nil {
				return err
			}
			fmt.Println(formatter.FormatSnapshotList(snaps))
			return nil
		},
	}
}

func newSnapshotShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a snapshot's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.Snapshots.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(formatter.FormatSnapshot(snap))
			return nil
		},
	}
}

func newSnapshotDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			snap, err := app.Snapshots.Get(ctx, args[0])
			if err != nil {
				return err
			}

			if !yes {
				if !app.interactive() {
					return fmt.Errorf("refusing to delete snapshot %s without --yes in a non-interactive session", snap.ID[:8])
				}
				confirmed := false
				form := huh.NewForm(huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Delete snapshot %s (%d issues)?", snap.ID[:8], snap.IssueCount)).
						Value(&confirmed),
				))
				if err := form.Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := app.Snapshots.Delete(ctx, snap.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted snapshot %s\n", snap.ID[:8])
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}
