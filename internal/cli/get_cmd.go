package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dawiddutoit/jira-tool/internal/cli/formatter"
)

func newGetCmd(app *App) *cobra.Command {
	var asJSON, withChangelog bool

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Show a single issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.NewClient()
			if err != nil {
				return err
			}

			var expand []string
			if withChangelog {
				expand = append(expand, "changelog")
			}

			issue, err := client.Issue(context.Background(), args[0], expand...)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(issue)
			}

			fmt.Println(formatter.FormatIssue(*issue))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw issue as JSON")
	cmd.Flags().BoolVar(&withChangelog, "changelog", false, "Include the issue changelog")

	return cmd
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user and server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.NewClient()
			if err != nil {
				return err
			}
			ctx := context.Background()

			me, err := client.Myself(ctx)
			if err != nil {
				return err
			}
			info, err := client.ServerInfo(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("%s <%s>\n", me.DisplayName, me.EmailAddress)
			fmt.Printf("%s (Jira %s)\n", info.BaseURL, info.Version)
			return nil
		},
	}
}
