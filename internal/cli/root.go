// Package cli wires the jira-tool commands.
package cli

import (
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dawiddutoit/jira-tool/internal/config"
	"github.com/dawiddutoit/jira-tool/internal/jira"
	"github.com/dawiddutoit/jira-tool/internal/snapshot"
)

// App holds the collaborators CLI commands run against. NewClient is
// called lazily so commands that never touch the tracker (local
// analysis, snapshot management) work without credentials.
type App struct {
	Config    *config.Config
	Log       *charmlog.Logger
	Snapshots *snapshot.Store

	NewClient func() (*jira.Client, error)

	// IsInteractive reports whether stdin is a terminal; interactive
	// prompts are skipped when it returns false.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// maxResults resolves a page-size flag: an explicit value wins,
// otherwise the configured default applies.
func (a *App) maxResults(n int) int {
	if n > 0 || a.Config == nil {
		return n
	}
	return a.Config.DefaultMaxResults
}

// NewRootCmd creates the top-level "jira-tool" command and registers
// all subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "jira-tool",
		Short:         "Jira Cloud client with state duration analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newGetCmd(app),
		newSearchCmd(app),
		newExportCmd(app),
		newCreateCmd(app),
		newUpdateCmd(app),
		newDeleteCmd(app),
		newCommentCmd(app),
		newTransitionsCmd(app),
		newProjectsCmd(app),
		newEpicsCmd(app),
		newEpicCmd(app),
		newAnalyzeCmd(app),
		newSnapshotCmd(app),
		newWhoamiCmd(app),
	)

	return root
}
