package main

import (
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/dawiddutoit/jira-tool/internal/cli"
	"github.com/dawiddutoit/jira-tool/internal/config"
	"github.com/dawiddutoit/jira-tool/internal/db"
	"github.com/dawiddutoit/jira-tool/internal/jira"
	"github.com/dawiddutoit/jira-tool/internal/snapshot"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()

	logger := charmlog.New(os.Stderr)

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return fmt.Errorf("resolving database path: %w", err)
	}
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	app := &cli.App{
		Config:    &cfg,
		Log:       logger,
		Snapshots: snapshot.NewStore(database),
	}

	// Credentials are only checked when a command actually needs the
	// API, so local analysis and snapshot management work offline.
	app.NewClient = func() (*jira.Client, error) {
		if err := cfg.ValidateCredentials(); err != nil {
			return nil, err
		}
		var observer jira.Observer = jira.NoopObserver{}
		if cfg.LogCalls {
			observer = jira.NewLogObserver(logger)
		}
		return jira.NewClient(jira.Config{
			BaseURL:    cfg.BaseURL,
			Username:   cfg.Username,
			APIToken:   cfg.APIToken,
			TimeoutMs:  cfg.TimeoutMs,
			MaxRetries: cfg.MaxRetries,
		}, observer), nil
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
