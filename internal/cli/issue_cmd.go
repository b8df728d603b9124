package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/dawiddutoit/jira-tool/internal/adf"
	"github.com/dawiddutoit/jira-tool/internal/cli/formatter"
	"github.com/dawiddutoit/jira-tool/internal/jira"
)

func newCreateCmd(app *App) *cobra.Command {
	var (
		project     string
		issueType   string
		summary     string
		description string
		component   string
		priority    string
		epicKey     string
		parentKey   string
		labels      []string
		storyPoints int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an issue",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.NewClient()
			if err != nil {
				return err
			}
			if project == "" {
				project = app.Config.DefaultProject
			}
			if project == "" {
				return fmt.Errorf("no project given and JIRA_DEFAULT_PROJECT is unset")
			}
			if component == "" {
				component = app.Config.DefaultComponent
			}

			fields := map[string]any{
				"project":   map[string]any{"key": strings.ToUpper(project)},
				"issuetype": map[string]any{"name": issueType},
				"summary":   summary,
			}
			if priority != "" {
				fields["priority"] = map[string]any{"name": priority}
			}
			if len(labels) > 0 {
				fields["labels"] = labels
			}
			ctx := context.Background()
			if parentKey != "" {
				fields["parent"] = map[string]any{"key": parentKey}
			} else if epicKey != "" {
				// Company-managed projects link through the epic link
				// custom field; team-managed ones use parent.
				if fieldID, err := client.EpicLinkFieldID(ctx); err == nil && fieldID != "" {
					fields[fieldID] = epicKey
				} else {
					fields["parent"] = map[string]any{"key": epicKey}
				}
			}

			fields["description"] = buildDescription(issueType, summary, description, component, epicKey, parentKey, storyPoints)

			created, err := client.CreateIssue(ctx, fields)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s\n", created.Key)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key (default from config)")
	cmd.Flags().StringVar(&issueType, "type", "Task", "Issue type (Task, Story, Bug, Epic, Sub-task)")
	cmd.Flags().StringVar(&summary, "summary", "", "Issue summary")
	cmd.Flags().StringVar(&description, "description", "", "Description text")
	cmd.Flags().StringVar(&component, "component", "", "Component name (default from config)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority name")
	cmd.Flags().StringVar(&epicKey, "epic", "", "Parent epic key")
	cmd.Flags().StringVar(&parentKey, "parent", "", "Parent issue key (for sub-tasks)")
	cmd.Flags().StringSliceVar(&labels, "labels", nil, "Labels (comma separated)")
	cmd.Flags().IntVar(&storyPoints, "points", 0, "Story point estimate")
	_ = cmd.MarkFlagRequired("summary")

	return cmd
}

// buildDescription renders the structured ADF description for the
// issue type being created.
func buildDescription(issueType, summary, description, component, epicKey, parentKey string, storyPoints int) adf.Node {
	switch strings.ToLower(issueType) {
	case "epic":
		b := adf.NewEpicBuilder(summary, "P2", "", "")
		if description != "" {
			b.Description(description)
		}
		return b.Build()
	case "sub-task", "subtask":
		b := adf.NewSubtaskBuilder(summary, parentKey, 0)
		if description != "" {
			b.Description(description)
		}
		return b.Build()
	default:
		b := adf.NewIssueBuilder(summary, component, storyPoints, epicKey)
		if description != "" {
			b.Description(description)
		}
		return b.Build()
	}
}

func newUpdateCmd(app *App) *cobra.Command {
	var (
		summary        string
		description    string
		descriptionADF string
		assignee       string
		priority       string
		status         string
		labels         []string
	)

	cmd := &cobra.Command{
		Use:   "update KEY",
		Short: "Update fields on an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.NewClient()
			if err != nil {
				return err
			}
			ctx := context.Background()
			key := args[0]

			fields := map[string]any{}
			if summary != "" {
				fields["summary"] = summary
			}
			if description != "" {
				fields["description"] = adf.Simple(description)
			}
			if descriptionADF != "" {
				doc, err := readADFFile(descriptionADF)
				if err != nil {
					return err
				}
				fields["description"] = doc
			}
			if assignee != "" {
				fields["assignee"] = assigneeField(assignee)
			}
			if priority != "" {
				fields["priority"] = map[string]any{"name": priority}
			}
			if cmd.Flags().Changed("labels") {
				fields["labels"] = labels
			}

			if len(fields) == 0 && status == "" {
				return fmt.Errorf("nothing to update")
			}

			if len(fields) > 0 {
				if err := client.UpdateIssue(ctx, key, fields); err != nil {
					return err
				}
			}
			if status != "" {
				if err := transitionByName(ctx, client, key, status); err != nil {
					return err
				}
			}
			fmt.Printf("Updated %s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&summary, "summary", "", "New summary")
	cmd.Flags().StringVar(&description, "description", "", "New description text")
	cmd.Flags().StringVar(&descriptionADF, "description-adf", "", "File with an ADF document to use as the description")
	cmd.Flags().StringVar(&assignee, "assignee", "", "New assignee (email or account ID)")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority name")
	cmd.Flags().StringVar(&status, "status", "", "Move to this status via a matching transition")
	cmd.Flags().StringSliceVar(&labels, "labels", nil, "Replace labels (comma separated)")
	cmd.MarkFlagsMutuallyExclusive("description", "description-adf")

	return cmd
}

// assigneeField builds the assignee payload. Emails are recognized by
// the @; anything else is treated as an account ID.
func assigneeField(value string) map[string]any {
	if strings.Contains(value, "@") {
		return map[string]any{"emailAddress": value}
	}
	return map[string]any{"accountId": value}
}

// readADFFile loads a JSON file holding a prebuilt ADF document and
// validates its shape before it goes on the wire.
func readADFFile(path string) (*adf.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ADF file: %w", err)
	}
	var doc adf.Node
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse ADF file %s: %w", path, err)
	}
	if err := adf.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid ADF document in %s: %w", path, err)
	}
	return &doc, nil
}

// transitionByName finds the available transition whose name or target
// status matches (case-insensitively) and applies it.
func transitionByName(ctx context.Context, client *jira.Client, key, status string) error {
	transitions, err := client.Transitions(ctx, key)
	if err != nil {
		return err
	}
	for _, tr := range transitions {
		if strings.EqualFold(tr.Name, status) || strings.EqualFold(tr.To.Name, status) {
			return client.TransitionIssue(ctx, key, tr.ID, nil)
		}
	}
	names := make([]string, 0, len(transitions))
	for _, tr := range transitions {
		names = append(names, tr.To.Name)
	}
	return fmt.Errorf("no transition to %q from the current status; available: %s", status, strings.Join(names, ", "))
}

func newDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete KEY",
		Short: "Delete an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.NewClient()
			if err != nil {
				return err
			}
			key := args[0]

			if !yes {
				if !app.interactive() {
					return fmt.Errorf("refusing to delete %s without --yes in a non-interactive session", key)
				}
				confirmed := false
				form := huh.NewForm(huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Delete %s?", key)).
						Description("This cannot be undone.").
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

			if err := client.DeleteIssue(context.Background(), key); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", key)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}

func newCommentCmd(app *App) *cobra.Command {
	var (
		message string
		adfPath string
	)

	cmd := &cobra.Command{
		Use:   "comment KEY",
		Short: "Add a comment to an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.NewClient()
			if err != nil {
				return err
			}
			key := args[0]

			var body any
			switch {
			case adfPath != "":
				doc, err := readADFFile(adfPath)
				if err != nil {
					return err
				}
				body = doc
			case message != "":
				body = adf.Simple(message)
			default:
				if !app.interactive() {
					return fmt.Errorf("comment text is required in a non-interactive session")
				}
				var text string
				form := huh.NewForm(huh.NewGroup(
					huh.NewText().
						Title(fmt.Sprintf("Comment on %s", key)).
						Value(&text),
				))
				if err := form.Run(); err != nil {
					return err
				}
				if strings.TrimSpace(text) == "" {
					return fmt.Errorf("comment text is empty")
				}
				body = adf.Simple(text)
			}

			comment, err := client.AddComment(context.Background(), key, body)
			if err != nil {
				return err
			}
			fmt.Printf("Added comment %s to %s\n", comment.ID, key)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Comment text")
	cmd.Flags().StringVar(&adfPath, "adf", "", "File with an ADF document to post as the comment")
	cmd.MarkFlagsMutuallyExclusive("message", "adf")

	return cmd
}

func newTransitionsCmd(app *App) *cobra.Command {
	var apply string

	cmd := &cobra.Command{
		Use:   "transitions KEY",
		Short: "List or apply workflow transitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.NewClient()
			if err != nil {
				return err
			}
			ctx := context.Background()
			key := args[0]

			if apply != "" {
				if err := client.TransitionIssue(ctx, key, apply, nil); err != nil {
					return err
				}
				fmt.Printf("Transitioned %s\n", key)
				return nil
			}

			transitions, err := client.Transitions(ctx, key)
			if err != nil {
				return err
			}
			if len(transitions) == 0 {
				fmt.Println("No transitions available.")
				return nil
			}
			fmt.Println(formatter.FormatTransitionList(transitions))
			return nil
		},
	}

	cmd.Flags().StringVar(&apply, "apply", "", "Transition ID to apply")

	return cmd
}
