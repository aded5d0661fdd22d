package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewProjectsCommand creates the projects command group.
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage SAST projects",
		Long:  "List and delete the Snyk Code (SAST) projects of an organization",
	}

	cmd.AddCommand(newProjectsListCommand())
	cmd.AddCommand(newProjectsDeleteCommand())

	return cmd
}

func newProjectsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list ORG_ID",
		Short: "List an organization's SAST projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			projects, err := client.Projects().List(context.Background(), args[0])
			if err != nil {
				return err
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return StandardJSONRenderer(projects)
			case OutputFormatYAML:
				return StandardYAMLRenderer(projects)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Name", "ID", "Created")

				for _, project := range projects {
					created := NotAvailable
					if !project.Created.IsZero() {
						created = project.Created.Format(time.RFC3339)
					}

					_ = table.Append(project.Name, project.ID, created)
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				_, _ = fmt.Fprintf(os.Stdout, "\n%d SAST projects\n", len(projects))

				return nil
			}
		},
	}
}

func newProjectsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete ORG_ID PROJECT_ID [PROJECT_ID...]",
		Short: "Delete SAST projects",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orgID := args[0]
			projectIDs := args[1:]

			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			var succeeded, failed int

			for _, projectID := range projectIDs {
				if !force && !confirm(fmt.Sprintf("Really delete project '%s'?", projectID)) {
					_, _ = os.Stdout.WriteString("Skipped\n")

					continue
				}

				if err := client.Projects().Delete(ctx, orgID, projectID); err != nil {
					failed++

					_, _ = fmt.Fprintf(os.Stderr, "Failed to delete '%s': %v\n", projectID, err)

					continue
				}

				succeeded++

				_, _ = fmt.Fprintf(os.Stdout, "Deleted project '%s'\n", projectID)
			}

			_, _ = fmt.Fprintf(os.Stdout, "\nDone: %d deleted, %d failed\n", succeeded, failed)

			if failed > 0 {
				return fmt.Errorf("failed to delete %d of %d projects", failed, len(projectIDs))
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompts")

	return cmd
}
