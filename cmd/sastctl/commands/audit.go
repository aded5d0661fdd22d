package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sastops/sastctl/internal/report"
	"github.com/sastops/sastctl/pkg/snyk"
)

// NewAuditCommand creates the audit command.
func NewAuditCommand() *cobra.Command {
	var (
		groupID      string
		reportPrefix string
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit SAST settings across a group",
		Long: `Audit every organization of a Snyk group: whether Snyk Code (SAST) is
enabled, and which SAST projects exist where it is. Optionally writes the
result as JSON and CSV report files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gid, err := resolveGroupID(groupID)
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			audit, err := runAudit(context.Background(), client, gid)
			if err != nil {
				return err
			}

			if reportPrefix != "" {
				if err := writeReportFiles(audit, reportPrefix); err != nil {
					return err
				}
			}

			return renderAudit(audit)
		},
	}

	cmd.Flags().StringVarP(&groupID, "group-id", "g", "", "Snyk group ID to audit")
	cmd.Flags().StringVarP(&reportPrefix, "report", "o", "", "write <prefix>.json and <prefix>.csv report files")

	return cmd
}

func runAudit(ctx context.Context, client snyk.Client, groupID string) (*report.Audit, error) {
	orgs, err := client.Organizations().List(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	audit := report.New(groupID)

	for _, org := range orgs {
		settings, err := client.SastSettings().Get(ctx, org.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get SAST settings for '%s': %w", org.Name, err)
		}

		var projects []snyk.Project

		if settings.SastEnabled {
			projects, err = client.Projects().List(ctx, org.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to list projects for '%s': %w", org.Name, err)
			}
		}

		audit.Add(org, settings, projects)
	}

	return audit, nil
}

func writeReportFiles(audit *report.Audit, prefix string) error {
	jsonPath := prefix + ".json"
	if err := audit.WriteJSON(jsonPath); err != nil {
		return err
	}

	csvPath := prefix + ".csv"
	if err := audit.WriteCSV(csvPath); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Reports written: %s, %s\n", jsonPath, csvPath)

	return nil
}

func renderAudit(audit *report.Audit) error {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		return StandardJSONRenderer(audit)
	case OutputFormatYAML:
		return StandardYAMLRenderer(audit)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Organization", "ID", "SAST", "SAST Projects")

		for _, org := range audit.Organizations {
			_ = table.Append(org.Name, org.ID, enabledWord(org.SastEnabled), strconv.Itoa(len(org.SastProjects)))
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		_, _ = fmt.Fprintf(os.Stdout, "\n%d organizations: %d SAST enabled, %d disabled, %d SAST projects\n",
			audit.Metadata.TotalOrgs,
			audit.Metadata.SastEnabledCount,
			audit.Metadata.SastDisabledCount,
			audit.Metadata.TotalSastProjects)

		return nil
	}
}
