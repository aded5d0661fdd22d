package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sastops/sastctl/internal/report"
	"github.com/sastops/sastctl/pkg/snyk"
)

// NewSastCommand creates the sast command group.
func NewSastCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sast",
		Short: "Manage Snyk Code (SAST) settings",
		Long:  "Show and toggle the Snyk Code (SAST) setting of organizations",
	}

	cmd.AddCommand(newSastStatusCommand())
	cmd.AddCommand(newSastToggleCommand(true))
	cmd.AddCommand(newSastToggleCommand(false))

	return cmd
}

func newSastStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status ORG_ID",
		Short: "Show an organization's SAST settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			settings, err := client.SastSettings().Get(context.Background(), args[0])
			if err != nil {
				return err
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return StandardJSONRenderer(settings)
			case OutputFormatYAML:
				return StandardYAMLRenderer(settings)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Setting", "Value")
				_ = table.Append("SAST", enabledWord(settings.SastEnabled))
				_ = table.Append("Autofix", enabledWord(settings.AutofixEnabled))
				_ = table.Append("Autofix PRs", enabledWord(settings.AutofixPullRequests))

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			}
		},
	}
}

func newSastToggleCommand(enable bool) *cobra.Command {
	var (
		fromReport string
		force      bool
	)

	verb := "enable"
	if !enable {
		verb = "disable"
	}

	cmd := &cobra.Command{
		Use:   verb + " [ORG_ID...]",
		Short: fmt.Sprintf("%s SAST for one or more organizations", verb),
		Long: fmt.Sprintf(`%s Snyk Code (SAST) for the given organizations. Organization IDs are
taken from the arguments, or from a previous audit report via --from-report.`, verb),
		RunE: func(cmd *cobra.Command, args []string) error {
			orgs, err := collectOrganizations(args, fromReport)
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			return toggleSast(context.Background(), client, orgs, enable, force)
		},
	}

	cmd.Flags().StringVar(&fromReport, "from-report", "", "read organization IDs from a JSON audit report")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompts")

	return cmd
}

// collectOrganizations merges explicit IDs with the organizations of an
// audit report, if one was given.
func collectOrganizations(args []string, fromReport string) ([]snyk.Organization, error) {
	orgs := make([]snyk.Organization, 0, len(args))
	for _, id := range args {
		orgs = append(orgs, snyk.Organization{ID: id})
	}

	if fromReport != "" {
		fromFile, err := report.ReadOrganizations(fromReport)
		if err != nil {
			return nil, err
		}

		orgs = append(orgs, fromFile...)
	}

	if len(orgs) == 0 {
		return nil, ErrNoOrganizations
	}

	return orgs, nil
}

func toggleSast(ctx context.Context, client snyk.Client, orgs []snyk.Organization, enable, force bool) error {
	var succeeded, failed int

	for _, org := range orgs {
		label := org.Name
		if label == "" {
			label = org.ID
		}

		if !force && !confirm(fmt.Sprintf("Really %s SAST for organization '%s'?", enabledVerb(enable), label)) {
			_, _ = os.Stdout.WriteString("Skipped\n")

			continue
		}

		_, err := client.SastSettings().SetEnabled(ctx, org.ID, enable, org.Name)
		if err != nil {
			failed++

			_, _ = fmt.Fprintf(os.Stderr, "Failed for '%s': %v\n", label, err)

			continue
		}

		succeeded++

		_, _ = fmt.Fprintf(os.Stdout, "SAST %sd for '%s'\n", enabledVerb(enable), label)
	}

	_, _ = fmt.Fprintf(os.Stdout, "\nDone: %d succeeded, %d failed\n", succeeded, failed)

	if failed > 0 {
		return fmt.Errorf("failed to update %d of %d organizations", failed, len(orgs))
	}

	return nil
}

func enabledVerb(enable bool) string {
	if enable {
		return "enable"
	}

	return "disable"
}
