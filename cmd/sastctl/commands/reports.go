package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sastops/sastctl/internal/report"
)

// NewReportsCommand creates the reports command group.
func NewReportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Work with audit report files",
	}

	cmd.AddCommand(newReportsListCommand())
	cmd.AddCommand(newReportsShowCommand())

	return cmd
}

type reportFile struct {
	Name     string    `json:"name"     yaml:"name"`
	Size     int64     `json:"size"     yaml:"size"`
	Modified time.Time `json:"modified" yaml:"modified"`
}

func newReportsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [DIR]",
		Short: "List report files in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			files, err := findReportFiles(dir)
			if err != nil {
				return err
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return StandardJSONRenderer(files)
			case OutputFormatYAML:
				return StandardYAMLRenderer(files)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Name", "Size", "Modified")

				for _, file := range files {
					_ = table.Append(file.Name, strconv.FormatInt(file.Size, 10), file.Modified.Format(time.RFC3339))
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			}
		},
	}
}

func newReportsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Show a JSON audit report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audit, err := report.Read(args[0])
			if err != nil {
				return err
			}

			return renderAudit(audit)
		},
	}
}

// findReportFiles returns the JSON and CSV files of a directory, newest
// first.
func findReportFiles(dir string) ([]reportFile, error) {
	var files []reportFile

	for _, pattern := range []string{"*.json", "*.csv"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}

			files = append(files, reportFile{
				Name:     filepath.Base(match),
				Size:     info.Size(),
				Modified: info.ModTime(),
			})
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Modified.After(files[j].Modified)
	})

	return files, nil
}
