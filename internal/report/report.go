// Package report builds and serializes SAST audit reports.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sastops/sastctl/pkg/snyk"
)

// Metadata summarizes an audit run.
type Metadata struct {
	GeneratedAt       time.Time `json:"generated_at"`
	GroupID           string    `json:"group_id,omitempty"`
	TotalOrgs         int       `json:"total_orgs"`
	SastEnabledCount  int       `json:"sast_enabled_count"`
	SastDisabledCount int       `json:"sast_disabled_count"`
	TotalSastProjects int       `json:"total_sast_projects"`
}

// Organization is one audited organization with its SAST state.
type Organization struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	SastEnabled  bool           `json:"sast_enabled"`
	SastProjects []snyk.Project `json:"sast_projects"`
}

// Audit is a complete audit report.
type Audit struct {
	Metadata      Metadata       `json:"metadata"`
	Organizations []Organization `json:"organizations"`
}

// New creates an empty audit report for the given group.
func New(groupID string) *Audit {
	return &Audit{
		Metadata: Metadata{
			GeneratedAt: time.Now().UTC(),
			GroupID:     groupID,
		},
		Organizations: []Organization{},
	}
}

// Add records one organization's audit result and updates the counters.
func (a *Audit) Add(org snyk.Organization, settings *snyk.SastSettings, projects []snyk.Project) {
	if projects == nil {
		projects = []snyk.Project{}
	}

	enabled := settings != nil && settings.SastEnabled

	a.Organizations = append(a.Organizations, Organization{
		ID:           org.ID,
		Name:         org.Name,
		SastEnabled:  enabled,
		SastProjects: projects,
	})

	a.Metadata.TotalOrgs++
	a.Metadata.TotalSastProjects += len(projects)

	if enabled {
		a.Metadata.SastEnabledCount++
	} else {
		a.Metadata.SastDisabledCount++
	}
}

// WriteJSON writes the report as indented JSON.
func (a *Audit) WriteJSON(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// FlatRows flattens the report into spreadsheet rows, header first. Enabled
// organizations without projects and disabled organizations each still
// produce one row, so every audited organization is visible in the output.
func (a *Audit) FlatRows() [][]string {
	rows := [][]string{{
		"Organization Name", "Organization ID", "SAST Enabled",
		"Project Name", "Project ID", "Project Created",
	}}

	for _, org := range a.Organizations {
		if len(org.SastProjects) == 0 {
			rows = append(rows, []string{
				org.Name, org.ID, strconv.FormatBool(org.SastEnabled),
				"", "", "",
			})

			continue
		}

		for _, project := range org.SastProjects {
			rows = append(rows, []string{
				org.Name, org.ID, strconv.FormatBool(org.SastEnabled),
				project.Name, project.ID, project.Created.Format(time.RFC3339),
			})
		}
	}

	return rows
}

// WriteCSV writes the flattened report as CSV.
func (a *Audit) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(a.FlatRows()); err != nil {
		_ = file.Close()

		return fmt.Errorf("failed to write report: %w", err)
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		_ = file.Close()

		return fmt.Errorf("failed to write report: %w", err)
	}

	return file.Close()
}

// Read loads a JSON audit report from disk.
func Read(path string) (*Audit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var audit Audit
	if err := json.Unmarshal(data, &audit); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &audit, nil
}

// ReadOrganizations loads a JSON audit report and returns its organizations
// as domain records, for commands that operate on a previous audit.
func ReadOrganizations(path string) ([]snyk.Organization, error) {
	audit, err := Read(path)
	if err != nil {
		return nil, err
	}

	orgs := make([]snyk.Organization, 0, len(audit.Organizations))
	for _, org := range audit.Organizations {
		orgs = append(orgs, snyk.Organization{
			ID:      org.ID,
			Name:    org.Name,
			GroupID: audit.Metadata.GroupID,
		})
	}

	return orgs, nil
}
