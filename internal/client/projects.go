package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sastops/sastctl/pkg/snyk"
)

// ProjectsClient implements snyk.ProjectsClient.
type ProjectsClient struct {
	core *Client
}

// NewProjectsClient creates a new projects client.
func NewProjectsClient(core *Client) *ProjectsClient {
	return &ProjectsClient{core: core}
}

type projectResource struct {
	ID         string `json:"id"`
	Attributes struct {
		Name    string    `json:"name"`
		Type    string    `json:"type"`
		Created time.Time `json:"created"`
	} `json:"attributes"`
}

// List returns the organization's SAST projects in the order the API
// returned them. Projects of other types are dropped, and display names are
// sanitized for downstream table rendering.
func (c *ProjectsClient) List(ctx context.Context, orgID string) ([]snyk.Project, error) {
	if err := validateID("organization ID", orgID); err != nil {
		return nil, err
	}

	query := c.core.versionQuery()
	query.Set("limit", defaultPageLimit)

	seedURL := c.core.restURL("/orgs/" + orgID + "/projects?" + query.Encode())

	items, err := c.core.fetchAllPages(ctx, seedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]snyk.Project, 0, len(items))

	for _, item := range items {
		var resource projectResource
		if err := json.Unmarshal(item, &resource); err != nil {
			return nil, fmt.Errorf("failed to parse project: %w", err)
		}

		if resource.Attributes.Type != snyk.ProjectTypeSast {
			continue
		}

		projects = append(projects, snyk.Project{
			ID:      resource.ID,
			Name:    sanitizeProjectName(resource.Attributes.Name),
			Type:    resource.Attributes.Type,
			Created: resource.Attributes.Created,
			OrgID:   orgID,
		})
	}

	return projects, nil
}

// Delete removes a single project. Any failure, transport included, is
// reported as a failed operation.
func (c *ProjectsClient) Delete(ctx context.Context, orgID, projectID string) error {
	if err := validateID("organization ID", orgID); err != nil {
		return err
	}

	if err := validateID("project ID", projectID); err != nil {
		return err
	}

	deleteURL := c.core.restURL("/orgs/" + orgID + "/projects/" + projectID)

	_, err := c.core.httpClient.Delete(ctx, deleteURL, c.core.versionQuery(), c.core.restHeaders())
	if err != nil {
		return &snyk.OperationError{
			Op:         "delete project " + projectID,
			StatusCode: requestStatus(err),
			Detail:     requestDetail(err),
			Err:        err,
		}
	}

	return nil
}

// sanitizeProjectName replaces square brackets, which collide with the
// markup of downstream table renderers.
func sanitizeProjectName(name string) string {
	name = strings.ReplaceAll(name, "[", "(")

	return strings.ReplaceAll(name, "]", ")")
}
