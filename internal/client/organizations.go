package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/sastops/sastctl/pkg/snyk"
)

// OrganizationsClient implements snyk.OrganizationsClient.
type OrganizationsClient struct {
	core *Client
}

// NewOrganizationsClient creates a new organizations client.
func NewOrganizationsClient(core *Client) *OrganizationsClient {
	return &OrganizationsClient{core: core}
}

type organizationResource struct {
	ID         string `json:"id"`
	Attributes struct {
		Name    string `json:"name"`
		Slug    string `json:"slug"`
		GroupID string `json:"group_id"`
	} `json:"attributes"`
}

type legacyOrgList struct {
	Orgs []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"orgs"`
}

// List returns all organizations of the group. The REST listing is tried
// first; when it yields nothing the legacy v1 endpoint is consulted, which
// covers groups that predate the REST rollout. A group visible to neither
// generation is reported as not found.
func (c *OrganizationsClient) List(ctx context.Context, groupID string) ([]snyk.Organization, error) {
	if err := validateID("group ID", groupID); err != nil {
		return nil, err
	}

	query := c.core.versionQuery()
	query.Set("group_id", groupID)
	query.Set("limit", defaultPageLimit)

	seedURL := c.core.restURL("/orgs?" + query.Encode())

	items, err := c.core.fetchAllPages(ctx, seedURL)
	if err != nil {
		// Older groups answer 400 on the REST listing; treat it like the
		// walker's 404 handling and consult the legacy endpoint.
		var reqErr *snyk.RequestError
		if errors.As(err, &reqErr) && reqErr.StatusCode == 400 {
			return c.ListLegacy(ctx, groupID)
		}

		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	if len(items) == 0 {
		return c.ListLegacy(ctx, groupID)
	}

	orgs := make([]snyk.Organization, 0, len(items))

	for _, item := range items {
		var resource organizationResource
		if err := json.Unmarshal(item, &resource); err != nil {
			return nil, fmt.Errorf("failed to parse organization: %w", err)
		}

		org := snyk.Organization{
			ID:      resource.ID,
			Name:    resource.Attributes.Name,
			GroupID: resource.Attributes.GroupID,
		}

		if org.GroupID == "" {
			org.GroupID = groupID
		}

		orgs = append(orgs, org)
	}

	return orgs, nil
}

// ListLegacy returns the group's organizations via the v1 API only.
func (c *OrganizationsClient) ListLegacy(ctx context.Context, groupID string) ([]snyk.Organization, error) {
	if err := validateID("group ID", groupID); err != nil {
		return nil, err
	}

	listURL := c.core.apiBase + "/group/" + url.PathEscape(groupID) + "/orgs"

	resp, err := c.core.httpClient.Post(ctx, listURL, nil, c.core.v1Headers())
	if err != nil {
		var reqErr *snyk.RequestError
		if errors.As(err, &reqErr) && (reqErr.StatusCode == 404 || reqErr.StatusCode == 400) {
			return nil, &snyk.NotFoundError{Resource: "group", ID: groupID}
		}

		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	var list legacyOrgList
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse organization list: %w", err)
	}

	if len(list.Orgs) == 0 {
		return nil, &snyk.NotFoundError{Resource: "group", ID: groupID}
	}

	orgs := make([]snyk.Organization, 0, len(list.Orgs))
	for _, org := range list.Orgs {
		orgs = append(orgs, snyk.Organization{
			ID:      org.ID,
			Name:    org.Name,
			GroupID: groupID,
		})
	}

	return orgs, nil
}
