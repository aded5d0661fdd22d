// Package client implements the snyk.Client interface against the real
// Snyk API, covering both the legacy v1 endpoints and the REST (JSON:API)
// endpoints.
package client

import (
	"net/url"
	"strings"

	"github.com/google/uuid"

	internalhttp "github.com/sastops/sastctl/internal/http"
	"github.com/sastops/sastctl/pkg/snyk"
)

// Client is the concrete Snyk API client.
type Client struct {
	httpClient *internalhttp.Client
	apiBase    string
	restBase   string
	apiVersion string
	logger     snyk.Logger

	organizations *OrganizationsClient
	sastSettings  *SastSettingsClient
	projects      *ProjectsClient
}

// New creates a new client from the given configuration.
func New(config *snyk.Config) (*Client, error) {
	if config == nil {
		return nil, snyk.ErrConfigRequired
	}

	if config.Token == "" {
		return nil, snyk.ErrTokenRequired
	}

	apiVersion := config.APIVersion
	if apiVersion == "" {
		apiVersion = snyk.DefaultAPIVersion
	}

	client := &Client{
		httpClient: internalhttp.NewClient(config.Token, httpOptions(config)...),
		apiBase:    normalizeBaseURL(config.APIBaseURL, snyk.DefaultAPIBaseURL),
		restBase:   normalizeBaseURL(config.RESTBaseURL, snyk.DefaultRESTBaseURL),
		apiVersion: apiVersion,
		logger:     config.Logger,
	}

	client.organizations = NewOrganizationsClient(client)
	client.sastSettings = NewSastSettingsClient(client)
	client.projects = NewProjectsClient(client)

	return client, nil
}

// Organizations returns the organizations resource client.
func (c *Client) Organizations() snyk.OrganizationsClient {
	return c.organizations
}

// SastSettings returns the SAST settings resource client.
func (c *Client) SastSettings() snyk.SastSettingsClient {
	return c.sastSettings
}

// Projects returns the projects resource client.
func (c *Client) Projects() snyk.ProjectsClient {
	return c.projects
}

func httpOptions(config *snyk.Config) []internalhttp.Option {
	opts := []internalhttp.Option{}

	if config.Logger != nil {
		opts = append(opts, internalhttp.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, internalhttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		opts = append(opts, internalhttp.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax != 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		opts = append(opts, internalhttp.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, internalhttp.WithTimeout(config.HTTPTimeout))
	}

	return opts
}

func normalizeBaseURL(base, fallback string) string {
	if base == "" {
		return fallback
	}

	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	return strings.TrimRight(base, "/")
}

// restURL joins a path onto the REST API base.
func (c *Client) restURL(path string) string {
	return c.restBase + path
}

// versionQuery returns the pinned API version as query parameters.
func (c *Client) versionQuery() url.Values {
	return url.Values{"version": []string{c.apiVersion}}
}

// restHeaders returns the content negotiation headers of the REST API.
func (c *Client) restHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/vnd.api+json",
		"Accept":       "application/vnd.api+json",
	}
}

// v1Headers returns the content negotiation headers of the legacy v1 API.
func (c *Client) v1Headers() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
}

// validateID rejects identifiers that are not UUIDs before any request is
// built. The vendor uses UUIDs for group, organization, and project IDs.
func validateID(field, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return &snyk.InvalidArgumentError{Field: field, Value: value}
	}

	return nil
}
