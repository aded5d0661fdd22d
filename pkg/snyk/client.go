package snyk

import (
	"context"
	"time"
)

// Default endpoints and the pinned REST API version.
const (
	DefaultAPIBaseURL  = "https://api.snyk.io/v1"
	DefaultRESTBaseURL = "https://api.snyk.io/rest"
	DefaultAPIVersion  = "2024-05-24"
)

// Config holds the client configuration.
type Config struct {
	// Token is the Snyk API token (required).
	Token string

	// APIBaseURL overrides the legacy v1 API base URL.
	APIBaseURL string

	// RESTBaseURL overrides the REST API base URL.
	RESTBaseURL string

	// APIVersion overrides the pinned REST API version.
	APIVersion string

	// HTTPTimeout bounds each individual HTTP request.
	HTTPTimeout time.Duration

	// RetryMax is the number of transport-level retries. Zero selects the
	// default; a negative value disables retries.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Debug enables request/response logging through Logger.
	Debug bool

	// Logger receives structured log output. May be nil.
	Logger Logger

	// UserAgent overrides the default User-Agent header.
	UserAgent string
}

// Logger is the minimal structured logging interface the client writes to.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Client is the top-level interface for interacting with the Snyk API.
type Client interface {
	Organizations() OrganizationsClient
	SastSettings() SastSettingsClient
	Projects() ProjectsClient
}

// OrganizationsClient lists the organizations of a group.
type OrganizationsClient interface {
	// List returns all organizations of the group, preferring the REST API
	// and falling back to the legacy v1 API when the REST listing yields
	// nothing. An empty result from both generations is an error.
	List(ctx context.Context, groupID string) ([]Organization, error)

	// ListLegacy returns the group's organizations via the v1 API only.
	ListLegacy(ctx context.Context, groupID string) ([]Organization, error)
}

// SastSettingsClient reads and toggles an organization's Snyk Code settings.
type SastSettingsClient interface {
	// Get returns the organization's SAST settings. Organizations without a
	// settings object report SAST as disabled; read failures do the same
	// rather than surfacing an error.
	Get(ctx context.Context, orgID string) (*SastSettings, error)

	// SetEnabled toggles sast_enabled for the organization. The write is
	// skipped when the current state already matches. orgName is used in
	// diagnostics only and may be empty.
	SetEnabled(ctx context.Context, orgID string, enabled bool, orgName string) (bool, error)
}

// ProjectsClient lists and deletes an organization's SAST projects.
type ProjectsClient interface {
	// List returns the organization's SAST projects, with display names
	// sanitized for downstream table rendering.
	List(ctx context.Context, orgID string) ([]Project, error)

	// Delete removes a single project.
	Delete(ctx context.Context, orgID, projectID string) error
}
