package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sastops/sastctl/pkg/snyk"
)

// SastSettingsClient implements snyk.SastSettingsClient.
type SastSettingsClient struct {
	core *Client
}

// NewSastSettingsClient creates a new SAST settings client.
func NewSastSettingsClient(core *Client) *SastSettingsClient {
	return &SastSettingsClient{core: core}
}

type sastSettingsAttributes struct {
	SastEnabled         bool `json:"sast_enabled"`
	AutofixEnabled      bool `json:"sast_autofix_enabled,omitempty"`
	AutofixPullRequests bool `json:"sast_autofix_pr_enabled,omitempty"`
}

type sastSettingsDocument struct {
	Data struct {
		Type       string                 `json:"type"`
		ID         string                 `json:"id,omitempty"`
		Attributes sastSettingsAttributes `json:"attributes"`
	} `json:"data"`
}

// Get returns the organization's SAST settings. An organization without a
// settings object, and any read failure, reports SAST as disabled rather
// than erroring; only a malformed organization ID is an error.
func (c *SastSettingsClient) Get(ctx context.Context, orgID string) (*snyk.SastSettings, error) {
	if err := validateID("organization ID", orgID); err != nil {
		return nil, err
	}

	settings, err := c.fetch(ctx, orgID)
	if err != nil {
		if c.core.logger != nil && !snyk.IsNotFound(err) {
			c.core.logger.Warn("failed to read sast settings, treating as disabled", map[string]interface{}{
				"org_id": orgID,
				"error":  err.Error(),
			})
		}

		return &snyk.SastSettings{}, nil
	}

	return settings, nil
}

func (c *SastSettingsClient) fetch(ctx context.Context, orgID string) (*snyk.SastSettings, error) {
	settingsURL := c.core.restURL("/orgs/" + orgID + "/settings/sast")

	resp, err := c.core.httpClient.Get(ctx, settingsURL, c.core.versionQuery(), c.core.restHeaders())
	if err != nil {
		return nil, err
	}

	var doc sastSettingsDocument
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse sast settings: %w", err)
	}

	return &snyk.SastSettings{
		SastEnabled:         doc.Data.Attributes.SastEnabled,
		AutofixEnabled:      doc.Data.Attributes.AutofixEnabled,
		AutofixPullRequests: doc.Data.Attributes.AutofixPullRequests,
	}, nil
}

type settingsState int

const (
	stateUnknown settingsState = iota
	stateSatisfied
	stateDiffers
)

// SetEnabled toggles sast_enabled for the organization. The current state is
// read first: if it already matches, the write is skipped and the call
// succeeds without a mutation. An unreadable current state never blocks the
// write. Returns true when the desired state holds after the call.
func (c *SastSettingsClient) SetEnabled(ctx context.Context, orgID string, enabled bool, orgName string) (bool, error) {
	if err := validateID("organization ID", orgID); err != nil {
		return false, err
	}

	if c.currentState(ctx, orgID, enabled) == stateSatisfied {
		return true, nil
	}

	payload := sastSettingsDocument{}
	payload.Data.Type = snyk.SastSettingsType
	payload.Data.ID = orgID
	payload.Data.Attributes = sastSettingsAttributes{SastEnabled: enabled}

	settingsURL := c.core.restURL("/orgs/" + orgID + "/settings/sast")

	_, err := c.core.httpClient.Patch(ctx, settingsURL, c.core.versionQuery(), &payload, c.core.restHeaders())
	if err != nil {
		// Some API versions reject a write that matches the current state
		// instead of accepting it as a no-op.
		if alreadyInDesiredState(err) {
			return true, nil
		}

		name := orgName
		if name == "" {
			name = orgID
		}

		return false, &snyk.OperationError{
			Op:         fmt.Sprintf("set sast_enabled=%t for organization %s", enabled, name),
			StatusCode: requestStatus(err),
			Detail:     requestDetail(err),
			Err:        err,
		}
	}

	return true, nil
}

// currentState classifies the organization's settings against the desired
// value. A missing settings object counts as disabled; any other read
// failure is unknown.
func (c *SastSettingsClient) currentState(ctx context.Context, orgID string, enabled bool) settingsState {
	settings, err := c.fetch(ctx, orgID)
	if err != nil {
		if snyk.IsNotFound(err) && !enabled {
			return stateSatisfied
		}

		return stateUnknown
	}

	if settings.SastEnabled == enabled {
		return stateSatisfied
	}

	return stateDiffers
}

func alreadyInDesiredState(err error) bool {
	detail := strings.ToLower(requestDetail(err))

	return strings.Contains(detail, "already enabled") || strings.Contains(detail, "already disabled")
}

func requestStatus(err error) int {
	var reqErr *snyk.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}

	return 0
}

func requestDetail(err error) string {
	var reqErr *snyk.RequestError
	if errors.As(err, &reqErr) {
		if detail := reqErr.Detail(); detail != "" {
			return detail
		}

		if len(reqErr.Errors) > 0 {
			return reqErr.Errors[0].Error()
		}
	}

	return ""
}
