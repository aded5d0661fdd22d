package snyk

import "time"

// ProjectTypeSast is the vendor's project type for Snyk Code (SAST) targets.
const ProjectTypeSast = "sast"

// SastSettingsType is the JSON:API resource type of the SAST settings object.
const SastSettingsType = "sast_settings"

// Organization represents a Snyk organization within a group.
type Organization struct {
	ID      string `json:"id"                 yaml:"id"`
	Name    string `json:"name"               yaml:"name"`
	GroupID string `json:"group_id,omitempty" yaml:"group_id,omitempty"`
}

// SastSettings represents the Snyk Code configuration of an organization.
// Organizations that have never been configured report all fields false.
type SastSettings struct {
	SastEnabled         bool `json:"sast_enabled"            yaml:"sast_enabled"`
	AutofixEnabled      bool `json:"sast_autofix_enabled"    yaml:"sast_autofix_enabled"`
	AutofixPullRequests bool `json:"sast_autofix_pr_enabled" yaml:"sast_autofix_pr_enabled"`
}

// Project represents a Snyk project within an organization.
type Project struct {
	ID      string    `json:"id"      yaml:"id"`
	Name    string    `json:"name"    yaml:"name"`
	Type    string    `json:"type"    yaml:"type"`
	Created time.Time `json:"created" yaml:"created"`
	OrgID   string    `json:"org_id"  yaml:"org_id"`
}

// PageLinks holds the pagination links of a REST API listing page.
type PageLinks struct {
	Prev string `json:"prev,omitempty" yaml:"prev,omitempty"`
	Next string `json:"next,omitempty" yaml:"next,omitempty"`
}
