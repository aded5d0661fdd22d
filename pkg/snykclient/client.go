// Package snykclient constructs concrete Snyk API clients.
//
// It is the main entry point of the module: it validates configuration,
// wires the HTTP transport with retries and logging, and returns the
// snyk.Client interface implemented by the internal client package.
package snykclient

import (
	"github.com/sastops/sastctl/internal/client"
	"github.com/sastops/sastctl/pkg/snyk"
)

// New creates a new Snyk API client from the given configuration.
func New(config *snyk.Config) (snyk.Client, error) {
	if config == nil {
		return nil, snyk.ErrConfigRequired
	}

	return client.New(config)
}

// NewWithToken creates a client with default endpoints and settings.
func NewWithToken(token string) (snyk.Client, error) {
	return New(&snyk.Config{Token: token})
}
