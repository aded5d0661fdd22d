// Package snyk provides types, interfaces, and error helpers for working with
// the Snyk API across both of its generations: the legacy v1 RPC endpoints
// and the cursor-paginated REST (JSON:API) endpoints.
//
// # Overview
//
// The snyk package defines the domain types (Organization, Project,
// SastSettings) and the interfaces for resource-oriented clients
// (OrganizationsClient, SastSettingsClient, ProjectsClient). A concrete
// implementation is provided by the snykclient package, which wires
// configuration, transport, retries, and pagination. Most consumers should
// import snykclient to construct a client and then interact with the resource
// client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/sastops/sastctl/pkg/snyk"
//	  "github.com/sastops/sastctl/pkg/snykclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := snykclient.New(&snyk.Config{Token: "..."})
//	  if err != nil { log.Fatal(err) }
//
//	  orgs, err := cli.Organizations().List(ctx, "9a3e5d90-b782-468a-a042-9a2073736f0b")
//	  if err != nil { log.Fatal(err) }
//	  _ = orgs
//	}
//
// # Errors
//
// Failures are reported through a small taxonomy of typed errors:
// InvalidArgumentError, NotFoundError, RateLimitError, TransportError,
// RequestError, and OperationError. Helpers such as IsNotFound and
// IsRateLimited make it easy to branch on the common cases without type
// assertions.
package snyk
