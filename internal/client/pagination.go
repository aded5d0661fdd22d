package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	internalhttp "github.com/sastops/sastctl/internal/http"
	"github.com/sastops/sastctl/pkg/snyk"
)

const (
	// pageFetchDelay spaces out successive page fetches to stay friendly
	// with the vendor's rate limits.
	pageFetchDelay = 100 * time.Millisecond

	// rateLimitMargin is added on top of the server's advised wait.
	rateLimitMargin = 500 * time.Millisecond

	// defaultRateLimitWait is used when a throttled response carries no
	// Retry-After value.
	defaultRateLimitWait = 1 * time.Second

	// maxPagesPerListing bounds a single walk. Combined with the visited
	// URL set it guarantees termination on malformed next links.
	maxPagesPerListing = 1000

	// maxRateLimitRounds bounds walker-level retries of a throttled page,
	// on top of the transport's own retries.
	maxRateLimitRounds = 3

	// defaultPageLimit is the page size requested from listing endpoints.
	defaultPageLimit = "100"

	restPathPrefix = "/rest"
)

// listingPage is the JSON:API envelope shared by all REST listing endpoints.
// Items are kept raw so each resource client can decode its own shape.
type listingPage struct {
	Data  []json.RawMessage `json:"data"`
	Links snyk.PageLinks    `json:"links"`
}

// fetchAllPages drains a cursor-paginated listing starting at seedURL and
// returns the concatenated items in page order.
//
// A 404 at any point is treated as the end of the data rather than an error,
// so callers always see either a complete or a cleanly truncated listing.
// Each visited URL is recorded and never fetched twice, which terminates
// walks whose next links cycle.
func (c *Client) fetchAllPages(ctx context.Context, seedURL string) ([]json.RawMessage, error) {
	var items []json.RawMessage

	visited := make(map[string]struct{})
	pageURL := seedURL

	for pageURL != "" && len(visited) < maxPagesPerListing {
		if _, ok := visited[pageURL]; ok {
			break
		}

		visited[pageURL] = struct{}{}

		if len(visited) > 1 {
			if err := sleepContext(ctx, pageFetchDelay); err != nil {
				return nil, err
			}
		}

		resp, err := c.fetchPage(ctx, pageURL)
		if err != nil {
			if snyk.IsNotFound(err) {
				return items, nil
			}

			return nil, err
		}

		var page listingPage
		if err := json.Unmarshal(resp.Body, &page); err != nil {
			return nil, fmt.Errorf("failed to parse listing page: %w", err)
		}

		items = append(items, page.Data...)
		pageURL = c.nextPageURL(page.Links.Next)
	}

	return items, nil
}

// fetchPage fetches a single page, waiting out rate limits. When the
// transport reports a throttle that survived its own retries, the walker
// sleeps for the advised duration plus a margin and retries the same URL.
func (c *Client) fetchPage(ctx context.Context, pageURL string) (*internalhttp.Response, error) {
	for round := 0; ; round++ {
		resp, err := c.httpClient.Get(ctx, pageURL, nil, c.restHeaders())

		var rateErr *snyk.RateLimitError
		if err == nil || !errors.As(err, &rateErr) || round >= maxRateLimitRounds {
			return resp, err
		}

		wait := rateErr.RetryAfter
		if wait <= 0 {
			wait = defaultRateLimitWait
		}

		if c.logger != nil {
			c.logger.Warn("rate limited, backing off", map[string]interface{}{
				"url":  pageURL,
				"wait": (wait + rateLimitMargin).String(),
			})
		}

		if err := sleepContext(ctx, wait+rateLimitMargin); err != nil {
			return nil, err
		}
	}
}

// nextPageURL resolves a next link into an absolute URL. The vendor returns
// next links in three shapes depending on which service produced the page:
// absolute, rooted at the REST path prefix, or rooted at the resource path.
func (c *Client) nextPageURL(next string) string {
	switch {
	case next == "":
		return ""
	case strings.HasPrefix(next, "http://") || strings.HasPrefix(next, "https://"):
		return next
	case next == restPathPrefix || strings.HasPrefix(next, restPathPrefix+"/") || strings.HasPrefix(next, restPathPrefix+"?"):
		return c.restBase + strings.TrimPrefix(next, restPathPrefix)
	case strings.HasPrefix(next, "/"):
		return c.restBase + next
	default:
		return c.restBase + "/" + next
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
