// Package http provides the HTTP transport used by the Snyk API client.
// It wraps hashicorp/go-retryablehttp with token auth, JSON encoding, and
// normalization of failures into the typed errors of the snyk package.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/sastops/sastctl/pkg/snyk"
)

const (
	defaultDialTimeout    = 5 * time.Second
	defaultRequestTimeout = 30 * time.Second
	defaultRetryMax       = 3
	defaultRetryWaitMin   = 1 * time.Second
	defaultRetryWaitMax   = 30 * time.Second
	defaultUserAgent      = "sastctl/1.0"
)

// Request represents a single API request.
type Request struct {
	Method  string
	URL     string
	Query   url.Values
	Headers map[string]string
	Body    interface{}
}

// Response represents an API response with a fully read body.
type Response struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
}

// Client is an HTTP client for the Snyk API.
type Client struct {
	retryClient *retryablehttp.Client
	token       string
	userAgent   string
	logger      snyk.Logger
	debug       bool
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets a structured logger for request and response logging.
func WithLogger(logger snyk.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryConfig overrides the retry policy. Zero retryMax keeps the
// default retry count; a negative retryMax disables retries entirely.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		switch {
		case retryMax < 0:
			c.retryClient.RetryMax = 0
		case retryMax > 0:
			c.retryClient.RetryMax = retryMax
		}

		if waitMin > 0 {
			c.retryClient.RetryWaitMin = waitMin
		}

		if waitMax > 0 {
			c.retryClient.RetryWaitMax = waitMax
		}
	}
}

// WithTimeout bounds each individual HTTP request, retries included per
// attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.retryClient.HTTPClient.Timeout = timeout
		}
	}
}

// NewClient creates a new HTTP client authenticating with the given token.
func NewClient(token string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = defaultRetryMax
	retryClient.RetryWaitMin = defaultRetryWaitMin
	retryClient.RetryWaitMax = defaultRetryWaitMax
	retryClient.Logger = nil

	// Hand back the last response instead of draining it so throttled and
	// failed responses can be mapped to typed errors below.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	retryClient.HTTPClient = &nethttp.Client{
		Timeout: defaultRequestTimeout,
		Transport: &nethttp.Transport{
			DialContext: (&net.Dialer{
				Timeout: defaultDialTimeout,
			}).DialContext,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	client := &Client{
		retryClient: retryClient,
		token:       token,
		userAgent:   defaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes a request and returns the response. Non-2xx statuses and
// exhausted retries are returned as typed errors from the snyk package.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL, err := buildURL(req.URL, req.Query)
	if err != nil {
		return nil, &snyk.TransportError{Op: "building request URL", Err: err}
	}

	var body []byte

	if req.Body != nil {
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, &snyk.TransportError{Op: "building request", Err: err}
	}

	httpReq.Header.Set("Authorization", "token "+c.token)
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	c.logRequest(req.Method, fullURL, body)

	start := time.Now()

	httpResp, err := c.retryClient.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		return nil, &snyk.TransportError{
			Op:  fmt.Sprintf("%s %s", req.Method, fullURL),
			Err: err,
		}
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &snyk.TransportError{
			Op:  fmt.Sprintf("reading response of %s %s", req.Method, fullURL),
			Err: err,
		}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       data,
	}

	c.logResponse(req.Method, fullURL, resp, time.Since(start))

	if resp.StatusCode >= 400 {
		return resp, c.responseError(resp)
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  nethttp.MethodGet,
		URL:     rawURL,
		Query:   query,
		Headers: headers,
	})
}

// Post performs a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, rawURL string, body interface{}, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  nethttp.MethodPost,
		URL:     rawURL,
		Headers: headers,
		Body:    body,
	})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, rawURL string, query url.Values, body interface{}, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  nethttp.MethodPatch,
		URL:     rawURL,
		Query:   query,
		Headers: headers,
		Body:    body,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, rawURL string, query url.Values, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  nethttp.MethodDelete,
		URL:     rawURL,
		Query:   query,
		Headers: headers,
	})
}

// responseError maps a non-2xx response to a typed error. Status 429 becomes
// a RateLimitError carrying the parsed Retry-After value; everything else
// becomes a RequestError with the parsed error objects attached.
func (c *Client) responseError(resp *Response) error {
	retryAfter := parseRetryAfter(resp.Headers.Get("Retry-After"))

	if resp.StatusCode == nethttp.StatusTooManyRequests {
		return &snyk.RateLimitError{RetryAfter: retryAfter}
	}

	return &snyk.RequestError{
		StatusCode: resp.StatusCode,
		RetryAfter: retryAfter,
		Errors:     parseErrorBody(resp.Body),
	}
}

// parseErrorBody extracts error objects from either API generation: the REST
// API's {"errors": [...]} envelope or the v1 API's flat {"message": ...}.
func parseErrorBody(body []byte) []snyk.APIError {
	if len(body) == 0 {
		return nil
	}

	var doc snyk.ErrorDocument
	if err := json.Unmarshal(body, &doc); err == nil && len(doc.Errors) > 0 {
		return doc.Errors
	}

	var legacy struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if err := json.Unmarshal(body, &legacy); err == nil {
		if legacy.Message != "" {
			return []snyk.APIError{{Detail: legacy.Message}}
		}

		if legacy.Error != "" {
			return []snyk.APIError{{Detail: legacy.Error}}
		}
	}

	return nil
}

// parseRetryAfter parses a Retry-After header given in seconds. Dates and
// garbage yield zero.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

func buildURL(rawURL string, query url.Values) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	if len(query) > 0 {
		merged := parsed.Query()
		for key, values := range query {
			for _, value := range values {
				merged.Add(key, value)
			}
		}

		parsed.RawQuery = merged.Encode()
	}

	return parsed.String(), nil
}

func (c *Client) logRequest(method, fullURL string, body []byte) {
	if !c.debug || c.logger == nil {
		return
	}

	fields := map[string]interface{}{
		"method": method,
		"url":    fullURL,
	}

	if len(body) > 0 {
		fields["body_bytes"] = len(body)
	}

	c.logger.Debug("HTTP request", fields)
}

func (c *Client) logResponse(method, fullURL string, resp *Response, elapsed time.Duration) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP response", map[string]interface{}{
		"method":   method,
		"url":      fullURL,
		"status":   resp.StatusCode,
		"duration": elapsed.String(),
	})
}
