package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalhttp "github.com/sastops/sastctl/internal/http"
	"github.com/sastops/sastctl/pkg/snyk"
)

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/rest/orgs", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "token test-token", request.Header.Get("Authorization"))

			response := map[string]string{"id": "org-id", "name": "test-org"}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		client := internalhttp.NewClient("test-token")

		req := &internalhttp.Request{
			Method: "GET",
			URL:    server.URL + "/rest/orgs",
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result map[string]string

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, "org-id", result["id"])
		assert.Equal(t, "test-org", result["name"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/rest/orgs", request.URL.Path)
			assert.Equal(t, "2024-05-24", request.URL.Query().Get("version"))
			assert.Equal(t, "100", request.URL.Query().Get("limit"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := internalhttp.NewClient("test-token")

		req := &internalhttp.Request{
			Method: "GET",
			URL:    server.URL + "/rest/orgs",
			Query: url.Values{
				"version": []string{"2024-05-24"},
				"limit":   []string{"100"},
			},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("query parameters merge with URL query", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "abc", request.URL.Query().Get("starting_after"))
			assert.Equal(t, "2024-05-24", request.URL.Query().Get("version"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := internalhttp.NewClient("test-token")

		req := &internalhttp.Request{
			Method: "GET",
			URL:    server.URL + "/rest/orgs?starting_after=abc",
			Query:  url.Values{"version": []string{"2024-05-24"}},
		}

		_, err := client.Do(context.Background(), req)
		require.NoError(t, err)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "PATCH", request.Method)
			assert.Equal(t, "application/vnd.api+json", request.Header.Get("Content-Type"))

			var body map[string]interface{}

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Contains(t, body, "data")

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := internalhttp.NewClient("test-token")

		req := &internalhttp.Request{
			Method: "PATCH",
			URL:    server.URL + "/rest/orgs/org-id/settings/sast",
			Headers: map[string]string{
				"Content-Type": "application/vnd.api+json",
			},
			Body: map[string]interface{}{
				"data": map[string]interface{}{"type": "sast_settings"},
			},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("error response with JSON:API body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)

			response := snyk.ErrorDocument{
				Errors: []snyk.APIError{
					{
						Status: "404",
						Title:  "Not Found",
						Detail: "Org was not found",
					},
				},
			}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		client := internalhttp.NewClient("test-token")

		req := &internalhttp.Request{
			Method: "GET",
			URL:    server.URL + "/rest/orgs/invalid",
		}

		resp, err := client.Do(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		var reqErr *snyk.RequestError

		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, 404, reqErr.StatusCode)
		require.Len(t, reqErr.Errors, 1)
		assert.Equal(t, "Org was not found", reqErr.Errors[0].Detail)
	})

	t.Run("error response with legacy body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"code": 401, "message": "Invalid auth token provided"}`))
		}))
		defer server.Close()

		client := internalhttp.NewClient("bad-token")

		req := &internalhttp.Request{
			Method: "POST",
			URL:    server.URL + "/v1/group/group-id/orgs",
		}

		_, err := client.Do(context.Background(), req)
		require.Error(t, err)

		var reqErr *snyk.RequestError

		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, 401, reqErr.StatusCode)
		assert.Equal(t, "Invalid auth token provided", reqErr.Detail())
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "application/vnd.api+json", request.Header.Get("Accept"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := internalhttp.NewClient("test-token")

		req := &internalhttp.Request{
			Method: "GET",
			URL:    server.URL + "/rest/orgs",
			Headers: map[string]string{
				"Accept": "application/vnd.api+json",
			},
		}

		_, err := client.Do(context.Background(), req)
		require.NoError(t, err)
	})

	t.Run("debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := internalhttp.NewClient("test-token",
			internalhttp.WithLogger(logger),
			internalhttp.WithDebug(true))

		req := &internalhttp.Request{
			Method: "GET",
			URL:    server.URL + "/rest/orgs",
		}

		_, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP response", logger.logs[1]["msg"])
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Retries(t *testing.T) {
	t.Parallel()
	t.Run("retries server errors", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)

				return
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := internalhttp.NewClient("test-token",
			internalhttp.WithRetryConfig(3, 10*time.Millisecond, 50*time.Millisecond))

		resp, err := client.Get(context.Background(), server.URL+"/rest/orgs", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("wait overrides keep the default retry count", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&attempts, 1) == 1 {
				writer.WriteHeader(http.StatusInternalServerError)

				return
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := internalhttp.NewClient("test-token",
			internalhttp.WithRetryConfig(0, 5*time.Millisecond, 20*time.Millisecond))

		resp, err := client.Get(context.Background(), server.URL+"/rest/orgs", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.GreaterOrEqual(t, atomic.LoadInt32(&attempts), int32(2))
	})

	t.Run("honors Retry-After on throttled requests", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&attempts, 1) == 1 {
				writer.Header().Set("Retry-After", "1")
				writer.WriteHeader(http.StatusTooManyRequests)

				return
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := internalhttp.NewClient("test-token",
			internalhttp.WithRetryConfig(2, 10*time.Millisecond, 5*time.Second))

		start := time.Now()

		resp, err := client.Get(context.Background(), server.URL+"/rest/orgs", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
		assert.GreaterOrEqual(t, time.Since(start), 1*time.Second)
	})

	t.Run("maps exhausted throttling to RateLimitError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Retry-After", "7")
			writer.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := internalhttp.NewClient("test-token",
			internalhttp.WithRetryConfig(-1, 0, 0))

		_, err := client.Get(context.Background(), server.URL+"/rest/orgs", nil, nil)
		require.Error(t, err)

		var rateErr *snyk.RateLimitError

		require.ErrorAs(t, err, &rateErr)
		assert.Equal(t, 7*time.Second, rateErr.RetryAfter)
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := internalhttp.NewClient("test-token",
			internalhttp.WithRetryConfig(3, 10*time.Millisecond, 50*time.Millisecond))

		_, err := client.Get(context.Background(), server.URL+"/rest/orgs", nil, nil)
		require.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))

		var reqErr *snyk.RequestError

		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, 400, reqErr.StatusCode)
	})

	t.Run("maps connection failures to TransportError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		server.Close()

		client := internalhttp.NewClient("test-token",
			internalhttp.WithRetryConfig(1, 10*time.Millisecond, 20*time.Millisecond))

		_, err := client.Get(context.Background(), server.URL+"/rest/orgs", nil, nil)
		require.Error(t, err)

		var transportErr *snyk.TransportError

		require.True(t, errors.As(err, &transportErr))
		assert.True(t, snyk.IsTransportFailure(err))
	})
}

func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		call   func(client *internalhttp.Client, serverURL string) error
	}{
		{
			name:   "get",
			method: "GET",
			call: func(client *internalhttp.Client, serverURL string) error {
				_, err := client.Get(context.Background(), serverURL+"/x", nil, nil)

				return err
			},
		},
		{
			name:   "post",
			method: "POST",
			call: func(client *internalhttp.Client, serverURL string) error {
				_, err := client.Post(context.Background(), serverURL+"/x", nil, nil)

				return err
			},
		},
		{
			name:   "patch",
			method: "PATCH",
			call: func(client *internalhttp.Client, serverURL string) error {
				_, err := client.Patch(context.Background(), serverURL+"/x", nil, map[string]string{"a": "b"}, nil)

				return err
			},
		},
		{
			name:   "delete",
			method: "DELETE",
			call: func(client *internalhttp.Client, serverURL string) error {
				_, err := client.Delete(context.Background(), serverURL+"/x", nil, nil)

				return err
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, tc.method, request.Method)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := internalhttp.NewClient("test-token")
			require.NoError(t, tc.call(client, server.URL))
		})
	}
}
