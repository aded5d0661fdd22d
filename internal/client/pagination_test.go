package client_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestPaginationWalk(t *testing.T) {
	t.Parallel()
	t.Run("next link shapes resolve to the same page", func(t *testing.T) {
		t.Parallel()

		shapes := []struct {
			name string
			next func(serverURL string) string
		}{
			{
				name: "absolute",
				next: func(serverURL string) string {
					return serverURL + "/rest/orgs/" + testOrgID + "/projects?starting_after=cursor-1"
				},
			},
			{
				name: "rest rooted",
				next: func(serverURL string) string {
					return "/rest/orgs/" + testOrgID + "/projects?starting_after=cursor-1"
				},
			},
			{
				name: "resource rooted",
				next: func(serverURL string) string {
					return "/orgs/" + testOrgID + "/projects?starting_after=cursor-1"
				},
			},
		}

		for _, shape := range shapes {
			t.Run(shape.name, func(t *testing.T) {
				t.Parallel()

				var secondPagePath atomic.Value

				mux := http.NewServeMux()
				server := httptest.NewServer(mux)
				defer server.Close()

				mux.HandleFunc("/rest/orgs/"+testOrgID+"/projects", func(writer http.ResponseWriter, request *http.Request) {
					if request.URL.Query().Get("starting_after") == "cursor-1" {
						secondPagePath.Store(request.URL.Path + "?" + request.URL.RawQuery)
						writePage(writer, "", projectItem("proj-2", "backend", "sast"))

						return
					}

					writePage(writer, shape.next(server.URL), projectItem("proj-1", "frontend", "sast"))
				})

				c := newTestClient(t, server)

				projects, err := c.Projects().List(context.Background(), testOrgID)
				require.NoError(t, err)
				require.Len(t, projects, 2)
				assert.Equal(t, "proj-1", projects[0].ID)
				assert.Equal(t, "proj-2", projects[1].ID)

				path, ok := secondPagePath.Load().(string)
				require.True(t, ok)
				assert.Equal(t, "/rest/orgs/"+testOrgID+"/projects?starting_after=cursor-1", path)
			})
		}
	})

	t.Run("terminates when pages repeat", func(t *testing.T) {
		t.Parallel()

		var requests int32

		mux := http.NewServeMux()
		server := httptest.NewServer(mux)
		defer server.Close()

		mux.HandleFunc("/rest/orgs/"+testOrgID+"/projects", func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&requests, 1)

			// Malformed listing: the next link points back at this page.
			next := "/rest/orgs/" + testOrgID + "/projects?starting_after=loop"
			writePage(writer, next, projectItem(fmt.Sprintf("proj-%d", atomic.LoadInt32(&requests)), "app", "sast"))
		})

		c := newTestClient(t, server)

		projects, err := c.Projects().List(context.Background(), testOrgID)
		require.NoError(t, err)
		assert.Len(t, projects, 2)
		assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	})

	t.Run("mid-walk 404 truncates instead of failing", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		server := httptest.NewServer(mux)
		defer server.Close()

		mux.HandleFunc("/rest/orgs/"+testOrgID+"/projects", func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Query().Get("starting_after") == "cursor-1" {
				writer.WriteHeader(http.StatusNotFound)

				return
			}

			next := "/rest/orgs/" + testOrgID + "/projects?starting_after=cursor-1"
			writePage(writer, next, projectItem("proj-1", "frontend", "sast"))
		})

		c := newTestClient(t, server)

		projects, err := c.Projects().List(context.Background(), testOrgID)
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "proj-1", projects[0].ID)
	})

	t.Run("throttled page is retried after the advised wait", func(t *testing.T) {
		t.Parallel()

		var requests int32

		mux := http.NewServeMux()
		server := httptest.NewServer(mux)
		defer server.Close()

		mux.HandleFunc("/rest/orgs/"+testOrgID+"/projects", func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&requests, 1) == 1 {
				writer.Header().Set("Retry-After", "1")
				writer.WriteHeader(http.StatusTooManyRequests)

				return
			}

			writePage(writer, "", projectItem("proj-1", "frontend", "sast"))
		})

		c := newTestClient(t, server)

		start := time.Now()

		projects, err := c.Projects().List(context.Background(), testOrgID)
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
		assert.GreaterOrEqual(t, time.Since(start), 1*time.Second)
	})

	t.Run("cancellation stops the walk", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		server := httptest.NewServer(mux)
		defer server.Close()

		mux.HandleFunc("/rest/orgs/"+testOrgID+"/projects", func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Retry-After", "30")
			writer.WriteHeader(http.StatusTooManyRequests)
		})

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		c := newTestClient(t, server)

		_, err := c.Projects().List(ctx, testOrgID)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
