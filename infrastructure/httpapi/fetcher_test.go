package httpapi //nolint:testpackage // tests unexported functions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/bulkclone/domain"
)

func githubPlatformFor(t *testing.T, baseURL string) Platform {
	t.Helper()

	platform, err := ResolvePlatform(PlatformGitHub, "token")
	require.NoError(t, err)
	platform.BaseURL = baseURL
	return platform
}

func TestFetchAll(t *testing.T) {
	t.Parallel()

	t.Run("should concatenate all pages in page order", func(t *testing.T) {
		t.Parallel()

		// given: 3 pages of 100, 100 and 37 elements linked together
		pageSizes := []int{100, 100, 37}
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			if page == 0 {
				page = 1
			}

			if page < len(pageSizes) {
				w.Header().Set("Link", fmt.Sprintf(`<%s/items?page=%d>; rel="next"`, server.URL, page+1))
			}

			items := make([]int, pageSizes[page-1])
			for i := range items {
				items[i] = (page-1)*100 + i
			}
			_ = json.NewEncoder(w).Encode(items)
		}))
		defer server.Close()
		platform := githubPlatformFor(t, server.URL)

		// when
		elements, err := NewFetcher(time.Minute).FetchAll(context.Background(), platform, server.URL+"/items")

		// then
		require.NoError(t, err)
		require.Len(t, elements, 237)
		var first, last int
		require.NoError(t, json.Unmarshal(elements[0], &first))
		require.NoError(t, json.Unmarshal(elements[236], &last))
		assert.Equal(t, 0, first)
		assert.Equal(t, 236, last)
	})

	t.Run("should return a single page when no next link is present", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"id": 1}, {"id": 2}]`))
		}))
		defer server.Close()
		platform := githubPlatformFor(t, server.URL)

		// when
		elements, err := NewFetcher(time.Minute).FetchAll(context.Background(), platform, server.URL+"/items")

		// then
		require.NoError(t, err)
		assert.Len(t, elements, 2)
	})

	t.Run("should send the platform auth header", func(t *testing.T) {
		t.Parallel()

		// given
		var received string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()
		platform := githubPlatformFor(t, server.URL)

		// when
		_, err := NewFetcher(time.Minute).FetchAll(context.Background(), platform, server.URL+"/items")

		// then
		require.NoError(t, err)
		assert.Equal(t, "token token", received)
	})

	t.Run("should fail with the status and body on a non-200 response", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message": "rate limited"}`))
		}))
		defer server.Close()
		platform := githubPlatformFor(t, server.URL)

		// when
		_, err := NewFetcher(time.Minute).FetchAll(context.Background(), platform, server.URL+"/items")

		// then
		var statusErr *domain.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusForbidden, statusErr.Code)
		assert.Contains(t, statusErr.Body, "rate limited")
	})

	t.Run("should fail on a body that is not JSON", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>nope</html>"))
		}))
		defer server.Close()
		platform := githubPlatformFor(t, server.URL)

		// when
		_, err := NewFetcher(time.Minute).FetchAll(context.Background(), platform, server.URL+"/items")

		// then
		assert.ErrorIs(t, err, domain.ErrInvalidJSON)
	})

	t.Run("should fail on a JSON body that is not an array", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"message": "not a list"}`))
		}))
		defer server.Close()
		platform := githubPlatformFor(t, server.URL)

		// when
		_, err := NewFetcher(time.Minute).FetchAll(context.Background(), platform, server.URL+"/items")

		// then
		assert.ErrorIs(t, err, domain.ErrNotArray)
	})

	t.Run("should fail on a null body instead of treating it as empty", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("null"))
		}))
		defer server.Close()
		platform := githubPlatformFor(t, server.URL)

		// when
		_, err := NewFetcher(time.Minute).FetchAll(context.Background(), platform, server.URL+"/items")

		// then
		assert.ErrorIs(t, err, domain.ErrNotArray)
	})
}

func TestFetchObject(t *testing.T) {
	t.Parallel()

	t.Run("should decode the object fields", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id": 7, "type": "Organization"}`))
		}))
		defer server.Close()
		platform := githubPlatformFor(t, server.URL)

		// when
		obj, err := NewFetcher(time.Minute).FetchObject(context.Background(), platform, server.URL+"/users/acme")

		// then
		require.NoError(t, err)
		id, ok := IDString(obj)
		require.True(t, ok)
		assert.Equal(t, "7", id)
	})

	t.Run("should fail on an array body", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[1, 2, 3]`))
		}))
		defer server.Close()
		platform := githubPlatformFor(t, server.URL)

		// when
		_, err := NewFetcher(time.Minute).FetchObject(context.Background(), platform, server.URL+"/users/acme")

		// then
		assert.ErrorIs(t, err, domain.ErrNotObject)
	})
}

func TestFirstString(t *testing.T) {
	t.Parallel()

	t.Run("should honor the candidate priority order", func(t *testing.T) {
		t.Parallel()

		// given
		obj := map[string]json.RawMessage{
			"name":      json.RawMessage(`"short"`),
			"full_path": json.RawMessage(`"group/sub"`),
		}

		// when
		value, ok := FirstString(obj, "full_path", "full_name", "name")

		// then
		require.True(t, ok)
		assert.Equal(t, "group/sub", value)
	})

	t.Run("should skip empty and non-string candidates", func(t *testing.T) {
		t.Parallel()

		// given
		obj := map[string]json.RawMessage{
			"full_path": json.RawMessage(`""`),
			"full_name": json.RawMessage(`42`),
			"name":      json.RawMessage(`"fallback"`),
		}

		// when
		value, ok := FirstString(obj, "full_path", "full_name", "name")

		// then
		require.True(t, ok)
		assert.Equal(t, "fallback", value)
	})

	t.Run("should report a miss when nothing matches", func(t *testing.T) {
		t.Parallel()

		// when
		_, ok := FirstString(map[string]json.RawMessage{}, "name")

		// then
		assert.False(t, ok)
	})
}
