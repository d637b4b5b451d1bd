package pixabay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-editor/pkg/client"
)

const sampleHits = `{
  "total": 2, "totalHits": 2,
  "hits": [
    {"id": 195893, "previewURL": "https://cdn.example/p1.jpg", "largeImageURL": "https://cdn.example/l1.jpg", "tags": "sunset, sea", "imageWidth": 4000, "imageHeight": 2250},
    {"id": 73424, "previewURL": "https://cdn.example/p2.jpg", "largeImageURL": "https://cdn.example/l2.jpg", "tags": "sunset, tree"}
  ]
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient("test-key", Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)
	return c, &calls
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("", Options{})
	assert.Error(t, err)
}

func TestSearchSendsExpectedRequest(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "red car", r.URL.Query().Get("q"))
		assert.Equal(t, "photo", r.URL.Query().Get("image_type"))
		fmt.Fprint(w, sampleHits)
	})

	results, err := c.Search(context.Background(), "  red car ")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	assert.Equal(t, 195893, results[0].ID)
	assert.Equal(t, "https://cdn.example/p1.jpg", results[0].PreviewURL)
	assert.Equal(t, "https://cdn.example/l1.jpg", results[0].LargeImageURL)
	assert.Equal(t, "sunset, sea", results[0].Tags)
	assert.Equal(t, 4000, results[0].ImageWidth)
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleHits)
	})

	for _, q := range []string{"", "   ", "\t\n"} {
		results, err := c.Search(context.Background(), q)
		assert.ErrorIs(t, err, client.ErrInvalidQuery, "query %q", q)
		assert.Nil(t, results)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestSearchNoResults(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total":0,"totalHits":0,"hits":[]}`)
	})

	results, err := c.Search(context.Background(), "sunset")
	assert.ErrorIs(t, err, client.ErrNoResults)
	assert.False(t, errors.Is(err, client.ErrSearchUnavailable))
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchNonSuccessStatus(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "[ERROR 400] Invalid or missing API key", http.StatusBadRequest)
	})

	results, err := c.Search(context.Background(), "sunset")
	assert.Nil(t, results)
	require.ErrorIs(t, err, client.ErrSearchUnavailable)
	assert.False(t, errors.Is(err, client.ErrNoResults))

	var unavailable *client.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, http.StatusBadRequest, unavailable.StatusCode)
	assert.Contains(t, unavailable.Message, "Invalid or missing API key")
}

func TestSearchMalformedBody(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	})

	_, err := c.Search(context.Background(), "sunset")
	assert.ErrorIs(t, err, client.ErrSearchUnavailable)
}

func TestSearchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	c, err := NewClient("test-key", Options{BaseURL: baseURL})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "sunset")
	assert.ErrorIs(t, err, client.ErrSearchUnavailable)
}

func TestSearchOptionalParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))
		assert.Equal(t, "true", r.URL.Query().Get("safesearch"))
		fmt.Fprint(w, sampleHits)
	}))
	defer srv.Close()

	c, err := NewClient("k", Options{BaseURL: srv.URL + "/", PerPage: 50, SafeSearch: true})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "sunset")
	assert.NoError(t, err)
}
