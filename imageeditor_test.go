package imageeditor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-editor/pkg/bitmap"
	"github.com/menta2k/image-editor/pkg/client"
	"github.com/menta2k/image-editor/pkg/editor"
	"github.com/menta2k/image-editor/pkg/pixabay"
	"github.com/menta2k/image-editor/pkg/types"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}
	return img
}

// fakePixabay serves both the search API and the image files it points at
func fakePixabay(t *testing.T, hits string) (*httptest.Server, *int32) {
	t.Helper()
	var searches int32

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, createTestImage(200, 120)))

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&searches, 1)
		w.Write([]byte(strings.ReplaceAll(hits, "{{base}}", srv.URL)))
	})
	mux.HandleFunc("/images/large.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &searches
}

func newTestEditor(t *testing.T, srv *httptest.Server) *ImageEditor {
	t.Helper()
	provider, err := pixabay.NewClient("key", pixabay.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	ie := NewWithConfig(provider, bitmap.NewLoaderWithClient(srv.Client()), editor.DefaultConfig(), nil)
	require.NoError(t, ie.Open())
	t.Cleanup(func() { ie.Close() })
	return ie
}

func TestNew(t *testing.T) {
	ie, err := New("key")
	require.NoError(t, err)
	assert.NotNil(t, ie.Editor())
	assert.NotNil(t, ie.Session())
	assert.Equal(t, editor.Uninitialized, ie.Editor().State())

	_, err = New("")
	assert.Error(t, err)
}

func TestSearchAndCompose(t *testing.T) {
	srv, searches := fakePixabay(t, `{"total":1,"totalHits":1,"hits":[
		{"id":7,"previewURL":"{{base}}/images/large.png","largeImageURL":"{{base}}/images/large.png","tags":"test"}]}`)
	ie := newTestEditor(t, srv)
	ctx := context.Background()

	results, err := ie.Search(ctx, "sunset")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(searches))
	assert.Equal(t, 0, ie.Editor().Len(), "search never mutates the scene")

	obj, err := ie.AddSearchResult(ctx, results[0])
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 60), obj.Bounds())

	_, err = ie.Editor().AddText()
	require.NoError(t, err)
	_, err = ie.Editor().AddShape("circle")
	require.NoError(t, err)
	_, err = ie.Editor().AddShape("hexagon")
	require.NoError(t, err)
	assert.Equal(t, 3, ie.Editor().Len())

	path := filepath.Join(t.TempDir(), "canvas-image.png")
	require.NoError(t, ie.SaveExport(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestSearchConditions(t *testing.T) {
	srv, searches := fakePixabay(t, `{"total":0,"totalHits":0,"hits":[]}`)
	ie := newTestEditor(t, srv)

	_, err := ie.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, client.ErrInvalidQuery)
	assert.Equal(t, int32(0), atomic.LoadInt32(searches))

	results, err := ie.Search(context.Background(), "sunset")
	assert.ErrorIs(t, err, client.ErrNoResults)
	assert.Empty(t, results)
	assert.Equal(t, int32(1), atomic.LoadInt32(searches))
}

func TestFailedSearchReturnsNoList(t *testing.T) {
	srv, _ := fakePixabay(t, `{"total":1,"totalHits":1,"hits":[{"id":7,"tags":"test"}]}`)
	ie := newTestEditor(t, srv)
	ctx := context.Background()

	results, err := ie.Search(ctx, "sunset")
	require.NoError(t, err)
	require.Len(t, results, 1)

	results, err = ie.Search(ctx, "   ")
	assert.ErrorIs(t, err, client.ErrInvalidQuery)
	assert.Nil(t, results)

	srv.Close()
	results, err = ie.Search(ctx, "sunset")
	assert.ErrorIs(t, err, client.ErrSearchUnavailable)
	assert.Nil(t, results)
}

func TestAddSearchResultWithoutURL(t *testing.T) {
	srv, _ := fakePixabay(t, `{"hits":[]}`)
	ie := newTestEditor(t, srv)

	_, err := ie.AddSearchResult(context.Background(), types.SearchResult{ID: 3})
	assert.ErrorIs(t, err, editor.ErrImageLoad)
	assert.Equal(t, 0, ie.Editor().Len())
}

func TestExportBeforeOpen(t *testing.T) {
	ie, err := New("key")
	require.NoError(t, err)

	_, err = ie.Export()
	assert.ErrorIs(t, err, editor.ErrExportFailed)
	assert.ErrorIs(t, ie.SaveExport(filepath.Join(t.TempDir(), "x.png")), editor.ErrExportFailed)
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
