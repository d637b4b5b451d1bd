package bitmap

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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestImage creates a simple gradient test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			img.Set(x, y, color.RGBA{r, g, 128, 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeFormat(t *testing.T) {
	cases := map[string]string{"": FormatPNG, "PNG": FormatPNG, "jpg": FormatJPEG, "jpeg": FormatJPEG, "WebP": FormatWebP}
	for in, want := range cases {
		got, err := NormalizeFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := NormalizeFormat("bmp")
	assert.Error(t, err)
}

func TestEncodeFormats(t *testing.T) {
	img := createTestImage(64, 48)

	for _, format := range []string{FormatPNG, FormatJPEG, FormatWebP} {
		data, err := EncodeBytes(img, format, 0.9)
		require.NoError(t, err, format)
		require.NotEmpty(t, data, format)

		decoded, err := Decode(data)
		require.NoError(t, err, format)
		assert.Equal(t, 64, decoded.Bounds().Dx(), format)
		assert.Equal(t, 48, decoded.Bounds().Dy(), format)
	}
}

func TestEncodeRejectsBadQuality(t *testing.T) {
	img := createTestImage(8, 8)
	_, err := EncodeBytes(img, FormatPNG, 0)
	assert.Error(t, err)
	_, err = EncodeBytes(img, FormatPNG, 1.5)
	assert.Error(t, err)
}

func TestDecodeRejectsNonImage(t *testing.T) {
	_, err := Decode([]byte("<html><body>nope</body></html>"))
	assert.Error(t, err)
}

func TestLoadFromURL(t *testing.T) {
	data := pngBytes(t, createTestImage(40, 30))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	img, err := NewLoader(5*time.Second).Load(context.Background(), srv.URL+"/photo.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
}

func TestLoadFromURLFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.png":
			http.NotFound(w, r)
		default:
			w.Write([]byte("plain text body"))
		}
	}))
	defer srv.Close()

	loader := NewLoaderWithClient(srv.Client())

	_, err := loader.Load(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)

	_, err = loader.Load(context.Background(), srv.URL+"/text")
	assert.Error(t, err)

	_, err = loader.Load(context.Background(), "ftp://example.com/a.png")
	assert.Error(t, err)
}

func TestLoadHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewLoader(0).Load(ctx, srv.URL+"/slow.png")
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, createTestImage(12, 10)), 0o644))

	loader := NewLoader(0)

	img, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())

	img, err = loader.Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dy())
}
