package bitmap

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"
)

// DefaultUserAgent is sent with every bitmap download
const DefaultUserAgent = "Image-Editor/1.0 (+https://github.com/menta2k/image-editor)"

// maxBitmapBytes caps a single download
const maxBitmapBytes = 64 << 20

// Loader fetches and decodes bitmaps from URLs or local paths
type Loader struct {
	httpClient *http.Client
	userAgent  string
}

// NewLoader creates a loader. A zero timeout means no client-side timeout;
// callers bound the wait through the context instead.
func NewLoader(timeout time.Duration) *Loader {
	return &Loader{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  DefaultUserAgent,
	}
}

// NewLoaderWithClient creates a loader around an existing HTTP client
func NewLoaderWithClient(httpClient *http.Client) *Loader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Loader{httpClient: httpClient, userAgent: DefaultUserAgent}
}

// Load resolves source to a decoded bitmap. http and https URLs are
// downloaded, file URLs and bare paths are read from disk.
func (l *Loader) Load(ctx context.Context, source string) (image.Image, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return l.LoadFromURL(ctx, source)
	case strings.HasPrefix(source, "file://"):
		u, err := url.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		return LoadFile(u.Path)
	case strings.Contains(source, "://"):
		return nil, fmt.Errorf("unsupported URL scheme in %q (only http, https and file are supported)", source)
	default:
		return LoadFile(source)
	}
}

// LoadFromURL downloads and decodes an image
func (l *Loader) LoadFromURL(ctx context.Context, imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBitmapBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > maxBitmapBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxBitmapBytes)
	}

	return Decode(data)
}

// LoadFile decodes an image from disk, honouring EXIF orientation
func LoadFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	return Decode(data)
}

// Decode sniffs data and decodes it. Content that is not an image is
// rejected before any decoder runs.
func Decode(data []byte) (image.Image, error) {
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return nil, fmt.Errorf("data is not an image (detected: %s)", describeKind(kind.MIME.Value))
	}

	if img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true)); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode for variants the registered decoder rejects
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	return nil, fmt.Errorf("image: unknown or unsupported format")
}

func describeKind(mime string) string {
	if mime == "" {
		return "unknown"
	}
	return mime
}
