// Package imageeditor composes stock-photo search with an in-memory canvas.
//
// A user searches for photos, places returned images together with text and
// simple shapes on a fixed-size scene, and exports the result as a raster
// image.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//		"os"
//
//		imageeditor "github.com/menta2k/image-editor"
//	)
//
//	func main() {
//		ie, err := imageeditor.New(os.Getenv("PIXABAY_API_KEY"))
//		if err != nil {
//			log.Fatal(err)
//		}
//		if err := ie.Open(); err != nil {
//			log.Fatal(err)
//		}
//		defer ie.Close()
//
//		results, err := ie.Search(context.Background(), "sunset")
//		if err != nil {
//			log.Fatal(err)
//		}
//		if _, err := ie.AddSearchResult(context.Background(), results[0]); err != nil {
//			log.Fatal(err)
//		}
//		ie.Editor().AddText()
//		ie.Editor().AddShape("circle")
//
//		if err := ie.SaveExport("canvas-image.png"); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of these components:
//
// 1. Pixabay (pkg/pixabay): the search provider adapter
// 2. Bitmap (pkg/bitmap): image download, decoding and encoding
// 3. Scene (pkg/scene): the object model and rasterizer
// 4. Editor (pkg/editor): lifecycle and editing commands
// 5. Session (pkg/session): query, loading flag, message and result list
package imageeditor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/image-editor/pkg/bitmap"
	"github.com/menta2k/image-editor/pkg/client"
	"github.com/menta2k/image-editor/pkg/editor"
	"github.com/menta2k/image-editor/pkg/pixabay"
	"github.com/menta2k/image-editor/pkg/scene"
	"github.com/menta2k/image-editor/pkg/session"
	"github.com/menta2k/image-editor/pkg/types"
)

// Version of the image editor library
const Version = "1.0.0"

// ImageEditor wires a search session to a scene editor
type ImageEditor struct {
	session *session.Session
	editor  *editor.Editor
	log     logrus.FieldLogger
}

// New creates an ImageEditor backed by Pixabay with default configuration
func New(apiKey string) (*ImageEditor, error) {
	provider, err := pixabay.NewClient(apiKey, pixabay.Options{})
	if err != nil {
		return nil, err
	}
	cfg := editor.DefaultConfig()
	return NewWithConfig(provider, bitmap.NewLoader(cfg.LoadTimeout), cfg, nil), nil
}

// NewWithConfig creates an ImageEditor from explicit parts. A nil logger
// uses the logrus standard logger.
func NewWithConfig(provider client.SearchProvider, loader editor.Loader, editorConfig editor.Config, log logrus.FieldLogger) *ImageEditor {
	if log == nil {
		log = logrus.StandardLogger()
	}

	ed := editor.NewWithConfig(editorConfig, loader)
	ed.SetLogger(log)

	return &ImageEditor{
		session: session.New(provider, log),
		editor:  ed,
		log:     log,
	}
}

// Open readies the drawing surface
func (ie *ImageEditor) Open() error {
	return ie.editor.Open()
}

// Close disposes the drawing surface and every placed object
func (ie *ImageEditor) Close() error {
	return ie.editor.Close()
}

// Editor exposes the scene editor commands
func (ie *ImageEditor) Editor() *editor.Editor {
	return ie.editor
}

// Session exposes the search state
func (ie *ImageEditor) Session() *session.Session {
	return ie.session
}

// Search runs query through the session and returns the resulting list.
// Only a successful search or ErrNoResults comes with a list; any other
// failure returns nil. Searching never touches the scene.
func (ie *ImageEditor) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	ie.session.SetQuery(query)
	if err := ie.session.Search(ctx); err != nil {
		if errors.Is(err, client.ErrNoResults) {
			return []types.SearchResult{}, err
		}
		return nil, err
	}
	return ie.session.View().Results, nil
}

// AddSearchResult places the full-resolution image of r on the scene
func (ie *ImageEditor) AddSearchResult(ctx context.Context, r types.SearchResult) (*scene.ImageObject, error) {
	url := r.LargeImageURL
	if url == "" {
		url = r.PreviewURL
	}
	if url == "" {
		return nil, fmt.Errorf("%w: search result %d has no image URL", editor.ErrImageLoad, r.ID)
	}
	return ie.editor.AddImage(ctx, url)
}

// Export encodes the current scene
func (ie *ImageEditor) Export(opts ...editor.ExportOption) ([]byte, error) {
	return ie.editor.Export(opts...)
}

// SaveExport encodes the current scene and writes it to path
func (ie *ImageEditor) SaveExport(path string, opts ...editor.ExportOption) error {
	data, err := ie.editor.Export(opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	ie.log.WithFields(logrus.Fields{"path": path, "bytes": len(data)}).Info("scene saved")
	return nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
