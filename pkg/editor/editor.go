// Package editor owns a scene and applies discrete user commands to it.
//
// An Editor moves through three states: Uninitialized until Open, Ready
// until Close, then Disposed for good. Commands other than the readiness
// checks fail with ErrSceneNotReady outside Ready. Every successful
// mutation re-renders the whole scene onto the drawing surface before the
// command returns.
//
// All scene mutation is serialized by one lock. AddImage fetches and decodes
// outside the lock, so other commands keep running while a bitmap loads, and
// objects land in the order their append step completes.
package editor

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/menta2k/image-editor/pkg/bitmap"
	"github.com/menta2k/image-editor/pkg/scene"
	"github.com/menta2k/image-editor/pkg/types"
)

// State is the lifecycle of the drawing surface
type State int

const (
	Uninitialized State = iota
	Ready
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Disposed:
		return "disposed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Loader resolves an image URL to a decoded bitmap
type Loader interface {
	Load(ctx context.Context, source string) (image.Image, error)
}

// Config holds configuration for the editor
type Config struct {
	Width      int
	Height     int
	Background string
	// LoadTimeout bounds a single AddImage fetch. Zero leaves it to the
	// caller's context.
	LoadTimeout time.Duration
}

// DefaultConfig returns a 600x400 transparent surface with a 30s load timeout
func DefaultConfig() Config {
	return Config{
		Width:       scene.DefaultWidth,
		Height:      scene.DefaultHeight,
		Background:  "transparent",
		LoadTimeout: 30 * time.Second,
	}
}

// Editor is the stateful core: one scene plus its rendered surface
type Editor struct {
	mu      sync.Mutex
	config  Config
	loader  Loader
	log     logrus.FieldLogger
	state   State
	scene   *scene.Scene
	surface *image.NRGBA
}

// ImageResult is delivered by AddImageAsync
type ImageResult struct {
	Object *scene.ImageObject
	Err    error
}

// New creates an editor with default configuration
func New(loader Loader) *Editor {
	return NewWithConfig(DefaultConfig(), loader)
}

// NewWithConfig creates an editor with custom configuration. The editor
// starts Uninitialized.
func NewWithConfig(config Config, loader Loader) *Editor {
	if loader == nil {
		loader = bitmap.NewLoader(0)
	}
	return &Editor{
		config: config,
		loader: loader,
		log:    logrus.StandardLogger().WithField("component", "editor"),
	}
}

// SetLogger replaces the logger
func (e *Editor) SetLogger(log logrus.FieldLogger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = log.WithField("component", "editor")
}

// Open allocates the drawing surface and moves the editor to Ready.
// Opening a Ready editor is a no-op; a Disposed editor cannot be reopened.
func (e *Editor) Open() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case Ready:
		return nil
	case Disposed:
		return fmt.Errorf("%w: editor has been disposed", ErrSceneNotReady)
	}

	sc, err := scene.New(e.config.Width, e.config.Height)
	if err != nil {
		return err
	}
	if e.config.Background != "" {
		bg, err := scene.ParseColor(e.config.Background)
		if err != nil {
			return fmt.Errorf("invalid background: %w", err)
		}
		sc.SetBackground(bg)
	}

	e.scene = sc
	e.surface = sc.NewSurface()
	e.state = Ready
	e.redraw()

	e.log.WithFields(logrus.Fields{"width": sc.Width(), "height": sc.Height()}).Debug("surface opened")
	return nil
}

// Close releases every object and detaches the surface. It is safe to call
// more than once.
func (e *Editor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Disposed {
		return nil
	}
	if e.scene != nil {
		e.scene.Clear()
	}
	e.scene = nil
	e.surface = nil
	e.state = Disposed

	e.log.Debug("surface disposed")
	return nil
}

// State reports the current lifecycle state
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Ready reports whether commands are accepted
func (e *Editor) Ready() bool {
	return e.State() == Ready
}

// AddText places a text box with the default content and style
func (e *Editor) AddText() (*scene.TextObject, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Ready {
		return nil, ErrSceneNotReady
	}

	text := scene.NewText()
	if err := e.appendLocked(text); err != nil {
		return nil, err
	}
	return text, nil
}

// AddShape places a shape of the named kind with its fixed defaults. An
// unsupported kind is ignored: it returns nil and no error.
func (e *Editor) AddShape(kind string) (*scene.ShapeObject, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Ready {
		return nil, ErrSceneNotReady
	}

	shape, ok := scene.NewShape(scene.ShapeKind(kind))
	if !ok {
		e.log.WithField("kind", kind).Debug("ignoring unsupported shape")
		return nil, nil
	}

	if err := e.appendLocked(shape); err != nil {
		return nil, err
	}
	return shape, nil
}

// AddImage fetches and decodes the bitmap at url, then places it at the
// default scale. It blocks until the bitmap is decoded, the context ends or
// the configured load timeout expires. A failed load adds nothing.
func (e *Editor) AddImage(ctx context.Context, url string) (*scene.ImageObject, error) {
	e.mu.Lock()
	if e.state != Ready {
		e.mu.Unlock()
		return nil, ErrSceneNotReady
	}
	timeout := e.config.LoadTimeout
	log := e.log
	e.mu.Unlock()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	img, err := e.loader.Load(ctx, url)
	if err != nil {
		log.WithError(err).WithField("url", url).Warn("image load failed")
		return nil, fmt.Errorf("%w: %w", ErrImageLoad, err)
	}

	obj := scene.NewImage(img, url)

	e.mu.Lock()
	defer e.mu.Unlock()

	// the editor may have been closed while the bitmap was loading
	if e.state != Ready {
		return nil, ErrSceneNotReady
	}
	if err := e.appendLocked(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// AddImageAsync runs AddImage in the background. The channel receives
// exactly one result and is then closed.
func (e *Editor) AddImageAsync(ctx context.Context, url string) <-chan ImageResult {
	out := make(chan ImageResult, 1)
	go func() {
		defer close(out)
		obj, err := e.AddImage(ctx, url)
		out <- ImageResult{Object: obj, Err: err}
	}()
	return out
}

// SetText replaces the content of a placed text object, keeping its place
// in the z-order.
func (e *Editor) SetText(id uuid.UUID, content string) (*scene.TextObject, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Ready {
		return nil, ErrSceneNotReady
	}

	obj, ok := e.scene.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	text, ok := obj.(*scene.TextObject)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s object", ErrObjectNotFound, id, obj.Kind())
	}

	edited := text.WithContent(content)
	e.scene.Replace(edited)
	e.redraw()
	return edited, nil
}

// Objects returns the placed objects, bottom first
func (e *Editor) Objects() ([]scene.Object, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Ready {
		return nil, ErrSceneNotReady
	}
	return e.scene.Objects(), nil
}

// Len returns the number of placed objects, zero outside Ready
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.scene == nil {
		return 0
	}
	return e.scene.Len()
}

// Snapshot returns a copy of the current drawing surface
func (e *Editor) Snapshot() (*image.NRGBA, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Ready {
		return nil, ErrSceneNotReady
	}
	return imaging.Clone(e.surface), nil
}

// ExportOption adjusts a single export
type ExportOption func(*types.ExportConfig)

// WithFormat selects png, jpeg or webp
func WithFormat(format string) ExportOption {
	return func(c *types.ExportConfig) { c.Format = format }
}

// WithQuality sets the encoder quality in (0,1]
func WithQuality(quality float64) ExportOption {
	return func(c *types.ExportConfig) { c.Quality = quality }
}

// Export encodes the whole scene at its fixed size. The default is PNG at
// full quality. Persisting the bytes is up to the caller.
func (e *Editor) Export(opts ...ExportOption) (data []byte, err error) {
	cfg := types.ExportConfig{Format: bitmap.FormatPNG, Quality: 1.0}
	for _, opt := range opts {
		opt(&cfg)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Ready {
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, ErrSceneNotReady)
	}

	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("%w: %v", ErrExportFailed, r)
		}
	}()

	data, err = bitmap.EncodeBytes(e.surface, cfg.Format, cfg.Quality)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	e.log.WithFields(logrus.Fields{"format": cfg.Format, "bytes": len(data)}).Debug("scene exported")
	return data, nil
}

func (e *Editor) appendLocked(obj scene.Object) error {
	if err := e.scene.Append(obj); err != nil {
		return err
	}
	e.redraw()
	e.log.WithFields(logrus.Fields{"id": obj.ID(), "kind": obj.Kind(), "count": e.scene.Len()}).Debug("object added")
	return nil
}

// redraw repaints the full object sequence; there is no dirty-region tracking
func (e *Editor) redraw() {
	e.scene.Render(e.surface)
}
