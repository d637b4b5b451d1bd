// Package scene models the canvas: a fixed-size surface holding an ordered
// list of placed objects that are rendered back-to-front.
//
// Objects are immutable once built. Editing an object means building a
// modified copy and swapping it in with Replace, so a value handed to a
// caller never changes underneath it. A Scene itself is not safe for
// concurrent use; the editor serializes access to it.
package scene

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/google/uuid"
)

// Default surface size
const (
	DefaultWidth  = 600
	DefaultHeight = 400
)

// ObjectKind names the variant of a placed object
type ObjectKind string

const (
	KindText  ObjectKind = "text"
	KindShape ObjectKind = "shape"
	KindImage ObjectKind = "image"
)

// Object is one placed element
type Object interface {
	ID() uuid.UUID
	Kind() ObjectKind
	// Position is the top-left anchor in scene pixels.
	Position() image.Point
	// Bounds is the area the object covers once rendered.
	Bounds() image.Rectangle
	draw(dst draw.Image)
}

var ErrNilObject = errors.New("scene: nil object")

// Scene is the drawing surface model
type Scene struct {
	width      int
	height     int
	background color.Color
	objects    []Object
}

// New creates an empty scene with a transparent background
func New(width, height int) (*Scene, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scene: invalid dimensions %dx%d", width, height)
	}
	return &Scene{width: width, height: height, background: color.Transparent}, nil
}

// SetBackground changes the fill painted before any object
func (s *Scene) SetBackground(c color.Color) {
	if c == nil {
		c = color.Transparent
	}
	s.background = c
}

func (s *Scene) Width() int  { return s.width }
func (s *Scene) Height() int { return s.height }

// Bounds returns the surface rectangle anchored at the origin
func (s *Scene) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

// Len returns the number of placed objects
func (s *Scene) Len() int { return len(s.objects) }

// Append places obj on top of every existing object
func (s *Scene) Append(obj Object) error {
	if obj == nil {
		return ErrNilObject
	}
	s.objects = append(s.objects, obj)
	return nil
}

// Objects returns the objects in z-order, bottom first
func (s *Scene) Objects() []Object {
	out := make([]Object, len(s.objects))
	copy(out, s.objects)
	return out
}

// Find returns the object with the given id
func (s *Scene) Find(id uuid.UUID) (Object, bool) {
	for _, obj := range s.objects {
		if obj.ID() == id {
			return obj, true
		}
	}
	return nil, false
}

// Replace swaps the object carrying obj's id in place, keeping its z-order
func (s *Scene) Replace(obj Object) bool {
	if obj == nil {
		return false
	}
	for i, cur := range s.objects {
		if cur.ID() == obj.ID() {
			s.objects[i] = obj
			return true
		}
	}
	return false
}

// Clear drops every object
func (s *Scene) Clear() {
	for i := range s.objects {
		s.objects[i] = nil
	}
	s.objects = nil
}

// NewSurface allocates a raster matching the scene size
func (s *Scene) NewSurface() *image.NRGBA {
	return image.NewNRGBA(s.Bounds())
}

// Render repaints dst from scratch: background first, then every object in
// order. dst is expected to match the scene bounds; anything outside is
// clipped.
func (s *Scene) Render(dst draw.Image) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
	for _, obj := range s.objects {
		obj.draw(dst)
	}
}

// Rasterize renders the scene into a new surface
func (s *Scene) Rasterize() *image.NRGBA {
	dst := s.NewSurface()
	s.Render(dst)
	return dst
}
