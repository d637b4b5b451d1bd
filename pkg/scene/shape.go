package scene

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/google/uuid"
	"golang.org/x/image/vector"
)

// ShapeKind is one of the supported vector shapes
type ShapeKind string

const (
	Circle    ShapeKind = "circle"
	Rectangle ShapeKind = "rectangle"
	Triangle  ShapeKind = "triangle"
)

// circleKappa places cubic control points for a quarter circle
const circleKappa = 0.5522847498

type shapeDefaults struct {
	radius int
	width  int
	height int
	fill   string
}

var defaultShapes = map[ShapeKind]shapeDefaults{
	Circle:    {radius: 50, fill: "red"},
	Rectangle: {width: 100, height: 50, fill: "green"},
	Triangle:  {width: 100, height: 100, fill: "blue"},
}

// ShapeKinds lists the supported kinds in a stable order
func ShapeKinds() []ShapeKind {
	return []ShapeKind{Circle, Rectangle, Triangle}
}

// ParseShapeKind reports whether s names a supported shape. Names match
// exactly: "Circle" or " circle" are not shapes.
func ParseShapeKind(s string) (ShapeKind, bool) {
	_, ok := defaultShapes[ShapeKind(s)]
	return ShapeKind(s), ok
}

// ShapeObject is a filled circle, rectangle or triangle
type ShapeObject struct {
	id     uuid.UUID
	kind   ShapeKind
	radius int
	width  int
	height int
	fill   color.Color
	pos    image.Point
}

// NewShape builds a shape with its kind's fixed default size and color.
// ok is false for an unsupported kind.
func NewShape(kind ShapeKind) (*ShapeObject, bool) {
	def, ok := defaultShapes[kind]
	if !ok {
		return nil, false
	}
	s := &ShapeObject{
		id:     uuid.New(),
		kind:   kind,
		radius: def.radius,
		width:  def.width,
		height: def.height,
		fill:   mustColor(def.fill),
		pos:    DefaultPosition,
	}
	if kind == Circle {
		s.width, s.height = 2*def.radius, 2*def.radius
	}
	return s, true
}

func (s *ShapeObject) ID() uuid.UUID         { return s.id }
func (s *ShapeObject) Kind() ObjectKind      { return KindShape }
func (s *ShapeObject) Shape() ShapeKind      { return s.kind }
func (s *ShapeObject) Position() image.Point { return s.pos }
func (s *ShapeObject) Fill() color.Color     { return s.fill }

// Radius is zero for anything but a circle
func (s *ShapeObject) Radius() int { return s.radius }

// Size is the bounding width and height
func (s *ShapeObject) Size() (int, int) { return s.width, s.height }

func (s *ShapeObject) Bounds() image.Rectangle {
	return image.Rect(s.pos.X, s.pos.Y, s.pos.X+s.width, s.pos.Y+s.height)
}

func (s *ShapeObject) draw(dst draw.Image) {
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.DrawOp = draw.Over

	x := float32(s.pos.X - b.Min.X)
	y := float32(s.pos.Y - b.Min.Y)
	w, h := float32(s.width), float32(s.height)

	switch s.kind {
	case Circle:
		rad := float32(s.radius)
		cx, cy := x+rad, y+rad
		k := rad * circleKappa
		r.MoveTo(cx+rad, cy)
		r.CubeTo(cx+rad, cy+k, cx+k, cy+rad, cx, cy+rad)
		r.CubeTo(cx-k, cy+rad, cx-rad, cy+k, cx-rad, cy)
		r.CubeTo(cx-rad, cy-k, cx-k, cy-rad, cx, cy-rad)
		r.CubeTo(cx+k, cy-rad, cx+rad, cy-k, cx+rad, cy)
	case Rectangle:
		r.MoveTo(x, y)
		r.LineTo(x+w, y)
		r.LineTo(x+w, y+h)
		r.LineTo(x, y+h)
	case Triangle:
		r.MoveTo(x+w/2, y)
		r.LineTo(x+w, y+h)
		r.LineTo(x, y+h)
	}
	r.ClosePath()
	r.Draw(dst, b, image.NewUniform(s.fill), image.Point{})
}
