package scene

import (
	"image"
	"image/draw"
	"math"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

// DefaultImageScale is applied on both axes when an image is placed
const DefaultImageScale = 0.5

// ImageObject is a decoded bitmap placed at a scale
type ImageObject struct {
	id     uuid.UUID
	src    image.Image
	source string
	scaleX float64
	scaleY float64
	pos    image.Point
}

// NewImage wraps an already decoded bitmap. The bitmap must be complete:
// a scene only ever holds fully resolved objects.
func NewImage(src image.Image, source string) *ImageObject {
	return &ImageObject{
		id:     uuid.New(),
		src:    src,
		source: source,
		scaleX: DefaultImageScale,
		scaleY: DefaultImageScale,
	}
}

func (o *ImageObject) ID() uuid.UUID         { return o.id }
func (o *ImageObject) Kind() ObjectKind      { return KindImage }
func (o *ImageObject) Position() image.Point { return o.pos }
func (o *ImageObject) Bitmap() image.Image   { return o.src }

// Source is the URL or path the bitmap came from
func (o *ImageObject) Source() string { return o.source }

func (o *ImageObject) Scale() (float64, float64) { return o.scaleX, o.scaleY }

func (o *ImageObject) Bounds() image.Rectangle {
	sb := o.src.Bounds()
	w := int(math.Round(float64(sb.Dx()) * o.scaleX))
	h := int(math.Round(float64(sb.Dy()) * o.scaleY))
	return image.Rect(o.pos.X, o.pos.Y, o.pos.X+w, o.pos.Y+h)
}

func (o *ImageObject) draw(dst draw.Image) {
	r := o.Bounds()
	if r.Empty() {
		return
	}
	xdraw.CatmullRom.Scale(dst, r, o.src, o.src.Bounds(), xdraw.Over, nil)
}
