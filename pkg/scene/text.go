package scene

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Text defaults for a freshly added text box
const (
	DefaultTextContent  = "Enter text here"
	DefaultTextFontSize = 20.0
	DefaultTextFill     = "#000"

	// lineHeight is the line advance as a multiple of the font size
	lineHeight = 1.16
)

// DefaultPosition is where text and shapes land when added
var DefaultPosition = image.Pt(100, 100)

var (
	fontOnce sync.Once
	fontErr  error
	regular  *opentype.Font
)

func regularFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		regular, fontErr = opentype.Parse(goregular.TTF)
	})
	return regular, fontErr
}

// newFace builds a fresh face; faces keep glyph buffers and must not be
// shared across goroutines.
func newFace(size float64) (font.Face, error) {
	f, err := regularFont()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// TextObject is a block of text. Lines are split on '\n'.
type TextObject struct {
	id       uuid.UUID
	content  string
	fontSize float64
	fill     color.Color
	pos      image.Point
}

// NewText builds a text object with the default content and style
func NewText() *TextObject {
	return &TextObject{
		id:       uuid.New(),
		content:  DefaultTextContent,
		fontSize: DefaultTextFontSize,
		fill:     mustColor(DefaultTextFill),
		pos:      DefaultPosition,
	}
}

func (t *TextObject) ID() uuid.UUID         { return t.id }
func (t *TextObject) Kind() ObjectKind      { return KindText }
func (t *TextObject) Position() image.Point { return t.pos }
func (t *TextObject) Content() string       { return t.content }
func (t *TextObject) FontSize() float64     { return t.fontSize }
func (t *TextObject) Fill() color.Color     { return t.fill }

// WithContent returns a copy carrying the same id and new content
func (t *TextObject) WithContent(content string) *TextObject {
	c := *t
	c.content = content
	return &c
}

func (t *TextObject) lines() []string {
	return strings.Split(t.content, "\n")
}

func (t *TextObject) lineAdvance() int {
	return int(math.Ceil(t.fontSize * lineHeight))
}

func (t *TextObject) Bounds() image.Rectangle {
	face, err := newFace(t.fontSize)
	if err != nil {
		return image.Rectangle{Min: t.pos, Max: t.pos}
	}
	defer face.Close()

	d := &font.Drawer{Face: face}
	width := 0
	for _, line := range t.lines() {
		if w := d.MeasureString(line).Ceil(); w > width {
			width = w
		}
	}
	height := len(t.lines()) * t.lineAdvance()
	return image.Rect(t.pos.X, t.pos.Y, t.pos.X+width, t.pos.Y+height)
}

func (t *TextObject) draw(dst draw.Image) {
	face, err := newFace(t.fontSize)
	if err != nil {
		return
	}
	defer face.Close()

	ascent := face.Metrics().Ascent.Ceil()
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(t.fill), Face: face}
	for i, line := range t.lines() {
		d.Dot = fixed.P(t.pos.X, t.pos.Y+ascent+i*t.lineAdvance())
		d.DrawString(line)
	}
}
