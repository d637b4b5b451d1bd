package bitmap

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Supported export formats
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatWebP = "webp"
)

// NormalizeFormat maps user spellings onto a supported format name
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// Encode writes img in the given format. quality is in (0,1]; png ignores
// it and webp switches to lossless at 1.
func Encode(w io.Writer, img image.Image, format string, quality float64) error {
	format, err := NormalizeFormat(format)
	if err != nil {
		return err
	}
	if quality <= 0 || quality > 1 {
		return fmt.Errorf("quality must be in (0,1], got %v", quality)
	}

	switch format {
	case FormatWebP:
		opts := &webp.Options{Lossless: quality >= 1, Quality: float32(quality * 100)}
		return webp.Encode(w, img, opts)
	case FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(percent(quality)))
	default:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	}
}

// EncodeBytes is Encode into a fresh buffer
func EncodeBytes(img image.Image, format string, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func percent(quality float64) int {
	q := int(math.Round(quality * 100))
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}
