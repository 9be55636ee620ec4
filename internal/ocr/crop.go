package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // page images may be JPEG
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/jackzampolin/papertree/internal/region"
)

// LoadImage decodes a PNG or JPEG page image.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page image %s: %w", path, err)
	}
	return img, nil
}

// Crop cuts box out of img, grown by padding on every side and clamped to
// the image. Crops narrower than minWidth are scaled up with Catmull-Rom
// resampling, keeping the aspect ratio.
func Crop(img image.Image, box region.BBox, padding float64, minWidth int) image.Image {
	b := img.Bounds()
	grown := box.Expand(padding, float64(b.Dx()), float64(b.Dy()))
	rect := image.Rect(
		b.Min.X+int(grown.X1), b.Min.Y+int(grown.Y1),
		b.Min.X+int(grown.X2), b.Min.Y+int(grown.Y2),
	).Intersect(b)
	if rect.Empty() {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	w, h := rect.Dx(), rect.Dy()
	if minWidth > 0 && w < minWidth {
		h = h * minWidth / w
		w = minWidth
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == rect.Dx() {
		draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, rect, draw.Src, nil)
	}
	return dst
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode crop: %w", err)
	}
	return buf.Bytes(), nil
}
