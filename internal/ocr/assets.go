package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackzampolin/papertree/internal/media"
	"github.com/jackzampolin/papertree/internal/region"
)

// AssetWriter saves the page-image crop of each media asset as a PNG.
// Decoded page images are cached, so one writer should serve one document.
type AssetWriter struct {
	dir     string
	padding float64
	images  *imageCache
}

// NewAssetWriter creates a writer for dir. padding grows each asset box
// before cropping.
func NewAssetWriter(dir string, padding float64) *AssetWriter {
	return &AssetWriter{dir: dir, padding: padding, images: newImageCache()}
}

// Dir returns the output directory.
func (w *AssetWriter) Dir() string {
	return w.dir
}

// SaveAsset crops a from its page image, writes it as media.DefaultRef
// under the output directory and returns the written path.
func (w *AssetWriter) SaveAsset(ctx context.Context, page region.Page, a media.Asset) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if page.Image == "" {
		return "", fmt.Errorf("%w: page %d", ErrNoPageImage, page.Index)
	}
	img, err := w.images.load(page.Image)
	if err != nil {
		return "", err
	}

	box := scaleToImage(a.BBox, page, img.Bounds())
	data, err := EncodePNG(Crop(img, box, w.padding, 0))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create asset directory: %w", err)
	}
	path := filepath.Join(w.dir, media.DefaultRef(a.Page, a.Label))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", a.Label, err)
	}
	return path, nil
}
