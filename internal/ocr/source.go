package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/papertree/internal/region"
)

// Source recognizes synthesized regions from their page images. Decoded
// page images are cached, so one Source should serve one document.
type Source struct {
	rec     Recognizer
	config  Config
	padding float64
	logger  *slog.Logger
	images  *imageCache
}

// NewSource creates a source. padding grows each region before cropping.
func NewSource(rec Recognizer, config Config, padding float64, logger *slog.Logger) *Source {
	if config.Attempts == 0 {
		config.Attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		rec:     rec,
		config:  config,
		padding: padding,
		logger:  logger,
		images:  newImageCache(),
	}
}

// RegionText crops r from the page image and recognizes it. Recognizer
// errors are retried; context cancellation is not.
func (s *Source) RegionText(ctx context.Context, page region.Page, r region.Region) (string, error) {
	if page.Image == "" {
		return "", fmt.Errorf("%w: page %d", ErrNoPageImage, page.Index)
	}
	img, err := s.images.load(page.Image)
	if err != nil {
		return "", err
	}

	box := scaleToImage(r.BBox, page, img.Bounds())
	crop, err := EncodePNG(Crop(img, box, s.padding, s.config.MinWidth))
	if err != nil {
		return "", err
	}

	var text string
	err = retry.Do(
		func() error {
			var err error
			text, err = s.rec.Recognize(ctx, crop)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(s.config.Attempts),
		retry.Delay(s.config.Delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Debug("retrying region recognition", "region", r.ID, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("recognize %s: %w", r.ID, err)
	}
	return strings.TrimSpace(text), nil
}

// imageCache decodes each page image once.
type imageCache struct {
	mu     sync.Mutex
	images map[string]image.Image
}

func newImageCache() *imageCache {
	return &imageCache{images: make(map[string]image.Image)}
}

func (c *imageCache) load(path string) (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if img, ok := c.images[path]; ok {
		return img, nil
	}
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	c.images[path] = img
	return img, nil
}

func (c *imageCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}

// scaleToImage maps a box from page coordinates to image pixels when the
// page declares a size different from the image.
func scaleToImage(b region.BBox, page region.Page, bounds image.Rectangle) region.BBox {
	if page.Width <= 0 || page.Height <= 0 {
		return b
	}
	sx := float64(bounds.Dx()) / page.Width
	sy := float64(bounds.Dy()) / page.Height
	return region.BBox{X1: b.X1 * sx, Y1: b.Y1 * sy, X2: b.X2 * sx, Y2: b.Y2 * sy}
}
