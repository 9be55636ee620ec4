// Package ocr recognizes the text of regions the layout detector missed.
// It crops the region from the page image, upscales narrow crops and hands
// the result to a Recognizer, retrying transient failures.
//
// The tesseract Recognizer requires the "ocr" build tag:
//
//	go build -tags ocr ./cmd/papertree
package ocr

import (
	"context"
	"errors"
	"time"
)

// ErrOCRNotEnabled is returned when OCR support was not compiled in.
// Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// ErrNoPageImage is returned when a page has no image to crop from.
var ErrNoPageImage = errors.New("page has no image")

// Recognizer turns an encoded image into text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Config controls recognition of synthesized regions.
type Config struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Language string        `mapstructure:"language" yaml:"language"`
	Attempts uint          `mapstructure:"attempts" yaml:"attempts"`
	Delay    time.Duration `mapstructure:"delay" yaml:"delay"`
	// MinWidth upscales crops narrower than this many pixels.
	MinWidth int `mapstructure:"min_width" yaml:"min_width"`
}

// DefaultConfig returns the default OCR settings.
func DefaultConfig() Config {
	return Config{
		Enabled:  false,
		Language: "eng",
		Attempts: 3,
		Delay:    200 * time.Millisecond,
		MinWidth: 1000,
	}
}
