//go:build !ocr

package ocr

import "context"

// Tesseract is unavailable without the "ocr" build tag.
type Tesseract struct{}

// NewTesseract always returns ErrOCRNotEnabled.
func NewTesseract(string) (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

// Recognize always returns ErrOCRNotEnabled.
func (t *Tesseract) Recognize(context.Context, []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// Close is a no-op.
func (t *Tesseract) Close() error {
	return nil
}
