//go:build !ocr

package ocr

import (
	"context"
	"errors"
	"testing"
)

func TestNewTesseractReturnsError(t *testing.T) {
	client, err := NewTesseract("eng")
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("Expected ErrOCRNotEnabled, got: %v", err)
	}
	if client != nil {
		t.Error("Expected nil client when OCR is disabled")
	}
}

func TestStubRecognize(t *testing.T) {
	var client *Tesseract
	if _, err := client.Recognize(context.Background(), nil); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("Expected ErrOCRNotEnabled, got: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client should not error: %v", err)
	}
}
