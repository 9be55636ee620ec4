package main

import (
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/papertree/internal/config"
	"github.com/jackzampolin/papertree/internal/ocr"
	"github.com/jackzampolin/papertree/internal/outline"
)

const testStream = `{
  "document": "attention",
  "pages": [
    {"index": 0, "width": 1000, "height": 400, "regions": [
      {"type": "title", "bbox": [50, 50, 400, 80], "text": "Attention Test"},
      {"type": "title", "bbox": [50, 100, 400, 120], "text": "1 Introduction"},
      {"type": "text", "bbox": [50, 130, 400, 390], "text": "We study layout."}
    ]}
  ]
}`

const figureStream = `{
  "document": "figures",
  "pages": [
    {"index": 0, "width": 1000, "height": 400, "regions": [
      {"type": "title", "bbox": [100, 20, 400, 40], "text": "1 Introduction"},
      {"type": "figure", "bbox": [100, 50, 400, 250]},
      {"type": "text", "bbox": [100, 255, 400, 280], "text": "Figure 1: Overview."}
    ]}
  ]
}`

func writeStream(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attention.regions.json")
	if err := os.WriteFile(path, []byte(testStream), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildDocument(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := writeStream(t)

	doc, err := buildDocument(context.Background(), buildInput{Regions: path}, config.DefaultConfig(), nil, logger)
	if err != nil {
		t.Fatalf("buildDocument() error = %v", err)
	}
	if doc.Root().Name != "Attention Test" || doc.Source() != path {
		t.Errorf("root=%q source=%q", doc.Root().Name, doc.Source())
	}

	kids, _ := doc.Children(outline.RootID)
	var found bool
	for _, k := range kids {
		if k.Name == "1 Introduction" {
			found = true
			if k.Content.Text != "We study layout." {
				t.Errorf("intro text = %q", k.Content.Text)
			}
		}
	}
	if !found {
		t.Errorf("no introduction section in %+v", kids)
	}

	out := filepath.Join(t.TempDir(), "exports", "attention.xlsx")
	if err := writeWorkbook(doc, out, logger); err != nil {
		t.Fatalf("writeWorkbook() error = %v", err)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Errorf("workbook not written: %v", err)
	}
}

func TestBuildDocumentErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := writeStream(t)

	if _, err := buildDocument(context.Background(), buildInput{Regions: filepath.Join(t.TempDir(), "missing.json")}, config.DefaultConfig(), nil, logger); err == nil {
		t.Error("expected error for missing stream")
	}
	if _, err := buildDocument(context.Background(), buildInput{Regions: path, PDF: "missing.pdf"}, config.DefaultConfig(), nil, logger); err == nil {
		t.Error("expected error for missing PDF")
	}

	cfg := config.DefaultConfig()
	cfg.OCR.Enabled = true
	_, err := buildDocument(context.Background(), buildInput{Regions: path}, cfg, nil, logger)
	if err == nil {
		// built with -tags ocr and tesseract available
		t.Skip("ocr support compiled in")
	}
	if !errors.Is(err, ocr.ErrOCRNotEnabled) {
		t.Errorf("expected ErrOCRNotEnabled, got %v", err)
	}
}

func TestBuildDocumentAssets(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	path := filepath.Join(dir, "figures.regions.json")
	if err := os.WriteFile(path, []byte(figureStream), 0o644); err != nil {
		t.Fatal(err)
	}

	images := filepath.Join(dir, "pages")
	if err := os.MkdirAll(images, 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(images, "page_0001.png"))
	if err != nil {
		t.Fatal(err)
	}
	// Half the declared page size; boxes are scaled before cropping.
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 500, 200))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	assets := filepath.Join(dir, "assets")
	doc, err := buildDocument(context.Background(), buildInput{Regions: path, Images: images, Assets: assets},
		config.DefaultConfig(), nil, logger)
	if err != nil {
		t.Fatalf("buildDocument() error = %v", err)
	}
	fig, err := doc.LookupLabel("Figure1")
	if err != nil {
		t.Fatalf("LookupLabel: %v", err)
	}
	if fig.Ref != filepath.Join(assets, "page_1_figure1.png") {
		t.Errorf("ref = %q", fig.Ref)
	}
	if info, err := os.Stat(fig.Ref); err != nil || info.Size() == 0 {
		t.Errorf("crop not written: %v", err)
	}

	// Without page images nothing is cropped and no ref is invented.
	doc, err = buildDocument(context.Background(), buildInput{Regions: path, Assets: assets},
		config.DefaultConfig(), nil, logger)
	if err != nil {
		t.Fatalf("buildDocument() error = %v", err)
	}
	if fig, _ := doc.LookupLabel("Figure1"); fig.Ref != "" {
		t.Errorf("ref without page images = %q", fig.Ref)
	}
}
