package ocr

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/papertree/internal/media"
	"github.com/jackzampolin/papertree/internal/region"
)

func TestAssetWriterSaveAsset(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "assets")
	w := NewAssetWriter(dir, 5)
	page := region.Page{Index: 2, Image: writePage(t)}
	a := media.Asset{Kind: media.KindFigure, Number: 1, Label: "Figure1", Page: 2,
		BBox: region.BBox{X1: 10, Y1: 20, X2: 50, Y2: 80}}

	path, err := w.SaveAsset(context.Background(), page, a)
	if err != nil {
		t.Fatalf("SaveAsset() error = %v", err)
	}
	if path != filepath.Join(dir, "page_3_figure1.png") {
		t.Errorf("path = %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("asset not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode asset: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 70 {
		t.Errorf("crop size = %dx%d, want 50x70", b.Dx(), b.Dy())
	}
}

func TestAssetWriterFailures(t *testing.T) {
	a := media.Asset{Kind: media.KindTable, Number: 1, Label: "Table1",
		BBox: region.BBox{X1: 10, Y1: 10, X2: 40, Y2: 40}}

	t.Run("no page image", func(t *testing.T) {
		w := NewAssetWriter(t.TempDir(), 0)
		if _, err := w.SaveAsset(context.Background(), region.Page{}, a); !errors.Is(err, ErrNoPageImage) {
			t.Errorf("error = %v, want ErrNoPageImage", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		w := NewAssetWriter(t.TempDir(), 0)
		page := region.Page{Image: writePage(t)}
		if _, err := w.SaveAsset(ctx, page, a); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}
