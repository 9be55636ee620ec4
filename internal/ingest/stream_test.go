package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/papertree/internal/region"
)

const sampleStream = `{
  "pages": [
    {"index": 1, "width": 1700, "height": 2200, "regions": [
      {"type": "plain text", "bbox": [900, 400, 100, 300], "text": "body"}
    ]},
    {"index": 0, "width": 1700, "height": 2200, "image": "p0.png", "regions": [
      {"id": "t1", "type": "Title", "bbox": [100, 120, 900, 160], "text": "1 Introduction", "score": 0.98},
      {"type": "picture", "bbox": [100, 200, 900, 600]},
      {"type": "formula", "bbox": [100, 700, 900, 760]}
    ]}
  ]
}`

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid", raw: sampleStream},
		{name: "empty pages", raw: `{"pages": []}`},
		{name: "missing bbox", raw: `{"pages": [{"index": 0, "regions": [{"type": "Text"}]}]}`, wantErr: true},
		{name: "duplicate page", raw: `{"pages": [{"index": 0, "regions": []}, {"index": 0, "regions": []}]}`, wantErr: true},
		{name: "garbage", raw: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStream) {
					t.Errorf("Decode() error = %v, want ErrInvalidStream", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Decode() error = %v", err)
			}
		})
	}
}

func TestRegionPages(t *testing.T) {
	s, err := Decode([]byte(sampleStream))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	pages := s.RegionPages()

	if len(pages) != 2 || pages[0].Index != 0 || pages[1].Index != 1 {
		t.Fatalf("pages not sorted: %+v", pages)
	}

	first := pages[0].Regions
	if len(first) != 3 {
		t.Fatalf("expected 3 regions, got %d", len(first))
	}
	if first[0].ID != "t1" || first[0].Kind != region.KindTitle || first[0].Score != 0.98 {
		t.Errorf("unexpected title region %+v", first[0])
	}
	if first[1].ID != region.RegionID(0, 1) || first[1].Kind != region.KindFigure {
		t.Errorf("unexpected figure region %+v", first[1])
	}
	if first[2].Kind != region.KindUnknown {
		t.Errorf("unrecognized label should be Unknown, got %s", first[2].Kind)
	}

	body := pages[1].Regions[0]
	want := region.BBox{X1: 100, Y1: 300, X2: 900, Y2: 400}
	if body.Kind != region.KindText || body.BBox != want || body.Page != 1 {
		t.Errorf("unexpected body region %+v", body)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "attention-2.regions.json")
	raw := `{"pdf": "attention.pdf", "pages": []}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Document != "attention-2" {
		t.Errorf("document = %q", s.Document)
	}
	if s.PDF != filepath.Join(dir, "attention.pdf") {
		t.Errorf("pdf = %q", s.PDF)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/path/to/attention.regions.json", "attention"},
		{"/path/to/paper-1.pdf", "paper"},
		{"/path/to/paper-10.json", "paper"},
		{"simple.json", "simple"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := deriveTitle(tt.input); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
