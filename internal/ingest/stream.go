// Package ingest loads region streams produced by the layout/OCR
// collaborator and prepares page images from the source PDF.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jackzampolin/papertree/internal/region"
	"github.com/jackzampolin/papertree/internal/schema"
)

// ErrInvalidStream is returned when a region stream fails validation.
var ErrInvalidStream = errors.New("invalid region stream")

// Stream is a decoded region-stream file.
type Stream struct {
	Document string       `json:"document"`
	PDF      string       `json:"pdf,omitempty"`
	Pages    []StreamPage `json:"pages"`
}

// StreamPage is one page as it appears on the wire.
type StreamPage struct {
	Index   int            `json:"index"`
	Width   float64        `json:"width"`
	Height  float64        `json:"height"`
	Image   string         `json:"image,omitempty"`
	Regions []StreamRegion `json:"regions"`
}

// StreamRegion is one detected region as it appears on the wire. BBox is
// [x1, y1, x2, y2] in page image pixels.
type StreamRegion struct {
	ID    string    `json:"id,omitempty"`
	Type  string    `json:"type"`
	BBox  []float64 `json:"bbox"`
	Text  string    `json:"text,omitempty"`
	Score float64   `json:"score,omitempty"`
}

// Load reads, validates and decodes a region-stream file. A stream
// without a document name is named after the file.
func Load(path string) (*Stream, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read region stream: %w", err)
	}
	s, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Document == "" {
		s.Document = deriveTitle(path)
	}
	if s.PDF != "" && !filepath.IsAbs(s.PDF) {
		s.PDF = filepath.Join(filepath.Dir(path), s.PDF)
	}
	return s, nil
}

// Decode validates raw JSON against the region-stream schema and decodes it.
func Decode(raw []byte) (*Stream, error) {
	if err := schema.Validate(schema.RegionStream, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStream, err)
	}
	var s Stream
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStream, err)
	}
	seen := make(map[int]bool, len(s.Pages))
	for _, p := range s.Pages {
		if seen[p.Index] {
			return nil, fmt.Errorf("%w: page %d appears twice", ErrInvalidStream, p.Index)
		}
		seen[p.Index] = true
	}
	return &s, nil
}

// RegionPages converts the stream to core pages. Detector labels are
// mapped with region.ParseKind and boxes are normalized so x1 <= x2 and
// y1 <= y2.
func (s *Stream) RegionPages() []region.Page {
	pages := make([]region.Page, 0, len(s.Pages))
	for _, sp := range s.Pages {
		page := region.Page{
			Index:  sp.Index,
			Width:  sp.Width,
			Height: sp.Height,
			Image:  sp.Image,
		}
		for n, sr := range sp.Regions {
			id := sr.ID
			if id == "" {
				id = region.RegionID(sp.Index, n)
			}
			page.Regions = append(page.Regions, region.Region{
				ID:    id,
				Page:  sp.Index,
				BBox:  region.NewBBox(sr.BBox[0], sr.BBox[1], sr.BBox[2], sr.BBox[3]),
				Kind:  region.ParseKind(sr.Type),
				Text:  sr.Text,
				Score: sr.Score,
			})
		}
		pages = append(pages, page)
	}
	region.SortPages(pages)
	return pages
}

var numericSuffix = regexp.MustCompile(`-\d+$`)

// deriveTitle extracts a document name from a file name.
// e.g., "attention.regions.json" -> "attention"
// e.g., "paper-1.pdf" -> "paper"
func deriveTitle(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.TrimSuffix(name, ".regions")
	return numericSuffix.ReplaceAllString(name, "")
}
