// Package region defines the typed, boxed page regions produced by the
// layout-detection collaborator and the ordering rules the rest of the
// reconstruction relies on.
package region

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the layout class of a region.
type Kind string

const (
	KindText    Kind = "Text"
	KindTitle   Kind = "Title"
	KindList    Kind = "List"
	KindTable   Kind = "Table"
	KindFigure  Kind = "Figure"
	KindUnknown Kind = "Unknown"
)

// ParseKind converts a detector label to a Kind.
// Unrecognized labels map to KindUnknown.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "plain text", "paragraph":
		return KindText
	case "title", "heading", "section-header":
		return KindTitle
	case "list", "listing":
		return KindList
	case "table":
		return KindTable
	case "figure", "picture", "image":
		return KindFigure
	default:
		return KindUnknown
	}
}

// IsMedia reports whether regions of this kind are bound to captions
// instead of flowing into section text.
func (k Kind) IsMedia() bool {
	switch k {
	case KindList, KindTable, KindFigure, KindUnknown:
		return true
	}
	return false
}

// Column identifies the column a region was assigned to.
type Column int

const (
	ColumnLeft  Column = 0
	ColumnRight Column = 1
)

// Region is one typed rectangle of a page with its OCR text.
type Region struct {
	ID        string  `json:"id"`
	Page      int     `json:"page"`
	Column    Column  `json:"column"`
	BBox      BBox    `json:"bbox"`
	Kind      Kind    `json:"type"`
	Text      string  `json:"text,omitempty"`
	Score     float64 `json:"score,omitempty"`
	Synthetic bool    `json:"synthetic,omitempty"`
}

// Page is the unit the core consumes: all regions of one page.
type Page struct {
	Index   int      `json:"index"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Image   string   `json:"image,omitempty"`
	Regions []Region `json:"regions"`
}

// RegionID returns the stable id of the n-th detected region on a page.
func RegionID(page, n int) string {
	return fmt.Sprintf("p%d-r%d", page, n)
}

// GapID returns the stable id of the n-th synthesized region on a page.
func GapID(page, n int) string {
	return fmt.Sprintf("p%d-gap%d", page, n)
}

// Midline returns the x coordinate that splits the page into columns.
// Pages without a declared width fall back to the widest region extent.
func (p Page) Midline() float64 {
	width := p.Width
	if width <= 0 {
		for _, r := range p.Regions {
			if r.BBox.X2 > width {
				width = r.BBox.X2
			}
		}
	}
	return width / 2
}

// AssignColumns sets each region's column by comparing its x-center
// with the page midline.
func AssignColumns(p *Page) {
	mid := p.Midline()
	for i := range p.Regions {
		if p.Regions[i].BBox.CenterX() < mid {
			p.Regions[i].Column = ColumnLeft
		} else {
			p.Regions[i].Column = ColumnRight
		}
	}
}

// SortReadingOrder orders regions by column, then top edge, then left
// edge. The sort is stable so equal keys keep detector order.
func SortReadingOrder(regions []Region) {
	sort.SliceStable(regions, func(i, j int) bool {
		a, b := regions[i], regions[j]
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		if a.BBox.Y1 != b.BBox.Y1 {
			return a.BBox.Y1 < b.BBox.Y1
		}
		return a.BBox.X1 < b.BBox.X1
	})
}

// SortPages orders pages by index.
func SortPages(pages []Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Index < pages[j].Index
	})
}

// ByColumn splits regions into per-column slices, preserving order.
func ByColumn(regions []Region) map[Column][]Region {
	out := make(map[Column][]Region, 2)
	for _, r := range regions {
		out[r.Column] = append(out[r.Column], r)
	}
	return out
}
