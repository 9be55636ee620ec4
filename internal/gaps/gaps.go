// Package gaps recovers content the layout detector missed by looking for
// unexplained vertical whitespace in each page column.
package gaps

import (
	"github.com/jackzampolin/papertree/internal/diag"
	"github.com/jackzampolin/papertree/internal/region"
)

// Config holds the gap detection thresholds. Distances are in page image
// pixels.
type Config struct {
	// MinGap is the interior gap between two regions that triggers a candidate.
	MinGap float64 `mapstructure:"min_gap" yaml:"min_gap"`
	// EdgeGap is the margin threshold for the top and bottom of a column.
	EdgeGap float64 `mapstructure:"edge_gap" yaml:"edge_gap"`
	// OverlapThreshold is the largest share of a candidate that may be
	// covered by a real region before it is rejected.
	OverlapThreshold float64 `mapstructure:"overlap_threshold" yaml:"overlap_threshold"`
	// Padding is added around a synthesized region when it is cropped for OCR.
	Padding float64 `mapstructure:"padding" yaml:"padding"`
	// MinHeight is the smallest margin candidate worth keeping.
	MinHeight float64 `mapstructure:"min_height" yaml:"min_height"`
}

// DefaultConfig returns thresholds tuned for 300 DPI academic paper scans.
func DefaultConfig() Config {
	return Config{
		MinGap:           120,
		EdgeGap:          310,
		OverlapThreshold: 0.2,
		Padding:          15,
		MinHeight:        10,
	}
}

// Bounds is the vertical extent of a column.
type Bounds struct {
	Top    float64
	Bottom float64
}

// Detector synthesizes Unknown regions for suspicious gaps.
type Detector struct {
	config Config
}

// NewDetector creates a detector with default thresholds.
func NewDetector() *Detector {
	return NewDetectorWithConfig(DefaultConfig())
}

// NewDetectorWithConfig creates a detector with the given thresholds.
func NewDetectorWithConfig(config Config) *Detector {
	return &Detector{config: config}
}

// Config returns the detector's thresholds.
func (d *Detector) Config() Config {
	return d.config
}

// Detect assigns columns, finds gaps in each column and returns the page
// regions plus every accepted synthetic region, sorted by (column, y1).
// The input page is not modified.
func (d *Detector) Detect(page region.Page, report *diag.Report) []region.Region {
	work := page
	work.Regions = append([]region.Region(nil), page.Regions...)
	region.AssignColumns(&work)
	region.SortReadingOrder(work.Regions)

	bounds := Bounds{Top: 0, Bottom: page.Height}
	out := append([]region.Region(nil), work.Regions...)

	columns := region.ByColumn(work.Regions)
	seq := 0
	for _, col := range []region.Column{region.ColumnLeft, region.ColumnRight} {
		candidates := d.DetectColumn(columns[col], bounds)
		for _, c := range candidates {
			c.Page = page.Index
			c.Column = col
			worst := maxCoverage(c.BBox, work.Regions)
			if worst > d.config.OverlapThreshold {
				report.Info(diag.KindGapRejected, diag.AtPage(page.Index),
					"gap candidate y=%.0f..%.0f overlaps existing region by %.0f%%", c.BBox.Y1, c.BBox.Y2, worst*100)
				continue
			}
			c.ID = region.GapID(page.Index, seq)
			seq++
			report.Info(diag.KindGapSynthesized, diag.AtRegion(page.Index, c.ID),
				"synthesized unknown region y=%.0f..%.0f", c.BBox.Y1, c.BBox.Y2)
			out = append(out, c)
		}
	}

	region.SortReadingOrder(out)
	return out
}

// DetectColumn returns candidate regions for one column's regions, which
// must already be sorted by y1. Candidates are not validated for overlap.
// An empty column yields no candidates.
func (d *Detector) DetectColumn(regions []region.Region, bounds Bounds) []region.Region {
	if len(regions) == 0 {
		return nil
	}

	var out []region.Region
	first := regions[0]

	if first.BBox.Y1-bounds.Top > d.config.EdgeGap {
		top := bounds.Top + d.config.EdgeGap
		if first.BBox.Y1-top > d.config.MinHeight {
			out = append(out, synth(first.BBox.X1, top, first.BBox.X2, first.BBox.Y1))
		}
	}

	for i := 0; i+1 < len(regions); i++ {
		cur, next := regions[i], regions[i+1]
		if next.BBox.Y1-cur.BBox.Y2 > d.config.MinGap {
			out = append(out, synth(cur.BBox.X1, cur.BBox.Y2, cur.BBox.X2, next.BBox.Y1))
		}
	}

	last := regions[len(regions)-1]
	if bounds.Bottom > 0 && bounds.Bottom-last.BBox.Y2 > d.config.EdgeGap {
		bottom := bounds.Bottom - d.config.EdgeGap
		if bottom-last.BBox.Y2 > d.config.MinHeight {
			out = append(out, synth(last.BBox.X1, last.BBox.Y2, last.BBox.X2, bottom))
		}
	}

	return out
}

func synth(x1, y1, x2, y2 float64) region.Region {
	return region.Region{
		BBox:      region.BBox{X1: x1, Y1: y1, X2: x2, Y2: y2},
		Kind:      region.KindUnknown,
		Synthetic: true,
	}
}

// maxCoverage returns the largest share of box covered by any real region.
func maxCoverage(box region.BBox, regions []region.Region) float64 {
	worst := 0.0
	for _, r := range regions {
		if cov := box.CoverageBy(r.BBox); cov > worst {
			worst = cov
		}
	}
	return worst
}
