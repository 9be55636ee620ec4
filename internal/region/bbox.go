package region

import "math"

// BBox is an axis-aligned rectangle in page image coordinates.
// Y grows downward, so Y1 is the top edge and Y2 the bottom edge.
type BBox struct {
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
	X2 float64 `json:"x2" yaml:"x2"`
	Y2 float64 `json:"y2" yaml:"y2"`
}

// NewBBox builds a box from two corners in any order.
func NewBBox(x1, y1, x2, y2 float64) BBox {
	return BBox{
		X1: math.Min(x1, x2),
		Y1: math.Min(y1, y2),
		X2: math.Max(x1, x2),
		Y2: math.Max(y1, y2),
	}
}

// Width returns the horizontal extent.
func (b BBox) Width() float64 {
	return b.X2 - b.X1
}

// Height returns the vertical extent.
func (b BBox) Height() float64 {
	return b.Y2 - b.Y1
}

// Area returns the area of the box, zero for degenerate boxes.
func (b BBox) Area() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.Width() * b.Height()
}

// CenterX returns the horizontal center.
func (b BBox) CenterX() float64 {
	return (b.X1 + b.X2) / 2
}

// IsEmpty returns true if the box has no positive area.
func (b BBox) IsEmpty() bool {
	return b.X2 <= b.X1 || b.Y2 <= b.Y1
}

// Intersection returns the overlapping rectangle, or the zero box.
func (b BBox) Intersection(other BBox) BBox {
	x1 := math.Max(b.X1, other.X1)
	y1 := math.Max(b.Y1, other.Y1)
	x2 := math.Min(b.X2, other.X2)
	y2 := math.Min(b.Y2, other.Y2)
	if x2 <= x1 || y2 <= y1 {
		return BBox{}
	}
	return BBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// CoverageBy returns the share of b's area covered by other (0..1).
func (b BBox) CoverageBy(other BBox) float64 {
	area := b.Area()
	if area == 0 {
		return 0
	}
	return b.Intersection(other).Area() / area
}

// Expand grows the box by margin on every side and clips it to the
// page rectangle when width and height are positive.
func (b BBox) Expand(margin, width, height float64) BBox {
	out := BBox{
		X1: math.Max(0, b.X1-margin),
		Y1: math.Max(0, b.Y1-margin),
		X2: b.X2 + margin,
		Y2: b.Y2 + margin,
	}
	if width > 0 {
		out.X2 = math.Min(out.X2, width)
	}
	if height > 0 {
		out.Y2 = math.Min(out.Y2, height)
	}
	return out
}
