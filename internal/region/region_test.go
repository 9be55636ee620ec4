package region

import (
	"math"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
	}{
		{"text", KindText},
		{"Title", KindTitle},
		{" FIGURE ", KindFigure},
		{"picture", KindFigure},
		{"table", KindTable},
		{"list", KindList},
		{"formula", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseKind(tt.input); got != tt.expected {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBBoxGeometry(t *testing.T) {
	a := NewBBox(100, 100, 0, 0)
	if a.X1 != 0 || a.Y1 != 0 || a.X2 != 100 || a.Y2 != 100 {
		t.Fatalf("NewBBox did not normalize corners: %+v", a)
	}
	if a.Area() != 10000 {
		t.Errorf("Area() = %v, want 10000", a.Area())
	}

	b := BBox{X1: 50, Y1: 50, X2: 150, Y2: 150}
	inter := a.Intersection(b)
	if inter != (BBox{X1: 50, Y1: 50, X2: 100, Y2: 100}) {
		t.Errorf("Intersection() = %+v", inter)
	}
	if got := a.CoverageBy(b); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("CoverageBy() = %v, want 0.25", got)
	}

	disjoint := BBox{X1: 200, Y1: 200, X2: 300, Y2: 300}
	if got := a.CoverageBy(disjoint); got != 0 {
		t.Errorf("CoverageBy(disjoint) = %v, want 0", got)
	}
	if got := (BBox{}).CoverageBy(a); got != 0 {
		t.Errorf("empty box coverage = %v, want 0", got)
	}
}

func TestBBoxExpand(t *testing.T) {
	b := BBox{X1: 10, Y1: 10, X2: 90, Y2: 90}
	got := b.Expand(15, 100, 95)
	want := BBox{X1: 0, Y1: 0, X2: 100, Y2: 95}
	if got != want {
		t.Errorf("Expand() = %+v, want %+v", got, want)
	}
}

func TestAssignColumnsAndSort(t *testing.T) {
	p := Page{
		Width:  1000,
		Height: 1400,
		Regions: []Region{
			{ID: "r-right-top", BBox: BBox{X1: 520, Y1: 100, X2: 950, Y2: 200}},
			{ID: "r-left-low", BBox: BBox{X1: 50, Y1: 600, X2: 480, Y2: 700}},
			{ID: "r-left-top", BBox: BBox{X1: 50, Y1: 100, X2: 480, Y2: 200}},
			{ID: "r-wide", BBox: BBox{X1: 50, Y1: 20, X2: 950, Y2: 80}},
		},
	}

	AssignColumns(&p)
	SortReadingOrder(p.Regions)

	want := []string{"r-left-top", "r-left-low", "r-wide", "r-right-top"}
	for i, id := range want {
		if p.Regions[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, p.Regions[i].ID, id)
		}
	}
}

func TestMidlineWithoutWidth(t *testing.T) {
	p := Page{Regions: []Region{
		{BBox: BBox{X1: 0, X2: 300}},
		{BBox: BBox{X1: 320, X2: 800}},
	}}
	if got := p.Midline(); got != 400 {
		t.Errorf("Midline() = %v, want 400", got)
	}
}
