// Package grouping partitions each page into title-anchored groups and
// stitches groups that continue across page breaks.
package grouping

import (
	"strings"

	"github.com/jackzampolin/papertree/internal/caption"
	"github.com/jackzampolin/papertree/internal/diag"
	"github.com/jackzampolin/papertree/internal/media"
	"github.com/jackzampolin/papertree/internal/region"
	"github.com/jackzampolin/papertree/internal/textmerge"
)

// Group is a run of regions anchored by at most one title.
type Group struct {
	// ID is the group's position in the document, -1 until it is
	// appended by the CrossPageMerger.
	ID       int
	Page     int
	Pages    []int
	Title    *region.Region
	Regions  []region.Region
	Text     string
	Captions []string
	Media    []media.Asset
}

// Titled reports whether the group is anchored by a title region.
func (g *Group) Titled() bool {
	return g.Title != nil
}

// TitleText returns the raw title text, or "" for untitled groups.
func (g *Group) TitleText() string {
	if g.Title == nil {
		return ""
	}
	return strings.TrimSpace(g.Title.Text)
}

func (g *Group) addPage(page int) {
	for _, p := range g.Pages {
		if p == page {
			return
		}
	}
	g.Pages = append(g.Pages, page)
}

// TitleGrouper splits a page's ordered regions at each title.
type TitleGrouper struct{}

// NewTitleGrouper creates a grouper.
func NewTitleGrouper() *TitleGrouper {
	return &TitleGrouper{}
}

// Group partitions regions, already in reading order, into groups. Regions
// before the first title form an untitled group. A page without regions
// yields no groups.
func (t *TitleGrouper) Group(page int, regions []region.Region) []*Group {
	var groups []*Group
	var open *Group

	for i := range regions {
		r := regions[i]
		if r.Kind == region.KindTitle {
			title := r
			open = &Group{ID: -1, Page: page, Pages: []int{page}, Title: &title}
			groups = append(groups, open)
			continue
		}
		if open == nil {
			open = &Group{ID: -1, Page: page, Pages: []int{page}}
			groups = append(groups, open)
		}
		open.Regions = append(open.Regions, r)
	}
	return groups
}

// Assembler derives a group's text, caption blocks and media from its regions.
type Assembler struct {
	merger *textmerge.Merger
	binder *caption.Binder
}

// NewAssembler creates an assembler.
func NewAssembler(merger *textmerge.Merger, binder *caption.Binder) *Assembler {
	return &Assembler{merger: merger, binder: binder}
}

// Assemble fills Text, Captions and Media. Text regions are stitched in
// order; text that starts with a caption stays a standalone block.
func (a *Assembler) Assemble(g *Group, report *diag.Report) {
	classifier := a.binder.Classifier()
	for _, r := range g.Regions {
		if r.Kind != region.KindText {
			continue
		}
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		if classifier.IsCaption(text) {
			g.Captions = append(g.Captions, text)
			continue
		}
		g.Text = a.merger.Stitch(g.Text, text).Text
	}
	g.Media = a.binder.Bind(g.Regions, report)
}

// CrossPageMerger appends page groups to the document, folding a page's
// leading untitled group into the previous document group.
type CrossPageMerger struct {
	merger *textmerge.Merger
}

// NewCrossPageMerger creates a merger that joins text with merger.
func NewCrossPageMerger(merger *textmerge.Merger) *CrossPageMerger {
	return &CrossPageMerger{merger: merger}
}

// Merge appends a page's groups to doc and returns the extended slice.
// The previous group keeps its title; its text is joined with a full
// overlap search and its regions, captions and media are concatenated.
func (m *CrossPageMerger) Merge(doc []*Group, page []*Group, report *diag.Report) []*Group {
	for i, g := range page {
		if i == 0 && !g.Titled() && len(doc) > 0 {
			target := doc[len(doc)-1]
			res := m.merger.Merge(target.Text, g.Text)
			if res.Strategy == textmerge.StrategyConcat {
				report.Info(diag.KindMergeConcatenated, diag.AtGroup(g.Page, target.ID),
					"no overlap found joining page %d into group %d", g.Page, target.ID)
			}
			target.Text = res.Text
			target.Regions = append(target.Regions, g.Regions...)
			target.Captions = append(target.Captions, g.Captions...)
			target.Media = append(target.Media, g.Media...)
			target.addPage(g.Page)
			continue
		}
		g.ID = len(doc)
		doc = append(doc, g)
	}
	return doc
}
