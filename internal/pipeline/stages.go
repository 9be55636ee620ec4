package pipeline

import (
	"context"
	"time"

	"github.com/jackzampolin/papertree/internal/caption"
	"github.com/jackzampolin/papertree/internal/diag"
	"github.com/jackzampolin/papertree/internal/gaps"
	"github.com/jackzampolin/papertree/internal/grouping"
	"github.com/jackzampolin/papertree/internal/metrics"
	"github.com/jackzampolin/papertree/internal/outline"
	"github.com/jackzampolin/papertree/internal/region"
	"github.com/jackzampolin/papertree/internal/textmerge"
)

// Built-in stage names.
const (
	StageGaps     = "gaps"
	StageGroup    = "group"
	StageAssemble = "assemble"
	StageMerge    = "merge"
	StageNumber   = "number"
	StageTree     = "tree"
	StageCrop     = "crop"

	// StageOCR attributes text recognition metrics.
	StageOCR = "ocr"
)

// gapStage synthesizes regions for missed content and recognizes their text.
type gapStage struct {
	detector *gaps.Detector
	text     TextSource
	metrics  *metrics.Recorder
}

func (s *gapStage) Name() string           { return StageGaps }
func (s *gapStage) Dependencies() []string { return nil }
func (s *gapStage) Description() string {
	return "Synthesize unknown regions for uncovered vertical gaps"
}

func (s *gapStage) Run(ctx context.Context, st *State) error {
	st.Regions = make([][]region.Region, len(st.Pages))
	for i, page := range st.Pages {
		regions := s.detector.Detect(page, st.Report)
		if s.text != nil {
			for j := range regions {
				r := &regions[j]
				if !r.Synthetic {
					continue
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				start := time.Now()
				text, err := s.text.RegionText(ctx, page, *r)
				s.metrics.RecordSince(st.Source, StageOCR, r.ID, start, err)
				if err != nil {
					st.Report.Warn(diag.KindRegionTextFailed, diag.AtRegion(page.Index, r.ID),
						"recognize synthesized region: %v", err)
					continue
				}
				r.Text = text
			}
		}
		st.Regions[i] = regions
	}
	return nil
}

// groupStage splits every page at its titles.
type groupStage struct{}

func (s *groupStage) Name() string           { return StageGroup }
func (s *groupStage) Dependencies() []string { return []string{StageGaps} }
func (s *groupStage) Description() string {
	return "Partition each page's regions into title-anchored groups"
}

func (s *groupStage) Run(_ context.Context, st *State) error {
	grouper := grouping.NewTitleGrouper()
	st.PageGroups = make([][]*grouping.Group, len(st.Pages))
	for i, page := range st.Pages {
		st.PageGroups[i] = grouper.Group(page.Index, st.Regions[i])
	}
	return nil
}

// assembleStage stitches group text and binds captions.
type assembleStage struct {
	merger *textmerge.Merger
	binder *caption.Binder
}

func (s *assembleStage) Name() string           { return StageAssemble }
func (s *assembleStage) Dependencies() []string { return []string{StageGroup} }
func (s *assembleStage) Description() string {
	return "Stitch group text and bind media regions to their captions"
}

func (s *assembleStage) Run(_ context.Context, st *State) error {
	assembler := grouping.NewAssembler(s.merger, s.binder)
	for _, groups := range st.PageGroups {
		for _, g := range groups {
			assembler.Assemble(g, st.Report)
		}
	}
	return nil
}

// mergeStage joins groups that continue across page breaks.
type mergeStage struct {
	merger *textmerge.Merger
}

func (s *mergeStage) Name() string           { return StageMerge }
func (s *mergeStage) Dependencies() []string { return []string{StageAssemble} }
func (s *mergeStage) Description() string {
	return "Merge groups continued across page breaks"
}

func (s *mergeStage) Run(_ context.Context, st *State) error {
	merger := grouping.NewCrossPageMerger(s.merger)
	st.Groups = nil
	for _, groups := range st.PageGroups {
		st.Groups = merger.Merge(st.Groups, groups, st.Report)
	}
	return nil
}

// numberStage parses titles, infers levels and corrects numbering.
type numberStage struct {
	numberer *outline.Numberer
}

func (s *numberStage) Name() string           { return StageNumber }
func (s *numberStage) Dependencies() []string { return []string{StageMerge} }
func (s *numberStage) Description() string {
	return "Parse title prefixes, infer levels and correct numbering"
}

func (s *numberStage) Run(_ context.Context, st *State) error {
	st.Titles = make([]*outline.TitleInfo, len(st.Groups))
	var titled []*outline.TitleInfo
	for i, g := range st.Groups {
		if !g.Titled() {
			continue
		}
		info := outline.ParseTitle(g.TitleText())
		info.Location = diag.Location{Page: g.Page, RegionID: g.Title.ID, GroupID: g.ID, NodeID: -1}
		if info.Repaired {
			st.Report.Info(diag.KindTitleRepaired, info.Location,
				"repaired title prefix %q to %q", g.TitleText(), info.Prefix)
		}
		st.Titles[i] = &info
		titled = append(titled, &info)
	}
	if len(titled) == 0 {
		st.Report.Warn(diag.KindNoTitles, diag.Nowhere, "document has no titles")
	}
	s.numberer.Number(titled, st.Report)
	return nil
}

// treeStage builds the outline tree and media catalog.
type treeStage struct{}

func (s *treeStage) Name() string           { return StageTree }
func (s *treeStage) Dependencies() []string { return []string{StageNumber} }
func (s *treeStage) Description() string {
	return "Build the outline tree and register media"
}

func (s *treeStage) Run(_ context.Context, st *State) error {
	st.Tree = outline.NewTreeBuilder().Build(st.Groups, st.Titles, st.Catalog, st.Report)
	return nil
}

// cropStage saves the page-image crop of every detected asset.
type cropStage struct {
	sink AssetSink
}

func (s *cropStage) Name() string           { return StageCrop }
func (s *cropStage) Dependencies() []string { return []string{StageTree} }
func (s *cropStage) Description() string {
	return "Save media crops from the page images"
}

func (s *cropStage) Run(ctx context.Context, st *State) error {
	pages := make(map[int]region.Page, len(st.Pages))
	for _, page := range st.Pages {
		pages[page.Index] = page
	}

	for _, a := range st.Catalog.All() {
		if a.UserSupplied || a.Ref != "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		loc := diag.AtRegion(a.Page, a.RegionID)
		page, ok := pages[a.Page]
		switch {
		case !ok || page.Image == "":
			st.Report.Info(diag.KindMediaUncropped, loc, "no page image for %s", a.Label)
			continue
		case a.BBox.IsEmpty():
			st.Report.Info(diag.KindMediaUncropped, loc, "%s has an empty box", a.Label)
			continue
		}

		ref, err := s.sink.SaveAsset(ctx, page, a)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			st.Report.Warn(diag.KindMediaUncropped, loc, "save %s: %v", a.Label, err)
			continue
		}
		if err := st.Catalog.SetRef(a.ID, ref); err != nil {
			return err
		}
	}
	return nil
}
