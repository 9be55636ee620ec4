package pipeline

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/papertree/internal/diag"
	"github.com/jackzampolin/papertree/internal/grouping"
	"github.com/jackzampolin/papertree/internal/media"
	"github.com/jackzampolin/papertree/internal/outline"
	"github.com/jackzampolin/papertree/internal/region"
)

// Stage is one step of the reconstruction. Stages run in dependency order,
// one at a time, each over the whole document in page order.
type Stage interface {
	Name() string           // e.g., "gaps", "group"
	Dependencies() []string // Stages that must complete first
	Description() string

	// Run advances the shared state. Built-in stages record problems in
	// st.Report and never fail; an error aborts the run.
	Run(ctx context.Context, st *State) error
}

// State is the work in progress handed from stage to stage.
type State struct {
	Source string
	Pages  []region.Page

	// Regions holds each page's gap-filled regions in reading order.
	Regions [][]region.Region
	// PageGroups holds each page's groups before cross-page merging.
	PageGroups [][]*grouping.Group
	// Groups is the document-wide group list.
	Groups []*grouping.Group
	// Titles is parallel to Groups, nil for untitled groups.
	Titles []*outline.TitleInfo

	Catalog *media.Catalog
	Tree    *outline.Tree
	Report  *diag.Report
	Logger  *slog.Logger
}
