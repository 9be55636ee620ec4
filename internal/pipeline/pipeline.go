// Package pipeline runs the reconstruction stages over a region stream and
// produces a document.Document.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackzampolin/papertree/internal/caption"
	"github.com/jackzampolin/papertree/internal/diag"
	"github.com/jackzampolin/papertree/internal/document"
	"github.com/jackzampolin/papertree/internal/gaps"
	"github.com/jackzampolin/papertree/internal/media"
	"github.com/jackzampolin/papertree/internal/metrics"
	"github.com/jackzampolin/papertree/internal/outline"
	"github.com/jackzampolin/papertree/internal/region"
	"github.com/jackzampolin/papertree/internal/textmerge"
)

// Config groups the settings of every stage.
type Config struct {
	Gaps     gaps.Config      `mapstructure:"gaps" yaml:"gaps"`
	Merge    textmerge.Config `mapstructure:"merge" yaml:"merge"`
	Captions caption.Config   `mapstructure:"captions" yaml:"captions"`
	Outline  outline.Config   `mapstructure:"outline" yaml:"outline"`
}

// DefaultConfig returns the default pipeline settings.
func DefaultConfig() Config {
	return Config{
		Gaps:     gaps.DefaultConfig(),
		Merge:    textmerge.DefaultConfig(),
		Captions: caption.DefaultConfig(),
		Outline:  outline.DefaultConfig(),
	}
}

// TextSource recognizes the text of a region that the layout detector
// missed. It is called once per synthesized region, in reading order.
type TextSource interface {
	RegionText(ctx context.Context, page region.Page, r region.Region) (string, error)
}

// AssetSink stores the image of a media asset and returns its reference.
type AssetSink interface {
	SaveAsset(ctx context.Context, page region.Page, a media.Asset) (string, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTextSource sets the recognizer for synthesized regions. Without one
// synthesized regions keep empty text.
func WithTextSource(src TextSource) Option {
	return func(p *Pipeline) {
		p.text = src
	}
}

// WithAssetSink saves a crop of every detected media asset after the tree
// is built. Without one assets keep an empty Ref.
func WithAssetSink(sink AssetSink) Option {
	return func(p *Pipeline) {
		p.assets = sink
	}
}

// WithMetrics records the duration of every stage and text recognition
// call.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(p *Pipeline) {
		p.metrics = rec
	}
}

// WithStage registers an extra stage after the built-in ones.
func WithStage(s Stage) Option {
	return func(p *Pipeline) {
		p.extra = append(p.extra, s)
	}
}

// Pipeline is an explicitly constructed reconstruction run configuration.
// A Pipeline holds no per-document state and may be reused.
type Pipeline struct {
	config   Config
	logger   *slog.Logger
	text     TextSource
	assets   AssetSink
	metrics  *metrics.Recorder
	extra    []Stage
	registry *Registry
	stages   []Stage
}

// New builds a pipeline and resolves its stage order.
func New(config Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	merger := textmerge.NewMergerWithConfig(config.Merge)
	binder := caption.NewBinder(caption.NewClassifier(config.Captions))

	p.registry = NewRegistry()
	builtin := []Stage{
		&gapStage{detector: gaps.NewDetectorWithConfig(config.Gaps), text: p.text, metrics: p.metrics},
		&groupStage{},
		&assembleStage{merger: merger, binder: binder},
		&mergeStage{merger: merger},
		&numberStage{numberer: outline.NewNumberer(config.Outline)},
		&treeStage{},
	}
	if p.assets != nil {
		builtin = append(builtin, &cropStage{sink: p.assets})
	}
	for _, s := range append(builtin, p.extra...) {
		if err := p.registry.Register(s); err != nil {
			return nil, err
		}
	}

	stages, err := p.registry.Ordered()
	if err != nil {
		return nil, fmt.Errorf("order stages: %w", err)
	}
	p.stages = stages
	return p, nil
}

// Config returns the pipeline settings.
func (p *Pipeline) Config() Config {
	return p.config
}

// Stages returns the stages in execution order.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Run rebuilds a document from pages. Input problems become diagnostics;
// an error is returned only when ctx is done or an extra stage fails.
func (p *Pipeline) Run(ctx context.Context, source string, pages []region.Page) (*document.Document, error) {
	return p.RunWithReport(ctx, source, pages, nil)
}

// RunWithReport is Run with diagnostics appended to an existing report,
// e.g. one already holding findings from loading the input.
func (p *Pipeline) RunWithReport(ctx context.Context, source string, pages []region.Page, report *diag.Report) (*document.Document, error) {
	if report == nil {
		report = diag.NewReport()
	}
	st := &State{
		Source:  source,
		Pages:   prepare(pages),
		Catalog: media.NewCatalog(),
		Report:  report,
		Logger:  p.logger,
	}
	for _, page := range st.Pages {
		if len(page.Regions) == 0 {
			st.Report.Warn(diag.KindEmptyPage, diag.AtPage(page.Index), "page %d has no regions", page.Index)
		}
	}

	start := time.Now()
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stageStart := time.Now()
		before := st.Report.Len()
		err := s.Run(ctx, st)
		p.metrics.RecordSince(source, s.Name(), "", stageStart, err)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", s.Name(), err)
		}
		p.logger.Debug("stage complete",
			"stage", s.Name(),
			"duration", time.Since(stageStart),
			"diagnostics", st.Report.Len()-before)
	}

	if st.Tree == nil {
		st.Tree = outline.NewTree(outline.UntitledName)
	}
	doc := document.New(source, len(st.Pages), st.Tree, st.Catalog, st.Report)

	st.Report.LogSummary(p.logger)
	p.logger.Info("document rebuilt",
		"source", source,
		"pages", len(st.Pages),
		"groups", len(st.Groups),
		"nodes", st.Tree.Len(),
		"media", st.Catalog.Len(),
		"diagnostics", st.Report.Len(),
		"duration", time.Since(start))
	return doc, nil
}

// prepare copies pages into page order and fills region ids, page indexes
// and kinds the input left unset.
func prepare(pages []region.Page) []region.Page {
	out := make([]region.Page, len(pages))
	for i, page := range pages {
		page.Regions = append([]region.Region(nil), page.Regions...)
		for j := range page.Regions {
			r := &page.Regions[j]
			r.Page = page.Index
			if r.ID == "" {
				r.ID = region.RegionID(page.Index, j)
			}
			if r.Kind == "" {
				r.Kind = region.KindUnknown
			}
		}
		out[i] = page
	}
	region.SortPages(out)
	return out
}
