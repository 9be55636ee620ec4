package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/papertree/internal/api"
	"github.com/jackzampolin/papertree/internal/config"
	"github.com/jackzampolin/papertree/internal/diag"
	"github.com/jackzampolin/papertree/internal/document"
	"github.com/jackzampolin/papertree/internal/export"
	"github.com/jackzampolin/papertree/internal/home"
	"github.com/jackzampolin/papertree/internal/ingest"
	"github.com/jackzampolin/papertree/internal/metrics"
	"github.com/jackzampolin/papertree/internal/ocr"
	"github.com/jackzampolin/papertree/internal/pipeline"
)

// buildInput names the files a document is built from.
type buildInput struct {
	Regions string            // region-stream JSON
	PDF     string            // overrides the stream's pdf field
	Images  string            // page image directory; defaults to the home pages dir
	Assets  string            // media crop directory; defaults to the home assets dir
	Metrics *metrics.Recorder // optional stage timings
}

// buildDocument loads a region stream and runs the pipeline over it.
func buildDocument(ctx context.Context, in buildInput, cfg *config.Config, h *home.Dir, logger *slog.Logger) (*document.Document, error) {
	stream, err := ingest.Load(in.Regions)
	if err != nil {
		return nil, err
	}
	pages := stream.RegionPages()
	report := diag.NewReport()

	pdf := in.PDF
	if pdf == "" {
		pdf = stream.PDF
	}
	if pdf != "" {
		if err := ingest.CheckPageCount(pages, pdf, report); err != nil {
			return nil, err
		}
	}

	images := in.Images
	if images == "" && h != nil {
		if dir := h.PagesDir(stream.Document); dirExists(dir) {
			images = dir
		}
	}
	if images != "" {
		ingest.AttachImages(pages, images)
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger), pipeline.WithMetrics(in.Metrics)}

	assets := in.Assets
	if assets == "" && h != nil {
		assets = h.AssetsDir(stream.Document)
	}
	if images != "" && assets != "" {
		opts = append(opts, pipeline.WithAssetSink(ocr.NewAssetWriter(assets, cfg.Gaps.Padding)))
	}
	if cfg.OCR.Enabled {
		tess, err := ocr.NewTesseract(cfg.OCR.Language)
		if err != nil {
			return nil, err
		}
		defer tess.Close()
		opts = append(opts, pipeline.WithTextSource(ocr.NewSource(tess, cfg.OCR, cfg.Gaps.Padding, logger)))
	}

	p, err := pipeline.New(cfg.ToPipelineConfig(), opts...)
	if err != nil {
		return nil, err
	}
	return p.RunWithReport(ctx, in.Regions, pages, report)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// writeWorkbook exports a document to an .xlsx file.
func writeWorkbook(doc *document.Document, path string, logger *slog.Logger) error {
	data, err := export.Workbook(doc, logger)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	logger.Info("workbook written", "path", path)
	return nil
}

var (
	buildPDF         string
	buildImages      string
	buildAssets      string
	buildXLSX        string
	buildText        bool
	buildDiagnostics bool
)

var buildCmd = &cobra.Command{
	Use:   "build <regions.json>",
	Short: "Rebuild the outline of a paper and print it",
	Long: `Build runs the full pipeline over a region-stream file and prints the
resulting outline and media catalog.

Page images are looked up in --images, or in ~/.papertree/pages/<document>
when that directory exists. When they are found, every detected figure,
table and listing is cropped to --assets (default
~/.papertree/assets/<document>) and its ref points at the crop. Page
images are also required when ocr.enabled is set.

Examples:
  papertree build paper.regions.json
  papertree build paper.regions.json --pdf paper.pdf --text -o json
  papertree build paper.regions.json --xlsx paper.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		h, err := openHome()
		if err != nil {
			return err
		}
		mgr, err := loadConfig(h)
		if err != nil {
			return err
		}

		doc, err := buildDocument(cmd.Context(), buildInput{
			Regions: args[0],
			PDF:     buildPDF,
			Images:  buildImages,
			Assets:  buildAssets,
		}, mgr.Get(), h, logger)
		if err != nil {
			return err
		}

		if buildXLSX != "" {
			if err := writeWorkbook(doc, buildXLSX, logger); err != nil {
				return err
			}
		}
		return api.Output(doc.View(document.ViewOptions{Text: buildText, Diagnostics: buildDiagnostics}))
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildPDF, "pdf", "", "PDF to check the page count against")
	buildCmd.Flags().StringVar(&buildImages, "images", "", "Directory of page_NNNN.png images")
	buildCmd.Flags().StringVar(&buildAssets, "assets", "", "Directory to write media crops to")
	buildCmd.Flags().StringVar(&buildXLSX, "xlsx", "", "Also write an .xlsx export to this path")
	buildCmd.Flags().BoolVar(&buildText, "text", false, "Include section text")
	buildCmd.Flags().BoolVar(&buildDiagnostics, "diagnostics", true, "Include diagnostics")

	rootCmd.AddCommand(buildCmd)
}
