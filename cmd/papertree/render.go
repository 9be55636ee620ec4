package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/papertree/internal/ingest"
)

var (
	renderOut     string
	renderDPI     int
	renderWorkers int
)

var renderCmd = &cobra.Command{
	Use:   "render <pdf> [pdf...]",
	Short: "Render PDF pages to images for OCR",
	Long: `Render writes every page of the given PDFs as page_NNNN.png, numbered
continuously across multi-part scans. Requires pdftoppm (poppler-utils).

By default images go to ~/.papertree/pages/<name>, where build looks for
them. The name is taken from the first PDF.

Examples:
  papertree render paper.pdf
  papertree render part-1.pdf part-2.pdf --dpi 200 --out ./pages`,
	Args: cobra.MinimumNArgs(1),
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
		cfg := mgr.Get()

		out := renderOut
		if out == "" {
			name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			out = h.PagesDir(name)
		}
		dpi := cfg.Render.DPI
		if cmd.Flags().Changed("dpi") {
			dpi = renderDPI
		}
		workers := cfg.Render.Workers
		if cmd.Flags().Changed("workers") {
			workers = renderWorkers
		}

		n, err := ingest.RenderPages(cmd.Context(), ingest.RenderRequest{
			PDFPaths: args,
			OutDir:   out,
			DPI:      dpi,
			Workers:  workers,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Rendered %d pages to %s\n", n, out)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderOut, "out", "", "Output directory (default: ~/.papertree/pages/<name>)")
	renderCmd.Flags().IntVar(&renderDPI, "dpi", ingest.DefaultDPI, "Render resolution")
	renderCmd.Flags().IntVar(&renderWorkers, "workers", 0, "Parallel renders (default: every CPU)")

	rootCmd.AddCommand(renderCmd)
}
