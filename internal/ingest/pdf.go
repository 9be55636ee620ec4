package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jackzampolin/papertree/internal/diag"
	"github.com/jackzampolin/papertree/internal/region"
)

// DefaultDPI is the resolution pages are rendered at for OCR.
const DefaultDPI = 300

// PageCount returns the number of pages of a PDF.
func PageCount(pdfPath string) (int, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}

// CheckPageCount compares the stream's pages with the PDF it was
// extracted from. A mismatch is reported, not returned: the stream is
// still usable.
func CheckPageCount(pages []region.Page, pdfPath string, report *diag.Report) error {
	n, err := PageCount(pdfPath)
	if err != nil {
		return err
	}
	if n != len(pages) {
		report.Add(diag.Diagnostic{
			Kind:     diag.KindPageCountMismatch,
			Severity: diag.SeverityWarning,
			Location: diag.Nowhere,
			Message:  fmt.Sprintf("region stream has %d pages, %s has %d", len(pages), filepath.Base(pdfPath), n),
			Attrs: map[string]string{
				"stream": strconv.Itoa(len(pages)),
				"pdf":    strconv.Itoa(n),
			},
		})
	}
	for _, p := range pages {
		if p.Index >= n {
			report.Warn(diag.KindPageCountMismatch, diag.AtPage(p.Index),
				"page %d is beyond the end of %s", p.Index, filepath.Base(pdfPath))
		}
	}
	return nil
}

// PageImageName is the file name of a rendered page; page is 0-based.
func PageImageName(page int) string {
	return fmt.Sprintf("page_%04d.png", page+1)
}

// AttachImages points pages without an image at dir/page_NNNN.png when
// that file exists. Relative image paths are resolved against dir.
func AttachImages(pages []region.Page, dir string) {
	for i := range pages {
		p := &pages[i]
		if p.Image != "" {
			if !filepath.IsAbs(p.Image) {
				p.Image = filepath.Join(dir, p.Image)
			}
			continue
		}
		path := filepath.Join(dir, PageImageName(p.Index))
		if _, err := os.Stat(path); err == nil {
			p.Image = path
		}
	}
}

// RenderRequest contains the parameters for rendering page images.
type RenderRequest struct {
	PDFPaths []string     // PDF file paths (will be sorted by numeric suffix)
	OutDir   string       // Destination directory, created if missing
	DPI      int          // Defaults to DefaultDPI
	Workers  int          // Defaults to runtime.NumCPU()
	Logger   *slog.Logger // Optional logger for progress updates
}

// RenderPages renders every page of the PDFs to OutDir as page_NNNN.png,
// numbering continuously across multi-part PDFs. It returns the number of
// pages written.
func RenderPages(ctx context.Context, req RenderRequest) (int, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}
	if len(req.PDFPaths) == 0 {
		return 0, fmt.Errorf("no PDF paths provided")
	}
	for _, p := range req.PDFPaths {
		if _, err := os.Stat(p); err != nil {
			return 0, fmt.Errorf("PDF not found: %s", p)
		}
	}
	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	sorted := sortPDFsByNumber(req.PDFPaths)
	total := 0
	for i, pdfPath := range sorted {
		log.Debug("rendering PDF", "file", filepath.Base(pdfPath), "part", i+1, "of", len(sorted))
		count, err := renderAll(ctx, req, pdfPath, total)
		if err != nil {
			return total, fmt.Errorf("failed to render %s: %w", pdfPath, err)
		}
		total += count
	}
	log.Info("render complete", "pages", total, "dir", req.OutDir)
	return total, nil
}

// renderAll renders one PDF with a bounded worker pool.
func renderAll(ctx context.Context, req RenderRequest, pdfPath string, offset int) (int, error) {
	pageCount, err := PageCount(pdfPath)
	if err != nil {
		return 0, err
	}

	workers := req.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	dpi := req.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	type result struct {
		pageNum int
		err     error
	}

	results := make(chan result, pageCount)
	sem := make(chan struct{}, workers)

	for page := 1; page <= pageCount; page++ {
		select {
		case sem <- struct{}{}: // acquire
		case <-ctx.Done():
			return 0, ctx.Err()
		}
		go func(pageInPDF int) {
			defer func() { <-sem }() // release
			dst := filepath.Join(req.OutDir, PageImageName(offset+pageInPDF-1))
			results <- result{pageNum: pageInPDF, err: renderPage(ctx, pdfPath, dst, pageInPDF, dpi)}
		}(page)
	}

	for i := 0; i < pageCount; i++ {
		r := <-results
		if r.err != nil {
			return 0, fmt.Errorf("failed to render page %d: %w", r.pageNum, r.err)
		}
	}
	return pageCount, nil
}

// renderPage renders a single page from a PDF using pdftoppm (poppler-utils).
func renderPage(ctx context.Context, pdfPath, dst string, pageInPDF, dpi int) error {
	tmpDir, err := os.MkdirTemp("", "papertree-page-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")

	// -singlefile: don't add page number suffix
	pageStr := strconv.Itoa(pageInPDF)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", strconv.Itoa(dpi),
		"-singlefile",
		pdfPath,
		outputPrefix,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	data, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to write page image: %w", err)
	}
	return nil
}

var partSuffix = regexp.MustCompile(`-(\d+)\.pdf$`)

// sortPDFsByNumber sorts PDF paths by their numeric suffix.
// e.g., ["paper-2.pdf", "paper-1.pdf", "paper-10.pdf"] -> ["paper-1.pdf", "paper-2.pdf", "paper-10.pdf"]
func sortPDFsByNumber(paths []string) []string {
	sorted := make([]string, len(paths))
	copy(sorted, paths)

	sort.Slice(sorted, func(i, j int) bool {
		mi := partSuffix.FindStringSubmatch(sorted[i])
		mj := partSuffix.FindStringSubmatch(sorted[j])

		if len(mi) > 1 && len(mj) > 1 {
			ni, _ := strconv.Atoi(mi[1])
			nj, _ := strconv.Atoi(mj[1])
			return ni < nj
		}

		// Files without numbers come first
		if len(mi) > 1 {
			return false
		}
		if len(mj) > 1 {
			return true
		}
		return sorted[i] < sorted[j]
	})

	return sorted
}
