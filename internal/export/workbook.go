// Package export writes a built document as an XLSX review workbook: the
// outline, the media catalog and the diagnostics, one sheet each.
package export

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jackzampolin/papertree/internal/document"
)

// Sheet names.
const (
	SheetOutline     = "Outline"
	SheetMedia       = "Media"
	SheetDiagnostics = "Diagnostics"
)

// textPreview caps section text in the outline sheet.
const textPreview = 200

// Workbook renders doc as XLSX bytes.
func Workbook(doc *document.Document, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetOutline); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetMedia, SheetDiagnostics} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	nodes, err := writeOutline(f, doc)
	if err != nil {
		return nil, err
	}
	if err := writeMedia(f, doc); err != nil {
		return nil, err
	}
	if err := writeDiagnostics(f, doc); err != nil {
		return nil, err
	}

	index, _ := f.GetSheetIndex(SheetOutline)
	f.SetActiveSheet(index)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"document", doc.ID(),
		"nodes", nodes,
		"media", len(doc.Media()),
		"diagnostics", len(doc.Diagnostics()),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// sheetWriter writes rows to one sheet, starting with a header row.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func newSheetWriter(f *excelize.File, sheet string, headers ...any) *sheetWriter {
	w := &sheetWriter{f: f, sheet: sheet, row: 1}
	w.write(headers...)
	return w
}

func (w *sheetWriter) write(values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(w.sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("write %s row %d: %w", w.sheet, w.row, err)
		return
	}
	w.row++
}

func writeOutline(f *excelize.File, doc *document.Document) (int, error) {
	w := newSheetWriter(f, SheetOutline, "ID", "Level", "Kind", "Name", "Pages", "Flags", "Media", "Text")

	view := doc.View(document.ViewOptions{Text: true})
	var walk func(n document.NodeView)
	walk = func(n document.NodeView) {
		w.write(
			int(n.ID),
			n.Level,
			string(n.Kind),
			strings.Repeat("  ", max(n.Level-1, 0))+n.Name,
			joinPages(n.Pages),
			strings.Join(n.Flags, "; "),
			strings.Join(n.Media, ", "),
			truncate(n.Text, textPreview),
		)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(view.Outline)

	_ = f.SetColWidth(SheetOutline, "D", "D", 48) // name
	_ = f.SetColWidth(SheetOutline, "F", "F", 30) // flags
	_ = f.SetColWidth(SheetOutline, "H", "H", 80) // text
	return w.row - 2, w.err
}

func writeMedia(f *excelize.File, doc *document.Document) error {
	w := newSheetWriter(f, SheetMedia, "Label", "Kind", "Number", "Description", "Enabled", "Page", "Ref", "Source", "User Supplied")
	for _, a := range doc.Media() {
		w.write(
			a.Label,
			string(a.Kind),
			a.Number,
			a.Description,
			a.Enabled,
			a.Page+1,
			a.Ref,
			string(a.SourceKind),
			a.UserSupplied,
		)
	}
	_ = f.SetColWidth(SheetMedia, "D", "D", 60) // description
	_ = f.SetColWidth(SheetMedia, "G", "G", 40) // ref
	return w.err
}

func writeDiagnostics(f *excelize.File, doc *document.Document) error {
	w := newSheetWriter(f, SheetDiagnostics, "Kind", "Severity", "Page", "Region", "Group", "Message")
	for _, d := range doc.Diagnostics() {
		page := ""
		if d.Location.Page >= 0 {
			page = strconv.Itoa(d.Location.Page + 1)
		}
		group := ""
		if d.Location.GroupID >= 0 {
			group = strconv.Itoa(d.Location.GroupID)
		}
		w.write(string(d.Kind), string(d.Severity), page, d.Location.RegionID, group, d.Message)
	}
	_ = f.SetColWidth(SheetDiagnostics, "A", "A", 22) // kind
	_ = f.SetColWidth(SheetDiagnostics, "F", "F", 80) // message
	return w.err
}

func joinPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p + 1)
	}
	return strings.Join(parts, ",")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
