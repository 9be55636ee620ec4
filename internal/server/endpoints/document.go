package endpoints

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/papertree/internal/api"
	"github.com/jackzampolin/papertree/internal/diag"
	"github.com/jackzampolin/papertree/internal/document"
	"github.com/jackzampolin/papertree/internal/export"
	"github.com/jackzampolin/papertree/internal/svcctx"
)

// viewDocument runs fn against the served document under the read lock.
func viewDocument(r *http.Request, fn func(*document.Document) error) error {
	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		return document.ErrNotReady
	}
	return store.View(fn)
}

// updateDocument runs fn against the served document under the write lock.
func updateDocument(r *http.Request, fn func(*document.Document) error) error {
	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		return document.ErrNotReady
	}
	return store.Update(fn)
}

func queryBool(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", name, v)
	}
	return b, nil
}

// DocumentEndpoint handles GET /api/document.
type DocumentEndpoint struct{}

func (e *DocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/document", e.handler
}

func (e *DocumentEndpoint) RequiresInit() bool { return true }

func (e *DocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var opts document.ViewOptions
	var err error
	if opts.Text, err = queryBool(r, "text"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if opts.Diagnostics, err = queryBool(r, "diagnostics"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var v document.View
	if err := viewDocument(r, func(d *document.Document) error {
		v = d.View(opts)
		return nil
	}); err != nil {
		writeDocError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (e *DocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	var text, diagnostics bool
	cmd := &cobra.Command{
		Use:   "document",
		Short: "Get the reconstructed outline and media catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/document?text=%t&diagnostics=%t", text, diagnostics)
			client := api.NewClient(getServerURL())
			var resp document.View
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "Include section text")
	cmd.Flags().BoolVar(&diagnostics, "diagnostics", false, "Include diagnostics")
	return cmd
}

// DiagnosticsResponse lists diagnostics with per-kind counts.
type DiagnosticsResponse struct {
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	Counts      map[diag.Kind]int `json:"counts"`
}

// DiagnosticsEndpoint handles GET /api/diagnostics.
type DiagnosticsEndpoint struct{}

func (e *DiagnosticsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/diagnostics", e.handler
}

func (e *DiagnosticsEndpoint) RequiresInit() bool { return true }

func (e *DiagnosticsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	kind := diag.Kind(r.URL.Query().Get("kind"))
	severity := diag.Severity(r.URL.Query().Get("severity"))

	resp := DiagnosticsResponse{Diagnostics: []diag.Diagnostic{}}
	if err := viewDocument(r, func(d *document.Document) error {
		resp.Counts = d.Report().Counts()
		for _, dg := range d.Diagnostics() {
			if kind != "" && dg.Kind != kind {
				continue
			}
			if severity != "" && dg.Severity != severity {
				continue
			}
			resp.Diagnostics = append(resp.Diagnostics, dg)
		}
		return nil
	}); err != nil {
		writeDocError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *DiagnosticsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var kind, severity string
	cmd := &cobra.Command{
		Use:   "diagnostics",
		Short: "List diagnostics raised while building the document",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/diagnostics?kind=" + kind + "&severity=" + severity
			client := api.NewClient(getServerURL())
			var resp DiagnosticsResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Only show this diagnostic kind")
	cmd.Flags().StringVar(&severity, "severity", "", "Only show this severity (info, warning)")
	return cmd
}

// ExportEndpoint handles GET /api/export.xlsx.
type ExportEndpoint struct{}

func (e *ExportEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/export.xlsx", e.handler
}

func (e *ExportEndpoint) RequiresInit() bool { return true }

func (e *ExportEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	logger := svcctx.LoggerFrom(r.Context())

	var data []byte
	var name string
	if err := viewDocument(r, func(d *document.Document) error {
		var err error
		data, err = export.Workbook(d, logger)
		name = d.ID() + ".xlsx"
		return err
	}); err != nil {
		writeDocError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (e *ExportEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the outline, media and diagnostics as a workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			data, err := client.GetRaw(cmd.Context(), "/api/export.xlsx")
			if err != nil {
				return err
			}
			if err := os.WriteFile(outputPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			fmt.Printf("Downloaded to: %s\n", outputPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outputPath, "out", "outline.xlsx", "Output file path")
	return cmd
}
