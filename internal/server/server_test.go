package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/papertree/internal/config"
	"github.com/jackzampolin/papertree/internal/diag"
	"github.com/jackzampolin/papertree/internal/document"
	"github.com/jackzampolin/papertree/internal/grouping"
	"github.com/jackzampolin/papertree/internal/media"
	"github.com/jackzampolin/papertree/internal/metrics"
	"github.com/jackzampolin/papertree/internal/outline"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testDocument builds "1 Introduction" and "3 Method" (corrected to 2),
// with Table3 attached to the method section.
func testDocument() *document.Document {
	intro := outline.ParseTitle("1 Introduction")
	method := outline.ParseTitle("3 Method")
	titles := []*outline.TitleInfo{&intro, &method}
	report := diag.NewReport()
	outline.NewNumberer(outline.DefaultConfig()).Number(titles, report)

	groups := []*grouping.Group{
		{ID: 0, Text: "intro text", Pages: []int{0}},
		{ID: 1, Text: "method text", Pages: []int{1}, Media: []media.Asset{
			{Kind: media.KindTable, Number: 3, Description: "BLEU", Enabled: true, Page: 1},
		}},
	}
	catalog := media.NewCatalog()
	tree := outline.NewTreeBuilder().Build(groups, titles, catalog, report)
	return document.New("paper.json", 2, tree, catalog, report)
}

func newTestServer(t *testing.T, doc *document.Document) *Server {
	t.Helper()
	store := document.NewStore()
	if doc != nil {
		store.Set(doc)
	}
	srv, err := New(Config{Logger: quietLogger(), Store: store})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestNewDefaults(t *testing.T) {
	srv, err := New(Config{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if srv.Addr() != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", srv.Addr())
	}
	if srv.Store() == nil || srv.Store().Ready() {
		t.Error("expected an empty store")
	}
	if srv.IsRunning() {
		t.Error("server should not be running before Start")
	}

	if _, err := New(Config{Build: func(context.Context, *config.Config) (*document.Document, error) {
		return nil, nil
	}}); err == nil {
		t.Error("expected error for Build without a config manager")
	}
}

func TestRequireInit(t *testing.T) {
	srv := newTestServer(t, nil)

	if rec := do(t, srv, "GET", "/health", nil); rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
	if rec := do(t, srv, "GET", "/ready", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d", rec.Code)
	}
	for _, path := range []string{"/api/document", "/api/diagnostics", "/api/nodes/0/children", "/api/export.xlsx"} {
		if rec := do(t, srv, "GET", path, nil); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", path, rec.Code)
		}
	}
}

func TestDocumentEndpoints(t *testing.T) {
	srv := newTestServer(t, testDocument())

	t.Run("ready", func(t *testing.T) {
		if rec := do(t, srv, "GET", "/ready", nil); rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("document", func(t *testing.T) {
		rec := do(t, srv, "GET", "/api/document?text=true&diagnostics=true", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
		}
		var v document.View
		decode(t, rec, &v)
		if len(v.Outline.Children) != 2 || v.Outline.Children[1].Text != "method text" {
			t.Errorf("unexpected outline %+v", v.Outline)
		}
		if len(v.Diagnostics) == 0 {
			t.Error("expected diagnostics in view")
		}

		rec = do(t, srv, "GET", "/api/document", nil)
		decode(t, rec, &v)
		if v.Outline.Children[1].Text != "" {
			t.Error("text included without ?text=true")
		}

		if rec := do(t, srv, "GET", "/api/document?text=maybe", nil); rec.Code != http.StatusBadRequest {
			t.Errorf("bad query status = %d", rec.Code)
		}
	})

	t.Run("diagnostics", func(t *testing.T) {
		rec := do(t, srv, "GET", "/api/diagnostics?kind=numbering_corrected", nil)
		var resp struct {
			Diagnostics []diag.Diagnostic `json:"diagnostics"`
			Counts      map[string]int    `json:"counts"`
		}
		decode(t, rec, &resp)
		if len(resp.Diagnostics) != 1 || resp.Diagnostics[0].Attrs["to"] != "2" {
			t.Errorf("unexpected diagnostics %+v", resp.Diagnostics)
		}
		if resp.Counts["numbering_corrected"] != 1 {
			t.Errorf("counts = %v", resp.Counts)
		}
	})

	t.Run("export", func(t *testing.T) {
		rec := do(t, srv, "GET", "/api/export.xlsx", nil)
		if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
			t.Fatalf("status = %d, %d bytes", rec.Code, rec.Body.Len())
		}
		// xlsx files are zip archives
		if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
			t.Error("export is not a zip archive")
		}
	})
}

func TestNodeEndpoints(t *testing.T) {
	srv := newTestServer(t, testDocument())

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"root children", "/api/nodes/0/children", http.StatusOK},
		{"unknown node", "/api/nodes/99/children", http.StatusNotFound},
		{"bad id", "/api/nodes/abc/children", http.StatusBadRequest},
		{"negative id", "/api/nodes/-1/content", http.StatusBadRequest},
		{"content", "/api/nodes/2/content", http.StatusOK},
		{"unknown content", "/api/nodes/42/content", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, "GET", tt.path, nil)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
		})
	}

	rec := do(t, srv, "GET", "/api/nodes/0/children", nil)
	var kids struct {
		Children []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"children"`
	}
	decode(t, rec, &kids)
	if len(kids.Children) != 2 || kids.Children[1].Name != "2 Method" {
		t.Fatalf("unexpected children %+v", kids.Children)
	}

	rec = do(t, srv, "GET", "/api/nodes/2/content", nil)
	var content document.Content
	decode(t, rec, &content)
	if content.Text != "method text" || len(content.Media) != 1 || content.Media[0].Label != "Table3" {
		t.Errorf("unexpected content %+v", content)
	}
}

func TestMediaEndpoints(t *testing.T) {
	srv := newTestServer(t, testDocument())

	t.Run("lookup", func(t *testing.T) {
		rec := do(t, srv, "GET", "/api/media/table/3", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var a media.Asset
		decode(t, rec, &a)
		if a.Description != "BLEU" {
			t.Errorf("unexpected asset %+v", a)
		}

		for path, status := range map[string]int{
			"/api/media/table/9":    http.StatusNotFound,
			"/api/media/chart/1":    http.StatusBadRequest,
			"/api/media/figure/one": http.StatusBadRequest,
		} {
			if rec := do(t, srv, "GET", path, nil); rec.Code != status {
				t.Errorf("%s status = %d, want %d", path, rec.Code, status)
			}
		}
	})

	t.Run("insert", func(t *testing.T) {
		rec := do(t, srv, "POST", "/api/nodes/1/media", map[string]string{
			"kind": "figure", "ref": "uploads/overview.png", "description": "overview",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
		}
		var a media.Asset
		decode(t, rec, &a)
		if a.Label != "Figure100" || !a.Enabled || !a.UserSupplied {
			t.Errorf("unexpected inserted asset %+v", a)
		}

		rec = do(t, srv, "GET", "/api/nodes/1/content", nil)
		var content document.Content
		decode(t, rec, &content)
		if len(content.Media) != 1 || content.Media[0].Ref != "uploads/overview.png" {
			t.Errorf("asset not attached: %+v", content.Media)
		}
	})

	t.Run("insert rejects", func(t *testing.T) {
		tests := []struct {
			name   string
			path   string
			body   any
			status int
		}{
			{"missing ref", "/api/nodes/1/media", map[string]string{"kind": "figure"}, http.StatusBadRequest},
			{"extra field", "/api/nodes/1/media", map[string]string{"kind": "figure", "ref": "a.png", "x": "y"}, http.StatusBadRequest},
			{"unknown kind", "/api/nodes/1/media", map[string]string{"kind": "chart", "ref": "a.png"}, http.StatusBadRequest},
			{"unknown node", "/api/nodes/77/media", map[string]string{"kind": "figure", "ref": "a.png"}, http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if rec := do(t, srv, "POST", tt.path, tt.body); rec.Code != tt.status {
					t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
				}
			})
		}
	})

	t.Run("toggle", func(t *testing.T) {
		rec := do(t, srv, "PATCH", "/api/media/Table3", map[string]bool{"enabled": false})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
		}
		var a media.Asset
		decode(t, rec, &a)
		if a.Enabled {
			t.Error("asset still enabled")
		}

		if rec := do(t, srv, "PATCH", "/api/media/Table3", map[string]string{}); rec.Code != http.StatusBadRequest {
			t.Errorf("missing enabled status = %d", rec.Code)
		}
		if rec := do(t, srv, "PATCH", "/api/media/Figure9", map[string]bool{"enabled": true}); rec.Code != http.StatusNotFound {
			t.Errorf("unknown label status = %d", rec.Code)
		}
		if rec := do(t, srv, "PATCH", "/api/media/nonsense", map[string]bool{"enabled": true}); rec.Code != http.StatusBadRequest {
			t.Errorf("invalid label status = %d", rec.Code)
		}
	})
}

func TestRebuild(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgFile, []byte("merge:\n  min_overlap: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	var calls int
	fail := false
	srv, err := New(Config{
		ConfigManager: mgr,
		Logger:        quietLogger(),
		Build: func(_ context.Context, cfg *config.Config) (*document.Document, error) {
			calls++
			if cfg.Merge.MinOverlap != 5 {
				t.Errorf("build saw min_overlap %d", cfg.Merge.MinOverlap)
			}
			if fail {
				return nil, errors.New("boom")
			}
			return testDocument(), nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	srv.Rebuild(context.Background())
	if calls != 1 || !srv.Store().Ready() {
		t.Fatalf("calls=%d ready=%v", calls, srv.Store().Ready())
	}
	var first string
	_ = srv.Store().View(func(d *document.Document) error {
		first = d.ID()
		return nil
	})

	fail = true
	srv.Rebuild(context.Background())
	var after string
	_ = srv.Store().View(func(d *document.Document) error {
		after = d.ID()
		return nil
	})
	if calls != 2 || after != first {
		t.Errorf("failed rebuild replaced the document: calls=%d", calls)
	}

	st := srv.Metrics().Stats(metrics.Filter{Stage: "build"})
	if st.Count != 2 || st.ErrorCount != 1 {
		t.Errorf("build metrics = %+v", st)
	}

	rec := do(t, srv, "GET", "/api/metrics?stage=build", nil)
	var resp struct {
		Stages   map[string]metrics.DetailedStats `json:"stages"`
		Failures []metrics.Metric                 `json:"failures"`
	}
	decode(t, rec, &resp)
	if resp.Stages["build"].Count != 2 || len(resp.Failures) != 1 {
		t.Errorf("unexpected metrics response %+v", resp)
	}
	if rec := do(t, srv, "GET", "/api/metrics?failures=x", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}
}
