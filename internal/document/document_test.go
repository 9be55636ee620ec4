package document

import (
	"errors"
	"testing"

	"github.com/jackzampolin/papertree/internal/diag"
	"github.com/jackzampolin/papertree/internal/grouping"
	"github.com/jackzampolin/papertree/internal/media"
	"github.com/jackzampolin/papertree/internal/outline"
)

func testDocument(t *testing.T) *Document {
	t.Helper()

	intro := outline.ParseTitle("1 Introduction")
	method := outline.ParseTitle("3 Method")
	titles := []*outline.TitleInfo{&intro, &method}
	report := diag.NewReport()
	outline.NewNumberer(outline.DefaultConfig()).Number(titles, report)

	groups := []*grouping.Group{
		{ID: 0, Text: "intro", Pages: []int{0}},
		{ID: 1, Text: "method", Pages: []int{1}, Media: []media.Asset{
			{Kind: media.KindTable, Number: 3, Description: "BLEU", Enabled: true, Page: 1},
		}},
	}
	catalog := media.NewCatalog()
	tree := outline.NewTreeBuilder().Build(groups, titles, catalog, report)
	return New("paper.json", 2, tree, catalog, report)
}

func TestDocumentAccessors(t *testing.T) {
	doc := testDocument(t)

	if doc.ID() == "" || doc.Pages() != 2 || doc.Source() != "paper.json" {
		t.Errorf("unexpected metadata id=%q pages=%d source=%q", doc.ID(), doc.Pages(), doc.Source())
	}

	kids, err := doc.Children(outline.RootID)
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if len(kids) != 2 || kids[1].Name != "2 Method" {
		t.Fatalf("unexpected children %+v", kids)
	}

	content, err := doc.Content(kids[1].ID)
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if content.Text != "method" || len(content.Media) != 1 || content.Media[0].Label != "Table3" {
		t.Errorf("unexpected content %+v", content)
	}

	a, err := doc.LookupMedia(media.KindTable, 3)
	if err != nil || a.Description != "BLEU" {
		t.Errorf("LookupMedia = %+v, %v", a, err)
	}
	if _, err := doc.LookupLabel("Figure9"); !errors.Is(err, media.ErrMediaNotFound) {
		t.Errorf("expected ErrMediaNotFound, got %v", err)
	}
	if _, err := doc.Content(99); !errors.Is(err, outline.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}

	if len(doc.Diagnostics()) == 0 {
		t.Error("expected the numbering correction diagnostic")
	}
}

func TestInsertMedia(t *testing.T) {
	doc := testDocument(t)
	kids, _ := doc.Children(outline.RootID)

	a, err := doc.InsertMedia(kids[0].ID, media.KindFigure, "uploads/overview.png", "overview")
	if err != nil {
		t.Fatalf("InsertMedia: %v", err)
	}
	if a.Label != "Figure100" || !a.Enabled || a.Page != 0 {
		t.Errorf("unexpected inserted asset %+v", a)
	}

	content, _ := doc.Content(kids[0].ID)
	if len(content.Media) != 1 || content.Media[0].Ref != "uploads/overview.png" {
		t.Errorf("asset not attached: %+v", content.Media)
	}
	if err := doc.Tree().Validate(); err != nil {
		t.Errorf("tree invalid after insert: %v", err)
	}

	if _, err := doc.InsertMedia(99, media.KindFigure, "x.png", ""); !errors.Is(err, outline.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if _, err := doc.InsertMedia(kids[0].ID, media.KindFigure, "", ""); err == nil {
		t.Error("expected error for empty reference")
	}

	disabled, err := doc.SetMediaEnabled("Table3", false)
	if err != nil || disabled.Enabled {
		t.Errorf("SetMediaEnabled = %+v, %v", disabled, err)
	}
}

func TestView(t *testing.T) {
	doc := testDocument(t)
	v := doc.View(ViewOptions{Text: true, Diagnostics: true})

	if len(v.Outline.Children) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(v.Outline.Children))
	}
	method := v.Outline.Children[1]
	if method.Text != "method" || len(method.Media) != 1 || method.Media[0] != "Table3" {
		t.Errorf("unexpected method view %+v", method)
	}
	if len(method.Flags) != 1 || method.Flags[0] != "corrected from 3" {
		t.Errorf("flags = %v", method.Flags)
	}
	if len(v.Diagnostics) == 0 || len(v.Media) != 1 {
		t.Errorf("diagnostics=%d media=%d", len(v.Diagnostics), len(v.Media))
	}
}
