// Package document is the read-mostly result of a reconstruction run: the
// outline tree, the flat media catalog and the diagnostics report.
package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/papertree/internal/diag"
	"github.com/jackzampolin/papertree/internal/media"
	"github.com/jackzampolin/papertree/internal/outline"
)

// Document is a rebuilt paper. It is not safe for concurrent mutation;
// callers serialize InsertMedia and SetMediaEnabled against readers.
type Document struct {
	id        string
	source    string
	pages     int
	createdAt time.Time
	tree      *outline.Tree
	catalog   *media.Catalog
	report    *diag.Report
}

// New wraps the products of a run.
func New(source string, pages int, tree *outline.Tree, catalog *media.Catalog, report *diag.Report) *Document {
	if report == nil {
		report = diag.NewReport()
	}
	return &Document{
		id:        uuid.New().String(),
		source:    source,
		pages:     pages,
		createdAt: time.Now().UTC(),
		tree:      tree,
		catalog:   catalog,
		report:    report,
	}
}

// ID returns the run id.
func (d *Document) ID() string { return d.id }

// Source returns the name of the region stream the document was built from.
func (d *Document) Source() string { return d.source }

// Pages returns the number of pages processed.
func (d *Document) Pages() int { return d.pages }

// Tree returns the outline tree.
func (d *Document) Tree() *outline.Tree { return d.tree }

// Root returns the synthetic root node.
func (d *Document) Root() outline.Node {
	return d.tree.Root()
}

// Node returns one node.
func (d *Document) Node(id outline.NodeID) (outline.Node, error) {
	return d.tree.Node(id)
}

// Children returns the ordered children of a node.
func (d *Document) Children(id outline.NodeID) ([]outline.Node, error) {
	ids, err := d.tree.Children(id)
	if err != nil {
		return nil, err
	}
	out := make([]outline.Node, 0, len(ids))
	for _, c := range ids {
		n, err := d.tree.Node(c)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Content is a node's text, caption blocks and resolved media.
type Content struct {
	NodeID   outline.NodeID `json:"node_id" yaml:"node_id"`
	Name     string         `json:"name" yaml:"name"`
	Text     string         `json:"text" yaml:"text"`
	Captions []string       `json:"captions,omitempty" yaml:"captions,omitempty"`
	Media    []media.Asset  `json:"media,omitempty" yaml:"media,omitempty"`
}

// Content returns a node's content with media ids resolved.
func (d *Document) Content(id outline.NodeID) (Content, error) {
	n, err := d.tree.Node(id)
	if err != nil {
		return Content{}, err
	}
	out := Content{
		NodeID:   n.ID,
		Name:     n.Name,
		Text:     n.Content.Text,
		Captions: n.Content.Captions,
	}
	for _, mid := range n.Content.Media {
		if a, ok := d.catalog.Get(mid); ok {
			out.Media = append(out.Media, a)
		}
	}
	return out, nil
}

// LookupMedia finds an asset by kind and number.
func (d *Document) LookupMedia(kind media.Kind, number int) (media.Asset, error) {
	return d.catalog.Lookup(kind, number)
}

// LookupLabel finds an asset by canonical label, e.g. "Table3".
func (d *Document) LookupLabel(label string) (media.Asset, error) {
	return d.catalog.LookupLabel(label)
}

// Media returns every asset in document order.
func (d *Document) Media() []media.Asset {
	return d.catalog.All()
}

// InsertMedia adds a user-supplied asset to a node. The asset gets a number
// unique within its kind and is enabled.
func (d *Document) InsertMedia(node outline.NodeID, kind media.Kind, ref, description string) (media.Asset, error) {
	n, err := d.tree.Node(node)
	if err != nil {
		return media.Asset{}, err
	}
	if ref == "" {
		return media.Asset{}, fmt.Errorf("insert media: empty asset reference")
	}
	page := -1
	if len(n.Pages) > 0 {
		page = n.Pages[0]
	}
	a := d.catalog.Insert(kind, ref, description, page)
	if err := d.tree.AttachMedia(node, a.ID); err != nil {
		return media.Asset{}, err
	}
	return a, nil
}

// SetMediaEnabled toggles whether an asset is rendered downstream.
func (d *Document) SetMediaEnabled(label string, enabled bool) (media.Asset, error) {
	a, err := d.catalog.LookupLabel(label)
	if err != nil {
		return media.Asset{}, err
	}
	if err := d.catalog.SetEnabled(a.ID, enabled); err != nil {
		return media.Asset{}, err
	}
	a.Enabled = enabled
	return a, nil
}

// Diagnostics returns every diagnostic raised while building.
func (d *Document) Diagnostics() []diag.Diagnostic {
	return d.report.All()
}

// Report returns the diagnostics report.
func (d *Document) Report() *diag.Report {
	return d.report
}
