package document

import (
	"time"

	"github.com/jackzampolin/papertree/internal/diag"
	"github.com/jackzampolin/papertree/internal/media"
	"github.com/jackzampolin/papertree/internal/outline"
)

// NodeView is a nested, serializable rendering of an outline node.
type NodeView struct {
	ID       outline.NodeID   `json:"id" yaml:"id"`
	Kind     outline.NodeKind `json:"kind" yaml:"kind"`
	Name     string           `json:"name" yaml:"name"`
	Level    int              `json:"level" yaml:"level"`
	Pages    []int            `json:"pages,omitempty" yaml:"pages,omitempty"`
	Text     string           `json:"text,omitempty" yaml:"text,omitempty"`
	Media    []string         `json:"media,omitempty" yaml:"media,omitempty"`
	Flags    []string         `json:"flags,omitempty" yaml:"flags,omitempty"`
	Children []NodeView       `json:"children,omitempty" yaml:"children,omitempty"`
}

// View is the whole document in serializable form.
type View struct {
	ID          string            `json:"id" yaml:"id"`
	Source      string            `json:"source" yaml:"source"`
	Pages       int               `json:"pages" yaml:"pages"`
	CreatedAt   time.Time         `json:"created_at" yaml:"created_at"`
	Outline     NodeView          `json:"outline" yaml:"outline"`
	Media       []media.Asset     `json:"media" yaml:"media"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// ViewOptions selects what View includes.
type ViewOptions struct {
	Text        bool
	Diagnostics bool
}

// View renders the document.
func (d *Document) View(opts ViewOptions) View {
	v := View{
		ID:        d.id,
		Source:    d.source,
		Pages:     d.pages,
		CreatedAt: d.createdAt,
		Outline:   d.nodeView(outline.RootID, opts),
		Media:     d.catalog.All(),
	}
	if opts.Diagnostics {
		v.Diagnostics = d.report.All()
	}
	return v
}

func (d *Document) nodeView(id outline.NodeID, opts ViewOptions) NodeView {
	n, _ := d.tree.Node(id)
	v := NodeView{
		ID:    n.ID,
		Kind:  n.Kind,
		Name:  n.Name,
		Level: n.Level,
		Pages: n.Pages,
	}
	if opts.Text {
		v.Text = n.Content.Text
	}
	for _, mid := range n.Content.Media {
		if a, ok := d.catalog.Get(mid); ok {
			v.Media = append(v.Media, a.Label)
		}
	}
	if t := n.Title; t != nil {
		if t.Corrected {
			v.Flags = append(v.Flags, "corrected from "+t.OriginalPrefix)
		}
		if t.Suggested != "" {
			v.Flags = append(v.Flags, "suggested "+t.Suggested)
		}
		if t.Unresolved {
			v.Flags = append(v.Flags, "unresolved numbering")
		}
		if t.Inferred {
			v.Flags = append(v.Flags, "inferred level")
		}
	}
	for _, c := range n.Children {
		v.Children = append(v.Children, d.nodeView(c, opts))
	}
	return v
}
