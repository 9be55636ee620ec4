package outline

import (
	"github.com/jackzampolin/papertree/internal/diag"
	"github.com/jackzampolin/papertree/internal/grouping"
	"github.com/jackzampolin/papertree/internal/media"
)

const (
	// UntitledName names a root with no paper title.
	UntitledName = "Untitled"
	// PreambleName names the untitled front matter node.
	PreambleName = "Front Matter"
)

// TreeBuilder assembles the outline from leveled groups.
type TreeBuilder struct{}

// NewTreeBuilder creates a builder.
func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{}
}

// Build creates the tree. titles is parallel to groups and holds nil for
// untitled groups. Group media are registered in catalog in document order.
//
// Each titled group becomes a child of the most recent node one level up;
// when that level is missing the deepest shallower node is used and the
// level is normalized. Untitled groups and the group under the paper title
// form a front matter node directly under the root.
func (b *TreeBuilder) Build(groups []*grouping.Group, titles []*TitleInfo, catalog *media.Catalog, report *diag.Report) *Tree {
	name, paperTitle := rootTitle(titles)
	tree := NewTree(name)
	current := make(map[int]NodeID)
	var preamble NodeID
	inPreamble := false

	for i, g := range groups {
		content := Content{Text: g.Text, Captions: append([]string(nil), g.Captions...)}
		for _, a := range g.Media {
			stored := catalog.Register(a, report)
			content.Media = append(content.Media, stored.ID)
		}

		var info *TitleInfo
		if i < len(titles) {
			info = titles[i]
		}

		if info == nil || i == paperTitle {
			if inPreamble {
				tree.extend(preamble, g.Pages, content)
				continue
			}
			// Add cannot fail for the root.
			preamble, _ = tree.Add(RootID, Node{
				Kind:    KindPreamble,
				Name:    PreambleName,
				GroupID: g.ID,
				Pages:   append([]int(nil), g.Pages...),
				Content: content,
			})
			inPreamble = true
			continue
		}
		inPreamble = false

		level := max(info.Level, 1)
		parent, parentLevel := RootID, 0
		for l := level - 1; l >= 1; l-- {
			if id, ok := current[l]; ok {
				parent, parentLevel = id, l
				break
			}
		}
		if level > parentLevel+1 {
			report.Info(diag.KindLevelNormalized, info.Location,
				"%q has level %d but no level %d ancestor, placed at level %d",
				info.Name(), level, level-1, parentLevel+1)
			level = parentLevel + 1
		}

		id, _ := tree.Add(parent, Node{
			Kind:    KindSection,
			Name:    info.Name(),
			Title:   info,
			GroupID: g.ID,
			Pages:   append([]int(nil), g.Pages...),
			Content: content,
		})
		current[level] = id
		for l := range current {
			if l > level {
				delete(current, l)
			}
		}
	}

	return tree
}

// rootTitle names the root after the first title when it is unnumbered,
// which for papers is the paper title. It also returns that title's index,
// or -1.
func rootTitle(titles []*TitleInfo) (string, int) {
	for i, t := range titles {
		if t == nil {
			continue
		}
		if t.Prefix == "" && t.Cleaned != "" {
			return t.Cleaned, i
		}
		break
	}
	return UntitledName, -1
}
