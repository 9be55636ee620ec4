// Package outline parses section titles, repairs their numbering and
// builds the section tree of a document.
//
// The tree is an arena: nodes live in one slice, are addressed by a stable
// NodeID and refer to each other by id only. Node 0 is the synthetic root.
package outline

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jackzampolin/papertree/internal/media"
)

// ErrNodeNotFound is returned for ids outside the tree.
var ErrNodeNotFound = errors.New("node not found")

// NodeID addresses a node in its tree.
type NodeID int

const (
	// RootID is the synthetic document root.
	RootID NodeID = 0
	// NoParent is the parent of the root.
	NoParent NodeID = -1
)

// NodeKind distinguishes the root, the untitled front matter and sections.
type NodeKind string

const (
	KindRoot     NodeKind = "root"
	KindPreamble NodeKind = "preamble"
	KindSection  NodeKind = "section"
)

// Content is what a node holds besides its title.
type Content struct {
	Text     string     `json:"text" yaml:"text"`
	Captions []string   `json:"captions,omitempty" yaml:"captions,omitempty"`
	Media    []media.ID `json:"media,omitempty" yaml:"media,omitempty"`
}

// Node is one section of the outline.
type Node struct {
	ID       NodeID     `json:"id" yaml:"id"`
	Parent   NodeID     `json:"parent" yaml:"parent"`
	Children []NodeID   `json:"children,omitempty" yaml:"children,omitempty"`
	Kind     NodeKind   `json:"kind" yaml:"kind"`
	Name     string     `json:"name" yaml:"name"`
	Level    int        `json:"level" yaml:"level"`
	Title    *TitleInfo `json:"title,omitempty" yaml:"title,omitempty"`
	GroupID  int        `json:"group_id" yaml:"group_id"`
	Pages    []int      `json:"pages,omitempty" yaml:"pages,omitempty"`
	Content  Content    `json:"content" yaml:"content"`
}

// Tree is an arena of outline nodes.
type Tree struct {
	nodes []Node
}

// NewTree creates a tree holding only the root.
func NewTree(name string) *Tree {
	return &Tree{nodes: []Node{{
		ID:      RootID,
		Parent:  NoParent,
		Kind:    KindRoot,
		Name:    name,
		Level:   0,
		GroupID: -1,
	}}}
}

// Len returns the number of nodes including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Root returns the root node.
func (t *Tree) Root() Node {
	return t.copyNode(RootID)
}

// Node returns a copy of a node.
func (t *Tree) Node(id NodeID) (Node, error) {
	if !t.has(id) {
		return Node{}, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return t.copyNode(id), nil
}

// Children returns the ordered child ids of a node.
func (t *Tree) Children(id NodeID) ([]NodeID, error) {
	if !t.has(id) {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return append([]NodeID(nil), t.nodes[id].Children...), nil
}

// Content returns the content of a node.
func (t *Tree) Content(id NodeID) (Content, error) {
	if !t.has(id) {
		return Content{}, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return t.copyNode(id).Content, nil
}

// Add appends a node under parent and returns its id. The node's level is
// forced to parent.Level+1.
func (t *Tree) Add(parent NodeID, n Node) (NodeID, error) {
	if !t.has(parent) {
		return 0, fmt.Errorf("%w: parent %d", ErrNodeNotFound, parent)
	}
	n.ID = NodeID(len(t.nodes))
	n.Parent = parent
	n.Children = nil
	n.Level = t.nodes[parent].Level + 1
	t.nodes = append(t.nodes, n)
	t.nodes[parent].Children = append(t.nodes[parent].Children, n.ID)
	return n.ID, nil
}

// AttachMedia appends a media id to a node's content.
func (t *Tree) AttachMedia(id NodeID, m media.ID) error {
	if !t.has(id) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	t.nodes[id].Content.Media = append(t.nodes[id].Content.Media, m)
	return nil
}

// extend appends content and pages to a node.
func (t *Tree) extend(id NodeID, pages []int, c Content) {
	n := &t.nodes[id]
	switch {
	case n.Content.Text == "":
		n.Content.Text = c.Text
	case c.Text != "":
		n.Content.Text += "\n" + c.Text
	}
	n.Content.Captions = append(n.Content.Captions, c.Captions...)
	n.Content.Media = append(n.Content.Media, c.Media...)
	for _, p := range pages {
		if !slices.Contains(n.Pages, p) {
			n.Pages = append(n.Pages, p)
		}
	}
}

// Walk visits nodes depth first in document order. Returning false from
// fn skips the node's children.
func (t *Tree) Walk(fn func(n Node) bool) {
	var visit func(id NodeID)
	visit = func(id NodeID) {
		if !fn(t.copyNode(id)) {
			return
		}
		for _, c := range t.nodes[id].Children {
			visit(c)
		}
	}
	visit(RootID)
}

// Validate checks the structural invariants: every non-root node is one
// level below its parent and listed among the parent's children.
func (t *Tree) Validate() error {
	for _, n := range t.nodes[1:] {
		if !t.has(n.Parent) {
			return fmt.Errorf("node %d: %w: parent %d", n.ID, ErrNodeNotFound, n.Parent)
		}
		parent := t.nodes[n.Parent]
		if n.Level != parent.Level+1 {
			return fmt.Errorf("node %d: level %d under parent level %d", n.ID, n.Level, parent.Level)
		}
		found := false
		for _, c := range parent.Children {
			if c == n.ID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("node %d: missing from parent %d children", n.ID, n.Parent)
		}
	}
	return nil
}

func (t *Tree) has(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

func (t *Tree) copyNode(id NodeID) Node {
	n := t.nodes[id]
	n.Children = append([]NodeID(nil), n.Children...)
	n.Pages = append([]int(nil), n.Pages...)
	n.Content.Captions = append([]string(nil), n.Content.Captions...)
	n.Content.Media = append([]media.ID(nil), n.Content.Media...)
	if n.Title != nil {
		title := *n.Title
		n.Title = &title
	}
	return n
}
