package model

// DocumentNode is a node in the hierarchical output tree. A node is either a
// section (Heading may be nil for the implicit root) with ordered children,
// or a leaf wrapping a single block.
//
// Children are owned exclusively by one parent and the tree is built
// bottom-up, never reassigned, so the no-cycle invariant holds by
// construction.
type DocumentNode struct {
	// Heading is the section's heading block. Nil for the implicit root and
	// for implicit intermediate sections created to bridge level jumps.
	Heading *Block

	// Block is the wrapped block for leaf nodes, nil for sections.
	Block *Block

	// Children are the ordered child nodes of a section.
	Children []*DocumentNode
}

// IsLeaf reports whether the node wraps a single block.
func (n *DocumentNode) IsLeaf() bool {
	return n.Block != nil
}

// AddChild appends a child to a section node.
func (n *DocumentNode) AddChild(child *DocumentNode) {
	n.Children = append(n.Children, child)
}

// Walk visits the node and its descendants depth-first in document order.
// Returning false from fn stops the walk.
func (n *DocumentNode) Walk(fn func(*DocumentNode) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// Document is one logical document's reconstructed tree. A combined
// extraction run yields one Document per boundary-sentinel-delimited segment.
type Document struct {
	// Root is the implicit top-level section holding all content.
	Root *DocumentNode

	// Leaves is the flat array of leaf blocks in document order. Caption
	// back-references (Block.Target) index into this array.
	Leaves []*Block

	// Pages is the 0-based page indices this document covers, ascending.
	Pages []int
}

// OutlineEntry is one heading in the document outline.
type OutlineEntry struct {
	Level int
	Text  string
	Page  int
}

// Outline returns the document's headings in order, forming a table of
// contents for the reconstructed tree.
func (d *Document) Outline() []OutlineEntry {
	var entries []OutlineEntry
	d.Root.Walk(func(n *DocumentNode) bool {
		if n.Heading != nil {
			entries = append(entries, OutlineEntry{
				Level: n.Heading.Level,
				Text:  n.Heading.Text,
				Page:  n.Heading.Page,
			})
		}
		return true
	})
	return entries
}

// CharCount returns the total non-whitespace rune count of all leaf and
// heading blocks. Used by degradation-safety accounting.
func (d *Document) CharCount() int {
	n := 0
	d.Root.Walk(func(node *DocumentNode) bool {
		if node.Heading != nil {
			n += node.Heading.CharCount()
		}
		if node.Block != nil {
			n += node.Block.CharCount()
		}
		return true
	})
	return n
}
