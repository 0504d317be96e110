package model

import "unicode"

// BlockKind identifies the semantic class of a block. The set is closed: the
// markdown serializer matches exhaustively over these values, so adding a kind
// without teaching the serializer about it is a compile-visible change, not a
// silent fall-through.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
	KindListItem
	KindCaption
	KindFigure
	KindTable
	KindFormula
)

func (k BlockKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindListItem:
		return "list-item"
	case KindCaption:
		return "caption"
	case KindFigure:
		return "figure"
	case KindTable:
		return "table"
	case KindFormula:
		return "formula"
	default:
		return "unknown"
	}
}

// Block is a classified, ordered unit of document content. It is a tagged
// variant: Kind selects which of the remaining fields are meaningful.
//
// Text blocks (paragraph, heading, list item, caption) own one or more source
// spans, referenced by extraction index into the originating page batch.
// Placeholder blocks (figure, formula) reference exactly one region. Table
// blocks carry the recovered Table.
type Block struct {
	Kind BlockKind
	BBox BBox

	// Page is the 0-based page index the block was assembled from.
	Page int

	// Text is the merged text of the source spans, space-joined in reading
	// order. Empty for placeholder and table blocks.
	Text string

	// SpanIndices are the extraction indices of the owned spans, in reading
	// order. A span belongs to exactly one block.
	SpanIndices []int

	// RegionIndex is the extraction index of the referenced region for figure
	// and formula blocks, -1 otherwise.
	RegionIndex int

	// Level is the heading level (1-based) for heading blocks.
	Level int

	// Depth is the quantized indent depth (0-based) for list item blocks.
	Depth int

	// Ordered reports whether a list item carried a numbering pattern rather
	// than a bullet glyph.
	Ordered bool

	// Table is the recovered table for table blocks.
	Table *Table

	// Target is the leaf-array index of the figure or table a caption block
	// describes, or -1 when unbound. It is an index rather than a pointer so
	// the back-reference carries no ownership.
	Target int
}

// NewBlock creates a block of the given kind with reference fields unset.
func NewBlock(kind BlockKind) Block {
	return Block{
		Kind:        kind,
		RegionIndex: -1,
		Target:      -1,
	}
}

// CharCount returns the number of runes of owned text. Table blocks count
// cell text. Used by degradation accounting: re-interpreting a structure must
// never change the total character count.
func (b *Block) CharCount() int {
	if b.Kind == KindTable && b.Table != nil {
		return b.Table.CharCount()
	}
	return countNonSpace(b.Text)
}

// countNonSpace counts runes that are not whitespace, so joining decisions
// (space vs newline) never affect degradation accounting.
func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// IsPlaceholder reports whether the block stands in for a non-text region.
func (b *Block) IsPlaceholder() bool {
	return b.Kind == KindFigure || b.Kind == KindFormula
}
