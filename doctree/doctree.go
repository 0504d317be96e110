package doctree

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pagemd/pagemd/model"
)

// ErrInvariant marks a tree-construction invariant violation. It signals a
// defect in the engine rather than messy input: the affected document
// produces no output, while other documents in the batch continue.
var ErrInvariant = errors.New("document tree invariant violation")

// Builder assembles classified, ordered blocks into a section tree.
type Builder struct{}

// NewBuilder creates a tree builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build nests the block sequence into sections using heading levels: a
// heading of level n opens a section at depth n, closing any open section at
// depth >= n. Non-heading blocks become leaves of the innermost open section.
// A level jump past the deepest open section inserts implicit intermediate
// sections so the tree stays well-formed.
//
// Blocks are copied into the tree; the input slice is not retained.
func (b *Builder) Build(blocks []model.Block) (*model.Document, error) {
	root := &model.DocumentNode{}
	doc := &model.Document{Root: root}

	// Stack of open sections; frame i below the root holds its heading level.
	type frame struct {
		node  *model.DocumentNode
		level int
	}
	stack := []frame{{node: root, level: 0}}
	pages := make(map[int]bool)

	for i := range blocks {
		block := blocks[i]
		if err := checkBlock(&block); err != nil {
			return nil, fmt.Errorf("block %d (%s): %w", i, block.Kind, err)
		}
		pages[block.Page] = true

		if block.Kind == model.KindHeading {
			for len(stack) > 1 && stack[len(stack)-1].level >= block.Level {
				stack = stack[:len(stack)-1]
			}
			// Bridge level jumps with implicit sections so a level-3 heading
			// under a level-1 section still nests at depth 3.
			for stack[len(stack)-1].level < block.Level-1 {
				implicit := &model.DocumentNode{}
				stack[len(stack)-1].node.AddChild(implicit)
				stack = append(stack, frame{node: implicit, level: stack[len(stack)-1].level + 1})
			}
			heading := block
			section := &model.DocumentNode{Heading: &heading}
			stack[len(stack)-1].node.AddChild(section)
			stack = append(stack, frame{node: section, level: block.Level})
			continue
		}

		leaf := block
		if leaf.Kind == model.KindCaption {
			leaf.Target = captionTarget(doc.Leaves)
		}
		node := &model.DocumentNode{Block: &leaf}
		stack[len(stack)-1].node.AddChild(node)
		doc.Leaves = append(doc.Leaves, &leaf)
	}

	doc.Pages = sortedPages(pages)
	return doc, nil
}

// checkBlock enforces the block ownership invariants before a block enters
// the tree.
func checkBlock(block *model.Block) error {
	switch block.Kind {
	case model.KindHeading:
		if block.Level < 1 {
			return fmt.Errorf("%w: heading level %d", ErrInvariant, block.Level)
		}
		if len(block.SpanIndices) == 0 {
			return fmt.Errorf("%w: heading owns no spans", ErrInvariant)
		}
	case model.KindFigure, model.KindFormula:
		if block.RegionIndex < 0 {
			return fmt.Errorf("%w: placeholder references no region", ErrInvariant)
		}
	case model.KindTable:
		if block.Table == nil {
			return fmt.Errorf("%w: table block carries no table", ErrInvariant)
		}
	default:
		if len(block.SpanIndices) == 0 {
			return fmt.Errorf("%w: text block owns no spans", ErrInvariant)
		}
	}
	return nil
}

// captionTarget returns the leaf index of the figure, formula, or table the
// caption describes: the immediately preceding leaf, when it is one. -1 when
// unbound.
func captionTarget(leaves []*model.Block) int {
	if len(leaves) == 0 {
		return -1
	}
	last := leaves[len(leaves)-1]
	switch last.Kind {
	case model.KindFigure, model.KindFormula, model.KindTable:
		return len(leaves) - 1
	}
	return -1
}

// sortedPages returns the distinct page indices ascending.
func sortedPages(pages map[int]bool) []int {
	out := make([]int, 0, len(pages))
	for p := range pages {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}
