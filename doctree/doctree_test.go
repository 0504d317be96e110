package doctree

import (
	"errors"
	"testing"

	"github.com/pagemd/pagemd/model"
)

// makeHeading creates a heading block for tree tests.
func makeHeading(text string, level, page int) model.Block {
	b := model.NewBlock(model.KindHeading)
	b.Text = text
	b.Level = level
	b.Page = page
	b.SpanIndices = []int{0}
	return b
}

// makeParagraph creates a paragraph block for tree tests.
func makeParagraph(text string, page int) model.Block {
	b := model.NewBlock(model.KindParagraph)
	b.Text = text
	b.Page = page
	b.SpanIndices = []int{0}
	return b
}

func TestBuildFlatParagraphs(t *testing.T) {
	doc, err := NewBuilder().Build([]model.Block{
		makeParagraph("first", 0),
		makeParagraph("second", 0),
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(doc.Root.Children) != 2 {
		t.Fatalf("root has %d children, want 2 leaves", len(doc.Root.Children))
	}
	if len(doc.Leaves) != 2 || doc.Leaves[0].Text != "first" {
		t.Errorf("Leaves = %+v, want both paragraphs in order", doc.Leaves)
	}
}

func TestBuildSectionNesting(t *testing.T) {
	doc, err := NewBuilder().Build([]model.Block{
		makeHeading("Intro", 1, 0),
		makeParagraph("intro body", 0),
		makeHeading("Details", 2, 0),
		makeParagraph("detail body", 0),
		makeHeading("Next chapter", 1, 1),
		makeParagraph("next body", 1),
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(doc.Root.Children) != 2 {
		t.Fatalf("root has %d children, want 2 level-1 sections", len(doc.Root.Children))
	}
	intro := doc.Root.Children[0]
	if intro.Heading == nil || intro.Heading.Text != "Intro" {
		t.Fatalf("first section = %+v, want Intro", intro)
	}
	if len(intro.Children) != 2 {
		t.Fatalf("Intro has %d children, want paragraph + subsection", len(intro.Children))
	}
	details := intro.Children[1]
	if details.Heading == nil || details.Heading.Level != 2 {
		t.Errorf("Details = %+v, want nested level-2 section", details)
	}
	if got := doc.Root.Children[1].Heading.Text; got != "Next chapter" {
		t.Errorf("second level-1 section = %q, closing the open subsection", got)
	}
}

func TestBuildImplicitRootForLevelJump(t *testing.T) {
	doc, err := NewBuilder().Build([]model.Block{
		makeHeading("Deep start", 3, 0),
		makeParagraph("body", 0),
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	// Two implicit sections bridge root to the level-3 heading.
	n := doc.Root
	for depth := 0; depth < 2; depth++ {
		if len(n.Children) != 1 {
			t.Fatalf("depth %d has %d children, want 1", depth, len(n.Children))
		}
		n = n.Children[0]
		if n.Heading != nil {
			t.Fatalf("depth %d section has heading %q, want implicit section", depth+1, n.Heading.Text)
		}
	}
	if len(n.Children) != 1 || n.Children[0].Heading == nil || n.Children[0].Heading.Level != 3 {
		t.Fatalf("bridged node = %+v, want the level-3 section", n.Children[0])
	}
}

func TestBuildCaptionTarget(t *testing.T) {
	figure := model.NewBlock(model.KindFigure)
	figure.Page = 0
	figure.RegionIndex = 2

	caption := model.NewBlock(model.KindCaption)
	caption.Text = "Figure 1"
	caption.Page = 0
	caption.SpanIndices = []int{5}

	doc, err := NewBuilder().Build([]model.Block{figure, caption, makeParagraph("after", 0)})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(doc.Leaves) != 3 {
		t.Fatalf("Leaves = %d, want 3", len(doc.Leaves))
	}
	if doc.Leaves[1].Target != 0 {
		t.Errorf("caption Target = %d, want index of the figure leaf", doc.Leaves[1].Target)
	}
	if doc.Leaves[2].Target != -1 {
		t.Errorf("paragraph Target = %d, want -1", doc.Leaves[2].Target)
	}
}

func TestBuildCaptionWithoutPlaceholderUnbound(t *testing.T) {
	caption := model.NewBlock(model.KindCaption)
	caption.Text = "stray caption"
	caption.SpanIndices = []int{0}

	doc, err := NewBuilder().Build([]model.Block{makeParagraph("text", 0), caption})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if doc.Leaves[1].Target != -1 {
		t.Errorf("Target = %d, want -1 after a paragraph", doc.Leaves[1].Target)
	}
}

func TestBuildPages(t *testing.T) {
	doc, err := NewBuilder().Build([]model.Block{
		makeParagraph("a", 2),
		makeParagraph("b", 0),
		makeParagraph("c", 2),
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(doc.Pages) != 2 || doc.Pages[0] != 0 || doc.Pages[1] != 2 {
		t.Errorf("Pages = %v, want [0 2]", doc.Pages)
	}
}

func TestBuildInvariantViolations(t *testing.T) {
	badHeading := makeHeading("h", 0, 0) // level 0

	orphanFigure := model.NewBlock(model.KindFigure) // no region

	emptyText := model.NewBlock(model.KindParagraph) // no spans
	emptyText.Text = "x"

	tests := []struct {
		name  string
		block model.Block
	}{
		{"heading level zero", badHeading},
		{"figure without region", orphanFigure},
		{"paragraph without spans", emptyText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder().Build([]model.Block{tt.block})
			if !errors.Is(err, ErrInvariant) {
				t.Errorf("Build() error = %v, want ErrInvariant", err)
			}
		})
	}
}

func TestBuildEmptyInput(t *testing.T) {
	doc, err := NewBuilder().Build(nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(doc.Root.Children) != 0 || len(doc.Leaves) != 0 {
		t.Errorf("empty input should yield an empty tree, got %+v", doc)
	}
}

func TestBuildOutline(t *testing.T) {
	doc, err := NewBuilder().Build([]model.Block{
		makeHeading("One", 1, 0),
		makeHeading("One point one", 2, 0),
		makeParagraph("body", 0),
		makeHeading("Two", 1, 1),
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	outline := doc.Outline()
	if len(outline) != 3 {
		t.Fatalf("Outline() = %+v, want 3 entries", outline)
	}
	if outline[1].Level != 2 || outline[1].Text != "One point one" {
		t.Errorf("outline[1] = %+v", outline[1])
	}
	if outline[2].Page != 1 {
		t.Errorf("outline[2].Page = %d, want 1", outline[2].Page)
	}
}
