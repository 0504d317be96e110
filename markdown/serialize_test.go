package markdown

import (
	"strings"
	"testing"

	"github.com/pagemd/pagemd/model"
)

// docOf wraps blocks into a flat document for serializer tests.
func docOf(blocks ...model.Block) *model.Document {
	doc := &model.Document{Root: &model.DocumentNode{}}
	for i := range blocks {
		b := blocks[i]
		if b.Kind == model.KindHeading {
			doc.Root.AddChild(&model.DocumentNode{Heading: &b})
			continue
		}
		doc.Root.AddChild(&model.DocumentNode{Block: &b})
		doc.Leaves = append(doc.Leaves, &b)
	}
	return doc
}

func makeText(kind model.BlockKind, text string) model.Block {
	b := model.NewBlock(kind)
	b.Text = text
	b.SpanIndices = []int{0}
	return b
}

func TestSerializeHeadingAndParagraph(t *testing.T) {
	h := makeText(model.KindHeading, "Total")
	h.Level = 1
	p := makeText(model.KindParagraph, "709,500")

	got := NewSerializer().Serialize(docOf(h, p))
	want := "# Total\n\n709,500\n"
	if got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeHeadingLevelCap(t *testing.T) {
	h := makeText(model.KindHeading, "deep")
	h.Level = 9
	got := NewSerializer().Serialize(docOf(h))
	if !strings.HasPrefix(got, "###### deep") {
		t.Errorf("Serialize() = %q, want level capped at 6", got)
	}
}

func TestSerializeTable(t *testing.T) {
	table := model.NewTable(2, 3)
	for j, s := range []string{"A", "B", "C"} {
		table.Rows[0][j].Text = s
		table.Rows[0][j].Header = true
	}
	for j, s := range []string{"1", "2", "3"} {
		table.Rows[1][j].Text = s
	}
	table.HeaderRows = 1

	b := model.NewBlock(model.KindTable)
	b.Table = table

	got := NewSerializer().Serialize(docOf(b))
	want := "| A | B | C |\n| --- | --- | --- |\n| 1 | 2 | 3 |\n"
	if got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeTableSpanRepetition(t *testing.T) {
	table := &model.Table{
		Rows: [][]model.Cell{
			{
				{Text: "Name", RowSpan: 1, ColSpan: 1, Header: true},
				{Text: "Scores", RowSpan: 1, ColSpan: 2, Header: true},
			},
			{
				{Text: "ada", RowSpan: 1, ColSpan: 1},
				{Text: "7", RowSpan: 1, ColSpan: 1},
				{Text: "9", RowSpan: 1, ColSpan: 1},
			},
		},
		HeaderRows: 1,
	}
	b := model.NewBlock(model.KindTable)
	b.Table = table

	got := NewSerializer().Serialize(docOf(b))
	want := "| Name | Scores | Scores |\n| --- | --- | --- |\n| ada | 7 | 9 |\n"
	if got != want {
		t.Errorf("Serialize() = %q, want spanning cell repeated, got %q", got, want)
	}
}

func TestSerializePlaceholders(t *testing.T) {
	fig := model.NewBlock(model.KindFigure)
	fig.RegionIndex = 0
	formula := model.NewBlock(model.KindFormula)
	formula.RegionIndex = 1

	got := NewSerializer().Serialize(docOf(fig, formula))
	want := "![](image)\n\n$formula$\n"
	if got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeCaptionGluesToFigure(t *testing.T) {
	fig := model.NewBlock(model.KindFigure)
	fig.RegionIndex = 0
	caption := makeText(model.KindCaption, "Figure 1: a sample")
	caption.Target = 0

	got := NewSerializer().Serialize(docOf(fig, caption))
	want := "![](image)\nFigure 1: a sample\n"
	if got != want {
		t.Errorf("Serialize() = %q, want caption without blank line, got %q", got, want)
	}
}

func TestSerializeUnboundCaptionStandsApart(t *testing.T) {
	p := makeText(model.KindParagraph, "prose")
	caption := makeText(model.KindCaption, "stray")

	got := NewSerializer().Serialize(docOf(p, caption))
	want := "prose\n\nstray\n"
	if got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeList(t *testing.T) {
	item := func(text string, depth int, ordered bool) model.Block {
		b := makeText(model.KindListItem, text)
		b.Depth = depth
		b.Ordered = ordered
		return b
	}
	got := NewSerializer().Serialize(docOf(
		item("first", 0, false),
		item("nested", 1, false),
		item("one", 0, true),
		item("two", 0, true),
	))
	want := "- first\n  - nested\n1. one\n2. two\n"
	if got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeListThenParagraph(t *testing.T) {
	item := makeText(model.KindListItem, "only item")
	p := makeText(model.KindParagraph, "after")
	got := NewSerializer().Serialize(docOf(item, p))
	want := "- only item\n\nafter\n"
	if got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}

func TestSerializeEmptyDocument(t *testing.T) {
	if got := NewSerializer().Serialize(docOf()); got != "" {
		t.Errorf("Serialize() = %q, want empty", got)
	}
}

func TestSerializeDeterministic(t *testing.T) {
	h := makeText(model.KindHeading, "Title")
	h.Level = 1
	doc := docOf(h, makeText(model.KindParagraph, "body text"))
	first := NewSerializer().Serialize(doc)
	for i := 0; i < 10; i++ {
		if got := NewSerializer().Serialize(doc); got != first {
			t.Fatalf("run %d = %q, want %q", i, got, first)
		}
	}
}

func TestSerializeAlignedColumns(t *testing.T) {
	table := model.NewTable(2, 2)
	table.Rows[0][0].Text = "Name"
	table.Rows[0][1].Text = "N"
	table.Rows[1][0].Text = "x"
	table.Rows[1][1].Text = "1234"
	table.HeaderRows = 1

	b := model.NewBlock(model.KindTable)
	b.Table = table

	got := NewSerializerWithConfig(Config{AlignColumns: true}).Serialize(docOf(b))
	want := "| Name | N    |\n| ---- | ---- |\n| x    | 1234 |\n"
	if got != want {
		t.Errorf("Serialize() = %q, want %q", got, want)
	}
}
