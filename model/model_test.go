package model

import (
	"testing"
)

func TestBBoxDimensions(t *testing.T) {
	b := NewBBox(10, 20, 110, 50)
	if b.Width() != 100 {
		t.Errorf("Width() = %v, want 100", b.Width())
	}
	if b.Height() != 30 {
		t.Errorf("Height() = %v, want 30", b.Height())
	}
	c := b.Center()
	if c.X != 60 || c.Y != 35 {
		t.Errorf("Center() = %+v, want (60, 35)", c)
	}
}

func TestNewBBoxNormalizesCorners(t *testing.T) {
	b := NewBBox(110, 50, 10, 20)
	if b.X0 != 10 || b.Y0 != 20 || b.X1 != 110 || b.Y1 != 50 {
		t.Errorf("NewBBox did not normalize corners: %+v", b)
	}
}

func TestBBoxContains(t *testing.T) {
	b := NewBBox(0, 0, 10, 10)
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{5, 5}, true},
		{Point{0, 0}, true},
		{Point{10, 10}, true},
		{Point{11, 5}, false},
		{Point{5, -1}, false},
	}
	for _, tt := range tests {
		if got := b.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestBBoxIntersection(t *testing.T) {
	a := NewBBox(0, 0, 10, 10)
	b := NewBBox(5, 5, 15, 15)
	got := a.Intersection(b)
	want := BBox{X0: 5, Y0: 5, X1: 10, Y1: 10}
	if got != want {
		t.Errorf("Intersection = %+v, want %+v", got, want)
	}

	c := NewBBox(20, 20, 30, 30)
	if got := a.Intersection(c); got != (BBox{}) {
		t.Errorf("disjoint Intersection = %+v, want zero box", got)
	}
}

func TestBBoxIsValid(t *testing.T) {
	if !NewBBox(0, 0, 1, 1).IsValid() {
		t.Error("positive-area box reported invalid")
	}
	degenerate := BBox{X0: 5, Y0: 5, X1: 5, Y1: 10}
	if degenerate.IsValid() {
		t.Error("zero-width box reported valid")
	}
}

func TestBBoxOverlapRatio(t *testing.T) {
	a := NewBBox(0, 0, 10, 10)
	b := NewBBox(0, 0, 5, 10)
	if got := a.OverlapRatio(b); got != 1.0 {
		t.Errorf("OverlapRatio = %v, want 1.0 (b fully inside a)", got)
	}
}

func TestTableValidateConsistent(t *testing.T) {
	tbl := NewTable(2, 3)
	if err := tbl.Validate(); err != nil {
		t.Errorf("Validate() on uniform 2x3 grid: %v", err)
	}
}

func TestTableValidateColSpan(t *testing.T) {
	tbl := NewTable(2, 3)
	// Row 1 merges the last two columns: still 3 implied columns.
	tbl.Rows[1] = []Cell{
		{ColSpan: 1, RowSpan: 1},
		{ColSpan: 2, RowSpan: 1},
	}
	if err := tbl.Validate(); err != nil {
		t.Errorf("Validate() with colspan row: %v", err)
	}
}

func TestTableValidateRowSpanOverhang(t *testing.T) {
	// Column 0 of row 0 spans both rows; row 1 supplies only cols 1-2.
	tbl := &Table{Rows: [][]Cell{
		{{ColSpan: 1, RowSpan: 2}, {ColSpan: 1, RowSpan: 1}, {ColSpan: 1, RowSpan: 1}},
		{{ColSpan: 1, RowSpan: 1}, {ColSpan: 1, RowSpan: 1}},
	}}
	if err := tbl.Validate(); err != nil {
		t.Errorf("Validate() with rowspan overhang: %v", err)
	}
}

func TestTableValidateInconsistent(t *testing.T) {
	tbl := &Table{Rows: [][]Cell{
		{{ColSpan: 1, RowSpan: 1}, {ColSpan: 1, RowSpan: 1}, {ColSpan: 1, RowSpan: 1}},
		{{ColSpan: 1, RowSpan: 1}, {ColSpan: 1, RowSpan: 1}},
	}}
	if err := tbl.Validate(); err == nil {
		t.Error("Validate() accepted inconsistent column counts")
	}
}

func TestTableValidateEmptyRow(t *testing.T) {
	tbl := &Table{Rows: [][]Cell{
		{{ColSpan: 1, RowSpan: 1}},
		{},
	}}
	if err := tbl.Validate(); err == nil {
		t.Error("Validate() accepted an empty row")
	}
}

func TestTableFlattenRepeatsSpannedCells(t *testing.T) {
	tbl := &Table{Rows: [][]Cell{
		{{Text: "Merged", ColSpan: 2, RowSpan: 1}, {Text: "C", ColSpan: 1, RowSpan: 1}},
		{{Text: "1", ColSpan: 1, RowSpan: 1}, {Text: "2", ColSpan: 1, RowSpan: 1}, {Text: "3", ColSpan: 1, RowSpan: 1}},
	}}
	grid := tbl.Flatten()
	if len(grid) != 2 || len(grid[0]) != 3 {
		t.Fatalf("Flatten() shape = %dx%d, want 2x3", len(grid), len(grid[0]))
	}
	if grid[0][0] != "Merged" || grid[0][1] != "Merged" || grid[0][2] != "C" {
		t.Errorf("header row = %v, want [Merged Merged C]", grid[0])
	}
}

func TestTableFlattenRowSpan(t *testing.T) {
	tbl := &Table{Rows: [][]Cell{
		{{Text: "Tall", ColSpan: 1, RowSpan: 2}, {Text: "B", ColSpan: 1, RowSpan: 1}},
		{{Text: "b2", ColSpan: 1, RowSpan: 1}},
	}}
	grid := tbl.Flatten()
	if grid[1][0] != "Tall" {
		t.Errorf("grid[1][0] = %q, want repeated %q", grid[1][0], "Tall")
	}
	if grid[1][1] != "b2" {
		t.Errorf("grid[1][1] = %q, want %q", grid[1][1], "b2")
	}
}

func TestTableCharCount(t *testing.T) {
	tbl := &Table{Rows: [][]Cell{
		{{Text: "ab cd", ColSpan: 1, RowSpan: 1}, {Text: "e", ColSpan: 1, RowSpan: 1}},
	}}
	if got := tbl.CharCount(); got != 5 {
		t.Errorf("CharCount() = %d, want 5", got)
	}
}

func TestBlockCharCount(t *testing.T) {
	b := NewBlock(KindParagraph)
	b.Text = "hello world"
	if got := b.CharCount(); got != 10 {
		t.Errorf("CharCount() = %d, want 10", got)
	}
}

func TestBlockKindString(t *testing.T) {
	tests := []struct {
		kind BlockKind
		want string
	}{
		{KindParagraph, "paragraph"},
		{KindHeading, "heading"},
		{KindListItem, "list-item"},
		{KindCaption, "caption"},
		{KindFigure, "figure"},
		{KindTable, "table"},
		{KindFormula, "formula"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("BlockKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestDocumentOutline(t *testing.T) {
	h1 := NewBlock(KindHeading)
	h1.Text = "Intro"
	h1.Level = 1
	h2 := NewBlock(KindHeading)
	h2.Text = "Detail"
	h2.Level = 2

	para := NewBlock(KindParagraph)
	para.Text = "body"

	inner := &DocumentNode{Heading: &h2, Children: []*DocumentNode{{Block: &para}}}
	root := &DocumentNode{Children: []*DocumentNode{
		{Heading: &h1, Children: []*DocumentNode{inner}},
	}}
	doc := &Document{Root: root, Leaves: []*Block{&para}}

	outline := doc.Outline()
	if len(outline) != 2 {
		t.Fatalf("Outline() returned %d entries, want 2", len(outline))
	}
	if outline[0].Text != "Intro" || outline[0].Level != 1 {
		t.Errorf("outline[0] = %+v", outline[0])
	}
	if outline[1].Text != "Detail" || outline[1].Level != 2 {
		t.Errorf("outline[1] = %+v", outline[1])
	}
}

func TestWalkStops(t *testing.T) {
	root := &DocumentNode{Children: []*DocumentNode{{}, {}, {}}}
	visits := 0
	root.Walk(func(n *DocumentNode) bool {
		visits++
		return visits < 2
	})
	if visits != 2 {
		t.Errorf("Walk visited %d nodes after stop, want 2", visits)
	}
}

func TestRegionKindString(t *testing.T) {
	if RegionImage.String() != "image" || RegionLine.String() != "line" || RegionFormula.String() != "formula" {
		t.Error("RegionKind.String() mismatch")
	}
}

func TestPageBatchRulingLines(t *testing.T) {
	batch := &PageBatch{Regions: []Region{
		{Kind: RegionImage},
		{Kind: RegionLine},
		{Kind: RegionLine},
	}}
	if got := len(batch.RulingLines()); got != 2 {
		t.Errorf("RulingLines() returned %d regions, want 2", got)
	}
}
