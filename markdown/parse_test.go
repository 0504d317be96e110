package markdown

import (
	"testing"

	"github.com/pagemd/pagemd/model"
)

func TestParseTable(t *testing.T) {
	table, err := ParseTable("| A | B | C |\n| --- | --- | --- |\n| 1 | 2 | 3 |\n")
	if err != nil {
		t.Fatalf("ParseTable() error: %v", err)
	}
	if table.RowCount() != 2 || table.ColCount() != 3 {
		t.Fatalf("got %dx%d, want 2x3", table.RowCount(), table.ColCount())
	}
	if table.HeaderRows != 1 || !table.Rows[0][0].Header || table.Rows[1][0].Header {
		t.Errorf("HeaderRows = %d, want the row before the separator marked", table.HeaderRows)
	}
	if table.Rows[1][2].Text != "3" {
		t.Errorf("Rows[1][2].Text = %q, want %q", table.Rows[1][2].Text, "3")
	}
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"no separator", "| A |\n| 1 |\n"},
		{"ragged rows", "| A | B |\n| --- | --- |\n| 1 |\n"},
		{"not a table", "just prose\n"},
		{"double separator", "| A |\n| --- |\n| --- |\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTable(tt.text); err == nil {
				t.Errorf("ParseTable(%q) succeeded, want error", tt.text)
			}
		})
	}
}

func TestTableRoundTrip(t *testing.T) {
	table := model.NewTable(3, 2)
	texts := [][]string{{"Key", "Value"}, {"alpha", "1"}, {"beta", "2"}}
	for i := range texts {
		for j := range texts[i] {
			table.Rows[i][j].Text = texts[i][j]
		}
	}
	table.HeaderRows = 1
	table.Rows[0][0].Header = true
	table.Rows[0][1].Header = true

	b := model.NewBlock(model.KindTable)
	b.Table = table
	rendered := NewSerializer().Serialize(docOf(b))

	parsed, err := ParseTable(rendered)
	if err != nil {
		t.Fatalf("ParseTable() error: %v", err)
	}
	if parsed.RowCount() != 3 || parsed.ColCount() != 2 {
		t.Fatalf("round trip got %dx%d, want 3x2", parsed.RowCount(), parsed.ColCount())
	}
	got := parsed.Flatten()
	for i := range texts {
		for j := range texts[i] {
			if got[i][j] != texts[i][j] {
				t.Errorf("cell (%d,%d) = %q, want %q", i, j, got[i][j], texts[i][j])
			}
		}
	}
	if parsed.HeaderRows != 1 {
		t.Errorf("HeaderRows = %d, want 1", parsed.HeaderRows)
	}
}
