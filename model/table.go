package model

import (
	"fmt"
	"strings"
)

// Cell is a rectangular sub-region of a recovered table, associated with zero
// or more source spans. Row and column spans default to 1. Cells exist only
// during and after table structure recovery for a given table region.
type Cell struct {
	Text    string
	BBox    BBox
	RowSpan int
	ColSpan int

	// Header marks the cell as part of the header row block.
	Header bool

	// SpanIndices are the extraction indices of the contributing spans.
	SpanIndices []int
}

// Table is an ordered sequence of cell rows recovered from a tabular region.
//
// Structural validity invariant: the column count implied by summing col-spans
// is identical across all rows. A grid violating this was misclustered; it is
// rejected by Validate and the caller degrades the region to paragraphs
// rather than silently repairing it in a way that could drop content.
type Table struct {
	Rows [][]Cell
	BBox BBox

	// HeaderRows is the number of leading rows detected as headers.
	HeaderRows int
}

// NewTable creates a table with the given dimensions, all cells spanning 1x1.
func NewTable(rows, cols int) *Table {
	t := &Table{Rows: make([][]Cell, rows)}
	for i := range t.Rows {
		t.Rows[i] = make([]Cell, cols)
		for j := range t.Rows[i] {
			t.Rows[i][j] = Cell{RowSpan: 1, ColSpan: 1}
		}
	}
	return t
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the column count implied by the first row's col-spans.
func (t *Table) ColCount() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return rowWidth(t.Rows[0])
}

// Cell returns the cell at the given position, or nil when out of bounds.
func (t *Table) Cell(row, col int) *Cell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	if col < 0 || col >= len(t.Rows[row]) {
		return nil
	}
	return &t.Rows[row][col]
}

// Validate checks the structural validity invariant: no empty rows, positive
// spans, and a consistent implied column count across all rows. Slots covered
// by a row-spanning cell from an earlier row count toward the covering row's
// width, so the check simulates grid occupancy rather than summing per row.
func (t *Table) Validate() error {
	if len(t.Rows) == 0 {
		return fmt.Errorf("table has no rows")
	}
	cols := rowWidth(t.Rows[0]) // row 0 cannot be overhung
	if cols == 0 {
		return fmt.Errorf("row 0 is empty")
	}

	// carry[c] is the number of further rows column c stays occupied by a
	// row-spanning cell from above.
	carry := make([]int, cols)

	for i, row := range t.Rows {
		if len(row) == 0 {
			return fmt.Errorf("row %d is empty", i)
		}
		col := 0
		for j, cell := range row {
			if cell.RowSpan < 1 || cell.ColSpan < 1 {
				return fmt.Errorf("cell (%d,%d) has non-positive span", i, j)
			}
			for col < cols && carry[col] > 0 {
				col++
			}
			if col+cell.ColSpan > cols {
				return fmt.Errorf("row %d implies more than %d columns", i, cols)
			}
			for dc := 0; dc < cell.ColSpan; dc++ {
				carry[col+dc] = cell.RowSpan
			}
			col += cell.ColSpan
		}
		// Every remaining slot must be covered by an earlier rowspan.
		for ; col < cols; col++ {
			if carry[col] == 0 {
				return fmt.Errorf("row %d implies fewer than %d columns", i, cols)
			}
		}
		for c := range carry {
			carry[c]--
		}
	}
	return nil
}

// rowWidth sums the col-spans of a row.
func rowWidth(row []Cell) int {
	w := 0
	for _, c := range row {
		w += c.ColSpan
	}
	return w
}

// CharCount returns the total non-whitespace rune count across all cells.
// Row- and column-spanning cells are counted once.
func (t *Table) CharCount() int {
	n := 0
	for _, row := range t.Rows {
		for _, cell := range row {
			n += countNonSpace(cell.Text)
		}
	}
	return n
}

// Text returns the table content as tab-separated rows, one line per row.
// This is the degraded plain-text form, not the markdown rendering.
func (t *Table) Text() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row {
			if j > 0 {
				sb.WriteString("\t")
			}
			sb.WriteString(cell.Text)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Flatten expands row- and column-spanning cells by repeating their text into
// every covered slot, returning a rectangular grid of strings. Markdown has
// no native span syntax, so the serializer renders this flattened form.
func (t *Table) Flatten() [][]string {
	if len(t.Rows) == 0 {
		return nil
	}
	cols := t.ColCount()
	grid := make([][]string, len(t.Rows))
	for i := range grid {
		grid[i] = make([]string, cols)
	}
	filled := make([][]bool, len(t.Rows))
	for i := range filled {
		filled[i] = make([]bool, cols)
	}

	for i, row := range t.Rows {
		col := 0
		for _, cell := range row {
			for col < cols && filled[i][col] {
				col++
			}
			for dr := 0; dr < cell.RowSpan && i+dr < len(t.Rows); dr++ {
				for dc := 0; dc < cell.ColSpan && col+dc < cols; dc++ {
					grid[i+dr][col+dc] = cell.Text
					filled[i+dr][col+dc] = true
				}
			}
			col += cell.ColSpan
		}
	}
	return grid
}
