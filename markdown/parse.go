package markdown

import (
	"fmt"
	"strings"

	"github.com/pagemd/pagemd/model"
)

// ParseTable parses a pipe-delimited markdown table back into a Table. It is
// the inverse of table serialization for span-free grids and backs the
// round-trip fixture tooling: serialize, re-parse, and compare cell text.
//
// Rows before the `---` separator become header rows. Every parsed cell has
// row and column span 1; span recovery is not re-run here.
func ParseTable(text string) (*model.Table, error) {
	var rows [][]string
	headerRows := 0
	sawSeparator := false

	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "|") || !strings.HasSuffix(line, "|") {
			return nil, fmt.Errorf("line %d: not a table row: %q", lineNo+1, line)
		}
		cells := splitRow(line)
		if isSeparatorRow(cells) {
			if sawSeparator {
				return nil, fmt.Errorf("line %d: multiple separator rows", lineNo+1)
			}
			sawSeparator = true
			headerRows = len(rows)
			continue
		}
		rows = append(rows, cells)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no table rows found")
	}
	cols := len(rows[0])
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), cols)
		}
	}
	if !sawSeparator {
		return nil, fmt.Errorf("missing header separator row")
	}

	table := model.NewTable(len(rows), cols)
	table.HeaderRows = headerRows
	for i, row := range rows {
		for j, cellText := range row {
			table.Rows[i][j].Text = cellText
			table.Rows[i][j].Header = i < headerRows
		}
	}
	return table, nil
}

// splitRow splits a pipe row into trimmed cell texts.
func splitRow(line string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|")
	parts := strings.Split(inner, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// isSeparatorRow reports whether every cell is a dash run.
func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if c == "" {
			return false
		}
		for _, r := range c {
			if r != '-' && r != ':' {
				return false
			}
		}
	}
	return true
}
