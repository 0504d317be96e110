package tables

import (
	"fmt"
	"sort"

	"github.com/pagemd/pagemd/model"
)

// Config holds the tunable thresholds of table structure recovery. Like the
// layout thresholds, these are heuristics validated against fixture corpora
// and exposed as configuration.
type Config struct {
	// BoundaryTolerance is the clustering band width for row/column edge
	// coordinates, in page units. Default: 4.0.
	BoundaryTolerance float64

	// MinRows and MinCols are the smallest grid accepted as a table.
	// Defaults: 2 and 2.
	MinRows int
	MinCols int

	// MinAlignedRows is the number of column-aligned rows required before an
	// unruled span cluster counts as a table candidate. Default: 3.
	MinAlignedRows int

	// LineAspect is the minimum length-to-thickness ratio for a line region
	// to count as a ruling line. Default: 5.0.
	LineAspect float64
}

// DefaultConfig returns sensible recovery defaults.
func DefaultConfig() Config {
	return Config{
		BoundaryTolerance: 4.0,
		MinRows:           2,
		MinCols:           2,
		MinAlignedRows:    3,
		LineAspect:        5.0,
	}
}

// Recoverer turns span clusters flagged as tabular into Table structures.
type Recoverer struct {
	config Config
}

// NewRecoverer creates a recoverer with default configuration.
func NewRecoverer() *Recoverer {
	return &Recoverer{config: DefaultConfig()}
}

// NewRecovererWithConfig creates a recoverer with custom configuration.
func NewRecovererWithConfig(config Config) *Recoverer {
	return &Recoverer{config: config}
}

// Recover clusters the candidate's spans into a validated grid. A nil table
// and an error mean the cluster is not a structurally consistent table; the
// caller degrades the spans to paragraphs rather than emitting a partial or
// repaired table, since a wrong table is worse than no table.
func (r *Recoverer) Recover(batch *model.PageBatch, cand Candidate) (*model.Table, error) {
	spans := make([]model.Span, 0, len(cand.SpanIndices))
	for _, i := range cand.SpanIndices {
		spans = append(spans, batch.Spans[i])
	}
	if len(spans) == 0 {
		return nil, fmt.Errorf("table candidate has no spans")
	}

	colEdges := r.columnEdges(spans, cand)
	rowEdges := r.rowEdges(spans, cand)
	if len(rowEdges) < r.config.MinRows || len(colEdges) < r.config.MinCols {
		return nil, fmt.Errorf("grid is %dx%d, below the %dx%d minimum",
			len(rowEdges), len(colEdges), r.config.MinRows, r.config.MinCols)
	}

	grid, err := r.assignSpans(spans, cand.SpanIndices, rowEdges, colEdges)
	if err != nil {
		return nil, err
	}

	table := r.buildTable(grid, rowEdges, colEdges)
	if err := checkNoEmptyRows(table); err != nil {
		return nil, err
	}
	r.collapseRepeatedRows(table)
	r.detectHeader(table, grid)

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("inconsistent grid: %w", err)
	}
	return table, nil
}

// columnEdges returns column start coordinates, left to right. A grid hint's
// pre-detected boundaries win; otherwise left edges cluster into
// tolerance bands.
func (r *Recoverer) columnEdges(spans []model.Span, cand Candidate) []float64 {
	if cand.Hint != nil && len(cand.Hint.ColBounds) >= 2 {
		// Hint bounds delimit columns; starts are all but the last bound.
		return cand.Hint.ColBounds[:len(cand.Hint.ColBounds)-1]
	}
	coords := make([]float64, len(spans))
	for i, s := range spans {
		coords[i] = s.BBox.X0
	}
	return clusterCoords(coords, r.config.BoundaryTolerance)
}

// rowEdges returns row start coordinates, top to bottom.
func (r *Recoverer) rowEdges(spans []model.Span, cand Candidate) []float64 {
	if cand.Hint != nil && len(cand.Hint.RowBounds) >= 2 {
		return cand.Hint.RowBounds[:len(cand.Hint.RowBounds)-1]
	}
	coords := make([]float64, len(spans))
	for i, s := range spans {
		coords[i] = s.BBox.Y0
	}
	return clusterCoords(coords, r.config.BoundaryTolerance)
}

// clusterCoords groups sorted coordinates into tolerance bands and returns
// one representative (the band mean) per band, ascending.
func clusterCoords(coords []float64, tolerance float64) []float64 {
	if len(coords) == 0 {
		return nil
	}
	sorted := make([]float64, len(coords))
	copy(sorted, coords)
	sort.Float64s(sorted)

	var bands []float64
	bandStart := sorted[0]
	bandSum := sorted[0]
	bandCount := 1
	for _, c := range sorted[1:] {
		if c-bandStart <= tolerance {
			bandSum += c
			bandCount++
			continue
		}
		bands = append(bands, bandSum/float64(bandCount))
		bandStart = c
		bandSum = c
		bandCount = 1
	}
	bands = append(bands, bandSum/float64(bandCount))
	return bands
}

// cellSlot accumulates the spans landing in one grid position.
type cellSlot struct {
	spanIndices []int // positions in batch.Spans
	spans       []model.Span
	rowSpan     int
	colSpan     int
}

// assignSpans places each span in the cell containing its bounding-box
// center. A span whose box crosses detected boundaries claims the covered
// columns (or rows) as its span counts, provided the covered slots hold no
// content of their own.
func (r *Recoverer) assignSpans(spans []model.Span, indices []int, rowEdges, colEdges []float64) ([][]*cellSlot, error) {
	rows := len(rowEdges)
	cols := len(colEdges)
	grid := make([][]*cellSlot, rows)
	for i := range grid {
		grid[i] = make([]*cellSlot, cols)
	}

	for k, s := range spans {
		c := s.BBox.Center()
		row := edgeIndex(rowEdges, c.Y)
		col := edgeIndex(colEdges, c.X)
		if row < 0 || col < 0 {
			return nil, fmt.Errorf("span %d falls outside the grid", indices[k])
		}
		if grid[row][col] == nil {
			grid[row][col] = &cellSlot{rowSpan: 1, colSpan: 1}
		}
		slot := grid[row][col]
		slot.spanIndices = append(slot.spanIndices, indices[k])
		slot.spans = append(slot.spans, s)

		// Column span: the box extends past the start of later columns.
		if cs := coveredCount(colEdges, col, s.BBox.X1, r.config.BoundaryTolerance); cs > slot.colSpan {
			slot.colSpan = cs
		}
		// Row span: the box extends past the start of later rows.
		if rs := coveredCount(rowEdges, row, s.BBox.Y1, r.config.BoundaryTolerance); rs > slot.rowSpan {
			slot.rowSpan = rs
		}
	}
	return grid, nil
}

// edgeIndex returns the band whose range contains the coordinate: the last
// edge at or before it.
func edgeIndex(edges []float64, coord float64) int {
	idx := -1
	for i, e := range edges {
		if coord >= e {
			idx = i
		}
	}
	if idx == -1 && len(edges) > 0 && coord >= edges[0]-1 {
		idx = 0
	}
	return idx
}

// coveredCount counts how many consecutive bands starting at from a box
// ending at hi covers, requiring the box to extend meaningfully past each
// next band start.
func coveredCount(edges []float64, from int, hi, tolerance float64) int {
	count := 1
	for i := from + 1; i < len(edges); i++ {
		if hi > edges[i]+tolerance {
			count++
		} else {
			break
		}
	}
	return count
}

// buildTable converts the slot grid into a Table, dropping slots covered by
// a spanning neighbor and filling genuinely empty positions with blank
// 1x1 cells. A row with no content at all is structurally empty, which
// Validate-level rejection treats as "not a table".
func (r *Recoverer) buildTable(grid [][]*cellSlot, rowEdges, colEdges []float64) *model.Table {
	rows := len(grid)
	cols := len(colEdges)

	// covered[r][c] marks slots consumed by a spanning cell.
	covered := make([][]bool, rows)
	for i := range covered {
		covered[i] = make([]bool, cols)
	}

	table := &model.Table{Rows: make([][]model.Cell, 0, rows)}
	for i := 0; i < rows; i++ {
		var row []model.Cell
		for j := 0; j < cols; j++ {
			if covered[i][j] {
				continue
			}
			slot := grid[i][j]
			if slot == nil {
				row = append(row, model.Cell{RowSpan: 1, ColSpan: 1})
				continue
			}
			// A spanning claim only stands when the covered slots are empty;
			// content in a covered slot means the boxes merely overhang.
			rs, cs := r.trimSpans(grid, i, j, slot.rowSpan, slot.colSpan)
			for dr := 0; dr < rs; dr++ {
				for dc := 0; dc < cs; dc++ {
					if dr != 0 || dc != 0 {
						covered[i+dr][j+dc] = true
					}
				}
			}
			row = append(row, model.Cell{
				Text:        mergeCellText(slot.spans),
				BBox:        cellBBox(slot.spans),
				RowSpan:     rs,
				ColSpan:     cs,
				SpanIndices: sortedIndices(slot),
			})
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) > 0 {
		b := table.Rows[0][0].BBox
		for _, row := range table.Rows {
			for _, cell := range row {
				if cell.BBox.IsValid() {
					b = b.Union(cell.BBox)
				}
			}
		}
		table.BBox = b
	}
	return table
}

// trimSpans shrinks a spanning claim to the rectangle of empty covered slots.
func (r *Recoverer) trimSpans(grid [][]*cellSlot, row, col, rowSpan, colSpan int) (int, int) {
	if row+rowSpan > len(grid) {
		rowSpan = len(grid) - row
	}
	if col+colSpan > len(grid[0]) {
		colSpan = len(grid[0]) - col
	}
	for dr := 0; dr < rowSpan; dr++ {
		for dc := 0; dc < colSpan; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if grid[row+dr][col+dc] != nil {
				if dc > 0 {
					colSpan = dc
				} else {
					rowSpan = dr
				}
			}
		}
	}
	if rowSpan < 1 {
		rowSpan = 1
	}
	if colSpan < 1 {
		colSpan = 1
	}
	return rowSpan, colSpan
}

// mergeCellText joins a cell's spans in reading order.
func mergeCellText(spans []model.Span) string {
	sorted := make([]model.Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y0 != sorted[j].BBox.Y0 {
			return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
		}
		if sorted[i].BBox.X0 != sorted[j].BBox.X0 {
			return sorted[i].BBox.X0 < sorted[j].BBox.X0
		}
		return sorted[i].Index < sorted[j].Index
	})
	text := ""
	for i, s := range sorted {
		if i > 0 {
			text += " "
		}
		text += s.Text
	}
	return text
}

// cellBBox returns the union box of a cell's spans.
func cellBBox(spans []model.Span) model.BBox {
	if len(spans) == 0 {
		return model.BBox{}
	}
	b := spans[0].BBox
	for _, s := range spans[1:] {
		b = b.Union(s.BBox)
	}
	return b
}

// sortedIndices returns the slot's span indices ascending.
func sortedIndices(slot *cellSlot) []int {
	out := make([]int, len(slot.spanIndices))
	copy(out, slot.spanIndices)
	sort.Ints(out)
	return out
}

// collapseRepeatedRows merges byte-identical, vertically contiguous cells in
// the same column into a single row-spanning cell. This recovers header
// values that the extractor duplicated across the physical lines of a
// multi-line merged cell.
func (r *Recoverer) collapseRepeatedRows(table *model.Table) {
	if len(table.Rows) < 2 {
		return
	}
	cols := table.ColCount()

	// Work on the flattened occupancy to find column positions, then rebuild.
	type pos struct{ row, cell int }
	occupant := make([][]*pos, len(table.Rows))
	for i := range occupant {
		occupant[i] = make([]*pos, cols)
	}
	for i, row := range table.Rows {
		col := 0
		for j := range row {
			for col < cols && occupant[i][col] != nil {
				col++
			}
			cell := &table.Rows[i][j]
			for dr := 0; dr < cell.RowSpan && i+dr < len(table.Rows); dr++ {
				for dc := 0; dc < cell.ColSpan && col+dc < cols; dc++ {
					occupant[i+dr][col+dc] = &pos{row: i, cell: j}
				}
			}
			col += cell.ColSpan
		}
	}

	remove := make(map[[2]int]bool)
	for c := 0; c < cols; c++ {
		for i := 0; i < len(table.Rows); i++ {
			top := occupant[i][c]
			if top == nil || top.row != i || remove[[2]int{top.row, top.cell}] {
				continue
			}
			topCell := &table.Rows[top.row][top.cell]
			if topCell.Text == "" || topCell.ColSpan != 1 {
				continue
			}
			// Absorb the run of byte-identical cells directly below.
			for top.row+topCell.RowSpan < len(table.Rows) {
				next := occupant[top.row+topCell.RowSpan][c]
				if next == nil || next.row != top.row+topCell.RowSpan {
					break
				}
				nextCell := &table.Rows[next.row][next.cell]
				if nextCell.ColSpan != 1 || nextCell.Text != topCell.Text {
					break
				}
				topCell.RowSpan += nextCell.RowSpan
				topCell.BBox = topCell.BBox.Union(nextCell.BBox)
				remove[[2]int{next.row, next.cell}] = true
			}
		}
	}
	if len(remove) == 0 {
		return
	}
	for i := range table.Rows {
		var kept []model.Cell
		for j := range table.Rows[i] {
			if !remove[[2]int{i, j}] {
				kept = append(kept, table.Rows[i][j])
			}
		}
		table.Rows[i] = kept
	}
}

// detectHeader marks the leading stylistically distinct rows as headers:
// rows whose every non-empty cell is bold. When styling gives no signal, the
// first row is the header.
func (r *Recoverer) detectHeader(table *model.Table, grid [][]*cellSlot) {
	boldRows := 0
	for _, row := range table.Rows {
		allBold := false
		for _, cell := range row {
			if cell.Text == "" {
				continue
			}
			allBold = true
			for _, idx := range cell.SpanIndices {
				if !spanBold(grid, idx) {
					allBold = false
					break
				}
			}
			if !allBold {
				break
			}
		}
		if !allBold {
			break
		}
		boldRows++
	}
	if boldRows == 0 || boldRows == len(table.Rows) {
		boldRows = 1
	}
	table.HeaderRows = boldRows
	for i := 0; i < boldRows && i < len(table.Rows); i++ {
		for j := range table.Rows[i] {
			table.Rows[i][j].Header = true
		}
	}
}

// spanBold looks up the bold flag of a span by its batch index.
func spanBold(grid [][]*cellSlot, index int) bool {
	for _, gRow := range grid {
		for _, slot := range gRow {
			if slot == nil {
				continue
			}
			for k, si := range slot.spanIndices {
				if si == index {
					return slot.spans[k].Bold
				}
			}
		}
	}
	return false
}

// checkNoEmptyRows rejects grids containing a row with no span content.
func checkNoEmptyRows(table *model.Table) error {
	for i, row := range table.Rows {
		empty := true
		for _, cell := range row {
			if cell.Text != "" {
				empty = false
				break
			}
		}
		if empty {
			return fmt.Errorf("row %d has no content", i)
		}
	}
	return nil
}
