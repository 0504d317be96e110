package tables

import (
	"sort"

	"github.com/pagemd/pagemd/model"
)

// Candidate is a span cluster suspected to be a table, found either from an
// extractor grid hint, from ruling-line grids, or from column-aligned span
// rows. SpanIndices are positions in the page batch's span slice.
type Candidate struct {
	BBox        model.BBox
	SpanIndices []int
	Hint        *model.GridHint
}

// Detector finds table candidates on a page.
type Detector struct {
	config Config
}

// NewDetector creates a detector with default configuration.
func NewDetector() *Detector {
	return &Detector{config: DefaultConfig()}
}

// NewDetectorWithConfig creates a detector with custom configuration.
func NewDetectorWithConfig(config Config) *Detector {
	return &Detector{config: config}
}

// FindCandidates returns the table candidates of a page, strongest evidence
// first: extractor grid hints, then ruling-line grids, then column-aligned
// span clusters. A span claimed by one candidate never joins a later one.
func (d *Detector) FindCandidates(batch *model.PageBatch) []Candidate {
	var cands []Candidate
	claimed := make(map[int]bool)

	for i := range batch.GridHints {
		hint := &batch.GridHints[i]
		if c, ok := d.hintCandidate(batch, hint, claimed); ok {
			cands = append(cands, c)
		}
	}

	for _, box := range d.rulingGrids(batch) {
		if c, ok := d.areaCandidate(batch, box, claimed); ok {
			cands = append(cands, c)
		}
	}

	for _, c := range d.alignedClusters(batch, claimed) {
		cands = append(cands, c)
	}

	return cands
}

// TabularIndex maps each claimed span index to its candidate's position, the
// shape classification consumes to group tabular spans into table blocks.
func TabularIndex(cands []Candidate) map[int]int {
	idx := make(map[int]int)
	for ci, c := range cands {
		for _, si := range c.SpanIndices {
			idx[si] = ci
		}
	}
	return idx
}

// hintCandidate collects the unclaimed spans inside a grid hint's area.
func (d *Detector) hintCandidate(batch *model.PageBatch, hint *model.GridHint, claimed map[int]bool) (Candidate, bool) {
	c := Candidate{BBox: hint.BBox, Hint: hint}
	for i, s := range batch.Spans {
		if claimed[i] {
			continue
		}
		if hint.BBox.Contains(s.BBox.Center()) {
			c.SpanIndices = append(c.SpanIndices, i)
			claimed[i] = true
		}
	}
	if len(c.SpanIndices) == 0 {
		return Candidate{}, false
	}
	return c, true
}

// areaCandidate collects the unclaimed spans inside a detected grid area.
func (d *Detector) areaCandidate(batch *model.PageBatch, box model.BBox, claimed map[int]bool) (Candidate, bool) {
	c := Candidate{BBox: box}
	for i, s := range batch.Spans {
		if claimed[i] {
			continue
		}
		if box.Contains(s.BBox.Center()) {
			c.SpanIndices = append(c.SpanIndices, i)
			claimed[i] = true
		}
	}
	if len(c.SpanIndices) == 0 {
		return Candidate{}, false
	}
	return c, true
}

// rulingGrids finds areas enclosed by crossing ruling lines. A grid needs at
// least two horizontal and two vertical lines whose extents intersect.
func (d *Detector) rulingGrids(batch *model.PageBatch) []model.BBox {
	var horizontal, vertical []model.BBox
	for _, line := range batch.RulingLines() {
		b := line.BBox
		w, h := b.Width(), b.Height()
		switch {
		case h <= 0 || w/maxFloat(h, 0.1) >= d.config.LineAspect:
			horizontal = append(horizontal, b)
		case w <= 0 || h/maxFloat(w, 0.1) >= d.config.LineAspect:
			vertical = append(vertical, b)
		}
	}
	if len(horizontal) < 2 || len(vertical) < 2 {
		return nil
	}

	// Group lines into connected components by intersection.
	lines := append(append([]model.BBox{}, horizontal...), vertical...)
	parent := make([]int, len(lines))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	grown := make([]model.BBox, len(lines))
	for i, b := range lines {
		grown[i] = model.NewBBox(b.X0-d.config.BoundaryTolerance, b.Y0-d.config.BoundaryTolerance,
			b.X1+d.config.BoundaryTolerance, b.Y1+d.config.BoundaryTolerance)
	}
	for i := range lines {
		for j := i + 1; j < len(lines); j++ {
			if grown[i].Intersects(grown[j]) {
				parent[find(i)] = find(j)
			}
		}
	}

	type component struct {
		box  model.BBox
		h, v int
	}
	comps := make(map[int]*component)
	for i, b := range lines {
		root := find(i)
		comp, ok := comps[root]
		if !ok {
			comp = &component{box: b}
			comps[root] = comp
		} else {
			comp.box = comp.box.Union(b)
		}
		if i < len(horizontal) {
			comp.h++
		} else {
			comp.v++
		}
	}

	roots := make([]int, 0, len(comps))
	for root := range comps {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	var grids []model.BBox
	for _, root := range roots {
		comp := comps[root]
		if comp.h >= 2 && comp.v >= 2 {
			grids = append(grids, comp.box)
		}
	}
	return grids
}

// alignedClusters finds runs of consecutive multi-span rows whose column
// starts align, the unruled-table signal. At least MinAlignedRows such rows
// must stack for the run to count.
func (d *Detector) alignedClusters(batch *model.PageBatch, claimed map[int]bool) []Candidate {
	rows := d.spanRows(batch, claimed)
	if len(rows) < d.config.MinAlignedRows {
		return nil
	}

	var cands []Candidate
	runStart := 0
	for i := 1; i <= len(rows); i++ {
		if i < len(rows) && d.rowsAlign(batch, rows[runStart:i+1]) {
			continue
		}
		if i-runStart >= d.config.MinAlignedRows {
			cands = append(cands, d.runCandidate(batch, rows[runStart:i], claimed))
		}
		runStart = i
	}
	return cands
}

// spanRows groups unclaimed multi-span lines top to bottom. Single-span lines
// are prose, never table rows on their own.
func (d *Detector) spanRows(batch *model.PageBatch, claimed map[int]bool) [][]int {
	indices := make([]int, 0, len(batch.Spans))
	for i := range batch.Spans {
		if !claimed[i] {
			indices = append(indices, i)
		}
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return batch.Spans[indices[a]].BBox.Y0 < batch.Spans[indices[b]].BBox.Y0
	})

	var rows [][]int
	for _, i := range indices {
		s := batch.Spans[i]
		placed := false
		if len(rows) > 0 {
			last := rows[len(rows)-1]
			ref := batch.Spans[last[0]]
			if s.BBox.VerticalOverlap(ref.BBox) > 0 ||
				s.BBox.Y0-ref.BBox.Y0 <= d.config.BoundaryTolerance {
				rows[len(rows)-1] = append(last, i)
				placed = true
			}
		}
		if !placed {
			rows = append(rows, []int{i})
		}
	}

	var multi [][]int
	for _, row := range rows {
		if len(row) >= 2 {
			sort.SliceStable(row, func(a, b int) bool {
				return batch.Spans[row[a]].BBox.X0 < batch.Spans[row[b]].BBox.X0
			})
			multi = append(multi, row)
		} else {
			multi = append(multi, nil) // breaks run continuity
		}
	}
	return multi
}

// rowsAlign reports whether every row in the window is a multi-span row
// sharing the same clustered column starts.
func (d *Detector) rowsAlign(batch *model.PageBatch, rows [][]int) bool {
	if len(rows) == 0 {
		return false
	}
	var ref []float64
	for _, row := range rows {
		if row == nil {
			return false
		}
		starts := make([]float64, len(row))
		for k, i := range row {
			starts[k] = batch.Spans[i].BBox.X0
		}
		if ref == nil {
			ref = starts
			continue
		}
		if !startsMatch(ref, starts, d.config.BoundaryTolerance) {
			return false
		}
	}
	return true
}

// startsMatch reports whether every start in b lands within tolerance of
// some start in a.
func startsMatch(a, b []float64, tolerance float64) bool {
	for _, x := range b {
		ok := false
		for _, y := range a {
			if x >= y-tolerance && x <= y+tolerance {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// runCandidate builds the candidate for an aligned row run and claims its
// spans.
func (d *Detector) runCandidate(batch *model.PageBatch, rows [][]int, claimed map[int]bool) Candidate {
	var c Candidate
	first := true
	for _, row := range rows {
		for _, i := range row {
			claimed[i] = true
			c.SpanIndices = append(c.SpanIndices, i)
			if first {
				c.BBox = batch.Spans[i].BBox
				first = false
			} else {
				c.BBox = c.BBox.Union(batch.Spans[i].BBox)
			}
		}
	}
	sort.Ints(c.SpanIndices)
	return c
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
