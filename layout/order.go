package layout

import (
	"sort"

	"github.com/pagemd/pagemd/model"
)

// Ref identifies one primitive of a page batch in reading order: either a
// span or a region, by extraction index.
type Ref struct {
	Region bool
	Index  int
}

// Config holds the tunable thresholds of reading-order resolution. The exact
// values are heuristic and validated against the fixture corpus; they are
// configuration, not constants.
type Config struct {
	// MinGapWidthRatio is the minimum column-gap width as a fraction of page
	// width. Default: 0.035.
	MinGapWidthRatio float64

	// MedianWidthFactor scales the median item width into an alternative
	// minimum gap width; the larger of the two thresholds wins.
	// Default: 0.5.
	MedianWidthFactor float64

	// MinGapHeightRatio is the fraction of the region height a gap must be
	// free of crossing content to count as a column separator. Default: 0.5.
	MinGapHeightRatio float64

	// FullWidthRatio is the minimum width fraction (of the content region)
	// for an element to interrupt column flow. Default: 0.7.
	FullWidthRatio float64

	// MaxColumns caps the number of detected columns. Default: 6.
	MaxColumns int

	// SparseSpanLimit is the span count at or below which a region-dominated
	// page falls back to a global top-to-bottom sort. Default: 3.
	SparseSpanLimit int

	// YTolerance is the vertical distance within which two items count as
	// being on the same line. Default: 3.0 page units.
	YTolerance float64

	// CaptionMaxGap is the maximum vertical distance between a figure and a
	// caption-like span for the two to bind adjacently. Default: 24 page
	// units.
	CaptionMaxGap float64
}

// DefaultConfig returns sensible defaults for reading-order resolution.
func DefaultConfig() Config {
	return Config{
		MinGapWidthRatio:  0.035,
		MedianWidthFactor: 0.5,
		MinGapHeightRatio: 0.5,
		FullWidthRatio:    0.7,
		MaxColumns:        6,
		SparseSpanLimit:   3,
		YTolerance:        3.0,
		CaptionMaxGap:     24.0,
	}
}

// Resolver orders a page's primitives into natural reading sequence.
type Resolver struct {
	config Config
}

// NewResolver creates a resolver with default configuration.
func NewResolver() *Resolver {
	return &Resolver{config: DefaultConfig()}
}

// NewResolverWithConfig creates a resolver with custom configuration.
func NewResolverWithConfig(config Config) *Resolver {
	return &Resolver{config: config}
}

// item pairs a primitive reference with its geometry for sorting.
type item struct {
	ref   Ref
	bbox  model.BBox
	order int // extraction index, the deterministic tie-breaker
}

// Resolve produces a total reading order over the batch's spans and regions.
// It never fails: a degenerate page yields an empty order, and ambiguous
// layouts resolve deterministically by extraction index.
func (r *Resolver) Resolve(batch *model.PageBatch) []Ref {
	items := collectItems(batch)
	if len(items) == 0 {
		return nil
	}

	// Sparse pages (mostly regions, few spans) skip column analysis: a
	// handful of primitives gives gap detection nothing to work with.
	var ordered []item
	if len(batch.Spans) <= r.config.SparseSpanLimit && len(batch.Regions) >= len(batch.Spans) {
		ordered = r.sortTopToBottom(items)
	} else {
		ordered = r.resolveRegion(items, batch.Width)
	}

	ordered = r.bindCaptions(ordered, batch)

	refs := make([]Ref, len(ordered))
	for i, it := range ordered {
		refs[i] = it.ref
	}
	return refs
}

// collectItems gathers spans and regions in extraction order.
func collectItems(batch *model.PageBatch) []item {
	items := make([]item, 0, len(batch.Spans)+len(batch.Regions))
	for i, s := range batch.Spans {
		items = append(items, item{ref: Ref{Index: i}, bbox: s.BBox, order: s.Index})
	}
	for i, reg := range batch.Regions {
		items = append(items, item{ref: Ref{Region: true, Index: i}, bbox: reg.BBox, order: reg.Index})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].order < items[j].order
	})
	return items
}

// resolveRegion recursively resolves reading order within a page sub-region.
// Full-width elements split the region into before / element / after, each
// resolved on its own; otherwise content splits into columns which are
// concatenated left to right.
//
// Full-width candidates are set aside before gap detection: a title spanning
// the whole page would otherwise bridge the column gap and hide it. A span
// that merely straddles a gap without being full-width joins the surrounding
// flow the same way, which also covers the straddler edge case (its slab
// merges the columns it touches).
func (r *Resolver) resolveRegion(items []item, pageWidth float64) []item {
	if len(items) <= 1 {
		return items
	}

	region := itemsBBox(items)
	minFullWidth := region.Width() * r.config.FullWidthRatio

	var narrow []item
	for _, it := range items {
		if it.bbox.Width() < minFullWidth {
			narrow = append(narrow, it)
		}
	}

	gaps := r.findColumnGaps(narrow, pageWidth)
	if len(gaps) == 0 {
		// Single column: full-width items are ordinary lines here.
		return r.sortTopToBottom(items)
	}

	if fw, ok := r.topmostFullWidth(items, minFullWidth); ok {
		return r.splitAround(items, fw, pageWidth)
	}

	var ordered []item
	for _, col := range splitByGaps(items, gaps) {
		ordered = append(ordered, r.resolveRegion(col, pageWidth)...)
	}
	return ordered
}

// topmostFullWidth finds the highest element wide enough to interrupt column
// flow.
func (r *Resolver) topmostFullWidth(items []item, minWidth float64) (item, bool) {
	var best item
	found := false
	for _, it := range items {
		if it.bbox.Width() < minWidth {
			continue
		}
		if !found || it.bbox.Y0 < best.bbox.Y0 ||
			(it.bbox.Y0 == best.bbox.Y0 && it.order < best.order) {
			best = it
			found = true
		}
	}
	return best, found
}

// splitAround emits everything above the full-width element, then the element
// itself, then the resolved remainder.
func (r *Resolver) splitAround(items []item, fw item, pageWidth float64) []item {
	var above, below []item
	for _, it := range items {
		if it.order == fw.order && it.ref == fw.ref {
			continue
		}
		if it.bbox.Center().Y < fw.bbox.Y0 {
			above = append(above, it)
		} else {
			below = append(below, it)
		}
	}

	ordered := r.resolveRegion(above, pageWidth)
	ordered = append(ordered, fw)
	ordered = append(ordered, r.resolveRegion(below, pageWidth)...)
	return ordered
}

// sortTopToBottom orders items top to bottom, ties within tolerance broken
// left to right, remaining ties by extraction index (via stable sort over the
// extraction-ordered input).
func (r *Resolver) sortTopToBottom(items []item) []item {
	sorted := make([]item, len(items))
	copy(sorted, items)
	tol := r.config.YTolerance
	sort.SliceStable(sorted, func(i, j int) bool {
		dy := sorted[i].bbox.Y0 - sorted[j].bbox.Y0
		if dy < -tol {
			return true
		}
		if dy > tol {
			return false
		}
		return sorted[i].bbox.X0 < sorted[j].bbox.X0
	})
	return sorted
}

// bindCaptions keeps figures adjacent to caption-like text beneath them. For
// each image or formula region, the nearest span directly below within the
// caption gap whose styling differs from body text (smaller font or italic)
// moves to immediately follow the region.
func (r *Resolver) bindCaptions(ordered []item, batch *model.PageBatch) []item {
	if len(batch.Regions) == 0 || len(batch.Spans) == 0 {
		return ordered
	}
	median := medianFontSize(batch.Spans)

	for pos := 0; pos < len(ordered); pos++ {
		it := ordered[pos]
		if !it.ref.Region {
			continue
		}
		reg := batch.Regions[it.ref.Index]
		if reg.Kind != model.RegionImage && reg.Kind != model.RegionFormula {
			continue
		}

		capPos := r.findCaptionSpan(ordered, reg.BBox, batch, median)
		if capPos < 0 || capPos == pos+1 {
			continue
		}
		caption := ordered[capPos]
		trimmed := append([]item{}, ordered[:capPos]...)
		trimmed = append(trimmed, ordered[capPos+1:]...)
		// Recompute the region's position after removal.
		insert := pos
		if capPos < pos {
			insert--
		}
		out := append([]item{}, trimmed[:insert+1]...)
		out = append(out, caption)
		out = append(out, trimmed[insert+1:]...)
		ordered = out
		pos = insert + 1
	}
	return ordered
}

// findCaptionSpan locates the caption candidate for a figure box: the closest
// span starting within CaptionMaxGap below the figure, horizontally
// overlapping it, and set smaller or italic relative to the body font.
func (r *Resolver) findCaptionSpan(ordered []item, figure model.BBox, batch *model.PageBatch, medianFont float64) int {
	best := -1
	bestGap := r.config.CaptionMaxGap + 1
	for i, it := range ordered {
		if it.ref.Region {
			continue
		}
		s := batch.Spans[it.ref.Index]
		gap := s.BBox.Y0 - figure.Y1
		if gap < 0 || gap > r.config.CaptionMaxGap {
			continue
		}
		if s.BBox.HorizontalOverlap(figure) <= 0 {
			continue
		}
		if !s.Italic && s.FontSize >= medianFont {
			continue
		}
		if gap < bestGap {
			best = i
			bestGap = gap
		}
	}
	return best
}

// medianFontSize returns the median font size of the spans.
func medianFontSize(spans []model.Span) float64 {
	if len(spans) == 0 {
		return 0
	}
	sizes := make([]float64, len(spans))
	for i, s := range spans {
		sizes[i] = s.FontSize
	}
	sort.Float64s(sizes)
	return sizes[len(sizes)/2]
}
