package model

// Span is a positioned run of text extracted from a page. Spans are immutable
// once received from the extraction collaborator; every derived structure
// refers to a span by its extraction index rather than by copy, keeping the
// extracted primitives the single source of truth.
type Span struct {
	Text     string
	BBox     BBox
	FontSize float64
	FontName string
	Bold     bool
	Italic   bool

	// Page is the 0-based page index the span was extracted from.
	Page int

	// Index is the extraction index within the page. It is the final
	// tie-breaker for reading-order sorts, guaranteeing reproducible output.
	Index int
}

// RegionKind identifies the kind of a non-text primitive.
type RegionKind int

const (
	RegionUnknown RegionKind = iota
	RegionImage
	RegionLine
	RegionFormula
)

func (k RegionKind) String() string {
	switch k {
	case RegionImage:
		return "image"
	case RegionLine:
		return "line"
	case RegionFormula:
		return "formula"
	default:
		return "unknown"
	}
}

// Region is a positioned non-text primitive: an embedded image, a ruling line
// (or filled rectangle) from vector graphics, or an untranscribed formula.
// Lifecycle and immutability match Span.
type Region struct {
	Kind RegionKind
	BBox BBox
	Page int

	// Index is the extraction index within the page, shared with spans in a
	// single sequence so ordering ties resolve deterministically.
	Index int
}

// GridHint is an optional pre-detected table grid supplied by the extraction
// collaborator. Row and column boundary coordinates seed table structure
// recovery for spans falling inside the hint area.
type GridHint struct {
	BBox BBox

	// RowBounds are Y coordinates of row boundaries, top to bottom.
	RowBounds []float64

	// ColBounds are X coordinates of column boundaries, left to right.
	ColBounds []float64
}

// PageBatch is one page's worth of extracted primitives, the unit of input to
// the conversion pipeline.
type PageBatch struct {
	// Page is the 0-based page index within the extraction run.
	Page int

	// Width and Height are the page dimensions in page units.
	Width  float64
	Height float64

	Spans   []Span
	Regions []Region

	// GridHints are optional pre-detected table grids.
	GridHints []GridHint

	// DocumentStart marks this batch as the first page of a new logical
	// document within a combined extraction run. The first batch of a run is
	// implicitly a document start whether or not the flag is set.
	DocumentStart bool
}

// SpanBBoxes returns the bounding boxes of all spans, indexed like Spans.
func (b *PageBatch) SpanBBoxes() []BBox {
	boxes := make([]BBox, len(b.Spans))
	for i, s := range b.Spans {
		boxes[i] = s.BBox
	}
	return boxes
}

// RulingLines returns the regions of kind RegionLine.
func (b *PageBatch) RulingLines() []Region {
	var lines []Region
	for _, r := range b.Regions {
		if r.Kind == RegionLine {
			lines = append(lines, r)
		}
	}
	return lines
}
