package classify

import (
	"math"
	"sort"

	"github.com/pagemd/pagemd/model"
)

// Histogram counts text runes per quantized font size. Phase 1 of
// classification builds one histogram per page in parallel and merges them at
// the document barrier; the merged histogram is then frozen into a
// [FontStats] snapshot before any page enters phase 2.
type Histogram map[float64]int

// quantizeSize rounds a font size to half-point buckets so near-identical
// sizes from different extraction runs land in the same bucket.
func quantizeSize(size float64) float64 {
	return math.Round(size*2) / 2
}

// PageHistogram builds the font-size histogram for one page, weighting each
// size by the number of runes set in it.
func PageHistogram(batch *model.PageBatch) Histogram {
	h := make(Histogram)
	for _, s := range batch.Spans {
		if s.FontSize <= 0 {
			continue
		}
		h[quantizeSize(s.FontSize)] += len([]rune(s.Text))
	}
	return h
}

// Merge adds the counts of another histogram into this one.
func (h Histogram) Merge(other Histogram) {
	for size, count := range other {
		h[size] += count
	}
}

// FontStats is the immutable document-wide font statistics snapshot used for
// heading-level ranking. It is built once per document, after which it is
// read-only; classification passes it around explicitly rather than keeping
// ambient mutable state.
type FontStats struct {
	body   float64
	levels []float64 // distinct sizes above body, descending; index+1 = level
}

// NewFontStats freezes a histogram into a snapshot. The body size is the
// rune-weighted mode; distinct sizes above it rank into heading levels,
// largest first, capped at maxLevels.
func NewFontStats(h Histogram, maxLevels int) *FontStats {
	if maxLevels <= 0 {
		maxLevels = 6
	}
	stats := &FontStats{}
	if len(h) == 0 {
		return stats
	}

	sizes := make([]float64, 0, len(h))
	for size := range h {
		sizes = append(sizes, size)
	}
	sort.Float64s(sizes)

	// Rune-weighted mode; ties resolve to the smaller size so sparse large
	// titles never masquerade as body text.
	best := sizes[0]
	for _, size := range sizes[1:] {
		if h[size] > h[best] {
			best = size
		}
	}
	stats.body = best

	for i := len(sizes) - 1; i >= 0; i-- {
		if sizes[i] <= stats.body {
			break
		}
		if len(stats.levels) < maxLevels {
			stats.levels = append(stats.levels, sizes[i])
		}
	}
	return stats
}

// BodySize returns the dominant body-text font size, or 0 for an empty
// document.
func (s *FontStats) BodySize() float64 {
	return s.body
}

// HeadingLevel returns the heading level (1-based) for a font size, or 0 when
// the size does not rank above body text.
func (s *FontStats) HeadingLevel(size float64) int {
	q := quantizeSize(size)
	for i, level := range s.levels {
		if q >= level {
			return i + 1
		}
	}
	return 0
}

// LevelCount returns the number of distinct heading sizes in the document.
func (s *FontStats) LevelCount() int {
	return len(s.levels)
}
