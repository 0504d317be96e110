package layout

import (
	"sort"

	"github.com/pagemd/pagemd/model"
)

// Gap is a vertical whitespace gap between column content.
type Gap struct {
	Left  float64
	Right float64
}

// Width returns the width of the gap.
func (g Gap) Width() float64 {
	return g.Right - g.Left
}

// Center returns the X center of the gap.
func (g Gap) Center() float64 {
	return (g.Left + g.Right) / 2
}

// slab is a horizontal range covered by content, used for gap detection.
type slab struct {
	left, right float64
}

// findColumnGaps finds vertical whitespace gaps wide enough to separate
// columns. The width threshold is the larger of a page-width fraction and a
// fraction of the median item width, so dense pages with narrow spans do not
// split on ordinary word spacing.
func (r *Resolver) findColumnGaps(items []item, pageWidth float64) []Gap {
	if len(items) < 2 {
		return nil
	}

	minGap := r.config.MinGapWidthRatio * pageWidth
	if m := r.config.MedianWidthFactor * medianWidth(items); m > minGap {
		minGap = m
	}

	slabs := make([]slab, 0, len(items))
	for _, it := range items {
		slabs = append(slabs, slab{left: it.bbox.X0, right: it.bbox.X1})
	}
	sort.Slice(slabs, func(i, j int) bool {
		return slabs[i].left < slabs[j].left
	})
	merged := mergeSlabs(slabs, minGap*0.25)

	region := itemsBBox(items)
	var gaps []Gap
	for i := 0; i < len(merged)-1; i++ {
		g := Gap{Left: merged[i].right, Right: merged[i+1].left}
		if g.Width() < minGap {
			continue
		}
		if r.gapVerticalExtent(items, g, region) < r.config.MinGapHeightRatio {
			continue
		}
		gaps = append(gaps, g)
	}

	if r.config.MaxColumns > 0 && len(gaps) >= r.config.MaxColumns {
		gaps = gaps[:r.config.MaxColumns-1]
	}
	return gaps
}

// mergeSlabs merges overlapping or near-adjacent horizontal slabs.
func mergeSlabs(slabs []slab, tolerance float64) []slab {
	if len(slabs) == 0 {
		return nil
	}
	merged := []slab{slabs[0]}
	for _, cur := range slabs[1:] {
		last := &merged[len(merged)-1]
		if cur.left <= last.right+tolerance {
			if cur.right > last.right {
				last.right = cur.right
			}
		} else {
			merged = append(merged, cur)
		}
	}
	return merged
}

// gapVerticalExtent measures the fraction of the region height over which the
// gap is free of crossing content.
func (r *Resolver) gapVerticalExtent(items []item, g Gap, region model.BBox) float64 {
	height := region.Height()
	if height <= 0 {
		return 0
	}

	type yRange struct{ top, bottom float64 }
	var crossing []yRange
	for _, it := range items {
		if it.bbox.X1 > g.Left && it.bbox.X0 < g.Right {
			crossing = append(crossing, yRange{top: it.bbox.Y0, bottom: it.bbox.Y1})
		}
	}
	if len(crossing) == 0 {
		return 1.0
	}

	sort.Slice(crossing, func(i, j int) bool {
		return crossing[i].top < crossing[j].top
	})
	mergedRanges := []yRange{crossing[0]}
	for _, cur := range crossing[1:] {
		last := &mergedRanges[len(mergedRanges)-1]
		if cur.top <= last.bottom {
			if cur.bottom > last.bottom {
				last.bottom = cur.bottom
			}
		} else {
			mergedRanges = append(mergedRanges, cur)
		}
	}

	blocked := 0.0
	for _, yr := range mergedRanges {
		blocked += yr.bottom - yr.top
	}
	free := height - blocked
	if free < 0 {
		free = 0
	}
	return free / height
}

// splitByGaps partitions items into columns at gap centers, left to right.
// Each item lands in the column containing its horizontal center.
func splitByGaps(items []item, gaps []Gap) [][]item {
	sort.Slice(gaps, func(i, j int) bool {
		return gaps[i].Left < gaps[j].Left
	})

	columns := make([][]item, len(gaps)+1)
	for _, it := range items {
		cx := it.bbox.Center().X
		col := len(gaps)
		for i, g := range gaps {
			if cx < g.Center() {
				col = i
				break
			}
		}
		columns[col] = append(columns[col], it)
	}

	// Drop empty columns.
	out := columns[:0]
	for _, c := range columns {
		if len(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// medianWidth returns the median bounding-box width of the items.
func medianWidth(items []item) float64 {
	if len(items) == 0 {
		return 0
	}
	widths := make([]float64, len(items))
	for i, it := range items {
		widths[i] = it.bbox.Width()
	}
	sort.Float64s(widths)
	return widths[len(widths)/2]
}

// itemsBBox returns the union bounding box of the items.
func itemsBBox(items []item) model.BBox {
	if len(items) == 0 {
		return model.BBox{}
	}
	b := items[0].bbox
	for _, it := range items[1:] {
		b = b.Union(it.bbox)
	}
	return b
}
