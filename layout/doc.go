// Package layout resolves reading order over a page's positioned primitives.
//
// Given an unordered multiset of spans and regions with bounding boxes, the
// [Resolver] produces a total order representing natural reading sequence.
// The page is partitioned into columns at vertical whitespace gaps wide
// enough relative to the page width and the median span width; full-width
// elements interrupt column flow and split the page into sub-regions that are
// resolved recursively. Figures keep caption-like text beneath them adjacent
// in the order.
//
// Resolution never fails. Empty pages yield an empty order; ambiguous
// layouts resolve deterministically by extraction index, which is a
// correctness requirement (byte-identical output for identical input), not an
// optimization.
package layout
