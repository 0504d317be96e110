// Package model provides the intermediate representation for layout
// reconstruction.
//
// This package defines the data structures every pipeline stage consumes and
// produces: the positioned primitives received from the extraction
// collaborator, the classified blocks produced from them, recovered table
// structure, and the hierarchical document tree that the markdown serializer
// walks.
//
// # Primitives
//
// A [PageBatch] is one page's extracted content: [Span] values (positioned
// text runs with font metadata) and [Region] values (images, ruling lines,
// formula placeholders), plus optional [GridHint] table seeds. Primitives are
// immutable once extracted; derived structures reference them by extraction
// index, never by copy.
//
// # Blocks and tables
//
// [Block] is a closed tagged variant over the semantic block kinds
// (paragraph, heading, list item, caption, figure, table, formula). [Table]
// holds recovered grid structure with row/column spans and enforces the
// structural validity invariant via Validate.
//
// # Document tree
//
// [DocumentNode] forms the section/leaf hierarchy of one logical [Document].
// Children are owned by exactly one parent and built bottom-up, so the tree
// is acyclic by construction.
//
// # Geometry
//
// [BBox] uses page coordinates with the origin at the top-left corner and Y
// increasing downward, matching the convention of extraction output.
package model
