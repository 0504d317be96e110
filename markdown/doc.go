// Package markdown renders document trees to markdown text.
//
// Serialization is deterministic: the output is a pure function of the tree,
// so identical trees always produce byte-identical markdown. Headings emit in
// ATX style, tables as pipe grids with a separator row after the headers,
// images and formulas as fixed placeholder tokens, and captions directly
// under the figure or table they describe. Spanning table cells flatten by
// repeating their text into every covered slot, since pipe tables have no
// native span syntax.
//
// [ParseTable] inverts table serialization for span-free grids, which is what
// fixture round-trip comparisons are built on.
package markdown
