// Package doctree assembles classified blocks into the hierarchical document
// tree. Heading levels drive section nesting, level jumps bridge through
// implicit sections, and every non-heading block lands in the flat leaf
// array that caption back-references index into. Construction is bottom-up
// with exclusive child ownership, so the tree is acyclic by construction;
// blocks that violate the ownership invariants surface as [ErrInvariant],
// fatal for the affected document only.
package doctree
