// Package tables detects table candidates and recovers grid structure.
//
// Detection runs before block classification. The [Detector] finds span
// clusters with tabular evidence, strongest first: extractor grid hints,
// closed ruling-line grids, and runs of column-aligned multi-span rows.
// Claimed span indices feed classification through [TabularIndex] so the
// spans group into table blocks instead of prose.
//
// The [Recoverer] then turns each candidate into a model.Table: row and
// column boundaries cluster within a tolerance band, every span lands in the
// cell containing its center, boxes crossing boundaries over empty slots
// become col/row spans, and byte-identical contiguous cells in a column
// collapse into one row-spanning cell. Leading bold rows mark the header.
//
// Recovery is strict. A grid that fails structural validation is reported as
// an error and the caller degrades the spans back to paragraphs; partial or
// guessed repairs never reach the output.
package tables
