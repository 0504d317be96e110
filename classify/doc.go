// Package classify tags ordered spans and regions as semantic blocks.
//
// Classification is a two-pass process. Phase 1 collects a document-wide
// font-size [Histogram] (parallel per page, merged at a barrier) and freezes
// it into an immutable [FontStats] snapshot; heading levels are assigned by
// relative font-size rank within the whole document, so no page can classify
// before every page has been counted. Phase 2 applies the [Classifier] rules
// per page, in priority order:
//
//  1. image/formula regions become placeholder blocks
//  2. short bold/larger stand-alone spans with following content → heading
//  3. bullet glyphs and numbering patterns → list item, indent quantized
//  4. short smaller/italic spans after a figure or table → caption
//  5. everything else merges into paragraphs by font/style class
//
// Unclassifiable spans default to paragraphs; classification never fails.
// Spans flagged as tabular by table-candidate detection group into table
// blocks that carry their span indices to structure recovery.
package classify
