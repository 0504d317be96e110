// Package pagemd reconstructs document structure from positioned page
// primitives and serializes it to markdown.
//
// The input is the output of an external extraction collaborator: per-page
// batches of text spans, image/line/formula regions, and optional table grid
// hints. The pipeline resolves reading order, classifies blocks, recovers
// table structure, builds a section tree, and renders deterministic markdown.
//
// Basic usage:
//
//	docs, err := pagemd.New().Convert(ctx, batches)
//	if err != nil {
//	    // handle error
//	}
//	for _, doc := range docs {
//	    if len(doc.Warnings) > 0 {
//	        log.Println("Warnings:\n" + pagemd.FormatWarnings(doc.Warnings))
//	    }
//	}
//	output := pagemd.Join(docs)
//
// With options:
//
//	cfg := pagemd.DefaultConfig()
//	cfg.Tables.MinAlignedRows = 4
//	docs, err := pagemd.New().WithConfig(cfg).WithWorkers(8).Convert(ctx, batches)
//
// For advanced use cases, the lower-level layout, classify, tables, doctree,
// and markdown packages are also available.
package pagemd

import (
	"strings"

	"github.com/pagemd/pagemd/classify"
	"github.com/pagemd/pagemd/doctree"
	"github.com/pagemd/pagemd/layout"
	"github.com/pagemd/pagemd/markdown"
	"github.com/pagemd/pagemd/tables"
)

// ErrInvariant marks an engine-defect failure: a tree-construction invariant
// was violated. The affected document yields no markdown; other documents in
// the batch are unaffected.
var ErrInvariant = doctree.ErrInvariant

// Config aggregates the tunable thresholds of every pipeline stage.
type Config struct {
	Layout   layout.Config
	Classify classify.Config
	Tables   tables.Config
	Markdown markdown.Config
}

// DefaultConfig returns the default thresholds for all stages.
func DefaultConfig() Config {
	return Config{
		Layout:   layout.DefaultConfig(),
		Classify: classify.DefaultConfig(),
		Tables:   tables.DefaultConfig(),
		Markdown: markdown.DefaultConfig(),
	}
}

// New creates a Converter with default configuration.
//
// Example:
//
//	docs, err := pagemd.New().Convert(ctx, batches)
func New() *Converter {
	return &Converter{
		config:  DefaultConfig(),
		workers: defaultWorkers,
	}
}

// Join concatenates the markdown of successful documents with the document
// separator line, surrounded by blank lines. Documents that failed produce
// no output and are skipped.
func Join(docs []DocumentResult) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Err != nil || doc.Markdown == "" {
			continue
		}
		parts = append(parts, doc.Markdown)
	}
	return strings.Join(parts, "\n"+markdown.DocumentSeparator+"\n\n")
}

// Must is a helper that wraps a call to a function returning (T, error) and
// panics if the error is non-nil. It is intended for use in scripts or tests
// where error handling would be cumbersome.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
