package pagemd

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/pagemd/pagemd/classify"
	"github.com/pagemd/pagemd/doctree"
	"github.com/pagemd/pagemd/layout"
	"github.com/pagemd/pagemd/markdown"
	"github.com/pagemd/pagemd/model"
	"github.com/pagemd/pagemd/tables"
)

var defaultWorkers = runtime.GOMAXPROCS(0)

// DocumentResult is the conversion outcome for one logical document.
type DocumentResult struct {
	// Markdown is the rendered output, empty when Err is set.
	Markdown string

	// Tree is the reconstructed document tree, nil when Err is set.
	Tree *model.Document

	// Warnings are the non-fatal issues accumulated while converting this
	// document.
	Warnings []Warning

	// Err is set when the document hit a fatal failure (an engine invariant
	// violation). Other documents in the batch are unaffected.
	Err error
}

// Converter runs the reconstruction pipeline over primitive batches. Each
// configuration method returns a new Converter instance, making it safe for
// concurrent use and allowing method chaining.
type Converter struct {
	config  Config
	workers int
}

// clone returns a copy so chain methods never mutate a shared instance.
func (c *Converter) clone() *Converter {
	return &Converter{
		config:  c.config,
		workers: c.workers,
	}
}

// WithConfig returns a Converter using the given stage thresholds.
func (c *Converter) WithConfig(config Config) *Converter {
	nc := c.clone()
	nc.config = config
	return nc
}

// WithWorkers returns a Converter that processes up to n documents and pages
// concurrently. Values below 1 fall back to the number of CPUs.
func (c *Converter) WithWorkers(n int) *Converter {
	nc := c.clone()
	if n < 1 {
		n = defaultWorkers
	}
	nc.workers = n
	return nc
}

// Convert runs the pipeline over an extraction run. Batches must be ordered
// by page; a batch with DocumentStart set opens a new logical document, and
// each document converts independently on the worker pool. A fatal failure
// is scoped to its document and reported in that document's result.
//
// Cancellation discards in-flight documents and returns the context error;
// partial documents are never emitted.
func (c *Converter) Convert(ctx context.Context, batches []model.PageBatch) ([]DocumentResult, error) {
	segments := splitDocuments(batches)
	results := make([]DocumentResult, len(segments))

	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup
	for i := range segments {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}
			results[i] = c.convertDocument(ctx, segments[i])
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// splitDocuments cuts the batch stream on the document-boundary sentinel.
func splitDocuments(batches []model.PageBatch) [][]model.PageBatch {
	var segments [][]model.PageBatch
	for i := range batches {
		if len(segments) == 0 || (batches[i].DocumentStart && i > 0) {
			segments = append(segments, nil)
		}
		segments[len(segments)-1] = append(segments[len(segments)-1], batches[i])
	}
	return segments
}

// pageResult is one page's phase-2 output, merged in page order afterwards.
type pageResult struct {
	blocks   []model.Block
	warnings []Warning
}

// convertDocument runs the two-phase pipeline for one logical document.
func (c *Converter) convertDocument(ctx context.Context, batches []model.PageBatch) DocumentResult {
	var result DocumentResult

	clean := make([]model.PageBatch, len(batches))
	for i := range batches {
		var warnings []Warning
		clean[i], warnings = sanitizeBatch(batches[i])
		result.Warnings = append(result.Warnings, warnings...)
	}

	// Phase 1: font statistics, parallel per page, merged at the barrier.
	// The merged snapshot is immutable before any page classifies.
	histograms := make([]classify.Histogram, len(clean))
	c.forEachPage(ctx, len(clean), func(i int) {
		histograms[i] = classify.PageHistogram(&clean[i])
	})
	if ctx.Err() != nil {
		return result
	}
	merged := make(classify.Histogram)
	for _, h := range histograms {
		merged.Merge(h)
	}
	stats := classify.NewFontStats(merged, c.config.Classify.MaxHeadingLevel)

	// Phase 2: per-page classification and table recovery, parallel, with an
	// ordered merge below.
	pageResults := make([]pageResult, len(clean))
	c.forEachPage(ctx, len(clean), func(i int) {
		pageResults[i] = c.convertPage(&clean[i], stats)
	})
	if ctx.Err() != nil {
		return result
	}

	var blocks []model.Block
	for _, pr := range pageResults {
		blocks = append(blocks, pr.blocks...)
		result.Warnings = append(result.Warnings, pr.warnings...)
	}

	tree, err := doctree.NewBuilder().Build(blocks)
	if err != nil {
		result.Err = fmt.Errorf("building document tree: %w", err)
		return result
	}
	result.Tree = tree
	result.Markdown = markdown.NewSerializerWithConfig(c.config.Markdown).Serialize(tree)
	return result
}

// convertPage runs the sequential per-page stages: reading order, table
// candidate detection, classification, and table structure recovery.
func (c *Converter) convertPage(batch *model.PageBatch, stats *classify.FontStats) pageResult {
	var pr pageResult

	order := layout.NewResolverWithConfig(c.config.Layout).Resolve(batch)

	cands := tables.NewDetectorWithConfig(c.config.Tables).FindCandidates(batch)
	tabular := tables.TabularIndex(cands)

	classifier := classify.NewClassifierWithConfig(stats, c.config.Classify)
	blocks := classifier.ClassifyPage(batch, order, tabular)

	recoverer := tables.NewRecovererWithConfig(c.config.Tables)
	for i := range blocks {
		if blocks[i].Kind != model.KindTable {
			continue
		}
		cid, ok := tabular[blocks[i].SpanIndices[0]]
		if !ok {
			continue
		}
		table, err := recoverer.Recover(batch, cands[cid])
		if err != nil {
			// Degrade to a paragraph carrying every owned span's text, so no
			// content is lost with the rejected structure.
			blocks[i] = degradeToParagraph(batch, blocks[i])
			pr.warnings = append(pr.warnings, Warning{
				Code:    WarnTableRejected,
				Page:    batch.Page,
				Message: err.Error(),
			})
			continue
		}
		blocks[i].Table = table
	}

	pr.blocks = blocks
	return pr
}

// degradeToParagraph re-interprets a rejected table block as a paragraph over
// the same spans in reading order. Degradation never changes the total
// non-whitespace character count.
func degradeToParagraph(batch *model.PageBatch, block model.Block) model.Block {
	texts := make([]string, 0, len(block.SpanIndices))
	for _, i := range block.SpanIndices {
		if t := strings.TrimSpace(batch.Spans[i].Text); t != "" {
			texts = append(texts, t)
		}
	}
	p := model.NewBlock(model.KindParagraph)
	p.Page = block.Page
	p.BBox = block.BBox
	p.Text = strings.Join(texts, " ")
	p.SpanIndices = block.SpanIndices
	return p
}

// sanitizeBatch drops primitives with degenerate bounding boxes, per the
// malformed-input policy: skip the offending primitive, warn, and continue.
// Indices into the returned batch are the canonical extraction indices for
// the rest of the pipeline.
func sanitizeBatch(batch model.PageBatch) (model.PageBatch, []Warning) {
	var warnings []Warning

	clean := batch
	clean.Spans = make([]model.Span, 0, len(batch.Spans))
	for _, s := range batch.Spans {
		if !s.BBox.IsValid() {
			warnings = append(warnings, Warning{
				Code:    WarnMalformedSpan,
				Page:    batch.Page,
				Message: fmt.Sprintf("span %q has a degenerate bounding box", s.Text),
			})
			continue
		}
		clean.Spans = append(clean.Spans, s)
	}

	clean.Regions = make([]model.Region, 0, len(batch.Regions))
	for _, r := range batch.Regions {
		// Ruling lines may legitimately have zero thickness.
		valid := r.BBox.IsValid() ||
			(r.Kind == model.RegionLine && (r.BBox.Width() > 0 || r.BBox.Height() > 0))
		if !valid {
			warnings = append(warnings, Warning{
				Code:    WarnMalformedRegion,
				Page:    batch.Page,
				Message: fmt.Sprintf("%s region has a degenerate bounding box", r.Kind),
			})
			continue
		}
		clean.Regions = append(clean.Regions, r)
	}

	return clean, warnings
}

// forEachPage runs fn for every page index on the worker pool and waits.
// Aborts scheduling further pages once the context is cancelled.
func (c *Converter) forEachPage(ctx context.Context, pages int, fn func(int)) {
	if pages == 0 {
		return
	}
	workers := c.workers
	if workers > pages {
		workers = pages
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := 0; i < pages; i++ {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}
			fn(i)
		}(i)
	}
	wg.Wait()
}
