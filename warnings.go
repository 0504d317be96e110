package pagemd

import (
	"fmt"
	"strings"
)

// WarningCode identifies a class of non-fatal conversion issue. Codes are
// stable strings so fixture tests can assert on them.
type WarningCode string

const (
	// WarnMalformedSpan reports a primitive that violated the input contract
	// (degenerate bounding box) and was skipped.
	WarnMalformedSpan WarningCode = "malformed-span"

	// WarnMalformedRegion reports a skipped degenerate region.
	WarnMalformedRegion WarningCode = "malformed-region"

	// WarnTableRejected reports a table candidate whose recovered grid failed
	// structural validation and was degraded to paragraphs.
	WarnTableRejected WarningCode = "table-rejected"
)

// Warning describes a non-fatal issue encountered while converting one
// document. Warnings accumulate per document and are returned beside the
// markdown output, never thrown away.
type Warning struct {
	// Code is the stable warning class.
	Code WarningCode

	// Page is the 0-based page index the issue occurred on.
	Page int

	// Message is a human-readable description.
	Message string
}

// FormatWarnings formats a list of warnings as a single string, one warning
// per line, for logging purposes.
//
// Example:
//
//	docs, _ := pagemd.New().Convert(ctx, batches)
//	if len(docs[0].Warnings) > 0 {
//	    log.Println("Warnings:\n" + pagemd.FormatWarnings(docs[0].Warnings))
//	}
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = fmt.Sprintf("[%s] page %d: %s", w.Code, w.Page, w.Message)
	}
	return strings.Join(lines, "\n")
}
