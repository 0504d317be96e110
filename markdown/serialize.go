package markdown

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"

	"github.com/pagemd/pagemd/model"
)

// Fixed output tokens. These are part of the output contract and never vary
// with configuration, so fixture comparison stays byte-exact.
const (
	ImagePlaceholder   = "![](image)"
	FormulaPlaceholder = "$formula$"
	DocumentSeparator  = "---"
)

// Config holds serializer options.
type Config struct {
	// AlignColumns pads table cells to a common display width per column,
	// using east-asian-aware rune widths. Off by default: aligned padding is
	// a readability nicety that changes the byte output.
	AlignColumns bool
}

// DefaultConfig returns the serializer defaults.
func DefaultConfig() Config {
	return Config{}
}

// Serializer renders a document tree to markdown. Serialization is a pure
// function of the tree: identical trees produce byte-identical output.
type Serializer struct {
	config Config
}

// NewSerializer creates a serializer with default configuration.
func NewSerializer() *Serializer {
	return &Serializer{config: DefaultConfig()}
}

// NewSerializerWithConfig creates a serializer with custom configuration.
func NewSerializerWithConfig(config Config) *Serializer {
	return &Serializer{config: config}
}

// Serialize renders the document depth-first. Output text is NFC-normalized
// and ends with a single trailing newline; an empty document yields "".
func (s *Serializer) Serialize(doc *model.Document) string {
	var chunks []string
	attach := make(map[int]bool) // chunk index -> glue to previous with one newline

	var emit func(n *model.DocumentNode)
	var listRun []*model.Block

	flushList := func() {
		if len(listRun) == 0 {
			return
		}
		chunks = append(chunks, s.renderList(listRun))
		listRun = nil
	}

	emit = func(n *model.DocumentNode) {
		if n.Heading != nil {
			flushList()
			chunks = append(chunks, s.renderHeading(n.Heading))
		}
		if n.Block != nil {
			if n.Block.Kind == model.KindListItem {
				listRun = append(listRun, n.Block)
			} else {
				flushList()
				chunk, glue := s.renderBlock(n.Block)
				if chunk != "" {
					if glue {
						attach[len(chunks)] = true
					}
					chunks = append(chunks, chunk)
				}
			}
		}
		for _, child := range n.Children {
			emit(child)
		}
	}
	emit(doc.Root)
	flushList()

	if len(chunks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			if attach[i] {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(chunk)
	}
	b.WriteString("\n")
	return b.String()
}

// renderHeading emits an ATX heading, level capped at 6.
func (s *Serializer) renderHeading(block *model.Block) string {
	level := block.Level
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " " + normText(block.Text)
}

// renderBlock emits a non-heading, non-list block. The second result reports
// whether the chunk glues to the previous one without a blank line, which is
// how captions sit directly under their figure or table.
func (s *Serializer) renderBlock(block *model.Block) (string, bool) {
	switch block.Kind {
	case model.KindParagraph:
		return normText(block.Text), false
	case model.KindCaption:
		return normText(block.Text), block.Target >= 0
	case model.KindFigure:
		return ImagePlaceholder, false
	case model.KindFormula:
		return FormulaPlaceholder, false
	case model.KindTable:
		if block.Table == nil {
			return "", false
		}
		return s.renderTable(block.Table), false
	case model.KindHeading, model.KindListItem:
		// Handled by the tree walk; unreachable here.
		return "", false
	}
	return "", false
}

// renderList emits a run of consecutive list items. Ordered items number
// sequentially per nesting depth within the run.
func (s *Serializer) renderList(items []*model.Block) string {
	lines := make([]string, 0, len(items))
	counters := make(map[int]int)
	prevDepth := 0
	for _, item := range items {
		if item.Depth < prevDepth {
			for d := range counters {
				if d > item.Depth {
					delete(counters, d)
				}
			}
		}
		marker := "- "
		if item.Ordered {
			counters[item.Depth]++
			marker = fmt.Sprintf("%d. ", counters[item.Depth])
		}
		lines = append(lines, strings.Repeat("  ", item.Depth)+marker+normText(item.Text))
		prevDepth = item.Depth
	}
	return strings.Join(lines, "\n")
}

// renderTable emits a pipe-delimited grid. Spanning cells are already
// flattened by value repetition; the separator row follows the header rows.
func (s *Serializer) renderTable(table *model.Table) string {
	grid := table.Flatten()
	if len(grid) == 0 {
		return ""
	}
	cols := len(grid[0])
	for i := range grid {
		for j := range grid[i] {
			grid[i][j] = normText(grid[i][j])
		}
	}

	widths := make([]int, cols)
	if s.config.AlignColumns {
		for _, row := range grid {
			for j, cell := range row {
				if w := runewidth.StringWidth(cell); w > widths[j] {
					widths[j] = w
				}
			}
		}
		for j := range widths {
			if widths[j] < 3 {
				widths[j] = 3
			}
		}
	}

	headerRows := table.HeaderRows
	if headerRows < 1 {
		headerRows = 1
	}
	if headerRows > len(grid) {
		headerRows = len(grid)
	}

	var lines []string
	for i, row := range grid {
		lines = append(lines, s.renderRow(row, widths))
		if i == headerRows-1 {
			sep := make([]string, cols)
			for j := range sep {
				if s.config.AlignColumns {
					sep[j] = strings.Repeat("-", widths[j])
				} else {
					sep[j] = "---"
				}
			}
			lines = append(lines, s.renderRow(sep, nil))
		}
	}
	return strings.Join(lines, "\n")
}

// renderRow emits one pipe row, padding cells when widths are given.
func (s *Serializer) renderRow(cells []string, widths []int) string {
	var b strings.Builder
	b.WriteString("|")
	for j, cell := range cells {
		b.WriteString(" ")
		b.WriteString(cell)
		if widths != nil {
			if pad := widths[j] - runewidth.StringWidth(cell); pad > 0 {
				b.WriteString(strings.Repeat(" ", pad))
			}
		}
		b.WriteString(" |")
	}
	return b.String()
}

// normText NFC-normalizes emitted text so byte-identical output does not
// depend on the extractor's choice of combining forms.
func normText(text string) string {
	return norm.NFC.String(text)
}
