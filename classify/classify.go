package classify

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pagemd/pagemd/layout"
	"github.com/pagemd/pagemd/model"
)

// Config holds the tunable thresholds of block classification.
type Config struct {
	// HeadingMaxRunes is the maximum text length for a span to qualify as a
	// heading. Default: 80.
	HeadingMaxRunes int

	// MaxHeadingLevel caps assigned heading levels. Default: 6.
	MaxHeadingLevel int

	// CaptionMaxRunes is the maximum text length for a caption. Default: 160.
	CaptionMaxRunes int

	// IndentQuantum is the left-margin offset in page units corresponding to
	// one list nesting level. Default: 18.
	IndentQuantum float64

	// MaxListDepth caps quantized list indent depth. Default: 5.
	MaxListDepth int

	// ParagraphGapFactor is the vertical gap, in multiples of the font size,
	// beyond which consecutive spans stop merging into one paragraph.
	// Default: 1.8.
	ParagraphGapFactor float64
}

// DefaultConfig returns sensible classification defaults.
func DefaultConfig() Config {
	return Config{
		HeadingMaxRunes:    80,
		MaxHeadingLevel:    6,
		CaptionMaxRunes:    160,
		IndentQuantum:      18.0,
		MaxListDepth:       5,
		ParagraphGapFactor: 1.8,
	}
}

// bulletPattern matches bullet glyphs and numbering patterns that open a
// list item: "- ", "• ", "1. ", "12) ", "a) ", "iv. " and the like.
var bulletPattern = regexp.MustCompile(`^([-–—•●○◦‣·*]|\d{1,3}[.)]|[a-zA-Z][.)]|[ivxlcIVXLC]{1,5}[.)])\s+`)

// orderedPattern distinguishes numbering from bullet glyphs.
var orderedPattern = regexp.MustCompile(`^(\d{1,3}|[a-zA-Z]|[ivxlcIVXLC]{1,5})[.)]\s+`)

// Classifier tags an ordered span/region sequence as blocks. It is stateless
// across pages; the only document-wide input is the immutable [FontStats]
// snapshot built during phase 1.
type Classifier struct {
	config Config
	stats  *FontStats
}

// NewClassifier creates a classifier with default configuration.
func NewClassifier(stats *FontStats) *Classifier {
	return &Classifier{config: DefaultConfig(), stats: stats}
}

// NewClassifierWithConfig creates a classifier with custom configuration.
func NewClassifierWithConfig(stats *FontStats, config Config) *Classifier {
	return &Classifier{config: config, stats: stats}
}

// ClassifyPage emits the block sequence for one page. order is the reading
// order from layout resolution. tabular maps span indices (positions in
// batch.Spans) to table-candidate ids; spans of one candidate group into a
// single table block awaiting structure recovery.
//
// Unclassifiable spans default to paragraphs. That is graceful degradation,
// never an error.
func (c *Classifier) ClassifyPage(batch *model.PageBatch, order []layout.Ref, tabular map[int]int) []model.Block {
	var blocks []model.Block
	tableBlocks := make(map[int]int) // candidate id -> index in blocks

	leftMargin := pageLeftMargin(batch)

	// Pending paragraph accumulation.
	var para *model.Block
	var paraLast model.Span

	flush := func() {
		if para != nil {
			blocks = append(blocks, *para)
			para = nil
		}
	}

	for pos, ref := range order {
		if ref.Region {
			reg := batch.Regions[ref.Index]
			switch reg.Kind {
			case model.RegionImage:
				flush()
				blocks = append(blocks, regionBlock(model.KindFigure, reg, batch.Page))
			case model.RegionFormula:
				flush()
				blocks = append(blocks, regionBlock(model.KindFormula, reg, batch.Page))
			default:
				// Ruling lines are geometry, not content: they feed table
				// candidate detection and produce no block of their own.
			}
			continue
		}

		s := batch.Spans[ref.Index]

		if cid, ok := tabular[ref.Index]; ok {
			flush()
			bi, exists := tableBlocks[cid]
			if !exists {
				b := model.NewBlock(model.KindTable)
				b.Page = batch.Page
				b.BBox = s.BBox
				blocks = append(blocks, b)
				bi = len(blocks) - 1
				tableBlocks[cid] = bi
			}
			blocks[bi].SpanIndices = append(blocks[bi].SpanIndices, ref.Index)
			blocks[bi].BBox = blocks[bi].BBox.Union(s.BBox)
			continue
		}

		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}

		if c.isHeading(s, text, pos, order, batch) {
			flush()
			b := model.NewBlock(model.KindHeading)
			b.Page = batch.Page
			b.Text = text
			b.BBox = s.BBox
			b.SpanIndices = []int{ref.Index}
			b.Level = c.headingLevel(s)
			blocks = append(blocks, b)
			continue
		}

		if m := bulletPattern.FindString(text); m != "" {
			flush()
			b := model.NewBlock(model.KindListItem)
			b.Page = batch.Page
			b.Text = strings.TrimSpace(strings.TrimPrefix(text, m))
			b.BBox = s.BBox
			b.SpanIndices = []int{ref.Index}
			b.Depth = c.listDepth(s.BBox.X0, leftMargin)
			b.Ordered = orderedPattern.MatchString(text)
			blocks = append(blocks, b)
			continue
		}

		if c.isCaption(s, text, para, blocks) {
			flush()
			b := model.NewBlock(model.KindCaption)
			b.Page = batch.Page
			b.Text = text
			b.BBox = s.BBox
			b.SpanIndices = []int{ref.Index}
			blocks = append(blocks, b)
			continue
		}

		// Paragraph: merge with the pending run while the font/style class
		// matches and the vertical gap stays within line spacing.
		if para != nil && c.continuesParagraph(paraLast, s) {
			para.Text += " " + text
			para.BBox = para.BBox.Union(s.BBox)
			para.SpanIndices = append(para.SpanIndices, ref.Index)
			paraLast = s
			continue
		}
		flush()
		b := model.NewBlock(model.KindParagraph)
		b.Page = batch.Page
		b.Text = text
		b.BBox = s.BBox
		b.SpanIndices = []int{ref.Index}
		para = &b
		paraLast = s
	}
	flush()

	return blocks
}

// isHeading applies the heading rule: a short span set bold or larger than
// the document body size, standing alone on its line, with content following.
func (c *Classifier) isHeading(s model.Span, text string, pos int, order []layout.Ref, batch *model.PageBatch) bool {
	if len([]rune(text)) > c.config.HeadingMaxRunes {
		return false
	}
	larger := c.stats.HeadingLevel(s.FontSize) > 0
	if !s.Bold && !larger && !isUpperText(text) {
		return false
	}
	if !standsAlone(s, pos, order, batch) {
		return false
	}
	return hasFollowingSpan(pos, order)
}

// headingLevel assigns the level by document-wide font-size rank. A bold
// heading at body size ranks below every larger heading size.
func (c *Classifier) headingLevel(s model.Span) int {
	level := c.stats.HeadingLevel(s.FontSize)
	if level == 0 {
		level = c.stats.LevelCount() + 1
	}
	if level > c.config.MaxHeadingLevel {
		level = c.config.MaxHeadingLevel
	}
	return level
}

// isCaption applies the caption rule: a short smaller-or-italic span
// immediately following a figure, formula, or table block.
func (c *Classifier) isCaption(s model.Span, text string, para *model.Block, blocks []model.Block) bool {
	if para != nil || len(blocks) == 0 {
		return false
	}
	if len([]rune(text)) > c.config.CaptionMaxRunes {
		return false
	}
	prev := blocks[len(blocks)-1].Kind
	if prev != model.KindFigure && prev != model.KindFormula && prev != model.KindTable {
		return false
	}
	return s.Italic || quantizeSize(s.FontSize) < c.stats.BodySize()
}

// continuesParagraph reports whether a span extends the pending paragraph:
// same quantized font size and style flags, and either on the same line or
// within normal line spacing below it.
func (c *Classifier) continuesParagraph(last, s model.Span) bool {
	if quantizeSize(last.FontSize) != quantizeSize(s.FontSize) {
		return false
	}
	if last.Bold != s.Bold || last.Italic != s.Italic {
		return false
	}
	if s.BBox.VerticalOverlap(last.BBox) > 0 {
		return true // same line continuation
	}
	gap := s.BBox.Y0 - last.BBox.Y1
	size := s.FontSize
	if size <= 0 {
		size = s.BBox.Height()
	}
	return gap >= 0 && gap <= c.config.ParagraphGapFactor*size
}

// listDepth quantizes a left-margin offset into a discrete nesting level.
func (c *Classifier) listDepth(x0, leftMargin float64) int {
	if c.config.IndentQuantum <= 0 {
		return 0
	}
	depth := int((x0 - leftMargin + c.config.IndentQuantum/2) / c.config.IndentQuantum)
	if depth < 0 {
		depth = 0
	}
	if depth > c.config.MaxListDepth {
		depth = c.config.MaxListDepth
	}
	return depth
}

// standsAlone reports whether no neighboring span in reading order shares the
// span's line.
func standsAlone(s model.Span, pos int, order []layout.Ref, batch *model.PageBatch) bool {
	check := func(ref layout.Ref) bool {
		if ref.Region {
			return true
		}
		other := batch.Spans[ref.Index]
		overlap := s.BBox.VerticalOverlap(other.BBox)
		minH := s.BBox.Height()
		if h := other.BBox.Height(); h < minH {
			minH = h
		}
		return overlap < minH/2
	}
	if pos > 0 && !check(order[pos-1]) {
		return false
	}
	if pos+1 < len(order) && !check(order[pos+1]) {
		return false
	}
	return true
}

// hasFollowingSpan reports whether any span follows in reading order.
func hasFollowingSpan(pos int, order []layout.Ref) bool {
	for _, ref := range order[pos+1:] {
		if !ref.Region {
			return true
		}
	}
	return false
}

// pageLeftMargin returns the leftmost span edge of the page, the reference
// margin for list indent quantization.
func pageLeftMargin(batch *model.PageBatch) float64 {
	margin := 0.0
	first := true
	for _, s := range batch.Spans {
		if first || s.BBox.X0 < margin {
			margin = s.BBox.X0
			first = false
		}
	}
	return margin
}

// regionBlock wraps a region into its placeholder block.
func regionBlock(kind model.BlockKind, reg model.Region, page int) model.Block {
	b := model.NewBlock(kind)
	b.Page = page
	b.BBox = reg.BBox
	b.RegionIndex = reg.Index
	return b
}

// isUpperText reports whether the text is predominantly upper case letters,
// a secondary heading signal for styles that mark headings by case rather
// than weight.
func isUpperText(text string) bool {
	letters, upper := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	return letters > 0 && upper == letters
}
