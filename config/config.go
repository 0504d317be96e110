// Package config loads pipeline threshold settings from configuration files,
// environment variables, and command line flags.
//
// The clustering and gap-detection tolerances of the engine are heuristics
// tuned against fixture corpora, so they are exposed as layered configuration
// rather than compiled constants: defaults, then an optional YAML file, then
// PAGEMD_* environment variables, then flags, each overriding the last.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pagemd/pagemd"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// PAGEMD_TABLES_MIN_ALIGNED_ROWS.
const envPrefix = "PAGEMD"

// Settings is the full runtime configuration: the pipeline thresholds plus
// the driver-level options that do not belong to any single stage.
type Settings struct {
	Pipeline pagemd.Config

	// Workers caps concurrent document/page processing. 0 means one worker
	// per CPU.
	Workers int
}

// DefaultSettings returns the stage defaults with driver options unset.
func DefaultSettings() Settings {
	return Settings{
		Pipeline: pagemd.DefaultConfig(),
		Workers:  0,
	}
}

// RegisterFlags defines the threshold flags on a flag set. Flag names mirror
// the configuration keys with dots replaced by dashes.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultSettings()

	fs.Float64("layout-min-gap-width-ratio", d.Pipeline.Layout.MinGapWidthRatio,
		"minimum column gap width as a fraction of page width")
	fs.Float64("layout-full-width-ratio", d.Pipeline.Layout.FullWidthRatio,
		"fraction of region width above which an element interrupts column flow")
	fs.Int("layout-max-columns", d.Pipeline.Layout.MaxColumns,
		"maximum columns recognized on a page")
	fs.Float64("layout-y-tolerance", d.Pipeline.Layout.YTolerance,
		"vertical tolerance for same-line grouping, in page units")
	fs.Float64("layout-caption-max-gap", d.Pipeline.Layout.CaptionMaxGap,
		"maximum vertical gap between a figure and its caption, in page units")

	fs.Int("classify-heading-max-runes", d.Pipeline.Classify.HeadingMaxRunes,
		"maximum heading text length in runes")
	fs.Int("classify-max-heading-level", d.Pipeline.Classify.MaxHeadingLevel,
		"deepest heading level assigned")
	fs.Float64("classify-indent-quantum", d.Pipeline.Classify.IndentQuantum,
		"left-margin offset per list nesting level, in page units")
	fs.Float64("classify-paragraph-gap-factor", d.Pipeline.Classify.ParagraphGapFactor,
		"line gap in font-size multiples beyond which paragraphs split")

	fs.Float64("tables-boundary-tolerance", d.Pipeline.Tables.BoundaryTolerance,
		"row/column edge clustering band width, in page units")
	fs.Int("tables-min-rows", d.Pipeline.Tables.MinRows,
		"smallest row count accepted as a table")
	fs.Int("tables-min-cols", d.Pipeline.Tables.MinCols,
		"smallest column count accepted as a table")
	fs.Int("tables-min-aligned-rows", d.Pipeline.Tables.MinAlignedRows,
		"aligned rows required before an unruled cluster counts as a table")

	fs.Bool("markdown-align-columns", d.Pipeline.Markdown.AlignColumns,
		"pad table cells to a common display width per column")

	fs.Int("workers", d.Workers, "concurrent workers (0 = one per CPU)")
}

// Load builds Settings by layering, lowest priority first: defaults, the
// YAML file at path (optional when path is empty), PAGEMD_* environment
// variables, and the given flag set (optional).
func Load(path string, fs *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return Settings{}, err
		}
	}

	s := populate(v)
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

// setDefaults seeds viper with the stage defaults so unset keys resolve.
func setDefaults(v *viper.Viper) {
	d := DefaultSettings()

	v.SetDefault("layout.min-gap-width-ratio", d.Pipeline.Layout.MinGapWidthRatio)
	v.SetDefault("layout.median-width-factor", d.Pipeline.Layout.MedianWidthFactor)
	v.SetDefault("layout.min-gap-height-ratio", d.Pipeline.Layout.MinGapHeightRatio)
	v.SetDefault("layout.full-width-ratio", d.Pipeline.Layout.FullWidthRatio)
	v.SetDefault("layout.max-columns", d.Pipeline.Layout.MaxColumns)
	v.SetDefault("layout.sparse-span-limit", d.Pipeline.Layout.SparseSpanLimit)
	v.SetDefault("layout.y-tolerance", d.Pipeline.Layout.YTolerance)
	v.SetDefault("layout.caption-max-gap", d.Pipeline.Layout.CaptionMaxGap)

	v.SetDefault("classify.heading-max-runes", d.Pipeline.Classify.HeadingMaxRunes)
	v.SetDefault("classify.max-heading-level", d.Pipeline.Classify.MaxHeadingLevel)
	v.SetDefault("classify.caption-max-runes", d.Pipeline.Classify.CaptionMaxRunes)
	v.SetDefault("classify.indent-quantum", d.Pipeline.Classify.IndentQuantum)
	v.SetDefault("classify.max-list-depth", d.Pipeline.Classify.MaxListDepth)
	v.SetDefault("classify.paragraph-gap-factor", d.Pipeline.Classify.ParagraphGapFactor)

	v.SetDefault("tables.boundary-tolerance", d.Pipeline.Tables.BoundaryTolerance)
	v.SetDefault("tables.min-rows", d.Pipeline.Tables.MinRows)
	v.SetDefault("tables.min-cols", d.Pipeline.Tables.MinCols)
	v.SetDefault("tables.min-aligned-rows", d.Pipeline.Tables.MinAlignedRows)
	v.SetDefault("tables.line-aspect", d.Pipeline.Tables.LineAspect)

	v.SetDefault("markdown.align-columns", d.Pipeline.Markdown.AlignColumns)

	v.SetDefault("workers", d.Workers)
}

// bindFlags maps the flat flag names onto the dotted configuration keys.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"layout.min-gap-width-ratio":    "layout-min-gap-width-ratio",
		"layout.full-width-ratio":       "layout-full-width-ratio",
		"layout.max-columns":            "layout-max-columns",
		"layout.y-tolerance":            "layout-y-tolerance",
		"layout.caption-max-gap":        "layout-caption-max-gap",
		"classify.heading-max-runes":    "classify-heading-max-runes",
		"classify.max-heading-level":    "classify-max-heading-level",
		"classify.indent-quantum":       "classify-indent-quantum",
		"classify.paragraph-gap-factor": "classify-paragraph-gap-factor",
		"tables.boundary-tolerance":     "tables-boundary-tolerance",
		"tables.min-rows":               "tables-min-rows",
		"tables.min-cols":               "tables-min-cols",
		"tables.min-aligned-rows":       "tables-min-aligned-rows",
		"markdown.align-columns":        "markdown-align-columns",
		"workers":                       "workers",
	}
	for key, name := range bindings {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// populate reads the resolved values into a Settings struct.
func populate(v *viper.Viper) Settings {
	s := DefaultSettings()

	s.Pipeline.Layout.MinGapWidthRatio = v.GetFloat64("layout.min-gap-width-ratio")
	s.Pipeline.Layout.MedianWidthFactor = v.GetFloat64("layout.median-width-factor")
	s.Pipeline.Layout.MinGapHeightRatio = v.GetFloat64("layout.min-gap-height-ratio")
	s.Pipeline.Layout.FullWidthRatio = v.GetFloat64("layout.full-width-ratio")
	s.Pipeline.Layout.MaxColumns = v.GetInt("layout.max-columns")
	s.Pipeline.Layout.SparseSpanLimit = v.GetInt("layout.sparse-span-limit")
	s.Pipeline.Layout.YTolerance = v.GetFloat64("layout.y-tolerance")
	s.Pipeline.Layout.CaptionMaxGap = v.GetFloat64("layout.caption-max-gap")

	s.Pipeline.Classify.HeadingMaxRunes = v.GetInt("classify.heading-max-runes")
	s.Pipeline.Classify.MaxHeadingLevel = v.GetInt("classify.max-heading-level")
	s.Pipeline.Classify.CaptionMaxRunes = v.GetInt("classify.caption-max-runes")
	s.Pipeline.Classify.IndentQuantum = v.GetFloat64("classify.indent-quantum")
	s.Pipeline.Classify.MaxListDepth = v.GetInt("classify.max-list-depth")
	s.Pipeline.Classify.ParagraphGapFactor = v.GetFloat64("classify.paragraph-gap-factor")

	s.Pipeline.Tables.BoundaryTolerance = v.GetFloat64("tables.boundary-tolerance")
	s.Pipeline.Tables.MinRows = v.GetInt("tables.min-rows")
	s.Pipeline.Tables.MinCols = v.GetInt("tables.min-cols")
	s.Pipeline.Tables.MinAlignedRows = v.GetInt("tables.min-aligned-rows")
	s.Pipeline.Tables.LineAspect = v.GetFloat64("tables.line-aspect")

	s.Pipeline.Markdown.AlignColumns = v.GetBool("markdown.align-columns")

	s.Workers = v.GetInt("workers")
	return s
}

// Validate checks threshold sanity.
func (s Settings) Validate() error {
	if s.Pipeline.Layout.MinGapWidthRatio <= 0 || s.Pipeline.Layout.MinGapWidthRatio >= 1 {
		return errors.New("layout.min-gap-width-ratio must be in (0, 1)")
	}
	if s.Pipeline.Layout.FullWidthRatio <= 0 || s.Pipeline.Layout.FullWidthRatio > 1 {
		return errors.New("layout.full-width-ratio must be in (0, 1]")
	}
	if s.Pipeline.Layout.MaxColumns < 1 {
		return errors.New("layout.max-columns must be at least 1")
	}
	if s.Pipeline.Classify.MaxHeadingLevel < 1 || s.Pipeline.Classify.MaxHeadingLevel > 6 {
		return errors.New("classify.max-heading-level must be between 1 and 6")
	}
	if s.Pipeline.Tables.BoundaryTolerance <= 0 {
		return errors.New("tables.boundary-tolerance must be positive")
	}
	if s.Pipeline.Tables.MinRows < 1 || s.Pipeline.Tables.MinCols < 1 {
		return errors.New("tables.min-rows and tables.min-cols must be at least 1")
	}
	if s.Pipeline.Tables.MinAlignedRows < 2 {
		return errors.New("tables.min-aligned-rows must be at least 2")
	}
	if s.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	return nil
}
