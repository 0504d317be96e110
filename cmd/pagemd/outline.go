package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagemd/pagemd"
	"github.com/pagemd/pagemd/model"
)

var outlineCmd = &cobra.Command{
	Use:   "outline [batches.json...]",
	Short: "Print the heading outline of converted documents",
	Long: `Outline runs the reconstruction pipeline and prints the heading tree
of each logical document, one indented line per heading with its page
number. Useful for checking structure recovery without diffing markdown.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		var batches []model.PageBatch
		for _, path := range args {
			fileBatches, err := readBatches(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			batches = append(batches, fileBatches...)
		}

		docs, err := pagemd.New().WithConfig(settings.Pipeline).Convert(cmd.Context(), batches)
		if err != nil {
			return err
		}

		for i, doc := range docs {
			if doc.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "document %d: %v\n", i, doc.Err)
				continue
			}
			if i > 0 {
				cmd.Println()
			}
			cmd.Printf("document %d:\n", i)
			for _, entry := range doc.Tree.Outline() {
				indent := strings.Repeat("  ", entry.Level-1)
				cmd.Printf("%s%s (page %d)\n", indent, entry.Text, entry.Page+1)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}
