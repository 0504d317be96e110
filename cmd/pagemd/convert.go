package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagemd/pagemd"
	"github.com/pagemd/pagemd/model"
)

var convertCmd = &cobra.Command{
	Use:   "convert [batches.json...]",
	Short: "Convert primitive batches to markdown",
	Long: `Convert reads one or more JSON files, each holding an array of page
batches ordered by page, runs the reconstruction pipeline, and writes the
markdown of all logical documents joined by the document separator.

A batch with "DocumentStart": true opens a new logical document; documents
convert independently and a failure in one does not abort the rest.`,
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

		conv := pagemd.New().WithConfig(settings.Pipeline)
		if settings.Workers > 0 {
			conv = conv.WithWorkers(settings.Workers)
		}
		docs, err := conv.Convert(cmd.Context(), batches)
		if err != nil {
			return err
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		failed := 0
		for i, doc := range docs {
			if doc.Err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "document %d: %v\n", i, doc.Err)
				continue
			}
			if !quiet && len(doc.Warnings) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "document %d:\n%s\n", i, pagemd.FormatWarnings(doc.Warnings))
			}
		}

		output := pagemd.Join(docs)
		outPath, _ := cmd.Flags().GetString("output")
		if outPath == "" || outPath == "-" {
			if _, err := cmd.OutOrStdout().Write([]byte(output)); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		} else if err := os.WriteFile(outPath, []byte(output), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}

		if failed == len(docs) && len(docs) > 0 {
			return fmt.Errorf("all %d documents failed", failed)
		}
		return nil
	},
}

// readBatches decodes a JSON array of page batches.
func readBatches(path string) ([]model.PageBatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var batches []model.PageBatch
	if err := json.Unmarshal(data, &batches); err != nil {
		return nil, fmt.Errorf("decoding batches: %w", err)
	}
	return batches, nil
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	convertCmd.Flags().Bool("quiet", false, "suppress warning output")

	rootCmd.AddCommand(convertCmd)
}
