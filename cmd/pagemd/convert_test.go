package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemd/pagemd/model"
)

// writeBatchFile marshals batches into a temp JSON file and returns its path.
func writeBatchFile(t *testing.T, batches []model.PageBatch) string {
	t.Helper()
	data, err := json.Marshal(batches)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "batches.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// runCommand executes the CLI with args and returns stdout and stderr.
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func sampleBatches() []model.PageBatch {
	return []model.PageBatch{{
		Page: 0, Width: 600, Height: 800,
		Spans: []model.Span{
			{Text: "Total", BBox: model.NewBBox(50, 100, 110, 118), FontSize: 18, Bold: true, Index: 0},
			{Text: "709,500", BBox: model.NewBBox(50, 130, 120, 142), FontSize: 12, Index: 1},
		},
	}}
}

func TestConvertCommand(t *testing.T) {
	path := writeBatchFile(t, sampleBatches())

	out, _, err := runCommand(t, "convert", path)
	require.NoError(t, err)
	assert.Equal(t, "# Total\n\n709,500\n", out)
}

func TestConvertCommandOutputFile(t *testing.T) {
	path := writeBatchFile(t, sampleBatches())
	outPath := filepath.Join(t.TempDir(), "out.md")

	// Flag values persist on the package-level command between runs.
	t.Cleanup(func() { _ = convertCmd.Flags().Set("output", "") })

	_, _, err := runCommand(t, "convert", path, "-o", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "# Total\n\n709,500\n", string(data))
}

func TestConvertCommandMissingFile(t *testing.T) {
	_, _, err := runCommand(t, "convert", filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestConvertCommandThresholdFlag(t *testing.T) {
	path := writeBatchFile(t, sampleBatches())

	t.Cleanup(func() { _ = rootCmd.PersistentFlags().Set("classify-max-heading-level", "6") })

	// An out-of-range threshold fails configuration validation.
	_, _, err := runCommand(t, "convert", path, "--classify-max-heading-level=9")
	assert.Error(t, err)
}

func TestOutlineCommand(t *testing.T) {
	path := writeBatchFile(t, sampleBatches())

	out, _, err := runCommand(t, "outline", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Total (page 1)")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pagemd")
}
