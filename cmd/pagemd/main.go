// Package main is the batch conversion driver for the pagemd engine. It
// reads extracted primitive batches as JSON, runs the reconstruction
// pipeline, and writes markdown.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pagemd/pagemd/config"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the pagemd CLI.
var rootCmd = &cobra.Command{
	Use:   "pagemd",
	Short: "Reconstruct document structure from positioned primitives and emit markdown",
	Long: `pagemd consumes page primitive batches produced by an extraction step
(text spans with bounding boxes and font metadata, image/line/formula regions,
optional table grid hints) and reconstructs an ordered, semantically tagged
document tree, serialized as deterministic markdown.

Input batches are JSON files; see the convert subcommand.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML config file with threshold overrides")
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(versionCmd)
}

// loadSettings resolves the layered configuration for a command invocation.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path, cmd.Flags())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pagemd version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("pagemd " + version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
