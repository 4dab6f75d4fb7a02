package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vuekb/vuekb/pkg/export"
	"github.com/vuekb/vuekb/pkg/presenter"
)

// ExportConfig holds configuration for the export command
type ExportConfig struct {
	Format string
	Output string
	Title  string
	Tags   []string
	Type   string
	Impact string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Bundle the corpus into a single document",
	Long: `Bundle the discovered corpus into one markdown document with a table
of contents, or into a JSON array. Filters narrow the bundle the same
way they narrow 'list'.

Examples:
  vuekb export -o vue-reference.md
  vuekb export --format json -o corpus.json
  vuekb export --type gotcha --impact high --title "Vue gotchas"`,
	Run: func(cmd *cobra.Command, args []string) {
		config := &ExportConfig{}
		config.Format, _ = cmd.Flags().GetString("format")
		config.Output, _ = cmd.Flags().GetString("output")
		config.Title, _ = cmd.Flags().GetString("title")
		config.Tags, _ = cmd.Flags().GetStringSlice("tag")
		config.Type, _ = cmd.Flags().GetString("type")
		config.Impact, _ = cmd.Flags().GetString("impact")
		exportCorpusCmd(config)
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", string(export.FormatMarkdown), "Bundle format (markdown, json)")
	exportCmd.Flags().StringP("output", "o", "", "Write the bundle to this file instead of stdout")
	exportCmd.Flags().String("title", "", "Bundle title (markdown format only)")
	exportCmd.Flags().StringSliceP("tag", "t", nil, "Only include articles matching these tag patterns")
	exportCmd.Flags().String("type", "", "Only include articles of this type")
	exportCmd.Flags().String("impact", "", "Only include articles at or above this impact level")
	rootCmd.AddCommand(exportCmd)
}

func exportCorpusCmd(config *ExportConfig) {
	format, err := export.ParseFormat(config.Format)
	if err != nil {
		presenter.Error(err, "Invalid --format")
		os.Exit(1)
	}

	corpus, err := filteredCorpus(config.Tags, config.Type, config.Impact)
	if err != nil {
		presenter.Error(err, "Failed to load corpus")
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if config.Output != "" {
		f, err := os.Create(config.Output)
		if err != nil {
			presenter.Error(err, "Failed to create output file")
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	opts := export.Options{Format: format, Title: config.Title}
	if err := export.Bundle(w, corpus, opts); err != nil {
		presenter.Error(err, "Failed to write bundle")
		os.Exit(1)
	}

	if config.Output != "" {
		presenter.Success("Wrote " + config.Output)
	}
}
