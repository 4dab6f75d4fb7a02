package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vuekb/vuekb/pkg/lint"
	"github.com/vuekb/vuekb/pkg/presenter"
	"github.com/vuekb/vuekb/pkg/skills"
)

var lintCmd = &cobra.Command{
	Use:   "lint [dir...]",
	Short: "Validate reference articles",
	Long: `Validate frontmatter, tag style and cross-article links. With no
arguments the builtin corpus is checked; pass one or more directories
to check local articles instead.

Exits non-zero when any error-severity finding is present. Warnings
are reported but do not fail the run.

Examples:
  vuekb lint
  vuekb lint ./.vuekb/skills
  vuekb lint docs/ --format json`,
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")
		pattern, _ := cmd.Flags().GetString("pattern")
		lintCorpusCmd(args, format, pattern)
	},
}

func init() {
	lintCmd.Flags().String("format", "text", "Output format (text, json)")
	lintCmd.Flags().String("pattern", lint.DefaultPattern, "Glob pattern selecting files to check")
	rootCmd.AddCommand(lintCmd)
}

func lintCorpusCmd(dirs []string, format, pattern string) {
	if format != "text" && format != "json" {
		presenter.Error(fmt.Errorf("unknown format %q", format), "Invalid --format")
		os.Exit(1)
	}

	var findings []lint.Finding
	hasErrors := false
	if len(dirs) == 0 {
		report, err := lint.NewLinter(skills.Builtin(), lint.WithPattern(pattern)).Lint()
		if err != nil {
			presenter.Error(err, "Lint failed")
			os.Exit(1)
		}
		findings = append(report.Errors(), report.Warnings()...)
		hasErrors = report.HasErrors()
	} else {
		for _, dir := range dirs {
			if _, err := os.Stat(dir); err != nil {
				presenter.Error(err, "Cannot read directory")
				os.Exit(1)
			}
			report, err := lint.NewLinter(os.DirFS(dir), lint.WithPattern(pattern)).Lint()
			if err != nil {
				presenter.Error(err, "Lint failed")
				os.Exit(1)
			}
			findings = append(findings, report.Errors()...)
			findings = append(findings, report.Warnings()...)
			hasErrors = hasErrors || report.HasErrors()
		}
	}

	if format == "json" {
		out, err := json.MarshalIndent(findings, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to render findings")
			os.Exit(1)
		}
		fmt.Println(string(out))
	} else {
		for _, f := range findings {
			if f.Severity == lint.SeverityError {
				presenter.Error(errors.New(f.Message), f.File)
			} else {
				presenter.Warning(f.String())
			}
		}
		if len(findings) == 0 {
			presenter.Success("All articles passed")
		}
	}

	if hasErrors {
		os.Exit(1)
	}
}
