package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vuekb/vuekb/pkg/presenter"
	"github.com/vuekb/vuekb/pkg/skills"
)

var showCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Print one reference article",
	Long: `Print the markdown body of a reference article. With --metadata, print
the article's frontmatter fields as JSON instead.

Examples:
  vuekb show reactivity-loss
  vuekb show ssr-hydration-mismatch --metadata`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		metadata, _ := cmd.Flags().GetBool("metadata")
		showSkillCmd(args[0], metadata)
	},
}

func init() {
	showCmd.Flags().Bool("metadata", false, "Print frontmatter metadata as JSON instead of the body")
	rootCmd.AddCommand(showCmd)
}

func showSkillCmd(slug string, metadata bool) {
	discovery, err := skills.NewDiscovery()
	if err != nil {
		presenter.Error(err, "Failed to initialize discovery")
		os.Exit(1)
	}

	skill, err := discovery.GetSkill(slug)
	if err != nil {
		presenter.Error(err, "Article not found")
		os.Exit(1)
	}

	if metadata {
		out, err := json.MarshalIndent(skillJSON{
			Slug:   skill.Slug,
			Title:  skill.Title,
			Impact: string(skill.Impact),
			Type:   string(skill.Type),
			Tags:   skill.Tags,
			Source: skill.Source,
			Path:   skill.Path,
		}, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to render metadata")
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	fmt.Print(skill.Content)
}
