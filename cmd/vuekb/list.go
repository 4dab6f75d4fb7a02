package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vuekb/vuekb/pkg/presenter"
	"github.com/vuekb/vuekb/pkg/skills"
)

type ListConfig struct {
	Tags       []string
	Type       string
	Impact     string
	ShowPath   bool
	JSONOutput bool
}

func NewListConfig() *ListConfig {
	return &ListConfig{}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List reference articles",
	Long: `List all available reference articles with their slugs, titles, impact,
type, and tags. Filters narrow the output:

  vuekb list --tag reactivity
  vuekb list --tag 'ssr*' --impact high
  vuekb list --type gotcha --json`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getListConfigFromFlags(cmd)
		listSkillsCmd(config)
	},
}

func init() {
	defaults := NewListConfig()
	listCmd.Flags().StringSliceP("tag", "t", defaults.Tags, "Only articles with a tag matching this glob (repeatable)")
	listCmd.Flags().String("type", defaults.Type, "Only articles of this type (gotcha, pattern, convention, capability)")
	listCmd.Flags().String("impact", defaults.Impact, "Only articles of at least this impact (critical, high, medium, low)")
	listCmd.Flags().Bool("path", defaults.ShowPath, "Show the file each article was loaded from")
	listCmd.Flags().Bool("json", defaults.JSONOutput, "Output as JSON")

	rootCmd.AddCommand(listCmd)
}

func getListConfigFromFlags(cmd *cobra.Command) *ListConfig {
	config := NewListConfig()
	if tags, err := cmd.Flags().GetStringSlice("tag"); err == nil {
		config.Tags = tags
	}
	if typ, err := cmd.Flags().GetString("type"); err == nil {
		config.Type = typ
	}
	if impact, err := cmd.Flags().GetString("impact"); err == nil {
		config.Impact = impact
	}
	if showPath, err := cmd.Flags().GetBool("path"); err == nil {
		config.ShowPath = showPath
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}
	return config
}

// filteredCorpus discovers the corpus and applies the shared filter flags
func filteredCorpus(tags []string, typeStr, impactStr string) (map[string]*skills.Skill, error) {
	discovery, err := skills.NewDiscovery()
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize discovery")
	}

	corpus, err := discovery.DiscoverSkills()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load corpus")
	}

	if len(tags) > 0 {
		if corpus, err = skills.FilterByTags(corpus, tags); err != nil {
			return nil, err
		}
	}
	if typeStr != "" {
		typ, err := skills.ParseType(typeStr)
		if err != nil {
			return nil, err
		}
		corpus = skills.FilterByType(corpus, typ)
	}
	if impactStr != "" {
		impact, err := skills.ParseImpact(impactStr)
		if err != nil {
			return nil, err
		}
		corpus = skills.FilterByMinImpact(corpus, impact)
	}

	return corpus, nil
}

func listSkillsCmd(config *ListConfig) {
	corpus, err := filteredCorpus(config.Tags, config.Type, config.Impact)
	if err != nil {
		presenter.Error(err, "Failed to list articles")
		os.Exit(1)
	}

	if len(corpus) == 0 {
		presenter.Info("No articles match")
		return
	}

	if config.JSONOutput {
		if err := renderSkillsJSON(os.Stdout, corpus); err != nil {
			presenter.Error(err, "Failed to render JSON output")
			os.Exit(1)
		}
		return
	}

	renderSkillsTable(os.Stdout, corpus, config.ShowPath)
}

type skillJSON struct {
	Slug   string   `json:"slug"`
	Title  string   `json:"title"`
	Impact string   `json:"impact"`
	Type   string   `json:"type"`
	Tags   []string `json:"tags"`
	Source string   `json:"source"`
	Path   string   `json:"path"`
}

func renderSkillsJSON(w io.Writer, corpus map[string]*skills.Skill) error {
	out := make([]skillJSON, 0, len(corpus))
	for _, slug := range skills.SortedSlugs(corpus) {
		s := corpus[slug]
		out = append(out, skillJSON{
			Slug:   s.Slug,
			Title:  s.Title,
			Impact: string(s.Impact),
			Type:   string(s.Type),
			Tags:   s.Tags,
			Source: s.Source,
			Path:   s.Path,
		})
	}

	data, err := json.MarshalIndent(map[string]any{"skills": out}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error generating JSON output")
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}

func renderSkillsTable(w io.Writer, corpus map[string]*skills.Skill, showPath bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if showPath {
		fmt.Fprintln(tw, "SLUG\tIMPACT\tTYPE\tTAGS\tPATH")
		fmt.Fprintln(tw, "----\t------\t----\t----\t----")
	} else {
		fmt.Fprintln(tw, "SLUG\tIMPACT\tTYPE\tTAGS\tTITLE")
		fmt.Fprintln(tw, "----\t------\t----\t----\t-----")
	}

	for _, slug := range skills.SortedSlugs(corpus) {
		s := corpus[slug]
		last := s.Title
		if showPath {
			last = s.Path
		}
		last = truncate(last, 60)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.Slug, s.Impact, s.Type, strings.Join(s.Tags, ","), last)
	}
	tw.Flush()
}

// truncate shortens s to at most n runes. Snippets can carry multi-byte
// ellipsis markers, so cutting on bytes would split a rune.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
