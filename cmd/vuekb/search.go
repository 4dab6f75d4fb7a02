package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vuekb/vuekb/pkg/index"
	"github.com/vuekb/vuekb/pkg/presenter"
	"github.com/vuekb/vuekb/pkg/skills"
)

// SearchConfig holds configuration for the search command
type SearchConfig struct {
	Rebuild    bool
	Tag        string
	Type       string
	Impact     string
	Limit      int
	JSONOutput bool
}

// NewSearchConfig returns default search configuration
func NewSearchConfig() *SearchConfig {
	return &SearchConfig{
		Limit: index.DefaultSearchLimit,
	}
}

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Full-text search across the reference corpus",
	Long: `Search titles, tags and bodies of the discovered corpus using the
local search index. The index is built on first use and can be
refreshed with --rebuild after editing articles.

Examples:
  vuekb search hydration mismatch
  vuekb search watch cleanup --tag watchers
  vuekb search reactivity --impact high --limit 5
  vuekb search keys --rebuild --json`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getSearchConfigFromFlags(cmd)
		searchSkillsCmd(cmd, strings.Join(args, " "), config)
	},
}

func init() {
	defaults := NewSearchConfig()
	searchCmd.Flags().Bool("rebuild", false, "Rebuild the search index before querying")
	searchCmd.Flags().StringP("tag", "t", "", "Restrict hits to articles carrying this tag")
	searchCmd.Flags().String("type", "", "Restrict hits to an article type (gotcha, pattern, convention, capability)")
	searchCmd.Flags().String("impact", "", "Minimum impact level (critical, high, medium, low)")
	searchCmd.Flags().IntP("limit", "n", defaults.Limit, "Maximum number of hits")
	searchCmd.Flags().Bool("json", false, "Output hits as JSON")
	rootCmd.AddCommand(withTracing(searchCmd))
}

func getSearchConfigFromFlags(cmd *cobra.Command) *SearchConfig {
	config := NewSearchConfig()
	config.Rebuild, _ = cmd.Flags().GetBool("rebuild")
	config.Tag, _ = cmd.Flags().GetString("tag")
	config.Type, _ = cmd.Flags().GetString("type")
	config.Impact, _ = cmd.Flags().GetString("impact")
	config.Limit, _ = cmd.Flags().GetInt("limit")
	config.JSONOutput, _ = cmd.Flags().GetBool("json")
	return config
}

func searchSkillsCmd(cmd *cobra.Command, query string, config *SearchConfig) {
	ctx := cmd.Context()

	opts := index.SearchOptions{
		Tag:   config.Tag,
		Limit: config.Limit,
	}
	if config.Type != "" {
		typ, err := skills.ParseType(config.Type)
		if err != nil {
			presenter.Error(err, "Invalid --type")
			os.Exit(1)
		}
		opts.Type = typ
	}
	if config.Impact != "" {
		impact, err := skills.ParseImpact(config.Impact)
		if err != nil {
			presenter.Error(err, "Invalid --impact")
			os.Exit(1)
		}
		opts.MinImpact = impact
	}

	ix, err := index.OpenDefault(ctx)
	if err != nil {
		presenter.Error(err, "Failed to open search index")
		os.Exit(1)
	}
	defer ix.Close()

	count, err := ix.Count(ctx)
	if err != nil {
		presenter.Error(err, "Failed to read search index")
		os.Exit(1)
	}
	if config.Rebuild || count == 0 {
		discovery, err := skills.NewDiscovery()
		if err != nil {
			presenter.Error(err, "Failed to initialize discovery")
			os.Exit(1)
		}
		corpus, err := discovery.DiscoverSkills()
		if err != nil {
			presenter.Error(err, "Failed to discover corpus")
			os.Exit(1)
		}
		if err := ix.Rebuild(ctx, corpus); err != nil {
			presenter.Error(err, "Failed to rebuild search index")
			os.Exit(1)
		}
	}

	hits, err := ix.Search(ctx, query, opts)
	if err != nil {
		presenter.Error(err, "Search failed")
		os.Exit(1)
	}

	if config.JSONOutput {
		out, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to render hits")
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	if len(hits) == 0 {
		presenter.Info("No articles matched the query")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tIMPACT\tTYPE\tSNIPPET")
	for _, hit := range hits {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", hit.Slug, hit.Impact, hit.Type, compactSnippet(hit.Snippet))
	}
	w.Flush()
}

// compactSnippet flattens a snippet onto one line for table output.
func compactSnippet(s string) string {
	return truncate(strings.Join(strings.Fields(s), " "), 80)
}
