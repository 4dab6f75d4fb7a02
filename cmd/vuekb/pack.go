package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vuekb/vuekb/pkg/presenter"
)

type PackAddConfig struct {
	Global bool
	Dir    string
}

func NewPackAddConfig() *PackAddConfig {
	return &PackAddConfig{
		Global: false,
		Dir:    "skills",
	}
}

type PackRemoveConfig struct {
	Global bool
}

func NewPackRemoveConfig() *PackRemoveConfig {
	return &PackRemoveConfig{
		Global: false,
	}
}

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Manage article packs",
	Long:  `Add, list, and remove article packs from GitHub repositories.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var packAddCmd = &cobra.Command{
	Use:   "add <org/repo>",
	Short: "Install an article pack from a GitHub repository",
	Long: `Install a pack of reference articles from a GitHub repository. The
repository should carry markdown articles with frontmatter under a
skills/ directory. Pack articles are discovered under the slug prefix
org/repo/ and are shadowed by local articles with the same slug.

You can specify:

  - A repo: orgname/vue-skills (installs its skills/ directory)
  - A repo with version: orgname/vue-skills@v0.1.0
  - A repo with a custom article directory: orgname/vue-skills --dir docs/reference

Examples:
  vuekb pack add orgname/vue-skills
  vuekb pack add orgname/vue-skills@main
  vuekb pack add orgname/vue-skills -g`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getPackAddConfigFromFlags(cmd)
		addPackCmd(args[0], config)
	},
}

var packListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packs",
	Run: func(_ *cobra.Command, _ []string) {
		listPacksCmd()
	},
}

var packRemoveCmd = &cobra.Command{
	Use:   "remove <org/repo>",
	Short: "Remove an installed pack",
	Long: `Remove an installed pack by its org/repo name.

Examples:
  vuekb pack remove orgname/vue-skills
  vuekb pack remove orgname/vue-skills -g`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getPackRemoveConfigFromFlags(cmd)
		removePackCmd(args[0], config)
	},
}

func init() {
	addDefaults := NewPackAddConfig()
	packAddCmd.Flags().BoolP("global", "g", addDefaults.Global, "Install to global ~/.vuekb/packs instead of local ./.vuekb/packs")
	packAddCmd.Flags().StringP("dir", "d", addDefaults.Dir, "Article directory within the repository")

	removeDefaults := NewPackRemoveConfig()
	packRemoveCmd.Flags().BoolP("global", "g", removeDefaults.Global, "Remove from global ~/.vuekb/packs instead of local ./.vuekb/packs")

	packCmd.AddCommand(packAddCmd)
	packCmd.AddCommand(packListCmd)
	packCmd.AddCommand(packRemoveCmd)
	rootCmd.AddCommand(packCmd)
}

func getPackAddConfigFromFlags(cmd *cobra.Command) *PackAddConfig {
	config := NewPackAddConfig()
	if global, err := cmd.Flags().GetBool("global"); err == nil {
		config.Global = global
	}
	if dir, err := cmd.Flags().GetString("dir"); err == nil && dir != "" {
		config.Dir = dir
	}
	return config
}

func getPackRemoveConfigFromFlags(cmd *cobra.Command) *PackRemoveConfig {
	config := NewPackRemoveConfig()
	if global, err := cmd.Flags().GetBool("global"); err == nil {
		config.Global = global
	}
	return config
}

func getPacksDir(global bool) (string, error) {
	if global {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to get user home directory")
		}
		return filepath.Join(homeDir, ".vuekb", "packs"), nil
	}
	return ".vuekb/packs", nil
}

func isGhCliInstalled() bool {
	_, err := exec.LookPath("gh")
	return err == nil
}

func isGhAuthenticated() bool {
	return exec.Command("gh", "auth", "status").Run() == nil
}

func addPackCmd(repo string, config *PackAddConfig) {
	if !isGhCliInstalled() {
		presenter.Error(errors.New("gh CLI is not installed"), "Please install the GitHub CLI (gh) to use this command")
		os.Exit(1)
	}

	if !isGhAuthenticated() {
		presenter.Error(errors.New("gh CLI is not authenticated"), "Please run 'gh auth login' to authenticate")
		os.Exit(1)
	}

	repoName, ref := parseRepoAndRef(repo)
	if strings.Count(repoName, "/") != 1 {
		presenter.Error(errors.Errorf("expected org/repo, got %q", repoName), "Invalid repository name")
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "vuekb-pack-*")
	if err != nil {
		presenter.Error(err, "Failed to create temporary directory")
		os.Exit(1)
	}
	defer os.RemoveAll(tmpDir)

	cloneArgs := []string{"repo", "clone", repoName, tmpDir}
	if ref != "" {
		cloneArgs = append(cloneArgs, "--", "--branch", ref, "--single-branch")
	}

	cmd := exec.Command("gh", cloneArgs...)
	if output, err := cmd.CombinedOutput(); err != nil {
		presenter.Error(errors.Wrapf(err, "output: %s", string(output)), "Failed to clone repository")
		os.Exit(1)
	}

	srcDir := filepath.Join(tmpDir, config.Dir)
	if _, err := os.Stat(srcDir); os.IsNotExist(err) {
		presenter.Error(errors.Errorf("no %s directory in %s", config.Dir, repoName), "No articles found in the repository")
		os.Exit(1)
	}

	articles, err := countArticles(srcDir)
	if err != nil {
		presenter.Error(err, "Failed to read pack articles")
		os.Exit(1)
	}
	if articles == 0 {
		presenter.Warning("No markdown articles found in the repository")
		return
	}

	packsDir, err := getPacksDir(config.Global)
	if err != nil {
		presenter.Error(err, "Failed to determine packs directory")
		os.Exit(1)
	}

	destDir := filepath.Join(packsDir, filepath.FromSlash(repoName), "skills")
	if _, err := os.Stat(destDir); err == nil {
		presenter.Error(errors.Errorf("pack '%s' is already installed", repoName), "Remove it first with 'vuekb pack remove'")
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(destDir), 0o755); err != nil {
		presenter.Error(err, "Failed to create packs directory")
		os.Exit(1)
	}

	if err := copyDir(srcDir, destDir); err != nil {
		presenter.Error(err, fmt.Sprintf("Failed to install pack '%s'", repoName))
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Installed pack '%s' (%d articles) to %s", repoName, articles, destDir))
}

func parseRepoAndRef(repo string) (string, string) {
	if idx := strings.LastIndex(repo, "@"); idx != -1 {
		return repo[:idx], repo[idx+1:]
	}
	return repo, ""
}

func countArticles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
			count++
		}
	}
	return count, nil
}

func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		destPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(destPath, info.Mode())
		}

		return copyFile(path, destPath)
	})
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// installedPacks returns org/repo names of packs under a packs directory.
func installedPacks(packsDir string) []string {
	var packs []string
	_ = filepath.Walk(packsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		if _, err := os.Stat(filepath.Join(path, "skills")); err != nil {
			return nil
		}
		if rel, err := filepath.Rel(packsDir, path); err == nil {
			packs = append(packs, filepath.ToSlash(rel))
		}
		return filepath.SkipDir
	})
	return packs
}

func listPacksCmd() {
	type packEntry struct {
		name     string
		location string
		articles int
	}
	var entries []packEntry

	locations := []struct {
		label  string
		global bool
	}{
		{"local", false},
		{"global", true},
	}
	for _, loc := range locations {
		packsDir, err := getPacksDir(loc.global)
		if err != nil {
			continue
		}
		for _, name := range installedPacks(packsDir) {
			n, _ := countArticles(filepath.Join(packsDir, filepath.FromSlash(name), "skills"))
			entries = append(entries, packEntry{name: name, location: loc.label, articles: n})
		}
	}

	if len(entries) == 0 {
		presenter.Info("No packs installed")
		return
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PACK\tLOCATION\tARTICLES")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", e.name, e.location, e.articles)
	}
	tw.Flush()
}

func removePackCmd(name string, config *PackRemoveConfig) {
	packsDir, err := getPacksDir(config.Global)
	if err != nil {
		presenter.Error(err, "Failed to determine packs directory")
		os.Exit(1)
	}

	packDir := filepath.Join(packsDir, filepath.FromSlash(name))
	if _, err := os.Stat(filepath.Join(packDir, "skills")); os.IsNotExist(err) {
		location := "local"
		if config.Global {
			location = "global"
		}
		presenter.Error(errors.Errorf("pack '%s' not found in %s packs directory", name, location), "Pack not found")
		os.Exit(1)
	}

	if err := os.RemoveAll(packDir); err != nil {
		presenter.Error(err, fmt.Sprintf("Failed to remove pack '%s'", name))
		os.Exit(1)
	}

	// Drop the org directory too when it holds nothing else.
	orgDir := filepath.Dir(packDir)
	if entries, err := os.ReadDir(orgDir); err == nil && len(entries) == 0 {
		_ = os.Remove(orgDir)
	}

	presenter.Success(fmt.Sprintf("Removed pack '%s' from %s", name, packDir))
}
