package skills

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

const skillFileExt = ".md"

// Discovery handles loading reference articles from the embedded corpus and
// configured directories.
type Discovery struct {
	builtin   fs.FS
	skillDirs []string
	packDirs  []packDirConfig
}

// packDirConfig represents an installed pack directory with its slug prefix
type packDirConfig struct {
	dir    string
	prefix string
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithSkillDirs sets custom skill directories
func WithSkillDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		d.skillDirs = dirs
		return nil
	}
}

// WithPacksDir registers installed packs under the given directory
func WithPacksDir(dir string) Option {
	return func(d *Discovery) error {
		d.addPackDirs(dir)
		return nil
	}
}

// WithBuiltin includes the embedded reference corpus
func WithBuiltin() Option {
	return func(d *Discovery) error {
		d.builtin = Builtin()
		return nil
	}
}

// WithBuiltinFS includes a custom filesystem in place of the embedded corpus
func WithBuiltinFS(fsys fs.FS) Option {
	return func(d *Discovery) error {
		d.builtin = fsys
		return nil
	}
}

// WithDefaultDirs initializes with the default lookup chain: repo-local
// articles, user-global articles, installed packs, then the builtin corpus.
func WithDefaultDirs() Option {
	return func(d *Discovery) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		d.skillDirs = []string{
			"./.vuekb/skills",                          // Repo-local (highest precedence)
			filepath.Join(homeDir, ".vuekb", "skills"), // User-global
		}

		d.packDirs = []packDirConfig{}
		d.addPackDirs("./.vuekb/packs")
		d.addPackDirs(filepath.Join(homeDir, ".vuekb", "packs"))

		d.builtin = Builtin()
		return nil
	}
}

// addPackDirs scans a packs directory and registers all pack skill directories.
// Supports nested org/repo directory structure.
func (d *Discovery) addPackDirs(packsDir string) {
	_ = filepath.Walk(packsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}

		skillsDir := filepath.Join(path, "skills")
		if _, err := os.Stat(skillsDir); err != nil {
			return nil
		}

		relPath, err := filepath.Rel(packsDir, path)
		if err != nil {
			return nil
		}

		packName := filepath.ToSlash(relPath)
		d.packDirs = append(d.packDirs, packDirConfig{
			dir:    skillsDir,
			prefix: packName + "/",
		})

		return filepath.SkipDir
	})
}

// NewDiscovery creates a new skill discovery instance
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}

	if len(opts) == 0 {
		if err := WithDefaultDirs()(d); err != nil {
			return nil, err
		}
	} else {
		for _, opt := range opts {
			if err := opt(d); err != nil {
				return nil, err
			}
		}
	}

	return d, nil
}

// SkillDirs returns the filesystem directories articles are discovered from,
// user directories first, then installed packs.
func (d *Discovery) SkillDirs() []string {
	dirs := make([]string, 0, len(d.skillDirs)+len(d.packDirs))
	dirs = append(dirs, d.skillDirs...)
	for _, pack := range d.packDirs {
		dirs = append(dirs, pack.dir)
	}
	return dirs
}

// DiscoverSkills loads all available articles. Earlier sources win on slug
// collisions, so user directories shadow packs and packs shadow the builtin
// corpus. Files that fail to parse are skipped; `vuekb lint` reports them.
func (d *Discovery) DiscoverSkills() (map[string]*Skill, error) {
	skills := make(map[string]*Skill)

	for _, dir := range d.skillDirs {
		d.discoverFromDir(dir, "", skills)
	}

	for _, pack := range d.packDirs {
		d.discoverFromDir(pack.dir, pack.prefix, skills)
	}

	if d.builtin != nil {
		d.discoverBuiltin(skills)
	}

	return skills, nil
}

// discoverFromDir loads articles from a directory with an optional slug prefix
func (d *Discovery) discoverFromDir(dir, prefix string, skills map[string]*Skill) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), skillFileExt) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		skill, err := parseSkill(content)
		if err != nil {
			continue
		}

		slug := prefix + strings.TrimSuffix(entry.Name(), skillFileExt)
		if _, exists := skills[slug]; !exists {
			skill.Slug = slug
			skill.Path = path
			skill.Source = dir
			skills[slug] = skill
		}
	}
}

// discoverBuiltin loads the embedded corpus
func (d *Discovery) discoverBuiltin(skills map[string]*Skill) {
	entries, err := fs.ReadDir(d.builtin, ".")
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), skillFileExt) {
			continue
		}

		content, err := fs.ReadFile(d.builtin, entry.Name())
		if err != nil {
			continue
		}

		skill, err := parseSkill(content)
		if err != nil {
			continue
		}

		slug := strings.TrimSuffix(entry.Name(), skillFileExt)
		if _, exists := skills[slug]; !exists {
			skill.Slug = slug
			skill.Path = entry.Name()
			skill.Source = SourceBuiltin
			skills[slug] = skill
		}
	}
}

// GetSkill returns a specific article by slug
func (d *Discovery) GetSkill(slug string) (*Skill, error) {
	skills, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	skill, exists := skills[slug]
	if !exists {
		return nil, errors.Errorf("skill '%s' not found", slug)
	}

	return skill, nil
}

// ListSlugs returns the slugs of all available articles
func (d *Discovery) ListSlugs() ([]string, error) {
	skills, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	return SortedSlugs(skills), nil
}

// parseSkill parses a reference article's frontmatter and body
func parseSkill(content []byte) (*Skill, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	title, _ := metaData["title"].(string)
	if title == "" {
		return nil, errors.New("title is required in frontmatter")
	}

	impactStr, _ := metaData["impact"].(string)
	impact, err := ParseImpact(impactStr)
	if err != nil {
		return nil, err
	}

	typeStr, _ := metaData["type"].(string)
	typ, err := ParseType(typeStr)
	if err != nil {
		return nil, err
	}

	tags := toStringSlice(metaData["tags"])
	if len(tags) == 0 {
		return nil, errors.New("at least one tag is required in frontmatter")
	}

	return &Skill{
		Title:   title,
		Impact:  impact,
		Type:    typ,
		Tags:    tags,
		Content: extractBodyContent(string(content)),
	}, nil
}

// toStringSlice converts the frontmatter tag list to a string slice
func toStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// extractBodyContent removes YAML frontmatter and returns the body
func extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}
