package skills

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArticle(t *testing.T, dir, slug, title, impact, typ string, tags ...string) string {
	t.Helper()
	content := "---\ntitle: " + title + "\nimpact: " + impact + "\ntype: " + typ + "\ntags:\n"
	for _, tag := range tags {
		content += "  - " + tag + "\n"
	}
	content += "---\n\n# " + title + "\n\nBody for " + slug + ".\n"
	path := filepath.Join(dir, slug+".md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewDiscovery(t *testing.T) {
	t.Run("with default dirs", func(t *testing.T) {
		discovery, err := NewDiscovery()
		require.NoError(t, err)
		assert.NotNil(t, discovery)
		assert.Len(t, discovery.skillDirs, 2)
		assert.NotNil(t, discovery.builtin)
	})

	t.Run("with custom dirs", func(t *testing.T) {
		customDirs := []string{"/tmp/articles1", "/tmp/articles2"}
		discovery, err := NewDiscovery(WithSkillDirs(customDirs...))
		require.NoError(t, err)
		assert.Equal(t, customDirs, discovery.skillDirs)
		assert.Nil(t, discovery.builtin)
	})
}

func TestDiscoverSkills(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeArticle(t, tmpDir, "computed-caching", "Computed properties cache by dependency", "high", "pattern", "reactivity", "computed")
	writeArticle(t, tmpDir, "template-refs", "Template refs are null before mount", "medium", "gotcha", "lifecycle")

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	corpus, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	assert.Len(t, corpus, 2)

	skill, exists := corpus["computed-caching"]
	require.True(t, exists)
	assert.Equal(t, "computed-caching", skill.Slug)
	assert.Equal(t, "Computed properties cache by dependency", skill.Title)
	assert.Equal(t, ImpactHigh, skill.Impact)
	assert.Equal(t, TypePattern, skill.Type)
	assert.Equal(t, []string{"reactivity", "computed"}, skill.Tags)
	assert.Equal(t, path, skill.Path)
	assert.Equal(t, tmpDir, skill.Source)
	assert.Contains(t, skill.Content, "Body for computed-caching")
	assert.NotContains(t, skill.Content, "impact:")
}

func TestDiscoverSkillsSkipsInvalidFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeArticle(t, tmpDir, "good", "A valid article", "low", "convention", "style")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "no-frontmatter.md"), []byte("# Just a heading\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("not markdown"), 0o644))

	badImpact := "---\ntitle: Bad impact\nimpact: severe\ntype: gotcha\ntags:\n  - x\n---\n\nBody.\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "bad-impact.md"), []byte(badImpact), 0o644))

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	corpus, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	assert.Len(t, corpus, 1)
	assert.Contains(t, corpus, "good")
}

func TestDiscoveryPrecedence(t *testing.T) {
	tmpDir1 := t.TempDir()
	tmpDir2 := t.TempDir()
	writeArticle(t, tmpDir1, "shared", "From first directory", "high", "pattern", "reactivity")
	writeArticle(t, tmpDir2, "shared", "From second directory", "low", "gotcha", "ssr")

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir1, tmpDir2))
	require.NoError(t, err)

	corpus, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	assert.Len(t, corpus, 1)
	assert.Equal(t, "From first directory", corpus["shared"].Title)
}

func TestDiscoveryShadowsBuiltin(t *testing.T) {
	tmpDir := t.TempDir()
	writeArticle(t, tmpDir, "local-only", "A local article", "medium", "pattern", "components")
	writeArticle(t, tmpDir, "shadowed", "Local override", "high", "gotcha", "reactivity")

	builtin := fstest.MapFS{
		"shadowed.md": &fstest.MapFile{
			Data: []byte("---\ntitle: Builtin original\nimpact: low\ntype: convention\ntags:\n  - style\n---\n\nBuiltin body.\n"),
		},
		"builtin-only.md": &fstest.MapFile{
			Data: []byte("---\ntitle: Builtin only\nimpact: low\ntype: capability\ntags:\n  - tooling\n---\n\nBuiltin body.\n"),
		},
	}

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir), WithBuiltinFS(builtin))
	require.NoError(t, err)

	corpus, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	assert.Len(t, corpus, 3)
	assert.Equal(t, "Local override", corpus["shadowed"].Title)
	assert.Equal(t, SourceBuiltin, corpus["builtin-only"].Source)
}

func TestDiscoveryPackPrefix(t *testing.T) {
	tmpDir := t.TempDir()
	packSkills := filepath.Join(tmpDir, "packs", "acme", "vue-skills", "skills")
	require.NoError(t, os.MkdirAll(packSkills, 0o755))
	writeArticle(t, packSkills, "pinia-stores", "Pinia store conventions", "medium", "convention", "state")

	d := &Discovery{}
	d.addPackDirs(filepath.Join(tmpDir, "packs"))
	require.Len(t, d.packDirs, 1)
	assert.Equal(t, "acme/vue-skills/", d.packDirs[0].prefix)

	corpus, err := d.DiscoverSkills()
	require.NoError(t, err)
	assert.Len(t, corpus, 1)

	skill, exists := corpus["acme/vue-skills/pinia-stores"]
	require.True(t, exists)
	assert.Equal(t, "Pinia store conventions", skill.Title)
}

func TestGetSkill(t *testing.T) {
	tmpDir := t.TempDir()
	writeArticle(t, tmpDir, "watch-sources", "Watch sources must be reactive", "high", "gotcha", "watchers")

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	t.Run("existing article", func(t *testing.T) {
		skill, err := discovery.GetSkill("watch-sources")
		require.NoError(t, err)
		assert.Equal(t, "Watch sources must be reactive", skill.Title)
	})

	t.Run("unknown slug", func(t *testing.T) {
		skill, err := discovery.GetSkill("unknown")
		assert.Error(t, err)
		assert.Nil(t, skill)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestListSlugs(t *testing.T) {
	tmpDir := t.TempDir()
	for _, slug := range []string{"gamma", "alpha", "beta"} {
		writeArticle(t, tmpDir, slug, "Article "+slug, "low", "pattern", "misc")
	}

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	slugs, err := discovery.ListSlugs()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, slugs)
}

func TestSkillDirs(t *testing.T) {
	tmpDir := t.TempDir()
	packSkills := filepath.Join(tmpDir, "packs", "acme", "vue-skills", "skills")
	require.NoError(t, os.MkdirAll(packSkills, 0o755))
	writeArticle(t, packSkills, "x", "X", "low", "pattern", "misc")

	d := &Discovery{skillDirs: []string{"/tmp/a"}}
	d.addPackDirs(filepath.Join(tmpDir, "packs"))

	dirs := d.SkillDirs()
	require.Len(t, dirs, 2)
	assert.Equal(t, "/tmp/a", dirs[0])
	assert.Equal(t, packSkills, dirs[1])
}

func TestNonExistentDirectory(t *testing.T) {
	discovery, err := NewDiscovery(WithSkillDirs("/non/existent/path"))
	require.NoError(t, err)

	corpus, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	assert.Empty(t, corpus)
}

func TestParseSkill(t *testing.T) {
	t.Run("valid article", func(t *testing.T) {
		content := []byte("---\ntitle: Valid\nimpact: critical\ntype: gotcha\ntags:\n  - reactivity\n  - refs\n---\n\n# Valid\n\nBody.\n")
		skill, err := parseSkill(content)
		require.NoError(t, err)
		assert.Equal(t, "Valid", skill.Title)
		assert.Equal(t, ImpactCritical, skill.Impact)
		assert.Equal(t, TypeGotcha, skill.Type)
		assert.Equal(t, []string{"reactivity", "refs"}, skill.Tags)
	})

	t.Run("missing title", func(t *testing.T) {
		content := []byte("---\nimpact: high\ntype: pattern\ntags:\n  - x\n---\n\nBody.\n")
		_, err := parseSkill(content)
		assert.ErrorContains(t, err, "title is required")
	})

	t.Run("missing tags", func(t *testing.T) {
		content := []byte("---\ntitle: No tags\nimpact: high\ntype: pattern\n---\n\nBody.\n")
		_, err := parseSkill(content)
		assert.ErrorContains(t, err, "tag is required")
	})

	t.Run("invalid type", func(t *testing.T) {
		content := []byte("---\ntitle: Bad type\nimpact: high\ntype: tip\ntags:\n  - x\n---\n\nBody.\n")
		_, err := parseSkill(content)
		assert.ErrorContains(t, err, "invalid type")
	})

	t.Run("no frontmatter", func(t *testing.T) {
		_, err := parseSkill([]byte("# Heading only\n"))
		assert.Error(t, err)
	})
}

func TestExtractBodyContent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "with frontmatter",
			input:    "---\ntitle: test\n---\n\n# Content\n\nBody text.",
			expected: "# Content\n\nBody text.",
		},
		{
			name:     "no frontmatter",
			input:    "# Just content\nNo frontmatter.",
			expected: "# Just content\nNo frontmatter.",
		},
		{
			name:     "unterminated frontmatter",
			input:    "---\ntitle: test\n# No closing fence",
			expected: "---\ntitle: test\n# No closing fence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractBodyContent(tt.input))
		})
	}
}
