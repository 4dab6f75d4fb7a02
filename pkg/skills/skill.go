// Package skills provides the vuekb skill reference corpus: independent
// markdown articles describing Vue best practices, gotchas, and conventions,
// each prefixed with YAML frontmatter (title, impact, type, tags). The
// builtin corpus ships embedded in the binary; additional articles are
// discovered from configured directories and installed packs.
package skills

import (
	"sort"

	"github.com/pkg/errors"
)

// SourceBuiltin marks skills loaded from the embedded corpus.
const SourceBuiltin = "builtin"

// Impact classifies how costly it is to ignore an article's guidance.
type Impact string

// Impact levels, from most to least severe.
const (
	ImpactCritical Impact = "critical"
	ImpactHigh     Impact = "high"
	ImpactMedium   Impact = "medium"
	ImpactLow      Impact = "low"
)

// ParseImpact validates and returns an impact level.
func ParseImpact(s string) (Impact, error) {
	switch Impact(s) {
	case ImpactCritical, ImpactHigh, ImpactMedium, ImpactLow:
		return Impact(s), nil
	}
	return "", errors.Errorf("invalid impact %q (want critical, high, medium, or low)", s)
}

// Rank returns the severity rank of the impact, higher is more severe.
func (i Impact) Rank() int {
	switch i {
	case ImpactCritical:
		return 4
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	case ImpactLow:
		return 1
	}
	return 0
}

// Type classifies what kind of guidance an article carries.
type Type string

// Article types.
const (
	TypeGotcha     Type = "gotcha"
	TypePattern    Type = "pattern"
	TypeConvention Type = "convention"
	TypeCapability Type = "capability"
)

// ParseType validates and returns an article type.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeGotcha, TypePattern, TypeConvention, TypeCapability:
		return Type(s), nil
	}
	return "", errors.Errorf("invalid type %q (want gotcha, pattern, convention, or capability)", s)
}

// Skill represents a loaded reference article with its metadata.
type Skill struct {
	Slug    string   // Filename without extension, pack-prefixed for installed packs
	Title   string   // Unique human-readable title from frontmatter
	Impact  Impact   // Severity of ignoring the guidance
	Type    Type     // Kind of guidance
	Tags    []string // Topic tags, lowercase kebab-case
	Content string   // Markdown body without frontmatter
	Path    string   // Path the article was loaded from
	Source  string   // SourceBuiltin or the directory it came from
}

// Metadata represents the YAML frontmatter of a reference article.
type Metadata struct {
	Title  string   `yaml:"title"`
	Impact string   `yaml:"impact"`
	Type   string   `yaml:"type"`
	Tags   []string `yaml:"tags"`
}

// HasTag reports whether the skill carries the exact tag.
func (s *Skill) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SortedSlugs returns the slugs of the given skills in lexical order.
func SortedSlugs(skills map[string]*Skill) []string {
	slugs := make([]string, 0, len(skills))
	for slug := range skills {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// TagCounts returns every tag in the corpus with the number of skills carrying it.
func TagCounts(skills map[string]*Skill) map[string]int {
	counts := make(map[string]int)
	for _, skill := range skills {
		for _, tag := range skill.Tags {
			counts[tag]++
		}
	}
	return counts
}
