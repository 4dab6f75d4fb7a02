package skills

import (
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// FilterByTags returns skills carrying at least one tag matching any of the
// given glob patterns (e.g. "reactivity*", "ssr"). Empty patterns return the
// input unchanged.
func FilterByTags(skills map[string]*Skill, patterns []string) (map[string]*Skill, error) {
	if len(patterns) == 0 {
		return skills, nil
	}

	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid tag pattern %q", pattern)
		}
		globs = append(globs, g)
	}

	filtered := make(map[string]*Skill)
	for slug, skill := range skills {
		for _, tag := range skill.Tags {
			matched := false
			for _, g := range globs {
				if g.Match(tag) {
					matched = true
					break
				}
			}
			if matched {
				filtered[slug] = skill
				break
			}
		}
	}
	return filtered, nil
}

// FilterByType returns skills of the given article type.
func FilterByType(skills map[string]*Skill, typ Type) map[string]*Skill {
	filtered := make(map[string]*Skill)
	for slug, skill := range skills {
		if skill.Type == typ {
			filtered[slug] = skill
		}
	}
	return filtered
}

// FilterByMinImpact returns skills whose impact is at least as severe as the
// given level.
func FilterByMinImpact(skills map[string]*Skill, min Impact) map[string]*Skill {
	filtered := make(map[string]*Skill)
	for slug, skill := range skills {
		if skill.Impact.Rank() >= min.Rank() {
			filtered[slug] = skill
		}
	}
	return filtered
}

// FilterByAllowlist filters skills by an allowlist of slugs.
// If the allowlist is empty, all skills are returned.
func FilterByAllowlist(skills map[string]*Skill, allowed []string) map[string]*Skill {
	if len(allowed) == 0 {
		return skills
	}

	filtered := make(map[string]*Skill)
	for _, slug := range allowed {
		if skill, exists := skills[slug]; exists {
			filtered[slug] = skill
		}
	}
	return filtered
}
