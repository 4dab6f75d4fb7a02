package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCorpus(t *testing.T) {
	discovery, err := NewDiscovery(WithBuiltin())
	require.NoError(t, err)

	corpus, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	require.NotEmpty(t, corpus)

	// Every embedded article must carry complete, valid frontmatter.
	for slug, skill := range corpus {
		assert.NotEmpty(t, skill.Title, "article %s has no title", slug)
		assert.NotEmpty(t, skill.Tags, "article %s has no tags", slug)
		assert.NotEmpty(t, skill.Content, "article %s has no body", slug)
		assert.Equal(t, SourceBuiltin, skill.Source)

		_, err := ParseImpact(string(skill.Impact))
		assert.NoError(t, err, "article %s", slug)
		_, err = ParseType(string(skill.Type))
		assert.NoError(t, err, "article %s", slug)
	}

	titles := make(map[string]string)
	for slug, skill := range corpus {
		if first, dup := titles[skill.Title]; dup {
			t.Errorf("articles %s and %s share the title %q", first, slug, skill.Title)
		}
		titles[skill.Title] = slug
	}
}

func TestBuiltinWellKnownArticles(t *testing.T) {
	discovery, err := NewDiscovery(WithBuiltin())
	require.NoError(t, err)

	corpus, err := discovery.DiscoverSkills()
	require.NoError(t, err)

	for _, slug := range []string{"reactivity-loss", "ref-vs-reactive", "ssr-hydration-mismatch"} {
		assert.Contains(t, corpus, slug)
	}

	loss := corpus["reactivity-loss"]
	assert.Equal(t, ImpactCritical, loss.Impact)
	assert.Equal(t, TypeGotcha, loss.Type)
}
