package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCorpus() map[string]*Skill {
	return map[string]*Skill{
		"reactivity-loss": {
			Slug: "reactivity-loss", Title: "Reactivity loss",
			Impact: ImpactCritical, Type: TypeGotcha,
			Tags: []string{"reactivity", "refs"},
		},
		"composable-conventions": {
			Slug: "composable-conventions", Title: "Composable conventions",
			Impact: ImpactHigh, Type: TypeConvention,
			Tags: []string{"composables", "conventions"},
		},
		"transition-hooks": {
			Slug: "transition-hooks", Title: "Transition hooks",
			Impact: ImpactLow, Type: TypeCapability,
			Tags: []string{"transitions", "animation"},
		},
	}
}

func TestFilterByTags(t *testing.T) {
	corpus := testCorpus()

	t.Run("exact tag", func(t *testing.T) {
		result, err := FilterByTags(corpus, []string{"refs"})
		require.NoError(t, err)
		assert.Len(t, result, 1)
		assert.Contains(t, result, "reactivity-loss")
	})

	t.Run("glob pattern", func(t *testing.T) {
		result, err := FilterByTags(corpus, []string{"co*"})
		require.NoError(t, err)
		assert.Len(t, result, 1)
		assert.Contains(t, result, "composable-conventions")
	})

	t.Run("multiple patterns union", func(t *testing.T) {
		result, err := FilterByTags(corpus, []string{"refs", "animation"})
		require.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("empty patterns return all", func(t *testing.T) {
		result, err := FilterByTags(corpus, nil)
		require.NoError(t, err)
		assert.Len(t, result, 3)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := FilterByTags(corpus, []string{"[unclosed"})
		assert.ErrorContains(t, err, "invalid tag pattern")
	})
}

func TestFilterByType(t *testing.T) {
	corpus := testCorpus()

	result := FilterByType(corpus, TypeGotcha)
	assert.Len(t, result, 1)
	assert.Contains(t, result, "reactivity-loss")

	assert.Empty(t, FilterByType(corpus, TypePattern))
}

func TestFilterByMinImpact(t *testing.T) {
	corpus := testCorpus()

	t.Run("high keeps critical and high", func(t *testing.T) {
		result := FilterByMinImpact(corpus, ImpactHigh)
		assert.Len(t, result, 2)
		assert.NotContains(t, result, "transition-hooks")
	})

	t.Run("low keeps everything", func(t *testing.T) {
		assert.Len(t, FilterByMinImpact(corpus, ImpactLow), 3)
	})

	t.Run("critical keeps only critical", func(t *testing.T) {
		result := FilterByMinImpact(corpus, ImpactCritical)
		assert.Len(t, result, 1)
		assert.Contains(t, result, "reactivity-loss")
	})
}

func TestFilterByAllowlist(t *testing.T) {
	corpus := testCorpus()

	t.Run("empty allowlist returns all", func(t *testing.T) {
		assert.Len(t, FilterByAllowlist(corpus, nil), 3)
	})

	t.Run("allowlist filters", func(t *testing.T) {
		result := FilterByAllowlist(corpus, []string{"reactivity-loss", "transition-hooks"})
		assert.Len(t, result, 2)
		assert.NotContains(t, result, "composable-conventions")
	})

	t.Run("unknown slugs are ignored", func(t *testing.T) {
		result := FilterByAllowlist(corpus, []string{"reactivity-loss", "unknown"})
		assert.Len(t, result, 1)
	})
}

func TestImpactRank(t *testing.T) {
	assert.Greater(t, ImpactCritical.Rank(), ImpactHigh.Rank())
	assert.Greater(t, ImpactHigh.Rank(), ImpactMedium.Rank())
	assert.Greater(t, ImpactMedium.Rank(), ImpactLow.Rank())
	assert.Greater(t, ImpactLow.Rank(), Impact("").Rank())
}

func TestParseImpact(t *testing.T) {
	for _, valid := range []string{"critical", "high", "medium", "low"} {
		impact, err := ParseImpact(valid)
		require.NoError(t, err)
		assert.Equal(t, Impact(valid), impact)
	}

	_, err := ParseImpact("severe")
	assert.ErrorContains(t, err, "invalid impact")
}

func TestParseType(t *testing.T) {
	for _, valid := range []string{"gotcha", "pattern", "convention", "capability"} {
		typ, err := ParseType(valid)
		require.NoError(t, err)
		assert.Equal(t, Type(valid), typ)
	}

	_, err := ParseType("tip")
	assert.ErrorContains(t, err, "invalid type")
}

func TestHasTag(t *testing.T) {
	skill := &Skill{Tags: []string{"reactivity", "refs"}}
	assert.True(t, skill.HasTag("refs"))
	assert.False(t, skill.HasTag("ssr"))
}

func TestTagCounts(t *testing.T) {
	counts := TagCounts(map[string]*Skill{
		"a": {Tags: []string{"reactivity", "refs"}},
		"b": {Tags: []string{"reactivity"}},
	})
	assert.Equal(t, 2, counts["reactivity"])
	assert.Equal(t, 1, counts["refs"])
}
