package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuekb/vuekb/pkg/skills"
)

func exportCorpus() map[string]*skills.Skill {
	return map[string]*skills.Skill{
		"reactivity-loss": {
			Slug: "reactivity-loss", Title: "Reactivity loss",
			Impact: skills.ImpactCritical, Type: skills.TypeGotcha,
			Tags:    []string{"reactivity", "refs"},
			Content: "# Reactivity loss\n\nDestructuring copies values.\n",
		},
		"composable-conventions": {
			Slug: "composable-conventions", Title: "Composable conventions",
			Impact: skills.ImpactHigh, Type: skills.TypeConvention,
			Tags:    []string{"composables"},
			Content: "# Composable conventions\n\nUse the use prefix.\n",
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"markdown", "json"} {
		format, err := ParseFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, Format(valid), format)
	}

	_, err := ParseFormat("html")
	assert.ErrorContains(t, err, "invalid export format")
}

func TestBundleMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Bundle(&buf, exportCorpus(), Options{Format: FormatMarkdown}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# "+DefaultTitle))
	assert.Contains(t, out, "2 reference articles")

	// TOC lists every article with its classification.
	assert.Contains(t, out, "- Reactivity loss (gotcha, critical impact; tags: reactivity, refs)")
	assert.Contains(t, out, "- Composable conventions (convention, high impact; tags: composables)")

	// Bodies follow, ordered by slug.
	assert.Contains(t, out, "Destructuring copies values.")
	assert.Less(t,
		strings.Index(out, "# Composable conventions"),
		strings.Index(out, "# Reactivity loss\n"),
	)
}

func TestBundleMarkdownCustomTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Bundle(&buf, exportCorpus(), Options{Title: "Vue gotchas"}))
	assert.True(t, strings.HasPrefix(buf.String(), "# Vue gotchas"))
}

func TestBundleJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Bundle(&buf, exportCorpus(), Options{Format: FormatJSON}))

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)

	// Slug order is deterministic.
	assert.Equal(t, "composable-conventions", out[0]["slug"])
	assert.Equal(t, "reactivity-loss", out[1]["slug"])
	assert.Equal(t, "critical", out[1]["impact"])
	assert.Equal(t, []interface{}{"reactivity", "refs"}, out[1]["tags"])
}

func TestBundleEmptyCorpus(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Bundle(&buf, nil, Options{Format: FormatMarkdown}))
	assert.Contains(t, buf.String(), "0 reference articles")
}
