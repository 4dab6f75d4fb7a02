// Package export renders the skill reference corpus into a single document
// for LLM or offline consumption.
package export

import (
	"encoding/json"
	"io"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/vuekb/vuekb/pkg/skills"
)

// Format selects the bundle output format
type Format string

// Supported bundle formats.
const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatMarkdown, FormatJSON:
		return Format(s), nil
	}
	return "", errors.Errorf("invalid export format %q (want markdown or json)", s)
}

// Options configures a bundle
type Options struct {
	Format Format
	Title  string // bundle heading, markdown only
}

// DefaultTitle is used when no bundle title is given.
const DefaultTitle = "Vue skill reference"

const markdownTemplate = `# {{ .Title }}

{{ len .Skills }} reference articles. Impact levels: critical, high, medium, low.

## Contents

{{ range .Skills -}}
- {{ .Title }} ({{ .Type }}, {{ .Impact }} impact; tags: {{ join .Tags ", " }})
{{ end }}
{{- range .Skills }}
---

{{ .Content }}
{{ end -}}
`

type templateData struct {
	Title  string
	Skills []*skills.Skill
}

// Bundle writes the corpus as a single document in the configured format.
// Articles are ordered by slug so output is deterministic.
func Bundle(w io.Writer, corpus map[string]*skills.Skill, opts Options) error {
	ordered := make([]*skills.Skill, 0, len(corpus))
	for _, slug := range skills.SortedSlugs(corpus) {
		ordered = append(ordered, corpus[slug])
	}

	switch opts.Format {
	case FormatJSON:
		return bundleJSON(w, ordered)
	case FormatMarkdown, "":
		return bundleMarkdown(w, ordered, opts)
	default:
		return errors.Errorf("invalid export format %q", opts.Format)
	}
}

func bundleMarkdown(w io.Writer, ordered []*skills.Skill, opts Options) error {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	tmpl, err := template.New("bundle").Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(markdownTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to parse bundle template")
	}

	err = tmpl.Execute(w, templateData{Title: title, Skills: ordered})
	return errors.Wrap(err, "failed to render bundle")
}

type jsonSkill struct {
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Impact  string   `json:"impact"`
	Type    string   `json:"type"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
}

func bundleJSON(w io.Writer, ordered []*skills.Skill) error {
	out := make([]jsonSkill, 0, len(ordered))
	for _, s := range ordered {
		out = append(out, jsonSkill{
			Slug:    s.Slug,
			Title:   s.Title,
			Impact:  string(s.Impact),
			Type:    string(s.Type),
			Tags:    s.Tags,
			Content: s.Content,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(out), "failed to encode bundle")
}
