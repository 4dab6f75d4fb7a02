package webui

import (
	"bytes"
	htmltemplate "html/template"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/vuekb/vuekb/pkg/logger"
)

var pageTemplate = htmltemplate.Must(htmltemplate.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ .Title }} · vuekb</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>
body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.6; color: #213547; }
pre { background: #f6f8fa; padding: 0.8rem; border-radius: 6px; overflow-x: auto; }
code { font-family: ui-monospace, monospace; font-size: 0.92em; }
.meta { color: #5c6b77; font-size: 0.9rem; margin-bottom: 1.5rem; }
.meta .impact-critical { color: #c0262d; font-weight: 600; }
.meta .impact-high { color: #c2571a; font-weight: 600; }
a { color: #3451b2; }
</style>
</head>
<body>
<p><a href="/">← all articles</a></p>
<div class="meta">
<span class="impact-{{ .Impact }}">{{ .Impact }} impact</span>
· {{ .Type }}
· tags: {{ .Tags }}
</div>
{{ .Body }}
</body>
</html>
`))

type pageData struct {
	Title  string
	Impact string
	Type   string
	Tags   string
	Body   htmltemplate.HTML
}

// markdownRenderer renders article bodies to HTML. Corpus content is
// trusted (it ships with the binary or was installed deliberately), so
// raw HTML in articles is allowed through.
var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
)

// handleSkillPage serves a rendered HTML page for one article
func (s *Server) handleSkillPage(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	skill, exists := s.snapshot()[slug]
	if !exists {
		http.NotFound(w, r)
		return
	}

	var body bytes.Buffer
	if err := markdownRenderer.Convert([]byte(skill.Content), &body); err != nil {
		logger.G(r.Context()).WithError(err).WithField("slug", slug).Error("failed to render article")
		http.Error(w, "failed to render article", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pageData{
		Title:  skill.Title,
		Impact: string(skill.Impact),
		Type:   string(skill.Type),
		Tags:   strings.Join(skill.Tags, ", "),
		Body:   htmltemplate.HTML(body.String()),
	})
	if err != nil {
		logger.G(r.Context()).WithError(err).Error("failed to execute page template")
	}
}
