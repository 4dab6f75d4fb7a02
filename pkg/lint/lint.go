// Package lint validates a skill reference corpus: every article must parse
// as markdown, carry complete frontmatter, and only link to articles and
// headings that exist.
package lint

import (
	"io/fs"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/vuekb/vuekb/pkg/skills"
)

// DefaultPattern matches every article in a corpus filesystem.
const DefaultPattern = "**/*.md"

var kebabTag = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Linter validates reference articles in a corpus filesystem.
type Linter struct {
	fsys    fs.FS
	pattern string
}

// LinterOption configures a Linter
type LinterOption func(*Linter)

// WithPattern sets the doublestar glob used to select article files
func WithPattern(pattern string) LinterOption {
	return func(l *Linter) {
		l.pattern = pattern
	}
}

// NewLinter creates a linter over the given corpus filesystem
func NewLinter(fsys fs.FS, opts ...LinterOption) *Linter {
	l := &Linter{
		fsys:    fsys,
		pattern: DefaultPattern,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lint checks every matching article and returns the aggregated report.
func (l *Linter) Lint() (*Report, error) {
	matches, err := doublestar.Glob(l.fsys, l.pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid file pattern %q", l.pattern)
	}

	report := NewReport()
	corpus := make(map[string]*article)

	for _, path := range matches {
		a := l.lintFile(path, report)
		if a != nil {
			corpus[path] = a
		}
	}

	l.lintCorpus(corpus, report)

	return report, nil
}

// article carries the per-file state needed for corpus-level checks
type article struct {
	path    string
	title   string
	anchors map[string]bool
	links   []link
}

type link struct {
	target   string // resolved corpus path, empty for same-file anchors
	fragment string
	raw      string
}

// lintFile runs the per-file checks and returns the parsed article, or nil
// when the file is too broken for corpus-level checks.
func (l *Linter) lintFile(path string, report *Report) *article {
	content, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		report.Add(path, SeverityError, errors.Wrap(err, "unreadable file").Error())
		return nil
	}

	src := string(content)

	frontmatter, body, ok := splitFrontmatter(src)
	if !ok {
		report.Add(path, SeverityError, "missing or unterminated frontmatter block")
		return nil
	}

	l.lintFrontmatter(path, frontmatter, report)

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader([]byte(body)))

	a := &article{
		path:    path,
		anchors: map[string]bool{},
	}

	var meta skills.Metadata
	if yaml.Unmarshal([]byte(frontmatter), &meta) == nil {
		a.title = meta.Title
	}

	bodyBytes := []byte(body)
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			a.anchors[anchorFor(headingText(node, bodyBytes))] = true
		case *ast.Link:
			l.collectLink(path, string(node.Destination), a, report)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		report.Add(path, SeverityError, errors.Wrap(err, "failed to walk markdown").Error())
		return nil
	}

	return a
}

// lintFrontmatter strictly decodes the YAML block and checks required fields
func (l *Linter) lintFrontmatter(path, frontmatter string, report *Report) {
	var meta skills.Metadata
	dec := yaml.NewDecoder(strings.NewReader(frontmatter))
	dec.KnownFields(true)
	if err := dec.Decode(&meta); err != nil {
		report.Add(path, SeverityError, errors.Wrap(err, "invalid frontmatter").Error())
		return
	}

	if strings.TrimSpace(meta.Title) == "" {
		report.Add(path, SeverityError, "frontmatter is missing required field 'title'")
	}

	if meta.Impact == "" {
		report.Add(path, SeverityError, "frontmatter is missing required field 'impact'")
	} else if _, err := skills.ParseImpact(meta.Impact); err != nil {
		report.Add(path, SeverityError, err.Error())
	}

	if meta.Type == "" {
		report.Add(path, SeverityError, "frontmatter is missing required field 'type'")
	} else if _, err := skills.ParseType(meta.Type); err != nil {
		report.Add(path, SeverityError, err.Error())
	}

	if len(meta.Tags) == 0 {
		report.Add(path, SeverityError, "frontmatter is missing required field 'tags'")
	}
	for _, tag := range meta.Tags {
		if !kebabTag.MatchString(tag) {
			report.Add(path, SeverityWarning, "tag "+quote(tag)+" is not lowercase kebab-case")
		}
	}
}

// collectLink records intra-corpus links for resolution; external links are ignored
func (l *Linter) collectLink(path, dest string, a *article, report *Report) {
	if dest == "" {
		report.Add(path, SeverityError, "link with empty destination")
		return
	}

	u, err := url.Parse(dest)
	if err != nil {
		report.Add(path, SeverityError, "unparseable link destination "+quote(dest))
		return
	}
	if u.Scheme != "" || u.Host != "" || strings.HasPrefix(dest, "/") {
		return
	}

	if u.Path == "" {
		// Same-file anchor link
		a.links = append(a.links, link{fragment: u.Fragment, raw: dest})
		return
	}

	target := resolveRelative(path, u.Path)
	a.links = append(a.links, link{target: target, fragment: u.Fragment, raw: dest})
}

// lintCorpus runs the cross-file checks: duplicate slugs, duplicate titles,
// and link resolution
func (l *Linter) lintCorpus(corpus map[string]*article, report *Report) {
	titles := make(map[string]string)
	slugs := make(map[string]string)
	for _, path := range sortedPaths(corpus) {
		a := corpus[path]
		slug := slugOf(path)
		if first, dup := slugs[slug]; dup {
			report.Add(path, SeverityError, "duplicate slug "+quote(slug)+" (also in "+first+")")
		} else {
			slugs[slug] = path
		}
		if a.title == "" {
			continue
		}
		if first, dup := titles[a.title]; dup {
			report.Add(path, SeverityError, "duplicate title "+quote(a.title)+" (also in "+first+")")
		} else {
			titles[a.title] = path
		}
	}

	for _, path := range sortedPaths(corpus) {
		a := corpus[path]
		for _, lk := range a.links {
			if lk.target == "" {
				if !a.anchors[lk.fragment] {
					report.Add(path, SeverityError, "anchor link "+quote(lk.raw)+" does not match any heading")
				}
				continue
			}

			targetArticle, exists := corpus[lk.target]
			if !exists {
				if _, err := fs.Stat(l.fsys, lk.target); err != nil {
					report.Add(path, SeverityError, "link "+quote(lk.raw)+" points to a missing file")
				}
				continue
			}

			if lk.fragment != "" && !targetArticle.anchors[lk.fragment] {
				report.Add(path, SeverityError, "link "+quote(lk.raw)+" points to a missing heading in "+lk.target)
			}
		}
	}
}

// splitFrontmatter separates the YAML block from the markdown body.
// Returns ok=false when the opening or closing delimiter is missing.
func splitFrontmatter(src string) (frontmatter, body string, ok bool) {
	if !strings.HasPrefix(src, "---") {
		return "", "", false
	}

	lines := strings.Split(src, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"),
				strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n"),
				true
		}
	}
	return "", "", false
}

// headingText extracts the plain text of a heading node
func headingText(h *ast.Heading, src []byte) string {
	var sb strings.Builder
	for c := h.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(src))
		} else if c.Type() == ast.TypeInline {
			// Emphasis, code spans and similar wrappers around heading text
			for g := c.FirstChild(); g != nil; g = g.NextSibling() {
				if t, ok := g.(*ast.Text); ok {
					sb.Write(t.Segment.Value(src))
				}
			}
		}
	}
	return sb.String()
}

var anchorStrip = regexp.MustCompile(`[^a-z0-9 -]`)

// anchorFor converts a heading to its GitHub-style anchor
func anchorFor(heading string) string {
	s := strings.ToLower(strings.TrimSpace(heading))
	s = anchorStrip.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "-")
	return s
}

// resolveRelative resolves a link target against the linking file's directory
func resolveRelative(from, target string) string {
	dir := ""
	if idx := strings.LastIndex(from, "/"); idx != -1 {
		dir = from[:idx+1]
	}

	joined := dir + target
	parts := strings.Split(joined, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, part)
		}
	}
	return strings.Join(out, "/")
}

func quote(s string) string {
	return "'" + s + "'"
}

// slugOf derives the article slug from its path, the basename without the
// .md extension. Articles in different directories can collide on it.
func slugOf(p string) string {
	return strings.TrimSuffix(path.Base(p), ".md")
}
