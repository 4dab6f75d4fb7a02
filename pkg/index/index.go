// Package index maintains the SQLite full-text search index over the skill
// reference corpus. The index is derived data: it is rebuilt wholesale from
// the discovered corpus and never edited in place.
package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/vuekb/vuekb/pkg/db"
	"github.com/vuekb/vuekb/pkg/skills"
)

const schema = `
CREATE TABLE IF NOT EXISTS skills (
	slug        TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	impact      TEXT NOT NULL,
	impact_rank INTEGER NOT NULL,
	type        TEXT NOT NULL,
	tags        TEXT NOT NULL,
	source      TEXT NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS skills_fts USING fts5(
	slug UNINDEXED,
	title,
	tags,
	body
);
`

// Index is a full-text search index over the reference corpus
type Index struct {
	db *sqlx.DB
}

// Open opens (or creates) the index database at the given path.
func Open(ctx context.Context, dbPath string) (*Index, error) {
	sqlDB, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "failed to create index schema")
	}

	return &Index{db: sqlDB}, nil
}

// OpenDefault opens the index at its default location.
func OpenDefault(ctx context.Context) (*Index, error) {
	dbPath, err := db.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return Open(ctx, dbPath)
}

// Close closes the underlying database
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Rebuild repopulates the index from the given corpus in one transaction.
func (ix *Index) Rebuild(ctx context.Context, corpus map[string]*skills.Skill) error {
	tx, err := ix.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM skills"); err != nil {
		return errors.Wrap(err, "failed to clear skills table")
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM skills_fts"); err != nil {
		return errors.Wrap(err, "failed to clear search table")
	}

	for _, slug := range skills.SortedSlugs(corpus) {
		skill := corpus[slug]
		tags := strings.Join(skill.Tags, ",")

		_, err := tx.ExecContext(ctx,
			`INSERT INTO skills (slug, title, impact, impact_rank, type, tags, source)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			skill.Slug, skill.Title, string(skill.Impact), skill.Impact.Rank(),
			string(skill.Type), tags, skill.Source)
		if err != nil {
			return errors.Wrapf(err, "failed to index skill %q", slug)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO skills_fts (slug, title, tags, body) VALUES (?, ?, ?, ?)`,
			skill.Slug, skill.Title, strings.Join(skill.Tags, " "), skill.Content)
		if err != nil {
			return errors.Wrapf(err, "failed to index skill body %q", slug)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit index rebuild")
}

// Count returns the number of indexed articles
func (ix *Index) Count(ctx context.Context) (int, error) {
	var count int
	if err := ix.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM skills"); err != nil {
		return 0, errors.Wrap(err, "failed to count indexed skills")
	}
	return count, nil
}

// Hit is a single search result
type Hit struct {
	Slug    string  `db:"slug" json:"slug"`
	Title   string  `db:"title" json:"title"`
	Impact  string  `db:"impact" json:"impact"`
	Type    string  `db:"type" json:"type"`
	Tags    string  `db:"tags" json:"tags"`
	Source  string  `db:"source" json:"source"`
	Snippet string  `db:"snippet" json:"snippet"`
	Rank    float64 `db:"rank" json:"-"`
}

// TagList returns the hit's tags as a slice
func (h Hit) TagList() []string {
	if h.Tags == "" {
		return nil
	}
	return strings.Split(h.Tags, ",")
}

// SearchOptions narrows a search
type SearchOptions struct {
	Tag       string        // exact tag the hit must carry
	Type      skills.Type   // article type, empty for any
	MinImpact skills.Impact // minimum impact level, empty for any
	Limit     int           // maximum hits, 0 for the default
}

// DefaultSearchLimit caps searches that don't specify their own limit.
const DefaultSearchLimit = 20

// Search runs a ranked full-text query with optional filters.
func (ix *Index) Search(ctx context.Context, query string, opts SearchOptions) ([]Hit, error) {
	match := buildMatchQuery(query)
	if match == "" {
		return nil, errors.New("empty search query")
	}

	sql := `SELECT s.slug, s.title, s.impact, s.type, s.tags, s.source,
		snippet(skills_fts, 3, '>>', '<<', '…', 12) AS snippet,
		bm25(skills_fts) AS rank
	FROM skills_fts
	JOIN skills s ON s.slug = skills_fts.slug
	WHERE skills_fts MATCH ?`
	args := []interface{}{match}

	if opts.Type != "" {
		sql += " AND s.type = ?"
		args = append(args, string(opts.Type))
	}
	if opts.MinImpact != "" {
		sql += " AND s.impact_rank >= ?"
		args = append(args, opts.MinImpact.Rank())
	}
	if opts.Tag != "" {
		sql += " AND (',' || s.tags || ',') LIKE ?"
		args = append(args, "%,"+opts.Tag+",%")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	sql += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	var hits []Hit
	if err := ix.db.SelectContext(ctx, &hits, sql, args...); err != nil {
		return nil, errors.Wrapf(err, "search failed for query %q", query)
	}

	return hits, nil
}

// buildMatchQuery turns free-form user input into an FTS5 match expression.
// Each whitespace-separated token becomes a quoted prefix term, so operator
// characters in the input cannot break the query syntax.
func buildMatchQuery(query string) string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		terms = append(terms, fmt.Sprintf(`"%s"*`, f))
	}
	return strings.Join(terms, " ")
}
