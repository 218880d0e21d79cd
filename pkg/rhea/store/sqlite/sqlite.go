package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/rhea/pkg/rhea/internalerr"
	"github.com/cognicore/rhea/pkg/rhea/lang"
	"github.com/cognicore/rhea/pkg/rhea/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens a SQLite database with WAL mode enabled. Use ":memory:"
// for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	dsn := path
	if path != ":memory:" {
		// busy_timeout is per connection, so it goes in the DSN.
		dsn = path + "?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &sqliteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist. haystack holds the
// lower-cased title, content and keyword blob so LIKE matching is
// case-insensitive beyond ASCII.
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS articles (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT UNIQUE NOT NULL,
	source TEXT NOT NULL,
	category TEXT,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	keywords TEXT,
	haystack TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source);

CREATE TABLE IF NOT EXISTS interactions (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT UNIQUE NOT NULL,
	session_id TEXT,
	input TEXT,
	response TEXT,
	language TEXT,
	route TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_language ON interactions(language);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// InsertArticle appends an article and returns it with its sequence set.
func (s *sqliteStore) InsertArticle(ctx context.Context, a store.Article) (store.Article, error) {
	a, err := store.PrepareArticle(a, s.now())
	if err != nil {
		return store.Article{}, err
	}

	const stmt = `
INSERT INTO articles (id, source, category, title, content, keywords, haystack, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING seq;
`
	err = s.db.QueryRowContext(ctx, stmt,
		a.ID,
		a.Source,
		a.Category,
		a.Title,
		a.Content,
		a.Keywords,
		store.Haystack(a),
		a.CreatedAt.Format(time.RFC3339Nano),
	).Scan(&a.Seq)
	if err != nil {
		return store.Article{}, fmt.Errorf("insert article: %w", err)
	}
	return a, nil
}

// MatchArticles returns up to limit articles containing term, oldest first.
func (s *sqliteStore) MatchArticles(ctx context.Context, term string, limit int) ([]store.Article, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = store.DefaultLimit
	}

	const q = `
SELECT seq, id, source, category, title, content, keywords, created_at
FROM articles
WHERE haystack LIKE ? ESCAPE '\'
ORDER BY seq ASC
LIMIT ?;
`
	return s.queryArticles(ctx, q, likePattern(term), limit)
}

// SearchArticles returns up to limit articles matching any query token,
// newest first.
func (s *sqliteStore) SearchArticles(ctx context.Context, query string, limit int) ([]store.Article, error) {
	tokens := store.SearchTokens(query)
	if len(tokens) == 0 {
		return s.RecentArticles(ctx, limit)
	}
	if limit <= 0 {
		limit = store.DefaultLimit
	}

	conds := make([]string, len(tokens))
	args := make([]any, 0, len(tokens)+1)
	for i, tok := range tokens {
		conds[i] = `haystack LIKE ? ESCAPE '\'`
		args = append(args, likePattern(tok))
	}
	args = append(args, limit)

	q := `
SELECT seq, id, source, category, title, content, keywords, created_at
FROM articles
WHERE ` + strings.Join(conds, " OR ") + `
ORDER BY seq DESC
LIMIT ?;
`
	return s.queryArticles(ctx, q, args...)
}

// RecentArticles returns the n most recently inserted articles.
func (s *sqliteStore) RecentArticles(ctx context.Context, n int) ([]store.Article, error) {
	if n <= 0 {
		n = store.DefaultLimit
	}
	const q = `
SELECT seq, id, source, category, title, content, keywords, created_at
FROM articles
ORDER BY seq DESC
LIMIT ?;
`
	return s.queryArticles(ctx, q, n)
}

func (s *sqliteStore) queryArticles(ctx context.Context, q string, args ...any) ([]store.Article, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var out []store.Article
	for rows.Next() {
		var (
			a         store.Article
			category  sql.NullString
			keywords  sql.NullString
			createdAt string
		)
		if err := rows.Scan(&a.Seq, &a.ID, &a.Source, &category, &a.Title, &a.Content, &keywords, &createdAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.Category = category.String
		a.Keywords = keywords.String
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			a.CreatedAt = t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AppendInteraction records a processed message.
func (s *sqliteStore) AppendInteraction(ctx context.Context, in store.Interaction) error {
	in = store.PrepareInteraction(in, s.now())

	const stmt = `
INSERT INTO interactions (id, session_id, input, response, language, route, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		in.ID,
		in.SessionID,
		in.Input,
		in.Response,
		string(in.Language),
		in.Route,
		in.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append interaction: %w", err)
	}
	return nil
}

// Stats implements store.Store.
func (s *sqliteStore) Stats(ctx context.Context) (store.Stats, error) {
	stats := store.NewStats()

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&stats.TotalQueries); err != nil {
		return stats, fmt.Errorf("count interactions: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&stats.TotalArticles); err != nil {
		return stats, fmt.Errorf("count articles: %w", err)
	}

	err := s.groupCount(ctx, `SELECT language, COUNT(*) FROM interactions GROUP BY language`, func(k string, n int) {
		stats.LanguageQueries[lang.Language(k)] = n
	})
	if err != nil {
		return stats, err
	}
	err = s.groupCount(ctx, `SELECT source, COUNT(*) FROM articles GROUP BY source`, func(k string, n int) {
		stats.SourceArticles[k] = n
	})
	return stats, err
}

func (s *sqliteStore) groupCount(ctx context.Context, q string, fn func(string, int)) error {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return fmt.Errorf("group count: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key sql.NullString
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scan group count: %w", err)
		}
		fn(key.String, n)
	}
	return rows.Err()
}

// likePattern wraps term in % wildcards, escaping LIKE metacharacters.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
