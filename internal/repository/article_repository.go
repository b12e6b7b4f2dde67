package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"newshub/internal/model"
)

type ArticleRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func NewArticleRepository(db *sql.DB, dialect Dialect) *ArticleRepository {
	return &ArticleRepository{
		db:      db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used to stamp ingestion log entries.
func (r *ArticleRepository) WithClock(now func() time.Time) *ArticleRepository {
	r.now = now
	return r
}

// EnsureSchema creates the tables and indexes if missing. Running it against
// an initialised database is a no-op.
func (r *ArticleRepository) EnsureSchema(ctx context.Context) error {
	stmts := append([]string{r.dialect.createArticles, r.dialect.createLogs}, r.dialect.createIndexes...)
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return &PersistenceError{Op: "ensure schema", Err: err}
		}
	}
	return nil
}

func (r *ArticleRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *ArticleRepository) Exists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, r.dialect.rebind(`
		SELECT EXISTS(SELECT 1 FROM articles WHERE url = ?)
	`), url).Scan(&exists)
	if err != nil {
		return false, &PersistenceError{Op: "exists", Err: err}
	}
	return exists, nil
}

// Insert stores the article unless its URL is already present. The
// uniqueness check and the write happen in one statement, so concurrent
// inserts of the same URL cannot both report true.
func (r *ArticleRepository) Insert(ctx context.Context, article model.Article) (bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, r.dialect.rebind(`
		INSERT INTO articles(title, description, content, url, source, category, published_at, image_url)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (url) DO NOTHING
		RETURNING id
	`), article.Title, article.Description, article.Content, article.URL, article.Source,
		string(article.Category), article.PublishedAt, article.ImageURL).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if r.dialect.uniqueViolation(err) {
		return false, nil
	}

	if err != nil {
		return false, &PersistenceError{Op: "insert", Err: err}
	}

	return true, nil
}

// Query returns the most recently inserted articles first. An empty category
// matches every category.
func (r *ArticleRepository) Query(ctx context.Context, category model.Category, limit int) ([]model.Article, error) {
	return r.queryArticles(ctx, category, "", limit)
}

// Search is Query restricted to articles whose title or description contains
// text, ignoring case.
func (r *ArticleRepository) Search(ctx context.Context, category model.Category, text string, limit int) ([]model.Article, error) {
	return r.queryArticles(ctx, category, text, limit)
}

func (r *ArticleRepository) queryArticles(ctx context.Context, category model.Category, text string, limit int) ([]model.Article, error) {
	query := `
		SELECT title, description, content, url, source, category, published_at, image_url
		FROM articles`
	var (
		where []string
		args  []any
	)

	if category != "" {
		where = append(where, `category = ?`)
		args = append(args, string(category))
	}
	if text != "" {
		pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
		where = append(where, `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, &PersistenceError{Op: "query articles", Err: err}
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		var a model.Article
		var category string
		err := rows.Scan(&a.Title, &a.Description, &a.Content, &a.URL, &a.Source, &category, &a.PublishedAt, &a.ImageURL)
		if err != nil {
			return nil, &PersistenceError{Op: "scan article", Err: err}
		}
		a.Category = model.Category(category)
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "query articles", Err: err}
	}

	return articles, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
