package repository

import (
	"strconv"
	"strings"
)

// Dialect holds what differs between the SQL backends. Queries are written
// with '?' placeholders and rebound per dialect.
type Dialect struct {
	Name            string
	numbered        bool
	createArticles  string
	createLogs      string
	createIndexes   []string
	uniqueViolation func(error) bool
}

var Postgres = Dialect{
	Name:     "postgres",
	numbered: true,
	createArticles: `
		CREATE TABLE IF NOT EXISTS articles (
			id           BIGSERIAL PRIMARY KEY,
			title        TEXT NOT NULL DEFAULT '',
			description  TEXT NOT NULL DEFAULT '',
			content      TEXT NOT NULL DEFAULT '',
			url          TEXT NOT NULL UNIQUE,
			source       TEXT NOT NULL DEFAULT '',
			category     TEXT NOT NULL,
			published_at TEXT NOT NULL DEFAULT '',
			image_url    TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	createLogs: `
		CREATE TABLE IF NOT EXISTS ingestion_logs (
			id               BIGSERIAL PRIMARY KEY,
			timestamp        TIMESTAMPTZ NOT NULL,
			articles_fetched INTEGER NOT NULL CHECK (articles_fetched >= 0),
			status           TEXT NOT NULL
		)`,
	createIndexes: []string{
		`CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category, id DESC)`,
	},
	uniqueViolation: isPQUniqueViolation,
}

var SQLite = Dialect{
	Name: "sqlite",
	createArticles: `
		CREATE TABLE IF NOT EXISTS articles (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			title        TEXT NOT NULL DEFAULT '',
			description  TEXT NOT NULL DEFAULT '',
			content      TEXT NOT NULL DEFAULT '',
			url          TEXT NOT NULL UNIQUE,
			source       TEXT NOT NULL DEFAULT '',
			category     TEXT NOT NULL,
			published_at TEXT NOT NULL DEFAULT '',
			image_url    TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	createLogs: `
		CREATE TABLE IF NOT EXISTS ingestion_logs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        DATETIME NOT NULL,
			articles_fetched INTEGER NOT NULL CHECK (articles_fetched >= 0),
			status           TEXT NOT NULL
		)`,
	createIndexes: []string{
		`CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category, id DESC)`,
	},
	uniqueViolation: isSQLiteUniqueViolation,
}

// DialectFor maps a driver name to its dialect, defaulting to SQLite.
func DialectFor(driver string) Dialect {
	if driver == Postgres.Name {
		return Postgres
	}
	return SQLite
}

func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
