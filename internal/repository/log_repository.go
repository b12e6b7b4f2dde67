package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"newshub/internal/model"
)

// AppendLog records one ingestion run. The timestamp comes from the store's
// clock, not the caller.
func (r *ArticleRepository) AppendLog(ctx context.Context, articlesFetched int, status model.Status) (model.IngestionLogEntry, error) {
	entry := model.IngestionLogEntry{
		Timestamp:       r.now(),
		ArticlesFetched: articlesFetched,
		Status:          status,
	}

	err := r.db.QueryRowContext(ctx, r.dialect.rebind(`
		INSERT INTO ingestion_logs(timestamp, articles_fetched, status)
		VALUES(?, ?, ?)
		RETURNING id
	`), entry.Timestamp, entry.ArticlesFetched, string(entry.Status)).Scan(&entry.ID)
	if err != nil {
		return entry, &PersistenceError{Op: "append log", Err: err}
	}

	return entry, nil
}

func (r *ArticleRepository) ListLogs(ctx context.Context, limit int) ([]model.IngestionLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(`
		SELECT id, timestamp, articles_fetched, status
		FROM ingestion_logs
		ORDER BY id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, &PersistenceError{Op: "list logs", Err: err}
	}
	defer rows.Close()

	entries := []model.IngestionLogEntry{}
	for rows.Next() {
		var e model.IngestionLogEntry
		var ts dbTime
		var status string
		if err := rows.Scan(&e.ID, &ts, &e.ArticlesFetched, &status); err != nil {
			return nil, &PersistenceError{Op: "scan log", Err: err}
		}
		e.Timestamp = ts.Time
		e.Status = model.Status(status)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list logs", Err: err}
	}

	return entries, nil
}

func (r *ArticleRepository) Stats(ctx context.Context) (model.StoreStats, error) {
	var stats model.StoreStats

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&stats.Articles)
	if err != nil {
		return stats, &PersistenceError{Op: "count articles", Err: err}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(*)
		FROM articles
		GROUP BY category
		ORDER BY category
	`)
	if err != nil {
		return stats, &PersistenceError{Op: "count categories", Err: err}
	}
	defer rows.Close()

	stats.ByCategory = []model.CategoryCount{}
	for rows.Next() {
		var c model.CategoryCount
		var category string
		if err := rows.Scan(&category, &c.Count); err != nil {
			return stats, &PersistenceError{Op: "scan category count", Err: err}
		}
		c.Category = model.Category(category)
		stats.ByCategory = append(stats.ByCategory, c)
	}
	if err := rows.Err(); err != nil {
		return stats, &PersistenceError{Op: "count categories", Err: err}
	}

	logs, err := r.ListLogs(ctx, 1)
	if err != nil {
		return stats, err
	}
	if len(logs) > 0 {
		stats.LastRun = &logs[0]
	}

	return stats, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// dbTime scans timestamps that SQLite may hand back as text.
type dbTime struct {
	time.Time
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

var _ sql.Scanner = (*dbTime)(nil)

// ErrStoreUnavailable marks failures where the database itself cannot be
// reached, as opposed to a single rejected write.
var ErrStoreUnavailable = errors.New("article store unavailable")

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
