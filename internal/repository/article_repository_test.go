package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"newshub/db"
	"newshub/internal/model"

	"github.com/go-playground/assert/v2"
)

func testRepo(t *testing.T) *ArticleRepository {
	t.Helper()

	conn, err := db.ConnectSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	repo := NewArticleRepository(conn, SQLite)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return repo
}

func sampleArticle(url string, category model.Category) model.Article {
	return model.Article{
		Title:       "Title " + url,
		Description: "Description",
		Content:     "Content",
		URL:         url,
		Source:      "Tech News Daily",
		Category:    category,
		PublishedAt: "2025-07-29T10:00:00Z",
		ImageURL:    "https://example.com/ai-image.jpg",
	}
}

func mustInsert(t *testing.T, repo *ArticleRepository, a model.Article) bool {
	t.Helper()

	inserted, err := repo.Insert(context.Background(), a)
	if err != nil {
		t.Fatalf("insert %s: %v", a.URL, err)
	}
	return inserted
}

func mustQuery(t *testing.T, repo *ArticleRepository, category model.Category, limit int) []model.Article {
	t.Helper()

	got, err := repo.Query(context.Background(), category, limit)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	return got
}

func TestInsertAndQuery(t *testing.T) {
	repo := testRepo(t)

	a := sampleArticle("https://x/1", model.CategoryTechnology)
	assert.Equal(t, true, mustInsert(t, repo, a))

	got := mustQuery(t, repo, "", 10)
	if len(got) != 1 {
		t.Fatalf("got %d articles, want 1", len(got))
	}
	assert.Equal(t, a, got[0])
}

func TestInsertFirstWriteWins(t *testing.T) {
	repo := testRepo(t)

	first := sampleArticle("https://x/1", model.CategoryTechnology)
	mustInsert(t, repo, first)

	second := first
	second.Title = "A different title"
	second.Category = model.CategoryBusiness
	assert.Equal(t, false, mustInsert(t, repo, second))

	got := mustQuery(t, repo, "", 100)
	if len(got) != 1 {
		t.Fatalf("got %d articles, want 1", len(got))
	}
	assert.Equal(t, first.Title, got[0].Title)
	assert.Equal(t, model.CategoryTechnology, got[0].Category)
}

func TestInsertKeepsEmptyOptionalFields(t *testing.T) {
	repo := testRepo(t)

	mustInsert(t, repo, model.Article{URL: "https://x/bare", Category: model.CategoryGeneral})

	got := mustQuery(t, repo, "", 1)
	if len(got) != 1 {
		t.Fatalf("got %d articles, want 1", len(got))
	}
	assert.Equal(t, "", got[0].Title)
	assert.Equal(t, "", got[0].ImageURL)
}

func TestExists(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, "https://x/1")
	assert.Equal(t, nil, err)
	assert.Equal(t, false, ok)

	mustInsert(t, repo, sampleArticle("https://x/1", model.CategoryGeneral))

	ok, err = repo.Exists(ctx, "https://x/1")
	assert.Equal(t, nil, err)
	assert.Equal(t, true, ok)
}

func TestUniquenessUnderDuplicateAttempts(t *testing.T) {
	repo := testRepo(t)

	urls := []string{"https://x/1", "https://x/2", "https://x/1", "https://x/3", "https://x/2", "https://x/1"}
	inserted := 0
	for _, u := range urls {
		if mustInsert(t, repo, sampleArticle(u, model.CategoryGeneral)) {
			inserted++
		}
	}

	assert.Equal(t, 3, inserted)
	assert.Equal(t, 3, len(mustQuery(t, repo, "", 100)))
}

func TestConcurrentInsertSameURL(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
		errs    []error
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := sampleArticle("https://x/race", model.CategoryGeneral)
			a.Title = fmt.Sprintf("writer %d", i)
			ok, err := repo.Insert(ctx, a)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if ok {
				winners++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, len(errs))
	assert.Equal(t, 1, winners)
}

func TestQueryOrdersByInsertionRecency(t *testing.T) {
	repo := testRepo(t)

	for i := 1; i <= 5; i++ {
		mustInsert(t, repo, sampleArticle(fmt.Sprintf("https://x/%d", i), model.CategoryGeneral))
	}

	got := mustQuery(t, repo, "", 100)
	if len(got) != 5 {
		t.Fatalf("got %d articles, want 5", len(got))
	}
	for i, a := range got {
		assert.Equal(t, fmt.Sprintf("https://x/%d", 5-i), a.URL)
	}
}

func TestQueryFiltersAndLimits(t *testing.T) {
	repo := testRepo(t)

	mustInsert(t, repo, sampleArticle("https://x/1", model.CategorySports))
	mustInsert(t, repo, sampleArticle("https://x/2", model.CategoryHealth))
	mustInsert(t, repo, sampleArticle("https://x/3", model.CategorySports))

	got := mustQuery(t, repo, model.CategorySports, 100)
	assert.Equal(t, 2, len(got))
	for _, a := range got {
		assert.Equal(t, model.CategorySports, a.Category)
	}

	assert.Equal(t, 2, len(mustQuery(t, repo, "", 2)))
	assert.Equal(t, []model.Article{}, mustQuery(t, repo, model.CategoryPolitics, 100))
}

func TestSearch(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	ai := sampleArticle("https://x/1", model.CategoryTechnology)
	ai.Title = "Breaking: AI Revolution Continues in 2025"
	markets := sampleArticle("https://x/2", model.CategoryBusiness)
	markets.Title = "Global Markets React"
	markets.Description = "Stock markets show mixed reactions to the AI boom."
	sports := sampleArticle("https://x/3", model.CategorySports)
	sports.Title = "Major Sports Championship Begins"

	for _, a := range []model.Article{ai, markets, sports} {
		mustInsert(t, repo, a)
	}

	got, err := repo.Search(ctx, "", "ai", 10)
	assert.Equal(t, nil, err)
	if len(got) != 2 {
		t.Fatalf("got %d articles, want 2", len(got))
	}
	assert.Equal(t, "https://x/2", got[0].URL)
	assert.Equal(t, "https://x/1", got[1].URL)

	got, err = repo.Search(ctx, model.CategoryTechnology, "AI", 10)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(got))

	got, err = repo.Search(ctx, "", "championship", 10)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(got))

	got, err = repo.Search(ctx, "", "weather", 10)
	assert.Equal(t, nil, err)
	assert.Equal(t, []model.Article{}, got)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	pct := sampleArticle("https://x/1", model.CategoryBusiness)
	pct.Title = "Rates rise 5% overnight"
	plain := sampleArticle("https://x/2", model.CategoryBusiness)
	plain.Title = "Rates rise 50 points"
	mustInsert(t, repo, pct)
	mustInsert(t, repo, plain)

	got, err := repo.Search(ctx, "", "5%", 10)
	assert.Equal(t, nil, err)
	if len(got) != 1 {
		t.Fatalf("got %d articles, want 1", len(got))
	}
	assert.Equal(t, "https://x/1", got[0].URL)

	got, err = repo.Search(ctx, "", "rise_5", 10)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(got))
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	mustInsert(t, repo, sampleArticle("https://x/1", model.CategoryGeneral))

	assert.Equal(t, nil, repo.EnsureSchema(ctx))
	assert.Equal(t, nil, repo.EnsureSchema(ctx))

	assert.Equal(t, 1, len(mustQuery(t, repo, "", 10)))
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "durable.db")
	ctx := context.Background()

	conn, err := db.ConnectSQLite(path)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	repo := NewArticleRepository(conn, SQLite)
	assert.Equal(t, nil, repo.EnsureSchema(ctx))
	mustInsert(t, repo, sampleArticle("https://x/1", model.CategoryGeneral))
	assert.Equal(t, nil, conn.Close())

	conn, err = db.ConnectSQLite(path)
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	defer conn.Close()
	repo = NewArticleRepository(conn, SQLite)
	assert.Equal(t, nil, repo.EnsureSchema(ctx))

	ok, err := repo.Exists(ctx, "https://x/1")
	assert.Equal(t, nil, err)
	assert.Equal(t, true, ok)
}

func TestAppendLogAndList(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	stamp := time.Date(2025, 7, 29, 4, 0, 0, 0, time.UTC)
	repo.WithClock(func() time.Time { return stamp })

	first, err := repo.AppendLog(ctx, 3, model.StatusSuccess)
	assert.Equal(t, nil, err)
	assert.Equal(t, stamp, first.Timestamp)
	assert.NotEqual(t, int64(0), first.ID)

	stamp = stamp.Add(10 * time.Hour)
	_, err = repo.AppendLog(ctx, 0, model.StatusFailure)
	assert.Equal(t, nil, err)

	logs, err := repo.ListLogs(ctx, 10)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d log entries, want 2", len(logs))
	}
	assert.Equal(t, model.StatusFailure, logs[0].Status)
	assert.Equal(t, 0, logs[0].ArticlesFetched)
	assert.Equal(t, true, stamp.Equal(logs[0].Timestamp))
	assert.Equal(t, model.StatusSuccess, logs[1].Status)
	assert.Equal(t, 3, logs[1].ArticlesFetched)
}

func TestStats(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	stats, err := repo.Stats(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, stats.Articles)
	assert.Equal(t, nil, stats.LastRun)

	mustInsert(t, repo, sampleArticle("https://x/1", model.CategorySports))
	mustInsert(t, repo, sampleArticle("https://x/2", model.CategorySports))
	mustInsert(t, repo, sampleArticle("https://x/3", model.CategoryBusiness))
	_, err = repo.AppendLog(ctx, 3, model.StatusSuccess)
	assert.Equal(t, nil, err)

	stats, err = repo.Stats(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, stats.Articles)
	assert.Equal(t, []model.CategoryCount{
		{Category: model.CategoryBusiness, Count: 1},
		{Category: model.CategorySports, Count: 2},
	}, stats.ByCategory)
	if stats.LastRun == nil {
		t.Fatal("expected a last run")
	}
	assert.Equal(t, 3, stats.LastRun.ArticlesFetched)
}

func TestClosedStoreReportsErrors(t *testing.T) {
	conn, err := db.ConnectSQLite(filepath.Join(t.TempDir(), "closed.db"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	repo := NewArticleRepository(conn, SQLite)
	assert.Equal(t, nil, repo.EnsureSchema(context.Background()))
	assert.Equal(t, nil, conn.Close())

	_, err = repo.Insert(context.Background(), sampleArticle("https://x/1", model.CategoryGeneral))
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want *PersistenceError", err)
	}
	assert.Equal(t, "insert", perr.Op)

	err = repo.Ping(context.Background())
	assert.Equal(t, true, errors.Is(err, ErrStoreUnavailable))
}

func TestSQLiteUniqueViolation(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	insert := `INSERT INTO articles(url, category) VALUES(?, ?)`
	_, err := repo.db.ExecContext(ctx, insert, "https://x/1", "general")
	assert.Equal(t, nil, err)

	_, err = repo.db.ExecContext(ctx, insert, "https://x/1", "general")
	assert.NotEqual(t, nil, err)
	assert.Equal(t, true, isSQLiteUniqueViolation(err))

	_, err = repo.db.ExecContext(ctx, `INSERT INTO articles(url) VALUES(?)`, "https://x/2")
	assert.NotEqual(t, nil, err)
	assert.Equal(t, false, isSQLiteUniqueViolation(err))

	assert.Equal(t, false, isSQLiteUniqueViolation(errors.New("UNIQUE constraint failed: articles.url")))
	assert.Equal(t, false, isSQLiteUniqueViolation(nil))
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM articles WHERE category = ? ORDER BY id DESC LIMIT ?"
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t, "SELECT * FROM articles WHERE category = $1 ORDER BY id DESC LIMIT $2", Postgres.rebind(q))
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, "postgres", DialectFor("postgres").Name)
	assert.Equal(t, "sqlite", DialectFor("sqlite").Name)
	assert.Equal(t, "sqlite", DialectFor("").Name)
}
