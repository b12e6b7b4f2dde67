// Package app opens the stores and builds the pipeline shared by the
// newshub binaries.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"newshub/db"
	"newshub/internal/config"
	"newshub/internal/ingest"
	"newshub/internal/query"
	"newshub/internal/repository"
	"newshub/pkg/news"
)

type App struct {
	Config *config.Config
	DB     *sql.DB
	Store  *repository.ArticleRepository
	Query  *query.Service
	// Redis is nil when redis.url is not configured.
	Redis *redis.Client
}

// Open connects to the article store (creating its schema) and, if
// configured, to Redis.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	conn, err := db.Connect(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to DB: %w", err)
	}

	store := repository.NewArticleRepository(conn, repository.DialectFor(cfg.Database.Driver))
	if err := store.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}

	a := &App{
		Config: cfg,
		DB:     conn,
		Store:  store,
		Query:  query.NewService(store),
	}

	if cfg.Redis.URL != "" {
		client, err := db.ConnectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("error connecting to Redis: %w", err)
		}
		a.Redis = client
	}

	return a, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	errs = append(errs, a.DB.Close())
	return errors.Join(errs...)
}

// Pipeline builds an ingestion pipeline over the enabled sources. With Redis
// configured, runs take the shared lock and new URLs are queued.
func (a *App) Pipeline(registry *news.Registry) (*ingest.Pipeline, error) {
	adapters, err := BuildAdapters(a.Config, registry)
	if err != nil {
		return nil, err
	}

	categories, err := a.Config.CategoryList()
	if err != nil {
		return nil, err
	}

	opts := ingest.Options{
		Pause:        a.Config.PauseDuration(),
		FetchTimeout: a.Config.FetchTimeoutDuration(),
		Logger:       slog.Default(),
	}
	if a.Redis != nil {
		opts.Lock = ingest.NewRedisLock(a.Redis, db.RunLockKey, a.Config.LockTTL())
		opts.Notifier = ingest.NewRedisNotifier(a.Redis, db.IngestedQueueKey)
	}

	return ingest.New(a.Store, adapters, categories, opts), nil
}

// BuildAdapters instantiates an adapter per enabled source, in config order.
// Sources whose API key is unset are skipped with a warning.
func BuildAdapters(cfg *config.Config, registry *news.Registry) ([]news.Adapter, error) {
	var adapters []news.Adapter
	for _, src := range cfg.EnabledSources() {
		key := src.APIKey()
		if key == "" {
			slog.Warn("news source API key not configured, skipping", "source", src.Name, "env", src.APIKeyEnv)
			continue
		}

		adapter, err := registry.New(src.Type, news.Config{
			Name:     src.Name,
			Endpoint: src.Endpoint,
			APIKey:   key,
			Country:  src.Country,
			Language: src.Language,
			PageSize: src.PageSize,
			Timeout:  cfg.FetchTimeoutDuration(),
		})
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}
		adapters = append(adapters, adapter)
	}

	if len(adapters) == 0 {
		slog.Warn("no news source API keys configured")
	}
	return adapters, nil
}
