package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"newshub/internal/metrics"
	"newshub/internal/model"
	"newshub/pkg/news"
)

const (
	DefaultPause        = time.Second
	DefaultFetchTimeout = 10 * time.Second
)

// Store is the part of the article store the pipeline writes to.
type Store interface {
	Insert(ctx context.Context, article model.Article) (bool, error)
	AppendLog(ctx context.Context, articlesFetched int, status model.Status) (model.IngestionLogEntry, error)
	Ping(ctx context.Context) error
}

// Notifier is told about every newly stored article.
type Notifier interface {
	Notify(ctx context.Context, article model.Article) error
}

type Options struct {
	// Pause is the idle time between the end of one adapter call (and its
	// inserts) and the start of the next. Zero disables it.
	Pause        time.Duration
	FetchTimeout time.Duration
	Lock         RunLock
	Notifier     Notifier
	Logger       *slog.Logger
}

type Pipeline struct {
	store      Store
	adapters   []news.Adapter
	categories []model.Category
	opts       Options
	log        *slog.Logger

	mu sync.Mutex
}

// New builds a pipeline over adapters, called in the order given, and
// categories. A nil categories slice means every category.
func New(store Store, adapters []news.Adapter, categories []model.Category, opts Options) *Pipeline {
	if categories == nil {
		categories = model.Categories()
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		store:      store,
		adapters:   adapters,
		categories: categories,
		opts:       opts,
		log:        logger,
	}
}

// Result is a log entry plus what the run saw along the way.
type Result struct {
	model.IngestionLogEntry
	Fetches  int
	Failures int
	Skipped  bool
}

// Run fetches every (adapter, category) pair, stores new articles and
// appends one log entry. It never returns an error: fetch and write
// failures only shape the entry's status.
func (p *Pipeline) Run(ctx context.Context) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.opts.Lock != nil {
		release, err := p.opts.Lock.Acquire(ctx)
		if err != nil {
			p.log.Warn("ingestion run skipped", "error", err)
			return Result{
				IngestionLogEntry: model.IngestionLogEntry{Timestamp: time.Now().UTC(), Status: model.StatusFailure},
				Skipped:           true,
			}
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				p.log.Error("error releasing run lock", "error", err)
			}
		}()
	}

	started := time.Now()
	p.log.Info("starting ingestion run", "adapters", len(p.adapters), "categories", len(p.categories))

	r := p.collect(ctx)
	r.Status = deriveStatus(r.ArticlesFetched, r.Failures)

	entry, err := p.store.AppendLog(context.WithoutCancel(ctx), r.ArticlesFetched, r.Status)
	if err != nil {
		p.log.Error("error appending ingestion log", "error", err)
		entry = model.IngestionLogEntry{Timestamp: time.Now().UTC(), ArticlesFetched: r.ArticlesFetched, Status: r.Status}
	}
	r.IngestionLogEntry = entry

	metrics.RunsTotal.WithLabelValues(string(r.Status)).Inc()
	metrics.RunDuration.Observe(time.Since(started).Seconds())

	p.log.Info("ingestion run complete",
		"status", r.Status,
		"stored", r.ArticlesFetched,
		"fetches", r.Fetches,
		"failures", r.Failures,
		"duration", time.Since(started).String(),
	)
	return r
}

func (p *Pipeline) collect(ctx context.Context) Result {
	var r Result

	if err := p.store.Ping(ctx); err != nil {
		p.log.Error("article store unreachable, aborting run", "error", err)
		r.Failures++
		return r
	}

	for _, adapter := range p.adapters {
		source := adapter.Name()

		for _, category := range p.categories {
			if err := p.pause(ctx, r.Fetches > 0); err != nil {
				p.log.Error("ingestion run interrupted", "source", source, "category", category, "error", err)
				r.Failures++
				return r
			}

			r.Fetches++
			articles, err := p.fetch(ctx, adapter, category)
			if err != nil {
				var fetchErr *news.FetchError
				if !errors.As(err, &fetchErr) {
					err = &news.FetchError{Source: source, Category: category, Err: err}
				}
				p.log.Error("error fetching articles", "source", source, "category", category, "error", err)
				metrics.FetchesTotal.WithLabelValues(source, "error").Inc()
				r.Failures++
				continue
			}
			metrics.FetchesTotal.WithLabelValues(source, "ok").Inc()

			saved, duplicated, errs, storeDown := p.persist(ctx, source, articles)
			r.ArticlesFetched += saved
			r.Failures += errs

			p.log.Info("fetch complete", "source", source, "category", category,
				"fetched", len(articles), "saved", saved, "duplicated", duplicated, "errors", errs)

			if storeDown {
				p.log.Error("article store unreachable, aborting run", "source", source, "category", category)
				return r
			}
		}
	}

	return r
}

// pause blocks for Options.Pause before every call but the first. It returns
// early with the context's error once ctx is done.
func (p *Pipeline) pause(ctx context.Context, afterCall bool) error {
	if !afterCall || p.opts.Pause <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.opts.Pause)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *Pipeline) fetch(ctx context.Context, adapter news.Adapter, category model.Category) ([]model.Article, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
	defer cancel()
	return adapter.Fetch(fetchCtx, category)
}

// persist inserts articles one by one. A failed write skips that article; if
// the store stops answering pings the batch is abandoned.
func (p *Pipeline) persist(ctx context.Context, source string, articles []model.Article) (saved, duplicated, errs int, storeDown bool) {
	for _, a := range articles {
		inserted, err := p.store.Insert(ctx, a)
		if err != nil {
			p.log.Error("error saving article", "source", source, "url", a.URL, "error", err)
			metrics.PersistenceErrorsTotal.Inc()
			errs++

			if pingErr := p.store.Ping(ctx); pingErr != nil {
				return saved, duplicated, errs, true
			}
			continue
		}

		if !inserted {
			p.log.Debug("duplicate article skipped", "source", source, "url", a.URL)
			duplicated++
			continue
		}

		saved++
		metrics.ArticlesStoredTotal.WithLabelValues(source).Inc()

		if p.opts.Notifier != nil {
			if err := p.opts.Notifier.Notify(ctx, a); err != nil {
				p.log.Error("error notifying stored article", "source", source, "url", a.URL, "error", err)
			}
		}
	}
	return saved, duplicated, errs, false
}

func deriveStatus(stored, failures int) model.Status {
	switch {
	case failures == 0:
		return model.StatusSuccess
	case stored > 0:
		return model.StatusPartial
	default:
		return model.StatusFailure
	}
}
