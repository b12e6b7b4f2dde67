package news

import (
	"context"
	"fmt"
	"time"

	"newshub/internal/model"
)

// Adapter translates one provider's payload into canonical articles.
// Implementations keep no state between calls and never retry.
type Adapter interface {
	Fetch(ctx context.Context, category model.Category) ([]model.Article, error)
	Name() string
}

// Config is what a provider needs at construction time.
type Config struct {
	Name     string
	Endpoint string
	APIKey   string
	Country  string
	Language string
	PageSize int
	Timeout  time.Duration
}

const (
	defaultPageSize = 20
	defaultTimeout  = 10 * time.Second
)

func (c Config) pageSize() int {
	if c.PageSize <= 0 {
		return defaultPageSize
	}
	return c.PageSize
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

func (c Config) nameOr(fallback string) string {
	if c.Name != "" {
		return c.Name
	}
	return fallback
}

type FetchError struct {
	Source   string
	Category model.Category
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s/%s: %v", e.Source, e.Category, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
