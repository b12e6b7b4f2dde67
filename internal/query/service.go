package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"newshub/internal/model"
)

const (
	DefaultLimit    = 100
	DefaultLogLimit = 20
	MaxLimit        = 500
	MaxSearchLength = 200
)

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidLimit    = errors.New("invalid limit")
	ErrInvalidSearch   = errors.New("invalid search text")
)

// ConfigurationError is the only error a caller should act on; it means the
// request itself was wrong.
type ConfigurationError struct {
	Field string
	Value any
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s=%v", e.Err, e.Field, e.Value)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

type Store interface {
	Query(ctx context.Context, category model.Category, limit int) ([]model.Article, error)
	Search(ctx context.Context, category model.Category, text string, limit int) ([]model.Article, error)
	ListLogs(ctx context.Context, limit int) ([]model.IngestionLogEntry, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListArticles returns stored articles, newest insertions first. An empty
// category lists every category.
func (s *Service) ListArticles(ctx context.Context, category string, limit int) ([]model.Article, error) {
	c, err := validateListing(category, limit)
	if err != nil {
		return nil, err
	}
	return s.store.Query(ctx, c, limit)
}

// SearchArticles is ListArticles narrowed to articles whose title or
// description contains text, ignoring case. Blank text lists everything.
func (s *Service) SearchArticles(ctx context.Context, category, text string, limit int) ([]model.Article, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.ListArticles(ctx, category, limit)
	}

	c, err := validateListing(category, limit)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(text) > MaxSearchLength {
		return nil, &ConfigurationError{Field: "q", Value: text, Err: ErrInvalidSearch}
	}
	return s.store.Search(ctx, c, text, limit)
}

func validateListing(category string, limit int) (model.Category, error) {
	if err := validateLimit(limit); err != nil {
		return "", err
	}
	if category == "" {
		return "", nil
	}

	c, err := model.ParseCategory(category)
	if err != nil {
		return "", &ConfigurationError{Field: "category", Value: category, Err: ErrInvalidCategory}
	}
	return c, nil
}

func (s *Service) ListCategories() []model.Category {
	return model.Categories()
}

func (s *Service) ListLogs(ctx context.Context, limit int) ([]model.IngestionLogEntry, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	return s.store.ListLogs(ctx, limit)
}

func validateLimit(limit int) error {
	if limit < 1 || limit > MaxLimit {
		return &ConfigurationError{Field: "limit", Value: limit, Err: ErrInvalidLimit}
	}
	return nil
}
