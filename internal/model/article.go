package model

import (
	"fmt"
	"time"
)

type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryBusiness      Category = "business"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryScience       Category = "science"
	CategorySports        Category = "sports"
	CategoryTechnology    Category = "technology"
	CategoryPolitics      Category = "politics"
)

var categories = []Category{
	CategoryGeneral,
	CategoryBusiness,
	CategoryEntertainment,
	CategoryHealth,
	CategoryScience,
	CategorySports,
	CategoryTechnology,
	CategoryPolitics,
}

// Categories returns the fixed category enumeration in its canonical order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusPartial Status = "PARTIAL"
	StatusFailure Status = "FAILURE"
)

// Article is keyed by URL: two articles with the same URL are the same
// article, whatever their other fields say.
type Article struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	Category    Category `json:"category"`
	PublishedAt string   `json:"published_at"`
	ImageURL    string   `json:"image_url"`
}

type IngestionLogEntry struct {
	ID              int64     `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	ArticlesFetched int       `json:"articles_fetched"`
	Status          Status    `json:"status"`
}

type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

type StoreStats struct {
	Articles   int                `json:"articles"`
	ByCategory []CategoryCount    `json:"by_category"`
	LastRun    *IngestionLogEntry `json:"last_run,omitempty"`
}
