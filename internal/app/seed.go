package app

import (
	"context"

	"newshub/internal/model"
)

// SampleArticles is a fixed demo set for local development.
var SampleArticles = []model.Article{
	{
		Title:       "Breaking: AI Revolution Continues in 2025",
		Description: "Artificial intelligence continues to transform industries worldwide.",
		Content:     "Full article content here...",
		URL:         "https://example.com/ai-revolution-2025",
		Source:      "Tech News Daily",
		Category:    model.CategoryTechnology,
		PublishedAt: "2025-07-29T10:00:00Z",
		ImageURL:    "https://example.com/ai-image.jpg",
	},
	{
		Title:       "Global Markets React to Economic Indicators",
		Description: "Stock markets show mixed reactions to latest economic data.",
		Content:     "Full article content here...",
		URL:         "https://example.com/market-reaction",
		Source:      "Financial Times",
		Category:    model.CategoryBusiness,
		PublishedAt: "2025-07-29T09:30:00Z",
		ImageURL:    "https://example.com/market-image.jpg",
	},
	{
		Title:       "Major Sports Championship Begins",
		Description: "The biggest sporting event of the year kicks off today.",
		Content:     "Full article content here...",
		URL:         "https://example.com/sports-championship",
		Source:      "Sports Central",
		Category:    model.CategorySports,
		PublishedAt: "2025-07-29T08:00:00Z",
		ImageURL:    "https://example.com/sports-image.jpg",
	},
}

type inserter interface {
	Insert(ctx context.Context, article model.Article) (bool, error)
}

// Seed stores SampleArticles and reports how many were new.
func Seed(ctx context.Context, store inserter) (int, error) {
	saved := 0
	for _, a := range SampleArticles {
		inserted, err := store.Insert(ctx, a)
		if err != nil {
			return saved, err
		}
		if inserted {
			saved++
		}
	}
	return saved, nil
}
