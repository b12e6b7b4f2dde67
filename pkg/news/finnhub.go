package news

import (
	"context"
	"net/http"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"newshub/internal/model"
)

// FinnHub only publishes market news, so it serves the business category
// and nothing else.
var finnhubCategories = map[model.Category]string{
	model.CategoryBusiness: "general",
}

type FinnHubAdapter struct {
	name   string
	client *finnhub.DefaultApiService
}

func NewFinnHubAdapter(cfg Config) *FinnHubAdapter {
	fcfg := finnhub.NewConfiguration()
	fcfg.AddDefaultHeader("X-Finnhub-Token", cfg.APIKey)
	fcfg.HTTPClient = &http.Client{Timeout: cfg.timeout()}
	if cfg.Endpoint != "" {
		fcfg.Servers = finnhub.ServerConfigurations{{URL: cfg.Endpoint}}
	}

	return &FinnHubAdapter{
		name:   cfg.nameOr("finnhub"),
		client: finnhub.NewAPIClient(fcfg).DefaultApi,
	}
}

func (c *FinnHubAdapter) Name() string {
	return c.name
}

func (c *FinnHubAdapter) Fetch(ctx context.Context, category model.Category) ([]model.Article, error) {
	upstream, ok := finnhubCategories[category]
	if !ok {
		return []model.Article{}, nil
	}

	res, _, err := c.client.MarketNews(ctx).Category(upstream).Execute()
	if err != nil {
		return nil, &FetchError{Source: c.Name(), Category: category, Err: err}
	}

	articles := make([]model.Article, 0, len(res))
	for _, news := range res {
		if news.Url == nil || *news.Url == "" {
			continue
		}

		a := model.Article{
			URL:      *news.Url,
			Category: category,
		}

		if news.Headline != nil {
			a.Title = *news.Headline
		}

		if news.Summary != nil {
			a.Description = *news.Summary
		}

		if news.Source != nil {
			a.Source = *news.Source
		}

		if news.Datetime != nil {
			a.PublishedAt = time.Unix(*news.Datetime, 0).UTC().Format(time.RFC3339)
		}

		if news.Image != nil {
			a.ImageURL = *news.Image
		}

		articles = append(articles, a)
	}

	return articles, nil
}
