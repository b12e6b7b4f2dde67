package news

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"newshub/internal/model"
)

const gnewsEndpoint = "https://gnews.io/api/v4/top-headlines"

// GNews calls politics "nation"; everything else matches our enumeration.
var gnewsCategories = map[model.Category]string{
	model.CategoryPolitics: "nation",
}

type GNewsAdapter struct {
	cfg        Config
	httpClient *http.Client
}

func NewGNewsAdapter(cfg Config) *GNewsAdapter {
	if cfg.Endpoint == "" {
		cfg.Endpoint = gnewsEndpoint
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &GNewsAdapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.timeout()},
	}
}

func (c *GNewsAdapter) Name() string {
	return c.cfg.nameOr("gnews")
}

func (c *GNewsAdapter) Fetch(ctx context.Context, category model.Category) ([]model.Article, error) {
	upstream := string(category)
	if mapped, ok := gnewsCategories[category]; ok {
		upstream = mapped
	}

	params := url.Values{}
	params.Set("token", c.cfg.APIKey)
	params.Set("category", upstream)
	params.Set("lang", c.cfg.Language)
	params.Set("max", strconv.Itoa(c.cfg.pageSize()))

	var raw gnewsResponse
	if err := getJSON(ctx, c.httpClient, c.cfg.Endpoint+"?"+params.Encode(), &raw); err != nil {
		return nil, &FetchError{Source: c.Name(), Category: category, Err: err}
	}

	articles := make([]model.Article, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		if item.URL == "" {
			slog.Debug("skipping article without url", "source", c.Name(), "title", item.Title)
			continue
		}

		articles = append(articles, model.Article{
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			URL:         item.URL,
			Source:      item.Source.Name,
			Category:    category,
			PublishedAt: item.PublishedAt,
			ImageURL:    item.Image,
		})
	}

	return articles, nil
}

type gnewsResponse struct {
	TotalArticles int            `json:"totalArticles"`
	Articles      []gnewsArticle `json:"articles"`
}

type gnewsArticle struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Content     string      `json:"content"`
	URL         string      `json:"url"`
	Image       string      `json:"image"`
	PublishedAt string      `json:"publishedAt"`
	Source      gnewsSource `json:"source"`
}

type gnewsSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
