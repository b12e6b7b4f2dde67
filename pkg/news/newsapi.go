package news

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"newshub/internal/model"
)

const newsAPIEndpoint = "https://newsapi.org/v2/top-headlines"

type NewsAPIAdapter struct {
	cfg        Config
	httpClient *http.Client
}

func NewNewsAPIAdapter(cfg Config) *NewsAPIAdapter {
	if cfg.Endpoint == "" {
		cfg.Endpoint = newsAPIEndpoint
	}
	if cfg.Country == "" {
		cfg.Country = "us"
	}
	return &NewsAPIAdapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.timeout()},
	}
}

func (c *NewsAPIAdapter) Name() string {
	return c.cfg.nameOr("newsapi")
}

func (c *NewsAPIAdapter) Fetch(ctx context.Context, category model.Category) ([]model.Article, error) {
	params := url.Values{}
	params.Set("apiKey", c.cfg.APIKey)
	params.Set("category", string(category))
	params.Set("country", c.cfg.Country)
	params.Set("pageSize", strconv.Itoa(c.cfg.pageSize()))

	var raw newsAPIResponse
	if err := getJSON(ctx, c.httpClient, c.cfg.Endpoint+"?"+params.Encode(), &raw); err != nil {
		return nil, &FetchError{Source: c.Name(), Category: category, Err: err}
	}

	if raw.Status == "error" {
		return nil, &FetchError{Source: c.Name(), Category: category, Err: &StatusError{StatusCode: http.StatusOK, Body: raw.Code + ": " + raw.Message}}
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
			ImageURL:    item.URLToImage,
		})
	}

	return articles, nil
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source      newsAPISource `json:"source"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Content     string        `json:"content"`
	URL         string        `json:"url"`
	URLToImage  string        `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
}

type newsAPISource struct {
	Name string `json:"name"`
}
