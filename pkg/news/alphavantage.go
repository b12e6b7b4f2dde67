package news

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"newshub/internal/model"
)

const alphaVantageEndpoint = "https://www.alphavantage.co/query"

// Alpha Vantage filters NEWS_SENTIMENT by topic; categories without a
// matching topic are not served.
var alphaVantageTopics = map[model.Category]string{
	model.CategoryBusiness:   "financial_markets",
	model.CategoryTechnology: "technology",
	model.CategoryHealth:     "life_sciences",
	model.CategoryPolitics:   "economy_fiscal",
}

// ErrRateLimited is returned when Alpha Vantage answers 200 with a quota
// notice instead of a feed.
var ErrRateLimited = errors.New("provider rate limit reached")

type AlphaVantageAdapter struct {
	cfg        Config
	httpClient *http.Client
}

func NewAlphaVantageAdapter(cfg Config) *AlphaVantageAdapter {
	if cfg.Endpoint == "" {
		cfg.Endpoint = alphaVantageEndpoint
	}
	return &AlphaVantageAdapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.timeout()},
	}
}

func (c *AlphaVantageAdapter) Name() string {
	return c.cfg.nameOr("alphavantage")
}

func (c *AlphaVantageAdapter) Fetch(ctx context.Context, category model.Category) ([]model.Article, error) {
	topic, ok := alphaVantageTopics[category]
	if !ok {
		return []model.Article{}, nil
	}

	params := url.Values{}
	params.Set("function", "NEWS_SENTIMENT")
	params.Set("topics", topic)
	params.Set("sort", "LATEST")
	params.Set("limit", strconv.Itoa(c.cfg.pageSize()))
	params.Set("apikey", c.cfg.APIKey)

	var raw avResponse
	if err := getJSON(ctx, c.httpClient, c.cfg.Endpoint+"?"+params.Encode(), &raw); err != nil {
		return nil, &FetchError{Source: c.Name(), Category: category, Err: err}
	}
	if raw.Feed == nil && (raw.Information != "" || raw.Note != "") {
		return nil, &FetchError{Source: c.Name(), Category: category, Err: ErrRateLimited}
	}

	articles := make([]model.Article, 0, len(raw.Feed))
	for _, item := range raw.Feed {
		if item.URL == "" {
			continue
		}

		a := model.Article{
			Title:       item.Title,
			Description: item.Summary,
			URL:         item.URL,
			Source:      item.Source,
			Category:    category,
			ImageURL:    item.BannerImage,
		}

		if publishedAt, err := time.Parse("20060102T150405", item.TimePublished); err == nil {
			a.PublishedAt = publishedAt.UTC().Format(time.RFC3339)
		}

		articles = append(articles, a)
	}

	return articles, nil
}

type avResponse struct {
	Feed        []avFeedItem `json:"feed"`
	Information string       `json:"Information"`
	Note        string       `json:"Note"`
}

type avFeedItem struct {
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	URL           string `json:"url"`
	Source        string `json:"source"`
	BannerImage   string `json:"banner_image"`
	TimePublished string `json:"time_published"`
}
