package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"newshub/internal/model"
	"newshub/internal/query"

	"github.com/gin-gonic/gin"
)

type ArticleQuerier interface {
	SearchArticles(ctx context.Context, category, text string, limit int) ([]model.Article, error)
	ListCategories() []model.Category
	ListLogs(ctx context.Context, limit int) ([]model.IngestionLogEntry, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type ArticleHandler struct {
	service ArticleQuerier
	health  HealthChecker
}

func NewArticleHandler(service ArticleQuerier, health HealthChecker) *ArticleHandler {
	return &ArticleHandler{service: service, health: health}
}

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	limit, ok := getQueryLimit(c, query.DefaultLimit)
	if !ok {
		return
	}

	articles, err := h.service.SearchArticles(c.Request.Context(), c.Query("category"), c.Query("q"), limit)
	if err != nil {
		writeError(c, "error fetching articles", err)
		return
	}

	c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListCategories())
}

func (h *ArticleHandler) GetLogs(c *gin.Context) {
	limit, ok := getQueryLimit(c, query.DefaultLogLimit)
	if !ok {
		return
	}

	logs, err := h.service.ListLogs(c.Request.Context(), limit)
	if err != nil {
		writeError(c, "error fetching ingestion logs", err)
		return
	}

	res := make([]LogEntryResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, toLogEntryResponse(l))
	}

	c.JSON(http.StatusOK, res)
}

func (h *ArticleHandler) GetHealth(c *gin.Context) {
	if err := h.health.Ping(c.Request.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func writeError(c *gin.Context, msg string, err error) {
	var cfgErr *query.ConfigurationError
	if errors.As(err, &cfgErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": cfgErr.Error()})
		return
	}

	slog.Error(msg, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
}

// getQueryLimit reads ?limit=, falling back to defaultValue when absent. A
// malformed value is answered with 400 and ok=false; range checks are left
// to the query service.
func getQueryLimit(c *gin.Context, defaultValue int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultValue, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid query parameter", "param", "limit", "value", raw, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return 0, false
	}

	return limit, true
}
