package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, h *ArticleHandler) {
	r.GET("/articles", h.GetArticles)
	r.GET("/categories", h.GetCategories)
	r.GET("/logs", h.GetLogs)
	r.GET("/health", h.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
