package handler

import (
	"time"

	"newshub/internal/model"
)

type LogEntryResponse struct {
	ID              int64  `json:"id"`
	Timestamp       string `json:"timestamp"`
	ArticlesFetched int    `json:"articles_fetched"`
	Status          string `json:"status"`
}

func toLogEntryResponse(e model.IngestionLogEntry) LogEntryResponse {
	return LogEntryResponse{
		ID:              e.ID,
		Timestamp:       e.Timestamp.UTC().Format(time.RFC3339),
		ArticlesFetched: e.ArticlesFetched,
		Status:          string(e.Status),
	}
}
