package service

import "context"

// SearchLogResult captures a single ranked result for logging.
type SearchLogResult struct {
	SKU   string  `json:"sku"`
	Score float64 `json:"score"`
}

// SearchLogEntry captures a search request and its outcome.
type SearchLogEntry struct {
	Query      string
	Alpha      float64
	Limit      int
	DurationMs int
	Results    []SearchLogResult
}

// SearchLogRepository persists search logs for relevance evaluation.
type SearchLogRepository interface {
	CreateSearchLog(ctx context.Context, entry SearchLogEntry) (int64, error)
}
