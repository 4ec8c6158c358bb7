package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casarom/salesapi/internal/service"
)

// SearchLogRepository records executed searches for later tuning of the
// fusion weights.
type SearchLogRepository struct {
	db dbtx
}

func NewSearchLogRepository(pool *pgxpool.Pool) *SearchLogRepository {
	return &SearchLogRepository{db: pool}
}

func (r *SearchLogRepository) CreateSearchLog(ctx context.Context, entry service.SearchLogEntry) (int64, error) {
	results, err := json.Marshal(entry.Results)
	if err != nil {
		return 0, fmt.Errorf("failed to encode search results: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx,
		`INSERT INTO search_logs (query, alpha, result_limit, duration_ms, results)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		entry.Query, entry.Alpha, entry.Limit, entry.DurationMs, results,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
