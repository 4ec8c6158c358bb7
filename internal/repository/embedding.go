package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/casarom/salesapi/internal/domain"
)

// EmbeddingRepository persists per-SKU vectors. Rows are written only by the
// offline generator; the vector scorer reads the full set.
type EmbeddingRepository struct {
	db dbtx
}

func NewEmbeddingRepository(pool *pgxpool.Pool) *EmbeddingRepository {
	return &EmbeddingRepository{db: pool}
}

// GetAll returns every stored embedding. The set is scanned in-process per
// query, so this is one round trip, not N.
func (r *EmbeddingRepository) GetAll(ctx context.Context) ([]*domain.Embedding, error) {
	rows, err := r.db.Query(ctx,
		`SELECT sku, vec, dims, model, updated_at FROM embeddings`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var embeddings []*domain.Embedding
	for rows.Next() {
		var e domain.Embedding
		var vec pgvector.Vector
		if err := rows.Scan(&e.SKU, &vec, &e.Dims, &e.Model, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.Vector = vec.Slice()
		embeddings = append(embeddings, &e)
	}
	return embeddings, rows.Err()
}

// Upsert writes or overwrites the embedding for one SKU.
func (r *EmbeddingRepository) Upsert(ctx context.Context, e *domain.Embedding) error {
	updatedAt := e.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO embeddings (sku, vec, dims, model, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (sku) DO UPDATE
		 SET vec = EXCLUDED.vec, dims = EXCLUDED.dims, model = EXCLUDED.model, updated_at = EXCLUDED.updated_at`,
		e.SKU, pgvector.NewVector(e.Vector), e.Dims, e.Model, updatedAt,
	)
	return err
}
