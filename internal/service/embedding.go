package service

import (
	"context"
	"fmt"
	"time"

	"github.com/casarom/salesapi/internal/domain"
)

// EmbeddingProductSource lists catalog entries for embedding generation.
type EmbeddingProductSource interface {
	ListAll(ctx context.Context) ([]*domain.Product, error)
	ListNeedingEmbedding(ctx context.Context, limit int) ([]*domain.Product, error)
}

// EmbeddingWriter persists generated vectors. This service is the only
// writer of the embedding store.
type EmbeddingWriter interface {
	Upsert(ctx context.Context, embedding *domain.Embedding) error
}

// EmbeddingService generates catalog embeddings offline. It is driven by the
// embed command for full backfills and by the background worker for products
// whose text changed after their vector was written.
type EmbeddingService struct {
	encoder QueryEncoder
	source  EmbeddingProductSource
	writer  EmbeddingWriter
	model   string
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(encoder QueryEncoder, source EmbeddingProductSource, writer EmbeddingWriter, model string) *EmbeddingService {
	return &EmbeddingService{
		encoder: encoder,
		source:  source,
		writer:  writer,
		model:   model,
	}
}

// EmbedProduct encodes one product and upserts its vector. Products with no
// text content are skipped and reported as not embedded.
func (s *EmbeddingService) EmbedProduct(ctx context.Context, product *domain.Product) (bool, error) {
	text := product.EmbeddingText()
	if text == "" {
		return false, nil
	}

	vector, err := s.encoder.Encode(ctx, text)
	if err != nil {
		return false, fmt.Errorf("failed to encode product %s: %w", product.SKU, err)
	}

	embedding := domain.NewEmbedding(product.SKU, vector, s.model, time.Now().UTC())
	if err := domain.ValidateEmbedding(embedding); err != nil {
		return false, err
	}

	if err := s.writer.Upsert(ctx, embedding); err != nil {
		return false, fmt.Errorf("failed to store embedding for %s: %w", product.SKU, err)
	}

	return true, nil
}

// EmbedAll regenerates embeddings for the whole catalog. Returns the number
// of products embedded and the number skipped for missing text.
func (s *EmbeddingService) EmbedAll(ctx context.Context) (embedded, skipped int, err error) {
	products, err := s.source.ListAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list products: %w", err)
	}

	for _, product := range products {
		ok, err := s.EmbedProduct(ctx, product)
		if err != nil {
			return embedded, skipped, err
		}
		if ok {
			embedded++
		} else {
			skipped++
		}
	}

	return embedded, skipped, nil
}

// EmbedStale embeds up to limit products whose text changed since their
// vector was written, or that have no vector yet.
func (s *EmbeddingService) EmbedStale(ctx context.Context, limit int) (int, error) {
	products, err := s.source.ListNeedingEmbedding(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale products: %w", err)
	}

	embedded := 0
	for _, product := range products {
		ok, err := s.EmbedProduct(ctx, product)
		if err != nil {
			return embedded, err
		}
		if ok {
			embedded++
		}
	}

	return embedded, nil
}
