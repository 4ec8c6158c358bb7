package service

import (
	"context"

	"github.com/casarom/salesapi/internal/domain"
)

// ProductCatalog is the read side of the catalog used while pricing a quote.
type ProductCatalog interface {
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
}

// PolicyProvider exposes the pricing policy in effect.
type PolicyProvider interface {
	GetPolicy(ctx context.Context) (*domain.PricingPolicy, error)
}

// QuoteStore persists a fully priced quote with all of its lines.
type QuoteStore interface {
	CreateQuote(ctx context.Context, quote *domain.Quote) error
}

// TxRepositories provides transaction-bound repositories.
type TxRepositories interface {
	Products() ProductCatalog
	Policy() PolicyProvider
	Quotes() QuoteStore
}

// TxRunner executes a function within a transaction. The function either
// commits as a whole or rolls back as a whole; partial writes are never
// visible to other transactions.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
