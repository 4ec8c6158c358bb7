package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casarom/salesapi/internal/service"
)

// TxRunner executes a function inside a single database transaction,
// handing it transaction-bound repositories. The transaction commits when
// the function returns nil and rolls back otherwise.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&txRepositories{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type txRepositories struct {
	tx pgx.Tx
}

func (t *txRepositories) Products() service.ProductCatalog {
	return NewProductRepositoryWithTx(t.tx)
}

func (t *txRepositories) Policy() service.PolicyProvider {
	return NewPolicyRepositoryWithTx(t.tx)
}

func (t *txRepositories) Quotes() service.QuoteStore {
	return NewQuoteRepositoryWithTx(t.tx)
}
