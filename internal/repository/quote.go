package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casarom/salesapi/internal/domain"
)

// QuoteRepository persists and retrieves quotes. Quotes are written once,
// inside a transaction, and never updated.
type QuoteRepository struct {
	db dbtx
}

func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{db: pool}
}

func NewQuoteRepositoryWithTx(tx pgx.Tx) *QuoteRepository {
	return &QuoteRepository{db: tx}
}

// CreateQuote inserts the header with its final totals, then every line.
// Callers run this inside a transaction so the quote becomes visible whole
// or not at all.
func (r *QuoteRepository) CreateQuote(ctx context.Context, q *domain.Quote) error {
	notes, err := json.Marshal(q.Notes)
	if err != nil {
		return fmt.Errorf("failed to encode quote notes: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO quotes (quote_id, customer_ref, valid_until, list_total, transfer_total, installments_total, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		q.ID, q.CustomerRef, q.ValidUntil, q.ListTotal, q.TransferTotal, q.InstallmentsTotal, notes, q.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, line := range q.Lines {
		attrs := line.Attributes
		if attrs == nil {
			attrs = map[string]any{}
		}
		attrsJSON, err := json.Marshal(attrs)
		if err != nil {
			return fmt.Errorf("failed to encode line %d attributes: %w", line.LineNumber, err)
		}

		_, err = r.db.Exec(ctx,
			`INSERT INTO quote_lines (quote_id, line_number, sku, name, qty, unit_price, line_total, attrs)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			q.ID, line.LineNumber, line.SKU, line.Name, line.Qty, line.UnitPrice, line.LineTotal, attrsJSON,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID returns the quote header with its lines ordered by line number
// ascending.
func (r *QuoteRepository) GetByID(ctx context.Context, quoteID string) (*domain.Quote, error) {
	var q domain.Quote
	var notes []byte
	err := r.db.QueryRow(ctx,
		`SELECT quote_id, customer_ref, valid_until, list_total, transfer_total, installments_total, notes, created_at
		 FROM quotes WHERE quote_id = $1`,
		quoteID,
	).Scan(&q.ID, &q.CustomerRef, &q.ValidUntil, &q.ListTotal, &q.TransferTotal, &q.InstallmentsTotal, &notes, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, err
	}

	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &q.Notes); err != nil {
			return nil, fmt.Errorf("failed to decode quote notes: %w", err)
		}
	}

	rows, err := r.db.Query(ctx,
		`SELECT quote_id, line_number, sku, name, qty, unit_price, line_total, attrs
		 FROM quote_lines WHERE quote_id = $1 ORDER BY line_number ASC`,
		quoteID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.QuoteLine
		var attrs []byte
		if err := rows.Scan(&line.QuoteID, &line.LineNumber, &line.SKU, &line.Name, &line.Qty, &line.UnitPrice, &line.LineTotal, &attrs); err != nil {
			return nil, err
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &line.Attributes); err != nil {
				return nil, fmt.Errorf("failed to decode line %d attributes: %w", line.LineNumber, err)
			}
		}
		q.Lines = append(q.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &q, nil
}
