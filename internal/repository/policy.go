package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casarom/salesapi/internal/domain"
)

// PolicyRepository reads the singleton pricing policy row.
type PolicyRepository struct {
	db dbtx
}

func NewPolicyRepository(pool *pgxpool.Pool) *PolicyRepository {
	return &PolicyRepository{db: pool}
}

func NewPolicyRepositoryWithTx(tx pgx.Tx) *PolicyRepository {
	return &PolicyRepository{db: tx}
}

func (r *PolicyRepository) GetPolicy(ctx context.Context) (*domain.PricingPolicy, error) {
	var p domain.PricingPolicy
	err := r.db.QueryRow(ctx,
		`SELECT transfer_discount, installments_markup FROM config_pricing WHERE id = 1`,
	).Scan(&p.TransferDiscount, &p.InstallmentsMarkup)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPricingPolicyMissing
		}
		return nil, err
	}
	return &p, nil
}

// SetPolicy writes the singleton row. Operator tooling only; the quote
// engine never calls this.
func (r *PolicyRepository) SetPolicy(ctx context.Context, p *domain.PricingPolicy) error {
	if err := domain.ValidatePricingPolicy(p); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid pricing policy", err)
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO config_pricing (id, transfer_discount, installments_markup)
		 VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE
		 SET transfer_discount = EXCLUDED.transfer_discount, installments_markup = EXCLUDED.installments_markup`,
		p.TransferDiscount, p.InstallmentsMarkup,
	)
	return err
}
