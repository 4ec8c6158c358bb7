package repository

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casarom/salesapi/internal/domain"
	"github.com/casarom/salesapi/internal/service"
)

// ProductRepository reads the product catalog. The catalog is owned by an
// external system; nothing here writes to it.
type ProductRepository struct {
	db dbtx
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: pool}
}

func NewProductRepositoryWithTx(tx pgx.Tx) *ProductRepository {
	return &ProductRepository{db: tx}
}

const productColumns = `sku, name, brand, category, unit_price, searchable_text, updated_at`

func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE sku = $1`,
		sku,
	)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (r *ProductRepository) GetBySKUs(ctx context.Context, skus []string) (map[string]*domain.Product, error) {
	if len(skus) == 0 {
		return map[string]*domain.Product{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE sku = ANY($1)`,
		skus,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make(map[string]*domain.Product)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products[product.SKU] = product
	}
	return products, rows.Err()
}

func (r *ProductRepository) ListAll(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY sku`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProductRows(rows)
}

// ListNeedingEmbedding returns products whose text changed after their
// embedding was written, or that have no embedding yet. Products with no
// text content are excluded; there is nothing to embed.
func (r *ProductRepository) ListNeedingEmbedding(ctx context.Context, limit int) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT p.sku, p.name, p.brand, p.category, p.unit_price, p.searchable_text, p.updated_at
		 FROM products p
		 LEFT JOIN embeddings e ON e.sku = p.sku
		 WHERE trim(coalesce(p.name, '') || coalesce(p.searchable_text, '')) <> ''
		   AND (e.sku IS NULL OR p.updated_at > e.updated_at)
		 ORDER BY p.updated_at ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProductRows(rows)
}

// SearchLexical runs the store's full-text matcher: every query token is a
// required prefix term. Scores come from ts_rank; their magnitude is only
// meaningful within one result set.
func (r *ProductRepository) SearchLexical(ctx context.Context, query string, limit int) ([]service.ScoredSKU, error) {
	tsquery := buildPrefixTsquery(query)
	if tsquery == "" {
		return []service.ScoredSKU{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT sku, ts_rank(search_vector, query) AS score
		 FROM products, to_tsquery('simple', $1) AS query
		 WHERE search_vector @@ query
		 ORDER BY score DESC, sku ASC
		 LIMIT $2`,
		tsquery, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scored := make([]service.ScoredSKU, 0)
	for rows.Next() {
		var s service.ScoredSKU
		var score float32
		if err := rows.Scan(&s.SKU, &score); err != nil {
			return nil, err
		}
		s.Score = float64(score)
		scored = append(scored, s)
	}
	return scored, rows.Err()
}

// buildPrefixTsquery turns free text into a tsquery string of ANDed prefix
// terms ("chrome & fauc:*" style). Tokens are stripped to letters and
// digits so user input can never inject tsquery syntax. Returns "" when no
// usable token remains.
func buildPrefixTsquery(query string) string {
	var terms []string
	for _, token := range strings.Fields(query) {
		var b strings.Builder
		for _, r := range token {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToLower(r))
			}
		}
		if b.Len() == 0 {
			continue
		}
		terms = append(terms, b.String()+":*")
	}
	return strings.Join(terms, " & ")
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var brand, category, searchableText *string
	if err := row.Scan(&p.SKU, &p.Name, &brand, &category, &p.UnitPrice, &searchableText, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if brand != nil {
		p.Brand = *brand
	}
	if category != nil {
		p.Category = *category
	}
	if searchableText != nil {
		p.SearchableText = *searchableText
	}
	return &p, nil
}

func scanProductRows(rows pgx.Rows) ([]*domain.Product, error) {
	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
