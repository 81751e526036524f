package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"biglous-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	if r.pool == nil {
		return nil, domain.ErrUnavailable
	}
	const q = `
SELECT id::text, name, COALESCE(description, ''), price_cents, COALESCE(currency, 'USD'), COALESCE(image_url, ''), created_at
FROM products
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &p.Image, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}

	for i := range result {
		variations, err := r.listVariations(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Variations = variations
	}
	r.logger.Printf("product repo: list count=%d", len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if r.pool == nil {
		return nil, domain.ErrUnavailable
	}
	const q = `
SELECT id::text, name, COALESCE(description, ''), price_cents, COALESCE(currency, 'USD'), COALESCE(image_url, ''), created_at
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &p.Image, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	variations, err := r.listVariations(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Variations = variations
	return &p, nil
}

func (r *postgresRepo) listVariations(ctx context.Context, productID string) ([]domain.Variation, error) {
	const q = `
SELECT id::text, name, price_cents, COALESCE(currency, 'USD'), COALESCE(image_url, '')
FROM product_variations
WHERE product_id = $1
ORDER BY position, name
`
	rows, err := r.pool.Query(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Variation
	for rows.Next() {
		var v domain.Variation
		if err := rows.Scan(&v.ID, &v.Name, &v.PriceCents, &v.Currency, &v.Image); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if r.pool == nil {
		return nil, domain.ErrUnavailable
	}
	const q = `
INSERT INTO products (id, name, description, price_cents, currency, image_url)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''))
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    image_url = EXCLUDED.image_url
RETURNING id::text
`
	var id string
	if err := r.pool.QueryRow(ctx, q, product.ID, product.Name, product.Description, product.PriceCents, product.Currency, product.Image).Scan(&id); err != nil {
		r.logger.Printf("product repo: upsert name=%s error=%v", product.Name, err)
		return nil, fmt.Errorf("upsert product: %w", err)
	}

	for i, v := range product.Variations {
		const vq = `
INSERT INTO product_variations (id, product_id, name, price_cents, currency, image_url, position)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, NULLIF($6, ''), $7)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    image_url = EXCLUDED.image_url,
    position = EXCLUDED.position
`
		if _, err := r.pool.Exec(ctx, vq, v.ID, id, v.Name, v.PriceCents, v.Currency, v.Image, i); err != nil {
			return nil, fmt.Errorf("upsert variation %s: %w", v.Name, err)
		}
	}

	product.ID = id
	return &product, nil
}
