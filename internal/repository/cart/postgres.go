package cart

import (
	"context"
	"errors"

	"biglous-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Load(ctx context.Context, token string) (*StoredCart, error) {
	if r.pool == nil {
		return nil, domain.ErrUnavailable
	}
	const q = `
SELECT version, doc
FROM carts
WHERE token = $1
`
	var stored StoredCart
	if err := r.pool.QueryRow(ctx, q, token).Scan(&stored.Version, &stored.Doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &stored, nil
}

func (r *postgresRepo) Save(ctx context.Context, token string, version int, doc []byte) error {
	if r.pool == nil {
		return domain.ErrUnavailable
	}
	const q = `
INSERT INTO carts (token, version, doc, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (token) DO UPDATE
SET version = EXCLUDED.version,
    doc = EXCLUDED.doc,
    updated_at = now()
`
	_, err := r.pool.Exec(ctx, q, token, version, doc)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, token string) error {
	if r.pool == nil {
		return domain.ErrUnavailable
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE token = $1`, token)
	return err
}
