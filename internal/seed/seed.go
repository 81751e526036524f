package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type variationSeed struct {
	Name       string
	PriceCents int64
}

type productSeed struct {
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	Variations  []variationSeed
}

// Apply inserts a demo bakery catalog for manual testing. It is idempotent:
// products are matched by name and updated in place.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			Name:        "Butter Croissant",
			Description: "Hand-laminated croissant, baked fresh every morning",
			PriceCents:  450,
			Currency:    "USD",
			Variations: []variationSeed{
				{Name: "Single", PriceCents: 450},
				{Name: "Half Dozen", PriceCents: 2400},
			},
		},
		{
			Name:        "Sourdough Loaf",
			Description: "Naturally leavened country loaf with a dark crust",
			PriceCents:  900,
			Currency:    "USD",
			Variations: []variationSeed{
				{Name: "Whole Loaf", PriceCents: 900},
				{Name: "Sliced", PriceCents: 950},
			},
		},
		{
			Name:        "Chocolate Chip Cookie Box",
			Description: "Brown butter chocolate chip cookies, box of six",
			PriceCents:  1500,
			Currency:    "USD",
			Variations: []variationSeed{
				{Name: "Box of 6", PriceCents: 1500},
				{Name: "Box of 12", PriceCents: 2800},
			},
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	var productID string
	err := pool.QueryRow(ctx, `SELECT id::text FROM products WHERE name = $1`, p.Name).Scan(&productID)
	if err != nil {
		if err := pool.QueryRow(ctx, `
INSERT INTO products (name, description, price_cents, currency)
VALUES ($1, $2, $3, $4)
RETURNING id::text
`, p.Name, p.Description, p.PriceCents, p.Currency).Scan(&productID); err != nil {
			return err
		}
	} else {
		if _, err := pool.Exec(ctx, `
UPDATE products SET description = $2, price_cents = $3, currency = $4 WHERE id = $1
`, productID, p.Description, p.PriceCents, p.Currency); err != nil {
			return err
		}
	}

	for i, v := range p.Variations {
		var variationID string
		err := pool.QueryRow(ctx, `
SELECT id::text FROM product_variations WHERE product_id = $1 AND name = $2
`, productID, v.Name).Scan(&variationID)
		if err != nil {
			if _, err := pool.Exec(ctx, `
INSERT INTO product_variations (product_id, name, price_cents, currency, position)
VALUES ($1, $2, $3, $4, $5)
`, productID, v.Name, v.PriceCents, p.Currency, i); err != nil {
				return err
			}
			continue
		}
		if _, err := pool.Exec(ctx, `
UPDATE product_variations SET price_cents = $2, currency = $3, position = $4 WHERE id = $1
`, variationID, v.PriceCents, p.Currency, i); err != nil {
			return err
		}
	}

	return nil
}
