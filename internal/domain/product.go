package domain

import "time"

type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	PriceCents  *int64      `json:"priceCents,omitempty"`
	Currency    string      `json:"currency"`
	Image       string      `json:"image,omitempty"`
	Variations  []Variation `json:"variations,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Variation is one sellable variant of a product. Its ID is the catalog
// object id sent to the payment provider at checkout.
type Variation struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents *int64 `json:"priceCents,omitempty"`
	Currency   string `json:"currency,omitempty"`
	Image      string `json:"image,omitempty"`
}
