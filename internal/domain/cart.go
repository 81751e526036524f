package domain

// CartLine is one entry in a shopper's cart. ID is the stable line key,
// canonically "<productId>:<variationId>".
type CartLine struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId,omitempty"`
	VariationID string  `json:"variationId,omitempty"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Qty         int     `json:"qty"`
	Currency    string  `json:"currency,omitempty"`
	Note        string  `json:"note,omitempty"`
	Image       string  `json:"image,omitempty"`
}

// Cart is the persisted cart document for one shopper token. Count is
// derived and always equals the sum of all line quantities.
type Cart struct {
	Items []CartLine `json:"items"`
	Count int        `json:"count"`
}

// CartSchemaVersion tags the stored cart document shape. Version 0 carts
// predate the productId/variationId split and are upgraded on load.
const CartSchemaVersion = 1

// Recount recomputes Count from the line quantities.
func (c *Cart) Recount() {
	total := 0
	for _, line := range c.Items {
		total += line.Qty
	}
	c.Count = total
}
