package cart

import "context"

// StoredCart is a raw cart document as persisted, together with its schema
// version. The document is decoded and migrated by the cart service.
type StoredCart struct {
	Version int
	Doc     []byte
}

type Repository interface {
	// Load returns the stored document for a cart token.
	// Returns domain.ErrNotFound when no cart exists for the token.
	Load(ctx context.Context, token string) (*StoredCart, error)
	// Save upserts the document for a cart token at the given schema version.
	Save(ctx context.Context, token string, version int, doc []byte) error
	// Delete removes the stored cart for a token. Missing carts are not an error.
	Delete(ctx context.Context, token string) error
}
