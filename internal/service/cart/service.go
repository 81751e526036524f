package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"

	"biglous-storefront/internal/domain"
	cartrepo "biglous-storefront/internal/repository/cart"
)

// Service implements the cart store: add/remove/clear mutations over a
// persisted per-token cart document. Persistence failures degrade to
// in-memory operation; mutations never fail because the store is down.
type Service struct {
	repo   cartRepo
	logger *log.Logger

	mu  sync.Mutex
	mem map[string]domain.Cart
}

type cartRepo interface {
	Load(ctx context.Context, token string) (*cartrepo.StoredCart, error)
	Save(ctx context.Context, token string, version int, doc []byte) error
	Delete(ctx context.Context, token string) error
}

func New(repo cartrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		repo:   repo,
		logger: logger,
		mem:    make(map[string]domain.Cart),
	}
}

// AddInput describes one add/increment call. Qty nil means +1; callers pass
// 1 to increment and -1 to decrement an existing line.
type AddInput struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId"`
	VariationID string  `json:"variationId"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Qty         *int    `json:"qty"`
	Currency    string  `json:"currency"`
	Note        string  `json:"note"`
	Image       string  `json:"image"`
}

// Get returns the current cart for a token. An unknown token yields an
// empty cart, not an error.
func (s *Service) Get(ctx context.Context, token string) domain.Cart {
	return s.load(ctx, token)
}

// Add merges an item into the cart by line id. An existing line keeps its
// fields and gains the quantity delta; a resulting quantity <= 0 removes the
// line. A new line is inserted with quantity defaulting to 1, and is never
// created with a non-positive quantity.
func (s *Service) Add(ctx context.Context, token string, in AddInput) domain.Cart {
	cart := s.load(ctx, token)

	delta := 1
	if in.Qty != nil {
		delta = *in.Qty
	}

	idx := -1
	for i, line := range cart.Items {
		if line.ID == in.ID {
			idx = i
			break
		}
	}

	if idx >= 0 {
		newQty := cart.Items[idx].Qty + delta
		if newQty <= 0 {
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		} else {
			cart.Items[idx].Qty = newQty
		}
	} else if delta > 0 {
		cart.Items = append(cart.Items, domain.CartLine{
			ID:          in.ID,
			ProductID:   in.ProductID,
			VariationID: in.VariationID,
			Name:        in.Name,
			Price:       in.Price,
			Qty:         delta,
			Currency:    in.Currency,
			Note:        in.Note,
			Image:       in.Image,
		})
	}

	cart.Recount()
	s.persist(ctx, token, cart)
	return cart
}

// Remove deletes the line with the given id. Removing an absent line is a
// no-op, not an error.
func (s *Service) Remove(ctx context.Context, token, id string) domain.Cart {
	cart := s.load(ctx, token)
	for i, line := range cart.Items {
		if line.ID == id {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			break
		}
	}
	cart.Recount()
	s.persist(ctx, token, cart)
	return cart
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, token string) domain.Cart {
	cart := domain.Cart{Items: []domain.CartLine{}}
	if err := s.repo.Delete(ctx, token); err != nil {
		s.logger.Printf("cart store: delete token=%s error=%v", token, err)
	}
	s.setMem(token, cart)
	return cart
}

func (s *Service) load(ctx context.Context, token string) domain.Cart {
	stored, err := s.repo.Load(ctx, token)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("cart store: load token=%s error=%v, serving from memory", token, err)
		}
		return s.memCopy(token)
	}
	cart := decodeStored(stored)
	s.setMem(token, cart)
	return cart
}

func (s *Service) persist(ctx context.Context, token string, cart domain.Cart) {
	s.setMem(token, cart)
	doc, err := json.Marshal(cart)
	if err != nil {
		s.logger.Printf("cart store: encode token=%s error=%v", token, err)
		return
	}
	if err := s.repo.Save(ctx, token, domain.CartSchemaVersion, doc); err != nil {
		s.logger.Printf("cart store: save token=%s error=%v, keeping in memory", token, err)
	}
}

func (s *Service) memCopy(token string) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.mem[token]
	if !ok {
		return domain.Cart{Items: []domain.CartLine{}}
	}
	items := make([]domain.CartLine, len(cart.Items))
	copy(items, cart.Items)
	return domain.Cart{Items: items, Count: cart.Count}
}

func (s *Service) setMem(token string, cart domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mem[token] = cart
}

// decodeStored turns a raw stored document into a cart, running the schema
// migration first when the stored version is older than current. Decoding is
// best-effort: entries that do not look like cart lines are skipped.
func decodeStored(stored *cartrepo.StoredCart) domain.Cart {
	raw := stored.Doc
	if stored.Version < domain.CartSchemaVersion {
		raw = MigrateDoc(raw)
	}

	var loose struct {
		Items []json.RawMessage `json:"items"`
	}
	cart := domain.Cart{Items: []domain.CartLine{}}
	if err := json.Unmarshal(raw, &loose); err != nil {
		return cart
	}
	for _, entry := range loose.Items {
		var line domain.CartLine
		if err := json.Unmarshal(entry, &line); err != nil || line.ID == "" {
			continue
		}
		cart.Items = append(cart.Items, line)
	}
	cart.Recount()
	return cart
}
