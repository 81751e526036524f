package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"biglous-storefront/internal/domain"
	cartrepo "biglous-storefront/internal/repository/cart"
)

type stubRepo struct {
	stored    map[string]*cartrepo.StoredCart
	loadErr   error
	saveErr   error
	deleteErr error
	saveCalls int
	lastVer   int
}

func newStubRepo() *stubRepo {
	return &stubRepo{stored: map[string]*cartrepo.StoredCart{}}
}

func (s *stubRepo) Load(_ context.Context, token string) (*cartrepo.StoredCart, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	stored, ok := s.stored[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return stored, nil
}

func (s *stubRepo) Save(_ context.Context, token string, version int, doc []byte) error {
	s.saveCalls++
	s.lastVer = version
	if s.saveErr != nil {
		return s.saveErr
	}
	s.stored[token] = &cartrepo.StoredCart{Version: version, Doc: doc}
	return nil
}

func (s *stubRepo) Delete(_ context.Context, token string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.stored, token)
	return nil
}

func intPtr(v int) *int {
	return &v
}

func TestAdd_InsertsWithDefaultQuantity(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, nil)

	cart := svc.Add(context.Background(), "tok", AddInput{ID: "p1:v1", Name: "Croissant", Price: 4.5})

	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Items))
	}
	if cart.Items[0].Qty != 1 {
		t.Fatalf("expected qty 1, got %d", cart.Items[0].Qty)
	}
	if cart.Count != 1 {
		t.Fatalf("expected count 1, got %d", cart.Count)
	}
	if repo.lastVer != domain.CartSchemaVersion {
		t.Fatalf("expected save at version %d, got %d", domain.CartSchemaVersion, repo.lastVer)
	}
}

func TestAdd_MergesQuantityAndPreservesFields(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, nil)
	ctx := context.Background()

	svc.Add(ctx, "tok", AddInput{ID: "p1:v1", Name: "Croissant", Price: 4.5, Qty: intPtr(2)})
	cart := svc.Add(ctx, "tok", AddInput{ID: "p1:v1", Qty: intPtr(3)})

	if len(cart.Items) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(cart.Items))
	}
	line := cart.Items[0]
	if line.Qty != 5 {
		t.Fatalf("expected qty 5, got %d", line.Qty)
	}
	if line.Name != "Croissant" || line.Price != 4.5 {
		t.Fatalf("existing fields not preserved: %+v", line)
	}
	if cart.Count != 5 {
		t.Fatalf("expected count 5, got %d", cart.Count)
	}
}

func TestAdd_DecrementToZeroRemovesLine(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, nil)
	ctx := context.Background()

	svc.Add(ctx, "tok", AddInput{ID: "p1:v1", Qty: intPtr(1)})
	cart := svc.Add(ctx, "tok", AddInput{ID: "p1:v1", Qty: intPtr(-1)})

	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart.Items)
	}
	if cart.Count != 0 {
		t.Fatalf("expected count 0, got %d", cart.Count)
	}
}

func TestAdd_NonPositiveInsertIsNotStored(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, nil)

	cart := svc.Add(context.Background(), "tok", AddInput{ID: "p1:v1", Qty: intPtr(-2)})

	if len(cart.Items) != 0 || cart.Count != 0 {
		t.Fatalf("line with non-positive quantity was stored: %+v", cart)
	}
}

func TestRemove_MissingIDIsNoop(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, nil)
	ctx := context.Background()

	svc.Add(ctx, "tok", AddInput{ID: "p1:v1", Qty: intPtr(2)})
	cart := svc.Remove(ctx, "tok", "nope")

	if len(cart.Items) != 1 || cart.Count != 2 {
		t.Fatalf("remove of missing id changed the cart: %+v", cart)
	}
}

func TestRemove_DeletesLine(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, nil)
	ctx := context.Background()

	svc.Add(ctx, "tok", AddInput{ID: "p1:v1", Qty: intPtr(2)})
	svc.Add(ctx, "tok", AddInput{ID: "p2:v2", Qty: intPtr(1)})
	cart := svc.Remove(ctx, "tok", "p1:v1")

	if len(cart.Items) != 1 || cart.Items[0].ID != "p2:v2" {
		t.Fatalf("unexpected items after remove: %+v", cart.Items)
	}
	if cart.Count != 1 {
		t.Fatalf("expected count 1, got %d", cart.Count)
	}
}

func TestClear_EmptiesCart(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, nil)
	ctx := context.Background()

	svc.Add(ctx, "tok", AddInput{ID: "p1:v1", Qty: intPtr(3)})
	cart := svc.Clear(ctx, "tok")

	if len(cart.Items) != 0 || cart.Count != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
	if _, ok := repo.stored["tok"]; ok {
		t.Fatalf("stored cart not deleted")
	}
}

func TestService_DegradesToMemoryWhenRepoFails(t *testing.T) {
	repo := newStubRepo()
	repo.loadErr = errors.New("db down")
	repo.saveErr = errors.New("db down")
	svc := New(repo, nil)
	ctx := context.Background()

	svc.Add(ctx, "tok", AddInput{ID: "p1:v1", Qty: intPtr(2)})
	cart := svc.Get(ctx, "tok")

	if len(cart.Items) != 1 || cart.Items[0].Qty != 2 || cart.Count != 2 {
		t.Fatalf("in-memory fallback lost state: %+v", cart)
	}
}

func TestGet_MigratesVersionZeroDocument(t *testing.T) {
	repo := newStubRepo()
	doc, _ := json.Marshal(map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"id": "prod1:var1", "name": "Sourdough", "qty": 2},
		},
		"count": 0,
	})
	repo.stored["tok"] = &cartrepo.StoredCart{Version: 0, Doc: doc}
	svc := New(repo, nil)

	cart := svc.Get(context.Background(), "tok")

	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Items))
	}
	line := cart.Items[0]
	if line.ID != "prod1:var1" || line.ProductID != "prod1" || line.VariationID != "var1" {
		t.Fatalf("migration did not infer identifiers: %+v", line)
	}
	if cart.Count != 2 {
		t.Fatalf("expected recomputed count 2, got %d", cart.Count)
	}
}
