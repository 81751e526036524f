package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"biglous-storefront/internal/checkout"
	"biglous-storefront/internal/square"
	"github.com/gin-gonic/gin"
)

type stubCheckout struct {
	url   string
	err   error
	calls int
	last  checkout.Payload
}

func (s *stubCheckout) Checkout(_ context.Context, payload checkout.Payload) (string, error) {
	s.calls++
	s.last = payload
	return s.url, s.err
}

func newCheckoutRouter(svc CheckoutService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/checkout", checkoutHandler(svc, log.New(io.Discard, "", 0)))
	return router
}

func TestCheckout_JSONBodyRedirects(t *testing.T) {
	svc := &stubCheckout{url: "https://square.link/abc"}
	router := newCheckoutRouter(svc)

	body := `{"items":[{"variationId":"v1","qty":2}],"redirectUrl":"https://shop.example/thanks"}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d body=%s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Location"); got != "https://square.link/abc" {
		t.Fatalf("unexpected location %q", got)
	}
	if len(svc.last.Items) != 1 || svc.last.Items[0].VariationID != "v1" {
		t.Fatalf("unexpected payload %+v", svc.last)
	}
	if svc.last.RedirectURL != "https://shop.example/thanks" {
		t.Fatalf("unexpected redirect %q", svc.last.RedirectURL)
	}
}

func TestCheckout_FormPayloadField(t *testing.T) {
	svc := &stubCheckout{url: "https://square.link/abc"}
	router := newCheckoutRouter(svc)

	form := url.Values{}
	form.Set("payload", `{"items":[{"id":"p1:v1","qty":1},{"id":"p2:v2","qty":3}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d body=%s", rec.Code, rec.Body)
	}
	if len(svc.last.Items) != 2 {
		t.Fatalf("unexpected payload %+v", svc.last)
	}
}

func TestCheckout_SingleItemForm(t *testing.T) {
	svc := &stubCheckout{url: "https://square.link/abc"}
	router := newCheckoutRouter(svc)

	form := url.Values{}
	form.Set("variationId", "v1")
	form.Set("qty", "2")
	form.Set("note", "extra icing")
	form.Set("price", "4.50")
	form.Set("currency", "usd")
	form.Set("redirectUrl", "https://shop.example/thanks")
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d body=%s", rec.Code, rec.Body)
	}
	if len(svc.last.Items) != 1 {
		t.Fatalf("unexpected payload %+v", svc.last)
	}
	item := svc.last.Items[0]
	if item.VariationID != "v1" || item.Qty != "2" || item.Note != "extra icing" || item.Price != "4.50" {
		t.Fatalf("unexpected item %+v", item)
	}
	if svc.last.RedirectURL != "https://shop.example/thanks" {
		t.Fatalf("unexpected redirect %q", svc.last.RedirectURL)
	}
}

func TestCheckout_SingleItemFallsBackToIDField(t *testing.T) {
	svc := &stubCheckout{url: "https://square.link/abc"}
	router := newCheckoutRouter(svc)

	form := url.Values{}
	form.Set("id", "p1")
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d body=%s", rec.Code, rec.Body)
	}
	if svc.last.Items[0].VariationID != "p1" {
		t.Fatalf("unexpected item %+v", svc.last.Items[0])
	}
}

func TestCheckout_MissingIDIsClientError(t *testing.T) {
	svc := &stubCheckout{}
	router := newCheckoutRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("checkout service called %d times", svc.calls)
	}
}

func TestCheckout_NoLineItemsIsClientError(t *testing.T) {
	svc := &stubCheckout{err: checkout.ErrNoLineItems}
	router := newCheckoutRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{"items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCheckout_ProviderErrorPassedThrough(t *testing.T) {
	svc := &stubCheckout{err: &square.APIError{
		StatusCode: http.StatusPaymentRequired,
		Body:       json.RawMessage(`{"errors":[{"code":"INSUFFICIENT_FUNDS"}]}`),
	}}
	router := newCheckoutRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{"items":[{"id":"a","qty":1}]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Errors []struct {
				Code string `json:"code"`
			} `json:"errors"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Code != "INSUFFICIENT_FUNDS" {
		t.Fatalf("provider body not passed through: %s", rec.Body)
	}
}

func TestCheckout_MissingProviderURLIsServerError(t *testing.T) {
	svc := &stubCheckout{err: checkout.ErrNoRedirectURL}
	router := newCheckoutRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{"items":[{"id":"a","qty":1}]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestCheckout_MalformedJSONIsServerError(t *testing.T) {
	svc := &stubCheckout{}
	router := newCheckoutRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{"items":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("checkout service called %d times", svc.calls)
	}
}

func TestCheckout_MalformedFormPayloadIsServerError(t *testing.T) {
	svc := &stubCheckout{}
	router := newCheckoutRouter(svc)

	form := url.Values{}
	form.Set("payload", `{"items":`)
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
