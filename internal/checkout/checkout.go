// Package checkout normalizes shopper-supplied cart payloads into Square
// order requests and exchanges them for a hosted payment link.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"biglous-storefront/internal/square"
	"github.com/google/uuid"
)

var (
	// ErrNoLineItems means no valid line items survived normalization.
	ErrNoLineItems = errors.New("no items provided for checkout")
	// ErrNoRedirectURL means the provider reported success without a
	// usable checkout URL.
	ErrNoRedirectURL = errors.New("no checkout URL returned")
)

// PayloadItem is one loosely-shaped cart line as posted by the storefront.
// Qty and Price accept numbers or numeric strings; anything else falls back
// to the defaults applied by BuildLineItem.
type PayloadItem struct {
	VariationID string      `json:"variationId"`
	ID          string      `json:"id"`
	Qty         interface{} `json:"qty"`
	Note        string      `json:"note"`
	Price       interface{} `json:"price"`
	Currency    string      `json:"currency"`
}

// Payload is the whole-cart checkout request body.
type Payload struct {
	Items       []PayloadItem `json:"items"`
	RedirectURL string        `json:"redirectUrl"`
}

// BuildLineItem normalizes one payload item into a Square order line.
// Returns nil when no catalog identifier can be resolved; such lines are
// dropped rather than failing the whole request. Quantity is clamped to an
// integer >= 1. A price is attached only when a finite non-negative value
// was supplied; otherwise the catalog's own price applies.
func BuildLineItem(item PayloadItem) *square.OrderLineItem {
	catalogObjectID := item.VariationID
	if catalogObjectID == "" {
		catalogObjectID = item.ID
	}
	if catalogObjectID == "" {
		return nil
	}

	line := &square.OrderLineItem{
		CatalogObjectID: catalogObjectID,
		Quantity:        strconv.Itoa(normalizeQuantity(item.Qty)),
	}

	if item.Note != "" {
		line.Note = item.Note
	}

	if price := normalizeMoney(item.Price); price != nil && *price >= 0 {
		if cents, ok := minorUnits(*price); ok {
			currency := strings.TrimSpace(item.Currency)
			if currency == "" {
				currency = "USD"
			} else {
				currency = strings.ToUpper(currency)
			}
			line.BasePriceMoney = &square.Money{
				Amount:   cents,
				Currency: currency,
			}
		}
	}

	return line
}

// minorUnits converts a whole-unit amount to minor units, rounding to the
// nearest integer. The shift happens on the shortest decimal representation
// so that 4.995 becomes 500 rather than tripping over binary float error.
// Amounts too large for an int64 report not-ok and the price is omitted.
func minorUnits(units float64) (int64, bool) {
	if math.IsInf(units, 0) || math.IsNaN(units) {
		return 0, false
	}
	s := strconv.FormatFloat(units, 'f', -1, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	fracPart += "00"
	cents, err := strconv.ParseInt(intPart+fracPart[:2], 10, 64)
	if err != nil {
		return 0, false
	}
	if rest := fracPart[2:]; rest != "" && rest[0] >= '5' {
		cents++
	}
	if neg {
		cents = -cents
	}
	return cents, true
}

// normalizeQuantity coerces a quantity to an integer >= 1. Zero, negative,
// fractional-below-one and unparseable values all come out as 1.
func normalizeQuantity(v interface{}) int {
	n, ok := toNumber(v)
	if !ok || n == 0 {
		n = 1
	}
	qty := int(math.Floor(n))
	if qty < 1 {
		qty = 1
	}
	return qty
}

// normalizeMoney resolves a price to a finite amount in whole currency
// units, or nil when none was supplied. Non-finite values yield nil; the
// caller omits the price and the catalog price applies.
func normalizeMoney(v interface{}) *float64 {
	n, ok := toNumber(v)
	if !ok {
		return nil
	}
	return &n
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

type paymentLinkAPI interface {
	CreatePaymentLink(ctx context.Context, req square.CreatePaymentLinkRequest) (*square.PaymentLink, error)
}

// Service turns a checkout payload into a Square order and returns the
// hosted payment page URL.
type Service struct {
	links              paymentLinkAPI
	locationID         string
	defaultRedirectURL string
	logger             *log.Logger
}

func New(links paymentLinkAPI, locationID, defaultRedirectURL string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		links:              links,
		locationID:         locationID,
		defaultRedirectURL: defaultRedirectURL,
		logger:             logger,
	}
}

// Checkout normalizes the payload, submits the order and returns the
// payment page URL. No provider call is made when normalization leaves no
// valid line items.
func (s *Service) Checkout(ctx context.Context, payload Payload) (string, error) {
	lineItems := make([]square.OrderLineItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		if line := BuildLineItem(item); line != nil {
			lineItems = append(lineItems, *line)
		}
	}
	if len(lineItems) == 0 {
		return "", ErrNoLineItems
	}

	redirectURL := payload.RedirectURL
	if redirectURL == "" {
		redirectURL = s.defaultRedirectURL
	}

	// A fresh key per submission: every submit is a new purchase intent,
	// so a double-submitted cart creates two provider-side orders.
	req := square.CreatePaymentLinkRequest{
		IdempotencyKey: uuid.NewString(),
		Order: square.Order{
			LocationID: s.locationID,
			LineItems:  lineItems,
		},
		CheckoutOptions: square.CheckoutOptions{
			AskForShippingAddress: true,
			RedirectURL:           redirectURL,
		},
	}

	link, err := s.links.CreatePaymentLink(ctx, req)
	if err != nil {
		return "", err
	}
	if link == nil || link.URL == "" {
		s.logger.Printf("checkout: provider returned success without a payment link url")
		return "", ErrNoRedirectURL
	}
	return link.URL, nil
}
