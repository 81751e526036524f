// Package square is a minimal client for Square's online-checkout
// payment-links API. Only the order-creation call used at checkout is
// implemented.
package square

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	productionBaseURL = "https://connect.squareup.com"
	sandboxBaseURL    = "https://connect.squareupsandbox.com"
)

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type OrderLineItem struct {
	CatalogObjectID string `json:"catalog_object_id"`
	Quantity        string `json:"quantity"`
	Note            string `json:"note,omitempty"`
	BasePriceMoney  *Money `json:"base_price_money,omitempty"`
}

type Order struct {
	LocationID string          `json:"location_id"`
	LineItems  []OrderLineItem `json:"line_items"`
}

type CheckoutOptions struct {
	AskForShippingAddress bool   `json:"ask_for_shipping_address"`
	RedirectURL           string `json:"redirect_url,omitempty"`
}

type CreatePaymentLinkRequest struct {
	IdempotencyKey  string          `json:"idempotency_key"`
	Order           Order           `json:"order"`
	CheckoutOptions CheckoutOptions `json:"checkout_options"`
}

type PaymentLink struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type createPaymentLinkResponse struct {
	PaymentLink PaymentLink `json:"payment_link"`
}

// APIError carries a non-2xx provider response verbatim so callers can
// proxy the original status and body.
type APIError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("square: status %d: %s", e.StatusCode, e.Body)
}

type Config struct {
	AccessToken string
	// Environment selects the API host: "production" or anything else for
	// the sandbox. Ignored when BaseURL is set.
	Environment string
	APIVersion  string
	BaseURL     string
	HTTPClient  *http.Client
	Logger      *log.Logger
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	apiVersion  string
	logger      *log.Logger
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if strings.EqualFold(cfg.Environment, "production") {
			baseURL = productionBaseURL
		} else {
			baseURL = sandboxBaseURL
		}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		logger:      logger,
	}
}

// CreatePaymentLink submits an order and returns the hosted checkout link.
// Non-2xx provider responses are returned as *APIError with the original
// status and body.
func (c *Client) CreatePaymentLink(ctx context.Context, req CreatePaymentLinkRequest) (*PaymentLink, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode payment link request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/online-checkout/payment-links", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build payment link request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Square-Version", c.apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create payment link: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read payment link response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Printf("square: payment link rejected status=%d", resp.StatusCode)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: respBody}
	}

	var decoded createPaymentLinkResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode payment link response: %w", err)
	}
	return &decoded.PaymentLink, nil
}
