package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"biglous-storefront/internal/checkout"
	"biglous-storefront/internal/square"
	"github.com/gin-gonic/gin"
)

// checkoutHandler accepts a cart description as JSON, as a form field
// holding a JSON payload, or as single-item "buy now" form fields, and
// redirects the shopper to the provider-hosted payment page.
func checkoutHandler(svc CheckoutService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := resolveCheckoutPayload(c)
		if !ok {
			return
		}

		url, err := svc.Checkout(c.Request.Context(), payload)
		if err != nil {
			writeCheckoutError(c, err, logger)
			return
		}
		c.Redirect(http.StatusSeeOther, url)
	}
}

// resolveCheckoutPayload picks the first matching input shape: JSON body,
// then the "payload" form field, then the single-item form fields. When it
// returns false the error response has already been written.
func resolveCheckoutPayload(c *gin.Context) (checkout.Payload, bool) {
	var payload checkout.Payload

	if strings.Contains(c.ContentType(), "application/json") {
		if err := json.NewDecoder(c.Request.Body).Decode(&payload); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return payload, false
		}
		return payload, true
	}

	if payloadStr := c.PostForm("payload"); payloadStr != "" {
		if err := json.Unmarshal([]byte(payloadStr), &payload); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return payload, false
		}
		return payload, true
	}

	id := strings.TrimSpace(c.PostForm("variationId"))
	if id == "" {
		id = strings.TrimSpace(c.PostForm("id"))
	}
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing item id/variationId"})
		return payload, false
	}

	item := checkout.PayloadItem{
		VariationID: id,
		Note:        c.PostForm("note"),
		Currency:    c.PostForm("currency"),
	}
	if qty := c.PostForm("qty"); qty != "" {
		item.Qty = qty
	}
	if price := c.PostForm("price"); price != "" {
		item.Price = price
	}

	payload.Items = []checkout.PayloadItem{item}
	payload.RedirectURL = c.PostForm("redirectUrl")
	return payload, true
}

func writeCheckoutError(c *gin.Context, err error, logger *log.Logger) {
	var apiErr *square.APIError
	switch {
	case errors.Is(err, checkout.ErrNoLineItems):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		// Proxy the provider's status and error body verbatim.
		if json.Valid(apiErr.Body) {
			c.JSON(apiErr.StatusCode, gin.H{"error": json.RawMessage(apiErr.Body)})
		} else {
			c.JSON(apiErr.StatusCode, gin.H{"error": string(apiErr.Body)})
		}
	case errors.Is(err, checkout.ErrNoRedirectURL):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		logger.Printf("checkout: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
