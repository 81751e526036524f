package httpserver

import (
	"net/http"

	"biglous-storefront/internal/domain"
	cartsvc "biglous-storefront/internal/service/cart"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	cartTokenCookie = "cart_token"
	cartTokenMaxAge = 365 * 24 * 60 * 60
)

type addCartItemRequest struct {
	ID          string  `json:"id" binding:"required"`
	ProductID   string  `json:"productId"`
	VariationID string  `json:"variationId"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Qty         *int    `json:"qty"`
	Currency    string  `json:"currency"`
	Note        string  `json:"note"`
	Image       string  `json:"image"`
}

func cartTokenFromRequest(c *gin.Context) string {
	token, err := c.Cookie(cartTokenCookie)
	if err != nil {
		return ""
	}
	return token
}

// ensureCartToken returns the shopper's cart token, issuing one as a cookie
// on first use.
func ensureCartToken(c *gin.Context) string {
	if token := cartTokenFromRequest(c); token != "" {
		return token
	}
	token := uuid.NewString()
	c.SetCookie(cartTokenCookie, token, cartTokenMaxAge, "/", "", false, true)
	return token
}

func getCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cartTokenFromRequest(c)
		if token == "" {
			c.JSON(http.StatusOK, domain.Cart{Items: []domain.CartLine{}})
			return
		}
		c.JSON(http.StatusOK, svc.Get(c.Request.Context(), token))
	}
}

func addCartItemHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing line id"})
			return
		}
		token := ensureCartToken(c)
		cart := svc.Add(c.Request.Context(), token, cartsvc.AddInput{
			ID:          req.ID,
			ProductID:   req.ProductID,
			VariationID: req.VariationID,
			Name:        req.Name,
			Price:       req.Price,
			Qty:         req.Qty,
			Currency:    req.Currency,
			Note:        req.Note,
			Image:       req.Image,
		})
		c.JSON(http.StatusOK, cart)
	}
}

func removeCartItemHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cartTokenFromRequest(c)
		if token == "" {
			c.JSON(http.StatusOK, domain.Cart{Items: []domain.CartLine{}})
			return
		}
		c.JSON(http.StatusOK, svc.Remove(c.Request.Context(), token, c.Param("id")))
	}
}

func clearCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cartTokenFromRequest(c)
		if token == "" {
			c.JSON(http.StatusOK, domain.Cart{Items: []domain.CartLine{}})
			return
		}
		c.JSON(http.StatusOK, svc.Clear(c.Request.Context(), token))
	}
}
