package httpserver

import (
	"errors"
	"log"
	"net/http"

	"biglous-storefront/internal/domain"
	"github.com/gin-gonic/gin"
)

type apiVariation struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    *float64 `json:"price,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Image    string   `json:"image,omitempty"`
}

type apiProduct struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Price       *float64       `json:"price,omitempty"`
	Currency    string         `json:"currency"`
	Image       string         `json:"image,omitempty"`
	Variations  []apiVariation `json:"variations,omitempty"`
}

// listProductsHandler serves GET /api/products: the whole catalog, or one
// product when ?id= is present. An unreachable catalog degrades to an empty
// list so the storefront still renders.
func listProductsHandler(svc ProductService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.Query("id"); id != "" {
			product, err := svc.Get(c.Request.Context(), id)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrNotFound):
					c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				case errors.Is(err, domain.ErrUnavailable):
					c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog unavailable"})
				default:
					logger.Printf("products: get id=%s error=%v", id, err)
					c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				}
				return
			}
			c.JSON(http.StatusOK, gin.H{"item": toAPIProduct(*product)})
			return
		}

		products, err := svc.List(c.Request.Context())
		if err != nil {
			if !errors.Is(err, domain.ErrUnavailable) {
				logger.Printf("products: list error=%v", err)
			}
			c.JSON(http.StatusOK, gin.H{"items": []apiProduct{}})
			return
		}

		items := make([]apiProduct, 0, len(products))
		for _, p := range products {
			items = append(items, toAPIProduct(p))
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

func toAPIProduct(p domain.Product) apiProduct {
	variations := make([]apiVariation, 0, len(p.Variations))
	for _, v := range p.Variations {
		variations = append(variations, apiVariation{
			ID:       v.ID,
			Name:     v.Name,
			Price:    centsToUnits(v.PriceCents),
			Currency: v.Currency,
			Image:    v.Image,
		})
	}
	return apiProduct{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       centsToUnits(p.PriceCents),
		Currency:    p.Currency,
		Image:       p.Image,
		Variations:  variations,
	}
}

func centsToUnits(cents *int64) *float64 {
	if cents == nil {
		return nil
	}
	units := float64(*cents) / 100
	return &units
}
