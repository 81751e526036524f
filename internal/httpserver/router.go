package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"biglous-storefront/internal/checkout"
	"biglous-storefront/internal/cms"
	"biglous-storefront/internal/domain"
	"biglous-storefront/internal/instagram"
	cartsvc "biglous-storefront/internal/service/cart"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type CartService interface {
	Get(ctx context.Context, token string) domain.Cart
	Add(ctx context.Context, token string, in cartsvc.AddInput) domain.Cart
	Remove(ctx context.Context, token, id string) domain.Cart
	Clear(ctx context.Context, token string) domain.Cart
}

type CheckoutService interface {
	Checkout(ctx context.Context, payload checkout.Payload) (string, error)
}

type ContentService interface {
	Homepage(ctx context.Context, preview bool) (*cms.Homepage, error)
}

type FeedService interface {
	Recent(ctx context.Context) ([]instagram.Post, string)
}

// Deps carries the services the routes are wired to.
type Deps struct {
	ProductSvc  ProductService
	CartSvc     CartService
	CheckoutSvc CheckoutService
	CMS         ContentService
	Feed        FeedService
}

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")
	{
		api.GET("/products", listProductsHandler(deps.ProductSvc, logger))

		api.GET("/cart", getCartHandler(deps.CartSvc))
		api.POST("/cart/items", addCartItemHandler(deps.CartSvc))
		api.DELETE("/cart/items/:id", removeCartItemHandler(deps.CartSvc))
		api.DELETE("/cart", clearCartHandler(deps.CartSvc))

		api.POST("/checkout", checkoutHandler(deps.CheckoutSvc, logger))

		api.GET("/homepage", homepageHandler(deps.CMS, logger))
		api.GET("/instagram", instagramHandler(deps.Feed))
	}

	return router
}
