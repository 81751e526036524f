package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"biglous-storefront/internal/checkout"
	"biglous-storefront/internal/cms"
	"biglous-storefront/internal/config"
	"biglous-storefront/internal/db"
	"biglous-storefront/internal/httpserver"
	"biglous-storefront/internal/instagram"
	cartrepo "biglous-storefront/internal/repository/cart"
	productrepo "biglous-storefront/internal/repository/product"
	cartsvc "biglous-storefront/internal/service/cart"
	productsvc "biglous-storefront/internal/service/product"
	"biglous-storefront/internal/square"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		// Carts fall back to memory and the catalog serves empty; checkout
		// stays available, so the API starts anyway.
		logger.Printf("connect to db: %v, running degraded", err)
		dbpool = nil
	} else {
		defer dbpool.Close()
	}

	cartRepo := cartrepo.NewPostgres(dbpool)
	cartService := cartsvc.New(cartRepo, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	productService := productsvc.New(productRepo)

	squareClient := square.NewClient(square.Config{
		AccessToken: cfg.SquareAccessToken,
		Environment: cfg.SquareEnvironment,
		APIVersion:  cfg.SquareAPIVersion,
		Logger:      logger,
	})
	defaultRedirect := ""
	if cfg.BaseURL != "" {
		defaultRedirect = strings.TrimRight(cfg.BaseURL, "/") + "/thanks"
	}
	checkoutService := checkout.New(squareClient, cfg.SquareLocationID, defaultRedirect, logger)

	cmsClient := cms.NewClient(cms.Config{
		ProjectID:  cfg.SanityProjectID,
		Dataset:    cfg.SanityDataset,
		APIVersion: cfg.SanityAPIVersion,
		Token:      cfg.SanityToken,
		Logger:     logger,
	})
	feedClient := instagram.NewClient(instagram.Config{
		AccessToken: cfg.InstagramToken,
		CacheTTL:    cfg.InstagramCacheTTL,
		Logger:      logger,
	})

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ProductSvc:  productService,
		CartSvc:     cartService,
		CheckoutSvc: checkoutService,
		CMS:         cmsClient,
		Feed:        feedClient,
	}, cfg.CORSOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
