package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/outlawshop/storefront/internal/admin"
	"github.com/outlawshop/storefront/internal/auth"
	"github.com/outlawshop/storefront/internal/cart"
	"github.com/outlawshop/storefront/internal/catalog"
	"github.com/outlawshop/storefront/internal/checkout"
	"github.com/outlawshop/storefront/internal/config"
	"github.com/outlawshop/storefront/internal/es"
	"github.com/outlawshop/storefront/internal/handlers"
	"github.com/outlawshop/storefront/internal/logging"
	"github.com/outlawshop/storefront/internal/middleware/requestlog"
	"github.com/outlawshop/storefront/internal/mykafka"
	"github.com/outlawshop/storefront/internal/orders"
	"github.com/outlawshop/storefront/internal/reviews"
	"github.com/outlawshop/storefront/internal/session"
	httpserver "github.com/outlawshop/storefront/internal/transport/http"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	// Kafka and elasticsearch are optional: without an address the producer
	// drops events and search degrades to the database filter.
	var producer *mykafka.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{cfg.KAFKA_ADDRESS})
	}

	var esClient *elasticsearch.Client
	if cfg.ES_URL != "" {
		esClient, err = es.NewClient(cfg)
		if err != nil {
			log.Printf("elasticsearch unavailable, falling back to db search: %v", err)
			esClient = nil
		}
	}

	tokens := &auth.TokenService{
		DB:            db,
		JWTSecret:     []byte(cfg.JWT_SECRET),
		RefreshSecret: []byte(cfg.REFRESH_SECRET),
	}
	sessions := session.NewStore(db, cfg.SESSION_TTL)

	orderSvc := orders.NewService(db)
	catalogSvc := catalog.NewService(db)
	cartSvc := cart.NewService(db)
	checkoutSvc := checkout.NewService(db, producer)
	reviewSvc := reviews.NewService(db, orderSvc)
	adminSvc := admin.NewService(db)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), requestlog.Middleware(logger))

	deps := httpserver.Deps{
		Session:  sessions,
		Tokens:   tokens,
		Auth:     &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: producer, Dev: cfg.DEV_MODE},
		Cart:     &handlers.CartHandler{Cart: cartSvc, Dev: cfg.DEV_MODE},
		Checkout: &handlers.CheckoutHandler{Checkout: checkoutSvc, Dev: cfg.DEV_MODE},
		Orders:   &handlers.OrdersHandler{Orders: orderSvc, Dev: cfg.DEV_MODE},
		Products: &handlers.ProductHandler{Catalog: catalogSvc, Reviews: reviewSvc, Orders: orderSvc, Dev: cfg.DEV_MODE},
		Search:   &handlers.SearchHandler{ES: esClient, Index: "products", Catalog: catalogSvc, Dev: cfg.DEV_MODE},
		Admin:    &handlers.AdminHandler{Admin: adminSvc, Producer: producer, Dev: cfg.DEV_MODE},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         cfg.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTP_ADDR)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}
	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
