package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/farmmarket/internal/auth"
	"github.com/vasiliy-maslov/farmmarket/internal/config"
	"github.com/vasiliy-maslov/farmmarket/internal/db"
	"github.com/vasiliy-maslov/farmmarket/internal/handler"
	"github.com/vasiliy-maslov/farmmarket/internal/marketprice"
	"github.com/vasiliy-maslov/farmmarket/internal/notification"
	"github.com/vasiliy-maslov/farmmarket/internal/order"
	"github.com/vasiliy-maslov/farmmarket/internal/payment"
	"github.com/vasiliy-maslov/farmmarket/internal/product"
	"github.com/vasiliy-maslov/farmmarket/internal/realtime"
	"github.com/vasiliy-maslov/farmmarket/internal/transport"
	"github.com/vasiliy-maslov/farmmarket/internal/user"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "farmmarket").Logger()

	log.Info().Msg("Farm market starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	if err := db.ApplyMigrations(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	// Market prices go through sqlx over the pgx stdlib driver; the rest of
	// the repositories use the pool directly.
	sqlxDB, err := sqlx.ConnectContext(ctx, "pgx", cfg.Postgres.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open sqlx connection")
	}
	defer sqlxDB.Close()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	}

	hub := realtime.NewHub(rdb)
	go hub.Run(ctx)

	var processor payment.Processor
	if cfg.Stripe.SecretKey != "" {
		processor = payment.NewStripeProcessor(cfg.Stripe.SecretKey)
		log.Info().Msg("Using Stripe payment processor")
	} else {
		processor = payment.NewMockProcessor()
		log.Warn().Msg("STRIPE_SECRET_KEY not set, using mock payment processor")
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret)
	notifications := notification.NewService()

	userRepo := user.NewRepository(pg.Pool)
	productRepo := product.NewRepository(pg.Pool)
	orderRepo := order.NewRepository(pg.Pool)
	priceRepo := marketprice.NewRepository(sqlxDB)

	userSvc := user.NewService(userRepo)
	productSvc := product.NewService(productRepo)
	orderSvc := order.NewService(orderRepo, productRepo, notifications, hub, processor)
	priceSvc := marketprice.NewService(priceRepo)

	router := transport.NewRouter(transport.Deps{
		Tokens:        tokens,
		Auth:          handler.NewAuthHandler(userSvc, tokens),
		Users:         handler.NewUserHandler(userSvc),
		Products:      handler.NewProductHandler(productSvc),
		Orders:        handler.NewOrderHandler(orderSvc),
		MarketPrices:  handler.NewMarketPriceHandler(priceSvc),
		Notifications: handler.NewNotificationHandler(notifications),
		Payments:      handler.NewPaymentHandler(processor),
		Hub:           hub,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
