package main

import (
	"context"
	"errors"
	"food-ordering-api/internal/auth"
	"food-ordering-api/internal/cache"
	"food-ordering-api/internal/client"
	"food-ordering-api/internal/config"
	"food-ordering-api/internal/logger"
	"food-ordering-api/internal/repository"
	"food-ordering-api/internal/server"
	"food-ordering-api/internal/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	// load .env into os.Environ
	envErr := godotenv.Load()

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to parse config")
	}

	logger.Init(cfg.Log)
	if envErr != nil {
		log.Info().Msg("no .env file found (ok in prod)")
	}

	ctx := context.Background()

	db, err := client.InitDBClient(cfg.DatabaseURL, cfg.Environment.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	var rdb *redis.Client
	idempotency := cache.NewNopIdempotencyStore()
	catalogCache := cache.NewNopCatalogCache()
	if cfg.Redis.Addr != "" {
		rdb, err = client.InitRedisClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		idempotency = cache.NewRedisIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		catalogCache = cache.NewRedisCatalogCache(rdb, cfg.Redis.CatalogTTL)
	}

	publisher := client.NewNopPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = client.NewKafkaPublisher(&cfg.Kafka)
	}

	var gateway client.CheckoutGateway
	switch cfg.Payment.Provider {
	case "paypal":
		gateway = client.NewPaypalGateway(&cfg.Paypal)
	case "stripe":
		gateway = client.NewStripeGateway(&cfg.Stripe)
	default:
		log.Fatal().Str("provider", cfg.Payment.Provider).Msg("unknown payment provider")
	}

	mailer := client.NewLogMailer()
	if cfg.Mail.Provider == "ses" {
		mailer, err = client.NewSESMailer(ctx, &cfg.Mail)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init ses mailer")
		}
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)

	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	offerRepo := repository.NewSpecialOfferRepository(db)
	cartRepo := repository.NewCartRepository(db)
	contactRepo := repository.NewContactRepository(db)

	if cfg.SeedCatalog {
		if err := itemRepo.Seed(ctx); err != nil {
			log.Error().Err(err).Msg("failed to seed catalog")
		}
	}

	orderService := service.NewOrderService(
		db,
		gateway,
		orderRepo,
		publisher,
		idempotency,
		mailer,
		cfg.FrontendURL,
		cfg.Payment.Currency,
	)
	userService := service.NewUserService(userRepo, tokens, mailer, cfg.PIN.VerifyTTL, cfg.PIN.ResetTTL)
	catalogService := service.NewCatalogService(itemRepo, offerRepo, catalogCache)
	cartService := service.NewCartService(cartRepo, itemRepo)
	contactService := service.NewContactService(contactRepo, mailer)

	var webhookService service.WebhookService
	if cfg.Payment.Provider == "stripe" && cfg.Stripe.WebhookSecret != "" {
		webhookService = service.NewWebhookService(
			db,
			client.NewStripeWebhookVerifier(&cfg.Stripe),
			orderRepo,
			repository.NewWebhookEventRepository(db),
			publisher,
		)
	}

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(
		cfg,
		tokens,
		orderService,
		userService,
		catalogService,
		cartService,
		contactService,
		webhookService,
	)

	log.Info().Str("addr", serverAddr).Str("payment_provider", cfg.Payment.Provider).Msg("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info().Msg("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("kafka writer close error")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close error")
		}
	}

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.Close()
	}
	log.Info().Msg("server exited gracefully")
}
