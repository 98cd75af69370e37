package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kilat-Home-Services/service-booking/internal/application"
	"github.com/Kilat-Home-Services/service-booking/internal/config"
	bookingDomain "github.com/Kilat-Home-Services/service-booking/internal/domain/booking"
	bookingEvents "github.com/Kilat-Home-Services/service-booking/internal/events"
	"github.com/Kilat-Home-Services/service-booking/internal/gateway"
	"github.com/Kilat-Home-Services/service-booking/internal/handler"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/auth"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/cache"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/database"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/health"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/kafka"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/logger"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/middleware"
	"github.com/Kilat-Home-Services/service-booking/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("submit_mode", cfg.SubmitMode),
		zap.String("session_store", cfg.SessionStore),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthHandler := health.NewHandler("service-booking")

	// Redis backs the catalog cache and, optionally, the wizard sessions
	var redisClient *redis.Client
	catalogCache := cache.Cache(cache.NewNoop())
	if cfg.RedisConfig.Addr != "" {
		redisClient = cache.NewRedisClient(cfg.RedisConfig.Addr, cfg.RedisConfig.Password, cfg.RedisConfig.DB)
		defer func() { _ = redisClient.Close() }()

		redisCache := cache.NewRedis(redisClient, "booking:")
		catalogCache = redisCache
		healthHandler.AddChecker("redis", redisCache.Ping)
	}

	// Initialize wizard session store
	var wizardRepo bookingDomain.WizardRepository
	switch cfg.SessionStore {
	case config.SessionRedis:
		wizardRepo = repository.NewRedisWizardStore(redisClient, cfg.SessionTTL)
	default:
		memoryStore := repository.NewMemoryWizardStore(cfg.SessionTTL)
		go memoryStore.RunJanitor(ctx, time.Minute)
		wizardRepo = memoryStore
	}

	// Initialize catalog provider
	catalogClient := gateway.NewCatalogClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, cfg.Catalog.Timeout)
	catalogProvider := repository.NewCachedCatalog(catalogClient, catalogCache, cfg.CatalogCacheTTL, log)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize submission target
	var (
		submitter   application.Submitter
		bookingRepo bookingDomain.BookingRepository
	)
	switch cfg.SubmitMode {
	case config.SubmitLocal:
		db, err := database.Connect(cfg.DBConfig, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}

		// Run database migrations
		if cfg.AppEnv == "development" {
			if err := db.AutoMigrate(&repository.BookingModel{}); err != nil {
				log.Fatal("failed to run auto-migration", zap.Error(err))
			}
			log.Info("database migration completed (dev auto-migrate)")
		} else {
			if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
				log.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		healthHandler.AddChecker("postgres", func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})

		bookingRepo = repository.NewGormBookingRepository(db)
		submitter = application.NewLedgerSubmitter(bookingRepo, log)
	default:
		submitter = gateway.NewBookingClient(cfg.BookingAPI.BaseURL, cfg.BookingAPI.APIKey, cfg.BookingAPI.Timeout)
	}

	// Initialize pricing strategy
	pricingStrategy := bookingDomain.NewPricingStrategyWithFee(cfg.PlatformFeePct)

	// Initialize application services
	wizardService := application.NewWizardService(
		wizardRepo,
		catalogProvider,
		pricingStrategy,
		submitter,
		kafkaProducer,
		log,
	)

	var ledgerService *application.LedgerService
	if bookingRepo != nil {
		ledgerService = application.NewLedgerService(bookingRepo, wizardService, log)
	}

	// Catalog events evict stale cache entries
	if cfg.ConsumeCatalog {
		groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
		catalogConsumer := bookingEvents.NewCatalogEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			catalogProvider,
			log,
		)
		defer func() { _ = catalogConsumer.Close() }()

		go func() {
			log.Info("starting catalog event consumer")
			if err := catalogConsumer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("catalog event consumer error", zap.Error(err))
			}
		}()
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.Issuer,
		15*time.Minute,
	)

	// Initialize HTTP handlers
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	wizardHandler := handler.NewWizardHandler(wizardService, limiter, log)
	catalogHandler := handler.NewCatalogHandler(catalogProvider)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins...))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler.RegisterRoutes(router)

	// Register routes
	wizardHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	catalogHandler.RegisterRoutes(&router.RouterGroup)
	if ledgerService != nil {
		bookingHandler := handler.NewBookingHandler(ledgerService)
		bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	}

	// Register admin handler routes
	adminBookingHandler := handler.NewAdminBookingHandler(ledgerService, catalogProvider)
	adminBookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer and janitor context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
