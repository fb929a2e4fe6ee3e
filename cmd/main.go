package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"knjizara/internal/app/bookstore/config"
	"knjizara/internal/app/bookstore/handler"
	"knjizara/internal/app/bookstore/processor"
	"knjizara/internal/app/bookstore/repository"
	"knjizara/internal/app/bookstore/service"
	"knjizara/internal/app/bookstore/util"
	"knjizara/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("knjizara", logLevel)

	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().
		Str("address", cfg.Redis.Address()).
		Msg("Connected to Redis")

	bookProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.BookTopic)
	defer bookProducer.Close()
	orderProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic)
	defer orderProducer.Close()
	logger.Info().
		Str("book_topic", cfg.Kafka.BookTopic).
		Str("order_topic", cfg.Kafka.OrderTopic).
		Msg("Initialized Kafka producers")

	bookRepo := repository.NewBookRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	sellerRepo := repository.NewSellerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)

	pricing := service.NewPricingCalculator(cfg.Shipping)

	catalogService := service.NewCatalogService(bookRepo, categoryRepo, redisClient)
	listingService := service.NewListingService(bookRepo, categoryRepo, sellerRepo, wishlistRepo, bookProducer)
	orderService := service.NewOrderService(orderRepo, bookRepo, addressRepo, sellerRepo, pricing, orderProducer)
	addressService := service.NewAddressService(addressRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, bookRepo)

	// Фоновый воркер: устаревшие объявления помечаются EXPIRED по расписанию
	expirer := processor.NewListingExpirer(bookRepo, bookProducer, cfg.Worker.ListingTTLDays)
	if err := expirer.Start(context.Background(), cfg.Worker.ExpirySchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start listing expirer")
	}
	defer expirer.Stop()
	logger.Info().
		Str("schedule", cfg.Worker.ExpirySchedule).
		Int("ttl_days", cfg.Worker.ListingTTLDays).
		Msg("Started listing expirer")

	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	listingHandler := handler.NewListingHandler(listingService)
	orderHandler := handler.NewOrderHandler(orderService)
	addressHandler := handler.NewAddressHandler(addressService)
	wishlistHandler := handler.NewWishlistHandler(wishlistService)

	router := handler.SetupRoutes(
		catalogHandler,
		listingHandler,
		orderHandler,
		addressHandler,
		wishlistHandler,
		authMiddleware,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Knjizara")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Knjizara...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Knjizara stopped gracefully")
}

func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else {
				pingErr := sqlDB.Ping()
				if pingErr != nil {
					err = pingErr
				} else {
					sqlDB.SetMaxOpenConns(25)
					sqlDB.SetMaxIdleConns(5)
					sqlDB.SetConnMaxLifetime(5 * time.Minute)
					sqlDB.SetConnMaxIdleTime(1 * time.Minute)
					return db, nil
				}
			}
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
