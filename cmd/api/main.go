package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"bizdir/internal/cache"
	"bizdir/internal/clock"
	"bizdir/internal/config"
	"bizdir/internal/database"
	"bizdir/internal/logger"
	"bizdir/internal/router"
	"bizdir/internal/validator"
)

// @title           bizdir API
// @version         1.0
// @description     Business directory with moderation, search and promotions.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	cacheClient := newCacheClient(appConfig)
	defer func() { _ = cacheClient.Close() }()

	validator.Register()

	engine := router.New(router.Deps{
		DB:            dbManager.DB(),
		Cache:         cache.NewVersioned(cacheClient, appConfig.CacheTTL, logger.Named("cache")),
		Clock:         clock.System(),
		MetricsAPIKey: appConfig.MetricsAPIKey,
	})

	log.Infof("Starting bizdir server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return engine.Run(":" + appConfig.Port)
}

// newCacheClient connects to Redis when an address is configured. The cache
// is never required, so an unreachable Redis degrades to the in-process cache.
func newCacheClient(cfg *config.Config) cache.Client {
	log := logger.Get()
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, using in-process cache")
		return cache.NewMemoryClient()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warnw("Redis unavailable, using in-process cache", "addr", cfg.RedisAddr, "error", err)
		return cache.NewMemoryClient()
	}
	log.Infow("Connected to Redis", "addr", cfg.RedisAddr)
	return client
}
