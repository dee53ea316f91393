package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/homeplate/backend/config"
	httpDelivery "github.com/homeplate/backend/internal/delivery/http"
	"github.com/homeplate/backend/internal/domain"
	"github.com/homeplate/backend/internal/infrastructure/cache"
	"github.com/homeplate/backend/internal/infrastructure/kroger"
	"github.com/homeplate/backend/internal/infrastructure/ratelimit"
	"github.com/homeplate/backend/internal/infrastructure/store"
	"github.com/homeplate/backend/internal/pkg/logging"
	"github.com/homeplate/backend/internal/usecase"
)

func main() {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting homeplate backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cacheType", cfg.Cache.Type))

	// Durable store for recipes and sync history
	db, err := store.Open(cfg.Sync.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	recipeStore := store.NewRecipeStore(db)
	historyStore := store.NewHistoryStore(db)

	// Product cache: shared Redis or per-process memory
	var productCache domain.CacheStore
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(context.Background(), cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisCache.Close()
		productCache = redisCache
	} else {
		productCache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.MaxEntries)
	}

	catalogClient := kroger.NewClient(
		cfg.Kroger.ClientID,
		cfg.Kroger.ClientSecret,
		cfg.Kroger.BaseURL,
		logger.Named("kroger"),
	)

	syncService := usecase.NewSyncService(
		recipeStore,
		historyStore,
		productCache,
		catalogClient,
		logger.Named("sync"),
		usecase.SyncServiceConfig{
			DefaultLocationID: cfg.Kroger.LocationID,
			PageSize:          cfg.Sync.PageSize,
			RecipeDelay:       cfg.Sync.RecipeDelay,
			ErrorCap:          cfg.Sync.HistoryErrorCap,
			MinConfidence:     cfg.Sync.MinConfidence,
			Staleness:         cfg.Sync.StalenessThreshold,
		},
	)

	limiter := ratelimit.NewFixedWindow(cfg.RateLimit.Requests, cfg.RateLimit.Window)

	handler := httpDelivery.NewHandler(syncService, historyStore, logger)
	router := httpDelivery.SetupRouter(cfg, handler, limiter, logger)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
