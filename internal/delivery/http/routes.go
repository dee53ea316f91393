package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/homeplate/backend/config"
	"github.com/homeplate/backend/internal/domain"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, limiter domain.RateLimiter, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(requestid.New())
	router.Use(RequestLoggerMiddleware(logger))

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) == 1 && cfg.Server.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public comparison endpoint for the marketing page
		v1.POST("/comparison", handler.CompareCosts)

		// Sync endpoints: authentication first, then the rate limiter,
		// so unauthenticated callers cannot consume quota
		sync := v1.Group("/sync")
		sync.Use(BearerAuthMiddleware(cfg.Sync.Secret))
		{
			sync.POST("/products", RateLimitMiddleware(limiter), handler.TriggerSync)
			sync.GET("/history", handler.SyncHistory)
		}
	}

	return router
}
