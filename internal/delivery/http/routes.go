package http

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/recipematch/backend/config"
	"go.uber.org/zap"
)

const maxBodySize = 1 << 20

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(requestid.New())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(BodySizeLimit(maxBodySize))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, logger))
	{
		recommendations := v1.Group("/recommendations")
		{
			recommendations.POST("/smart-matches", handler.SmartMatches)
		}

		recipes := v1.Group("/recipes")
		{
			recipes.POST("/product-matches", handler.ProductMatches)
		}

		catalog := v1.Group("/catalog")
		{
			catalog.GET("/groups", handler.CatalogGroups)
			catalog.DELETE("/cache", handler.InvalidateCatalog)
		}
	}

	return router
}
