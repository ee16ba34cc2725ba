package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/at-my-table/backend/config"
	"github.com/at-my-table/backend/internal/middleware"
	"github.com/at-my-table/backend/internal/service"
)

// SetupAPI wires services and handlers onto the router
func SetupAPI(router *gin.Engine, db *gorm.DB, redisClient *redis.Client, renderer service.PageRenderer, mirror service.ImageMirror, cfg *config.Config) {
	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db)

	var importCache service.RecipeCache
	var importLimiter *middleware.RateLimiter
	if redisClient != nil {
		importCache = service.NewRedisRecipeCache(redisClient)
		importLimiter = middleware.NewImportRateLimiter(redisClient)
	}
	importService := service.NewImportService(db, renderer, importCache, mirror)

	authHandler := NewAuthHandler(authService)
	recipeHandler := NewRecipeHandler(recipeService, importService, authService, importLimiter)

	apiGroup := router.Group("/api")
	{
		authHandler.RegisterRoutes(apiGroup)
		recipeHandler.RegisterRoutes(apiGroup)
	}
}
