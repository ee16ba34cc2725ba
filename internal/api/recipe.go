package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/at-my-table/backend/internal/middleware"
	"github.com/at-my-table/backend/internal/model"
	"github.com/at-my-table/backend/internal/service"
)

type RecipeHandler struct {
	recipeService service.IRecipeService
	importService service.IImportService
	authService   service.IAuthService
	importLimiter *middleware.RateLimiter
}

func NewRecipeHandler(recipeService service.IRecipeService, importService service.IImportService, authService service.IAuthService, importLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		importService: importService,
		authService:   authService,
		importLimiter: importLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("/health", h.Health)

		importHandlers := []gin.HandlerFunc{middleware.OptionalAuthMiddleware(h.authService)}
		if h.importLimiter != nil {
			importHandlers = append(importHandlers, h.importLimiter.RateLimitMiddleware())
		}
		importHandlers = append(importHandlers, h.ImportRecipe)
		recipes.POST("/import", importHandlers...)

		recipes.GET("", middleware.AuthMiddleware(h.authService), h.ListRecipes)
		recipes.GET("/:id", middleware.AuthMiddleware(h.authService), h.GetRecipe)
		recipes.POST("", middleware.AuthMiddleware(h.authService), h.CreateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.authService), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.authService), h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.authService), h.UnfavoriteRecipe)
	}
}

// Health answers cold-start wake-up pings from the frontend
func (h *RecipeHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ImportRecipe runs the import pipeline for a recipe URL
func (h *RecipeHandler) ImportRecipe(c *gin.Context) {
	var req ImportRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	userID, ok := resolveUserID(c, req.UserID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id is required"})
		return
	}

	recipe, err := h.importService.ImportRecipe(c.Request.Context(), req.URL, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"recipe":  recipe,
	})
}

// resolveUserID prefers the authenticated identity over the body field
func resolveUserID(c *gin.Context, bodyUserID string) (uuid.UUID, bool) {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	if bodyUserID != "" {
		if id, err := uuid.Parse(bodyUserID); err == nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	recipes, err := h.recipeService.ListRecipes(c.Request.Context(), userID, c.Query("q"), c.Query("favorites") == "true")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)

	recipe := &model.Recipe{
		UserID:       userID,
		Title:        req.Title,
		ImageURL:     req.ImageURL,
		Ingredients:  model.JSONBStringArray(req.Ingredients),
		Instructions: model.JSONBStringArray(req.Instructions),
		Servings:     req.Servings,
		PrepTime:     req.PrepTime,
		Nutrition:    model.JSONBStringMap(req.Nutrition),
	}

	created, err := h.recipeService.CreateRecipe(c.Request.Context(), recipe)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": created})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.setFavorite(c, true)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.setFavorite(c, false)
}

func (h *RecipeHandler) setFavorite(c *gin.Context, favorite bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)

	recipe, err := h.recipeService.SetFavorite(c.Request.Context(), userID, id, favorite)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}
