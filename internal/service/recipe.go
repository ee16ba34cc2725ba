package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/at-my-table/backend/internal/model"
)

// ErrNotOwner is returned when a user tries to mutate a recipe they do not
// own.
var ErrNotOwner = errors.New("recipe does not belong to user")

// RecipeService handles recipe operations
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// CreateRecipe stores a manually authored recipe. Manual entries carry no
// source URL.
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	recipe.SourceURL = nil
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, err
	}
	return recipe, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes lists a user's recipes, optionally filtered by a keyword
// query and by favorites.
func (s *RecipeService) ListRecipes(ctx context.Context, userID uuid.UUID, query string, favoritesOnly bool) ([]*model.Recipe, error) {
	dbQuery := s.db.WithContext(ctx).Where("user_id = ?", userID)

	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		if s.db.Dialector.Name() == "postgres" {
			dbQuery = dbQuery.Where("LOWER(title) LIKE ? OR LOWER(ingredients::text) LIKE ?", like, like)
		} else {
			dbQuery = dbQuery.Where("LOWER(title) LIKE ? OR LOWER(ingredients) LIKE ?", like, like)
		}
	}
	if favoritesOnly {
		dbQuery = dbQuery.Where("is_favorite = ?", true)
	}

	var recipes []model.Recipe
	if err := dbQuery.Order("created_at DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}

	result := make([]*model.Recipe, len(recipes))
	for i := range recipes {
		result[i] = &recipes[i]
	}
	return result, nil
}

// DeleteRecipe deletes a recipe owned by the given user
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	recipe, err := s.GetRecipe(ctx, id)
	if err != nil {
		return err
	}
	if recipe.UserID != userID {
		return ErrNotOwner
	}
	return s.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", id).Error
}

// SetFavorite toggles the favorite flag on a recipe owned by the given user
func (s *RecipeService) SetFavorite(ctx context.Context, userID, id uuid.UUID, favorite bool) (*model.Recipe, error) {
	recipe, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.UserID != userID {
		return nil, ErrNotOwner
	}
	if err := s.db.WithContext(ctx).Model(recipe).Update("is_favorite", favorite).Error; err != nil {
		return nil, err
	}
	recipe.IsFavorite = favorite
	return recipe, nil
}
