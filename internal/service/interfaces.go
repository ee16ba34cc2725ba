package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/at-my-table/backend/internal/middleware"
	"github.com/at-my-table/backend/internal/model"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(name, email, password string) (string, error)
	Login(email, password string) (string, error)
	ValidateToken(token string) (*middleware.TokenClaims, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	ListRecipes(ctx context.Context, userID uuid.UUID, query string, favoritesOnly bool) ([]*model.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error
	SetFavorite(ctx context.Context, userID, id uuid.UUID, favorite bool) (*model.Recipe, error)
}

// IImportService defines the interface for the recipe import pipeline
type IImportService interface {
	ImportRecipe(ctx context.Context, url string, userID uuid.UUID) (*model.Recipe, error)
}
