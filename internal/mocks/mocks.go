package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/at-my-table/backend/internal/middleware"
	"github.com/at-my-table/backend/internal/model"
	"github.com/at-my-table/backend/internal/service"
)

// MockImportService is a mock implementation of the import service
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) ImportRecipe(ctx context.Context, url string, userID uuid.UUID) (*model.Recipe, error) {
	args := m.Called(ctx, url, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) CreateRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	args := m.Called(ctx, recipe)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) ListRecipes(ctx context.Context, userID uuid.UUID, query string, favoritesOnly bool) ([]*model.Recipe, error) {
	args := m.Called(ctx, userID, query, favoritesOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockRecipeService) SetFavorite(ctx context.Context, userID, id uuid.UUID, favorite bool) (*model.Recipe, error) {
	args := m.Called(ctx, userID, id, favorite)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// MockAuthService is a mock implementation of the auth service
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(name, email, password string) (string, error) {
	args := m.Called(name, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Login(email, password string) (string, error) {
	args := m.Called(email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(token string) (*middleware.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*middleware.TokenClaims), args.Error(1)
}

// MemoryCache is an in-process RecipeCache backed by a map, for tests
// that exercise the import hot-cache path without a redis server.
type MemoryCache struct {
	Entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{Entries: map[string][]byte{}}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := c.Entries[key]
	if !ok {
		return nil, service.ErrCacheMiss
	}
	return data, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.Entries[key] = value
	return nil
}

func (c *MemoryCache) Del(_ context.Context, key string) error {
	delete(c.Entries, key)
	return nil
}

// StubRenderer serves canned pages and records how often it was asked to
// render.
type StubRenderer struct {
	Pages   map[string]string
	Err     error
	Renders int
}

func (r *StubRenderer) Render(ctx context.Context, url string) (*service.LoadedPage, error) {
	r.Renders++
	if r.Err != nil {
		return nil, r.Err
	}
	return &service.LoadedPage{URL: url, HTML: r.Pages[url]}, nil
}
