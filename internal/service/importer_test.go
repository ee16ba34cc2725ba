package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-my-table/backend/internal/mocks"
	"github.com/at-my-table/backend/internal/model"
	"github.com/at-my-table/backend/internal/service"
	"github.com/at-my-table/backend/internal/testdb"
)

const soupPage = `<html><head>
	<meta property="og:image" content="https://example.com/soup.jpg">
</head><body>
	<h1>Tomato Soup</h1>
	<div class="wprm-recipe-ingredients">
		<ul><li>2 cups tomato</li><li>1 tsp salt</li></ul>
	</div>
	<div class="wprm-recipe-instructions">
		<ul><li>Simmer 20 minutes</li></ul>
	</div>
</body></html>`

func TestImportRecipeStoresExtractedPage(t *testing.T) {
	db := testdb.Setup(t)
	renderer := &mocks.StubRenderer{Pages: map[string]string{
		"https://example.com/recipe-a": soupPage,
	}}
	svc := service.NewImportService(db, renderer, nil, nil)

	userID := uuid.New()
	recipe, err := svc.ImportRecipe(context.Background(), "https://example.com/recipe-a", userID)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, recipe.ID)
	assert.Equal(t, userID, recipe.UserID)
	assert.Equal(t, "Tomato Soup", recipe.Title)
	require.NotNil(t, recipe.SourceURL)
	assert.Equal(t, "https://example.com/recipe-a", *recipe.SourceURL)
	assert.Equal(t, "https://example.com/soup.jpg", recipe.ImageURL)
	assert.Equal(t, model.JSONBStringArray{"2 cups tomato", "1 tsp salt"}, recipe.Ingredients)
	assert.Equal(t, model.JSONBStringArray{"Simmer 20 minutes"}, recipe.Instructions)

	var stored model.Recipe
	require.NoError(t, db.First(&stored, "id = ?", recipe.ID).Error)
	assert.Equal(t, recipe.Title, stored.Title)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestImportRecipeIsIdempotentPerURL(t *testing.T) {
	db := testdb.Setup(t)
	renderer := &mocks.StubRenderer{Pages: map[string]string{
		"https://example.com/recipe-a": soupPage,
	}}
	svc := service.NewImportService(db, renderer, nil, nil)

	userID := uuid.New()
	first, err := svc.ImportRecipe(context.Background(), "https://example.com/recipe-a", userID)
	require.NoError(t, err)
	second, err := svc.ImportRecipe(context.Background(), "https://example.com/recipe-a", userID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, renderer.Renders, "second import must not render")

	var count int64
	require.NoError(t, db.Model(&model.Recipe{}).Where("source_url = ?", "https://example.com/recipe-a").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestImportRecipeDifferentUsersGetOwnRows(t *testing.T) {
	db := testdb.Setup(t)
	renderer := &mocks.StubRenderer{Pages: map[string]string{
		"https://example.com/recipe-a": soupPage,
	}}
	svc := service.NewImportService(db, renderer, nil, nil)

	a, err := svc.ImportRecipe(context.Background(), "https://example.com/recipe-a", uuid.New())
	require.NoError(t, err)
	b, err := svc.ImportRecipe(context.Background(), "https://example.com/recipe-a", uuid.New())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, renderer.Renders)
}

func TestImportRecipeMissingURL(t *testing.T) {
	svc := service.NewImportService(testdb.Setup(t), &mocks.StubRenderer{}, nil, nil)

	_, err := svc.ImportRecipe(context.Background(), "", uuid.New())
	assert.ErrorIs(t, err, service.ErrMissingURL)
}

func TestImportRecipeWrapsRenderFailure(t *testing.T) {
	renderErr := &service.RenderError{URL: "https://example.com/down", Err: errors.New("navigation timeout")}
	svc := service.NewImportService(testdb.Setup(t), &mocks.StubRenderer{Err: renderErr}, nil, nil)

	_, err := svc.ImportRecipe(context.Background(), "https://example.com/down", uuid.New())
	require.Error(t, err)

	var importErr *service.ImportError
	require.ErrorAs(t, err, &importErr)
	var re *service.RenderError
	assert.ErrorAs(t, err, &re)
	assert.Contains(t, err.Error(), "failed to import recipe")
	assert.Contains(t, err.Error(), "navigation timeout")

	var pe *service.PersistenceError
	assert.False(t, errors.As(err, &pe))
}

func TestImportRecipeWrapsPersistenceFailure(t *testing.T) {
	db := testdb.Setup(t)
	require.NoError(t, db.Migrator().DropTable(&model.Recipe{}))

	renderer := &mocks.StubRenderer{Pages: map[string]string{
		"https://example.com/recipe-a": soupPage,
	}}
	svc := service.NewImportService(db, renderer, nil, nil)

	_, err := svc.ImportRecipe(context.Background(), "https://example.com/recipe-a", uuid.New())
	require.Error(t, err)

	var importErr *service.ImportError
	require.ErrorAs(t, err, &importErr)
	var pe *service.PersistenceError
	assert.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "recipe save error")
}

func TestImportRecipeCacheHitServesStoredRow(t *testing.T) {
	db := testdb.Setup(t)
	renderer := &mocks.StubRenderer{Pages: map[string]string{
		"https://example.com/recipe-a": soupPage,
	}}
	cache := mocks.NewMemoryCache()
	svc := service.NewImportService(db, renderer, cache, nil)

	userID := uuid.New()
	first, err := svc.ImportRecipe(context.Background(), "https://example.com/recipe-a", userID)
	require.NoError(t, err)
	require.Len(t, cache.Entries, 1)

	second, err := svc.ImportRecipe(context.Background(), "https://example.com/recipe-a", userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, renderer.Renders, "cache hit must not render")
}

func TestImportRecipeCacheHitReflectsCurrentState(t *testing.T) {
	db := testdb.Setup(t)
	renderer := &mocks.StubRenderer{Pages: map[string]string{
		"https://example.com/recipe-a": soupPage,
	}}
	cache := mocks.NewMemoryCache()
	svc := service.NewImportService(db, renderer, cache, nil)

	userID := uuid.New()
	first, err := svc.ImportRecipe(context.Background(), "https://example.com/recipe-a", userID)
	require.NoError(t, err)

	_, err = service.NewRecipeService(db).SetFavorite(context.Background(), userID, first.ID, true)
	require.NoError(t, err)

	second, err := svc.ImportRecipe(context.Background(), "https://example.com/recipe-a", userID)
	require.NoError(t, err)
	assert.True(t, second.IsFavorite, "cache hit must reflect the stored row, not the snapshot")
}

func TestImportRecipeDeletedRowNotServedFromCache(t *testing.T) {
	db := testdb.Setup(t)
	renderer := &mocks.StubRenderer{Pages: map[string]string{
		"https://example.com/recipe-a": soupPage,
	}}
	cache := mocks.NewMemoryCache()
	svc := service.NewImportService(db, renderer, cache, nil)

	userID := uuid.New()
	first, err := svc.ImportRecipe(context.Background(), "https://example.com/recipe-a", userID)
	require.NoError(t, err)

	require.NoError(t, service.NewRecipeService(db).DeleteRecipe(context.Background(), userID, first.ID))

	second, err := svc.ImportRecipe(context.Background(), "https://example.com/recipe-a", userID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID, "a deleted row must not come back through the cache")
	assert.Equal(t, 2, renderer.Renders)

	var live int64
	require.NoError(t, db.Model(&model.Recipe{}).Where("user_id = ?", userID).Count(&live).Error)
	assert.EqualValues(t, 1, live)
}

func TestImportRecipePersistsGroupHeaders(t *testing.T) {
	db := testdb.Setup(t)
	renderer := &mocks.StubRenderer{Pages: map[string]string{
		"https://example.com/grouped": `<html><body>
			<h1>Lasagna</h1>
			<div class="wprm-recipe-ingredient-group">
				<div class="wprm-recipe-group-name">For the sauce</div>
				<ul><li class="wprm-recipe-ingredient">400g tomatoes</li></ul>
			</div>
		</body></html>`,
	}}
	svc := service.NewImportService(db, renderer, nil, nil)

	recipe, err := svc.ImportRecipe(context.Background(), "https://example.com/grouped", uuid.New())
	require.NoError(t, err)

	assert.Equal(t, model.JSONBStringArray{"**For the sauce**", "400g tomatoes"}, recipe.Ingredients)
}
