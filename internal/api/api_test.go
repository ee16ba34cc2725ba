package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-my-table/backend/config"
	"github.com/at-my-table/backend/internal/api"
	"github.com/at-my-table/backend/internal/mocks"
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

// Exercises the wired API end to end: register a user, import a recipe
// through the full pipeline against a stub browser, then re-import and
// observe the cached row.
func TestImportFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testdb.Setup(t)
	renderer := &mocks.StubRenderer{Pages: map[string]string{
		"https://example.com/recipe-a": soupPage,
	}}

	router := gin.New()
	api.SetupAPI(router, db, nil, renderer, nil, &config.Config{JWTSecret: "test-secret"})

	// register
	w := doJSON(router, "POST", "/api/auth/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var reg map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	token := reg["token"]
	require.NotEmpty(t, token)

	// import
	w = doJSON(router, "POST", "/api/recipes/import", map[string]string{
		"url": "https://example.com/recipe-a",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)

	var first struct {
		Success bool `json:"success"`
		Recipe  struct {
			ID           string   `json:"id"`
			Title        string   `json:"title"`
			ImageURL     string   `json:"image_url"`
			Ingredients  []string `json:"ingredients"`
			Instructions []string `json:"instructions"`
		} `json:"recipe"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.True(t, first.Success)
	assert.Equal(t, "Tomato Soup", first.Recipe.Title)
	assert.Equal(t, "https://example.com/soup.jpg", first.Recipe.ImageURL)
	assert.Equal(t, []string{"2 cups tomato", "1 tsp salt"}, first.Recipe.Ingredients)
	assert.Equal(t, []string{"Simmer 20 minutes"}, first.Recipe.Instructions)
	assert.Equal(t, 1, renderer.Renders)

	// re-import returns the stored row without rendering again
	w = doJSON(router, "POST", "/api/recipes/import", map[string]string{
		"url": "https://example.com/recipe-a",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)

	var second struct {
		Recipe struct {
			ID string `json:"id"`
		} `json:"recipe"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.Recipe.ID, second.Recipe.ID)
	assert.Equal(t, 1, renderer.Renders)

	// the imported recipe shows up in the user's list
	req := httptest.NewRequest("GET", "/api/recipes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	lw := httptest.NewRecorder()
	router.ServeHTTP(lw, req)
	require.Equal(t, http.StatusOK, lw.Code)

	var list struct {
		Recipes []struct {
			ID string `json:"id"`
		} `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(lw.Body.Bytes(), &list))
	require.Len(t, list.Recipes, 1)
	assert.Equal(t, first.Recipe.ID, list.Recipes[0].ID)
}

func TestLoginFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testdb.Setup(t)
	router := gin.New()
	api.SetupAPI(router, db, nil, &mocks.StubRenderer{}, nil, &config.Config{JWTSecret: "test-secret"})

	w := doJSON(router, "POST", "/api/auth/register", map[string]string{
		"name":     "Test User",
		"email":    "login@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "POST", "/api/auth/login", map[string]string{
		"email":    "login@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "POST", "/api/auth/login", map[string]string{
		"email":    "login@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func doJSON(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
