package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/at-my-table/backend/internal/model"
)

func extractHTML(html string) *RawRecipe {
	return ExtractRecipe(&LoadedPage{URL: "https://example.com/recipe", HTML: html})
}

func TestExtractRecipeFullPage(t *testing.T) {
	html := `<html><head>
		<meta property="og:image" content="https://example.com/soup.jpg">
	</head><body>
		<h1>Tomato Soup</h1>
		<div class="wprm-recipe-ingredients">
			<ul>
				<li class="wprm-recipe-ingredient">2 cups tomato</li>
				<li class="wprm-recipe-ingredient">1 tsp salt</li>
			</ul>
		</div>
		<div class="wprm-recipe-instructions">
			<ul><li>Simmer 20 minutes</li></ul>
		</div>
		<div class="wprm-recipe-servings">4</div>
		<div class="wprm-recipe-time">20 minutes</div>
	</body></html>`

	raw := extractHTML(html)

	assert.Equal(t, "Tomato Soup", raw.Title)
	assert.Equal(t, []model.IngredientLine{
		{Kind: model.IngredientItem, Text: "2 cups tomato"},
		{Kind: model.IngredientItem, Text: "1 tsp salt"},
	}, raw.Ingredients)
	assert.Equal(t, []string{"Simmer 20 minutes"}, raw.Instructions)
	assert.Equal(t, "https://example.com/soup.jpg", raw.Image)
	assert.Equal(t, "4", raw.Servings)
	assert.Equal(t, "20 minutes", raw.Time)
	assert.Empty(t, raw.Nutrition)
}

func TestExtractRecipeDegradesToDefaults(t *testing.T) {
	raw := extractHTML(`<html><body><p>not a recipe at all</p></body></html>`)

	assert.Equal(t, UntitledRecipe, raw.Title)
	assert.NotNil(t, raw.Ingredients)
	assert.Empty(t, raw.Ingredients)
	assert.NotNil(t, raw.Instructions)
	assert.Empty(t, raw.Instructions)
	assert.Equal(t, "", raw.Image)
	assert.Equal(t, "", raw.Servings)
	assert.Equal(t, "", raw.Time)
	assert.NotNil(t, raw.Nutrition)
	assert.Empty(t, raw.Nutrition)
}

func TestExtractGroupedIngredientsTakePrecedence(t *testing.T) {
	html := `<html><body>
		<h1>Lasagna</h1>
		<div class="wprm-recipe-ingredient-group">
			<div class="wprm-recipe-group-name">For the sauce</div>
			<ul>
				<li class="wprm-recipe-ingredient">400g tomatoes</li>
				<li class="wprm-recipe-ingredient">1 onion</li>
			</ul>
		</div>
		<div class="wprm-recipe-ingredient-group">
			<ul><li class="wprm-recipe-ingredient">250g pasta sheets</li></ul>
		</div>
		<div class="wprm-recipe-ingredients">
			<ul>
				<li>flat item that must not appear</li>
			</ul>
		</div>
	</body></html>`

	raw := extractHTML(html)

	assert.Equal(t, []model.IngredientLine{
		{Kind: model.IngredientHeader, Text: "For the sauce"},
		{Kind: model.IngredientItem, Text: "400g tomatoes"},
		{Kind: model.IngredientItem, Text: "1 onion"},
		{Kind: model.IngredientItem, Text: "250g pasta sheets"},
	}, raw.Ingredients)
}

func TestExtractFlatIngredientsFallback(t *testing.T) {
	html := `<html><body>
		<div class="wprm-recipe-ingredients">
			<ul>
				<li>2 eggs</li>
				<li>   </li>
				<li>100g flour</li>
			</ul>
		</div>
	</body></html>`

	raw := extractHTML(html)

	assert.Equal(t, []model.IngredientLine{
		{Kind: model.IngredientItem, Text: "2 eggs"},
		{Kind: model.IngredientItem, Text: "100g flour"},
	}, raw.Ingredients)
}

func TestExtractImageLazyLoadFallback(t *testing.T) {
	html := `<html><body>
		<div class="wprm-recipe-image">
			<img data-lazy-src="https://example.com/lazy.jpg">
		</div>
	</body></html>`

	raw := extractHTML(html)
	assert.Equal(t, "https://example.com/lazy.jpg", raw.Image)
}

func TestExtractImageSrcsetFirstURL(t *testing.T) {
	html := `<html><body>
		<div class="wprm-recipe-image">
			<img srcset="https://example.com/small.jpg 480w, https://example.com/big.jpg 1024w">
		</div>
	</body></html>`

	raw := extractHTML(html)
	assert.Equal(t, "https://example.com/small.jpg", raw.Image)
}

func TestExtractImagePrefersOpenGraph(t *testing.T) {
	html := `<html><head>
		<meta property="og:image" content="https://example.com/og.jpg">
	</head><body>
		<div class="wprm-recipe-image"><img src="https://example.com/direct.jpg"></div>
	</body></html>`

	raw := extractHTML(html)
	assert.Equal(t, "https://example.com/og.jpg", raw.Image)
}

func TestExtractImageSvgPlaceholderSecondPass(t *testing.T) {
	html := `<html><body>
		<div class="wprm-recipe-image">
			<img src="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg'/>">
		</div>
		<img src="https://example.com/real.jpg">
	</body></html>`

	raw := extractHTML(html)
	assert.Equal(t, "https://example.com/real.jpg", raw.Image)
}

func TestExtractNutrition(t *testing.T) {
	html := `<html><body>
		<div class="wprm-nutrition-label-container">
			<span class="wprm-nutrition-label-text-nutrition-container-calories">
				<span class="wprm-nutrition-label-label">Calories:</span>
				<span class="wprm-nutrition-label-value">250</span>
				<span class="wprm-nutrition-label-unit">kcal</span>
			</span>
			<span class="wprm-nutrition-label-text-nutrition-container-protein">
				Protein   12   g
			</span>
			<span class="wprm-nutrition-label-text-nutrition-container-fat"></span>
		</div>
	</body></html>`

	raw := extractHTML(html)

	assert.Equal(t, "Calories: 250 kcal", raw.Nutrition["calories"])
	assert.Equal(t, "Protein 12 g", raw.Nutrition["protein"])
	_, ok := raw.Nutrition["fat"]
	assert.False(t, ok, "empty nutrient sub-container must be omitted")
	_, ok = raw.Nutrition["sugar"]
	assert.False(t, ok, "missing nutrient sub-container must be omitted")
}

func TestExtractFirstSrcsetURL(t *testing.T) {
	assert.Equal(t, "", firstSrcsetURL(""))
	assert.Equal(t, "a.jpg", firstSrcsetURL("a.jpg"))
	assert.Equal(t, "a.jpg", firstSrcsetURL("  a.jpg 480w, b.jpg 800w"))
}
