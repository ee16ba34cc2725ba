package api

// ImportRecipeRequest is the body of POST /api/recipes/import. UserID is
// optional when the request carries a bearer token.
type ImportRecipeRequest struct {
	URL    string `json:"url"`
	UserID string `json:"user_id"`
}

// CreateRecipeRequest is the body of POST /api/recipes for manual entries
type CreateRecipeRequest struct {
	Title        string            `json:"title" binding:"required"`
	ImageURL     string            `json:"image_url"`
	Ingredients  []string          `json:"ingredients"`
	Instructions []string          `json:"instructions"`
	Servings     string            `json:"servings"`
	PrepTime     string            `json:"prep_time"`
	Nutrition    map[string]string `json:"nutrition"`
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
