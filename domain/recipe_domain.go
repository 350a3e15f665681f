package domain

import (
	"errors"
)

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessFavorite        = "recipe added to favorites"
	MessageSuccessUnfavorite      = "recipe removed from favorites"
	MessageSuccessAddToCart       = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart  = "recipe removed from shopping cart"

	MessageFailedGetRecipes           = "failed to get recipes"
	MessageFailedGetRecipeDetail      = "failed to get recipe detail"
	MessageFailedCreateRecipe         = "failed to create recipe"
	MessageFailedUpdateRecipe         = "failed to update recipe"
	MessageFailedDeleteRecipe         = "failed to delete recipe"
	MessageFailedFavorite             = "failed to add recipe to favorites"
	MessageFailedUnfavorite           = "failed to remove recipe from favorites"
	MessageFailedAddToCart            = "failed to add recipe to shopping cart"
	MessageFailedRemoveFromCart       = "failed to remove recipe from shopping cart"
	MessageFailedDownloadShoppingCart = "failed to generate shopping list"

	ErrRecipeNotFound   = errors.New("recipe not found")
	ErrNotRecipeAuthor  = errors.New("only the author can modify this recipe")
	ErrAlreadyFavorited = errors.New("recipe is already in favorites")
	ErrNotFavorited     = errors.New("recipe is not in favorites")
	ErrAlreadyInCart    = errors.New("recipe is already in shopping cart")
	ErrNotInCart        = errors.New("recipe is not in shopping cart")
	ErrCartEmpty        = errors.New("shopping cart is empty")
)

type (
	// Amount carries no validate tag: zero and negative values must
	// reach the recipe validator so the error names the field.
	IngredientLineRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount"`
	}

	RecipeRequest struct {
		Name        string                  `json:"name" validate:"required,max=200"`
		Image       string                  `json:"image"`
		Text        string                  `json:"text" validate:"required"`
		CookingTime int                     `json:"cooking_time"`
		Ingredients []IngredientLineRequest `json:"ingredients" validate:"required,dive"`
		Tags        []string                `json:"tags" validate:"dive,uuid"`
	}

	IngredientLineResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               string                   `json:"id"`
		Author           UserProfile              `json:"author"`
		Name             string                   `json:"name"`
		ImageURL         string                   `json:"image_url,omitempty"`
		Text             string                   `json:"text"`
		CookingTime      int                      `json:"cooking_time"`
		Ingredients      []IngredientLineResponse `json:"ingredients"`
		Tags             []TagResponse            `json:"tags"`
		IsFavorited      bool                     `json:"is_favorited"`
		IsInShoppingCart bool                     `json:"is_in_shopping_cart"`
	}

	RecipeShortResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ImageURL    string `json:"image_url,omitempty"`
		CookingTime int    `json:"cooking_time"`
	}

	// RecipeFilter narrows GET /recipes. The viewer-relative filters are
	// ignored for anonymous requests.
	RecipeFilter struct {
		AuthorID           string
		TagSlugs           []string
		OnlyFavorited      bool
		OnlyInShoppingCart bool
	}

	ShoppingListItem struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		TotalAmount     int    `json:"total_amount"`
	}
)
