package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"CookShare-Backend/entities"
	"CookShare-Backend/internal/api/handlers"
	"CookShare-Backend/internal/api/routes"
	"CookShare-Backend/internal/middleware"
	"CookShare-Backend/internal/utils"
	"CookShare-Backend/pkg/catalog"
	"CookShare-Backend/pkg/jwt"
	"CookShare-Backend/pkg/recipe"
	"CookShare-Backend/pkg/relation"
	"CookShare-Backend/pkg/user"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiFixture struct {
	app   *fiber.App
	flour entities.Ingredient
	tag   entities.Tag
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Subscription{},
		&entities.Ingredient{},
		&entities.Tag{},
		&entities.Recipe{},
		&entities.RecipeIngredient{},
		&entities.Favorite{},
		&entities.ShoppingCart{},
	))

	f := &apiFixture{}
	f.flour = entities.Ingredient{ID: uuid.New(), Name: "flour", MeasurementUnit: "g"}
	f.tag = entities.Tag{ID: uuid.New(), Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}
	require.NoError(t, db.Create(&f.flour).Error)
	require.NoError(t, db.Create(&f.tag).Error)

	favorites := relation.NewSet(db, "user_id", "recipe_id", false,
		func(subject, target uuid.UUID) entities.Favorite {
			return entities.Favorite{ID: uuid.New(), UserID: subject, RecipeID: target}
		})
	carts := relation.NewSet(db, "user_id", "recipe_id", false,
		func(subject, target uuid.UUID) entities.ShoppingCart {
			return entities.ShoppingCart{ID: uuid.New(), UserID: subject, RecipeID: target}
		})
	subscriptions := relation.NewSet(db, "user_id", "author_id", true,
		func(subject, target uuid.UUID) entities.Subscription {
			return entities.Subscription{ID: uuid.New(), UserID: subject, AuthorID: target}
		})

	utils.InitValidator()
	jwtService := jwt.NewJWTService()
	userRepository := user.NewUserRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)
	catalogRepository := catalog.NewCatalogRepository(db)

	userService := user.NewUserService(userRepository, recipeRepository, subscriptions, jwtService, nil)
	catalogService := catalog.NewCatalogService(catalogRepository, nil)
	recipeService := recipe.NewRecipeService(recipeRepository, catalogRepository, favorites, carts, subscriptions, nil)

	f.app = fiber.New()
	routesConfig := routes.Config{
		App:            f.app,
		UserHandler:    handlers.NewUserHandler(userService, utils.Validate),
		CatalogHandler: handlers.NewCatalogHandler(catalogService),
		RecipeHandler:  handlers.NewRecipeHandler(recipeService, utils.Validate),
		Middleware:     middleware.NewMiddleware(),
		JWTService:     jwtService,
	}
	routesConfig.Setup()
	return f
}

func (f *apiFixture) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func (f *apiFixture) registerAndLogin(t *testing.T, email, username string) string {
	t.Helper()
	res := f.request(t, http.MethodPost, "/api/v1/users/register", "", fiber.Map{
		"email":      email,
		"username":   username,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "supersecret",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res = f.request(t, http.MethodPost, "/api/v1/users/login", "", fiber.Map{
		"email":    email,
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token
}

func (f *apiFixture) createRecipe(t *testing.T, token string) string {
	t.Helper()
	res := f.request(t, http.MethodPost, "/api/v1/recipes", token, fiber.Map{
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"cooking_time": 20,
		"ingredients":  []fiber.Map{{"id": f.flour.ID.String(), "amount": 200}},
		"tags":         []string{f.tag.ID.String()},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body.Data.ID
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	f := newAPIFixture(t)
	res := f.request(t, http.MethodPost, "/api/v1/recipes", "", fiber.Map{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestCreateRecipeValidationErrorMap(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAndLogin(t, "a@example.com", "alice")

	res := f.request(t, http.MethodPost, "/api/v1/recipes", token, fiber.Map{
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"cooking_time": 20,
		"ingredients":  []fiber.Map{{"id": f.flour.ID.String(), "amount": 200}},
		"tags":         []string{},
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var body struct {
		Error map[string]string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "choose at least 1 tag", body.Error["tags"])
}

func TestCreateRecipeZeroAmountErrorMap(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAndLogin(t, "a@example.com", "alice")

	res := f.request(t, http.MethodPost, "/api/v1/recipes", token, fiber.Map{
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"cooking_time": 20,
		"ingredients":  []fiber.Map{{"id": f.flour.ID.String(), "amount": 0}},
		"tags":         []string{f.tag.ID.String()},
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var body struct {
		Error map[string]string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "quantity of ingredient must be > 0", body.Error["amount"])
}

func TestRecipeNotFoundStatus(t *testing.T) {
	f := newAPIFixture(t)
	res := f.request(t, http.MethodGet, "/api/v1/recipes/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestUpdateRecipeViaPatch(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAndLogin(t, "a@example.com", "alice")
	recipeID := f.createRecipe(t, token)

	res := f.request(t, http.MethodPatch, "/api/v1/recipes/"+recipeID, token, fiber.Map{
		"name":         "Crepes",
		"text":         "Mix thin and fry.",
		"cooking_time": 15,
		"ingredients":  []fiber.Map{{"id": f.flour.ID.String(), "amount": 150}},
		"tags":         []string{f.tag.ID.String()},
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "Crepes", body.Data.Name)
}

func TestUpdateByNonAuthorIsForbidden(t *testing.T) {
	f := newAPIFixture(t)
	authorToken := f.registerAndLogin(t, "a@example.com", "alice")
	otherToken := f.registerAndLogin(t, "b@example.com", "bob")
	recipeID := f.createRecipe(t, authorToken)

	res := f.request(t, http.MethodPatch, "/api/v1/recipes/"+recipeID, otherToken, fiber.Map{
		"name":         "Hijacked",
		"text":         "nope",
		"cooking_time": 5,
		"ingredients":  []fiber.Map{{"id": f.flour.ID.String(), "amount": 100}},
		"tags":         []string{f.tag.ID.String()},
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestFavoriteToggleStatuses(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAndLogin(t, "a@example.com", "alice")
	recipeID := f.createRecipe(t, token)
	path := fmt.Sprintf("/api/v1/recipes/%s/favorite", recipeID)

	res := f.request(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	res = f.request(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = f.request(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res = f.request(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestDownloadShoppingCart(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAndLogin(t, "a@example.com", "alice")
	recipeID := f.createRecipe(t, token)

	// empty cart is a bad request
	res := f.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = f.request(t, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%s/shopping_cart", recipeID), token, nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res = f.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Disposition"), "shopping_list.txt")
	assert.Contains(t, res.Header.Get("Content-Type"), "text/plain")

	content, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "Shopping list:\n\nflour (g) — 200\n", string(content))
}

func TestSubscriptionEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	aliceToken := f.registerAndLogin(t, "a@example.com", "alice")
	bobToken := f.registerAndLogin(t, "b@example.com", "bob")
	f.createRecipe(t, bobToken)

	var me struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	res := f.request(t, http.MethodGet, "/api/v1/users/me", bobToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.NewDecoder(res.Body).Decode(&me))

	res = f.request(t, http.MethodPost, "/api/v1/users/"+me.Data.ID+"/subscribe", aliceToken, nil)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	res = f.request(t, http.MethodPost, "/api/v1/users/"+me.Data.ID+"/subscribe", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var subs struct {
		Data []struct {
			Username     string `json:"username"`
			RecipesCount int    `json:"recipes_count"`
		} `json:"data"`
	}
	res = f.request(t, http.MethodGet, "/api/v1/users/subscriptions?recipes_limit=1", aliceToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.NewDecoder(res.Body).Decode(&subs))
	require.Len(t, subs.Data, 1)
	assert.Equal(t, "bob", subs.Data[0].Username)
	assert.Equal(t, 1, subs.Data[0].RecipesCount)

	res = f.request(t, http.MethodDelete, "/api/v1/users/"+me.Data.ID+"/subscribe", aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}
