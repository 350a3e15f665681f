package config

import (
	"os"
	"time"

	"CookShare-Backend/entities"
	"CookShare-Backend/internal/api/handlers"
	"CookShare-Backend/internal/api/routes"
	"CookShare-Backend/internal/middleware"
	"CookShare-Backend/internal/utils"
	"CookShare-Backend/internal/utils/cache"
	"CookShare-Backend/internal/utils/storage"
	"CookShare-Backend/pkg/catalog"
	"CookShare-Backend/pkg/jwt"
	"CookShare-Backend/pkg/recipe"
	"CookShare-Backend/pkg/relation"
	"CookShare-Backend/pkg/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()
	redisCache := cache.NewClient()

	// Relation sets
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

	// Repository
	userRepository := user.NewUserRepository(db)
	catalogRepository := catalog.NewCatalogRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	userService := user.NewUserService(userRepository, recipeRepository, subscriptions, jwtService, s3)
	catalogService := catalog.NewCatalogService(catalogRepository, redisCache)
	recipeService := recipe.NewRecipeService(recipeRepository, catalogRepository, favorites, carts, subscriptions, s3)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	recipeHandler := handlers.NewRecipeHandler(recipeService, validator)

	// routes
	routesConfig := routes.Config{
		App:            app,
		UserHandler:    userHandler,
		CatalogHandler: catalogHandler,
		RecipeHandler:  recipeHandler,
		Middleware:     middlewares,
		JWTService:     jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
