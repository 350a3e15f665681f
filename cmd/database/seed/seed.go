package seed

import (
	"context"
	"log"

	"CookShare-Backend/entities"
	"CookShare-Backend/internal/utils"
	"CookShare-Backend/pkg/catalog"

	"gorm.io/gorm"
)

var defaultTags = []entities.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

// Seed loads the ingredient reference dataset and the default tags.
// Both steps are idempotent, so the seeder can run on every boot.
func Seed(db *gorm.DB) error {
	catalogService := catalog.NewCatalogService(catalog.NewCatalogRepository(db), nil)
	ctx := context.Background()

	if path := utils.GetConfig("INGREDIENTS_CSV"); path != "" {
		loaded, err := catalogService.SeedIngredientsFromCSV(ctx, path)
		if err != nil {
			return err
		}
		log.Printf("seeded %d ingredients", loaded)
	}

	return catalogService.SeedTags(ctx, defaultTags)
}
