package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"CookShare-Backend/domain"
	"CookShare-Backend/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (CatalogService, CatalogRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&entities.Ingredient{}, &entities.Tag{}))

	repository := NewCatalogRepository(db)
	return NewCatalogService(repository, nil), repository
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ingredients.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSeedIngredientsFromCSV(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	path := writeCSV(t, "flour,g\nsugar,g\nmilk,ml\n")

	loaded, err := service.SeedIngredientsFromCSV(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded)

	ingredients, err := service.GetIngredients(ctx, "")
	require.NoError(t, err)
	require.Len(t, ingredients, 3)
	assert.Equal(t, "flour", ingredients[0].Name)
}

func TestSeedIngredientsIsIdempotent(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	path := writeCSV(t, "flour,g\nsugar,g\n")

	_, err := service.SeedIngredientsFromCSV(ctx, path)
	require.NoError(t, err)
	_, err = service.SeedIngredientsFromCSV(ctx, path)
	require.NoError(t, err)

	ingredients, err := service.GetIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, ingredients, 2)
}

func TestSeedIngredientsMalformedRow(t *testing.T) {
	service, _ := newTestService(t)
	path := writeCSV(t, "flour,g,extra\n")

	_, err := service.SeedIngredientsFromCSV(context.Background(), path)
	assert.Error(t, err)
}

func TestGetIngredientsPrefixFilter(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	path := writeCSV(t, "salt,g\nsugar,g\nflour,g\n")
	_, err := service.SeedIngredientsFromCSV(ctx, path)
	require.NoError(t, err)

	matches, err := service.GetIngredients(ctx, "s")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "salt", matches[0].Name)
	assert.Equal(t, "sugar", matches[1].Name)
}

func TestSeedTagsIsIdempotent(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	tags := []entities.Tag{
		{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
	}

	require.NoError(t, service.SeedTags(ctx, tags))
	require.NoError(t, service.SeedTags(ctx, tags))

	result, err := service.GetTags(ctx)
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestGetTagDetailNotFound(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.GetTagDetail(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrTagNotFound)

	_, err = service.GetTagDetail(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrParseUUID)
}

func TestGetIngredientDetail(t *testing.T) {
	service, repository := newTestService(t)
	ctx := context.Background()

	ingredient := &entities.Ingredient{ID: uuid.New(), Name: "flour", MeasurementUnit: "g"}
	require.NoError(t, repository.UpsertIngredient(ctx, ingredient))

	found, err := service.GetIngredientDetail(ctx, ingredient.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "flour", found.Name)

	_, err = service.GetIngredientDetail(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrIngredientNotFound)
}
