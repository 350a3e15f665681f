package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"time"

	"CookShare-Backend/domain"
	"CookShare-Backend/entities"
	"CookShare-Backend/internal/utils/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	cacheKeyTags        = "catalog:tags"
	cacheKeyIngredients = "catalog:ingredients:"
	catalogCacheTTL     = 2 * time.Hour
)

type (
	CatalogService interface {
		GetIngredients(ctx context.Context, name string) ([]domain.IngredientResponse, error)
		GetIngredientDetail(ctx context.Context, id string) (domain.IngredientResponse, error)
		GetTags(ctx context.Context) ([]domain.TagResponse, error)
		GetTagDetail(ctx context.Context, id string) (domain.TagResponse, error)
		SeedIngredientsFromCSV(ctx context.Context, path string) (int, error)
		SeedTags(ctx context.Context, tags []entities.Tag) error
	}

	catalogService struct {
		catalogRepository CatalogRepository
		cache             *cache.Client
	}
)

func NewCatalogService(catalogRepository CatalogRepository, cache *cache.Client) CatalogService {
	return &catalogService{
		catalogRepository: catalogRepository,
		cache:             cache,
	}
}

func (s *catalogService) GetIngredients(ctx context.Context, name string) ([]domain.IngredientResponse, error) {
	cacheKey := cacheKeyIngredients + name
	var cached []domain.IngredientResponse
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	ingredients, err := s.catalogRepository.GetIngredients(ctx, name)
	if err != nil {
		return nil, err
	}

	result := make([]domain.IngredientResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		result = append(result, toIngredientResponse(ingredient))
	}
	s.cache.Set(ctx, cacheKey, result, catalogCacheTTL)
	return result, nil
}

func (s *catalogService) GetIngredientDetail(ctx context.Context, id string) (domain.IngredientResponse, error) {
	ingredientID, err := uuid.Parse(id)
	if err != nil {
		return domain.IngredientResponse{}, domain.ErrParseUUID
	}

	ingredient, err := s.catalogRepository.GetIngredientByID(ctx, ingredientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.IngredientResponse{}, domain.ErrIngredientNotFound
		}
		return domain.IngredientResponse{}, err
	}
	return toIngredientResponse(ingredient), nil
}

func (s *catalogService) GetTags(ctx context.Context) ([]domain.TagResponse, error) {
	var cached []domain.TagResponse
	if s.cache.Get(ctx, cacheKeyTags, &cached) {
		return cached, nil
	}

	tags, err := s.catalogRepository.GetTags(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.TagResponse, 0, len(tags))
	for _, tag := range tags {
		result = append(result, toTagResponse(tag))
	}
	s.cache.Set(ctx, cacheKeyTags, result, catalogCacheTTL)
	return result, nil
}

func (s *catalogService) GetTagDetail(ctx context.Context, id string) (domain.TagResponse, error) {
	tagID, err := uuid.Parse(id)
	if err != nil {
		return domain.TagResponse{}, domain.ErrParseUUID
	}

	tag, err := s.catalogRepository.GetTagByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TagResponse{}, domain.ErrTagNotFound
		}
		return domain.TagResponse{}, err
	}
	return toTagResponse(tag), nil
}

// SeedIngredientsFromCSV loads the reference dataset, one
// "name,measurement_unit" row per ingredient. Existing names are kept.
func (s *catalogService) SeedIngredientsFromCSV(ctx context.Context, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, record := range records {
		if len(record) != 2 {
			return loaded, fmt.Errorf("malformed ingredient row: %v", record)
		}
		ingredient := &entities.Ingredient{
			ID:              uuid.New(),
			Name:            record[0],
			MeasurementUnit: record[1],
		}
		if err := s.catalogRepository.UpsertIngredient(ctx, ingredient); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

func (s *catalogService) SeedTags(ctx context.Context, tags []entities.Tag) error {
	for i := range tags {
		if tags[i].ID == uuid.Nil {
			tags[i].ID = uuid.New()
		}
		if err := s.catalogRepository.UpsertTag(ctx, &tags[i]); err != nil {
			return err
		}
	}
	return nil
}

func toIngredientResponse(ingredient *entities.Ingredient) domain.IngredientResponse {
	return domain.IngredientResponse{
		ID:              ingredient.ID.String(),
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}

func toTagResponse(tag *entities.Tag) domain.TagResponse {
	return domain.TagResponse{
		ID:    tag.ID.String(),
		Name:  tag.Name,
		Color: tag.Color,
		Slug:  tag.Slug,
	}
}
