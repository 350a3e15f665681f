package recipe

import (
	"context"
	"errors"
	"fmt"

	"CookShare-Backend/domain"
	"CookShare-Backend/entities"
	"CookShare-Backend/internal/utils/storage"
	"CookShare-Backend/pkg/catalog"
	"CookShare-Backend/pkg/relation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string, page, limit int) ([]domain.RecipeResponse, int64, error)
		GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.RecipeRequest, authorID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.RecipeRequest, callerID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID string, callerID string) error
		FavoriteRecipe(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error)
		UnfavoriteRecipe(ctx context.Context, recipeID, userID string) error
		AddToShoppingCart(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error)
		RemoveFromShoppingCart(ctx context.Context, recipeID, userID string) error
		GetShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error)
		DownloadShoppingCart(ctx context.Context, userID string) (string, error)
	}

	recipeService struct {
		recipeRepository  RecipeRepository
		catalogRepository catalog.CatalogRepository
		favorites         *relation.Set[entities.Favorite]
		carts             *relation.Set[entities.ShoppingCart]
		subscriptions     *relation.Set[entities.Subscription]
		s3                storage.AwsS3
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	catalogRepository catalog.CatalogRepository,
	favorites *relation.Set[entities.Favorite],
	carts *relation.Set[entities.ShoppingCart],
	subscriptions *relation.Set[entities.Subscription],
	s3 storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:  recipeRepository,
		catalogRepository: catalogRepository,
		favorites:         favorites,
		carts:             carts,
		subscriptions:     subscriptions,
		s3:                s3,
	}
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string, page, limit int) ([]domain.RecipeResponse, int64, error) {
	viewerUUID := uuid.Nil
	if viewerID != "" {
		parsed, err := uuid.Parse(viewerID)
		if err != nil {
			return nil, 0, domain.ErrParseUUID
		}
		viewerUUID = parsed
	}

	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, viewerUUID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	favorited, inCart, err := s.viewerRelationSets(ctx, viewerUUID)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		result = append(result, s.toRecipeResponse(recipe, favorited[recipe.ID], inCart[recipe.ID], false))
	}
	return result, count, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	isFavorited, isInCart, isSubscribed := false, false, false
	if viewerID != "" {
		viewerUUID, err := uuid.Parse(viewerID)
		if err != nil {
			return domain.RecipeResponse{}, domain.ErrParseUUID
		}
		if isFavorited, err = s.favorites.Contains(ctx, viewerUUID, recipe.ID); err != nil {
			return domain.RecipeResponse{}, err
		}
		if isInCart, err = s.carts.Contains(ctx, viewerUUID, recipe.ID); err != nil {
			return domain.RecipeResponse{}, err
		}
		if isSubscribed, err = s.subscriptions.Contains(ctx, viewerUUID, recipe.AuthorID); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	return s.toRecipeResponse(recipe, isFavorited, isInCart, isSubscribed), nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.RecipeRequest, authorID string) (domain.RecipeResponse, error) {
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	if err := ValidateRecipeInput(req.Ingredients, req.Tags, req.CookingTime); err != nil {
		return domain.RecipeResponse{}, err
	}

	lines, err := s.resolveIngredientLines(ctx, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipeID := uuid.New()
	imageURL, err := s.uploadImage(req.Image, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		ID:              recipeID,
		AuthorID:        authorUUID,
		Name:            req.Name,
		ImageURL:        imageURL,
		Text:            req.Text,
		CookingTime:     req.CookingTime,
		IngredientLines: lines,
		Tags:            tags,
	}

	if err := s.recipeRepository.CreateRecipe(ctx, recipe); err != nil {
		return domain.RecipeResponse{}, err
	}

	created, err := s.getRecipe(ctx, recipeID.String())
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return s.toRecipeResponse(created, false, false, false), nil
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.RecipeRequest, callerID string) (domain.RecipeResponse, error) {
	callerUUID, err := uuid.Parse(callerID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if recipe.AuthorID != callerUUID {
		return domain.RecipeResponse{}, domain.ErrNotRecipeAuthor
	}

	if err := ValidateRecipeInput(req.Ingredients, req.Tags, req.CookingTime); err != nil {
		return domain.RecipeResponse{}, err
	}

	lines, err := s.resolveIngredientLines(ctx, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	imageURL := recipe.ImageURL
	if req.Image != "" {
		if imageURL, err = s.uploadImage(req.Image, recipe.ID); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	updated := &entities.Recipe{
		ID:              recipe.ID,
		AuthorID:        recipe.AuthorID,
		Name:            req.Name,
		ImageURL:        imageURL,
		Text:            req.Text,
		CookingTime:     req.CookingTime,
		IngredientLines: lines,
		Tags:            tags,
		Timestamp:       recipe.Timestamp,
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, updated); err != nil {
		return domain.RecipeResponse{}, err
	}

	fresh, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	isFavorited, favErr := s.favorites.Contains(ctx, callerUUID, fresh.ID)
	if favErr != nil {
		return domain.RecipeResponse{}, favErr
	}
	isInCart, cartErr := s.carts.Contains(ctx, callerUUID, fresh.ID)
	if cartErr != nil {
		return domain.RecipeResponse{}, cartErr
	}
	return s.toRecipeResponse(fresh, isFavorited, isInCart, false), nil
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, callerID string) error {
	callerUUID, err := uuid.Parse(callerID)
	if err != nil {
		return domain.ErrParseUUID
	}

	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != callerUUID {
		return domain.ErrNotRecipeAuthor
	}

	return s.recipeRepository.DeleteRecipe(ctx, recipe.ID)
}

func (s *recipeService) FavoriteRecipe(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error) {
	recipe, userUUID, err := s.recipeAndUser(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	if err := s.favorites.Add(ctx, userUUID, recipe.ID); err != nil {
		if errors.Is(err, relation.ErrAlreadyPresent) {
			return domain.RecipeShortResponse{}, domain.ErrAlreadyFavorited
		}
		return domain.RecipeShortResponse{}, err
	}
	return toRecipeShortResponse(recipe), nil
}

func (s *recipeService) UnfavoriteRecipe(ctx context.Context, recipeID, userID string) error {
	recipe, userUUID, err := s.recipeAndUser(ctx, recipeID, userID)
	if err != nil {
		return err
	}
	if err := s.favorites.Remove(ctx, userUUID, recipe.ID); err != nil {
		if errors.Is(err, relation.ErrNotPresent) {
			return domain.ErrNotFavorited
		}
		return err
	}
	return nil
}

func (s *recipeService) AddToShoppingCart(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error) {
	recipe, userUUID, err := s.recipeAndUser(ctx, recipeID, userID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	if err := s.carts.Add(ctx, userUUID, recipe.ID); err != nil {
		if errors.Is(err, relation.ErrAlreadyPresent) {
			return domain.RecipeShortResponse{}, domain.ErrAlreadyInCart
		}
		return domain.RecipeShortResponse{}, err
	}
	return toRecipeShortResponse(recipe), nil
}

func (s *recipeService) RemoveFromShoppingCart(ctx context.Context, recipeID, userID string) error {
	recipe, userUUID, err := s.recipeAndUser(ctx, recipeID, userID)
	if err != nil {
		return err
	}
	if err := s.carts.Remove(ctx, userUUID, recipe.ID); err != nil {
		if errors.Is(err, relation.ErrNotPresent) {
			return domain.ErrNotInCart
		}
		return err
	}
	return nil
}

// GetShoppingList is a pure read over the user's cart: it never mutates
// cart or recipe state.
func (s *recipeService) GetShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	lines, err := s.recipeRepository.GetCartIngredientLines(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	return BuildShoppingList(lines), nil
}

func (s *recipeService) DownloadShoppingCart(ctx context.Context, userID string) (string, error) {
	items, err := s.GetShoppingList(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", domain.ErrCartEmpty
	}
	return RenderShoppingList(items), nil
}

func (s *recipeService) getRecipe(ctx context.Context, recipeID string) (*entities.Recipe, error) {
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func (s *recipeService) recipeAndUser(ctx context.Context, recipeID, userID string) (*entities.Recipe, uuid.UUID, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, uuid.Nil, domain.ErrParseUUID
	}
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return recipe, userUUID, nil
}

// viewerRelationSets loads the viewer's favorite and cart targets once
// so list responses do not probe per recipe.
func (s *recipeService) viewerRelationSets(ctx context.Context, viewer uuid.UUID) (map[uuid.UUID]bool, map[uuid.UUID]bool, error) {
	favorited := make(map[uuid.UUID]bool)
	inCart := make(map[uuid.UUID]bool)
	if viewer == uuid.Nil {
		return favorited, inCart, nil
	}

	favoriteTargets, err := s.favorites.Targets(ctx, viewer)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range favoriteTargets {
		favorited[id] = true
	}

	cartTargets, err := s.carts.Targets(ctx, viewer)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range cartTargets {
		inCart[id] = true
	}
	return favorited, inCart, nil
}

func (s *recipeService) resolveIngredientLines(ctx context.Context, reqLines []domain.IngredientLineRequest) ([]*entities.RecipeIngredient, error) {
	ids := make([]uuid.UUID, 0, len(reqLines))
	for _, line := range reqLines {
		id, err := uuid.Parse(line.ID)
		if err != nil {
			return nil, domain.ErrParseUUID
		}
		ids = append(ids, id)
	}

	ingredients, err := s.catalogRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entities.Ingredient, len(ingredients))
	for _, ingredient := range ingredients {
		byID[ingredient.ID] = ingredient
	}

	lines := make([]*entities.RecipeIngredient, 0, len(reqLines))
	for i, reqLine := range reqLines {
		ingredient, ok := byID[ids[i]]
		if !ok {
			return nil, domain.ErrIngredientNotFound
		}
		lines = append(lines, &entities.RecipeIngredient{
			ID:           uuid.New(),
			IngredientID: ingredient.ID,
			Amount:       reqLine.Amount,
			Ingredient:   ingredient,
		})
	}
	return lines, nil
}

func (s *recipeService) resolveTags(ctx context.Context, tagIDs []string) ([]*entities.Tag, error) {
	ids := make([]uuid.UUID, 0, len(tagIDs))
	for _, raw := range tagIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, domain.ErrParseUUID
		}
		ids = append(ids, id)
	}

	tags, err := s.catalogRepository.GetTagsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, domain.ErrTagNotFound
	}
	return tags, nil
}

func (s *recipeService) uploadImage(base64Image string, recipeID uuid.UUID) (string, error) {
	if base64Image == "" || s.s3 == nil {
		return "", nil
	}
	objectKey, err := s.s3.UploadBase64(fmt.Sprintf("recipe-%s", recipeID.String()), base64Image, "recipes")
	if err != nil {
		return "", err
	}
	return s.s3.GetPublicLinkKey(objectKey), nil
}

func (s *recipeService) toRecipeResponse(recipe *entities.Recipe, isFavorited, isInCart, authorSubscribed bool) domain.RecipeResponse {
	ingredients := make([]domain.IngredientLineResponse, 0, len(recipe.IngredientLines))
	for _, line := range recipe.IngredientLines {
		resolved := domain.IngredientLineResponse{
			ID:     line.IngredientID.String(),
			Amount: line.Amount,
		}
		if line.Ingredient != nil {
			resolved.Name = line.Ingredient.Name
			resolved.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, resolved)
	}

	tags := make([]domain.TagResponse, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		tags = append(tags, domain.TagResponse{
			ID:    tag.ID.String(),
			Name:  tag.Name,
			Color: tag.Color,
			Slug:  tag.Slug,
		})
	}

	author := domain.UserProfile{ID: recipe.AuthorID.String(), IsSubscribed: authorSubscribed}
	if recipe.Author != nil {
		author.Email = recipe.Author.Email
		author.Username = recipe.Author.Username
		author.FirstName = recipe.Author.FirstName
		author.LastName = recipe.Author.LastName
		author.AvatarURL = recipe.Author.AvatarURL
	}

	return domain.RecipeResponse{
		ID:               recipe.ID.String(),
		Author:           author,
		Name:             recipe.Name,
		ImageURL:         recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		Ingredients:      ingredients,
		Tags:             tags,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
	}
}

func toRecipeShortResponse(recipe *entities.Recipe) domain.RecipeShortResponse {
	return domain.RecipeShortResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		ImageURL:    recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}
