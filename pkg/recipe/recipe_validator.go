package recipe

import (
	"CookShare-Backend/domain"
)

// ValidateRecipeInput enforces the aggregate's input invariants before
// anything is persisted: no duplicate ingredients, positive amounts, a
// non-empty duplicate-free tag list and a positive cooking time. The
// three checks are independent and side-effect free.
func ValidateRecipeInput(lines []domain.IngredientLineRequest, tagIDs []string, cookingTime int) *domain.ValidationError {
	if err := validateIngredientLines(lines); err != nil {
		return err
	}
	if err := validateTags(tagIDs); err != nil {
		return err
	}
	return validateCookingTime(cookingTime)
}

func validateIngredientLines(lines []domain.IngredientLineRequest) *domain.ValidationError {
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ID]; ok {
			return domain.NewValidationError("ingredients", "this ingredient was already added")
		}
		seen[line.ID] = struct{}{}
		if line.Amount < 1 {
			return domain.NewValidationError("amount", "quantity of ingredient must be > 0")
		}
	}
	return nil
}

func validateTags(tagIDs []string) *domain.ValidationError {
	if len(tagIDs) == 0 {
		return domain.NewValidationError("tags", "choose at least 1 tag")
	}
	seen := make(map[string]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, ok := seen[id]; ok {
			return domain.NewValidationError("tags", "this tag was already added")
		}
		seen[id] = struct{}{}
	}
	return nil
}

func validateCookingTime(cookingTime int) *domain.ValidationError {
	if cookingTime < 1 {
		return domain.NewValidationError("cooking_time", "cooking time must be > 0")
	}
	return nil
}
