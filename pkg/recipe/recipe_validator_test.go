package recipe

import (
	"testing"

	"CookShare-Backend/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecipeInput() ([]domain.IngredientLineRequest, []string, int) {
	lines := []domain.IngredientLineRequest{
		{ID: uuid.NewString(), Amount: 200},
		{ID: uuid.NewString(), Amount: 50},
	}
	tags := []string{uuid.NewString()}
	return lines, tags, 30
}

func TestValidateRecipeInputAcceptsValidInput(t *testing.T) {
	lines, tags, cookingTime := validRecipeInput()
	assert.Nil(t, ValidateRecipeInput(lines, tags, cookingTime))
}

func TestValidateRecipeInputDuplicateIngredient(t *testing.T) {
	lines, tags, cookingTime := validRecipeInput()
	lines = append(lines, domain.IngredientLineRequest{ID: lines[0].ID, Amount: 10})

	err := ValidateRecipeInput(lines, tags, cookingTime)
	require.NotNil(t, err)
	assert.Equal(t, "ingredients", err.Field)
	assert.Equal(t, "this ingredient was already added", err.Message)
}

func TestValidateRecipeInputZeroAmount(t *testing.T) {
	lines, tags, cookingTime := validRecipeInput()
	lines[1].Amount = 0

	err := ValidateRecipeInput(lines, tags, cookingTime)
	require.NotNil(t, err)
	assert.Equal(t, "amount", err.Field)
}

func TestValidateRecipeInputEmptyTags(t *testing.T) {
	lines, _, cookingTime := validRecipeInput()

	err := ValidateRecipeInput(lines, nil, cookingTime)
	require.NotNil(t, err)
	assert.Equal(t, "tags", err.Field)
	assert.Equal(t, "choose at least 1 tag", err.Message)
}

func TestValidateRecipeInputDuplicateTag(t *testing.T) {
	lines, tags, cookingTime := validRecipeInput()
	tags = append(tags, tags[0])

	err := ValidateRecipeInput(lines, tags, cookingTime)
	require.NotNil(t, err)
	assert.Equal(t, "tags", err.Field)
	assert.Equal(t, "this tag was already added", err.Message)
}

func TestValidateRecipeInputZeroCookingTime(t *testing.T) {
	lines, tags, _ := validRecipeInput()

	err := ValidateRecipeInput(lines, tags, 0)
	require.NotNil(t, err)
	assert.Equal(t, "cooking_time", err.Field)
	assert.Equal(t, "cooking time must be > 0", err.Message)
}

func TestValidateRecipeInputEmptyLinesAllowedByLineChecks(t *testing.T) {
	// line checks pass vacuously, the tag check still fires first
	err := ValidateRecipeInput(nil, nil, 10)
	require.NotNil(t, err)
	assert.Equal(t, "tags", err.Field)
}
