package recipe

import (
	"testing"

	"CookShare-Backend/domain"
	"CookShare-Backend/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(name, unit string, amount int) *entities.RecipeIngredient {
	return &entities.RecipeIngredient{
		ID:     uuid.New(),
		Amount: amount,
		Ingredient: &entities.Ingredient{
			ID:              uuid.New(),
			Name:            name,
			MeasurementUnit: unit,
		},
	}
}

func TestBuildShoppingListSumsByNameAndUnit(t *testing.T) {
	lines := []*entities.RecipeIngredient{
		line("flour", "g", 200),
		line("sugar", "g", 50),
		line("flour", "g", 100),
	}

	items := BuildShoppingList(lines)
	require.Len(t, items, 2)
	assert.Equal(t, domain.ShoppingListItem{Name: "flour", MeasurementUnit: "g", TotalAmount: 300}, items[0])
	assert.Equal(t, domain.ShoppingListItem{Name: "sugar", MeasurementUnit: "g", TotalAmount: 50}, items[1])
}

func TestBuildShoppingListMergesDistinctCatalogEntries(t *testing.T) {
	// two catalog rows sharing name and unit collapse into one group
	items := BuildShoppingList([]*entities.RecipeIngredient{
		line("salt", "g", 5),
		line("salt", "g", 10),
	})
	require.Len(t, items, 1)
	assert.Equal(t, 15, items[0].TotalAmount)
}

func TestBuildShoppingListKeepsUnitsSeparate(t *testing.T) {
	items := BuildShoppingList([]*entities.RecipeIngredient{
		line("milk", "ml", 250),
		line("milk", "l", 1),
	})
	require.Len(t, items, 2)
	assert.Equal(t, "l", items[0].MeasurementUnit)
	assert.Equal(t, "ml", items[1].MeasurementUnit)
}

func TestBuildShoppingListSortsOrdinal(t *testing.T) {
	items := BuildShoppingList([]*entities.RecipeIngredient{
		line("apple", "pc", 1),
		line("Banana", "pc", 2),
	})
	require.Len(t, items, 2)
	// case-sensitive ordinal: uppercase sorts before lowercase
	assert.Equal(t, "Banana", items[0].Name)
	assert.Equal(t, "apple", items[1].Name)
}

func TestBuildShoppingListEmptyCart(t *testing.T) {
	items := BuildShoppingList(nil)
	assert.Empty(t, items)
}

func TestRenderShoppingList(t *testing.T) {
	content := RenderShoppingList([]domain.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", TotalAmount: 300},
		{Name: "sugar", MeasurementUnit: "g", TotalAmount: 50},
	})
	assert.Equal(t, "Shopping list:\n\nflour (g) — 300\nsugar (g) — 50\n", content)
}
