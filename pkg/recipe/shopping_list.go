package recipe

import (
	"fmt"
	"sort"
	"strings"

	"CookShare-Backend/domain"
	"CookShare-Backend/entities"
)

// BuildShoppingList aggregates flattened cart ingredient lines into a
// deduplicated shopping list. Grouping is by resolved (name, unit), not
// ingredient id, so two catalog entries that share both are merged.
// Groups are sorted by name ascending, unit as tie-break. An empty cart
// yields an empty list.
func BuildShoppingList(lines []*entities.RecipeIngredient) []domain.ShoppingListItem {
	type groupKey struct {
		name string
		unit string
	}

	totals := make(map[groupKey]int)
	for _, line := range lines {
		if line.Ingredient == nil {
			continue
		}
		key := groupKey{name: line.Ingredient.Name, unit: line.Ingredient.MeasurementUnit}
		totals[key] += line.Amount
	}

	items := make([]domain.ShoppingListItem, 0, len(totals))
	for key, total := range totals {
		items = append(items, domain.ShoppingListItem{
			Name:            key.name,
			MeasurementUnit: key.unit,
			TotalAmount:     total,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})
	return items
}

// RenderShoppingList formats the aggregated list as the plain-text
// attachment body.
func RenderShoppingList(items []domain.ShoppingListItem) string {
	var builder strings.Builder
	builder.WriteString("Shopping list:\n\n")
	for _, item := range items {
		builder.WriteString(fmt.Sprintf("%s (%s) — %d\n", item.Name, item.MeasurementUnit, item.TotalAmount))
	}
	return builder.String()
}
