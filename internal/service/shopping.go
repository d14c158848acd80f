package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/metrics"
	"github.com/pageza/recipebox/backend/internal/store"
	"github.com/pageza/recipebox/backend/internal/types"
)

// ShoppingListAggregator merges the ingredient lines of a user's cart
type ShoppingListAggregator struct {
	store store.Store
}

var _ IShoppingListAggregator = (*ShoppingListAggregator)(nil)

func NewShoppingListAggregator(s store.Store) *ShoppingListAggregator {
	return &ShoppingListAggregator{store: s}
}

// ingredientKey is the aggregation identity. Catalog rows that share a name
// and unit are summed together even when their ids differ.
type ingredientKey struct {
	name string
	unit string
}

// BuildShoppingList returns the consolidated list for the user's cart, sorted
// by ingredient name then unit. An empty cart yields an empty slice. Cart
// entries whose recipe no longer exists are skipped.
func (a *ShoppingListAggregator) BuildShoppingList(ctx context.Context, userID uuid.UUID) ([]types.AggregatedLine, error) {
	cartIDs, err := a.store.ListRelation(ctx, store.RelationCart, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	cart := NewIDSet(cartIDs...)
	if len(cart) == 0 {
		metrics.ShoppingListLines.Observe(0)
		return []types.AggregatedLine{}, nil
	}

	recipes, _, err := a.store.QueryRecipes(ctx, store.RecipePredicate{IDs: cart.Slice()})
	if err != nil {
		return nil, fmt.Errorf("failed to load cart recipes: %w", err)
	}

	log := logging.Component("shopping")
	if missing := len(cart) - len(recipes); missing > 0 {
		metrics.StaleCartReferences.Add(float64(missing))
		log.Debug().
			Str("user_id", userID.String()).
			Int("missing", missing).
			Msg("skipping cart entries for deleted recipes")
	}

	totals := make(map[ingredientKey]int64)
	seen := make(IDSet, len(recipes))
	for _, recipe := range recipes {
		if seen.Has(recipe.ID) {
			continue
		}
		seen[recipe.ID] = struct{}{}

		for _, line := range recipe.Lines {
			if line.Ingredient.ID == uuid.Nil {
				log.Warn().
					Str("recipe_id", recipe.ID.String()).
					Str("ingredient_id", line.IngredientID.String()).
					Msg("recipe line references a missing ingredient")
				continue
			}
			key := ingredientKey{name: line.Ingredient.Name, unit: line.Ingredient.MeasurementUnit}
			totals[key] += int64(line.Amount)
		}
	}

	lines := make([]types.AggregatedLine, 0, len(totals))
	for key, total := range totals {
		lines = append(lines, types.AggregatedLine{
			IngredientName:  key.name,
			MeasurementUnit: key.unit,
			TotalAmount:     total,
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].IngredientName != lines[j].IngredientName {
			return lines[i].IngredientName < lines[j].IngredientName
		}
		return lines[i].MeasurementUnit < lines[j].MeasurementUnit
	})

	metrics.ShoppingListLines.Observe(float64(len(lines)))
	return lines, nil
}
