package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/mocks"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/store"
	"github.com/pageza/recipebox/backend/internal/types"
)

func TestBuildShoppingList_SumsByNameAndUnit(t *testing.T) {
	k := setupKitchen(t)
	ctx := context.Background()
	members := service.NewMembershipService(k.store)
	agg := service.NewShoppingListAggregator(k.store)

	require.NoError(t, members.ToggleCart(ctx, service.ActionAdd, k.alice.ID, k.soup.ID))
	require.NoError(t, members.ToggleCart(ctx, service.ActionAdd, k.alice.ID, k.stew.ID))

	lines, err := agg.BuildShoppingList(ctx, k.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.AggregatedLine{
		{IngredientName: "potato", MeasurementUnit: "g", TotalAmount: 350},
		{IngredientName: "salt", MeasurementUnit: "g", TotalAmount: 5},
	}, lines)
}

func TestBuildShoppingList_KeepsUnitsApart(t *testing.T) {
	k := setupKitchen(t)
	ctx := context.Background()
	members := service.NewMembershipService(k.store)
	agg := service.NewShoppingListAggregator(k.store)

	require.NoError(t, members.ToggleCart(ctx, service.ActionAdd, k.bob.ID, k.salad.ID))
	require.NoError(t, members.ToggleCart(ctx, service.ActionAdd, k.bob.ID, k.stew.ID))

	lines, err := agg.BuildShoppingList(ctx, k.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.AggregatedLine{
		{IngredientName: "potato", MeasurementUnit: "g", TotalAmount: 150},
		{IngredientName: "potato", MeasurementUnit: "pcs", TotalAmount: 2},
		{IngredientName: "salt", MeasurementUnit: "g", TotalAmount: 3},
	}, lines)
}

func TestBuildShoppingList_EmptyCart(t *testing.T) {
	k := setupKitchen(t)
	agg := service.NewShoppingListAggregator(k.store)

	lines, err := agg.BuildShoppingList(context.Background(), k.alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}

func TestBuildShoppingList_OrderIndependent(t *testing.T) {
	k := setupKitchen(t)
	ctx := context.Background()
	members := service.NewMembershipService(k.store)
	agg := service.NewShoppingListAggregator(k.store)

	require.NoError(t, members.ToggleCart(ctx, service.ActionAdd, k.alice.ID, k.soup.ID))
	require.NoError(t, members.ToggleCart(ctx, service.ActionAdd, k.alice.ID, k.stew.ID))
	require.NoError(t, members.ToggleCart(ctx, service.ActionAdd, k.bob.ID, k.stew.ID))
	require.NoError(t, members.ToggleCart(ctx, service.ActionAdd, k.bob.ID, k.soup.ID))

	first, err := agg.BuildShoppingList(ctx, k.alice.ID)
	require.NoError(t, err)
	second, err := agg.BuildShoppingList(ctx, k.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildShoppingList_IgnoresOtherUsersCarts(t *testing.T) {
	k := setupKitchen(t)
	ctx := context.Background()
	members := service.NewMembershipService(k.store)
	agg := service.NewShoppingListAggregator(k.store)

	require.NoError(t, members.ToggleCart(ctx, service.ActionAdd, k.alice.ID, k.soup.ID))
	require.NoError(t, members.ToggleCart(ctx, service.ActionAdd, k.bob.ID, k.stew.ID))

	lines, err := agg.BuildShoppingList(ctx, k.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.AggregatedLine{
		{IngredientName: "potato", MeasurementUnit: "g", TotalAmount: 200},
		{IngredientName: "salt", MeasurementUnit: "g", TotalAmount: 2},
	}, lines)
}

func TestBuildShoppingList_SkipsDeletedRecipes(t *testing.T) {
	ms := new(mocks.MockStore)
	ctx := context.Background()
	user := uuid.New()
	kept, gone := uuid.New(), uuid.New()

	ms.On("ListRelation", ctx, store.RelationCart, user).Return([]uuid.UUID{kept, gone}, nil)
	ms.On("QueryRecipes", ctx, mock.MatchedBy(func(p store.RecipePredicate) bool {
		return len(p.IDs) == 2 && p.Limit == 0
	})).Return([]models.Recipe{{
		ID: kept,
		Lines: []models.RecipeIngredient{
			{IngredientID: uuid.New(), Amount: 4, Ingredient: models.Ingredient{ID: uuid.New(), Name: "egg", MeasurementUnit: "pcs"}},
			{IngredientID: uuid.New(), Amount: 1},
		},
	}}, int64(1), nil)

	lines, err := service.NewShoppingListAggregator(ms).BuildShoppingList(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []types.AggregatedLine{{IngredientName: "egg", MeasurementUnit: "pcs", TotalAmount: 4}}, lines)
	ms.AssertExpectations(t)
}

func TestBuildShoppingList_MergesSameNameAndUnitAcrossIngredientIDs(t *testing.T) {
	ms := new(mocks.MockStore)
	ctx := context.Background()
	user := uuid.New()
	soup, mash := uuid.New(), uuid.New()
	potato := models.Ingredient{ID: uuid.New(), Name: "potato", MeasurementUnit: "g"}
	potatoAlias := models.Ingredient{ID: uuid.New(), Name: "potato", MeasurementUnit: "g"}
	potatoKg := models.Ingredient{ID: uuid.New(), Name: "potato", MeasurementUnit: "kg"}

	ms.On("ListRelation", ctx, store.RelationCart, user).Return([]uuid.UUID{soup, mash}, nil)
	ms.On("QueryRecipes", ctx, mock.Anything).Return([]models.Recipe{
		{ID: soup, Lines: []models.RecipeIngredient{
			{IngredientID: potato.ID, Amount: 200, Ingredient: potato},
		}},
		{ID: mash, Lines: []models.RecipeIngredient{
			{IngredientID: potatoAlias.ID, Amount: 150, Ingredient: potatoAlias},
			{IngredientID: potatoKg.ID, Amount: 1, Ingredient: potatoKg},
		}},
	}, int64(2), nil)

	lines, err := service.NewShoppingListAggregator(ms).BuildShoppingList(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []types.AggregatedLine{
		{IngredientName: "potato", MeasurementUnit: "g", TotalAmount: 350},
		{IngredientName: "potato", MeasurementUnit: "kg", TotalAmount: 1},
	}, lines)
	ms.AssertExpectations(t)
}

func TestBuildShoppingList_StoreError(t *testing.T) {
	ms := new(mocks.MockStore)
	ctx := context.Background()
	user := uuid.New()
	boom := errors.New("connection reset")
	ms.On("ListRelation", ctx, store.RelationCart, user).Return(nil, boom)

	_, err := service.NewShoppingListAggregator(ms).BuildShoppingList(ctx, user)
	assert.ErrorIs(t, err, boom)
}

func TestBuildShoppingList_LargeTotalsDoNotOverflow(t *testing.T) {
	ms := new(mocks.MockStore)
	ctx := context.Background()
	user := uuid.New()
	flour := models.Ingredient{ID: uuid.New(), Name: "flour", MeasurementUnit: "g"}

	var (
		ids     []uuid.UUID
		recipes []models.Recipe
	)
	for i := 0; i < 100; i++ {
		id := uuid.New()
		ids = append(ids, id)
		recipes = append(recipes, models.Recipe{ID: id, Lines: []models.RecipeIngredient{
			{IngredientID: flour.ID, Amount: models.MaxAmount, Ingredient: flour},
		}})
	}
	ms.On("ListRelation", ctx, store.RelationCart, user).Return(ids, nil)
	ms.On("QueryRecipes", ctx, mock.Anything).Return(recipes, int64(len(recipes)), nil)

	lines, err := service.NewShoppingListAggregator(ms).BuildShoppingList(ctx, user)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(100*models.MaxAmount), lines[0].TotalAmount)
}
