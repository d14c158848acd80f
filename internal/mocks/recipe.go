package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/store"
	"github.com/pageza/recipebox/backend/internal/types"
)

// MockRecipeService is a mock implementation of the RecipeService interface
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func (m *MockRecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error) {
	args := m.Called(ctx, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) UpdateRecipe(ctx context.Context, actor service.Actor, id uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) DeleteRecipe(ctx context.Context, actor service.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockRecipeService) ShortCode(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockRecipeService) ResolveShortCode(ctx context.Context, code string) (uuid.UUID, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockFilterEvaluator is a mock implementation of the FilterEvaluator interface
type MockFilterEvaluator struct {
	mock.Mock
}

var _ service.IFilterEvaluator = (*MockFilterEvaluator)(nil)

func (m *MockFilterEvaluator) ListRecipes(ctx context.Context, q service.RecipeQuery, viewer *uuid.UUID) (*types.RecipePage, error) {
	args := m.Called(ctx, q, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipePage), args.Error(1)
}

func (m *MockFilterEvaluator) ViewRecipe(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*types.RecipeView, error) {
	args := m.Called(ctx, id, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeView), args.Error(1)
}

// MockShoppingListAggregator is a mock implementation of the aggregator interface
type MockShoppingListAggregator struct {
	mock.Mock
}

var _ service.IShoppingListAggregator = (*MockShoppingListAggregator)(nil)

func (m *MockShoppingListAggregator) BuildShoppingList(ctx context.Context, userID uuid.UUID) ([]types.AggregatedLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.AggregatedLine), args.Error(1)
}

// MockMembershipService is a mock implementation of the MembershipService interface
type MockMembershipService struct {
	mock.Mock
}

var _ service.IMembershipService = (*MockMembershipService)(nil)

func (m *MockMembershipService) Toggle(ctx context.Context, rel store.Relation, action service.Action, ownerID, targetID uuid.UUID) error {
	args := m.Called(ctx, rel, action, ownerID, targetID)
	return args.Error(0)
}

func (m *MockMembershipService) ToggleFavorite(ctx context.Context, action service.Action, userID, recipeID uuid.UUID) error {
	return m.Toggle(ctx, store.RelationFavorite, action, userID, recipeID)
}

func (m *MockMembershipService) ToggleCart(ctx context.Context, action service.Action, userID, recipeID uuid.UUID) error {
	return m.Toggle(ctx, store.RelationCart, action, userID, recipeID)
}

func (m *MockMembershipService) ToggleSubscription(ctx context.Context, action service.Action, followerID, authorID uuid.UUID) error {
	return m.Toggle(ctx, store.RelationSubscription, action, followerID, authorID)
}

func (m *MockMembershipService) ListFor(ctx context.Context, rel store.Relation, ownerID uuid.UUID) (service.IDSet, error) {
	args := m.Called(ctx, rel, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(service.IDSet), args.Error(1)
}
