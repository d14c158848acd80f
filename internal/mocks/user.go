package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

// MockUserService is a mock implementation of the UserService interface
type MockUserService struct {
	mock.Mock
}

var _ service.IUserService = (*MockUserService)(nil)

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*types.UserView, error) {
	args := m.Called(ctx, id, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserView), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, actor service.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockUserService) ListSubscriptions(ctx context.Context, userID uuid.UUID, q service.SubscriptionQuery) (*types.SubscriptionPage, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SubscriptionPage), args.Error(1)
}

// MockCatalogService is a mock implementation of the CatalogService interface
type MockCatalogService struct {
	mock.Mock
}

var _ service.ICatalogService = (*MockCatalogService)(nil)

func (m *MockCatalogService) SearchIngredients(ctx context.Context, prefix string) ([]types.IngredientView, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.IngredientView), args.Error(1)
}

func (m *MockCatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*types.IngredientView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.IngredientView), args.Error(1)
}

func (m *MockCatalogService) ListTags(ctx context.Context) ([]types.TagView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.TagView), args.Error(1)
}

func (m *MockCatalogService) GetTag(ctx context.Context, id uuid.UUID) (*types.TagView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TagView), args.Error(1)
}

func (m *MockCatalogService) ImportIngredients(ctx context.Context, rows []models.Ingredient) (int64, error) {
	args := m.Called(ctx, rows)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogService) ImportTags(ctx context.Context, rows []models.Tag) (int64, error) {
	args := m.Called(ctx, rows)
	return args.Get(0).(int64), args.Error(1)
}
