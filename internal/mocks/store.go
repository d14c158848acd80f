package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/store"
)

// MockStore is a mock implementation of store.Store
type MockStore struct {
	mock.Mock
}

var _ store.Store = (*MockStore)(nil)

func (m *MockStore) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockStore) QueryRecipes(ctx context.Context, p store.RecipePredicate) ([]models.Recipe, int64, error) {
	args := m.Called(ctx, p)
	var recipes []models.Recipe
	if args.Get(0) != nil {
		recipes = args.Get(0).([]models.Recipe)
	}
	return recipes, args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) RecipeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) InsertRelation(ctx context.Context, rel store.Relation, key store.RelationKey) error {
	args := m.Called(ctx, rel, key)
	return args.Error(0)
}

func (m *MockStore) DeleteRelation(ctx context.Context, rel store.Relation, key store.RelationKey) error {
	args := m.Called(ctx, rel, key)
	return args.Error(0)
}

func (m *MockStore) RelationExists(ctx context.Context, rel store.Relation, key store.RelationKey) (bool, error) {
	args := m.Called(ctx, rel, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) ListRelation(ctx context.Context, rel store.Relation, ownerID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, rel, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockStore) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
