package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/store"
	"github.com/pageza/recipebox/backend/internal/types"
)

// IFilterEvaluator defines the interface for recipe listing operations
type IFilterEvaluator interface {
	ListRecipes(ctx context.Context, q RecipeQuery, viewer *uuid.UUID) (*types.RecipePage, error)
	ViewRecipe(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*types.RecipeView, error)
}

// IShoppingListAggregator defines the interface for shopping list operations
type IShoppingListAggregator interface {
	BuildShoppingList(ctx context.Context, userID uuid.UUID) ([]types.AggregatedLine, error)
}

// IMembershipService defines the interface for favorite, cart and
// subscription toggles
type IMembershipService interface {
	Toggle(ctx context.Context, rel store.Relation, action Action, ownerID, targetID uuid.UUID) error
	ToggleFavorite(ctx context.Context, action Action, userID, recipeID uuid.UUID) error
	ToggleCart(ctx context.Context, action Action, userID, recipeID uuid.UUID) error
	ToggleSubscription(ctx context.Context, action Action, followerID, authorID uuid.UUID) error
	ListFor(ctx context.Context, rel store.Relation, ownerID uuid.UUID) (IDSet, error)
}

// IRecipeService defines the interface for recipe write operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, actor Actor, id uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, actor Actor, id uuid.UUID) error
	ShortCode(ctx context.Context, id uuid.UUID) (string, error)
	ResolveShortCode(ctx context.Context, code string) (uuid.UUID, error)
}

// ICatalogService defines the interface for ingredient and tag operations
type ICatalogService interface {
	SearchIngredients(ctx context.Context, prefix string) ([]types.IngredientView, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*types.IngredientView, error)
	ListTags(ctx context.Context) ([]types.TagView, error)
	GetTag(ctx context.Context, id uuid.UUID) (*types.TagView, error)
	ImportIngredients(ctx context.Context, rows []models.Ingredient) (int64, error)
	ImportTags(ctx context.Context, rows []models.Tag) (int64, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// IUserService defines the interface for user profile operations
type IUserService interface {
	GetUser(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*types.UserView, error)
	DeleteUser(ctx context.Context, actor Actor, id uuid.UUID) error
	ListSubscriptions(ctx context.Context, userID uuid.UUID, q SubscriptionQuery) (*types.SubscriptionPage, error)
}

// IImageService defines the interface for recipe image uploads
type IImageService interface {
	SaveDataURL(ctx context.Context, dataURL string) (string, error)
}
