// Package store is the persistence boundary of the recipe engine. The filter
// evaluator, the shopping list aggregator and the membership toggles reach the
// database only through the Store interface.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/models"
)

var (
	// ErrRecordNotFound is returned when a lookup or delete matched no row
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert hit a uniqueness constraint
	ErrDuplicate = errors.New("duplicate record")
)

// Relation names one of the membership tables.
type Relation string

const (
	RelationFavorite     Relation = "favorites"
	RelationCart         Relation = "shopping_cart_entries"
	RelationSubscription Relation = "subscriptions"
)

// Relations lists every membership relation.
var Relations = []Relation{RelationFavorite, RelationCart, RelationSubscription}

// RelationKey is a membership pair. For favorites and cart entries the owner is
// the user and the target a recipe; for subscriptions the owner is the follower
// and the target the followed author.
type RelationKey struct {
	OwnerID  uuid.UUID
	TargetID uuid.UUID
}

// columns returns the owner and target column names of the relation table.
func (r Relation) columns() (owner, target string) {
	switch r {
	case RelationSubscription:
		return "follower_id", "author_id"
	default:
		return "user_id", "recipe_id"
	}
}

// row builds the model value for key.
func (r Relation) row(key RelationKey) (interface{}, error) {
	switch r {
	case RelationFavorite:
		return &models.Favorite{UserID: key.OwnerID, RecipeID: key.TargetID}, nil
	case RelationCart:
		return &models.ShoppingCartEntry{UserID: key.OwnerID, RecipeID: key.TargetID}, nil
	case RelationSubscription:
		return &models.Subscription{FollowerID: key.OwnerID, AuthorID: key.TargetID}, nil
	default:
		return nil, fmt.Errorf("unknown relation %q", string(r))
	}
}

func (r Relation) String() string {
	return string(r)
}

// RecipePredicate selects recipes. Zero-valued fields do not constrain the match.
type RecipePredicate struct {
	AuthorID *uuid.UUID
	// TagSlugs matches recipes carrying at least one of the slugs.
	TagSlugs []string
	// IDs restricts the match when non-nil. An empty non-nil slice matches nothing.
	IDs        []uuid.UUID
	ExcludeIDs []uuid.UUID
	Limit      int
	Offset     int
}

// Store is the persistence collaborator consumed by the service layer.
type Store interface {
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	// QueryRecipes returns one page of matches, newest first with ties broken
	// by id descending, and the total number of matches.
	QueryRecipes(ctx context.Context, p RecipePredicate) ([]models.Recipe, int64, error)
	RecipeExists(ctx context.Context, id uuid.UUID) (bool, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)

	InsertRelation(ctx context.Context, rel Relation, key RelationKey) error
	DeleteRelation(ctx context.Context, rel Relation, key RelationKey) error
	RelationExists(ctx context.Context, rel Relation, key RelationKey) (bool, error)
	ListRelation(ctx context.Context, rel Relation, ownerID uuid.UUID) ([]uuid.UUID, error)

	// DeleteRecipe removes a recipe with its lines, tag links, favorites and
	// cart entries in one transaction.
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
	// DeleteUser removes a user, the user's recipes (cascading as DeleteRecipe),
	// the user's favorites and cart entries, and every subscription the user is
	// part of, in one transaction.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}
