package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipebox/backend/internal/models"
)

// GormStore implements Store on top of gorm
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a new GormStore
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// WithDetails preloads everything a recipe view needs: author, tags and
// ingredient lines in author order.
func WithDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name")
		}).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.position")
		}).
		Preload("Lines.Ingredient")
}

func (s *GormStore) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := WithDetails(s.db.WithContext(ctx)).First(&recipe, "recipes.id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &recipe, nil
}

func (s *GormStore) QueryRecipes(ctx context.Context, p RecipePredicate) ([]models.Recipe, int64, error) {
	recipes := []models.Recipe{}
	if p.IDs != nil && len(p.IDs) == 0 {
		return recipes, 0, nil
	}

	var total int64
	if err := s.filtered(ctx, p).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	if total == 0 || p.Offset >= int(total) {
		return recipes, total, nil
	}

	q := WithDetails(s.filtered(ctx, p)).
		Order("recipes.created_at DESC").
		Order("recipes.id DESC")
	if p.Limit > 0 {
		q = q.Limit(p.Limit).Offset(p.Offset)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query recipes: %w", err)
	}
	return recipes, total, nil
}

// filtered builds a fresh query carrying the predicate's conditions.
func (s *GormStore) filtered(ctx context.Context, p RecipePredicate) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Recipe{})
	if p.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *p.AuthorID)
	}
	if len(p.TagSlugs) > 0 {
		// a subquery keeps a recipe with several matching tags from repeating
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", p.TagSlugs)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if p.IDs != nil {
		q = q.Where("recipes.id IN ?", p.IDs)
	}
	if len(p.ExcludeIDs) > 0 {
		q = q.Where("recipes.id NOT IN ?", p.ExcludeIDs)
	}
	return q
}

func (s *GormStore) RecipeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check recipe: %w", err)
	}
	return n > 0, nil
}

func (s *GormStore) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return n > 0, nil
}

// InsertRelation inserts the pair or reports ErrDuplicate. The insert uses
// ON CONFLICT DO NOTHING so that of two concurrent inserts exactly one row
// survives and the other caller sees zero affected rows.
func (s *GormStore) InsertRelation(ctx context.Context, rel Relation, key RelationKey) error {
	row, err := rel.row(key)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *GormStore) DeleteRelation(ctx context.Context, rel Relation, key RelationKey) error {
	empty, err := rel.row(RelationKey{})
	if err != nil {
		return err
	}
	owner, target := rel.columns()
	res := s.db.WithContext(ctx).
		Where(owner+" = ? AND "+target+" = ?", key.OwnerID, key.TargetID).
		Delete(empty)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *GormStore) RelationExists(ctx context.Context, rel Relation, key RelationKey) (bool, error) {
	owner, target := rel.columns()
	var n int64
	err := s.db.WithContext(ctx).
		Table(rel.String()).
		Where(owner+" = ? AND "+target+" = ?", key.OwnerID, key.TargetID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", rel, err)
	}
	return n > 0, nil
}

func (s *GormStore) ListRelation(ctx context.Context, rel Relation, ownerID uuid.UUID) ([]uuid.UUID, error) {
	owner, target := rel.columns()
	ids := []uuid.UUID{}
	err := s.db.WithContext(ctx).
		Table(rel.String()).
		Where(owner+" = ?", ownerID).
		Order(target).
		Pluck(target, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", rel, err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

func (s *GormStore) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := deleteRecipes(tx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

func (s *GormStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipeIDs []uuid.UUID
		if err := tx.Model(&models.Recipe{}).Where("author_id = ?", id).Pluck("id", &recipeIDs).Error; err != nil {
			return fmt.Errorf("failed to list user recipes: %w", err)
		}
		if _, err := deleteRecipes(tx, recipeIDs); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("failed to delete favorites: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.ShoppingCartEntry{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart entries: %w", err)
		}
		if err := tx.Where("follower_id = ? OR author_id = ?", id, id).Delete(&models.Subscription{}).Error; err != nil {
			return fmt.Errorf("failed to delete subscriptions: %w", err)
		}

		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

// deleteRecipes removes the recipes and every row that references them.
// It returns the number of recipe rows removed.
func deleteRecipes(tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	dependents := []struct {
		model interface{}
		name  string
	}{
		{&models.Favorite{}, "favorites"},
		{&models.ShoppingCartEntry{}, "cart entries"},
		{&models.RecipeTag{}, "tag links"},
		{&models.RecipeIngredient{}, "ingredient lines"},
	}
	for _, d := range dependents {
		if err := tx.Where("recipe_id IN ?", ids).Delete(d.model).Error; err != nil {
			return 0, fmt.Errorf("failed to delete %s: %w", d.name, err)
		}
	}
	res := tx.Where("id IN ?", ids).Delete(&models.Recipe{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete recipes: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// translateError maps gorm and driver errors onto the store sentinels
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

// IsUniqueViolation reports whether err came from a unique or primary key
// constraint. Drivers without gorm error translation are matched by message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
