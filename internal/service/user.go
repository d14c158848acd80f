package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/store"
	"github.com/pageza/recipebox/backend/internal/types"
)

// SubscriptionQuery pages through the authors a user follows. RecipesLimit
// caps the recipes shown per author; zero shows all of them.
type SubscriptionQuery struct {
	Page         int
	Limit        int
	RecipesLimit int
}

type UserService struct {
	db       *gorm.DB
	store    store.Store
	pageSize int
}

var _ IUserService = (*UserService)(nil)

func NewUserService(db *gorm.DB, st store.Store, pageSize int) *UserService {
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return &UserService{db: db, store: st, pageSize: pageSize}
}

// GetUser returns a profile with is_subscribed computed for viewer
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*types.UserView, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var sets viewerSets
	if viewer != nil {
		following, err := s.store.RelationExists(ctx, store.RelationSubscription,
			store.RelationKey{OwnerID: *viewer, TargetID: id})
		if err != nil {
			return nil, fmt.Errorf("failed to check subscription: %w", err)
		}
		if following {
			sets.following = NewIDSet(id)
		}
	}

	view := toUserView(user, sets)
	return &view, nil
}

// DeleteUser removes an account with everything it owns. Users may delete
// themselves; administrators may delete anyone.
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.ID != id && !actor.IsAdmin {
		return ErrForbidden
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	logging.Info().
		Str("user_id", id.String()).
		Str("actor_id", actor.ID.String()).
		Msg("user deleted")
	return nil
}

// ListSubscriptions returns the authors userID follows ordered by username,
// each with their newest recipes
func (s *UserService) ListSubscriptions(ctx context.Context, userID uuid.UUID, q SubscriptionQuery) (*types.SubscriptionPage, error) {
	authorIDs, err := s.store.ListRelation(ctx, store.RelationSubscription, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	if len(authorIDs) == 0 {
		return &types.SubscriptionPage{Items: []types.SubscriptionView{}}, nil
	}

	limit, offset := pageWindow(q.Page, q.Limit, s.pageSize)

	var total int64
	base := s.db.WithContext(ctx).Model(&models.User{}).Where("id IN ?", authorIDs)
	if err := base.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var authors []models.User
	err = s.db.WithContext(ctx).
		Where("id IN ?", authorIDs).
		Order("username ASC").
		Limit(limit).Offset(offset).
		Find(&authors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	recipesLimit := q.RecipesLimit
	if recipesLimit < 0 {
		recipesLimit = 0
	}

	following := NewIDSet(authorIDs...)
	items := make([]types.SubscriptionView, 0, len(authors))
	for _, author := range authors {
		authorID := author.ID
		recipes, count, err := s.store.QueryRecipes(ctx, store.RecipePredicate{
			AuthorID: &authorID,
			Limit:    recipesLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load recipes of %s: %w", author.ID, err)
		}

		summaries := make([]types.RecipeSummary, 0, len(recipes))
		for _, r := range recipes {
			summaries = append(summaries, toRecipeSummary(r))
		}
		items = append(items, types.SubscriptionView{
			UserView:     toUserView(author, viewerSets{following: following}),
			Recipes:      summaries,
			RecipesCount: count,
		})
	}

	return &types.SubscriptionPage{
		Items:      items,
		HasMore:    int64(offset+len(items)) < total,
		TotalCount: total,
	}, nil
}
