package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/metrics"
	"github.com/pageza/recipebox/backend/internal/store"
	"github.com/pageza/recipebox/backend/internal/types"
)

const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// RecipeQuery is a recipe list request. Nil and empty fields do not filter.
type RecipeQuery struct {
	AuthorID *uuid.UUID
	// Tags are slugs; a recipe matches if it has any of them
	Tags             []string
	IsFavorited      *bool
	IsInShoppingCart *bool
	Page             int
	Limit            int
}

// FilterEvaluator lists recipes for a requesting user
type FilterEvaluator struct {
	store    store.Store
	pageSize int
}

var _ IFilterEvaluator = (*FilterEvaluator)(nil)

func NewFilterEvaluator(s store.Store, pageSize int) *FilterEvaluator {
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return &FilterEvaluator{store: s, pageSize: pageSize}
}

// ListRecipes returns one page of recipes matching q, newest first.
// viewer is nil for anonymous requests; a true favorites or cart filter then
// fails with ErrUnauthorizedFilter. A false filter excludes the viewer's set
// and is ignored for anonymous requests.
func (e *FilterEvaluator) ListRecipes(ctx context.Context, q RecipeQuery, viewer *uuid.UUID) (*types.RecipePage, error) {
	if viewer == nil && (isSet(q.IsFavorited) || isSet(q.IsInShoppingCart)) {
		return nil, ErrUnauthorizedFilter
	}

	sets, err := loadViewerSets(ctx, e.store, viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to load memberships: %w", err)
	}

	predicate, scope := buildPredicate(q, viewer != nil, sets)
	limit, offset := e.window(q)
	predicate.Limit = limit
	predicate.Offset = offset

	recipes, total, err := e.store.QueryRecipes(ctx, predicate)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	metrics.FilterQueries.WithLabelValues(scope).Inc()

	items := make([]types.RecipeView, 0, len(recipes))
	for _, r := range recipes {
		items = append(items, toRecipeView(r, sets))
	}

	return &types.RecipePage{
		Items:      items,
		HasMore:    int64(offset+len(items)) < total,
		TotalCount: total,
	}, nil
}

// ViewRecipe returns a single recipe annotated for viewer
func (e *FilterEvaluator) ViewRecipe(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*types.RecipeView, error) {
	recipe, err := e.store.GetRecipe(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	sets, err := loadViewerSets(ctx, e.store, viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to load memberships: %w", err)
	}

	view := toRecipeView(*recipe, sets)
	return &view, nil
}

// window converts page and limit into a bounded limit and offset
func (e *FilterEvaluator) window(q RecipeQuery) (limit, offset int) {
	return pageWindow(q.Page, q.Limit, e.pageSize)
}

// pageWindow bounds limit to [1, MaxPageSize], using fallback when unset, and
// returns the row offset of page. Pages too large for the offset to fit in an
// int are clamped to the last representable page, which is past the end of
// any real result.
func pageWindow(page, limit, fallback int) (int, int) {
	if limit < 1 {
		limit = fallback
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return limit, (page - 1) * limit
}

// buildPredicate translates q into store terms. Membership filters become id
// restrictions or exclusions taken from the viewer's sets.
func buildPredicate(q RecipeQuery, authenticated bool, sets viewerSets) (store.RecipePredicate, string) {
	p := store.RecipePredicate{
		AuthorID: q.AuthorID,
		TagSlugs: normalizeSlugs(q.Tags),
	}
	if !authenticated {
		return p, "all"
	}

	var (
		restrict   IDSet
		restricted bool
		exclude    = make(IDSet)
		scope      []string
	)

	apply := func(filter *bool, set IDSet, name string) {
		if filter == nil {
			return
		}
		if !*filter {
			for id := range set {
				exclude[id] = struct{}{}
			}
			return
		}
		scope = append(scope, name)
		if !restricted {
			restrict, restricted = set, true
			return
		}
		restrict = restrict.Intersect(set)
	}
	apply(q.IsFavorited, sets.favorites, "favorites")
	apply(q.IsInShoppingCart, sets.cart, "cart")

	if restricted {
		p.IDs = restrict.Slice()
	}
	if len(exclude) > 0 {
		p.ExcludeIDs = exclude.Slice()
	}
	if len(scope) == 0 {
		return p, "all"
	}
	return p, strings.Join(scope, "_")
}

func normalizeSlugs(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		slug := strings.TrimSpace(t)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}

func isSet(b *bool) bool {
	return b != nil && *b
}
