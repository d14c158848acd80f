package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/store"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
)

type fixture struct {
	db        *gorm.DB
	store     *store.GormStore
	alice     models.User
	bob       models.User
	breakfast models.Tag
	lunch     models.Tag
	dinner    models.Tag
	potato    models.Ingredient
	salt      models.Ingredient
	omelette  models.Recipe
	soup      models.Recipe
	stew      models.Recipe
}

func setupFixture(t *testing.T) *fixture {
	db := testhelpers.SetupSQLite(t)
	f := &fixture{db: db, store: store.NewGormStore(db)}

	f.alice = testhelpers.CreateUser(t, db, "alice")
	f.bob = testhelpers.CreateUser(t, db, "bob")
	f.breakfast = testhelpers.CreateTag(t, db, "Breakfast", "breakfast")
	f.lunch = testhelpers.CreateTag(t, db, "Lunch", "lunch")
	f.dinner = testhelpers.CreateTag(t, db, "Dinner", "dinner")
	f.potato = testhelpers.CreateIngredient(t, db, "potato", "g")
	f.salt = testhelpers.CreateIngredient(t, db, "salt", "g")

	f.omelette = testhelpers.CreateRecipe(t, db, f.alice, "Omelette", testhelpers.At(1),
		[]models.Tag{f.breakfast}, testhelpers.Line{Ingredient: f.salt, Amount: 2})
	f.soup = testhelpers.CreateRecipe(t, db, f.alice, "Soup", testhelpers.At(2),
		[]models.Tag{f.lunch, f.dinner}, testhelpers.Line{Ingredient: f.potato, Amount: 200}, testhelpers.Line{Ingredient: f.salt, Amount: 5})
	f.stew = testhelpers.CreateRecipe(t, db, f.bob, "Stew", testhelpers.At(3),
		[]models.Tag{f.dinner}, testhelpers.Line{Ingredient: f.potato, Amount: 150})
	return f
}

func names(recipes []models.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.Name
	}
	return out
}

func TestGetRecipe(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	recipe, err := f.store.GetRecipe(ctx, f.soup.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", recipe.Author.Username)
	require.Len(t, recipe.Lines, 2)
	assert.Equal(t, "potato", recipe.Lines[0].Ingredient.Name)
	assert.Equal(t, "salt", recipe.Lines[1].Ingredient.Name)
	assert.Len(t, recipe.Tags, 2)

	_, err = f.store.GetRecipe(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestQueryRecipes(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	unknown := uuid.New()

	tests := []struct {
		name      string
		predicate store.RecipePredicate
		want      []string
		wantTotal int64
	}{
		{name: "all newest first", want: []string{"Stew", "Soup", "Omelette"}, wantTotal: 3},
		{name: "author", predicate: store.RecipePredicate{AuthorID: &f.alice.ID}, want: []string{"Soup", "Omelette"}, wantTotal: 2},
		{name: "unknown author", predicate: store.RecipePredicate{AuthorID: &unknown}, want: []string{}, wantTotal: 0},
		{name: "tags are OR-ed", predicate: store.RecipePredicate{TagSlugs: []string{"breakfast", "lunch"}}, want: []string{"Soup", "Omelette"}, wantTotal: 2},
		{name: "several matching tags do not repeat a recipe", predicate: store.RecipePredicate{TagSlugs: []string{"lunch", "dinner"}}, want: []string{"Stew", "Soup"}, wantTotal: 2},
		{name: "unknown slug", predicate: store.RecipePredicate{TagSlugs: []string{"brunch"}}, want: []string{}, wantTotal: 0},
		{name: "restricted ids", predicate: store.RecipePredicate{IDs: []uuid.UUID{f.omelette.ID, f.stew.ID}}, want: []string{"Stew", "Omelette"}, wantTotal: 2},
		{name: "empty restriction", predicate: store.RecipePredicate{IDs: []uuid.UUID{}}, want: []string{}, wantTotal: 0},
		{name: "excluded ids", predicate: store.RecipePredicate{ExcludeIDs: []uuid.UUID{f.soup.ID}}, want: []string{"Stew", "Omelette"}, wantTotal: 2},
		{name: "page", predicate: store.RecipePredicate{Limit: 2, Offset: 1}, want: []string{"Soup", "Omelette"}, wantTotal: 3},
		{name: "offset past end", predicate: store.RecipePredicate{Limit: 2, Offset: 4}, want: []string{}, wantTotal: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipes, total, err := f.store.QueryRecipes(ctx, tt.predicate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(recipes))
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestQueryRecipesTieBreaksByID(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	s := store.NewGormStore(db)
	author := testhelpers.CreateUser(t, db, "chef")
	tag := testhelpers.CreateTag(t, db, "Dinner", "dinner")
	salt := testhelpers.CreateIngredient(t, db, "salt", "g")

	a := testhelpers.CreateRecipe(t, db, author, "A", testhelpers.At(0), []models.Tag{tag}, testhelpers.Line{Ingredient: salt, Amount: 1})
	b := testhelpers.CreateRecipe(t, db, author, "B", testhelpers.At(0), []models.Tag{tag}, testhelpers.Line{Ingredient: salt, Amount: 1})

	recipes, _, err := s.QueryRecipes(context.Background(), store.RecipePredicate{})
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	first, second := a, b
	if a.ID.String() < b.ID.String() {
		first, second = b, a
	}
	assert.Equal(t, first.ID, recipes[0].ID)
	assert.Equal(t, second.ID, recipes[1].ID)
}

func TestRelationLifecycle(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	for _, rel := range []store.Relation{store.RelationFavorite, store.RelationCart} {
		t.Run(rel.String(), func(t *testing.T) {
			key := store.RelationKey{OwnerID: f.bob.ID, TargetID: f.soup.ID}

			require.NoError(t, f.store.InsertRelation(ctx, rel, key))
			assert.ErrorIs(t, f.store.InsertRelation(ctx, rel, key), store.ErrDuplicate)

			exists, err := f.store.RelationExists(ctx, rel, key)
			require.NoError(t, err)
			assert.True(t, exists)

			ids, err := f.store.ListRelation(ctx, rel, f.bob.ID)
			require.NoError(t, err)
			assert.Equal(t, []uuid.UUID{f.soup.ID}, ids)

			require.NoError(t, f.store.DeleteRelation(ctx, rel, key))
			assert.ErrorIs(t, f.store.DeleteRelation(ctx, rel, key), store.ErrRecordNotFound)

			ids, err = f.store.ListRelation(ctx, rel, f.bob.ID)
			require.NoError(t, err)
			assert.NotNil(t, ids)
			assert.Empty(t, ids)
		})
	}
}

func TestFavoriteAndCartAreSeparate(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	key := store.RelationKey{OwnerID: f.bob.ID, TargetID: f.omelette.ID}

	require.NoError(t, f.store.InsertRelation(ctx, store.RelationFavorite, key))

	inCart, err := f.store.RelationExists(ctx, store.RelationCart, key)
	require.NoError(t, err)
	assert.False(t, inCart)
	require.NoError(t, f.store.InsertRelation(ctx, store.RelationCart, key))
}

func TestSubscriptionRelation(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	key := store.RelationKey{OwnerID: f.bob.ID, TargetID: f.alice.ID}

	require.NoError(t, f.store.InsertRelation(ctx, store.RelationSubscription, key))
	assert.ErrorIs(t, f.store.InsertRelation(ctx, store.RelationSubscription, key), store.ErrDuplicate)

	authors, err := f.store.ListRelation(ctx, store.RelationSubscription, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.alice.ID}, authors)
}

func TestDeleteRecipeCascades(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	testhelpers.AddRelation(t, f.db, &models.Favorite{UserID: f.bob.ID, RecipeID: f.soup.ID})
	testhelpers.AddRelation(t, f.db, &models.ShoppingCartEntry{UserID: f.bob.ID, RecipeID: f.soup.ID})
	testhelpers.AddRelation(t, f.db, &models.ShoppingCartEntry{UserID: f.bob.ID, RecipeID: f.omelette.ID})

	require.NoError(t, f.store.DeleteRecipe(ctx, f.soup.ID))
	assert.ErrorIs(t, f.store.DeleteRecipe(ctx, f.soup.ID), store.ErrRecordNotFound)

	exists, err := f.store.RecipeExists(ctx, f.soup.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	cart, err := f.store.ListRelation(ctx, store.RelationCart, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.omelette.ID}, cart, "unrelated cart entries survive")

	var lines, links int64
	f.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", f.soup.ID).Count(&lines)
	f.db.Model(&models.RecipeTag{}).Where("recipe_id = ?", f.soup.ID).Count(&links)
	assert.Zero(t, lines)
	assert.Zero(t, links)
}

func TestDeleteUserCascades(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	carol := testhelpers.CreateUser(t, f.db, "carol")

	testhelpers.AddRelation(t, f.db, &models.Subscription{FollowerID: f.bob.ID, AuthorID: f.alice.ID})
	testhelpers.AddRelation(t, f.db, &models.Subscription{FollowerID: f.alice.ID, AuthorID: carol.ID})
	testhelpers.AddRelation(t, f.db, &models.Favorite{UserID: f.bob.ID, RecipeID: f.soup.ID})
	testhelpers.AddRelation(t, f.db, &models.Favorite{UserID: f.alice.ID, RecipeID: f.stew.ID})
	testhelpers.AddRelation(t, f.db, &models.ShoppingCartEntry{UserID: f.bob.ID, RecipeID: f.stew.ID})

	require.NoError(t, f.store.DeleteUser(ctx, f.alice.ID))

	exists, err := f.store.UserExists(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	recipes, total, err := f.store.QueryRecipes(ctx, store.RecipePredicate{AuthorID: &f.alice.ID})
	require.NoError(t, err)
	assert.Empty(t, recipes)
	assert.Zero(t, total)

	following, err := f.store.ListRelation(ctx, store.RelationSubscription, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, following, "dangling subscription is removed")

	var subs int64
	f.db.Model(&models.Subscription{}).Count(&subs)
	assert.Zero(t, subs)

	favs, err := f.store.ListRelation(ctx, store.RelationFavorite, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, favs)

	cart, err := f.store.ListRelation(ctx, store.RelationCart, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.stew.ID}, cart)

	assert.ErrorIs(t, f.store.DeleteUser(ctx, f.alice.ID), store.ErrRecordNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, store.IsUniqueViolation(store.ErrDuplicate))
	assert.True(t, store.IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, store.IsUniqueViolation(nil))
	assert.False(t, store.IsUniqueViolation(store.ErrRecordNotFound))
}
