package service_test

import (
	"testing"

	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/store"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
)

// kitchen is a small catalog with two cooks and three recipes
type kitchen struct {
	db     *gorm.DB
	store  *store.GormStore
	alice  models.User
	bob    models.User
	admin  models.User
	lunch  models.Tag
	dinner models.Tag
	potato models.Ingredient
	salt   models.Ingredient
	// potatoes counted by piece share a name with potato but not a unit
	potatoPcs models.Ingredient
	soup      models.Recipe
	stew      models.Recipe
	salad     models.Recipe
}

func setupKitchen(t *testing.T) *kitchen {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	k := &kitchen{db: db, store: store.NewGormStore(db)}

	k.alice = testhelpers.CreateUser(t, db, "alice")
	k.bob = testhelpers.CreateUser(t, db, "bob")
	k.admin = testhelpers.CreateAdmin(t, db, "root")
	k.lunch = testhelpers.CreateTag(t, db, "Lunch", "lunch")
	k.dinner = testhelpers.CreateTag(t, db, "Dinner", "dinner")
	k.potato = testhelpers.CreateIngredient(t, db, "potato", "g")
	k.salt = testhelpers.CreateIngredient(t, db, "salt", "g")
	k.potatoPcs = testhelpers.CreateIngredient(t, db, "potato", "pcs")

	k.soup = testhelpers.CreateRecipe(t, db, k.alice, "Soup", testhelpers.At(1),
		[]models.Tag{k.lunch}, testhelpers.Line{Ingredient: k.potato, Amount: 200}, testhelpers.Line{Ingredient: k.salt, Amount: 2})
	k.stew = testhelpers.CreateRecipe(t, db, k.bob, "Stew", testhelpers.At(2),
		[]models.Tag{k.dinner}, testhelpers.Line{Ingredient: k.potato, Amount: 150}, testhelpers.Line{Ingredient: k.salt, Amount: 3})
	k.salad = testhelpers.CreateRecipe(t, db, k.bob, "Salad", testhelpers.At(3),
		[]models.Tag{k.lunch, k.dinner}, testhelpers.Line{Ingredient: k.potatoPcs, Amount: 2})
	return k
}

func ptr[T any](v T) *T {
	return &v
}
