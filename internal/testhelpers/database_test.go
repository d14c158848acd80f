package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/models"
)

func TestSetupSQLiteFixtures(t *testing.T) {
	db := SetupSQLite(t)

	author := CreateUser(t, db, "chef")
	potato := CreateIngredient(t, db, "potato", "g")
	dinner := CreateTag(t, db, "Dinner", "dinner")
	recipe := CreateRecipe(t, db, author, "Mash", At(1), []models.Tag{dinner}, Line{potato, 200})

	var loaded models.Recipe
	require.NoError(t, db.Preload("Tags").Preload("Lines.Ingredient").First(&loaded, "id = ?", recipe.ID).Error)
	assert.Equal(t, author.ID, loaded.AuthorID)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, "potato", loaded.Lines[0].Ingredient.Name)
	assert.Equal(t, 200, loaded.Lines[0].Amount)
	require.Len(t, loaded.Tags, 1)
	assert.Equal(t, "dinner", loaded.Tags[0].Slug)
}

func TestSQLiteEnforcesIngredientIdentity(t *testing.T) {
	db := SetupSQLite(t)
	CreateIngredient(t, db, "salt", "g")

	err := db.Create(&models.Ingredient{Name: "salt", MeasurementUnit: "g"}).Error
	assert.Error(t, err)

	// same name with another unit is a different identity
	assert.NoError(t, db.Create(&models.Ingredient{Name: "salt", MeasurementUnit: "pinch"}).Error)
}
