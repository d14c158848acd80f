package testhelpers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipebox/backend/internal/models"
)

// TestPassword is the plain-text password of every fixture user
const TestPassword = "testpassword123"

// BaseTime anchors fixture timestamps so ordering assertions are stable
var BaseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// At returns BaseTime shifted by n minutes
func At(n int) time.Time {
	return BaseTime.Add(time.Duration(n) * time.Minute)
}

// Line is an ingredient amount used to build fixture recipes
type Line struct {
	Ingredient models.Ingredient
	Amount     int
}

// CreateUser inserts a user named username with TestPassword
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// CreateAdmin inserts an administrator
func CreateAdmin(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := CreateUser(t, db, username)
	if err := db.Model(&user).Update("is_admin", true).Error; err != nil {
		t.Fatalf("failed to promote %s: %v", username, err)
	}
	user.IsAdmin = true
	return user
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) models.Ingredient {
	t.Helper()
	ing := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ing).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ing
}

func CreateTag(t *testing.T, db *gorm.DB, name, slug string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Slug: slug}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", slug, err)
	}
	return tag
}

// CreateRecipe inserts a recipe with its lines and tag links. createdAt
// controls list ordering.
func CreateRecipe(t *testing.T, db *gorm.DB, author models.User, name string, createdAt time.Time, tags []models.Tag, lines ...Line) models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		ID:          uuid.New(),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Cook " + name,
		CookingTime: 10,
		ShortCode:   uuid.NewString()[:8],
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		for i, l := range lines {
			row := models.RecipeIngredient{
				RecipeID:     recipe.ID,
				IngredientID: l.Ingredient.ID,
				Amount:       l.Amount,
				Position:     i,
			}
			if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
				return err
			}
		}
		for _, tag := range tags {
			if err := tx.Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	return recipe
}

// AddRelation inserts a favorite, cart entry or subscription row directly
func AddRelation(t *testing.T, db *gorm.DB, row interface{}) {
	t.Helper()
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("failed to insert %T: %v", row, err)
	}
}
