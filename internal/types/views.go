package types

import (
	"time"

	"github.com/google/uuid"
)

type UserView struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

type TagView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type IngredientView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
}

type RecipeLineView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// RecipeView is a recipe as seen by one requesting user. The two membership
// flags describe the requester, never the author.
type RecipeView struct {
	ID               uuid.UUID        `json:"id"`
	Author           UserView         `json:"author"`
	Name             string           `json:"name"`
	Text             string           `json:"text"`
	CookingTime      int              `json:"cooking_time"`
	Image            string           `json:"image"`
	Tags             []TagView        `json:"tags"`
	Ingredients      []RecipeLineView `json:"ingredients"`
	IsFavorited      bool             `json:"is_favorited"`
	IsInShoppingCart bool             `json:"is_in_shopping_cart"`
	CreatedAt        time.Time        `json:"created_at"`
}

// RecipeSummary is the short form used in subscription listings
type RecipeSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

type RecipePage struct {
	Items      []RecipeView `json:"items"`
	HasMore    bool         `json:"has_more"`
	TotalCount int64        `json:"total_count"`
}

// AggregatedLine is one shopping list row: an ingredient identity and the
// amount summed across every recipe in the cart.
type AggregatedLine struct {
	IngredientName  string `json:"ingredient_name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int64  `json:"total_amount"`
}

type SubscriptionView struct {
	UserView
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

type SubscriptionPage struct {
	Items      []SubscriptionView `json:"items"`
	HasMore    bool               `json:"has_more"`
	TotalCount int64              `json:"total_count"`
}
