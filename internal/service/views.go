package service

import (
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
)

func toUserView(u models.User, sets viewerSets) types.UserView {
	return types.UserView{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: sets.following.Has(u.ID),
	}
}

func toTagView(t models.Tag) types.TagView {
	return types.TagView{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func toIngredientView(i models.Ingredient) types.IngredientView {
	return types.IngredientView{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

// toRecipeView annotates r for the viewer described by sets
func toRecipeView(r models.Recipe, sets viewerSets) types.RecipeView {
	tags := make([]types.TagView, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, toTagView(t))
	}
	lines := make([]types.RecipeLineView, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, types.RecipeLineView{
			ID:              l.IngredientID,
			Name:            l.Ingredient.Name,
			MeasurementUnit: l.Ingredient.MeasurementUnit,
			Amount:          l.Amount,
		})
	}
	return types.RecipeView{
		ID:               r.ID,
		Author:           toUserView(r.Author, sets),
		Name:             r.Name,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		Image:            r.ImageRef,
		Tags:             tags,
		Ingredients:      lines,
		IsFavorited:      sets.favorites.Has(r.ID),
		IsInShoppingCart: sets.cart.Has(r.ID),
		CreatedAt:        r.CreatedAt,
	}
}

func toRecipeSummary(r models.Recipe) types.RecipeSummary {
	return types.RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageRef,
		CookingTime: r.CookingTime,
	}
}
