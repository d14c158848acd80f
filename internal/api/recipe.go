package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/export"
	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/store"
	"github.com/pageza/recipebox/backend/internal/types"
)

type RecipeHandler struct {
	recipes  service.IRecipeService
	filter   service.IFilterEvaluator
	members  service.IMembershipService
	shopping service.IShoppingListAggregator
	tokens   middleware.TokenValidator
	baseURL  string

	createLimiter *middleware.RateLimiter
	toggleLimiter *middleware.RateLimiter
}

func NewRecipeHandler(deps Dependencies) *RecipeHandler {
	return &RecipeHandler{
		recipes:       deps.Recipes,
		filter:        deps.Filter,
		members:       deps.Members,
		shopping:      deps.Shopping,
		tokens:        deps.Auth,
		baseURL:       strings.TrimRight(deps.PublicBaseURL, "/"),
		createLimiter: deps.CreateLimiter,
		toggleLimiter: deps.ToggleLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.tokens)
	optional := middleware.OptionalAuth(h.tokens)
	toggles := limit(h.toggleLimiter)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", auth, limit(h.createLimiter), h.CreateRecipe)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PUT("/:id", auth, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)
		recipes.GET("/:id/get-link", h.GetLink)
		recipes.POST("/:id/favorite", auth, toggles, h.toggle(store.RelationFavorite, service.ActionAdd))
		recipes.DELETE("/:id/favorite", auth, toggles, h.toggle(store.RelationFavorite, service.ActionRemove))
		recipes.POST("/:id/shopping_cart", auth, toggles, h.toggle(store.RelationCart, service.ActionAdd))
		recipes.DELETE("/:id/shopping_cart", auth, toggles, h.toggle(store.RelationCart, service.ActionRemove))
	}
}

// RegisterShortLinks mounts the short link redirect outside the API prefix
func (h *RecipeHandler) RegisterShortLinks(router gin.IRouter) {
	router.GET("/s/:code", h.FollowShortLink)
}

// ListRecipes handles GET /recipes.
// Query: author, tags (repeatable), is_favorited, is_in_shopping_cart, page, limit.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var (
		q  service.RecipeQuery
		ok bool
	)
	if raw := c.Query("author"); raw != "" {
		author, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "author must be a user id")
			return
		}
		q.AuthorID = &author
	}
	q.Tags = c.QueryArray("tags")
	if q.IsFavorited, ok = queryBool(c, "is_favorited"); !ok {
		return
	}
	if q.IsInShoppingCart, ok = queryBool(c, "is_in_shopping_cart"); !ok {
		return
	}
	if q.Page, ok = queryInt(c, "page"); !ok {
		return
	}
	if q.Limit, ok = queryInt(c, "limit"); !ok {
		return
	}

	viewer := middleware.Viewer(c)
	if viewer == nil && (isTrue(q.IsFavorited) || isTrue(q.IsInShoppingCart)) {
		respondError(c, service.ErrUnauthorizedFilter)
		return
	}

	page, err := h.filter.ListRecipes(c.Request.Context(), q, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.filter.ViewRecipe(c.Request.Context(), id, middleware.Viewer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	me, ok := requireUser(c)
	if !ok {
		return
	}
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	recipe, err := h.recipes.CreateRecipe(ctx, me, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.filter.ViewRecipe(ctx, recipe.ID, &me)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	me, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	actor := service.Actor{ID: me, IsAdmin: middleware.IsAdmin(c)}
	if _, err := h.recipes.UpdateRecipe(ctx, actor, id, &req); err != nil {
		respondError(c, err)
		return
	}
	view, err := h.filter.ViewRecipe(ctx, id, &me)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	me, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor := service.Actor{ID: me, IsAdmin: middleware.IsAdmin(c)}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// toggle builds the add or remove handler for a favorite or cart relation.
// Add answers 201 with the recipe summary, remove answers 204.
func (h *RecipeHandler) toggle(rel store.Relation, action service.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := requireUser(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		if err := h.members.Toggle(ctx, rel, action, me, id); err != nil {
			respondError(c, err)
			return
		}
		if action == service.ActionRemove {
			c.Status(http.StatusNoContent)
			return
		}

		view, err := h.filter.ViewRecipe(ctx, id, &me)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, types.RecipeSummary{
			ID:          view.ID,
			Name:        view.Name,
			Image:       view.Image,
			CookingTime: view.CookingTime,
		})
	}
}

// DownloadShoppingCart sends the caller's consolidated shopping list as an
// attachment. Query: format=txt|json.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	me, ok := requireUser(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	lines, err := h.shopping.BuildShoppingList(c.Request.Context(), me)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, format, lines); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.FileName()))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// GetLink returns the absolute short link of a recipe. Without a configured
// public base URL the link is built from the request host.
func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	code, err := h.recipes.ShortCode(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	base := h.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	c.JSON(http.StatusOK, gin.H{"short-link": base + "/s/" + code})
}

func (h *RecipeHandler) FollowShortLink(c *gin.Context) {
	id, err := h.recipes.ResolveShortCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/recipes/"+id.String()+"/")
}
