package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
)

type UserHandler struct {
	users   service.IUserService
	members service.IMembershipService
	tokens  middleware.TokenValidator
	toggles *middleware.RateLimiter
}

func NewUserHandler(users service.IUserService, members service.IMembershipService, tokens middleware.TokenValidator, toggles *middleware.RateLimiter) *UserHandler {
	return &UserHandler{users: users, members: members, tokens: tokens, toggles: toggles}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.tokens)
	users := router.Group("/users")
	{
		users.GET("/me", auth, h.Me)
		users.GET("/subscriptions", auth, h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuth(h.tokens), h.GetUser)
		users.DELETE("/:id", auth, h.DeleteUser)
		users.POST("/:id/subscribe", auth, limit(h.toggles), h.Subscribe)
		users.DELETE("/:id/subscribe", auth, limit(h.toggles), h.Unsubscribe)
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	me, ok := requireUser(c)
	if !ok {
		return
	}
	view, err := h.users.GetUser(c.Request.Context(), me, &me)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.users.GetUser(c.Request.Context(), id, middleware.Viewer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	me, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor := service.Actor{ID: me, IsAdmin: middleware.IsAdmin(c)}
	if err := h.users.DeleteUser(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the caller follows.
// Query: page, limit, recipes_limit.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	me, ok := requireUser(c)
	if !ok {
		return
	}
	var q service.SubscriptionQuery
	if q.Page, ok = queryInt(c, "page"); !ok {
		return
	}
	if q.Limit, ok = queryInt(c, "limit"); !ok {
		return
	}
	if q.RecipesLimit, ok = queryInt(c, "recipes_limit"); !ok {
		return
	}

	page, err := h.users.ListSubscriptions(c.Request.Context(), me, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	me, ok := requireUser(c)
	if !ok {
		return
	}
	author, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.members.ToggleSubscription(ctx, service.ActionAdd, me, author); err != nil {
		respondError(c, err)
		return
	}
	view, err := h.users.GetUser(ctx, author, &me)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	me, ok := requireUser(c)
	if !ok {
		return
	}
	author, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.members.ToggleSubscription(c.Request.Context(), service.ActionRemove, me, author); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
