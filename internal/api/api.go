package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
)

// Dependencies are the services and limiters the handlers are built from.
// A nil limiter disables rate limiting for its routes.
type Dependencies struct {
	Auth     service.IAuthService
	Users    service.IUserService
	Catalog  service.ICatalogService
	Recipes  service.IRecipeService
	Filter   service.IFilterEvaluator
	Members  service.IMembershipService
	Shopping service.IShoppingListAggregator

	CreateLimiter *middleware.RateLimiter
	ToggleLimiter *middleware.RateLimiter

	// PublicBaseURL prefixes short links, e.g. https://recipes.example.com
	PublicBaseURL string
}

// RegisterRoutes mounts the /api/v1 handlers and the short link redirect
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	recipeHandler := NewRecipeHandler(deps)

	v1 := router.Group("/api/v1")
	NewAuthHandler(deps.Auth).RegisterRoutes(v1)
	NewUserHandler(deps.Users, deps.Members, deps.Auth, deps.ToggleLimiter).RegisterRoutes(v1)
	NewCatalogHandler(deps.Catalog).RegisterRoutes(v1)
	recipeHandler.RegisterRoutes(v1)

	recipeHandler.RegisterShortLinks(router)
}

func limit(rl *middleware.RateLimiter) gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return rl.RateLimitMiddleware()
}
