package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
)

// respondError writes the JSON error body for err. Domain errors keep their
// message; anything else is logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logging.Error().Err(err).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Msg("request failed")
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnauthorizedFilter):
		return http.StatusUnauthorized, "unauthorized_filter"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrSelfSubscriptionForbidden):
		return http.StatusBadRequest, "self_subscription_forbidden"
	case errors.Is(err, service.ErrInvalidRecipe):
		return http.StatusBadRequest, "invalid_recipe"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, "invalid_credentials"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "code": "bad_request"})
}

// pathID parses the :id path parameter
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found", "code": "not_found"})
		return uuid.Nil, false
	}
	return id, true
}

// requireUser returns the caller set by AuthMiddleware
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated", "code": "unauthorized"})
	}
	return id, ok
}

// queryInt reads a non-negative integer query parameter; missing yields 0
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

// queryBool reads an optional boolean flag accepting 1/0 and true/false
func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return nil, true
	}
	var v bool
	switch strings.ToLower(raw) {
	case "1", "true":
		v = true
	case "0", "false":
		v = false
	default:
		badRequest(c, name+" must be 0, 1, true or false")
		return nil, false
	}
	return &v, true
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
