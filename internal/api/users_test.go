package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/store"
	"github.com/pageza/recipebox/backend/internal/types"
)

func TestMe(t *testing.T) {
	a := setupTestAPI(t)
	a.users.On("GetUser", mock.Anything, a.alice, &a.alice).Return(&types.UserView{ID: a.alice, Username: "alice"}, nil)

	rr := a.do(t, http.MethodGet, "/api/v1/users/me", "alice-token", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", decode[types.UserView](t, rr).Username)

	rr = a.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetUser(t *testing.T) {
	a := setupTestAPI(t)
	bob := uuid.New()
	var anonymous *uuid.UUID

	a.users.On("GetUser", mock.Anything, bob, &a.alice).Return(&types.UserView{ID: bob, IsSubscribed: true}, nil)
	a.users.On("GetUser", mock.Anything, bob, anonymous).Return(&types.UserView{ID: bob}, nil)

	rr := a.do(t, http.MethodGet, "/api/v1/users/"+bob.String(), "alice-token", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[types.UserView](t, rr).IsSubscribed)

	rr = a.do(t, http.MethodGet, "/api/v1/users/"+bob.String(), "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[types.UserView](t, rr).IsSubscribed)
}

func TestSubscribe(t *testing.T) {
	a := setupTestAPI(t)
	bob := uuid.New()

	a.members.On("Toggle", mock.Anything, store.RelationSubscription, service.ActionAdd, a.alice, bob).Return(nil).Once()
	a.users.On("GetUser", mock.Anything, bob, &a.alice).Return(&types.UserView{ID: bob, IsSubscribed: true}, nil).Once()
	rr := a.do(t, http.MethodPost, "/api/v1/users/"+bob.String()+"/subscribe", "alice-token", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, decode[types.UserView](t, rr).IsSubscribed)

	a.members.On("Toggle", mock.Anything, store.RelationSubscription, service.ActionAdd, a.alice, bob).Return(service.ErrAlreadyExists).Once()
	rr = a.do(t, http.MethodPost, "/api/v1/users/"+bob.String()+"/subscribe", "alice-token", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "already_exists", errorCode(t, rr))

	a.members.On("Toggle", mock.Anything, store.RelationSubscription, service.ActionAdd, a.alice, a.alice).Return(service.ErrSelfSubscriptionForbidden).Once()
	rr = a.do(t, http.MethodPost, "/api/v1/users/"+a.alice.String()+"/subscribe", "alice-token", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "self_subscription_forbidden", errorCode(t, rr))

	a.members.On("Toggle", mock.Anything, store.RelationSubscription, service.ActionRemove, a.alice, bob).Return(nil).Once()
	rr = a.do(t, http.MethodDelete, "/api/v1/users/"+bob.String()+"/subscribe", "alice-token", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	a.members.On("Toggle", mock.Anything, store.RelationSubscription, service.ActionRemove, a.alice, bob).Return(service.ErrNotFound).Once()
	rr = a.do(t, http.MethodDelete, "/api/v1/users/"+bob.String()+"/subscribe", "alice-token", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSubscriptions(t *testing.T) {
	a := setupTestAPI(t)
	a.users.On("ListSubscriptions", mock.Anything, a.alice, service.SubscriptionQuery{Page: 2, Limit: 5, RecipesLimit: 3}).
		Return(&types.SubscriptionPage{Items: []types.SubscriptionView{}, TotalCount: 6, HasMore: false}, nil)

	rr := a.do(t, http.MethodGet, "/api/v1/users/subscriptions?page=2&limit=5&recipes_limit=3", "alice-token", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[types.SubscriptionPage](t, rr)
	assert.Equal(t, int64(6), page.TotalCount)
	assert.NotNil(t, page.Items)

	rr = a.do(t, http.MethodGet, "/api/v1/users/subscriptions?recipes_limit=-2", "alice-token", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "bad_request", errorCode(t, rr))
}

func TestDeleteUser(t *testing.T) {
	a := setupTestAPI(t)
	bob := uuid.New()

	a.users.On("DeleteUser", mock.Anything, service.Actor{ID: a.alice}, bob).Return(service.ErrForbidden)
	rr := a.do(t, http.MethodDelete, "/api/v1/users/"+bob.String(), "alice-token", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	a.users.On("DeleteUser", mock.Anything, service.Actor{ID: a.admin, IsAdmin: true}, bob).Return(nil)
	rr = a.do(t, http.MethodDelete, "/api/v1/users/"+bob.String(), "admin-token", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
