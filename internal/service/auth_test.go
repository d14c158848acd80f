package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
	"github.com/pageza/recipebox/backend/internal/types"
)

const testSecret = "test-secret-that-is-long-enough"

func registerRequest(username string) *types.RegisterRequest {
	return &types.RegisterRequest{
		Email:     username + "@Example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "supersecret",
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewAuthService(db, testSecret, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerRequest("carol"))
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", user.Email)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	_, err = svc.Register(ctx, registerRequest("carol"))
	assert.ErrorIs(t, err, service.ErrAlreadyExists)

	other := registerRequest("dave")
	other.Email = "carol@example.com"
	_, err = svc.Register(ctx, other)
	assert.ErrorIs(t, err, service.ErrAlreadyExists)

	token, loggedIn, err := svc.Login(ctx, "CAROL@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "carol", claims.Username)
	assert.False(t, claims.IsAdmin)

	_, _, err = svc.Login(ctx, "carol@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", "supersecret")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthService_AdminClaim(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewAuthService(db, testSecret, time.Hour)
	admin := testhelpers.CreateAdmin(t, db, "root")

	token, err := svc.GenerateToken(&admin)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestAuthService_ValidateTokenRejects(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db, "erin")
	svc := service.NewAuthService(db, testSecret, time.Hour)

	foreign, err := service.NewAuthService(db, "another-secret-entirely", time.Hour).GenerateToken(&user)
	require.NoError(t, err)
	expired, err := service.NewAuthService(db, testSecret, time.Nanosecond).GenerateToken(&user)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &types.TokenClaims{UserID: user.ID}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not.a.token",
		"wrong secret": foreign,
		"expired":      expired,
		"unsigned":     unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, service.ErrInvalidToken)
		})
	}
}

func TestAuthService_GetUserByID(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db, "frank")
	svc := service.NewAuthService(db, testSecret, time.Hour)

	got, err := svc.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "frank", got.Username)
}
