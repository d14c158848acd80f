package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/mocks"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

type testAPI struct {
	router   *gin.Engine
	auth     *mocks.MockAuthService
	users    *mocks.MockUserService
	catalog  *mocks.MockCatalogService
	recipes  *mocks.MockRecipeService
	filter   *mocks.MockFilterEvaluator
	members  *mocks.MockMembershipService
	shopping *mocks.MockShoppingListAggregator

	alice uuid.UUID
	admin uuid.UUID
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	a := &testAPI{
		router:   gin.New(),
		auth:     new(mocks.MockAuthService),
		users:    new(mocks.MockUserService),
		catalog:  new(mocks.MockCatalogService),
		recipes:  new(mocks.MockRecipeService),
		filter:   new(mocks.MockFilterEvaluator),
		members:  new(mocks.MockMembershipService),
		shopping: new(mocks.MockShoppingListAggregator),
		alice:    uuid.New(),
		admin:    uuid.New(),
	}
	a.auth.On("ValidateToken", "alice-token").Return(&types.TokenClaims{UserID: a.alice, Username: "alice"}, nil).Maybe()
	a.auth.On("ValidateToken", "admin-token").Return(&types.TokenClaims{UserID: a.admin, Username: "root", IsAdmin: true}, nil).Maybe()
	a.auth.On("ValidateToken", mock.Anything).Return(nil, service.ErrInvalidToken).Maybe()

	RegisterRoutes(a.router, Dependencies{
		Auth:          a.auth,
		Users:         a.users,
		Catalog:       a.catalog,
		Recipes:       a.recipes,
		Filter:        a.filter,
		Members:       a.members,
		Shopping:      a.shopping,
		PublicBaseURL: "https://recipes.example.com/",
	})

	t.Cleanup(func() {
		for _, m := range []interface{ AssertExpectations(mock.TestingT) bool }{
			a.users, a.catalog, a.recipes, a.filter, a.members, a.shopping,
		} {
			m.AssertExpectations(t)
		}
	})
	return a
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rr)["code"]
}

