package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/eduforge/coursepay/internal/app/service/account"
	"github.com/eduforge/coursepay/pkg/config"
	"github.com/eduforge/coursepay/pkg/types"
)

func authTestRouter(t *testing.T) (*gin.Engine, *account.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := account.NewTokenManager(&config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
	})

	r := gin.New()
	authed := r.Group("/", Auth(tokens))
	authed.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	admin := authed.Group("/admin", RequireRole(types.UserRoleAdmin))
	admin.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r, tokens
}

func TestAuth_MissingToken(t *testing.T) {
	r, _ := authTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	r, _ := authTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ValidTokenExposesUserID(t *testing.T) {
	r, tokens := authTestRouter(t)
	token, _, err := tokens.Sign("user-1", types.UserRoleStudent)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-1", w.Body.String())
}

func TestRequireRole_ForbidsNonAdmin(t *testing.T) {
	r, tokens := authTestRouter(t)
	token, _, err := tokens.Sign("user-1", types.UserRoleStudent)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_AllowsAdmin(t *testing.T) {
	r, tokens := authTestRouter(t)
	token, _, err := tokens.Sign("admin-1", types.UserRoleAdmin)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
