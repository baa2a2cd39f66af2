//go:build unit

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bahooo22/HannaWhishlist/internal/handler/middleware"
	"github.com/bahooo22/HannaWhishlist/internal/pkg/config"
	"github.com/bahooo22/HannaWhishlist/internal/pkg/jwt"
	"github.com/bahooo22/HannaWhishlist/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	validator := usecase.NewTokenValidator(jwt.NewService(secret))
	auth := middleware.NewAuthMiddleware(validator)

	engine.GET("/protected", auth.RequireAuth(), func(c *gin.Context) {
		clientID, _ := middleware.GetClientID(c)
		c.JSON(http.StatusOK, gin.H{"clientId": clientID})
	})
	return engine
}

func getProtected(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	cfg := config.NewTestConfig()
	router := newAuthRouter(cfg.JWT.Secret)
	service := jwt.NewService(cfg.JWT.Secret)

	t.Run("valid bearer token passes and exposes the client id", func(t *testing.T) {
		token, err := service.GenerateToken("bot-client", "api", time.Hour)
		require.NoError(t, err)

		rec := getProtected(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "bot-client")
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		rec := getProtected(router, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed token is rejected", func(t *testing.T) {
		rec := getProtected(router, "Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		token, err := jwt.NewService("some-other-secret").GenerateToken("bot-client", "api", time.Hour)
		require.NoError(t, err)

		rec := getProtected(router, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token, err := service.GenerateToken("bot-client", "api", -time.Minute)
		require.NoError(t, err)

		rec := getProtected(router, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
