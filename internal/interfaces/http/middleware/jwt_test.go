package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aurum/jewelstore/internal/domain/identity"
	"github.com/aurum/jewelstore/internal/infrastructure/auth"
	"github.com/aurum/jewelstore/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(access time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  access,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "jewelstore-test",
		MaxRefreshCount:        10,
	})
}

func issue(t *testing.T, svc *auth.JWTService, role identity.Role) (*auth.TokenPair, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   userID,
		Username: "counter1",
		Role:     string(role),
	})
	require.NoError(t, err)
	return pair, userID
}

func authRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/api/admin/bills", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  GetJWTUserID(c),
			"username": GetJWTUsername(c),
			"role":     GetJWTRole(c),
		})
	})
	router.GET("/health", okHandler)
	return router
}

func get(router http.Handler, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	router := authRouter(JWTMiddlewareConfig{JWTService: svc, SkipPaths: []string{"/health"}})

	t.Run("valid token exposes claims", func(t *testing.T) {
		pair, userID := issue(t, svc, identity.RoleStaff)
		w := get(router, "/api/admin/bills", BearerPrefix+pair.AccessToken)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
		assert.Contains(t, w.Body.String(), `"role":"staff"`)
	})

	t.Run("missing header", func(t *testing.T) {
		w := get(router, "/api/admin/bills", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		pair, _ := issue(t, svc, identity.RoleStaff)
		w := get(router, "/api/admin/bills", "Basic "+pair.AccessToken)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := get(router, "/api/admin/bills", BearerPrefix+"not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_TOKEN", decodeError(t, w).Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		pair, _ := issue(t, svc, identity.RoleStaff)
		w := get(router, "/api/admin/bills", BearerPrefix+pair.RefreshToken)
		assert.Equal(t, "INVALID_TOKEN", decodeError(t, w).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expiring := newTestJWTService(-time.Minute)
		pair, _ := issue(t, expiring, identity.RoleStaff)
		w := get(router, "/api/admin/bills", BearerPrefix+pair.AccessToken)
		assert.Equal(t, "TOKEN_EXPIRED", decodeError(t, w).Code)
	})

	t.Run("skip paths pass through", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(router, "/health", "").Code)
	})
}

func TestJWTAuthMiddleware_Revocation(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	blacklist := auth.NewInMemoryTokenBlacklist()
	router := authRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: blacklist})

	t.Run("revoked jti", func(t *testing.T) {
		pair, _ := issue(t, svc, identity.RoleAdmin)
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, blacklist.Revoke(context.Background(), claims.ID, time.Minute))

		w := get(router, "/api/admin/bills", BearerPrefix+pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "TOKEN_REVOKED", decodeError(t, w).Code)
	})

	t.Run("revoked user", func(t *testing.T) {
		pair, userID := issue(t, svc, identity.RoleStaff)
		require.NoError(t, blacklist.RevokeUser(context.Background(), userID.String(), time.Hour))

		w := get(router, "/api/admin/bills", BearerPrefix+pair.AccessToken)
		assert.Equal(t, "TOKEN_REVOKED", decodeError(t, w).Code)
	})

	t.Run("other users unaffected", func(t *testing.T) {
		pair, _ := issue(t, svc, identity.RoleStaff)
		assert.Equal(t, http.StatusOK, get(router, "/api/admin/bills", BearerPrefix+pair.AccessToken).Code)
	})
}

func TestOptionalJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	router := gin.New()
	router.Use(OptionalJWTAuthMiddleware(svc))
	router.GET("/api/cart", func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTUserID(c))
	})

	pair, userID := issue(t, svc, identity.RoleStaff)
	assert.Equal(t, userID.String(), get(router, "/api/cart", BearerPrefix+pair.AccessToken).Body.String())

	w := get(router, "/api/cart", BearerPrefix+"bogus")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.PUT("/api/admin/rates/:id", RequireRole(identity.RoleAdmin), okHandler)
	router.GET("/api/admin/bills", RequireRole(identity.RoleStaff), okHandler)

	put := func(token string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/admin/rates/1", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		router.ServeHTTP(w, req)
		return w
	}

	staff, _ := issue(t, svc, identity.RoleStaff)
	admin, _ := issue(t, svc, identity.RoleAdmin)

	w := put(staff.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, w).Code)

	assert.Equal(t, http.StatusOK, put(admin.AccessToken).Code)
	assert.Equal(t, http.StatusOK, get(router, "/api/admin/bills", BearerPrefix+admin.AccessToken).Code)
	assert.Equal(t, http.StatusOK, get(router, "/api/admin/bills", BearerPrefix+staff.AccessToken).Code)

	t.Run("without jwt middleware", func(t *testing.T) {
		r := gin.New()
		r.GET("/", RequireRole(identity.RoleStaff), okHandler)
		assert.Equal(t, http.StatusUnauthorized, get(r, "/", "").Code)
	})
}
