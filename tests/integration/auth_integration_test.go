package integration

import (
	"net/http"
	"testing"

	identityapp "github.com/aurum/jewelstore/internal/application/identity"
	"github.com/aurum/jewelstore/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)
	admin := ts.AdminToken(t)

	t.Run("admin creates a staff user", func(t *testing.T) {
		w := ts.Do(t, http.MethodPost, "/api/users", map[string]any{
			"username": "counter1",
			"email":    "counter1@aurum.test",
			"password": "Counter-pass1",
			"role":     "staff",
		}, admin)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("staff reaches back office but not admin routes", func(t *testing.T) {
		staff := ts.Login(t, "counter1", "Counter-pass1").AccessToken

		assert.Equal(t, http.StatusOK, ts.Do(t, http.MethodGet, "/api/bills", nil, staff).Code)
		assert.Equal(t, http.StatusForbidden, ts.Do(t, http.MethodGet, "/api/users", nil, staff).Code)
		assert.Equal(t, http.StatusForbidden, ts.Do(t, http.MethodPut, "/api/settings/store.name",
			map[string]any{"value": "Other"}, staff).Code)

		w := ts.Do(t, http.MethodGet, "/api/auth/me", nil, staff)
		require.Equal(t, http.StatusOK, w.Code)
		me := testutil.DecodeEnvelope[identityapp.UserResponse](t, w).Data
		assert.Equal(t, "counter1", me.Username)
	})

	t.Run("anonymous requests to staff routes are rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, ts.Do(t, http.MethodGet, "/api/bills", nil, "").Code)
		assert.Equal(t, http.StatusUnauthorized, ts.Do(t, http.MethodGet, "/api/bills", nil, "not-a-token").Code)
	})

	t.Run("refresh rotates the pair", func(t *testing.T) {
		tokens := ts.Login(t, "counter1", "Counter-pass1")

		w := ts.Do(t, http.MethodPost, "/api/auth/refresh", map[string]any{"refresh_token": tokens.RefreshToken}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		rotated := testutil.DecodeEnvelope[identityapp.TokenResponse](t, w).Data
		assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

		w = ts.Do(t, http.MethodPost, "/api/auth/refresh", map[string]any{"refresh_token": tokens.RefreshToken}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "old refresh token is spent")
	})

	t.Run("logout revokes the access token", func(t *testing.T) {
		tokens := ts.Login(t, "counter1", "Counter-pass1")

		w := ts.Do(t, http.MethodPost, "/api/auth/logout", map[string]any{"refresh_token": tokens.RefreshToken}, tokens.AccessToken)
		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, http.StatusUnauthorized, ts.Do(t, http.MethodGet, "/api/auth/me", nil, tokens.AccessToken).Code)
	})

	t.Run("deactivation revokes live sessions", func(t *testing.T) {
		w := ts.Do(t, http.MethodPost, "/api/users", map[string]any{
			"username": "temp", "password": "Temp-pass12", "role": "staff",
		}, admin)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		user := testutil.DecodeEnvelope[identityapp.UserResponse](t, w).Data
		token := ts.Login(t, "temp", "Temp-pass12").AccessToken

		w = ts.Do(t, http.MethodPost, "/api/users/"+user.ID.String()+"/deactivate", nil, admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		assert.Equal(t, http.StatusUnauthorized, ts.Do(t, http.MethodGet, "/api/auth/me", nil, token).Code)
		w = ts.Do(t, http.MethodPost, "/api/auth/login", map[string]any{"username": "temp", "password": "Temp-pass12"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("repeated failures lock the account", func(t *testing.T) {
		wrong := map[string]any{"username": "counter1", "password": "wrong-pass"}
		for range 4 {
			require.Equal(t, http.StatusUnauthorized, ts.Do(t, http.MethodPost, "/api/auth/login", wrong, "").Code)
		}

		w := ts.Do(t, http.MethodPost, "/api/auth/login", wrong, "")
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = ts.Do(t, http.MethodPost, "/api/auth/login", map[string]any{"username": "counter1", "password": "Counter-pass1"}, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		env := testutil.DecodeEnvelope[any](t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ACCOUNT_LOCKED", env.Error.Code)
	})
}
