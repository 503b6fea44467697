package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/playerhire-backend/pkg/auth"
	"github.com/angelmondragon/playerhire-backend/pkg/config"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
)

var authCfg = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	resp := httptest.NewRecorder()
	Auth(authCfg, nil)(okHandler()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	Auth(authCfg, nil)(okHandler()).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthAllowsValidToken(t *testing.T) {
	accountID := uuid.New()
	token, err := auth.MintAccessToken(authCfg, time.Now(), auth.AccessTokenPayload{AccountID: accountID, Role: enums.AccountRolePlayer})
	require.NoError(t, err)

	var gotID uuid.UUID
	var gotRole enums.AccountRole
	handler := Auth(authCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = AccountIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, accountID, gotID)
	assert.Equal(t, enums.AccountRolePlayer, gotRole)
}

func TestRequireRole(t *testing.T) {
	guard := RequireRole(nil, enums.AccountRoleAdmin)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithAccount(req.Context(), uuid.New(), enums.AccountRoleRenter))
	resp := httptest.NewRecorder()
	guard.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	req = req.WithContext(WithAccount(req.Context(), uuid.New(), enums.AccountRoleAdmin))
	resp = httptest.NewRecorder()
	guard.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("  BEARER   abc "))
	assert.Equal(t, "raw", bearerToken("raw"))
	assert.Equal(t, "", bearerToken(""))
}
