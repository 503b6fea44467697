package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/playerhire-backend/pkg/config"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
)

var testCfg = config.JWTConfig{Secret: "secret", Issuer: "playerhire", ExpirationMinutes: 30}

func TestMintAndParseAccessToken(t *testing.T) {
	accountID := uuid.New()
	token, err := MintAccessToken(testCfg, time.Now().UTC(), AccessTokenPayload{AccountID: accountID, Role: enums.AccountRoleAdmin, JTI: "jti-1"})
	require.NoError(t, err)

	claims, err := ParseAccessToken(testCfg, token)
	require.NoError(t, err)
	assert.Equal(t, accountID, claims.AccountID)
	assert.Equal(t, accountID.String(), claims.Subject)
	assert.Equal(t, "jti-1", claims.ID)
	assert.True(t, claims.IsAdmin())
}

func TestMintRejectsBadPayloads(t *testing.T) {
	now := time.Now()
	_, err := MintAccessToken(testCfg, now, AccessTokenPayload{Role: enums.AccountRoleRenter})
	assert.Error(t, err)
	_, err = MintAccessToken(testCfg, now, AccessTokenPayload{AccountID: uuid.New(), Role: enums.AccountRoleSystem})
	assert.Error(t, err)
	_, err = MintAccessToken(config.JWTConfig{Secret: "s", Issuer: "i"}, now, AccessTokenPayload{AccountID: uuid.New(), Role: enums.AccountRoleRenter})
	assert.Error(t, err)
}

func TestParseRejectsExpiredForeignAndUnsigned(t *testing.T) {
	payload := AccessTokenPayload{AccountID: uuid.New(), Role: enums.AccountRolePlayer}

	expired, err := MintAccessToken(testCfg, time.Now().Add(-time.Hour), payload)
	require.NoError(t, err)
	_, err = ParseAccessToken(testCfg, expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	foreign, err := MintAccessToken(config.JWTConfig{Secret: "secret", Issuer: "someone-else", ExpirationMinutes: 5}, time.Now(), payload)
	require.NoError(t, err)
	_, err = ParseAccessToken(testCfg, foreign)
	assert.Error(t, err)

	wrongKey, err := MintAccessToken(config.JWTConfig{Secret: "other", Issuer: "playerhire", ExpirationMinutes: 5}, time.Now(), payload)
	require.NoError(t, err)
	_, err = ParseAccessToken(testCfg, wrongKey)
	assert.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessTokenClaims{AccountID: payload.AccountID, Role: payload.Role}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseAccessToken(testCfg, unsigned)
	assert.Error(t, err)
}
