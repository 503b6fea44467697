package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/playerhire-backend/pkg/enums"
)

type countingLimiter struct {
	counts map[string]int64
	err    error
}

func (c *countingLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if c.err != nil {
		return false, 0, c.err
	}
	if c.counts == nil {
		c.counts = map[string]int64{}
	}
	c.counts[scope]++
	return c.counts[scope] <= limit, c.counts[scope], nil
}

func TestRateLimitBlocksAfterLimitPerAccount(t *testing.T) {
	limiter := &countingLimiter{}
	handler := RateLimit(RateLimitPolicy{Window: time.Minute, Limit: 2}, limiter, nil)(okHandler())

	alice, bob := uuid.New(), uuid.New()
	send := func(account uuid.UUID) int {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req = req.WithContext(WithAccount(req.Context(), account, enums.AccountRoleRenter))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp.Code
	}

	assert.Equal(t, http.StatusOK, send(alice))
	assert.Equal(t, http.StatusOK, send(alice))
	assert.Equal(t, http.StatusTooManyRequests, send(alice))
	assert.Equal(t, http.StatusOK, send(bob))
	assert.Contains(t, limiter.counts, "write:account:"+alice.String())
}

func TestRateLimitSkipsReadsAndFallsBackToIP(t *testing.T) {
	limiter := &countingLimiter{}
	handler := RateLimit(RateLimitPolicy{Name: "webhook", Window: time.Minute, Limit: 1}, limiter, nil)(okHandler())

	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/wallet", nil))
		require.Equal(t, http.StatusOK, resp.Code)
	}
	assert.Empty(t, limiter.counts)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/topup", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, int64(1), limiter.counts["webhook:ip:10.0.0.1"])
}

func TestRateLimitDependencyFailure(t *testing.T) {
	handler := RateLimit(RateLimitPolicy{Window: time.Minute, Limit: 1}, &countingLimiter{err: errors.New("down")}, nil)(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/orders", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	limiter := &countingLimiter{}
	handler := RateLimit(RateLimitPolicy{}, limiter, nil)(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/orders", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, limiter.counts)
}
