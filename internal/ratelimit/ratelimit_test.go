package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, maxEvents int, window time.Duration) (Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Limiter{Client: client, Prefix: "rl:test:", Window: window, Max: maxEvents}, mr
}

func TestTakeSlidingWindow(t *testing.T) {
	limiter, mr := newLimiter(t, 2, 2*time.Second)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := limiter.Take(ctx, "register-1")
		require.NoError(t, err)
		require.True(t, d.Allowed)
		require.Equal(t, 2-(i+1), d.Remaining)
	}

	d, err := limiter.Take(ctx, "register-1")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Zero(t, d.Remaining)

	// A different register has its own window.
	d, err = limiter.Take(ctx, "register-2")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	mr.FastForward(2 * time.Second)

	d, err = limiter.Take(ctx, "register-1")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestGuardRejectsOverLimit(t *testing.T) {
	limiter, _ := newLimiter(t, 1, time.Second)
	guard := Guard{
		Limiter: limiter,
		KeyFn:   func(*http.Request) string { return "static" },
	}

	wrapped := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req.Clone(req.Context()))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req.Clone(req.Context()))
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Equal(t, "1", rr.Header().Get("X-RateLimit-Limit"))
	require.NotEmpty(t, rr.Header().Get("Retry-After"))
	require.JSONEq(t,
		`{"error":{"code":"RATE_LIMITED","message":"too many requests"}}`,
		rr.Body.String())
}

func TestGuardFailsOpenOnRedisError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	var reported error
	guard := Guard{
		Limiter: Limiter{Client: client, Prefix: "rl:test:", Window: time.Second, Max: 1},
		KeyFn:   func(*http.Request) string { return "static" },
		OnError: func(err error) { reported = err },
	}

	wrapped := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil))
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Error(t, reported)
}
