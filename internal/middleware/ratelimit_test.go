package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	l, err := NewRateLimiter(client, "test", limit, time.Minute)
	require.NoError(t, err)
	l.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 30, 0, time.UTC) }
	return l, mr
}

func TestRateLimiterAllowsWithinWindow(t *testing.T) {
	l, mr := newTestLimiter(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	// other keys have their own budget
	ok, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok)

	slot := time.Date(2024, 1, 1, 0, 0, 30, 0, time.UTC).UnixMilli() / time.Minute.Milliseconds()
	key := "test:1.2.3.4:" + strconv.FormatInt(slot, 10)
	assert.True(t, mr.Exists(key))
	assert.Greater(t, mr.TTL(key), time.Duration(0))
}

func TestRateLimiterNewWindowResets(t *testing.T) {
	l, _ := newTestLimiter(t, 1)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "k")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "k")
	assert.False(t, ok)

	l.now = func() time.Time { return time.Date(2024, 1, 1, 0, 1, 30, 0, time.UTC) }
	ok, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiterFailsClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	l, err := NewRateLimiter(client, "test", 5, time.Minute)
	require.NoError(t, err)
	mr.SetError("server down")

	ok, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRateLimiterMiddleware(t *testing.T) {
	l, _ := newTestLimiter(t, 1)
	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, l.Middleware())

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"code":429,"msg":"Too many requests","data":null}`, second.Body.String())
}

func TestNewRateLimiterValidates(t *testing.T) {
	_, err := NewRateLimiter(nil, "", 1, time.Second)
	assert.Error(t, err)
	_, err = NewRateLimiter(redis.NewClient(&redis.Options{}), "", 0, time.Second)
	assert.Error(t, err)
}
