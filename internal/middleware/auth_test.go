package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/marketplace/internal/model"
	"github.com/suteetoe/marketplace/internal/store"
	"github.com/suteetoe/marketplace/pkg/config"
	"github.com/suteetoe/marketplace/pkg/jwtutil"
)

type fakeUsers map[string]*model.User

func (f fakeUsers) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if username == "broken" {
		return nil, errors.New("db down")
	}
	if u, ok := f[username]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func newAuthServer(t *testing.T) (*echo.Echo, *jwtutil.JWTUtil) {
	t.Helper()
	jwtUtil := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "secret", ExpirationHours: 1})
	users := fakeUsers{"alice": {ID: 1, Username: "alice"}}

	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, CurrentUser(c).Username)
	}, JWTAuthMiddleware(jwtUtil, users))
	return e, jwtUtil
}

func doGet(e *echo.Echo, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddlewareAcceptsValidToken(t *testing.T) {
	e, j := newAuthServer(t)
	token, err := j.GenerateToken("alice", 1)
	require.NoError(t, err)

	rec := doGet(e, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())

	rec = doGet(e, "bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthMiddlewareRejects(t *testing.T) {
	e, j := newAuthServer(t)
	ghost, err := j.GenerateToken("ghost", 9)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"garbage token":  "Bearer not-a-jwt",
		"unknown user":   "Bearer " + ghost,
	} {
		rec := doGet(e, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.Contains(t, rec.Body.String(), `"code":401`, name)
	}
}

func TestJWTAuthMiddlewareLookupFailure(t *testing.T) {
	e, j := newAuthServer(t)
	token, err := j.GenerateToken("broken", 2)
	require.NoError(t, err)

	rec := doGet(e, "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "fixed-id")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get(echo.HeaderXRequestID))
}
