package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/marketplace/internal/model"
	"github.com/suteetoe/marketplace/internal/response"
	"github.com/suteetoe/marketplace/internal/store"
	"github.com/suteetoe/marketplace/pkg/jwtutil"
	"github.com/suteetoe/marketplace/pkg/logger"
	"github.com/suteetoe/marketplace/prometheus"
	"go.uber.org/zap"
)

const userKey = "user"

// UserLookup resolves the token subject to a user
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// JWTAuthMiddleware validates the bearer token and loads the caller
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil, users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			// Extract the token from the Authorization header
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Missing authorization header")
				prometheus.RecordAuthError("missing_header")
				return response.Error(c, http.StatusUnauthorized, "Not authenticated")
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warn("Invalid authorization header format")
				prometheus.RecordAuthError("bad_header")
				return response.Error(c, http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return response.Error(c, http.StatusUnauthorized, "Could not validate credentials")
			}

			user, err := users.GetUserByUsername(c.Request().Context(), claims.Username())
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					log.Warn("Token subject no longer exists", zap.String("username", claims.Username()))
					prometheus.RecordAuthError("unknown_user")
					return response.Error(c, http.StatusUnauthorized, "Could not validate credentials")
				}
				log.Error("Failed to load token subject", zap.Error(err))
				return response.Internal(c)
			}

			c.Set(userKey, user)
			logger.SetEcho(c, log.With(zap.Uint("user_id", user.ID)))
			log.Debug("JWT token validated successfully", zap.String("username", user.Username))

			return next(c)
		}
	}
}

// CurrentUser returns the authenticated caller, or nil outside authenticated routes
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(userKey).(*model.User)
	return user
}
