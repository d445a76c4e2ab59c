package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/marketplace/internal/response"
	"github.com/suteetoe/marketplace/internal/store"
	"github.com/suteetoe/marketplace/pkg/jwtutil"
	"github.com/suteetoe/marketplace/pkg/logger"
	"github.com/suteetoe/marketplace/prometheus"
	"go.uber.org/zap"
)

// RegisterRequest defines the structure for registration requests
type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Email    string `json:"email" form:"email"`
	FullName string `json:"full_name" form:"full_name"`
	RealName string `json:"realName" form:"realName"`
	Phone    string `json:"phone" form:"phone"`
}

// TokenRequest carries password-grant credentials (form-encoded or JSON)
type TokenRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// TokenResponse is the OAuth2 password-grant response body
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthHandler serves registration and token issuance
type AuthHandler struct {
	store *store.Store
	jwt   *jwtutil.JWTUtil
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(s *store.Store, jwtUtil *jwtutil.JWTUtil) *AuthHandler {
	return &AuthHandler{store: s, jwt: jwtUtil}
}

// Register handles account creation
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid registration request", zap.Error(err))
		return badRequest(c, "Invalid request data")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return badRequest(c, "Username and password are required")
	}

	fullName := req.RealName
	if fullName == "" {
		fullName = req.FullName
	}

	user, err := h.store.CreateUser(c.Request().Context(), store.NewUser{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: fullName,
		Phone:    req.Phone,
	})
	if err != nil {
		log.Warn("Registration rejected", zap.String("username", req.Username), zap.Error(err))
		return fail(c, log, err, "User")
	}

	log.Info("User registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return response.OK(c, echo.Map{"id": user.ID, "username": user.Username})
}

// CheckUsername reports whether a username is still available
func (h *AuthHandler) CheckUsername(c echo.Context) error {
	log := logger.FromEcho(c)

	username := strings.TrimSpace(c.QueryParam("username"))
	if username == "" {
		return badRequest(c, "username is required")
	}

	exists, err := h.store.UsernameExists(c.Request().Context(), username)
	if err != nil {
		return fail(c, log, err, "User")
	}
	return response.OK(c, echo.Map{"isUnique": !exists})
}

// Token exchanges username and password for a bearer token
func (h *AuthHandler) Token(c echo.Context) error {
	log := logger.FromEcho(c)

	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid token request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return badRequest(c, "Invalid request data")
	}

	user, err := h.store.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		log.Warn("Authentication failed", zap.String("username", req.Username), zap.Error(err))
		prometheus.RecordAuthError("invalid_credentials")
		return fail(c, log, err, "User")
	}

	token, err := h.jwt.GenerateToken(user.Username, user.ID)
	if err != nil {
		log.Error("Failed to sign token", zap.Error(err))
		return response.Internal(c)
	}

	log.Info("Token issued", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}
